// Package edge is the first middleware every request passes through. It
// labels the response with the tenant slug from the host and sends
// cookie-less requests for /app pages to /login before any handler runs.
//
// Only presence of the session cookie is checked here. Verification is the
// gate's job.
package edge

import (
	"net/http"
	"strings"

	"github.com/ovibase/ovibase/internal/app/system/host"
)

// TenantHeader carries the host-derived slug. It is informational only.
const TenantHeader = "X-Tenant-Slug"

var skipPrefixes = []string{"/static/", "/favicon.ico", "/health", "/metrics"}

// Filter returns the edge middleware.
func Filter(cookieName, baseDomain string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if skipped(path) {
				next.ServeHTTP(w, r)
				return
			}

			if slug, ok := host.TenantSlug(host.Headers(r), baseDomain); ok {
				w.Header().Set(TenantHeader, slug)
			}

			if isAppPath(path) {
				if c, err := r.Cookie(cookieName); err != nil || c.Value == "" {
					http.Redirect(w, r, "/login", http.StatusSeeOther)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isAppPath(p string) bool {
	return p == "/app" || strings.HasPrefix(p, "/app/")
}

func skipped(p string) bool {
	for _, s := range skipPrefixes {
		if strings.HasPrefix(p, s) {
			return true
		}
	}
	return false
}
