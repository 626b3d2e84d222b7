// internal/app/system/workspace/workspace.go
package workspace

import (
	"context"
	"net/http"

	"github.com/ovibase/ovibase/internal/app/system/host"
	"github.com/ovibase/ovibase/internal/app/system/timeouts"
	"github.com/ovibase/ovibase/internal/domain/models"
	"go.uber.org/zap"
)

type ctxKey string

const workspaceKey ctxKey = "workspace"

// Info is what host discovery found for the current request. It is only a
// hint for login and signup pages; authorization always uses the tenant
// named by the session.
type Info struct {
	Slug   string         // slug parsed from the host, if any
	Tenant *models.Tenant // nil when the slug names no tenant
	IsRoot bool           // true on the base domain (workspace chooser)
}

// Middleware attaches *Info to every request it wraps. A lookup failure is
// logged and the request proceeds without a tenant.
func Middleware(dir *Directory, baseDomain string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			slug, ok := host.TenantSlug(host.Headers(r), baseDomain)
			if !ok {
				next.ServeHTTP(w, withWorkspace(r, &Info{IsRoot: true}))
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
			defer cancel()

			t, err := dir.BySlug(ctx, slug)
			if err != nil {
				logger.Warn("tenant lookup failed",
					zap.String("slug", slug),
					zap.Error(err))
			}
			next.ServeHTTP(w, withWorkspace(r, &Info{Slug: slug, Tenant: t}))
		})
	}
}

// FromRequest returns the workspace info from the request context.
// Returns nil if no workspace context is set.
func FromRequest(r *http.Request) *Info {
	return FromContext(r.Context())
}

// FromContext returns the workspace info from the context.
func FromContext(ctx context.Context) *Info {
	if ws, ok := ctx.Value(workspaceKey).(*Info); ok {
		return ws
	}
	return nil
}

// WithInfo returns ctx carrying info.
func WithInfo(ctx context.Context, info *Info) context.Context {
	return context.WithValue(ctx, workspaceKey, info)
}

func withWorkspace(r *http.Request, ws *Info) *http.Request {
	return r.WithContext(WithInfo(r.Context(), ws))
}
