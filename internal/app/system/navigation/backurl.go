// Package navigation provides helpers for safe URL navigation and redirects.
package navigation

import (
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
)

// BackURLOptions configures the behavior of SafeBackURL.
type BackURLOptions struct {
	// AllowedPrefix is the required URL prefix (e.g. "/app").
	// If empty, any safe URL is allowed.
	AllowedPrefix string

	// ExcludedSubpaths are substrings that disqualify a return URL, so a
	// redirect never lands back on an action endpoint.
	ExcludedSubpaths []string

	// Fallback is used when no acceptable return URL was supplied.
	Fallback string
}

// SafeBackURL extracts and validates the "return" URL from the request,
// checking the query string first and then the form body. Off-site and
// otherwise unsafe targets fall back to opts.Fallback.
func SafeBackURL(r *http.Request, opts BackURLOptions) string {
	ret := urlutil.SafeReturn(query.Get(r, "return"), "", "")
	if ret == "" {
		ret = urlutil.SafeReturn(strings.TrimSpace(r.FormValue("return")), "", "")
	}
	if ret == "" {
		return opts.Fallback
	}
	if opts.AllowedPrefix != "" && !strings.HasPrefix(ret, opts.AllowedPrefix) {
		return opts.Fallback
	}
	for _, excluded := range opts.ExcludedSubpaths {
		if strings.Contains(ret, excluded) {
			return opts.Fallback
		}
	}
	return ret
}

var (
	// DashboardBackURL is where a dashboard SMS send returns to.
	DashboardBackURL = BackURLOptions{
		AllowedPrefix:    "/app",
		ExcludedSubpaths: []string{"/sms/", "/delete", "/logout"},
		Fallback:         "/app",
	}

	// MembersBackURL is where a send-to-all from the members page returns to.
	MembersBackURL = BackURLOptions{
		AllowedPrefix:    "/app/members",
		ExcludedSubpaths: []string{"/sms", "/delete"},
		Fallback:         "/app/members",
	}
)
