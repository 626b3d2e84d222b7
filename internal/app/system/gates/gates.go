// Package gates turns authz decisions into HTTP responses.
//
// Handlers call a Require* method first thing; when it reports OK=false the
// response (a redirect) has already been written and the handler returns.
// Route groups that share one requirement use Middleware instead and read
// the context back with FromRequest.
package gates

import (
	"context"
	"net/http"
	"strings"

	"github.com/ovibase/ovibase/internal/app/system/auth"
	"github.com/ovibase/ovibase/internal/app/system/authz"
	"github.com/ovibase/ovibase/internal/app/system/respond"
	"github.com/ovibase/ovibase/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Result contains the result of an authorization gate check.
type Result struct {
	authz.Context
	OK bool
}

// Gates binds the pure gate to the session cookie.
type Gates struct {
	gate     *authz.Gate
	sessions *auth.SessionManager
	log      *zap.Logger
}

// New builds the adapter.
func New(gate *authz.Gate, sessions *auth.SessionManager, logger *zap.Logger) *Gates {
	return &Gates{gate: gate, sessions: sessions, log: logger}
}

// Require checks req and writes the redirect when it fails.
func (g *Gates) Require(w http.ResponseWriter, r *http.Request, req authz.Requirement) Result {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	d := g.gate.Check(ctx, g.sessions.Token(r), req)
	if d.Err != nil {
		g.log.Error("authorization lookup failed; denying",
			zap.String("path", r.URL.Path),
			zap.Error(d.Err))
	}
	if !d.Authorized() {
		Redirect(w, r, d.Target)
		return Result{OK: false}
	}
	return Result{Context: d.Context, OK: true}
}

// RequireSignedIn needs a valid session in an existing tenant.
func (g *Gates) RequireSignedIn(w http.ResponseWriter, r *http.Request) Result {
	return g.Require(w, r, authz.SignedIn())
}

// RequireMember needs a membership in the session's tenant.
func (g *Gates) RequireMember(w http.ResponseWriter, r *http.Request) Result {
	return g.Require(w, r, authz.Member())
}

// RequirePermission needs the named capability.
func (g *Gates) RequirePermission(w http.ResponseWriter, r *http.Request, c authz.Capability) Result {
	return g.Require(w, r, authz.Permission(c))
}

// RequireAdmin needs role OWNER or ADMIN; others are sent to /app.
func (g *Gates) RequireAdmin(w http.ResponseWriter, r *http.Request) Result {
	return g.Require(w, r, authz.Admin())
}

type ctxKey string

const authzKey ctxKey = "authzContext"

// Middleware enforces req for every route in a group.
func (g *Gates) Middleware(req authz.Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := g.Require(w, r, req)
			if !res.OK {
				return
			}
			next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), res.Context)))
		})
	}
}

// WithContext returns ctx carrying ac.
func WithContext(ctx context.Context, ac authz.Context) context.Context {
	return context.WithValue(ctx, authzKey, ac)
}

// FromRequest returns the context stored by Middleware.
func FromRequest(r *http.Request) (authz.Context, bool) {
	ac, ok := r.Context().Value(authzKey).(authz.Context)
	return ac, ok
}

// Redirect sends the browser to target.
//   - HTMX: HX-Redirect header
//   - JSON API: 401 for the login target, 403 otherwise
//   - everything else: 303 See Other
func Redirect(w http.ResponseWriter, r *http.Request, target string) {
	status := http.StatusForbidden
	if target == authz.LoginPath {
		status = http.StatusUnauthorized
	}

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(status)
		return
	}

	if respond.WantsJSON(r) {
		respond.Error(w, status, strings.ToLower(http.StatusText(status)))
		return
	}

	http.Redirect(w, r, target, http.StatusSeeOther)
}
