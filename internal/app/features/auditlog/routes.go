// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/go-chi/chi/v5"
	"github.com/ovibase/ovibase/internal/app/system/authz"
	"github.com/ovibase/ovibase/internal/app/system/gates"
)

// Routes is mounted at /app/settings/audit. Admins see their own tenant's
// events only.
func Routes(h *Handler, g *gates.Gates) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(g.Middleware(authz.Admin()))
		pr.Get("/", h.ServeList)
	})

	return r
}
