// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/go-chi/chi/v5"
	"github.com/ovibase/ovibase/internal/app/system/authz"
	"github.com/ovibase/ovibase/internal/app/system/gates"
)

// MountRoutes registers /app and /app/unauthorized. Both need a membership
// in the session's tenant.
func MountRoutes(r chi.Router, h *Handler, g *gates.Gates) {
	r.Group(func(pr chi.Router) {
		pr.Use(g.Middleware(authz.Member()))
		pr.Get("/app", h.ServeDashboard)
		pr.Get("/app/unauthorized", h.ServeUnauthorized)
	})
}
