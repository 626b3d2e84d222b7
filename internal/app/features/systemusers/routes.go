// internal/app/features/systemusers/routes.go
package systemusers

import (
	"github.com/go-chi/chi/v5"
	"github.com/ovibase/ovibase/internal/app/system/authz"
	"github.com/ovibase/ovibase/internal/app/system/gates"
)

// Routes mounts staff management under the path where this router is
// mounted (/app/settings/users from bootstrap).
func Routes(h *Handler, g *gates.Gates) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		// Only OWNER and ADMIN manage staff.
		pr.Use(g.Middleware(authz.Admin()))

		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)
		pr.Get("/{id}", h.ServeEdit)
		pr.Post("/{id}", h.HandleUpdate)
	})

	return r
}
