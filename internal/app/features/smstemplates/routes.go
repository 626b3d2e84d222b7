// internal/app/features/smstemplates/routes.go
package smstemplates

import (
	"github.com/go-chi/chi/v5"
	"github.com/ovibase/ovibase/internal/app/system/authz"
	"github.com/ovibase/ovibase/internal/app/system/gates"
)

// Routes is mounted at /app/settings/sms-templates; admins only.
func Routes(h *Handler, g *gates.Gates) chi.Router {
	r := chi.NewRouter()
	r.Use(g.Middleware(authz.Admin()))
	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Post("/{id}/delete", h.HandleDelete)
	return r
}
