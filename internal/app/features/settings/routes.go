// internal/app/features/settings/routes.go
package settings

import (
	"github.com/go-chi/chi/v5"
	"github.com/ovibase/ovibase/internal/app/system/authz"
	"github.com/ovibase/ovibase/internal/app/system/gates"
)

// Routes is mounted at /app/settings. Every route needs OWNER or ADMIN.
// Sections with their own handlers are mounted by path in sections; each
// of those routers is expected to apply its own gate.
func Routes(h *Handler, g *gates.Gates, sections map[string]chi.Router) chi.Router {
	r := chi.NewRouter()
	r.Group(func(ar chi.Router) {
		ar.Use(g.Middleware(authz.Admin()))
		ar.Get("/", h.ServeSettings)
		ar.Get("/sms-provider", h.ServeSmsProvider)
		ar.Post("/sms-provider", h.HandleSmsProvider)
	})
	for path, sub := range sections {
		r.Mount(path, sub)
	}
	return r
}
