// internal/app/features/userinfo/routes.go
package userinfo

import "github.com/go-chi/chi/v5"

// MountRoutes registers GET /api/auth/me on the supplied router.
// No gate is applied: the handler reads whatever session LoadSession found.
func MountRoutes(r chi.Router, h *Handler) {
	r.Get("/api/auth/me", h.ServeMe)
}
