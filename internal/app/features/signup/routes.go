// internal/app/features/signup/routes.go
package signup

import "github.com/go-chi/chi/v5"

// MountRoutes registers POST /api/auth/signup.
func MountRoutes(r chi.Router, h *Handler) {
	r.Post("/api/auth/signup", h.HandleSignup)
}
