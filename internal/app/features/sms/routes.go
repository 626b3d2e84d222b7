// internal/app/features/sms/routes.go
package sms

import (
	"github.com/go-chi/chi/v5"
	"github.com/ovibase/ovibase/internal/app/system/authz"
	"github.com/ovibase/ovibase/internal/app/system/gates"
)

// MountRoutes registers the bulk-send endpoints and the send history;
// each needs the sms capability.
func MountRoutes(r chi.Router, h *Handler, g *gates.Gates) {
	r.Group(func(pr chi.Router) {
		pr.Use(g.Middleware(authz.Permission(authz.CapSMS)))
		pr.Post("/app/sms/send", h.HandleSend)
		pr.Post("/app/members/sms", h.HandleSendAll)
		pr.Get("/app/sms/logs", h.ServeLogs)
	})
}
