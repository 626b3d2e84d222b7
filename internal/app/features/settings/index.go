// internal/app/features/settings/index.go
package settings

import (
	"net/http"

	"github.com/ovibase/ovibase/internal/app/system/respond"
)

type section struct {
	Title string `json:"title"`
	Href  string `json:"href"`
}

var sections = []section{
	{Title: "Users & permissions", Href: "/app/settings/users"},
	{Title: "SMS provider", Href: providerURL},
	{Title: "SMS templates", Href: "/app/settings/sms-templates"},
	{Title: "Audit log", Href: "/app/settings/audit"},
}

// ServeSettings handles GET /app/settings.
func (h *Handler) ServeSettings(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]any{"sections": sections})
}
