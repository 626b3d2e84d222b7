// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/ovibase/ovibase/internal/app/system/authz"
	"github.com/ovibase/ovibase/internal/app/system/gates"
	"github.com/ovibase/ovibase/internal/app/system/respond"
	"github.com/ovibase/ovibase/internal/app/system/timeouts"
	"github.com/ovibase/ovibase/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// TemplateLister lists a tenant's SMS templates for the send form.
type TemplateLister interface {
	List(ctx context.Context, tenantID primitive.ObjectID) ([]models.SmsTemplate, error)
}

type Handler struct {
	Templates TemplateLister
	Log       *zap.Logger
}

func NewHandler(templates TemplateLister, logger *zap.Logger) *Handler {
	return &Handler{
		Templates: templates,
		Log:       logger,
	}
}

type tenantView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type templateView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Banner is the one-shot notice carried in the query string after a
// redirect back to /app.
type Banner struct {
	Kind     string `json:"kind"` // error | sms_sent | sms_partial
	Message  string `json:"message,omitempty"`
	Count    string `json:"count,omitempty"`
	Sent     string `json:"sent,omitempty"`
	Failed   string `json:"failed,omitempty"`
	Template string `json:"template,omitempty"`
}

type dashboardData struct {
	Tenant       tenantView            `json:"tenant"`
	Role         models.Role           `json:"role"`
	IsAdmin      bool                  `json:"isAdmin"`
	CanSMS       bool                  `json:"canSms"`
	Permissions  []authz.PermissionRow `json:"permissions"`
	SmsTemplates []templateView        `json:"smsTemplates,omitempty"`
	Banner       *Banner               `json:"banner,omitempty"`
}

// BannerFromQuery decodes the notice left by a redirect. An error wins
// over an SMS result; anything else yields nil.
func BannerFromQuery(r *http.Request) *Banner {
	if msg := query.Get(r, "error"); msg != "" {
		return &Banner{Kind: "error", Message: msg}
	}
	tpl := query.Get(r, "template")
	switch query.Get(r, "sms") {
	case "sent":
		count := query.Get(r, "count")
		if count == "" {
			count = "0"
		}
		return &Banner{Kind: "sms_sent", Count: count, Template: tpl}
	case "partial":
		b := &Banner{Kind: "sms_partial", Sent: query.Get(r, "sent"), Failed: query.Get(r, "failed"), Template: tpl}
		if b.Sent == "" {
			b.Sent = "0"
		}
		if b.Failed == "" {
			b.Failed = "0"
		}
		return b
	}
	return nil
}

// ServeDashboard describes the tenant home for the signed-in member.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	ac, ok := gates.FromRequest(r)
	if !ok || ac.Membership == nil {
		gates.Redirect(w, r, authz.LoginPath)
		return
	}
	m := *ac.Membership

	data := dashboardData{
		Tenant:      tenantView{ID: ac.Tenant.ID.Hex(), Name: ac.Tenant.Name, Slug: ac.Tenant.Slug},
		Role:        ac.Role,
		IsAdmin:     ac.IsAdmin(),
		CanSMS:      authz.Allowed(m, authz.CapSMS),
		Permissions: authz.Matrix(m),
		Banner:      BannerFromQuery(r),
	}

	if data.CanSMS && h.Templates != nil {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()
		tpls, err := h.Templates.List(ctx, ac.Tenant.ID)
		if err != nil {
			// The dashboard still renders; only the send form is empty.
			h.Log.Warn("dashboard: list sms templates", zap.Error(err))
		}
		for _, t := range tpls {
			data.SmsTemplates = append(data.SmsTemplates, templateView{ID: t.ID.Hex(), Name: t.Name})
		}
	}

	respond.JSON(w, http.StatusOK, data)
}

type unauthorizedData struct {
	Tenant      tenantView            `json:"tenant"`
	Permissions []authz.PermissionRow `json:"permissions"`
	ManageURL   string                `json:"manageUrl,omitempty"`
}

// ServeUnauthorized lists what the member may and may not do, with a link
// to user management for admins.
func (h *Handler) ServeUnauthorized(w http.ResponseWriter, r *http.Request) {
	ac, ok := gates.FromRequest(r)
	if !ok || ac.Membership == nil {
		gates.Redirect(w, r, authz.LoginPath)
		return
	}
	data := unauthorizedData{
		Tenant:      tenantView{ID: ac.Tenant.ID.Hex(), Name: ac.Tenant.Name, Slug: ac.Tenant.Slug},
		Permissions: authz.Matrix(*ac.Membership),
	}
	if ac.IsAdmin() {
		data.ManageURL = "/app/settings/users"
	}
	respond.JSON(w, http.StatusOK, data)
}
