// internal/app/features/settings/smsprovider.go
package settings

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	smsproviderstore "github.com/ovibase/ovibase/internal/app/store/smsproviders"
	"github.com/ovibase/ovibase/internal/app/system/formutil"
	"github.com/ovibase/ovibase/internal/app/system/gates"
	"github.com/ovibase/ovibase/internal/app/system/htmlsanitize"
	"github.com/ovibase/ovibase/internal/app/system/respond"
	"github.com/ovibase/ovibase/internal/app/system/timeouts"
	"github.com/ovibase/ovibase/internal/domain/models"
	"go.uber.org/zap"
)

const providerURL = "/app/settings/sms-provider"

// User-facing messages.
const (
	MsgUnknownProvider = "Choose a supported SMS provider."
	MsgBadBaseURL      = "Base URL must be an absolute http or https URL."
	MsgBadForm         = "Invalid form submission."
	MsgServerError     = "Something went wrong. Please try again."
)

// providerView is what clients see. The credential itself is never
// returned; HasAPIKey only says whether one is stored.
type providerView struct {
	Configured bool                     `json:"configured"`
	Provider   models.SmsProviderKind   `json:"provider"`
	SenderID   string                   `json:"senderId"`
	From       string                   `json:"from"`
	BaseURL    string                   `json:"baseUrl"`
	HasAPIKey  bool                     `json:"hasApiKey"`
	Providers  []models.SmsProviderKind `json:"providers"`
	Saved      bool                     `json:"saved,omitempty"`
}

func viewOf(s models.SmsProviderSetting, configured bool) providerView {
	return providerView{
		Configured: configured,
		Provider:   s.Provider,
		SenderID:   s.SenderID,
		From:       s.From,
		BaseURL:    s.BaseURL,
		HasAPIKey:  s.HasCredential(),
		Providers:  models.SmsProviderKinds,
	}
}

// ServeSmsProvider handles GET /app/settings/sms-provider.
func (h *Handler) ServeSmsProvider(w http.ResponseWriter, r *http.Request) {
	ac, _ := gates.FromRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	s, err := h.Providers.Get(ctx, ac.Tenant.ID)
	configured := true
	if errors.Is(err, smsproviderstore.ErrNotFound) {
		s = models.SmsProviderSetting{Provider: models.SmsProviderTextLocal}
		configured = false
	} else if err != nil {
		h.ErrLog.LogServerError(w, r, "load sms provider", err, MsgServerError, "")
		return
	}

	v := viewOf(s, configured)
	v.Saved = r.URL.Query().Get("saved") == "1"
	respond.JSON(w, http.StatusOK, v)
}

// HandleSmsProvider handles POST /app/settings/sms-provider. A blank apiKey
// keeps the stored credential; a new one is sealed before it is written.
func (h *Handler) HandleSmsProvider(w http.ResponseWriter, r *http.Request) {
	ac, _ := gates.FromRequest(r)

	if err := formutil.Parse(w, r); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse sms provider form", err, MsgBadForm, providerURL)
		return
	}

	provider := models.SmsProviderTextLocal
	if raw := formutil.String(r, "provider"); raw != "" {
		p, ok := models.ParseSmsProvider(raw)
		if !ok {
			h.ErrLog.Reject(w, r, http.StatusBadRequest, MsgUnknownProvider, providerURL)
			return
		}
		provider = p
	}
	baseURL := formutil.String(r, "baseUrl")
	if baseURL != "" && !isHTTPURL(baseURL) {
		h.ErrLog.Reject(w, r, http.StatusBadRequest, MsgBadBaseURL, providerURL)
		return
	}

	setting := models.SmsProviderSetting{
		TenantID: ac.Tenant.ID,
		Provider: provider,
		SenderID: htmlsanitize.PlainText(formutil.String(r, "senderId")),
		From:     htmlsanitize.PlainText(formutil.String(r, "from")),
		BaseURL:  baseURL,
	}

	var sealed []byte
	if apiKey := formutil.String(r, "apiKey"); apiKey != "" {
		var err error
		if sealed, err = h.Cipher.Seal(apiKey); err != nil {
			h.ErrLog.LogServerError(w, r, "seal sms api key", err, MsgServerError, providerURL)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Providers.Upsert(ctx, setting, sealed); err != nil {
		h.ErrLog.LogServerError(w, r, "save sms provider", err, MsgServerError, providerURL)
		return
	}

	keyChanged := sealed != nil
	h.AuditLog.SmsProviderUpdated(ctx, r, ac.UserID, ac.Tenant.ID, string(provider), keyChanged)
	h.Log.Info("sms provider saved",
		zap.String("tenant", ac.Tenant.Slug),
		zap.String("provider", string(provider)),
		zap.Bool("key_changed", keyChanged))

	if respond.WantsJSON(r) {
		respond.JSON(w, http.StatusOK, map[string]bool{"ok": true, "keyChanged": keyChanged})
		return
	}
	respond.SeeOther(w, r, providerURL+"?saved=1")
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
