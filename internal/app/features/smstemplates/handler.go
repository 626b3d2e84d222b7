// internal/app/features/smstemplates/handler.go
package smstemplates

import (
	"context"
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	uierrors "github.com/ovibase/ovibase/internal/app/features/errors"
	smstemplatestore "github.com/ovibase/ovibase/internal/app/store/smstemplates"
	"github.com/ovibase/ovibase/internal/app/system/auditlog"
	"github.com/ovibase/ovibase/internal/app/system/formutil"
	"github.com/ovibase/ovibase/internal/app/system/gates"
	"github.com/ovibase/ovibase/internal/app/system/htmlsanitize"
	"github.com/ovibase/ovibase/internal/app/system/respond"
	"github.com/ovibase/ovibase/internal/app/system/sms"
	"github.com/ovibase/ovibase/internal/app/system/timeouts"
	"github.com/ovibase/ovibase/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const listURL = "/app/settings/sms-templates"

// User-facing messages.
const (
	MsgRequired    = "Name and message are required."
	MsgTooLong     = "Message is too long."
	MsgNotFound    = "Template not found."
	MsgBadForm     = "Invalid form submission."
	MsgServerError = "Something went wrong. Please try again."

	// maxMessageRunes keeps a template within ten concatenated SMS parts.
	maxMessageRunes = 1530
)

// Store is the template persistence the handler needs.
type Store interface {
	Create(ctx context.Context, t models.SmsTemplate) (models.SmsTemplate, error)
	List(ctx context.Context, tenantID primitive.ObjectID) ([]models.SmsTemplate, error)
	Delete(ctx context.Context, tenantID, id primitive.ObjectID) error
}

type Handler struct {
	Templates Store
	Log       *zap.Logger
	ErrLog    *uierrors.ErrorLogger
	AuditLog  *auditlog.Logger
}

func NewHandler(templates Store, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Templates: templates,
		Log:       logger,
		ErrLog:    errLog,
		AuditLog:  audit,
	}
}

type templateView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

type listData struct {
	Templates    []templateView `json:"templates"`
	Placeholders []string       `json:"placeholders"`
}

// ServeList handles GET /app/settings/sms-templates.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ac, _ := gates.FromRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	tpls, err := h.Templates.List(ctx, ac.Tenant.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list sms templates", err, MsgServerError, "")
		return
	}
	data := listData{Templates: make([]templateView, 0, len(tpls)), Placeholders: sms.Placeholders}
	for _, t := range tpls {
		data.Templates = append(data.Templates, templateView{ID: t.ID.Hex(), Name: t.Name, Message: t.Message})
	}
	respond.JSON(w, http.StatusOK, data)
}

// HandleCreate handles POST /app/settings/sms-templates.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ac, _ := gates.FromRequest(r)

	if err := formutil.Parse(w, r); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse sms template form", err, MsgBadForm, listURL)
		return
	}
	name := htmlsanitize.PlainText(formutil.String(r, "name"))
	message := htmlsanitize.PlainText(formutil.String(r, "message"))
	if name == "" || message == "" {
		h.ErrLog.Reject(w, r, http.StatusBadRequest, MsgRequired, listURL)
		return
	}
	if utf8.RuneCountInString(message) > maxMessageRunes {
		h.ErrLog.Reject(w, r, http.StatusBadRequest, MsgTooLong, listURL)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, err := h.Templates.Create(ctx, models.SmsTemplate{TenantID: ac.Tenant.ID, Name: name, Message: message})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create sms template", err, MsgServerError, listURL)
		return
	}
	h.AuditLog.SmsTemplateCreated(ctx, r, ac.UserID, ac.Tenant.ID, t.ID, t.Name)

	if respond.WantsJSON(r) {
		respond.JSON(w, http.StatusCreated, templateView{ID: t.ID.Hex(), Name: t.Name, Message: t.Message})
		return
	}
	respond.SeeOther(w, r, listURL)
}

// HandleDelete handles POST /app/settings/sms-templates/{id}/delete. Logs
// that reference the template keep its ID.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ac, _ := gates.FromRequest(r)

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Reject(w, r, http.StatusNotFound, MsgNotFound, listURL)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err = h.Templates.Delete(ctx, ac.Tenant.ID, id)
	if errors.Is(err, smstemplatestore.ErrNotFound) {
		h.ErrLog.Reject(w, r, http.StatusNotFound, MsgNotFound, listURL)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete sms template", err, MsgServerError, listURL)
		return
	}
	h.AuditLog.SmsTemplateDeleted(ctx, r, ac.UserID, ac.Tenant.ID, id)

	if respond.WantsJSON(r) {
		respond.JSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}
	respond.SeeOther(w, r, listURL)
}
