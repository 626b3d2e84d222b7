// internal/app/features/sms/send.go
package sms

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	smstemplatestore "github.com/ovibase/ovibase/internal/app/store/smstemplates"
	"github.com/ovibase/ovibase/internal/app/system/authz"
	"github.com/ovibase/ovibase/internal/app/system/formutil"
	"github.com/ovibase/ovibase/internal/app/system/gates"
	"github.com/ovibase/ovibase/internal/app/system/htmlsanitize"
	"github.com/ovibase/ovibase/internal/app/system/limits"
	"github.com/ovibase/ovibase/internal/app/system/navigation"
	"github.com/ovibase/ovibase/internal/app/system/respond"
	smsengine "github.com/ovibase/ovibase/internal/app/system/sms"
	"github.com/ovibase/ovibase/internal/app/system/timeouts"
	"github.com/ovibase/ovibase/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleSend handles POST /app/sms/send: the template goes to the selected
// members that have a mobile number.
func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	ac, _ := gates.FromRequest(r)

	if err := formutil.Parse(w, r); err != nil {
		h.fail(w, r, dashboardURL, MsgBadForm)
		return
	}
	back := navigation.SafeBackURL(r, navigation.DashboardBackURL)
	templateID, ok := parseTemplateID(r)
	if !ok {
		h.fail(w, r, back, MsgChooseTemplate)
		return
	}
	rawIDs := formutil.List(r, "memberIds")
	if len(rawIDs) == 0 {
		h.fail(w, r, back, MsgSelectMembers)
		return
	}
	if len(rawIDs) > limits.MaxMemberIDs {
		h.fail(w, r, back, MsgTooManyMembers)
		return
	}
	memberIDs := make([]primitive.ObjectID, 0, len(rawIDs))
	for _, s := range rawIDs {
		// Unknown ids select nobody.
		if id, err := primitive.ObjectIDFromHex(s); err == nil {
			memberIDs = append(memberIDs, id)
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "sms bulk send")
	defer cancel()

	tpl, ok := h.loadTemplate(ctx, w, r, ac, templateID, back)
	if !ok {
		return
	}
	members, err := h.Members.ListWithMobile(ctx, ac.Tenant.ID, memberIDs)
	if err != nil {
		h.Log.Error("list members for sms", zap.Error(err))
		h.fail(w, r, back, MsgServerError)
		return
	}
	if len(members) == 0 {
		h.fail(w, r, back, MsgNoMobiles)
		return
	}

	res, ok := h.dispatch(ctx, w, r, ac, tpl, members, "template:"+tpl.ID.Hex(), formutil.String(r, "event"), back)
	if !ok {
		return
	}
	h.outcome(w, r, back, res, tpl.Name)
}

// HandleSendAll handles POST /app/members/sms: the template goes to every
// member of the tenant with a mobile number.
func (h *Handler) HandleSendAll(w http.ResponseWriter, r *http.Request) {
	ac, _ := gates.FromRequest(r)

	if err := formutil.Parse(w, r); err != nil {
		h.fail(w, r, membersURL, MsgBadForm)
		return
	}
	back := navigation.SafeBackURL(r, navigation.MembersBackURL)
	templateID, ok := parseTemplateID(r)
	if !ok {
		h.fail(w, r, back, MsgChooseTemplate)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "sms send to all members")
	defer cancel()

	tpl, ok := h.loadTemplate(ctx, w, r, ac, templateID, back)
	if !ok {
		return
	}
	members, err := h.Members.ListAllWithMobile(ctx, ac.Tenant.ID)
	if err != nil {
		h.Log.Error("list all members for sms", zap.Error(err))
		h.fail(w, r, back, MsgServerError)
		return
	}
	if len(members) == 0 {
		h.fail(w, r, back, MsgNoMobiles)
		return
	}

	res, ok := h.dispatch(ctx, w, r, ac, tpl, members, "members:all:"+tpl.ID.Hex(), formutil.String(r, "event"), back)
	if !ok {
		return
	}
	h.outcome(w, r, back, res, "")
}

// parseTemplateID reports whether a template was chosen at all. A chosen
// id that is not a valid ObjectID comes back as NilObjectID.
func parseTemplateID(r *http.Request) (primitive.ObjectID, bool) {
	raw := formutil.String(r, "templateId")
	if raw == "" {
		return primitive.NilObjectID, false
	}
	id, _ := primitive.ObjectIDFromHex(raw)
	return id, true
}

func (h *Handler) loadTemplate(ctx context.Context, w http.ResponseWriter, r *http.Request, ac authz.Context, id primitive.ObjectID, back string) (models.SmsTemplate, bool) {
	if id.IsZero() {
		h.fail(w, r, back, MsgTemplateNotFound)
		return models.SmsTemplate{}, false
	}
	tpl, err := h.Templates.Get(ctx, ac.Tenant.ID, id)
	if errors.Is(err, smstemplatestore.ErrNotFound) {
		h.fail(w, r, back, MsgTemplateNotFound)
		return models.SmsTemplate{}, false
	}
	if err != nil {
		h.Log.Error("load sms template", zap.Error(err), zap.String("template_id", id.Hex()))
		h.fail(w, r, back, MsgServerError)
		return models.SmsTemplate{}, false
	}
	return tpl, true
}

// dispatch renders, sends and records one batch.
func (h *Handler) dispatch(ctx context.Context, w http.ResponseWriter, r *http.Request, ac authz.Context, tpl models.SmsTemplate, members []models.Member, tag, event, back string) (smsengine.Result, bool) {
	event = htmlsanitize.PlainText(event)
	msgs := make([]smsengine.Message, len(members))
	for i, m := range members {
		msgs[i] = smsengine.Message{
			To:   m.MobileNumber,
			Body: smsengine.Render(tpl.Message, smsengine.VarsFor(m, event)),
		}
	}

	res, err := h.Sender.Send(ctx, ac.Tenant.ID, msgs)
	if err != nil {
		h.Log.Error("sms dispatch", zap.Error(err), zap.String("tenant_id", ac.Tenant.ID.Hex()))
		h.fail(w, r, back, MsgServerError)
		return res, false
	}

	batch := uuid.NewString()
	logs := make([]models.SmsLog, len(members))
	for i, m := range members {
		tplID, memberID := tpl.ID, m.ID
		row := models.SmsLog{
			TenantID:   ac.Tenant.ID,
			TemplateID: &tplID,
			MemberID:   &memberID,
			To:         msgs[i].To,
			Message:    msgs[i].Body,
			Tag:        tag,
			Batch:      batch,
			Provider:   res.Provider,
			Status:     models.SmsSent,
		}
		if f, failed := res.FailureAt(i); failed {
			row.Status = models.SmsFailed
			row.Error = f.Error
		}
		logs[i] = row
	}
	if err := h.Logs.InsertMany(ctx, logs); err != nil {
		h.Log.Warn("sms log write failed", zap.Error(err), zap.String("batch", batch))
	}

	h.Log.Info("sms batch sent",
		zap.String("tenant_id", ac.Tenant.ID.Hex()),
		zap.String("template", tpl.Name),
		zap.String("batch", batch),
		zap.String("provider", string(res.Provider)),
		zap.Int("attempted", res.Attempted),
		zap.Int("sent", res.Sent),
		zap.Int("failed", res.Failed),
	)
	h.AuditLog.SmsBatchSent(ctx, r, ac.UserID, ac.Tenant.ID, batch, tag, res.Attempted, res.Sent, res.Failed)
	return res, true
}

func (h *Handler) outcome(w http.ResponseWriter, r *http.Request, back string, res smsengine.Result, templateName string) {
	if respond.WantsJSON(r) {
		respond.JSON(w, http.StatusOK, res)
		return
	}
	q := url.Values{}
	if res.Failed > 0 {
		q.Set("sms", "partial")
		q.Set("sent", strconv.Itoa(res.Sent))
		q.Set("failed", strconv.Itoa(res.Failed))
	} else {
		q.Set("sms", "sent")
		q.Set("count", strconv.Itoa(res.Sent))
	}
	if templateName != "" {
		q.Set("template", templateName)
	}
	respond.SeeOther(w, r, respond.WithQuery(back, q))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, back, msg string) {
	if respond.WantsJSON(r) {
		status := http.StatusBadRequest
		switch msg {
		case MsgTemplateNotFound:
			status = http.StatusNotFound
		case MsgServerError:
			status = http.StatusInternalServerError
		}
		respond.Error(w, status, msg)
		return
	}
	respond.SeeOther(w, r, respond.WithQuery(back, url.Values{"error": {msg}}))
}
