// internal/app/features/systemusers/new.go
package systemusers

import (
	"context"
	"errors"
	"net/http"

	membershipstore "github.com/ovibase/ovibase/internal/app/store/memberships"
	userstore "github.com/ovibase/ovibase/internal/app/store/users"
	"github.com/ovibase/ovibase/internal/app/system/authutil"
	"github.com/ovibase/ovibase/internal/app/system/authz"
	"github.com/ovibase/ovibase/internal/app/system/formutil"
	"github.com/ovibase/ovibase/internal/app/system/gates"
	"github.com/ovibase/ovibase/internal/app/system/htmlsanitize"
	"github.com/ovibase/ovibase/internal/app/system/respond"
	"github.com/ovibase/ovibase/internal/app/system/timeouts"
	"github.com/ovibase/ovibase/internal/domain/models"
	"go.uber.org/zap"
)

// HandleCreate handles POST /app/settings/users. The user is created
// globally when the email is new; an existing user keeps their password
// and is attached to this tenant.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ac, _ := gates.FromRequest(r)

	if err := formutil.Parse(w, r); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse staff form", err, MsgBadForm, listURL)
		return
	}

	name := htmlsanitize.PlainText(formutil.String(r, "name"))
	rawEmail := formutil.String(r, "email")
	password := formutil.String(r, "password")

	if rawEmail == "" {
		h.ErrLog.Reject(w, r, http.StatusBadRequest, MsgEmailRequired, listURL)
		return
	}
	email, err := authutil.ValidateEmail(rawEmail)
	if err != nil {
		h.ErrLog.Reject(w, r, http.StatusBadRequest, MsgEmailInvalid, listURL)
		return
	}
	email = userstore.NormalizeEmail(email)
	if password == "" {
		h.ErrLog.Reject(w, r, http.StatusBadRequest, MsgPasswordRequired, listURL)
		return
	}
	if err := authutil.ValidatePassword(password); err != nil {
		h.ErrLog.Reject(w, r, http.StatusBadRequest, err.Error(), listURL)
		return
	}
	role, ok := roleFromForm(r)
	if !ok {
		h.ErrLog.Reject(w, r, http.StatusBadRequest, MsgInvalidRole, listURL)
		return
	}
	if !authz.CanAssignRole(ac.Role, role) {
		h.ErrLog.Reject(w, r, http.StatusForbidden, MsgOwnerAssign, listURL)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	existing, err := h.Users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if _, err := h.Memberships.Get(ctx, existing.ID, ac.Tenant.ID); err == nil {
			h.ErrLog.Reject(w, r, http.StatusConflict, MsgAlreadyInTenant, listURL)
			return
		} else if !errors.Is(err, membershipstore.ErrNotFound) {
			h.ErrLog.LogServerError(w, r, "check membership", err, MsgServerError, listURL)
			return
		}
	case errors.Is(err, userstore.ErrNotFound):
		// new user
	default:
		h.ErrLog.LogServerError(w, r, "lookup user", err, MsgServerError, listURL)
		return
	}

	hash, err := authutil.HashPassword(password)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "hash password", err, MsgServerError, listURL)
		return
	}
	user, err := h.Users.UpsertByEmail(ctx, email, name, hash)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "upsert user", err, MsgServerError, listURL)
		return
	}

	f := flagsFromForm(r)
	m, err := h.Memberships.Create(ctx, models.Membership{
		UserID:        user.ID,
		TenantID:      ac.Tenant.ID,
		Role:          role,
		CanMembers:    f.Members,
		CanLeaders:    f.Leaders,
		CanAttendance: f.Attendance,
		CanFinance:    f.Finance,
		CanSMS:        f.SMS,
	})
	if errors.Is(err, membershipstore.ErrDuplicateMembership) {
		h.ErrLog.Reject(w, r, http.StatusConflict, MsgAlreadyInTenant, listURL)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create membership", err, MsgServerError, listURL)
		return
	}

	h.AuditLog.StaffCreated(ctx, r, ac.UserID, ac.Tenant.ID, user.ID, string(role))
	h.Log.Info("staff user added",
		zap.String("tenant", ac.Tenant.Slug),
		zap.String("user_id", user.ID.Hex()),
		zap.String("role", string(role)))

	if respond.WantsJSON(r) {
		respond.JSON(w, http.StatusCreated, newRow(m, user, ac.Role))
		return
	}
	respond.SeeOther(w, r, listURL)
}
