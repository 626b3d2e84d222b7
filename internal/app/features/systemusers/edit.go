// internal/app/features/systemusers/edit.go
package systemusers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	membershipstore "github.com/ovibase/ovibase/internal/app/store/memberships"
	"github.com/ovibase/ovibase/internal/app/system/authz"
	"github.com/ovibase/ovibase/internal/app/system/formutil"
	"github.com/ovibase/ovibase/internal/app/system/gates"
	"github.com/ovibase/ovibase/internal/app/system/respond"
	"github.com/ovibase/ovibase/internal/app/system/timeouts"
	"github.com/ovibase/ovibase/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// loadMembership resolves {id} inside the caller's tenant. It writes the
// error response itself and reports false when there is nothing to edit.
func (h *Handler) loadMembership(ctx context.Context, w http.ResponseWriter, r *http.Request, tenantID primitive.ObjectID) (models.Membership, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Reject(w, r, http.StatusNotFound, MsgNotFound, listURL)
		return models.Membership{}, false
	}
	m, err := h.Memberships.GetByID(ctx, tenantID, id)
	if errors.Is(err, membershipstore.ErrNotFound) {
		h.ErrLog.Reject(w, r, http.StatusNotFound, MsgNotFound, listURL)
		return models.Membership{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load membership", err, MsgServerError, listURL)
		return models.Membership{}, false
	}
	return m, true
}

// ServeEdit handles GET /app/settings/users/{id}.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	ac, _ := gates.FromRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, ok := h.loadMembership(ctx, w, r, ac.Tenant.ID)
	if !ok {
		return
	}
	users, err := h.Users.GetByIDs(ctx, []primitive.ObjectID{m.UserID})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load user", err, MsgServerError, listURL)
		return
	}
	respond.JSON(w, http.StatusOK, editData{
		User:  newRow(m, users[m.UserID], ac.Role),
		Roles: assignableRoles(ac.Role),
	})
}

// HandleUpdate handles POST /app/settings/users/{id}: role and all five
// flags are replaced from the form. Only an OWNER may touch an OWNER or
// grant the OWNER role.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ac, _ := gates.FromRequest(r)

	if err := formutil.Parse(w, r); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse permissions form", err, MsgBadForm, listURL)
		return
	}
	role, ok := roleFromForm(r)
	if !ok {
		h.ErrLog.Reject(w, r, http.StatusBadRequest, MsgInvalidRole, listURL)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, ok := h.loadMembership(ctx, w, r, ac.Tenant.ID)
	if !ok {
		return
	}
	if !authz.CanEditMembership(ac.Role, m.Role) {
		h.ErrLog.Reject(w, r, http.StatusForbidden, MsgOwnerOnly, listURL)
		return
	}
	if !authz.CanAssignRole(ac.Role, role) {
		h.ErrLog.Reject(w, r, http.StatusForbidden, MsgOwnerAssign, listURL)
		return
	}

	err := h.Memberships.UpdatePermissions(ctx, ac.Tenant.ID, m.ID, role, flagsFromForm(r))
	if errors.Is(err, membershipstore.ErrNotFound) {
		h.ErrLog.Reject(w, r, http.StatusNotFound, MsgNotFound, listURL)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "update permissions", err, MsgServerError, listURL)
		return
	}

	h.AuditLog.PermissionsUpdated(ctx, r, ac.UserID, ac.Tenant.ID, m.UserID, string(role))
	h.Log.Info("permissions updated",
		zap.String("tenant", ac.Tenant.Slug),
		zap.String("membership_id", m.ID.Hex()),
		zap.String("role", string(role)))

	if respond.WantsJSON(r) {
		respond.JSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}
	respond.SeeOther(w, r, listURL)
}
