// internal/app/features/systemusers/list.go
package systemusers

import (
	"context"
	"net/http"

	"github.com/ovibase/ovibase/internal/app/system/gates"
	"github.com/ovibase/ovibase/internal/app/system/respond"
	"github.com/ovibase/ovibase/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeList handles GET /app/settings/users.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ac, _ := gates.FromRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ms, err := h.Memberships.ListByTenant(ctx, ac.Tenant.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list memberships", err, MsgServerError, "")
		return
	}
	ids := make([]primitive.ObjectID, 0, len(ms))
	for _, m := range ms {
		ids = append(ids, m.UserID)
	}
	users, err := h.Users.GetByIDs(ctx, ids)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load users", err, MsgServerError, "")
		return
	}

	data := listData{Users: make([]userRow, 0, len(ms)), Roles: assignableRoles(ac.Role)}
	for _, m := range ms {
		data.Users = append(data.Users, newRow(m, users[m.UserID], ac.Role))
	}
	respond.JSON(w, http.StatusOK, data)
}
