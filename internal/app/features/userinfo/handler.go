// internal/app/features/userinfo/handler.go
package userinfo

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/ovibase/ovibase/internal/app/store/users"
	"github.com/ovibase/ovibase/internal/app/system/auth"
	"github.com/ovibase/ovibase/internal/app/system/respond"
	"github.com/ovibase/ovibase/internal/app/system/timeouts"
	"github.com/ovibase/ovibase/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// UserGetter loads a user by ID.
type UserGetter interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
}

// Handler serves the identity behind the current session.
type Handler struct {
	Users UserGetter
	Log   *zap.Logger
}

// NewHandler creates a new userinfo handler.
func NewHandler(users UserGetter, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Log: logger}
}

type userView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type meResponse struct {
	User     *userView   `json:"user"`
	TenantID string      `json:"tenantId,omitempty"`
	Role     models.Role `json:"role,omitempty"`
}

// ServeMe returns the session's user, tenant and role.
//
// Response format:
//
//	{ "user": {"id","email","name"} | null, "tenantId": "...", "role": "..." }
//
// A missing or invalid session is not an error: it yields {"user": null}.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.CurrentClaims(r)
	if !ok {
		respond.JSON(w, http.StatusOK, meResponse{})
		return
	}

	resp := meResponse{TenantID: claims.TenantID, Role: claims.Role}
	if oid, err := primitive.ObjectIDFromHex(claims.UserID); err == nil {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()

		u, err := h.Users.GetByID(ctx, oid)
		switch {
		case err == nil:
			resp.User = &userView{ID: u.ID.Hex(), Email: u.Email, Name: u.Name}
		case errors.Is(err, userstore.ErrNotFound):
			// user deleted since the session was issued
		default:
			h.Log.Error("userinfo: load user", zap.Error(err))
			respond.Error(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
			return
		}
	}
	respond.JSON(w, http.StatusOK, resp)
}
