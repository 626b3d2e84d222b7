// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/ovibase/ovibase/internal/app/system/auditlog"
	"github.com/ovibase/ovibase/internal/app/system/auth"
	"github.com/ovibase/ovibase/internal/app/system/authz"
	"github.com/ovibase/ovibase/internal/app/system/respond"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		AuditLog:   audit,
	}
}

// ServeLogout handles GET and POST /logout. The cookie is always cleared,
// even when it no longer verifies.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.CurrentClaims(r)
	if !ok {
		if token := h.SessionMgr.Token(r); token != "" {
			claims, ok = h.SessionMgr.Codec().Verify(token)
		}
	}
	if ok {
		h.AuditLog.Logout(r.Context(), r, claims.UserID, claims.TenantID)
		h.Log.Info("logout", zap.String("user_id", claims.UserID))
	}

	h.SessionMgr.Clear(w)
	respond.SeeOther(w, r, authz.LoginPath)
}
