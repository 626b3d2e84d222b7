// internal/app/features/systemusers/handler.go
package systemusers

import (
	"context"

	uierrors "github.com/ovibase/ovibase/internal/app/features/errors"
	membershipstore "github.com/ovibase/ovibase/internal/app/store/memberships"
	"github.com/ovibase/ovibase/internal/app/system/auditlog"
	"github.com/ovibase/ovibase/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// MembershipStore is the membership surface staff management needs.
type MembershipStore interface {
	Get(ctx context.Context, userID, tenantID primitive.ObjectID) (models.Membership, error)
	GetByID(ctx context.Context, tenantID, id primitive.ObjectID) (models.Membership, error)
	ListByTenant(ctx context.Context, tenantID primitive.ObjectID) ([]models.Membership, error)
	Create(ctx context.Context, m models.Membership) (models.Membership, error)
	UpdatePermissions(ctx context.Context, tenantID, id primitive.ObjectID, role models.Role, f membershipstore.Flags) error
}

// UserStore is the global user surface staff management needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (models.User, error)
	UpsertByEmail(ctx context.Context, email, name, passwordHash string) (models.User, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error)
}

// Handler manages the staff accounts (user memberships) of a tenant.
type Handler struct {
	Memberships MembershipStore
	Users       UserStore
	Log         *zap.Logger
	ErrLog      *uierrors.ErrorLogger
	AuditLog    *auditlog.Logger
}

// NewHandler constructs the staff management handler.
func NewHandler(memberships MembershipStore, users UserStore, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Memberships: memberships,
		Users:       users,
		Log:         logger,
		ErrLog:      errLog,
		AuditLog:    audit,
	}
}
