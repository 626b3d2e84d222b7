// internal/app/features/auditlog/handler.go
package auditlog

import (
	"context"

	uierrors "github.com/ovibase/ovibase/internal/app/features/errors"
	"github.com/ovibase/ovibase/internal/app/store/audit"
	"github.com/ovibase/ovibase/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// EventStore reads audit events. *audit.Store satisfies it.
type EventStore interface {
	Query(ctx context.Context, filter audit.QueryFilter) ([]audit.Event, error)
	CountByFilter(ctx context.Context, filter audit.QueryFilter) (int64, error)
}

// UserNames resolves actor and target ids for display.
type UserNames interface {
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error)
}

type Handler struct {
	Events EventStore
	Users  UserNames
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

// NewHandler constructs the tenant audit log handler.
func NewHandler(events EventStore, users UserNames, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Events: events,
		Users:  users,
		Log:    logger,
		ErrLog: errLog,
	}
}
