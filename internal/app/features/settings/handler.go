// internal/app/features/settings/handler.go
package settings

import (
	"context"

	uierrors "github.com/ovibase/ovibase/internal/app/features/errors"
	"github.com/ovibase/ovibase/internal/app/system/auditlog"
	"github.com/ovibase/ovibase/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ProviderStore persists the per-tenant SMS gateway setting.
type ProviderStore interface {
	Get(ctx context.Context, tenantID primitive.ObjectID) (models.SmsProviderSetting, error)
	Upsert(ctx context.Context, in models.SmsProviderSetting, sealedKey []byte) error
}

// Sealer encrypts credentials before they are stored. secrets.Cipher
// satisfies it.
type Sealer interface {
	Seal(plaintext string) ([]byte, error)
}

// Handler owns the admin-facing settings pages.
type Handler struct {
	Providers ProviderStore
	Cipher    Sealer
	Log       *zap.Logger
	ErrLog    *uierrors.ErrorLogger
	AuditLog  *auditlog.Logger
}

// NewHandler constructs a settings Handler.
func NewHandler(providers ProviderStore, cipher Sealer, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Providers: providers,
		Cipher:    cipher,
		Log:       logger,
		ErrLog:    errLog,
		AuditLog:  audit,
	}
}
