// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ovibase/ovibase/internal/app/store/audit"
	memberstore "github.com/ovibase/ovibase/internal/app/store/members"
	membershipstore "github.com/ovibase/ovibase/internal/app/store/memberships"
	smslogstore "github.com/ovibase/ovibase/internal/app/store/smslogs"
	smsproviderstore "github.com/ovibase/ovibase/internal/app/store/smsproviders"
	smstemplatestore "github.com/ovibase/ovibase/internal/app/store/smstemplates"
	tenantstore "github.com/ovibase/ovibase/internal/app/store/tenants"
	userstore "github.com/ovibase/ovibase/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type ensurer interface {
	EnsureIndexes(ctx context.Context) error
}

type target struct {
	name  string
	store ensurer
}

func targets(db *mongo.Database) []target {
	return []target{
		{"tenants", tenantstore.New(db)},
		{"users", userstore.New(db)},
		{"user_tenants", membershipstore.New(db)},
		{"members", memberstore.New(db)},
		{"sms_provider_settings", smsproviderstore.New(db)},
		{"sms_templates", smstemplatestore.New(db)},
		{"sms_logs", smslogstore.New(db)},
		{"audit_events", audit.New(db)},
	}
}

/*
EnsureAll is called at startup. Each store's EnsureIndexes is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	for _, t := range targets(db) {
		start := time.Now()
		if err := t.store.EnsureIndexes(ctx); err != nil {
			zap.L().Warn("ensure indexes failed",
				zap.String("collection", t.name),
				zap.Error(err))
			problems = append(problems, t.name+": "+err.Error())
			continue
		}
		zap.L().Info("indexes ensured",
			zap.String("collection", t.name),
			zap.String("took", time.Since(start).String()))
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
