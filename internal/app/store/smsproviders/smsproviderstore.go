// internal/app/store/smsproviders/smsproviderstore.go
package smsproviderstore

import (
	"context"
	"errors"
	"time"

	"github.com/ovibase/ovibase/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound means the tenant has no SMS provider configured.
var ErrNotFound = errors.New("sms provider not configured")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("sms_provider_settings")}
}

// EnsureIndexes enforces one setting per tenant.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "tenant_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_sms_provider_settings_tenant"),
	})
	return err
}

// Get returns the tenant's setting.
func (s *Store) Get(ctx context.Context, tenantID primitive.ObjectID) (models.SmsProviderSetting, error) {
	var out models.SmsProviderSetting
	if err := s.c.FindOne(ctx, bson.M{"tenant_id": tenantID}).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.SmsProviderSetting{}, ErrNotFound
		}
		return models.SmsProviderSetting{}, err
	}
	return out, nil
}

// Upsert writes the tenant's setting. A nil sealedKey leaves any stored
// credential unchanged.
func (s *Store) Upsert(ctx context.Context, in models.SmsProviderSetting, sealedKey []byte) error {
	now := time.Now().UTC()
	set := bson.M{
		"provider":   in.Provider,
		"sender_id":  in.SenderID,
		"from":       in.From,
		"base_url":   in.BaseURL,
		"updated_at": now,
	}
	if sealedKey != nil {
		set["api_key_sealed"] = sealedKey
	}
	_, err := s.c.UpdateOne(ctx,
		bson.M{"tenant_id": in.TenantID},
		bson.M{
			"$set":         set,
			"$setOnInsert": bson.M{"_id": primitive.NewObjectID(), "created_at": now},
		},
		options.Update().SetUpsert(true))
	return err
}
