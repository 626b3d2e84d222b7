// internal/app/store/smstemplates/smstemplatestore.go
package smstemplatestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/ovibase/ovibase/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("sms template not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("sms_templates")}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "name_ci", Value: 1}},
		Options: options.Index().SetName("idx_sms_templates_tenant_name"),
	})
	return err
}

// Create inserts a template.
func (s *Store) Create(ctx context.Context, t models.SmsTemplate) (models.SmsTemplate, error) {
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	t.Name = strings.TrimSpace(t.Name)
	t.NameCI = text.Fold(t.Name)
	t.CreatedAt = now
	t.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.SmsTemplate{}, err
	}
	return t, nil
}

// Get loads a template, scoped to tenantID.
func (s *Store) Get(ctx context.Context, tenantID, id primitive.ObjectID) (models.SmsTemplate, error) {
	var t models.SmsTemplate
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "tenant_id": tenantID}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.SmsTemplate{}, ErrNotFound
		}
		return models.SmsTemplate{}, err
	}
	return t, nil
}

// List returns the tenant's templates ordered by name.
func (s *Store) List(ctx context.Context, tenantID primitive.ObjectID) ([]models.SmsTemplate, error) {
	cur, err := s.c.Find(ctx, bson.M{"tenant_id": tenantID},
		options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.SmsTemplate
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a template in tenantID.
func (s *Store) Delete(ctx context.Context, tenantID, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "tenant_id": tenantID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
