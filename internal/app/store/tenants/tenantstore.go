// internal/app/store/tenants/tenantstore.go
package tenantstore

import (
	"context"
	"errors"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/ovibase/ovibase/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateSlug = errors.New("a workspace with this slug already exists")
	ErrNotFound      = errors.New("workspace not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tenants")}
}

// EnsureIndexes creates the unique slug index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_tenants_slug"),
		},
		{
			Keys:    bson.D{{Key: "domains.hostname", Value: 1}},
			Options: options.Index().SetName("idx_tenants_domains_hostname"),
		},
	})
	return err
}

// Create inserts a tenant. The slug must already be clean.
func (s *Store) Create(ctx context.Context, t models.Tenant) (models.Tenant, error) {
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	t.Name = strings.TrimSpace(t.Name)
	t.NameCI = text.Fold(t.Name)
	t.CreatedAt = now
	t.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Tenant{}, ErrDuplicateSlug
		}
		return models.Tenant{}, err
	}
	return t, nil
}

// GetByID retrieves a tenant by its ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Tenant, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetBySlug retrieves a tenant by its slug.
func (s *Store) GetBySlug(ctx context.Context, slug string) (models.Tenant, error) {
	return s.findOne(ctx, bson.M{"slug": slug})
}

// SlugExists reports whether slug is taken.
func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"slug": slug}, options.Count().SetLimit(1))
	return n > 0, err
}

// Delete removes a tenant. Used to roll back a failed signup.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.Tenant, error) {
	var t models.Tenant
	if err := s.c.FindOne(ctx, filter).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Tenant{}, ErrNotFound
		}
		return models.Tenant{}, err
	}
	return t, nil
}
