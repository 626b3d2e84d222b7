// internal/app/store/members/memberstore.go
package memberstore

import (
	"context"

	"github.com/ovibase/ovibase/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store reads congregation members for SMS addressing.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("members")}
}

// EnsureIndexes creates the tenant lookup index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "last_name", Value: 1}},
		Options: options.Index().SetName("idx_members_tenant_last_name"),
	})
	return err
}

// hasMobile matches members whose mobile_number is present and non-empty.
var hasMobile = bson.M{"$exists": true, "$nin": bson.A{"", nil}}

// ListWithMobile returns the given members of tenantID that have a mobile
// number. IDs outside the tenant are silently ignored.
func (s *Store) ListWithMobile(ctx context.Context, tenantID primitive.ObjectID, ids []primitive.ObjectID) ([]models.Member, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.find(ctx, bson.M{
		"tenant_id":     tenantID,
		"_id":           bson.M{"$in": ids},
		"mobile_number": hasMobile,
	})
}

// ListAllWithMobile returns every member of tenantID with a mobile number.
func (s *Store) ListAllWithMobile(ctx context.Context, tenantID primitive.ObjectID) ([]models.Member, error) {
	return s.find(ctx, bson.M{"tenant_id": tenantID, "mobile_number": hasMobile})
}

// Create inserts a member. Used by fixtures and imports.
func (s *Store) Create(ctx context.Context, m models.Member) (models.Member, error) {
	m.ID = primitive.NewObjectID()
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Member{}, err
	}
	return m, nil
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Member, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{
		{Key: "last_name", Value: 1}, {Key: "first_name", Value: 1},
	}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Member
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
