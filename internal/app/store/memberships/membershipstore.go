// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/ovibase/ovibase/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("user_tenants")}
}

var (
	ErrDuplicateMembership = errors.New("user is already a member of this workspace")
	ErrNotFound            = errors.New("membership not found")
	errBadRole             = errors.New(`role must be OWNER, ADMIN, STAFF or VIEWER`)
)

// Flags holds the five capability flags.
type Flags struct {
	Members    bool
	Leaders    bool
	Attendance bool
	Finance    bool
	SMS        bool
}

// EnsureIndexes creates the (user_id, tenant_id) uniqueness constraint.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "tenant_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_user_tenants_user_tenant"),
		},
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "role", Value: 1}},
			Options: options.Index().SetName("idx_user_tenants_tenant_role"),
		},
	})
	return err
}

// Create inserts a membership.
func (s *Store) Create(ctx context.Context, m models.Membership) (models.Membership, error) {
	if _, ok := models.ParseRole(string(m.Role)); !ok {
		return models.Membership{}, errBadRole
	}
	now := time.Now().UTC()
	m.ID = primitive.NewObjectID()
	m.CreatedAt = now
	m.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Membership{}, ErrDuplicateMembership
		}
		return models.Membership{}, err
	}
	return m, nil
}

// Get returns the membership for (userID, tenantID).
func (s *Store) Get(ctx context.Context, userID, tenantID primitive.ObjectID) (models.Membership, error) {
	return s.findOne(ctx, bson.M{"user_id": userID, "tenant_id": tenantID})
}

// GetByID returns a membership by ID, scoped to tenantID.
func (s *Store) GetByID(ctx context.Context, tenantID, id primitive.ObjectID) (models.Membership, error) {
	return s.findOne(ctx, bson.M{"_id": id, "tenant_id": tenantID})
}

// ListByTenant returns every membership in a tenant.
func (s *Store) ListByTenant(ctx context.Context, tenantID primitive.ObjectID) ([]models.Membership, error) {
	cur, err := s.c.Find(ctx, bson.M{"tenant_id": tenantID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Membership
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdatePermissions sets role and flags on a membership in tenantID.
func (s *Store) UpdatePermissions(ctx context.Context, tenantID, id primitive.ObjectID, role models.Role, f Flags) error {
	if _, ok := models.ParseRole(string(role)); !ok {
		return errBadRole
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "tenant_id": tenantID},
		bson.M{"$set": bson.M{
			"role":           role,
			"can_members":    f.Members,
			"can_leaders":    f.Leaders,
			"can_attendance": f.Attendance,
			"can_finance":    f.Finance,
			"can_sms":        f.SMS,
			"updated_at":     time.Now().UTC(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.Membership, error) {
	var m models.Membership
	if err := s.c.FindOne(ctx, filter).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Membership{}, ErrNotFound
		}
		return models.Membership{}, err
	}
	return m, nil
}
