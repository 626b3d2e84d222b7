// internal/app/store/smslogs/smslogstore.go
package smslogstore

import (
	"context"
	"time"

	"github.com/ovibase/ovibase/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is append-only; there is no update or delete.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("sms_logs")}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_sms_logs_tenant_created"),
		},
		{
			Keys:    bson.D{{Key: "batch", Value: 1}},
			Options: options.Index().SetName("idx_sms_logs_batch"),
		},
	})
	return err
}

// InsertMany appends log rows, stamping IDs and timestamps.
func (s *Store) InsertMany(ctx context.Context, logs []models.SmsLog) error {
	if len(logs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(logs))
	for _, l := range logs {
		if l.ID.IsZero() {
			l.ID = primitive.NewObjectID()
		}
		if l.CreatedAt.IsZero() {
			l.CreatedAt = now
		}
		docs = append(docs, l)
	}
	_, err := s.c.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	return err
}

// List returns one page of a tenant's log rows, newest first. A non-empty
// batch narrows the page to that send.
func (s *Store) List(ctx context.Context, tenantID primitive.ObjectID, batch string, offset, limit int64) ([]models.SmsLog, error) {
	filter := bson.M{"tenant_id": tenantID}
	if batch != "" {
		filter["batch"] = batch
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(offset).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.SmsLog
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
