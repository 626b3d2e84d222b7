package indexes_test

import (
	"context"
	"testing"

	"github.com/ovibase/ovibase/internal/app/system/indexes"
	"github.com/ovibase/ovibase/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func indexNames(ctx context.Context, t *testing.T, coll *mongo.Collection) map[string]bool {
	t.Helper()
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes failed: %v", err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	return names
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesNamedIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	expected := map[string][]string{
		"tenants":               {"uniq_tenants_slug", "idx_tenants_domains_hostname"},
		"users":                 {"uniq_users_email"},
		"user_tenants":          {"uniq_user_tenants_user_tenant", "idx_user_tenants_tenant_role"},
		"members":               {"idx_members_tenant_last_name"},
		"sms_provider_settings": {"uniq_sms_provider_settings_tenant"},
		"sms_templates":         {"idx_sms_templates_tenant_name"},
		"sms_logs":              {"idx_sms_logs_tenant_created", "idx_sms_logs_batch"},
		"audit_events":          {"idx_audit_tenant_time", "idx_audit_user_time", "idx_audit_category_type_time"},
	}
	for coll, want := range expected {
		got := indexNames(ctx, t, db.Collection(coll))
		for _, name := range want {
			if !got[name] {
				t.Errorf("expected index %q to exist on %s collection", name, coll)
			}
		}
	}
}

func TestEnsureAll_UniqueIndexEnforced(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	userID, tenantID := primitive.NewObjectID(), primitive.NewObjectID()
	_, err := db.Collection("user_tenants").InsertOne(ctx, bson.M{"user_id": userID, "tenant_id": tenantID, "role": "STAFF"})
	if err != nil {
		t.Fatalf("Insert membership failed: %v", err)
	}
	_, err = db.Collection("user_tenants").InsertOne(ctx, bson.M{"user_id": userID, "tenant_id": tenantID, "role": "ADMIN"})
	if err == nil {
		t.Error("expected duplicate key error for unique (user_id, tenant_id)")
	}
}
