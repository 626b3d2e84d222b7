package testutil

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/ovibase/ovibase/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateTenant inserts a tenant whose primary domain is slug.baseDomain.
func (f *Fixtures) CreateTenant(ctx context.Context, name, slug, baseDomain string) models.Tenant {
	f.t.Helper()

	now := time.Now().UTC()
	t := models.Tenant{
		ID:     primitive.NewObjectID(),
		Name:   name,
		NameCI: text.Fold(name),
		Slug:   slug,
		Domains: []models.TenantDomain{
			{Hostname: slug + "." + baseDomain, IsPrimary: true},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("tenants").InsertOne(ctx, t); err != nil {
		f.t.Fatalf("failed to create test tenant: %v", err)
	}
	return t
}

// CreateUser inserts a user with the given password hashed at the minimum
// bcrypt cost.
func (f *Fixtures) CreateUser(ctx context.Context, name, email, password string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("hash password: %v", err)
	}
	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         name,
		NameCI:       text.Fold(name),
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateMembership links a user to a tenant with the given role and flags.
func (f *Fixtures) CreateMembership(ctx context.Context, userID, tenantID primitive.ObjectID, role models.Role, sms bool) models.Membership {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Membership{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		TenantID:  tenantID,
		Role:      role,
		CanSMS:    sms,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("user_tenants").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test membership: %v", err)
	}
	return m
}

// CreateMember inserts a congregation member.
func (f *Fixtures) CreateMember(ctx context.Context, tenantID primitive.ObjectID, first, last, mobile string) models.Member {
	f.t.Helper()

	m := models.Member{
		ID:           primitive.NewObjectID(),
		TenantID:     tenantID,
		FirstName:    first,
		LastName:     last,
		MobileNumber: mobile,
	}
	if _, err := f.db.Collection("members").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test member: %v", err)
	}
	return m
}

// CreateSmsTemplate inserts a template.
func (f *Fixtures) CreateSmsTemplate(ctx context.Context, tenantID primitive.ObjectID, name, message string) models.SmsTemplate {
	f.t.Helper()

	now := time.Now().UTC()
	tpl := models.SmsTemplate{
		ID:        primitive.NewObjectID(),
		TenantID:  tenantID,
		Name:      name,
		NameCI:    text.Fold(name),
		Message:   message,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("sms_templates").InsertOne(ctx, tpl); err != nil {
		f.t.Fatalf("failed to create test template: %v", err)
	}
	return tpl
}
