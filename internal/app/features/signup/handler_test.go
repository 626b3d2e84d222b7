package signup_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/ovibase/ovibase/internal/app/features/signup"
	tenantstore "github.com/ovibase/ovibase/internal/app/store/tenants"
	userstore "github.com/ovibase/ovibase/internal/app/store/users"
	"github.com/ovibase/ovibase/internal/app/system/auth"
	"github.com/ovibase/ovibase/internal/app/system/authutil"
	"github.com/ovibase/ovibase/internal/domain/models"
	"github.com/ovibase/ovibase/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeTenants struct {
	rows      map[string]models.Tenant
	createErr error
}

func (f *fakeTenants) SlugExists(_ context.Context, slug string) (bool, error) {
	_, ok := f.rows[slug]
	return ok, nil
}

func (f *fakeTenants) Create(_ context.Context, t models.Tenant) (models.Tenant, error) {
	if f.createErr != nil {
		return models.Tenant{}, f.createErr
	}
	t.ID = primitive.NewObjectID()
	f.rows[t.Slug] = t
	return t, nil
}

func (f *fakeTenants) Delete(_ context.Context, id primitive.ObjectID) error {
	for slug, t := range f.rows {
		if t.ID == id {
			delete(f.rows, slug)
		}
	}
	return nil
}

type fakeUsers struct {
	rows map[string]models.User
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (models.User, error) {
	u, ok := f.rows[email]
	if !ok {
		return models.User{}, userstore.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) Create(_ context.Context, u models.User) (models.User, error) {
	if _, ok := f.rows[u.Email]; ok {
		return models.User{}, userstore.ErrDuplicateEmail
	}
	u.ID = primitive.NewObjectID()
	f.rows[u.Email] = u
	return u, nil
}

func (f *fakeUsers) Delete(_ context.Context, id primitive.ObjectID) error {
	for email, u := range f.rows {
		if u.ID == id {
			delete(f.rows, email)
		}
	}
	return nil
}

type fakeMemberships struct {
	rows []models.Membership
	err  error
}

func (f *fakeMemberships) Create(_ context.Context, m models.Membership) (models.Membership, error) {
	if f.err != nil {
		return models.Membership{}, f.err
	}
	m.ID = primitive.NewObjectID()
	f.rows = append(f.rows, m)
	return m, nil
}

type fixture struct {
	handler     *signup.Handler
	sessions    *auth.SessionManager
	tenants     *fakeTenants
	users       *fakeUsers
	memberships *fakeMemberships
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		sessions:    testutil.NewSessionManager(t),
		tenants:     &fakeTenants{rows: map[string]models.Tenant{}},
		users:       &fakeUsers{rows: map[string]models.User{}},
		memberships: &fakeMemberships{},
	}
	f.handler = signup.NewHandler(f.tenants, f.users, f.memberships, nil, f.sessions, nil, "", zap.NewNop())
	return f
}

const validBody = `{"tenantName":"Grace Chapel","tenantSlug":"grace","fullName":"Ada Lovelace","email":"Ada@Example.com","password":"secret1"}`

func post(f *fixture, body string) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	f.handler.HandleSignup(rec, testutil.NewJSONRequest(http.MethodPost, "/api/auth/signup", body))
	return rec
}

func TestHandleSignup_CreatesTenantOwnerAndSession(t *testing.T) {
	f := newFixture(t)

	rec := post(f, validBody)

	rec.AssertStatus(t, http.StatusOK)
	var resp struct {
		OK     bool `json:"ok"`
		Tenant struct {
			ID   string `json:"id"`
			Slug string `json:"slug"`
			Name string `json:"name"`
		} `json:"tenant"`
		User struct {
			ID    string `json:"id"`
			Email string `json:"email"`
			Name  string `json:"name"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.OK || resp.Tenant.Slug != "grace" || resp.Tenant.Name != "Grace Chapel" {
		t.Errorf("unexpected tenant in response: %+v", resp)
	}
	if resp.User.Email != "ada@example.com" || resp.User.Name != "Ada Lovelace" {
		t.Errorf("unexpected user in response: %+v", resp.User)
	}

	tenant := f.tenants.rows["grace"]
	if got := tenant.PrimaryHost(); got != "grace.ovibase.com" {
		t.Errorf("primary host = %q, want grace.ovibase.com", got)
	}
	user := f.users.rows["ada@example.com"]
	if !authutil.CheckPassword("secret1", user.PasswordHash) {
		t.Error("stored hash does not match the password")
	}
	if len(f.memberships.rows) != 1 || f.memberships.rows[0].Role != models.RoleOwner {
		t.Fatalf("expected one OWNER membership, got %+v", f.memberships.rows)
	}

	c := testutil.SessionCookie(rec.ResponseRecorder, f.sessions)
	if c == nil {
		t.Fatal("expected a session cookie")
	}
	claims, ok := f.sessions.Codec().Verify(c.Value)
	if !ok || claims.Role != models.RoleOwner || claims.TenantID != resp.Tenant.ID || claims.UserID != resp.User.ID {
		t.Errorf("unexpected claims %+v (ok=%v)", claims, ok)
	}
}

func TestHandleSignup_UsesConfiguredBaseDomain(t *testing.T) {
	f := newFixture(t)
	f.handler.BaseDomain = "Church.Example"

	post(f, validBody).AssertStatus(t, http.StatusOK)

	if got := f.tenants.rows["grace"].PrimaryHost(); got != "grace.church.example" {
		t.Errorf("primary host = %q, want grace.church.example", got)
	}
}

func TestHandleSignup_Conflicts(t *testing.T) {
	t.Run("slug taken", func(t *testing.T) {
		f := newFixture(t)
		f.tenants.rows["grace"] = models.Tenant{ID: primitive.NewObjectID(), Slug: "grace"}

		rec := post(f, validBody)
		rec.AssertStatus(t, http.StatusConflict)
		rec.AssertContains(t, signup.MsgSlugTaken)
	})

	t.Run("email taken", func(t *testing.T) {
		f := newFixture(t)
		f.users.rows["ada@example.com"] = models.User{ID: primitive.NewObjectID(), Email: "ada@example.com"}

		rec := post(f, validBody)
		rec.AssertStatus(t, http.StatusConflict)
		rec.AssertContains(t, signup.MsgEmailTaken)
		if len(f.tenants.rows) != 0 {
			t.Error("no tenant should be created")
		}
	})

	t.Run("slug race", func(t *testing.T) {
		f := newFixture(t)
		f.tenants.createErr = tenantstore.ErrDuplicateSlug

		rec := post(f, validBody)
		rec.AssertStatus(t, http.StatusConflict)
		rec.AssertContains(t, signup.MsgSlugTaken)
	})
}

func TestHandleSignup_RollsBackOnFailure(t *testing.T) {
	f := newFixture(t)
	f.memberships.err = errors.New("write failed")

	rec := post(f, validBody)

	rec.AssertStatus(t, http.StatusInternalServerError)
	if len(f.tenants.rows) != 0 || len(f.users.rows) != 0 {
		t.Errorf("partial signup left behind: tenants=%d users=%d", len(f.tenants.rows), len(f.users.rows))
	}
	if testutil.SessionCookie(rec.ResponseRecorder, f.sessions) != nil {
		t.Error("no session should be issued")
	}
}

func TestHandleSignup_Validation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"short tenant name", `{"tenantName":"G","tenantSlug":"grace","fullName":"Ada L","email":"a@b.co","password":"secret1"}`, "tenantName"},
		{"bad slug", `{"tenantName":"Grace","tenantSlug":"Grace Chapel","fullName":"Ada L","email":"a@b.co","password":"secret1"}`, "tenantSlug"},
		{"short slug", `{"tenantName":"Grace","tenantSlug":"g","fullName":"Ada L","email":"a@b.co","password":"secret1"}`, "tenantSlug"},
		{"markup-only name", `{"tenantName":"Grace","tenantSlug":"grace","fullName":"<b></b>","email":"a@b.co","password":"secret1"}`, "fullName"},
		{"bad email", `{"tenantName":"Grace","tenantSlug":"grace","fullName":"Ada L","email":"nope","password":"secret1"}`, "email"},
		{"short password", `{"tenantName":"Grace","tenantSlug":"grace","fullName":"Ada L","email":"a@b.co","password":"12345"}`, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			rec := post(f, tt.body)

			rec.AssertStatus(t, http.StatusBadRequest)
			var resp struct {
				Fields map[string]string `json:"fields"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if _, ok := resp.Fields[tt.field]; !ok {
				t.Errorf("expected a problem on %q, got %v", tt.field, resp.Fields)
			}
		})
	}

	f := newFixture(t)
	rec := post(f, `{"tenantName":`)
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, signup.MsgBadPayload)
}
