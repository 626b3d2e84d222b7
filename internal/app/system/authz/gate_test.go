package authz_test

import (
	"context"
	"errors"
	"testing"

	membershipstore "github.com/ovibase/ovibase/internal/app/store/memberships"
	"github.com/ovibase/ovibase/internal/app/system/auth"
	"github.com/ovibase/ovibase/internal/app/system/authz"
	"github.com/ovibase/ovibase/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeDir struct {
	tenants map[string]models.Tenant
	err     error
}

func (f fakeDir) ByID(_ context.Context, id string) (*models.Tenant, error) {
	if f.err != nil {
		return nil, f.err
	}
	if t, ok := f.tenants[id]; ok {
		return &t, nil
	}
	return nil, nil
}

type fakeMemberships struct {
	m   map[[2]primitive.ObjectID]models.Membership
	err error
}

func (f fakeMemberships) Get(_ context.Context, userID, tenantID primitive.ObjectID) (models.Membership, error) {
	if f.err != nil {
		return models.Membership{}, f.err
	}
	m, ok := f.m[[2]primitive.ObjectID{userID, tenantID}]
	if !ok {
		return models.Membership{}, membershipstore.ErrNotFound
	}
	return m, nil
}

type fixture struct {
	codec  *auth.Codec
	tenant models.Tenant
	user   primitive.ObjectID
	dir    fakeDir
	mems   fakeMemberships
}

func newFixture(t *testing.T, role models.Role, edit func(*models.Membership)) *fixture {
	t.Helper()
	codec, err := auth.NewCodec("gate-test-secret-0123456789abcdef", "s")
	if err != nil {
		t.Fatal(err)
	}
	tenant := models.Tenant{ID: primitive.NewObjectID(), Slug: "grace"}
	user := primitive.NewObjectID()
	m := models.Membership{UserID: user, TenantID: tenant.ID, Role: role}
	if edit != nil {
		edit(&m)
	}
	return &fixture{
		codec:  codec,
		tenant: tenant,
		user:   user,
		dir:    fakeDir{tenants: map[string]models.Tenant{tenant.ID.Hex(): tenant}},
		mems:   fakeMemberships{m: map[[2]primitive.ObjectID]models.Membership{{user, tenant.ID}: m}},
	}
}

func (f *fixture) gate() *authz.Gate {
	return authz.NewGate(f.codec, f.dir, f.mems)
}

func (f *fixture) token(t *testing.T, role models.Role) string {
	t.Helper()
	tok, err := f.codec.Issue(f.user.Hex(), f.tenant.ID.Hex(), role)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestCheck_NoSession(t *testing.T) {
	f := newFixture(t, models.RoleStaff, nil)
	d := f.gate().Check(context.Background(), "", authz.Member())
	if d.Authorized() || d.Target != "/login" {
		t.Fatalf("expected redirect to /login, got %+v", d)
	}
}

func TestCheck_UnknownTenant(t *testing.T) {
	f := newFixture(t, models.RoleStaff, nil)
	tok := f.token(t, models.RoleStaff)
	f.dir.tenants = map[string]models.Tenant{}
	d := f.gate().Check(context.Background(), tok, authz.SignedIn())
	if d.Authorized() || d.Target != "/login" {
		t.Fatalf("expected redirect to /login, got %+v", d)
	}
}

func TestCheck_NoMembership(t *testing.T) {
	f := newFixture(t, models.RoleStaff, nil)
	tok := f.token(t, models.RoleStaff)
	f.mems.m = nil
	d := f.gate().Check(context.Background(), tok, authz.Permission(authz.CapMembers))
	if d.Authorized() || d.Target != "/login" {
		t.Fatalf("expected redirect to /login, got %+v", d)
	}
}

func TestCheck_StaffWithoutFinance(t *testing.T) {
	f := newFixture(t, models.RoleStaff, func(m *models.Membership) { m.CanMembers = true })
	d := f.gate().Check(context.Background(), f.token(t, models.RoleStaff), authz.Permission(authz.CapFinance))
	if d.Authorized() || d.Target != "/app/unauthorized" {
		t.Fatalf("expected redirect to /app/unauthorized, got %+v", d)
	}
}

func TestCheck_StaffWithFlag(t *testing.T) {
	f := newFixture(t, models.RoleStaff, func(m *models.Membership) { m.CanSMS = true })
	d := f.gate().Check(context.Background(), f.token(t, models.RoleStaff), authz.Permission(authz.CapSMS))
	if !d.Authorized() {
		t.Fatalf("expected authorized, got %+v", d)
	}
	if d.Context.UserID != f.user || d.Context.Tenant.ID != f.tenant.ID || d.Context.Membership == nil {
		t.Errorf("unexpected context: %+v", d.Context)
	}
}

func TestCheck_AdminOverridesFlags(t *testing.T) {
	for _, role := range []models.Role{models.RoleAdmin, models.RoleOwner} {
		f := newFixture(t, role, nil)
		d := f.gate().Check(context.Background(), f.token(t, role), authz.Permission(authz.CapFinance))
		if !d.Authorized() {
			t.Errorf("%s: expected authorized, got %+v", role, d)
		}
	}
}

func TestCheck_AdminRequirement(t *testing.T) {
	f := newFixture(t, models.RoleStaff, func(m *models.Membership) {
		m.CanMembers, m.CanLeaders, m.CanAttendance, m.CanFinance, m.CanSMS = true, true, true, true, true
	})
	d := f.gate().Check(context.Background(), f.token(t, models.RoleStaff), authz.Admin())
	if d.Authorized() || d.Target != "/app" {
		t.Fatalf("expected redirect to /app, got %+v", d)
	}

	f = newFixture(t, models.RoleAdmin, nil)
	if d := f.gate().Check(context.Background(), f.token(t, models.RoleAdmin), authz.Admin()); !d.Authorized() {
		t.Fatalf("admin should pass, got %+v", d)
	}
}

func TestCheck_RoleComesFromMembership(t *testing.T) {
	// Session claims ADMIN but the membership was downgraded to VIEWER.
	f := newFixture(t, models.RoleViewer, nil)
	d := f.gate().Check(context.Background(), f.token(t, models.RoleAdmin), authz.Admin())
	if d.Authorized() {
		t.Fatal("stale session role must not grant admin")
	}
}

func TestCheck_SignedInUsesSessionRole(t *testing.T) {
	f := newFixture(t, models.RoleViewer, nil)
	f.mems.m = nil
	d := f.gate().Check(context.Background(), f.token(t, models.RoleStaff), authz.SignedIn())
	if !d.Authorized() || d.Context.Role != models.RoleStaff || d.Context.Membership != nil {
		t.Fatalf("unexpected decision: %+v", d)
	}
}

func TestCheck_LookupErrorsFailClosed(t *testing.T) {
	f := newFixture(t, models.RoleOwner, nil)
	tok := f.token(t, models.RoleOwner)

	f.dir.err = errors.New("db down")
	d := f.gate().Check(context.Background(), tok, authz.SignedIn())
	if d.Authorized() || d.Target != "/login" || d.Err == nil {
		t.Fatalf("tenant error: got %+v", d)
	}

	f.dir.err = nil
	f.mems.err = errors.New("db down")
	d = f.gate().Check(context.Background(), tok, authz.Member())
	if d.Authorized() || d.Target != "/login" || d.Err == nil {
		t.Fatalf("membership error: got %+v", d)
	}
}
