// Package authz decides whether a request may proceed. The Gate is pure
// decision logic over a session token and lookups; it never writes HTTP.
// The gates package turns a Decision into a redirect.
package authz

import (
	"context"
	"errors"

	membershipstore "github.com/ovibase/ovibase/internal/app/store/memberships"
	"github.com/ovibase/ovibase/internal/app/system/auth"
	"github.com/ovibase/ovibase/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Redirect targets.
const (
	LoginPath        = "/login"
	AppPath          = "/app"
	UnauthorizedPath = "/app/unauthorized"
)

// TokenVerifier verifies session tokens.
type TokenVerifier interface {
	Verify(token string) (auth.Claims, bool)
}

// TenantDirectory resolves a tenant by hex ID; unknown is (nil, nil).
type TenantDirectory interface {
	ByID(ctx context.Context, id string) (*models.Tenant, error)
}

// MembershipLookup loads one membership.
type MembershipLookup interface {
	Get(ctx context.Context, userID, tenantID primitive.ObjectID) (models.Membership, error)
}

type reqKind int

const (
	kindSession reqKind = iota
	kindMember
	kindPermission
	kindAdmin
)

// Requirement is what a handler needs before it runs.
type Requirement struct {
	kind reqKind
	cap  Capability
}

// SignedIn needs a valid session whose tenant exists.
func SignedIn() Requirement { return Requirement{kind: kindSession} }

// Member additionally needs a membership in the session's tenant.
func Member() Requirement { return Requirement{kind: kindMember} }

// Permission needs a membership that grants c.
func Permission(c Capability) Requirement { return Requirement{kind: kindPermission, cap: c} }

// Admin needs a membership with role OWNER or ADMIN.
func Admin() Requirement { return Requirement{kind: kindAdmin} }

// Context is the authorized identity handed to a handler.
type Context struct {
	UserID     primitive.ObjectID
	Tenant     models.Tenant
	Role       models.Role
	Membership *models.Membership // nil for SignedIn requirements
}

// IsAdmin reports whether the context's role overrides capability flags.
func (c Context) IsAdmin() bool { return c.Role.IsAdmin() }

// Decision is either Authorized with a Context, or a Redirect to Target.
// Err carries a lookup failure that caused a fail-closed redirect.
type Decision struct {
	Context Context
	Target  string
	Err     error
}

// Authorized reports whether the request may proceed.
func (d Decision) Authorized() bool { return d.Target == "" }

func redirect(target string, err error) Decision {
	return Decision{Target: target, Err: err}
}

// Gate is safe for concurrent use.
type Gate struct {
	tokens      TokenVerifier
	tenants     TenantDirectory
	memberships MembershipLookup
}

// NewGate builds a gate.
func NewGate(tokens TokenVerifier, tenants TenantDirectory, memberships MembershipLookup) *Gate {
	return &Gate{tokens: tokens, tenants: tenants, memberships: memberships}
}

// Check evaluates req for the given session token. The tenant always comes
// from the session, never from the request host.
func (g *Gate) Check(ctx context.Context, token string, req Requirement) Decision {
	claims, ok := g.tokens.Verify(token)
	if !ok {
		return redirect(LoginPath, nil)
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return redirect(LoginPath, nil)
	}

	tenant, err := g.tenants.ByID(ctx, claims.TenantID)
	if err != nil {
		return redirect(LoginPath, err)
	}
	if tenant == nil {
		return redirect(LoginPath, nil)
	}

	ac := Context{UserID: userID, Tenant: *tenant, Role: claims.Role}
	if req.kind == kindSession {
		return Decision{Context: ac}
	}

	m, err := g.memberships.Get(ctx, userID, tenant.ID)
	if errors.Is(err, membershipstore.ErrNotFound) {
		return redirect(LoginPath, nil)
	}
	if err != nil {
		return redirect(LoginPath, err)
	}
	ac.Role = m.Role
	ac.Membership = &m

	switch req.kind {
	case kindPermission:
		if !Allowed(m, req.cap) {
			return redirect(UnauthorizedPath, nil)
		}
	case kindAdmin:
		if !m.Role.IsAdmin() {
			return redirect(AppPath, nil)
		}
	}
	return Decision{Context: ac}
}
