// internal/domain/models/membership.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is a user's role inside one tenant.
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleStaff  Role = "STAFF"
	RoleViewer Role = "VIEWER"
)

// Roles lists every valid role, most privileged first.
var Roles = []Role{RoleOwner, RoleAdmin, RoleStaff, RoleViewer}

// ParseRole normalizes s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RoleOwner, RoleAdmin, RoleStaff, RoleViewer:
		return r, true
	}
	return "", false
}

// IsAdmin reports whether the role overrides every capability flag.
func (r Role) IsAdmin() bool {
	return r == RoleOwner || r == RoleAdmin
}

// Membership links a user to a tenant with a role and capability flags.
// There is at most one membership per (user_id, tenant_id).
type Membership struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	TenantID primitive.ObjectID `bson:"tenant_id" json:"tenant_id"`
	Role     Role               `bson:"role" json:"role"`

	CanMembers    bool `bson:"can_members" json:"can_members"`
	CanLeaders    bool `bson:"can_leaders" json:"can_leaders"`
	CanAttendance bool `bson:"can_attendance" json:"can_attendance"`
	CanFinance    bool `bson:"can_finance" json:"can_finance"`
	CanSMS        bool `bson:"can_sms" json:"can_sms"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
