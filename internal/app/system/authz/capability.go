// internal/app/system/authz/capability.go
package authz

import (
	"strings"

	"github.com/ovibase/ovibase/internal/domain/models"
)

// Capability names one of the five per-membership permission flags.
type Capability string

const (
	CapMembers    Capability = "members"
	CapLeaders    Capability = "leaders"
	CapAttendance Capability = "attendance"
	CapFinance    Capability = "finance"
	CapSMS        Capability = "sms"
)

// Capabilities lists every capability in display order.
var Capabilities = []Capability{CapMembers, CapLeaders, CapAttendance, CapFinance, CapSMS}

var labels = map[Capability]string{
	CapMembers:    "Members",
	CapLeaders:    "Leaders",
	CapAttendance: "Attendance",
	CapFinance:    "Finance",
	CapSMS:        "SMS",
}

// Label is the human name of c.
func (c Capability) Label() string { return labels[c] }

// ParseCapability reports whether s names a capability.
func ParseCapability(s string) (Capability, bool) {
	c := Capability(strings.ToLower(strings.TrimSpace(s)))
	_, ok := labels[c]
	return c, ok
}

// Flag returns the raw flag for c on m, ignoring the role.
func Flag(m models.Membership, c Capability) bool {
	switch c {
	case CapMembers:
		return m.CanMembers
	case CapLeaders:
		return m.CanLeaders
	case CapAttendance:
		return m.CanAttendance
	case CapFinance:
		return m.CanFinance
	case CapSMS:
		return m.CanSMS
	}
	return false
}

// Allowed reports whether m grants c. OWNER and ADMIN hold every capability.
func Allowed(m models.Membership, c Capability) bool {
	if m.Role.IsAdmin() {
		return true
	}
	return Flag(m, c)
}

// PermissionRow is one line of the permission matrix.
type PermissionRow struct {
	Key     Capability `json:"key"`
	Label   string     `json:"label"`
	Allowed bool       `json:"allowed"`
}

// Matrix lists every capability with whether m grants it.
func Matrix(m models.Membership) []PermissionRow {
	rows := make([]PermissionRow, 0, len(Capabilities))
	for _, c := range Capabilities {
		rows = append(rows, PermissionRow{Key: c, Label: c.Label(), Allowed: Allowed(m, c)})
	}
	return rows
}

// CanEditMembership reports whether actor may change target's membership.
// Only an admin role may edit memberships, and only an OWNER may edit an OWNER.
func CanEditMembership(actor, target models.Role) bool {
	if !actor.IsAdmin() {
		return false
	}
	if target == models.RoleOwner && actor != models.RoleOwner {
		return false
	}
	return true
}

// CanAssignRole reports whether actor may grant role to someone.
func CanAssignRole(actor, role models.Role) bool {
	if !actor.IsAdmin() {
		return false
	}
	return role != models.RoleOwner || actor == models.RoleOwner
}
