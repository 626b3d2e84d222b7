// internal/app/features/systemusers/helpers.go
package systemusers

import (
	"net/http"

	membershipstore "github.com/ovibase/ovibase/internal/app/store/memberships"
	"github.com/ovibase/ovibase/internal/app/system/authz"
	"github.com/ovibase/ovibase/internal/app/system/formutil"
	"github.com/ovibase/ovibase/internal/domain/models"
)

const listURL = "/app/settings/users"

// User-facing messages.
const (
	MsgEmailRequired    = "Email is required."
	MsgEmailInvalid     = "Enter a valid email address."
	MsgPasswordRequired = "Password is required."
	MsgInvalidRole      = "Role must be OWNER, ADMIN, STAFF or VIEWER."
	MsgOwnerOnly        = "Only an OWNER can edit an OWNER account."
	MsgOwnerAssign      = "Only an OWNER can grant the OWNER role."
	MsgAlreadyInTenant  = "A user with this email already exists in this tenant. Use Edit permissions instead."
	MsgNotFound         = "User not found for this tenant."
	MsgBadForm          = "Invalid form submission."
	MsgServerError      = "Something went wrong. Please try again."
)

func canEdit(actor, target models.Role) bool {
	return authz.CanEditMembership(actor, target)
}

// assignableRoles lists the roles actor may grant.
func assignableRoles(actor models.Role) []models.Role {
	var out []models.Role
	for _, role := range models.Roles {
		if authz.CanAssignRole(actor, role) {
			out = append(out, role)
		}
	}
	return out
}

// roleFromForm parses the role field; empty means STAFF.
func roleFromForm(r *http.Request) (models.Role, bool) {
	raw := formutil.String(r, "role")
	if raw == "" {
		return models.RoleStaff, true
	}
	return models.ParseRole(raw)
}

func flagsFromForm(r *http.Request) membershipstore.Flags {
	return membershipstore.Flags{
		Members:    formutil.Checked(r, "canMembers"),
		Leaders:    formutil.Checked(r, "canLeaders"),
		Attendance: formutil.Checked(r, "canAttendance"),
		Finance:    formutil.Checked(r, "canFinance"),
		SMS:        formutil.Checked(r, "canSms"),
	}
}
