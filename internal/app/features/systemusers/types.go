// internal/app/features/systemusers/types.go
package systemusers

import (
	"github.com/ovibase/ovibase/internal/domain/models"
)

// userRow is one staff account in the list.
type userRow struct {
	MembershipID  string      `json:"membershipId"`
	UserID        string      `json:"userId"`
	Name          string      `json:"name"`
	Email         string      `json:"email"`
	Role          models.Role `json:"role"`
	CanMembers    bool        `json:"canMembers"`
	CanLeaders    bool        `json:"canLeaders"`
	CanAttendance bool        `json:"canAttendance"`
	CanFinance    bool        `json:"canFinance"`
	CanSMS        bool        `json:"canSms"`
	Editable      bool        `json:"editable"`
}

type listData struct {
	Users []userRow `json:"users"`
	// Roles the current admin may assign.
	Roles []models.Role `json:"roles"`
}

type editData struct {
	User  userRow       `json:"user"`
	Roles []models.Role `json:"roles"`
}

func newRow(m models.Membership, u models.User, actor models.Role) userRow {
	return userRow{
		MembershipID:  m.ID.Hex(),
		UserID:        m.UserID.Hex(),
		Name:          u.Name,
		Email:         u.Email,
		Role:          m.Role,
		CanMembers:    m.CanMembers,
		CanLeaders:    m.CanLeaders,
		CanAttendance: m.CanAttendance,
		CanFinance:    m.CanFinance,
		CanSMS:        m.CanSMS,
		Editable:      canEdit(actor, m.Role),
	}
}
