// internal/domain/models/member.go
package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member is a congregation member as seen by the SMS flow. Member CRUD
// lives elsewhere; only the fields needed to address and greet a recipient
// are read here.
type Member struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID     primitive.ObjectID `bson:"tenant_id" json:"tenant_id"`
	FirstName    string             `bson:"first_name" json:"first_name"`
	LastName     string             `bson:"last_name" json:"last_name"`
	MobileNumber string             `bson:"mobile_number,omitempty" json:"mobile_number,omitempty"`
	ChurchUnit   string             `bson:"church_unit,omitempty" json:"church_unit,omitempty"`
}

// FullName joins first and last name, trimmed.
func (m Member) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}
