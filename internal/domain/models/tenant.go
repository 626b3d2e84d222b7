// internal/domain/models/tenant.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tenant is one isolated workspace (a church or organization). Every
// tenant-scoped document carries its ID in a tenant_id field.
type Tenant struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name    string             `bson:"name" json:"name"`
	NameCI  string             `bson:"name_ci" json:"-"`
	Slug    string             `bson:"slug" json:"slug"` // [a-z0-9-], unique
	Domains []TenantDomain     `bson:"domains,omitempty" json:"domains,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// TenantDomain is a hostname that serves a tenant.
type TenantDomain struct {
	Hostname  string `bson:"hostname" json:"hostname"`
	IsPrimary bool   `bson:"is_primary" json:"is_primary"`
}

// PrimaryHost returns the hostname flagged primary, or "" when none is.
func (t Tenant) PrimaryHost() string {
	for _, d := range t.Domains {
		if d.IsPrimary {
			return d.Hostname
		}
	}
	return ""
}
