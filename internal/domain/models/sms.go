// internal/domain/models/sms.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SmsProviderKind names a supported SMS gateway.
type SmsProviderKind string

const (
	SmsProviderNone      SmsProviderKind = "NONE"
	SmsProviderTextLocal SmsProviderKind = "TEXTLOCAL"
)

// SmsProviderKinds lists the gateways a tenant may select.
var SmsProviderKinds = []SmsProviderKind{SmsProviderNone, SmsProviderTextLocal}

// ParseSmsProvider normalizes s and reports whether it names a known gateway.
func ParseSmsProvider(s string) (SmsProviderKind, bool) {
	k := SmsProviderKind(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range SmsProviderKinds {
		if k == known {
			return k, true
		}
	}
	return "", false
}

// SmsProviderSetting is the single per-tenant gateway configuration.
// APIKeySealed holds the credential as IV || ciphertext || tag and is never
// serialized to clients.
type SmsProviderSetting struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID     primitive.ObjectID `bson:"tenant_id" json:"tenant_id"`
	Provider     SmsProviderKind    `bson:"provider" json:"provider"`
	SenderID     string             `bson:"sender_id,omitempty" json:"sender_id,omitempty"`
	From         string             `bson:"from,omitempty" json:"from,omitempty"`
	BaseURL      string             `bson:"base_url,omitempty" json:"base_url,omitempty"`
	APIKeySealed []byte             `bson:"api_key_sealed,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasCredential reports whether a sealed API key is stored.
func (s SmsProviderSetting) HasCredential() bool {
	return len(s.APIKeySealed) > 0
}

// SmsTemplate is a reusable message body with {placeholder} tokens.
type SmsTemplate struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID primitive.ObjectID `bson:"tenant_id" json:"tenant_id"`
	Name     string             `bson:"name" json:"name"`
	NameCI   string             `bson:"name_ci" json:"-"`
	Message  string             `bson:"message" json:"message"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// SmsStatus is the outcome recorded on a log row.
type SmsStatus string

const (
	SmsSent   SmsStatus = "SENT"
	SmsFailed SmsStatus = "FAILED"
)

// SmsLog is one append-only record per attempted message.
type SmsLog struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	TenantID   primitive.ObjectID  `bson:"tenant_id" json:"tenant_id"`
	TemplateID *primitive.ObjectID `bson:"template_id,omitempty" json:"template_id,omitempty"`
	MemberID   *primitive.ObjectID `bson:"member_id,omitempty" json:"member_id,omitempty"`
	To         string              `bson:"to" json:"to"`
	Message    string              `bson:"message" json:"message"`
	Tag        string              `bson:"tag,omitempty" json:"tag,omitempty"`
	Batch      string              `bson:"batch,omitempty" json:"batch,omitempty"`
	Provider   SmsProviderKind     `bson:"provider" json:"provider"`
	Status     SmsStatus           `bson:"status" json:"status"`
	Error      string              `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt  time.Time           `bson:"created_at" json:"created_at"`
}
