// internal/app/system/sms/provider.go
package sms

import (
	"context"

	"github.com/ovibase/ovibase/internal/domain/models"
)

// Credential is the decrypted gateway configuration for one batch. It only
// lives for the duration of a Send call.
type Credential struct {
	APIKey  string
	Sender  string
	From    string
	BaseURL string
}

// Provider delivers one message. A nil error means the gateway accepted it.
type Provider interface {
	Send(ctx context.Context, cred Credential, to, body string) error
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, cred Credential, to, body string) error

func (f ProviderFunc) Send(ctx context.Context, cred Credential, to, body string) error {
	return f(ctx, cred, to, body)
}

// Registry maps provider kinds to implementations.
type Registry map[models.SmsProviderKind]Provider
