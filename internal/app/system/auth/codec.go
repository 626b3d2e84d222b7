// internal/app/system/auth/codec.go
package auth

import (
	"errors"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/ovibase/ovibase/internal/domain/models"
)

// SessionTTL is how long an issued session stays valid.
const SessionTTL = 7 * 24 * time.Hour

// ErrNoSigningSecret is returned when the codec is built without a secret.
var ErrNoSigningSecret = errors.New("auth: session signing secret is empty")

// Claims is the verified content of a session token. Role is a snapshot
// taken at issue time; membership changes apply on the next login.
type Claims struct {
	UserID    string      `json:"uid"`
	TenantID  string      `json:"tid"`
	Role      models.Role `json:"role"`
	IssuedAt  int64       `json:"iat"`
	ExpiresAt int64       `json:"exp"`
}

// Codec issues and verifies HMAC-SHA256 signed session tokens.
type Codec struct {
	sc   *securecookie.SecureCookie
	name string
	ttl  time.Duration
	now  func() time.Time
}

// NewCodec builds a codec. name is bound into the signature, so a token
// issued for one cookie name does not verify under another.
func NewCodec(secret, name string) (*Codec, error) {
	if secret == "" {
		return nil, ErrNoSigningSecret
	}
	sc := securecookie.New([]byte(secret), nil)
	sc.SetSerializer(securecookie.JSONEncoder{})
	sc.MaxAge(int(SessionTTL / time.Second))
	return &Codec{sc: sc, name: name, ttl: SessionTTL, now: time.Now}, nil
}

// WithClock replaces the codec's time source.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

// Issue signs a new session for the user inside tenantID.
func (c *Codec) Issue(userID, tenantID string, role models.Role) (string, error) {
	if _, ok := models.ParseRole(string(role)); !ok {
		return "", errors.New("auth: unknown role " + string(role))
	}
	if userID == "" || tenantID == "" {
		return "", errors.New("auth: user and tenant are required")
	}
	now := c.now()
	return c.sc.Encode(c.name, Claims{
		UserID:    userID,
		TenantID:  tenantID,
		Role:      role,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(c.ttl).Unix(),
	})
}

// Verify checks the signature before reading any claim. It reports false for
// an empty, forged, expired, or incomplete token and never returns an error.
func (c *Codec) Verify(token string) (Claims, bool) {
	if token == "" {
		return Claims{}, false
	}
	var cl Claims
	if err := c.sc.Decode(c.name, token, &cl); err != nil {
		return Claims{}, false
	}
	if cl.UserID == "" || cl.TenantID == "" || cl.ExpiresAt == 0 {
		return Claims{}, false
	}
	role, ok := models.ParseRole(string(cl.Role))
	if !ok || role != cl.Role {
		return Claims{}, false
	}
	if c.now().Unix() >= cl.ExpiresAt {
		return Claims{}, false
	}
	return cl, true
}
