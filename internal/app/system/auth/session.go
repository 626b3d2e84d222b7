// internal/app/system/auth/session.go
package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/ovibase/ovibase/internal/domain/models"
	"go.uber.org/zap"
)

// DefaultCookieName is used when no session name is configured.
const DefaultCookieName = "ovibase_session"

type ctxKey string

const claimsKey ctxKey = "sessionClaims"

// SessionManager owns the session cookie: issuing it, clearing it, and
// verifying it once per request.
type SessionManager struct {
	codec  *Codec
	name   string
	secure bool
	logger *zap.Logger
}

// NewSessionManager builds a manager. secure marks cookies Secure and should
// be true outside local development.
func NewSessionManager(secret, name string, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if name == "" {
		name = DefaultCookieName
	}
	codec, err := NewCodec(secret, name)
	if err != nil {
		return nil, err
	}
	if len(secret) < 32 {
		logger.Warn("session secret is short; 32+ chars recommended",
			zap.Int("length", len(secret)))
	}
	logger.Info("session manager initialized",
		zap.String("cookie", name),
		zap.Bool("secure", secure))
	return &SessionManager{codec: codec, name: name, secure: secure, logger: logger}, nil
}

// Codec exposes the token codec.
func (sm *SessionManager) Codec() *Codec { return sm.codec }

// CookieName returns the session cookie name.
func (sm *SessionManager) CookieName() string { return sm.name }

// Token returns the raw session cookie value, or "".
func (sm *SessionManager) Token(r *http.Request) string {
	c, err := r.Cookie(sm.name)
	if err != nil {
		return ""
	}
	return c.Value
}

// Issue signs a session and sets it as the response cookie.
func (sm *SessionManager) Issue(w http.ResponseWriter, userID, tenantID string, role models.Role) error {
	token, err := sm.codec.Issue(userID, tenantID, role)
	if err != nil {
		return err
	}
	http.SetCookie(w, sm.cookie(token, int(SessionTTL/time.Second)))
	return nil
}

// Clear expires the session cookie.
func (sm *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, sm.cookie("", -1))
}

func (sm *SessionManager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sm.name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// LoadSession verifies the cookie and, when valid, stores the claims on the
// request context. Invalid cookies are ignored here; gates decide what to do.
func (sm *SessionManager) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := sm.Token(r); token != "" {
			if cl, ok := sm.codec.Verify(token); ok {
				r = r.WithContext(WithClaims(r.Context(), cl))
			} else {
				sm.logger.Debug("session cookie rejected", zap.String("path", r.URL.Path))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// WithClaims returns ctx carrying cl.
func WithClaims(ctx context.Context, cl Claims) context.Context {
	return context.WithValue(ctx, claimsKey, cl)
}

// ClaimsFromContext returns the verified session claims, if any.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	cl, ok := ctx.Value(claimsKey).(Claims)
	return cl, ok
}

// CurrentClaims is ClaimsFromContext for a request.
func CurrentClaims(r *http.Request) (Claims, bool) {
	return ClaimsFromContext(r.Context())
}
