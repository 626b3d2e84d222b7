package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ovibase/ovibase/internal/app/system/auth"
	"github.com/ovibase/ovibase/internal/app/system/authz"
	"github.com/ovibase/ovibase/internal/app/system/gates"
	"github.com/ovibase/ovibase/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// SessionSecret signs sessions in tests.
const SessionSecret = "test-session-secret-0123456789abcdef"

// NewSessionManager returns a session manager for handler tests.
func NewSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(SessionSecret, "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	return sm
}

// SessionCookie returns the cookie a response set for sm, or nil.
func SessionCookie(rec *httptest.ResponseRecorder, sm *auth.SessionManager) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == sm.CookieName() {
			return c
		}
	}
	return nil
}

// OwnerContext returns an authorized OWNER of tenant.
func OwnerContext(tenant models.Tenant) authz.Context {
	return roleContext(tenant, models.RoleOwner, models.Membership{})
}

// AdminContext returns an authorized ADMIN of tenant.
func AdminContext(tenant models.Tenant) authz.Context {
	return roleContext(tenant, models.RoleAdmin, models.Membership{})
}

// StaffContext returns an authorized STAFF member of tenant with the SMS
// flag set as given.
func StaffContext(tenant models.Tenant, canSMS bool) authz.Context {
	return roleContext(tenant, models.RoleStaff, models.Membership{CanSMS: canSMS})
}

func roleContext(tenant models.Tenant, role models.Role, m models.Membership) authz.Context {
	userID := primitive.NewObjectID()
	m.ID = primitive.NewObjectID()
	m.UserID = userID
	m.TenantID = tenant.ID
	m.Role = role
	return authz.Context{UserID: userID, Tenant: tenant, Role: role, Membership: &m}
}

// WithAuthz adds an authorized context to the request, bypassing the
// session and membership lookups.
func WithAuthz(r *http.Request, ac authz.Context) *http.Request {
	return r.WithContext(gates.WithContext(r.Context(), ac))
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewFormRequest creates a form-encoded request.
func NewFormRequest(method, target, form string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// NewJSONRequest creates a JSON request that also accepts JSON.
func NewJSONRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d", r.Code, expected)
	}
}

// AssertRedirect checks for a redirect to the expected location.
func (r *ResponseRecorder) AssertRedirect(t interface{ Errorf(string, ...any) }, expectedLocation string) {
	if r.Code != http.StatusSeeOther && r.Code != http.StatusFound && r.Code != http.StatusMovedPermanently {
		t.Errorf("expected redirect status, got %d", r.Code)
	}
	location := r.Header().Get("Location")
	if location != expectedLocation {
		t.Errorf("redirect location: got %q, want %q", location, expectedLocation)
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}
