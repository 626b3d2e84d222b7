package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ovibase/ovibase/internal/app/system/auth"
	"github.com/ovibase/ovibase/internal/domain/models"
	"go.uber.org/zap"
)

func newTestSessionManager(t *testing.T, secure bool) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(testSecret, "", secure, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

func TestIssue_SetsCookieAttributes(t *testing.T) {
	sm := newTestSessionManager(t, true)
	rec := httptest.NewRecorder()

	if err := sm.Issue(rec, "user-1", "tenant-1", models.RoleAdmin); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != "ovibase_session" {
		t.Errorf("name: got %q", c.Name)
	}
	if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteLaxMode || c.Path != "/" {
		t.Errorf("unexpected attributes: %+v", c)
	}
	if c.MaxAge != 7*24*60*60 {
		t.Errorf("max-age: got %d", c.MaxAge)
	}
}

func TestClear_ExpiresCookie(t *testing.T) {
	sm := newTestSessionManager(t, false)
	rec := httptest.NewRecorder()
	sm.Clear(rec)

	c := rec.Result().Cookies()[0]
	if c.MaxAge >= 0 || c.Value != "" {
		t.Errorf("expected expired empty cookie, got %+v", c)
	}
}

func TestLoadSession_ValidCookie(t *testing.T) {
	sm := newTestSessionManager(t, false)
	token, _ := sm.Codec().Issue("user-1", "tenant-1", models.RoleStaff)

	var got auth.Claims
	var found bool
	h := sm.LoadSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = auth.CurrentClaims(r)
	}))

	req := httptest.NewRequest("GET", "/app", nil)
	req.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: token})
	h.ServeHTTP(httptest.NewRecorder(), req)

	if !found || got.UserID != "user-1" {
		t.Fatalf("expected claims in context, got %+v (found=%v)", got, found)
	}
}

func TestLoadSession_BadCookie(t *testing.T) {
	sm := newTestSessionManager(t, false)

	var found bool
	h := sm.LoadSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found = auth.CurrentClaims(r)
	}))

	req := httptest.NewRequest("GET", "/app", nil)
	req.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: "garbage"})
	h.ServeHTTP(httptest.NewRecorder(), req)

	if found {
		t.Fatal("expected no claims for an invalid cookie")
	}
}
