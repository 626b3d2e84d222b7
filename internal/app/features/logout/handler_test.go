package logout_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ovibase/ovibase/internal/app/features/logout"
	"github.com/ovibase/ovibase/internal/app/store/audit"
	"github.com/ovibase/ovibase/internal/app/system/auditlog"
	"github.com/ovibase/ovibase/internal/app/system/auth"
	"github.com/ovibase/ovibase/internal/domain/models"
	"github.com/ovibase/ovibase/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestHandler(t *testing.T) (*logout.Handler, *auth.SessionManager, *observer.ObservedLogs) {
	t.Helper()
	sm := testutil.NewSessionManager(t)
	core, logs := observer.New(zapcore.InfoLevel)
	al := auditlog.New(nil, zap.New(core), auditlog.Config{Auth: auditlog.DestLog})
	return logout.NewHandler(sm, al, zap.NewNop()), sm, logs
}

func assertCleared(t *testing.T, rec *httptest.ResponseRecorder, sm *auth.SessionManager) {
	t.Helper()
	c := testutil.SessionCookie(rec, sm)
	if c == nil {
		t.Fatal("expected a cookie deletion")
	}
	if c.MaxAge >= 0 || c.Value != "" {
		t.Errorf("cookie not cleared: MaxAge=%d Value=%q", c.MaxAge, c.Value)
	}
}

func TestServeLogout_RedirectsToLogin(t *testing.T) {
	h, sm, _ := newTestHandler(t)

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		rec := testutil.NewRecorder()
		h.ServeLogout(rec, testutil.NewRequest(method, "/logout"))

		rec.AssertRedirect(t, "/login")
		assertCleared(t, rec.ResponseRecorder, sm)
	}
}

func TestServeLogout_HTMX(t *testing.T) {
	h, _, _ := newTestHandler(t)
	req := testutil.NewRequest(http.MethodPost, "/logout")
	req.Header.Set("HX-Request", "true")
	rec := testutil.NewRecorder()

	h.ServeLogout(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	if got := rec.Header().Get("HX-Redirect"); got != "/login" {
		t.Errorf("HX-Redirect = %q, want /login", got)
	}
}

func TestServeLogout_AuditsSignedInUser(t *testing.T) {
	h, sm, logs := newTestHandler(t)
	userID := primitive.NewObjectID().Hex()
	tenantID := primitive.NewObjectID().Hex()

	issue := httptest.NewRecorder()
	if err := sm.Issue(issue, userID, tenantID, models.RoleStaff); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	req := testutil.NewRequest(http.MethodGet, "/logout")
	req.AddCookie(testutil.SessionCookie(issue, sm))
	rec := testutil.NewRecorder()

	h.ServeLogout(rec, req)

	rec.AssertRedirect(t, "/login")
	assertCleared(t, rec.ResponseRecorder, sm)

	entries := logs.FilterField(zap.String("event_type", audit.EventLogout)).All()
	if len(entries) != 1 {
		t.Fatalf("expected one logout audit entry, got %d", len(entries))
	}
}

func TestServeLogout_InvalidCookieStillClears(t *testing.T) {
	h, sm, logs := newTestHandler(t)
	req := testutil.NewRequest(http.MethodGet, "/logout")
	req.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: "garbage"})
	rec := testutil.NewRecorder()

	h.ServeLogout(rec, req)

	rec.AssertRedirect(t, "/login")
	assertCleared(t, rec.ResponseRecorder, sm)
	if logs.Len() != 0 {
		t.Errorf("no audit event expected for an unverifiable session, got %d", logs.Len())
	}
}
