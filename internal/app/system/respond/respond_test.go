package respond_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/ovibase/ovibase/internal/app/system/respond"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	respond.Error(rec, http.StatusConflict, "Slug taken.")

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := rec.Body.String(); got != "{\"error\":\"Slug taken.\"}\n" {
		t.Errorf("body = %q", got)
	}
}

func TestWantsJSON(t *testing.T) {
	r := httptest.NewRequest("POST", "/", nil)
	if respond.WantsJSON(r) {
		t.Error("plain request should not want JSON")
	}
	r.Header.Set("Content-Type", "application/json; charset=utf-8")
	if !respond.WantsJSON(r) {
		t.Error("JSON body should want JSON")
	}

	r = httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Accept", "text/html,application/json")
	if respond.WantsJSON(r) {
		t.Error("browser accept header should not want JSON")
	}
}

func TestSeeOther(t *testing.T) {
	r := httptest.NewRequest("POST", "/", nil)
	rec := httptest.NewRecorder()
	respond.SeeOther(rec, r, "/app")
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/app" {
		t.Errorf("got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	r.Header.Set("HX-Request", "true")
	rec = httptest.NewRecorder()
	respond.SeeOther(rec, r, "/app")
	if rec.Header().Get("HX-Redirect") != "/app" {
		t.Error("expected HX-Redirect")
	}
}

func TestWithQuery(t *testing.T) {
	got := respond.WithQuery("/app", url.Values{"sms": {"sent"}, "count": {"3"}})
	if got != "/app?count=3&sms=sent" {
		t.Errorf("got %q", got)
	}
	if got := respond.WithQuery("/login?x=1", url.Values{"error": {"bad"}}); got != "/login?x=1&error=bad" {
		t.Errorf("got %q", got)
	}
	if got := respond.WithQuery("/app", nil); got != "/app" {
		t.Errorf("got %q", got)
	}
}
