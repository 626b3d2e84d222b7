package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/ovibase/ovibase/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validConfig() AppConfig {
	return AppConfig{
		MongoURI:        "mongodb://localhost:27017",
		MongoDatabase:   "ovibase_test",
		SessionSecret:   "session-secret-for-tests-0123456789",
		SessionName:     "ovibase_session",
		SecretKey:       "master-secret-for-tests",
		BaseDomain:      "ovibase.com",
		SmsConcurrency:  4,
		SmsSendTimeout:  5 * time.Second,
		TenantCacheTTL:  time.Second,
		LoginRateLimit:  10,
		LoginRateWindow: time.Minute,
		AuditLogAuth:    "log",
		AuditLogAdmin:   "log",
	}
}

func TestResolveBaseDomain(t *testing.T) {
	tests := []struct {
		configured, legacy, want string
	}{
		{"ovibase.com", "other.com", "ovibase.com"},
		{"", "Church.Example", "church.example"},
		{"  .Ovibase.COM. ", "", "ovibase.com"},
		{"", "", ""},
	}
	for _, tt := range tests {
		if got := resolveBaseDomain(tt.configured, tt.legacy); got != tt.want {
			t.Errorf("resolveBaseDomain(%q, %q) = %q, want %q", tt.configured, tt.legacy, got, tt.want)
		}
	}
}

func TestValidateConfig(t *testing.T) {
	if err := ValidateConfig(&config.CoreConfig{}, validConfig(), testLogger()); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*AppConfig)
		want   string
	}{
		{"bad uri", func(c *AppConfig) { c.MongoURI = "postgres://nope" }, "invalid MongoDB URI"},
		{"no session secret", func(c *AppConfig) { c.SessionSecret = " " }, "session_secret"},
		{"no secret key", func(c *AppConfig) { c.SecretKey = "" }, "secret_key"},
		{"zero concurrency", func(c *AppConfig) { c.SmsConcurrency = 0 }, "sms_concurrency"},
		{"tiny rate limit", func(c *AppConfig) { c.LoginRateLimit = 1 }, "login_rate_limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(&config.CoreConfig{}, cfg, testLogger())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}
	for i := 0; i < 2; i++ {
		if err := EnsureSchema(ctx, &config.CoreConfig{}, validConfig(), deps, testLogger()); err != nil {
			t.Fatalf("EnsureSchema run %d: %v", i+1, err)
		}
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames: %v", err)
	}
	have := map[string]bool{}
	for _, n := range names {
		have[n] = true
	}
	for _, want := range []string{"tenants", "users", "user_tenants", "sms_provider_settings", "sms_templates", "sms_logs"} {
		if !have[want] {
			t.Errorf("collection %q missing after EnsureSchema", want)
		}
	}
}

func TestBuildHandler_Routes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}

	h, err := BuildHandler(&config.CoreConfig{Env: "dev"}, validConfig(), deps, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler: %v", err)
	}
	t.Cleanup(stopBackground)

	tests := []struct {
		name     string
		method   string
		target   string
		host     string
		status   int
		location string
	}{
		{"health", http.MethodGet, "/health", "ovibase.com", http.StatusOK, ""},
		{"metrics", http.MethodGet, "/metrics", "ovibase.com", http.StatusOK, ""},
		{"login page", http.MethodGet, "/login", "ovibase.com", http.StatusOK, ""},
		{"app without cookie", http.MethodGet, "/app", "grace.ovibase.com", http.StatusSeeOther, "/login"},
		{"settings without cookie", http.MethodGet, "/app/settings/users", "grace.ovibase.com", http.StatusSeeOther, "/login"},
		{"logout alias", http.MethodPost, "/api/auth/logout", "ovibase.com", http.StatusSeeOther, "/login"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			req.Host = tt.host
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("%s %s: status = %d, want %d", tt.method, tt.target, rec.Code, tt.status)
			}
			if tt.location != "" && rec.Header().Get("Location") != tt.location {
				t.Errorf("Location = %q, want %q", rec.Header().Get("Location"), tt.location)
			}
		})
	}
}
