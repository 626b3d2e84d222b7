// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/ovibase/ovibase/internal/app/system/sms"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for ovibase.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: OVIBASE_MONGO_URI, OVIBASE_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "ovibase", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "session_secret", Default: "", Desc: "Session token signing secret (required)"},
	{Name: "session_name", Default: "ovibase_session", Desc: "Session cookie name"},
	{Name: "secret_key", Default: "", Desc: "Master secret for sealing SMS provider credentials (required)"},

	{Name: "base_domain", Default: "", Desc: "Apex domain tenants live under (falls back to APP_BASE_DOMAIN)"},

	// SMS dispatch
	{Name: "sms_default_sender", Default: sms.DefaultSender, Desc: "Sender id used when a tenant has none"},
	{Name: "sms_send_timeout", Default: "10s", Desc: "Timeout for each provider call"},
	{Name: "sms_concurrency", Default: sms.DefaultConcurrency, Desc: "Parallel provider calls per batch"},
	{Name: "textlocal_url", Default: sms.DefaultTextLocalURL, Desc: "TextLocal send endpoint"},

	{Name: "tenant_cache_ttl", Default: "30s", Desc: "How long tenant lookups are cached"},

	// Login throttling
	{Name: "login_rate_limit", Default: 20, Desc: "Login attempts per IP per window"},
	{Name: "login_rate_window", Default: "15m", Desc: "Login throttling window"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, OVIBASE_* for app) and flags,
// merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "OVIBASE", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionSecret: appValues.String("session_secret"),
		SessionName:   appValues.String("session_name"),
		SecretKey:     appValues.String("secret_key"),

		BaseDomain: resolveBaseDomain(appValues.String("base_domain"), os.Getenv("APP_BASE_DOMAIN")),

		SmsDefaultSender: appValues.String("sms_default_sender"),
		SmsSendTimeout:   appValues.Duration("sms_send_timeout", 10*time.Second),
		SmsConcurrency:   appValues.Int("sms_concurrency"),
		TextLocalURL:     appValues.String("textlocal_url"),

		TenantCacheTTL: appValues.Duration("tenant_cache_ttl", 30*time.Second),

		LoginRateLimit:  appValues.Int("login_rate_limit"),
		LoginRateWindow: appValues.Duration("login_rate_window", 15*time.Minute),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),
	}

	if appCfg.BaseDomain == "" {
		logger.Warn("base_domain not set; tenant hosts will be guessed from the request Host header")
	}

	return coreCfg, appCfg, nil
}

// resolveBaseDomain prefers the configured value and falls back to the
// legacy APP_BASE_DOMAIN variable.
func resolveBaseDomain(configured, legacy string) string {
	d := strings.ToLower(strings.TrimSpace(configured))
	if d == "" {
		d = strings.ToLower(strings.TrimSpace(legacy))
	}
	return strings.Trim(d, ".")
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Both secrets are required: without them no session can be verified and
// no stored credential can be opened.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	var errs []error
	if strings.TrimSpace(appCfg.SessionSecret) == "" {
		errs = append(errs, errors.New("session_secret is required"))
	}
	if strings.TrimSpace(appCfg.SecretKey) == "" {
		errs = append(errs, errors.New("secret_key is required"))
	}
	if appCfg.SessionName == "" {
		errs = append(errs, errors.New("session_name must not be empty"))
	}
	if appCfg.SmsConcurrency < 1 {
		errs = append(errs, fmt.Errorf("sms_concurrency must be at least 1, got %d", appCfg.SmsConcurrency))
	}
	if appCfg.LoginRateLimit < 2 {
		errs = append(errs, fmt.Errorf("login_rate_limit must be at least 2, got %d", appCfg.LoginRateLimit))
	}
	return errors.Join(errs...)
}
