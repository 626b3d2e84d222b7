// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, log level, request limits); this
// struct carries everything specific to ovibase.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session cookie configuration
	SessionSecret string // Signing key for the session token (must be strong in production)
	SessionName   string // Cookie name (default: ovibase_session)

	// SecretKey is the master secret credentials are sealed with.
	SecretKey string

	// BaseDomain is the apex under which tenants get subdomains
	// (e.g., ovibase.com → grace.ovibase.com). Blank means guess from Host.
	BaseDomain string

	// SMS dispatch
	SmsDefaultSender string
	SmsSendTimeout   time.Duration
	SmsConcurrency   int
	TextLocalURL     string

	// TenantCacheTTL bounds how stale a cached tenant lookup may be.
	TenantCacheTTL time.Duration

	// Login throttling: attempts per IP per window.
	LoginRateLimit  int
	LoginRateWindow time.Duration

	// Audit logging: "all", "db", "log" or "off".
	AuditLogAuth  string
	AuditLogAdmin string
}
