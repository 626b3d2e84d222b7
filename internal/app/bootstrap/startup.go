// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"github.com/ovibase/ovibase/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{SMS: appCfg.SmsSendTimeout})
	logger.Info("ovibase configured",
		zap.String("base_domain", appCfg.BaseDomain),
		zap.Duration("sms_send_timeout", timeouts.SMS()),
		zap.Int("sms_concurrency", appCfg.SmsConcurrency),
		zap.Duration("tenant_cache_ttl", appCfg.TenantCacheTTL),
	)
	return nil
}
