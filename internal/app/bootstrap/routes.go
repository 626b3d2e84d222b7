// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"sync"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	auditlogfeature "github.com/ovibase/ovibase/internal/app/features/auditlog"
	dashboardfeature "github.com/ovibase/ovibase/internal/app/features/dashboard"
	errorsfeature "github.com/ovibase/ovibase/internal/app/features/errors"
	healthfeature "github.com/ovibase/ovibase/internal/app/features/health"
	loginfeature "github.com/ovibase/ovibase/internal/app/features/login"
	logoutfeature "github.com/ovibase/ovibase/internal/app/features/logout"
	settingsfeature "github.com/ovibase/ovibase/internal/app/features/settings"
	signupfeature "github.com/ovibase/ovibase/internal/app/features/signup"
	smsfeature "github.com/ovibase/ovibase/internal/app/features/sms"
	smstemplatesfeature "github.com/ovibase/ovibase/internal/app/features/smstemplates"
	systemusersfeature "github.com/ovibase/ovibase/internal/app/features/systemusers"
	userinfofeature "github.com/ovibase/ovibase/internal/app/features/userinfo"
	"github.com/ovibase/ovibase/internal/app/store/audit"
	memberstore "github.com/ovibase/ovibase/internal/app/store/members"
	membershipstore "github.com/ovibase/ovibase/internal/app/store/memberships"
	smslogstore "github.com/ovibase/ovibase/internal/app/store/smslogs"
	smsproviderstore "github.com/ovibase/ovibase/internal/app/store/smsproviders"
	smstemplatestore "github.com/ovibase/ovibase/internal/app/store/smstemplates"
	tenantstore "github.com/ovibase/ovibase/internal/app/store/tenants"
	userstore "github.com/ovibase/ovibase/internal/app/store/users"
	"github.com/ovibase/ovibase/internal/app/system/auditlog"
	"github.com/ovibase/ovibase/internal/app/system/auth"
	"github.com/ovibase/ovibase/internal/app/system/authz"
	"github.com/ovibase/ovibase/internal/app/system/edge"
	"github.com/ovibase/ovibase/internal/app/system/gates"
	"github.com/ovibase/ovibase/internal/app/system/ratelimit"
	"github.com/ovibase/ovibase/internal/app/system/secrets"
	"github.com/ovibase/ovibase/internal/app/system/sms"
	"github.com/ovibase/ovibase/internal/app/system/txn"
	"github.com/ovibase/ovibase/internal/app/system/workers"
	"github.com/ovibase/ovibase/internal/app/system/workspace"
	"github.com/ovibase/ovibase/internal/domain/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	bgMu   sync.Mutex
	bgStop []func()
)

// onShutdown registers a cleanup that Shutdown runs.
func onShutdown(f func()) {
	bgMu.Lock()
	defer bgMu.Unlock()
	bgStop = append(bgStop, f)
}

func stopBackground() {
	bgMu.Lock()
	fns := bgStop
	bgStop = nil
	bgMu.Unlock()
	for _, f := range fns {
		f()
	}
}

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. The router applies the edge filter,
// session loading and host-based tenant resolution to every request, then
// mounts the feature routers. Protected routes go through the gate.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionSecret, appCfg.SessionName, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	cipher, err := secrets.New(appCfg.SecretKey)
	if err != nil {
		logger.Error("credential cipher init failed", zap.Error(err))
		return nil, err
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Stores
	tenants := tenantstore.New(db)
	users := userstore.New(db)
	memberships := membershipstore.New(db)
	members := memberstore.New(db)
	providers := smsproviderstore.New(db)
	templates := smstemplatestore.New(db)
	smsLogs := smslogstore.New(db)

	auditEvents := audit.New(db)
	auditLog := auditlog.New(auditEvents, logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})
	errLog := errorsfeature.NewErrorLogger(logger)

	// Tenancy and authorization
	directory := workspace.NewDirectory(tenants, appCfg.TenantCacheTTL)
	gate := authz.NewGate(sessionMgr.Codec(), directory, memberships)
	g := gates.New(gate, sessionMgr, logger)

	if appCfg.TenantCacheTTL > 0 {
		runner := workers.New(logger, workers.TenantCachePruneJob(directory, logger, appCfg.TenantCacheTTL))
		runner.Start()
		onShutdown(runner.Stop)
	}

	// SMS pipeline
	dispatcher := sms.NewDispatcher(providers, cipher, sms.Registry{
		models.SmsProviderTextLocal: sms.NewTextLocal(appCfg.TextLocalURL),
	}, sms.NewMetrics(reg), logger)
	if appCfg.SmsDefaultSender != "" {
		dispatcher.Sender = appCfg.SmsDefaultSender
	}
	dispatcher.Concurrency = appCfg.SmsConcurrency
	dispatcher.Timeout = appCfg.SmsSendTimeout

	loginLimiter := ratelimit.NewLoginLimiter(appCfg.LoginRateLimit, appCfg.LoginRateWindow)
	onShutdown(loginLimiter.Stop)

	r := chi.NewRouter()

	r.Use(edge.Filter(sessionMgr.CookieName(), appCfg.BaseDomain))
	r.Use(sessionMgr.LoadSession)
	r.Use(workspace.Middleware(directory, appCfg.BaseDomain, logger))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	// Authentication
	loginHandler := loginfeature.NewHandler(users, memberships, sessionMgr, loginLimiter, auditLog,
		loginfeature.NewMetrics(reg), appCfg.BaseDomain, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))
	r.Post("/api/auth/login", loginHandler.HandleLoginPost)

	logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLog, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))
	r.Get("/api/auth/logout", logoutHandler.ServeLogout)
	r.Post("/api/auth/logout", logoutHandler.ServeLogout)

	signupHandler := signupfeature.NewHandler(tenants, users, memberships, txn.New(deps.MongoClient, logger),
		sessionMgr, auditLog, appCfg.BaseDomain, logger)
	signupfeature.MountRoutes(r, signupHandler)

	userinfoHandler := userinfofeature.NewHandler(users, logger)
	userinfofeature.MountRoutes(r, userinfoHandler)

	// Tenant application
	dashboardHandler := dashboardfeature.NewHandler(templates, logger)
	dashboardfeature.MountRoutes(r, dashboardHandler, g)

	smsHandler := smsfeature.NewHandler(templates, members, dispatcher, smsLogs, auditLog, logger)
	smsfeature.MountRoutes(r, smsHandler, g)

	// Admin settings
	staffHandler := systemusersfeature.NewHandler(memberships, users, errLog, auditLog, logger)
	templatesHandler := smstemplatesfeature.NewHandler(templates, errLog, auditLog, logger)
	auditHandler := auditlogfeature.NewHandler(auditEvents, users, errLog, logger)
	settingsHandler := settingsfeature.NewHandler(providers, cipher, errLog, auditLog, logger)
	r.Mount("/app/settings", settingsfeature.Routes(settingsHandler, g, map[string]chi.Router{
		"/users":         systemusersfeature.Routes(staffHandler, g),
		"/sms-templates": smstemplatesfeature.Routes(templatesHandler, g),
		"/audit":         auditlogfeature.Routes(auditHandler, g),
	}))

	return r, nil
}
