// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ovibase/ovibase/internal/app/store/audit"
	"github.com/ovibase/ovibase/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations for a category.
const (
	DestAll = "all" // MongoDB + zap
	DestDB  = "db"
	DestLog = "log"
	DestOff = "off"
)

// Config selects destinations per category.
type Config struct {
	// Auth covers login, logout and signup.
	Auth string
	// Admin covers staff, permission and SMS changes.
	Admin string
}

// Recorder persists events. *audit.Store satisfies it.
type Recorder interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger writes audit events to zap and the store independently; a failed
// store write is logged and never returned to the caller.
type Logger struct {
	store  Recorder
	zapLog *zap.Logger
	config Config
}

// New creates a Logger.
func New(store Recorder, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.TenantID != nil {
		fields = append(fields, zap.String("tenant_id", event.TenantID.Hex()))
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an event. A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	}
	if setting == "" {
		setting = DestAll
	}
	if setting == DestOff {
		return
	}

	if setting == DestAll || setting == DestLog {
		l.logToZap(event)
	}

	if (setting == DestAll || setting == DestDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func authEvent(r *http.Request, eventType string, success bool) audit.Event {
	return audit.Event{
		Category:  audit.CategoryAuth,
		EventType: eventType,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   success,
	}
}

func adminEvent(r *http.Request, eventType string, actorID, tenantID primitive.ObjectID) audit.Event {
	return audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		TenantID:  &tenantID,
		ActorID:   &actorID,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Authentication                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

// LoginSuccess logs a successful login into a tenant.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID, tenantID primitive.ObjectID, email string) {
	e := authEvent(r, audit.EventLoginSuccess, true)
	e.UserID = &userID
	e.TenantID = &tenantID
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// LoginFailedUserNotFound logs an attempt for an unknown email.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, tenantID *primitive.ObjectID, email string) {
	e := authEvent(r, audit.EventLoginFailedUserNotFound, false)
	e.TenantID = tenantID
	e.FailureReason = "user not found"
	e.Details = map[string]string{"attempted_email": email}
	l.Log(ctx, e)
}

// LoginFailedWrongPassword logs a password mismatch.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, tenantID *primitive.ObjectID, email string) {
	e := authEvent(r, audit.EventLoginFailedWrongPassword, false)
	e.UserID = &userID
	e.TenantID = tenantID
	e.FailureReason = "wrong password"
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// LoginFailedNotMember logs valid credentials for a user with no membership
// in the resolved tenant.
func (l *Logger) LoginFailedNotMember(ctx context.Context, r *http.Request, userID, tenantID primitive.ObjectID) {
	e := authEvent(r, audit.EventLoginFailedNotMember, false)
	e.UserID = &userID
	e.TenantID = &tenantID
	e.FailureReason = "not a member"
	l.Log(ctx, e)
}

// LoginFailedRateLimit logs a throttled attempt.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, email, reason string) {
	e := authEvent(r, audit.EventLoginFailedRateLimit, false)
	e.FailureReason = reason
	e.Details = map[string]string{"attempted_email": email}
	l.Log(ctx, e)
}

// Logout logs a sign-out. IDs come from the session and may be empty.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userID, tenantID string) {
	e := authEvent(r, audit.EventLogout, true)
	if oid, err := primitive.ObjectIDFromHex(userID); err == nil {
		e.UserID = &oid
	}
	if oid, err := primitive.ObjectIDFromHex(tenantID); err == nil {
		e.TenantID = &oid
	}
	l.Log(ctx, e)
}

// Signup logs creation of a tenant and its owner.
func (l *Logger) Signup(ctx context.Context, r *http.Request, userID, tenantID primitive.ObjectID, slug string) {
	e := authEvent(r, audit.EventSignup, true)
	e.UserID = &userID
	e.TenantID = &tenantID
	e.Details = map[string]string{"slug": slug}
	l.Log(ctx, e)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Administration                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

// StaffCreated logs a new membership created by an admin.
func (l *Logger) StaffCreated(ctx context.Context, r *http.Request, actorID, tenantID, userID primitive.ObjectID, role string) {
	e := adminEvent(r, audit.EventStaffCreated, actorID, tenantID)
	e.UserID = &userID
	e.Details = map[string]string{"role": role}
	l.Log(ctx, e)
}

// PermissionsUpdated logs a role or capability change.
func (l *Logger) PermissionsUpdated(ctx context.Context, r *http.Request, actorID, tenantID, userID primitive.ObjectID, role string) {
	e := adminEvent(r, audit.EventPermissionsUpdated, actorID, tenantID)
	e.UserID = &userID
	e.Details = map[string]string{"role": role}
	l.Log(ctx, e)
}

// SmsProviderUpdated logs a provider setting change. The key itself is
// never recorded.
func (l *Logger) SmsProviderUpdated(ctx context.Context, r *http.Request, actorID, tenantID primitive.ObjectID, provider string, keyChanged bool) {
	e := adminEvent(r, audit.EventSmsProviderUpdated, actorID, tenantID)
	e.Details = map[string]string{
		"provider":    provider,
		"key_changed": strconv.FormatBool(keyChanged),
	}
	l.Log(ctx, e)
}

// SmsTemplateCreated logs a new template.
func (l *Logger) SmsTemplateCreated(ctx context.Context, r *http.Request, actorID, tenantID, templateID primitive.ObjectID, name string) {
	e := adminEvent(r, audit.EventSmsTemplateCreated, actorID, tenantID)
	e.Details = map[string]string{"template_id": templateID.Hex(), "name": name}
	l.Log(ctx, e)
}

// SmsTemplateDeleted logs a template removal.
func (l *Logger) SmsTemplateDeleted(ctx context.Context, r *http.Request, actorID, tenantID, templateID primitive.ObjectID) {
	e := adminEvent(r, audit.EventSmsTemplateDeleted, actorID, tenantID)
	e.Details = map[string]string{"template_id": templateID.Hex()}
	l.Log(ctx, e)
}

// SmsBatchSent logs the outcome of one dispatch.
func (l *Logger) SmsBatchSent(ctx context.Context, r *http.Request, actorID, tenantID primitive.ObjectID, batch, tag string, attempted, sent, failed int) {
	e := adminEvent(r, audit.EventSmsBatchSent, actorID, tenantID)
	e.Success = failed == 0
	e.Details = map[string]string{
		"batch":     batch,
		"tag":       tag,
		"attempted": strconv.Itoa(attempted),
		"sent":      strconv.Itoa(sent),
		"failed":    strconv.Itoa(failed),
	}
	l.Log(ctx, e)
}
