// internal/app/features/login/handler.go
package login

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	membershipstore "github.com/ovibase/ovibase/internal/app/store/memberships"
	userstore "github.com/ovibase/ovibase/internal/app/store/users"
	"github.com/ovibase/ovibase/internal/app/system/auditlog"
	"github.com/ovibase/ovibase/internal/app/system/auth"
	"github.com/ovibase/ovibase/internal/app/system/authutil"
	"github.com/ovibase/ovibase/internal/app/system/authz"
	"github.com/ovibase/ovibase/internal/app/system/host"
	"github.com/ovibase/ovibase/internal/app/system/ratelimit"
	"github.com/ovibase/ovibase/internal/app/system/respond"
	"github.com/ovibase/ovibase/internal/app/system/timeouts"
	"github.com/ovibase/ovibase/internal/app/system/workspace"
	"github.com/ovibase/ovibase/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// User-facing messages.
const (
	MsgBadPayload        = "Invalid request payload."
	MsgInvalidInput      = "Please enter a valid email and password."
	MsgTenantFormHint    = "Tenant not resolved. Login via your workspace subdomain."
	MsgTenantAPIHint     = "Tenant not resolved. Login via your tenant subdomain."
	MsgInvalidCreds      = "Invalid credentials."
	MsgNotMemberForm     = "This account is not a member of this workspace."
	MsgNotMemberAPI      = "This account is not a member of this tenant."
	MsgServerError       = "Something went wrong. Please try again."
	chooserMissingError  = "missing"
	defaultAfterLoginURL = authz.AppPath
)

// UserFinder looks up global users by email.
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (models.User, error)
}

// MembershipFinder looks up a user's membership in a tenant.
type MembershipFinder interface {
	Get(ctx context.Context, userID, tenantID primitive.ObjectID) (models.Membership, error)
}

type Handler struct {
	Users       UserFinder
	Memberships MembershipFinder
	Sessions    *auth.SessionManager
	Limiter     *ratelimit.LoginLimiter // nil disables throttling
	AuditLog    *auditlog.Logger
	Metrics     *Metrics
	BaseDomain  string
	Log         *zap.Logger
}

func NewHandler(users UserFinder, memberships MembershipFinder, sessions *auth.SessionManager, limiter *ratelimit.LoginLimiter, audit *auditlog.Logger, metrics *Metrics, baseDomain string, logger *zap.Logger) *Handler {
	return &Handler{
		Users:       users,
		Memberships: memberships,
		Sessions:    sessions,
		Limiter:     limiter,
		AuditLog:    audit,
		Metrics:     metrics,
		BaseDomain:  baseDomain,
		Log:         logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

type tenantView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type loginPage struct {
	Mode   string      `json:"mode"` // tenant | root | unknown
	Slug   string      `json:"slug,omitempty"`
	Tenant *tenantView `json:"tenant,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// ServeLogin describes the login page for the current host: a tenant form,
// the root workspace chooser, or an unknown workspace.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	page := loginPage{Mode: "root", Error: query.Get(r, "error")}

	if ws := workspace.FromRequest(r); ws != nil && !ws.IsRoot {
		page.Slug = ws.Slug
		page.Mode = "unknown"
		if ws.Tenant != nil {
			page.Mode = "tenant"
			page.Tenant = &tenantView{ID: ws.Tenant.ID.Hex(), Name: ws.Tenant.Name, Slug: ws.Tenant.Slug}
		}
	}

	respond.JSON(w, http.StatusOK, page)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

type credentials struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RedirectTo string `json:"redirectTo"`
}

func isFormRequest(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.Contains(ct, "application/x-www-form-urlencoded") ||
		strings.Contains(ct, "multipart/form-data")
}

func parseCredentials(r *http.Request, formMode bool) (credentials, error) {
	var c credentials
	if formMode {
		if strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				return c, err
			}
		} else if err := r.ParseForm(); err != nil {
			return c, err
		}
		c.Email = r.PostFormValue("email")
		c.Password = r.PostFormValue("password")
		c.RedirectTo = r.PostFormValue("redirectTo")
	} else if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		return c, err
	}
	c.Email = strings.TrimSpace(c.Email)
	c.RedirectTo = strings.TrimSpace(c.RedirectTo)
	return c, nil
}

// SafeRedirect returns target when it is an internal path, else /app.
func SafeRedirect(target string) string {
	if strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") && !strings.HasPrefix(target, "/\\") {
		return target
	}
	return defaultAfterLoginURL
}

// HandleLoginPost authenticates against the tenant resolved from the host.
// Form posts are answered with 303 redirects; JSON posts with JSON.
func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	formMode := isFormRequest(r)
	fail := func(status int, formMsg, apiMsg, outcome string) {
		h.Metrics.observe(outcome)
		if formMode {
			respond.SeeOther(w, r, respond.WithQuery(authz.LoginPath, url.Values{"error": {formMsg}}))
			return
		}
		respond.Error(w, status, apiMsg)
	}

	creds, err := parseCredentials(r, formMode)
	if err != nil {
		fail(http.StatusBadRequest, MsgBadPayload, MsgBadPayload, outcomeInvalid)
		return
	}
	if !authutil.IsValidEmail(creds.Email) || creds.Password == "" {
		fail(http.StatusBadRequest, MsgInvalidInput, MsgInvalidInput, outcomeInvalid)
		return
	}

	if h.Limiter != nil {
		if ok, reason := h.Limiter.Check(r, creds.Email); !ok {
			h.AuditLog.LoginFailedRateLimit(r.Context(), r, creds.Email, reason)
			fail(http.StatusTooManyRequests, reason, reason, outcomeThrottled)
			return
		}
	}

	ws := workspace.FromRequest(r)
	if ws == nil || ws.Tenant == nil {
		fail(http.StatusBadRequest, MsgTenantFormHint, MsgTenantAPIHint, outcomeNoTenant)
		return
	}
	tenant := *ws.Tenant

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, userstore.NormalizeEmail(creds.Email))
	if errors.Is(err, userstore.ErrNotFound) {
		h.AuditLog.LoginFailedUserNotFound(ctx, r, &tenant.ID, creds.Email)
		fail(http.StatusUnauthorized, MsgInvalidCreds, MsgInvalidCreds, outcomeBadCreds)
		return
	}
	if err != nil {
		h.Log.Error("login: user lookup failed", zap.Error(err))
		fail(http.StatusInternalServerError, MsgServerError, MsgServerError, outcomeError)
		return
	}

	if !authutil.CheckPassword(creds.Password, user.PasswordHash) {
		h.AuditLog.LoginFailedWrongPassword(ctx, r, user.ID, &tenant.ID, creds.Email)
		fail(http.StatusUnauthorized, MsgInvalidCreds, MsgInvalidCreds, outcomeBadCreds)
		return
	}

	m, err := h.Memberships.Get(ctx, user.ID, tenant.ID)
	if errors.Is(err, membershipstore.ErrNotFound) {
		h.AuditLog.LoginFailedNotMember(ctx, r, user.ID, tenant.ID)
		fail(http.StatusForbidden, MsgNotMemberForm, MsgNotMemberAPI, outcomeNotMember)
		return
	}
	if err != nil {
		h.Log.Error("login: membership lookup failed", zap.Error(err))
		fail(http.StatusInternalServerError, MsgServerError, MsgServerError, outcomeError)
		return
	}

	if err := h.Sessions.Issue(w, user.ID.Hex(), tenant.ID.Hex(), m.Role); err != nil {
		h.Log.Error("login: issue session failed", zap.Error(err))
		fail(http.StatusInternalServerError, MsgServerError, MsgServerError, outcomeError)
		return
	}

	if h.Limiter != nil {
		h.Limiter.ResetEmail(creds.Email)
	}
	h.AuditLog.LoginSuccess(ctx, r, user.ID, tenant.ID, user.Email)
	h.Metrics.observe(outcomeSuccess)
	h.Log.Info("login",
		zap.String("user_id", user.ID.Hex()),
		zap.String("tenant", tenant.Slug),
		zap.String("role", string(m.Role)))

	if formMode {
		respond.SeeOther(w, r, SafeRedirect(creds.RedirectTo))
		return
	}
	respond.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login/redirect                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleChooser sends the root-domain chooser to the tenant's login page.
func (h *Handler) HandleChooser(w http.ResponseWriter, r *http.Request) {
	slug := host.CleanSlug(r.FormValue("slug"))
	if slug == "" {
		respond.SeeOther(w, r, respond.WithQuery(authz.LoginPath, url.Values{"error": {chooserMissingError}}))
		return
	}
	respond.SeeOther(w, r, host.TenantURL(host.Headers(r), h.BaseDomain, slug, authz.LoginPath))
}
