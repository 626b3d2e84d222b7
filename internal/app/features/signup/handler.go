// internal/app/features/signup/handler.go
package signup

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"

	membershipstore "github.com/ovibase/ovibase/internal/app/store/memberships"
	tenantstore "github.com/ovibase/ovibase/internal/app/store/tenants"
	userstore "github.com/ovibase/ovibase/internal/app/store/users"
	"github.com/ovibase/ovibase/internal/app/system/auditlog"
	"github.com/ovibase/ovibase/internal/app/system/auth"
	"github.com/ovibase/ovibase/internal/app/system/authutil"
	"github.com/ovibase/ovibase/internal/app/system/htmlsanitize"
	"github.com/ovibase/ovibase/internal/app/system/respond"
	"github.com/ovibase/ovibase/internal/app/system/timeouts"
	"github.com/ovibase/ovibase/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	MsgSlugTaken   = "Tenant slug already taken."
	MsgEmailTaken  = "Email already in use."
	MsgInvalid     = "Please correct the highlighted fields."
	MsgBadPayload  = "Invalid request payload."
	MsgServerError = "Something went wrong. Please try again."

	// DefaultBaseDomain names the primary tenant host when none is configured.
	DefaultBaseDomain = "ovibase.com"

	minNameLength = 2
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]{2,}$`)

// TenantStore is the tenant surface signup writes to.
type TenantStore interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, t models.Tenant) (models.Tenant, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// UserStore is the user surface signup writes to.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (models.User, error)
	Create(ctx context.Context, u models.User) (models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// MembershipCreator inserts the owner membership.
type MembershipCreator interface {
	Create(ctx context.Context, m models.Membership) (models.Membership, error)
}

// TxRunner groups the three inserts. txn.Runner satisfies it.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

type Handler struct {
	Tenants     TenantStore
	Users       UserStore
	Memberships MembershipCreator
	Tx          TxRunner // nil runs the inserts directly
	Sessions    *auth.SessionManager
	AuditLog    *auditlog.Logger
	BaseDomain  string
	Log         *zap.Logger
}

func NewHandler(tenants TenantStore, users UserStore, memberships MembershipCreator, tx TxRunner, sessions *auth.SessionManager, audit *auditlog.Logger, baseDomain string, logger *zap.Logger) *Handler {
	return &Handler{
		Tenants:     tenants,
		Users:       users,
		Memberships: memberships,
		Tx:          tx,
		Sessions:    sessions,
		AuditLog:    audit,
		BaseDomain:  baseDomain,
		Log:         logger,
	}
}

type request struct {
	TenantName string `json:"tenantName"`
	TenantSlug string `json:"tenantSlug"`
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

// validate cleans r in place and returns per-field problems.
func (r *request) validate() map[string]string {
	fields := map[string]string{}

	r.TenantName = htmlsanitize.PlainText(r.TenantName)
	if len([]rune(r.TenantName)) < minNameLength {
		fields["tenantName"] = "Organization name must be at least 2 characters."
	}
	r.TenantSlug = strings.TrimSpace(r.TenantSlug)
	if !slugPattern.MatchString(r.TenantSlug) {
		fields["tenantSlug"] = "Slug must be at least 2 characters of a-z, 0-9 or -."
	}
	r.FullName = htmlsanitize.PlainText(r.FullName)
	if len([]rune(r.FullName)) < minNameLength {
		fields["fullName"] = "Full name must be at least 2 characters."
	}
	email, err := authutil.ValidateEmail(r.Email)
	if err != nil {
		fields["email"] = "Enter a valid email address."
	}
	r.Email = userstore.NormalizeEmail(email)
	if err := authutil.ValidatePassword(r.Password); err != nil {
		fields["password"] = err.Error()
	}
	return fields
}

type tenantView struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type userView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type response struct {
	OK     bool       `json:"ok"`
	Tenant tenantView `json:"tenant"`
	User   userView   `json:"user"`
}

// HandleSignup creates a tenant, its first user as OWNER, and signs the
// user in to the new tenant.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var in request
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Error(w, http.StatusBadRequest, MsgBadPayload)
		return
	}
	if fields := in.validate(); len(fields) > 0 {
		respond.JSON(w, http.StatusBadRequest, map[string]any{"error": MsgInvalid, "fields": fields})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	taken, err := h.Tenants.SlugExists(ctx, in.TenantSlug)
	if err != nil {
		h.serverError(w, "slug lookup", err)
		return
	}
	if taken {
		respond.Error(w, http.StatusConflict, MsgSlugTaken)
		return
	}
	if _, err := h.Users.GetByEmail(ctx, in.Email); err == nil {
		respond.Error(w, http.StatusConflict, MsgEmailTaken)
		return
	} else if !errors.Is(err, userstore.ErrNotFound) {
		h.serverError(w, "email lookup", err)
		return
	}

	hash, err := authutil.HashPassword(in.Password)
	if err != nil {
		h.serverError(w, "hash password", err)
		return
	}

	var tenant models.Tenant
	var user models.User
	err = h.run(ctx, func(ctx context.Context) error {
		var err error
		tenant, err = h.Tenants.Create(ctx, models.Tenant{
			Name: in.TenantName,
			Slug: in.TenantSlug,
			Domains: []models.TenantDomain{{
				Hostname:  in.TenantSlug + "." + h.baseDomain(),
				IsPrimary: true,
			}},
		})
		if err != nil {
			return err
		}
		user, err = h.Users.Create(ctx, models.User{Email: in.Email, Name: in.FullName, PasswordHash: hash})
		if err != nil {
			return err
		}
		_, err = h.Memberships.Create(ctx, models.Membership{UserID: user.ID, TenantID: tenant.ID, Role: models.RoleOwner})
		return err
	})
	if err != nil {
		h.rollback(tenant.ID, user.ID)
		switch {
		case errors.Is(err, tenantstore.ErrDuplicateSlug):
			respond.Error(w, http.StatusConflict, MsgSlugTaken)
		case errors.Is(err, userstore.ErrDuplicateEmail):
			respond.Error(w, http.StatusConflict, MsgEmailTaken)
		case errors.Is(err, membershipstore.ErrDuplicateMembership):
			respond.Error(w, http.StatusConflict, MsgEmailTaken)
		default:
			h.serverError(w, "create tenant", err)
		}
		return
	}

	if err := h.Sessions.Issue(w, user.ID.Hex(), tenant.ID.Hex(), models.RoleOwner); err != nil {
		h.serverError(w, "issue session", err)
		return
	}

	h.AuditLog.Signup(ctx, r, user.ID, tenant.ID, tenant.Slug)
	h.Log.Info("tenant created",
		zap.String("tenant", tenant.Slug),
		zap.String("user_id", user.ID.Hex()))

	respond.JSON(w, http.StatusOK, response{
		OK:     true,
		Tenant: tenantView{ID: tenant.ID.Hex(), Slug: tenant.Slug, Name: tenant.Name},
		User:   userView{ID: user.ID.Hex(), Email: user.Email, Name: user.Name},
	})
}

func (h *Handler) run(ctx context.Context, fn func(ctx context.Context) error) error {
	if h.Tx == nil {
		return fn(ctx)
	}
	return h.Tx.Run(ctx, fn)
}

// rollback removes whatever a failed signup left behind when it ran
// without a transaction. Zero IDs are skipped.
func (h *Handler) rollback(tenantID, userID primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Short())
	defer cancel()
	if !userID.IsZero() {
		if err := h.Users.Delete(ctx, userID); err != nil {
			h.Log.Warn("signup rollback: delete user", zap.Error(err))
		}
	}
	if !tenantID.IsZero() {
		if err := h.Tenants.Delete(ctx, tenantID); err != nil {
			h.Log.Warn("signup rollback: delete tenant", zap.Error(err))
		}
	}
}

func (h *Handler) baseDomain() string {
	if b := strings.TrimSpace(h.BaseDomain); b != "" {
		return strings.ToLower(b)
	}
	return DefaultBaseDomain
}

func (h *Handler) serverError(w http.ResponseWriter, step string, err error) {
	h.Log.Error("signup failed", zap.String("step", step), zap.Error(err))
	respond.Error(w, http.StatusInternalServerError, MsgServerError)
}
