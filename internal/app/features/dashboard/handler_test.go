package dashboard_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/ovibase/ovibase/internal/app/features/dashboard"
	"github.com/ovibase/ovibase/internal/domain/models"
	"github.com/ovibase/ovibase/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeTemplates struct {
	rows  []models.SmsTemplate
	err   error
	calls int
}

func (f *fakeTemplates) List(_ context.Context, tenantID primitive.ObjectID) ([]models.SmsTemplate, error) {
	f.calls++
	var out []models.SmsTemplate
	for _, t := range f.rows {
		if t.TenantID == tenantID {
			out = append(out, t)
		}
	}
	return out, f.err
}

type permission struct {
	Key     string `json:"key"`
	Allowed bool   `json:"allowed"`
}

type dashboardBody struct {
	Tenant struct {
		Slug string `json:"slug"`
	} `json:"tenant"`
	Role         string       `json:"role"`
	IsAdmin      bool         `json:"isAdmin"`
	CanSMS       bool         `json:"canSms"`
	Permissions  []permission `json:"permissions"`
	SmsTemplates []struct {
		Name string `json:"name"`
	} `json:"smsTemplates"`
	Banner *dashboard.Banner `json:"banner"`
}

var tenant = models.Tenant{ID: primitive.NewObjectID(), Name: "Grace Chapel", Slug: "grace"}

func serveDashboard(t *testing.T, h *dashboard.Handler, target string, withAuth func(*http.Request) *http.Request) (*testutil.ResponseRecorder, dashboardBody) {
	t.Helper()
	req := withAuth(testutil.NewRequest(http.MethodGet, target))
	rec := testutil.NewRecorder()
	h.ServeDashboard(rec, req)
	var body dashboardBody
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return rec, body
}

func TestServeDashboard_Admin(t *testing.T) {
	tpls := &fakeTemplates{rows: []models.SmsTemplate{
		{ID: primitive.NewObjectID(), TenantID: tenant.ID, Name: "Welcome"},
		{ID: primitive.NewObjectID(), TenantID: primitive.NewObjectID(), Name: "Other tenant"},
	}}
	h := dashboard.NewHandler(tpls, zap.NewNop())

	rec, body := serveDashboard(t, h, "/app", func(r *http.Request) *http.Request {
		return testutil.WithAuthz(r, testutil.AdminContext(tenant))
	})

	rec.AssertStatus(t, http.StatusOK)
	if !body.IsAdmin || !body.CanSMS || body.Role != "ADMIN" || body.Tenant.Slug != "grace" {
		t.Errorf("unexpected header fields: %+v", body)
	}
	if len(body.Permissions) != 5 {
		t.Fatalf("expected 5 permission rows, got %d", len(body.Permissions))
	}
	for _, p := range body.Permissions {
		if !p.Allowed {
			t.Errorf("admin should hold %s", p.Key)
		}
	}
	if len(body.SmsTemplates) != 1 || body.SmsTemplates[0].Name != "Welcome" {
		t.Errorf("templates = %+v, want only this tenant's", body.SmsTemplates)
	}
	if body.Banner != nil {
		t.Errorf("no banner expected, got %+v", body.Banner)
	}
}

func TestServeDashboard_StaffWithoutSMS(t *testing.T) {
	tpls := &fakeTemplates{}
	h := dashboard.NewHandler(tpls, zap.NewNop())

	rec, body := serveDashboard(t, h, "/app", func(r *http.Request) *http.Request {
		return testutil.WithAuthz(r, testutil.StaffContext(tenant, false))
	})

	rec.AssertStatus(t, http.StatusOK)
	if body.IsAdmin || body.CanSMS {
		t.Errorf("staff without flags: isAdmin=%v canSms=%v", body.IsAdmin, body.CanSMS)
	}
	for _, p := range body.Permissions {
		if p.Allowed {
			t.Errorf("%s should not be allowed", p.Key)
		}
	}
	if tpls.calls != 0 {
		t.Error("templates should not be listed without the sms capability")
	}
}

func TestServeDashboard_TemplateErrorStillRenders(t *testing.T) {
	h := dashboard.NewHandler(&fakeTemplates{err: errors.New("db down")}, zap.NewNop())

	rec, body := serveDashboard(t, h, "/app", func(r *http.Request) *http.Request {
		return testutil.WithAuthz(r, testutil.StaffContext(tenant, true))
	})

	rec.AssertStatus(t, http.StatusOK)
	if !body.CanSMS || len(body.SmsTemplates) != 0 {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestServeDashboard_NoAuthzContext(t *testing.T) {
	h := dashboard.NewHandler(nil, zap.NewNop())

	rec, _ := serveDashboard(t, h, "/app", func(r *http.Request) *http.Request { return r })

	rec.AssertRedirect(t, "/login")
}

func TestBannerFromQuery(t *testing.T) {
	tests := []struct {
		target string
		want   *dashboard.Banner
	}{
		{"/app", nil},
		{"/app?sms=sent&count=3&template=Welcome", &dashboard.Banner{Kind: "sms_sent", Count: "3", Template: "Welcome"}},
		{"/app?sms=sent", &dashboard.Banner{Kind: "sms_sent", Count: "0"}},
		{"/app?sms=partial&sent=2&failed=1", &dashboard.Banner{Kind: "sms_partial", Sent: "2", Failed: "1"}},
		{"/app?error=No+members&sms=sent", &dashboard.Banner{Kind: "error", Message: "No members"}},
		{"/app?sms=bogus", nil},
	}
	for _, tt := range tests {
		got := dashboard.BannerFromQuery(testutil.NewRequest(http.MethodGet, tt.target))
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("%s: got %+v, want nil", tt.target, got)
		case tt.want != nil && (got == nil || *got != *tt.want):
			t.Errorf("%s: got %+v, want %+v", tt.target, got, tt.want)
		}
	}
}

func TestServeUnauthorized(t *testing.T) {
	h := dashboard.NewHandler(nil, zap.NewNop())

	req := testutil.WithAuthz(testutil.NewRequest(http.MethodGet, "/app/unauthorized"), testutil.StaffContext(tenant, true))
	rec := testutil.NewRecorder()
	h.ServeUnauthorized(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	var body struct {
		Permissions []permission `json:"permissions"`
		ManageURL   string       `json:"manageUrl"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ManageURL != "" {
		t.Errorf("staff should not get a manage link, got %q", body.ManageURL)
	}
	allowed := map[string]bool{}
	for _, p := range body.Permissions {
		allowed[p.Key] = p.Allowed
	}
	if !allowed["sms"] || allowed["finance"] {
		t.Errorf("unexpected matrix %v", allowed)
	}

	req = testutil.WithAuthz(testutil.NewRequest(http.MethodGet, "/app/unauthorized"), testutil.OwnerContext(tenant))
	rec = testutil.NewRecorder()
	h.ServeUnauthorized(rec, req)
	rec.AssertContains(t, `"manageUrl":"/app/settings/users"`)
}
