package formutil_test

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/ovibase/ovibase/internal/app/system/formutil"
	"github.com/ovibase/ovibase/internal/app/system/limits"
)

func formRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestParseAndRead(t *testing.T) {
	req := formRequest("name=+Ada+&canSms=on&canFinance=false&canMembers=1&ids=a,b&ids=c&ids=")
	if err := formutil.Parse(httptest.NewRecorder(), req); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got := formutil.String(req, "name"); got != "Ada" {
		t.Errorf("String = %q, want Ada", got)
	}
	for name, want := range map[string]bool{"canSms": true, "canMembers": true, "canFinance": false, "missing": false} {
		if got := formutil.Checked(req, name); got != want {
			t.Errorf("Checked(%s) = %v, want %v", name, got, want)
		}
	}
	if got := formutil.List(req, "ids"); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("List = %v", got)
	}
}

func TestParse_TooLarge(t *testing.T) {
	req := formRequest("x=" + strings.Repeat("a", limits.MaxFormSize+1))
	if err := formutil.Parse(httptest.NewRecorder(), req); err == nil {
		t.Error("expected an error for an oversized body")
	}
}
