package sms_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/ovibase/ovibase/internal/app/system/sms"
)

func TestTextLocal_Success(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("Content-Type = %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		got, _ = url.ParseQuery(string(body))
		w.Write([]byte(`{"status":"success","balance":100}`))
	}))
	defer srv.Close()

	p := sms.NewTextLocal(srv.URL)
	err := p.Send(context.Background(), sms.Credential{APIKey: "key", Sender: "OVIBASE"}, "447700900001", "Hello Ada")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	want := map[string]string{"apikey": "key", "numbers": "447700900001", "sender": "OVIBASE", "message": "Hello Ada"}
	for k, v := range want {
		if got.Get(k) != v {
			t.Errorf("%s = %q, want %q", k, got.Get(k), v)
		}
	}
}

func TestTextLocal_FailureStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"failure","errors":[{"code":32,"message":"Invalid number format"}]}`))
	}))
	defer srv.Close()

	err := sms.NewTextLocal(srv.URL).Send(context.Background(), sms.Credential{APIKey: "k"}, "1", "x")
	if err == nil || !strings.Contains(err.Error(), "Invalid number format") {
		t.Fatalf("err = %v", err)
	}
}

func TestTextLocal_HTTPErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := sms.NewTextLocal(srv.URL).Send(context.Background(), sms.Credential{APIKey: "k"}, "1", "x")
	if err == nil || err.Error() != "HTTP 502 from TextLocal" {
		t.Fatalf("err = %v", err)
	}
}

func TestTextLocal_HTTPErrorWithBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := sms.NewTextLocal(srv.URL).Send(context.Background(), sms.Credential{APIKey: "k"}, "1", "x")
	if err == nil || err.Error() != "rate limited" {
		t.Fatalf("err = %v", err)
	}
}

func TestTextLocal_BaseURLOverride(t *testing.T) {
	hit := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
		w.Write([]byte(`{"status":"success"}`))
	}))
	defer srv.Close()

	p := sms.NewTextLocal("http://127.0.0.1:1/unused")
	if err := p.Send(context.Background(), sms.Credential{APIKey: "k", BaseURL: srv.URL}, "1", "x"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !hit {
		t.Fatal("override endpoint not used")
	}
}
