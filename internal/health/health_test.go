package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MrWong99/soapscribe/pkg/provider/llm/mock"
)

func TestHealthz_AlwaysReturns200(t *testing.T) {
	h := New()

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	h.Healthz(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body result
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q, want %q", body.Status, "ok")
	}
}

func TestReadyz_ProviderAndModelCheckersPass(t *testing.T) {
	p := &mock.Provider{Available: true, ModelReady: true}
	h := New(
		ProviderChecker("ollama", p),
		ModelChecker("llama3.1", p),
	)

	req := httptest.NewRequest("GET", "/readyz", nil)
	rec := httptest.NewRecorder()
	h.Readyz(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body result
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if body.Checks["provider"] != "ok" || body.Checks["model"] != "ok" {
		t.Errorf("checks = %v", body.Checks)
	}
	if len(p.ReadyChecks) != 1 || p.ReadyChecks[0] != "llama3.1" {
		t.Errorf("ReadyChecks = %v", p.ReadyChecks)
	}
}

func TestReadyz_UnavailableProviderFails(t *testing.T) {
	p := &mock.Provider{Available: false, ModelReady: true}
	h := New(ProviderChecker("ollama", p))

	req := httptest.NewRequest("GET", "/readyz", nil)
	rec := httptest.NewRecorder()
	h.Readyz(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	var body result
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if body.Status != "fail" {
		t.Errorf("status = %q, want %q", body.Status, "fail")
	}
	if body.Checks["provider"] != "fail: provider ollama is unreachable" {
		t.Errorf("provider check = %q", body.Checks["provider"])
	}
}

func TestReadyz_CustomCheckerFails(t *testing.T) {
	h := New(
		Checker{Name: "custom", Check: func(_ context.Context) error {
			return errors.New("boom")
		}},
	)

	req := httptest.NewRequest("GET", "/readyz", nil)
	rec := httptest.NewRecorder()
	h.Readyz(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestRegister_RoutesWork(t *testing.T) {
	p := &mock.Provider{Available: true, ModelReady: true}
	h := New(ProviderChecker("mock", p))

	mux := http.NewServeMux()
	h.Register(mux)

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest("GET", path, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want %d", path, rec.Code, http.StatusOK)
		}
	}
}
