package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/syncuphq/syncup-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

type stubLimiter struct {
	scopes []string
	limits []int64
	deny   map[string]bool
}

func (s *stubLimiter) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	s.scopes = append(s.scopes, scope)
	s.limits = append(s.limits, limit)
	if s.deny[scope] {
		return false, limit + 1, nil
	}
	return true, 1, nil
}

func nextHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthRateLimitPassesWithinLimits(t *testing.T) {
	store := &stubLimiter{}
	policy := NewAuthRateLimitPolicy("login", time.Minute, 10, 5)
	var called bool

	handler := AuthRateLimit(policy, store, testLogger())(nextHandler(&called))

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"User@Example.com"}`))
	req.RemoteAddr = "203.0.113.9:4411"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Fatal("expected request to reach the next handler")
	}
	if len(store.scopes) != 2 {
		t.Fatalf("expected ip and email checks, got scopes %v", store.scopes)
	}
	if store.scopes[0] != "ip:login:203.0.113.9" {
		t.Fatalf("unexpected ip scope %q", store.scopes[0])
	}
	if !strings.HasPrefix(store.scopes[1], "email:login:") {
		t.Fatalf("unexpected email scope %q", store.scopes[1])
	}
	// Email is hashed before it becomes part of a counter scope.
	if strings.Contains(store.scopes[1], "example.com") {
		t.Fatalf("email scope leaks the address: %q", store.scopes[1])
	}
	if store.limits[0] != 10 || store.limits[1] != 5 {
		t.Fatalf("unexpected limits %v", store.limits)
	}
}

func TestAuthRateLimitBlocksOverIPLimit(t *testing.T) {
	store := &stubLimiter{deny: map[string]bool{"ip:login:203.0.113.9": true}}
	policy := NewAuthRateLimitPolicy("login", time.Minute, 10, 5)
	var called bool

	handler := AuthRateLimit(policy, store, testLogger())(nextHandler(&called))

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"user@example.com"}`))
	req.RemoteAddr = "203.0.113.9:4411"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if called {
		t.Fatal("expected request to be blocked")
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if len(store.scopes) != 1 {
		t.Fatalf("email check should not run after an ip block, got %v", store.scopes)
	}
}

func TestAuthRateLimitDisabledPolicyIsPassthrough(t *testing.T) {
	store := &stubLimiter{}
	policy := NewAuthRateLimitPolicy("login", 0, 0, 0)
	var called bool

	handler := AuthRateLimit(policy, store, testLogger())(nextHandler(&called))

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Fatal("expected passthrough for a disabled policy")
	}
	if len(store.scopes) != 0 {
		t.Fatalf("no counters should be touched, got %v", store.scopes)
	}
}
