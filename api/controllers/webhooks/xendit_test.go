package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/syncuphq/syncup-backend/internal/subscriptions"
)

func TestXenditInvoice_SuccessAndIdempotent(t *testing.T) {
	invoiceID := "inv_" + uuid.NewString()
	payload := buildInvoiceEvent(t, invoiceID, "PAID")
	service := &fakePaymentConfirmer{}
	guard, err := subscriptions.NewInvoiceGuard(newInMemoryStore(), time.Minute)
	if err != nil {
		t.Fatalf("guard setup: %v", err)
	}
	handler := XenditInvoice(service, "secret", guard, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/xendit", bytes.NewReader(payload))
	req.Header.Set("x-callback-token", "secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if service.calls != 1 {
		t.Fatalf("expected confirmer called once, got %d", service.calls)
	}
	if service.lastInvoiceID != invoiceID {
		t.Fatalf("expected invoice %s, got %s", invoiceID, service.lastInvoiceID)
	}

	req2 := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/xendit", bytes.NewReader(payload))
	req2.Header.Set("x-callback-token", "secret")
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusOK {
		t.Fatalf("expected 200 on duplicate, got %d", rec2.Code)
	}
	if service.calls != 1 {
		t.Fatalf("duplicate should not increment calls, got %d", service.calls)
	}
}

func TestXenditInvoice_InvalidToken(t *testing.T) {
	payload := buildInvoiceEvent(t, "inv_"+uuid.NewString(), "PAID")
	service := &fakePaymentConfirmer{}
	guard, err := subscriptions.NewInvoiceGuard(newInMemoryStore(), time.Minute)
	if err != nil {
		t.Fatalf("guard setup: %v", err)
	}
	handler := XenditInvoice(service, "secret", guard, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/xendit", bytes.NewReader(payload))
	req.Header.Set("x-callback-token", "wrong")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for invalid token, got %d", rec.Code)
	}
	if service.calls != 0 {
		t.Fatalf("confirmer should not be invoked on invalid token")
	}
}

func TestXenditInvoice_IgnoresNonPaidStatus(t *testing.T) {
	payload := buildInvoiceEvent(t, "inv_"+uuid.NewString(), "EXPIRED")
	service := &fakePaymentConfirmer{}
	guard, err := subscriptions.NewInvoiceGuard(newInMemoryStore(), time.Minute)
	if err != nil {
		t.Fatalf("guard setup: %v", err)
	}
	handler := XenditInvoice(service, "secret", guard, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/xendit", bytes.NewReader(payload))
	req.Header.Set("x-callback-token", "secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for ignored status, got %d", rec.Code)
	}
	if service.calls != 0 {
		t.Fatalf("confirmer should not be invoked for expired invoice")
	}
}

func TestXenditInvoice_FailureReleasesClaim(t *testing.T) {
	invoiceID := "inv_" + uuid.NewString()
	payload := buildInvoiceEvent(t, invoiceID, "SETTLED")
	service := &fakePaymentConfirmer{failures: 1}
	guard, err := subscriptions.NewInvoiceGuard(newInMemoryStore(), time.Minute)
	if err != nil {
		t.Fatalf("guard setup: %v", err)
	}
	handler := XenditInvoice(service, "secret", guard, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/xendit", bytes.NewReader(payload))
	req.Header.Set("x-callback-token", "secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code == http.StatusOK {
		t.Fatalf("expected failure status, got 200")
	}

	req2 := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/xendit", bytes.NewReader(payload))
	req2.Header.Set("x-callback-token", "secret")
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusOK {
		t.Fatalf("expected retry to succeed, got %d", rec2.Code)
	}
	if service.calls != 2 {
		t.Fatalf("expected confirmer retried after failure, got %d calls", service.calls)
	}
}

func buildInvoiceEvent(t *testing.T, invoiceID, status string) []byte {
	payload, err := json.Marshal(map[string]string{
		"id":          invoiceID,
		"external_id": uuid.NewString(),
		"status":      status,
	})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return payload
}

type fakePaymentConfirmer struct {
	calls         int
	failures      int
	lastInvoiceID string
}

func (f *fakePaymentConfirmer) ConfirmPaidSubscription(ctx context.Context, invoiceID string) error {
	f.calls++
	f.lastInvoiceID = invoiceID
	if f.failures > 0 {
		f.failures--
		return fmt.Errorf("confirm failed")
	}
	return nil
}

type inMemoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newInMemoryStore() *inMemoryStore {
	return &inMemoryStore{data: make(map[string]string)}
}

func (s *inMemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[key], nil
}

func (s *inMemoryStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data[key]; exists {
		return false, nil
	}
	s.data[key] = fmt.Sprintf("%v", value)
	return true, nil
}

func (s *inMemoryStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("su:idempotency:%s:%s", scope, id)
}

func (s *inMemoryStore) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}
