package subscriptions

import (
	"context"
	"fmt"
	"time"

	redisclient "github.com/syncuphq/syncup-backend/pkg/redis"
)

const invoiceGuardTTL = 24 * time.Hour

// InvoiceGuard deduplicates payment provider callbacks in Redis. Providers
// retry webhooks aggressively, so each invoice is claimed once before
// processing.
type InvoiceGuard struct {
	store redisclient.IdempotencyStore
	ttl   time.Duration
}

// NewInvoiceGuard builds an InvoiceGuard with the provided TTL (defaulted
// when zero).
func NewInvoiceGuard(store redisclient.IdempotencyStore, ttl time.Duration) (*InvoiceGuard, error) {
	if store == nil {
		return nil, fmt.Errorf("idempotency store required")
	}
	if ttl <= 0 {
		ttl = invoiceGuardTTL
	}
	return &InvoiceGuard{store: store, ttl: ttl}, nil
}

// CheckAndMark returns true when the invoice was already processed. A false
// return atomically claims the invoice for this handler.
func (g *InvoiceGuard) CheckAndMark(ctx context.Context, invoiceID string) (bool, error) {
	key := g.store.IdempotencyKey("xendit-invoice", invoiceID)
	claimed, err := g.store.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), g.ttl)
	if err != nil {
		return false, err
	}
	return !claimed, nil
}

// Delete releases a claim so a failed invoice can be retried.
func (g *InvoiceGuard) Delete(ctx context.Context, invoiceID string) error {
	return g.store.Del(ctx, g.store.IdempotencyKey("xendit-invoice", invoiceID))
}
