package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/syncuphq/syncup-backend/pkg/redis"
)

const defaultTTL = 24 * time.Hour

// Manager marks consumed events in Redis so replayed Pub/Sub deliveries
// are dropped instead of double-applied.
type Manager struct {
	store redisclient.IdempotencyStore
	ttl   time.Duration
}

// NewManager builds a Manager with the provided TTL (defaulted when zero).
func NewManager(store redisclient.IdempotencyStore, ttl time.Duration) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("idempotency store required")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Manager{store: store, ttl: ttl}, nil
}

// CheckAndMarkProcessed returns true when the event was already consumed.
// A false return atomically claims the event for this consumer.
func (m *Manager) CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error) {
	key := m.store.IdempotencyKey(consumer, eventID.String())
	claimed, err := m.store.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), m.ttl)
	if err != nil {
		return false, err
	}
	return !claimed, nil
}

// Delete releases a claim so a failed event can be retried.
func (m *Manager) Delete(ctx context.Context, consumer string, eventID uuid.UUID) error {
	return m.store.Del(ctx, m.store.IdempotencyKey(consumer, eventID.String()))
}
