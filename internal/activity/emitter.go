package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/syncuphq/syncup-backend/pkg/enums"
	"github.com/syncuphq/syncup-backend/pkg/outbox"
)

// Entry describes one activity trail line to be recorded.
type Entry struct {
	OrganizationID uuid.UUID
	ActorID        uuid.UUID
	Type           enums.ActivityType
	Aggregate      enums.OutboxAggregateType
	TargetID       *uuid.UUID
	Detail         map[string]any
}

// Sink is the write surface services use to record activity.
type Sink interface {
	RecordTx(ctx context.Context, tx *gorm.DB, entry Entry) error
}

// Emitter stages activity entries on the transactional outbox. The trail
// is best effort: callers log and swallow emit failures so the primary
// operation never fails on audit problems.
type Emitter struct {
	outbox *outbox.Service
}

// NewEmitter builds an Emitter on top of the outbox service.
func NewEmitter(outboxSvc *outbox.Service) *Emitter {
	return &Emitter{outbox: outboxSvc}
}

// RecordTx stages one activity entry inside the caller's transaction.
func (e *Emitter) RecordTx(ctx context.Context, tx *gorm.DB, entry Entry) error {
	aggregate := entry.Aggregate
	if aggregate == "" {
		aggregate = enums.AggregateOrganization
	}
	payload := RecordedPayload{
		OrganizationID: entry.OrganizationID,
		ActorID:        entry.ActorID,
		Type:           entry.Type,
		TargetID:       entry.TargetID,
		Detail:         entry.Detail,
		OccurredAt:     time.Now().UTC(),
	}
	return e.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventActivityRecorded,
		AggregateType: aggregate,
		AggregateID:   entry.OrganizationID,
		Actor:         &outbox.ActorRef{UserID: entry.ActorID, OrganizationID: &entry.OrganizationID},
		Data:          payload,
		Version:       recordedPayloadVersion,
		OccurredAt:    payload.OccurredAt,
	})
}
