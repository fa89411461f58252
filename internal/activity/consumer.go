package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/syncuphq/syncup-backend/pkg/db/models"
	"github.com/syncuphq/syncup-backend/pkg/enums"
	"github.com/syncuphq/syncup-backend/pkg/logger"
	"github.com/syncuphq/syncup-backend/pkg/outbox"
)

const consumerName = "activity"

type rowInserter interface {
	Insert(ctx context.Context, row *models.Activity) error
}

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Consumer materializes activity trail rows from published outbox events
// while honoring Redis idempotency.
type Consumer struct {
	repo    rowInserter
	manager idempotencyChecker
	logg    *logger.Logger
}

// NewConsumer builds a new activity consumer.
func NewConsumer(repo rowInserter, manager idempotencyChecker, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("activity repository required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{repo: repo, manager: manager, logg: logg}, nil
}

// Process writes the activity row for an activity_recorded envelope.
// Other event types are acknowledged without side effects.
func (c *Consumer) Process(ctx context.Context, eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope) error {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"event_id":   envelope.EventID,
		"event_type": eventType,
	})

	if eventType != enums.EventActivityRecorded {
		c.logg.Info(logCtx, "event not handled by activity consumer")
		return nil
	}

	if envelope.EventID == "" {
		return fmt.Errorf("event id missing")
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		return fmt.Errorf("parse event id: %w", err)
	}

	already, err := c.manager.CheckAndMarkProcessed(ctx, consumerName, eventID)
	if err != nil {
		return fmt.Errorf("idempotency check: %w", err)
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return nil
	}

	payload, err := DecodeRecordedPayload(envelope.Data)
	if err != nil {
		c.logg.Error(logCtx, "failed to decode activity payload", err)
		_ = c.manager.Delete(ctx, consumerName, eventID)
		return err
	}

	row, err := buildRow(payload)
	if err != nil {
		c.logg.Error(logCtx, "failed to build activity row", err)
		_ = c.manager.Delete(ctx, consumerName, eventID)
		return err
	}

	if err := c.repo.Insert(ctx, row); err != nil {
		c.logg.Error(logCtx, "failed to insert activity row", err)
		_ = c.manager.Delete(ctx, consumerName, eventID)
		return err
	}

	c.logg.Info(logCtx, "activity recorded")
	return nil
}

func buildRow(payload RecordedPayload) (*models.Activity, error) {
	if payload.OrganizationID == uuid.Nil {
		return nil, fmt.Errorf("organization id missing")
	}
	if !payload.Type.IsValid() {
		return nil, fmt.Errorf("invalid activity type %q", payload.Type)
	}

	var detail json.RawMessage
	if len(payload.Detail) > 0 {
		encoded, err := json.Marshal(payload.Detail)
		if err != nil {
			return nil, fmt.Errorf("encode detail: %w", err)
		}
		detail = encoded
	}

	return &models.Activity{
		OrganizationID: payload.OrganizationID,
		ActorID:        payload.ActorID,
		Type:           payload.Type,
		TargetID:       payload.TargetID,
		Detail:         detail,
		OccurredAt:     payload.OccurredAt,
	}, nil
}
