package activity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/syncuphq/syncup-backend/pkg/enums"
)

// RecordedPayload is the versioned outbox payload for a single activity
// trail entry. Version 1.
type RecordedPayload struct {
	OrganizationID uuid.UUID          `json:"organizationId"`
	ActorID        uuid.UUID          `json:"actorId"`
	Type           enums.ActivityType `json:"type"`
	TargetID       *uuid.UUID         `json:"targetId,omitempty"`
	Detail         map[string]any     `json:"detail,omitempty"`
	OccurredAt     time.Time          `json:"occurredAt"`
}

const recordedPayloadVersion = 1

// DecodeRecordedPayload decodes a version-1 activity payload.
func DecodeRecordedPayload(raw json.RawMessage) (RecordedPayload, error) {
	var payload RecordedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return RecordedPayload{}, err
	}
	return payload, nil
}
