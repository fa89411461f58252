package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/syncuphq/syncup-backend/pkg/enums"
)

// Activity is one line of an organization's audit trail. Rows are
// written by the activity consumer, never by request handlers directly.
type Activity struct {
	ID             uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID uuid.UUID          `gorm:"column:organization_id;type:uuid;not null;index"`
	ActorID        uuid.UUID          `gorm:"column:actor_id;type:uuid;not null"`
	Type           enums.ActivityType `gorm:"column:type;type:activity_type_enum;not null"`
	TargetID       *uuid.UUID         `gorm:"column:target_id;type:uuid"`
	Detail         json.RawMessage    `gorm:"column:detail;type:jsonb"`
	OccurredAt     time.Time          `gorm:"column:occurred_at;not null"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
}

func (Activity) TableName() string { return "activities" }
