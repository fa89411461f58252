package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// EventDiscount is a percentage discount granted to the named roles
// and/or membership tiers for a paid event. Targets are stored by name
// so the rule survives allow-list edits until the next validation pass.
type EventDiscount struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	EventID     uuid.UUID       `gorm:"column:event_id;type:uuid;not null;index"`
	Roles       pq.StringArray  `gorm:"column:roles;type:text[];not null;default:ARRAY[]::text[]"`
	Memberships pq.StringArray  `gorm:"column:memberships;type:text[];not null;default:ARRAY[]::text[]"`
	Percent     decimal.Decimal `gorm:"column:percent;type:numeric(5,2);not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}
