package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/syncuphq/syncup-backend/pkg/enums"
)

// MembershipTier is a paid or free subscription plan offered by an
// organization. Price zero means the tier can be joined without an
// invoice.
type MembershipTier struct {
	ID             uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID uuid.UUID          `gorm:"column:organization_id;type:uuid;not null;uniqueIndex:idx_org_tier_name"`
	Name           string             `gorm:"type:text;not null;uniqueIndex:idx_org_tier_name"`
	Description    string             `gorm:"type:text;not null;default:''"`
	Price          decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0"`
	Currency       string             `gorm:"type:text;not null;default:'PHP'"`
	BillingCycle   enums.BillingCycle `gorm:"column:billing_cycle;type:billing_cycle_enum;not null;default:'monthly'"`
	Features       pq.StringArray     `gorm:"column:features;type:text[]"`
	IsActive       bool               `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (t MembershipTier) IsFree() bool {
	return t.Price.IsZero()
}
