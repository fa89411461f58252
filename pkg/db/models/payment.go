package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/syncuphq/syncup-backend/pkg/enums"
)

// Payment is one external invoice issued for a membership subscription
// or an event registration. InvoiceID is the provider's invoice id and
// is unique so webhook retries stay idempotent at the storage layer.
type Payment struct {
	ID             uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID uuid.UUID           `gorm:"column:organization_id;type:uuid;not null;index"`
	PayerUserID    uuid.UUID           `gorm:"column:payer_user_id;type:uuid;not null;index"`
	Amount         decimal.Decimal     `gorm:"type:numeric(12,2);not null"`
	Currency       string              `gorm:"type:text;not null;default:'PHP'"`
	Type           enums.PaymentType   `gorm:"column:type;type:payment_type_enum;not null"`
	Status         enums.PaymentStatus `gorm:"column:status;type:payment_status_enum;not null;default:'pending'"`
	InvoiceID      string              `gorm:"column:invoice_id;type:text;not null;uniqueIndex"`
	InvoiceURL     string              `gorm:"column:invoice_url;type:text;not null"`
	TargetID       uuid.UUID           `gorm:"column:target_id;type:uuid;not null"`
	PaidAt         *time.Time          `gorm:"column:paid_at"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
