package models

import (
	"time"

	"github.com/google/uuid"
)

// Newsletter is one email blast sent to an organization's members.
// RecipientCount is the deduplicated recipient total at send time.
type Newsletter struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID uuid.UUID  `gorm:"column:organization_id;type:uuid;not null;index"`
	SenderID       uuid.UUID  `gorm:"column:sender_id;type:uuid;not null"`
	Subject        string     `gorm:"type:text;not null"`
	Body           string     `gorm:"type:text;not null"`
	RecipientCount int        `gorm:"column:recipient_count;not null;default:0"`
	ProviderID     *string    `gorm:"column:provider_id;type:text"`
	SentAt         *time.Time `gorm:"column:sent_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}
