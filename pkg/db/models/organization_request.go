package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/syncuphq/syncup-backend/pkg/enums"
)

// OrganizationRequest is a pending join request for an
// approval-gated organization.
type OrganizationRequest struct {
	ID             uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID uuid.UUID           `gorm:"column:organization_id;type:uuid;not null;index"`
	UserID         uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	Status         enums.RequestStatus `gorm:"column:status;type:request_status_enum;not null;default:'pending'"`
	DecidedBy      *uuid.UUID          `gorm:"column:decided_by;type:uuid"`
	DecidedAt      *time.Time          `gorm:"column:decided_at"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
