package models

import (
	"time"

	"github.com/google/uuid"
)

// OrganizationRole is an org-scoped role label. Each organization keeps
// a default role that new members receive on join.
type OrganizationRole struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID uuid.UUID `gorm:"column:organization_id;type:uuid;not null;uniqueIndex:idx_org_role_name"`
	Name           string    `gorm:"type:text;not null;uniqueIndex:idx_org_role_name"`
	IsDefault      bool      `gorm:"column:is_default;not null;default:false"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
