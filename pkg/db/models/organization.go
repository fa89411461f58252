package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/syncuphq/syncup-backend/pkg/enums"
)

// Organization is the tenant boundary. Every membership tier, role,
// event, and post hangs off exactly one organization.
type Organization struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string          `gorm:"type:text;not null"`
	Slug        string          `gorm:"type:text;not null;uniqueIndex"`
	Description string          `gorm:"type:text;not null;default:''"`
	Access      enums.OrgAccess `gorm:"column:access;type:org_access_enum;not null;default:'open'"`
	OwnerID     uuid.UUID       `gorm:"column:owner_id;type:uuid;not null;index"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
