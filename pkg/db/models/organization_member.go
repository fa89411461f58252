package models

import (
	"time"

	"github.com/google/uuid"
)

// OrganizationMember links a user to an organization with a role and an
// optional active membership tier. At most one row per (org, user).
type OrganizationMember struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID uuid.UUID  `gorm:"column:organization_id;type:uuid;not null;uniqueIndex:idx_org_member_user"`
	UserID         uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_org_member_user"`
	RoleID         uuid.UUID  `gorm:"column:role_id;type:uuid;not null"`
	MembershipID   *uuid.UUID `gorm:"column:membership_id;type:uuid"`
	JoinedAt       time.Time  `gorm:"column:joined_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
