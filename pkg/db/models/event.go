package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/syncuphq/syncup-backend/pkg/enums"
)

// Event is an organization event with capacity tracking and a privacy
// scope. When Privacy is private, visibility is resolved from the
// allow-all flags plus the role/membership allow-list join tables.
type Event struct {
	ID                  uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID      uuid.UUID         `gorm:"column:organization_id;type:uuid;not null;index"`
	CreatorID           uuid.UUID         `gorm:"column:creator_id;type:uuid;not null"`
	Title               string            `gorm:"type:text;not null"`
	Description         string            `gorm:"type:text;not null;default:''"`
	Location            string            `gorm:"type:text;not null;default:''"`
	StartsAt            time.Time         `gorm:"column:starts_at;not null"`
	EndsAt              *time.Time        `gorm:"column:ends_at"`
	Capacity            *int              `gorm:"column:capacity"`
	Price               decimal.Decimal   `gorm:"type:numeric(12,2);not null;default:0"`
	Privacy             enums.PrivacyType `gorm:"column:privacy;type:privacy_type_enum;not null;default:'public'"`
	AllowAllRoles       bool              `gorm:"column:allow_all_roles;not null;default:false"`
	AllowAllMemberships bool              `gorm:"column:allow_all_memberships;not null;default:false"`
	CreatedAt           time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// EventRolePrivacy allows a role to see a private event.
type EventRolePrivacy struct {
	EventID uuid.UUID `gorm:"column:event_id;type:uuid;primaryKey"`
	RoleID  uuid.UUID `gorm:"column:role_id;type:uuid;primaryKey"`
}

func (EventRolePrivacy) TableName() string { return "event_role_privacy" }

// EventMembershipPrivacy allows a membership tier to see a private event.
type EventMembershipPrivacy struct {
	EventID      uuid.UUID `gorm:"column:event_id;type:uuid;primaryKey"`
	MembershipID uuid.UUID `gorm:"column:membership_id;type:uuid;primaryKey"`
}

func (EventMembershipPrivacy) TableName() string { return "event_membership_privacy" }
