package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/syncuphq/syncup-backend/pkg/enums"
)

// Post is an organization feed post. Private posts reuse the same
// privacy scope shape as events, minus discounts.
type Post struct {
	ID                  uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID      uuid.UUID         `gorm:"column:organization_id;type:uuid;not null;index"`
	AuthorID            uuid.UUID         `gorm:"column:author_id;type:uuid;not null"`
	Title               string            `gorm:"type:text;not null"`
	Body                string            `gorm:"type:text;not null"`
	Privacy             enums.PrivacyType `gorm:"column:privacy;type:privacy_type_enum;not null;default:'public'"`
	AllowAllRoles       bool              `gorm:"column:allow_all_roles;not null;default:false"`
	AllowAllMemberships bool              `gorm:"column:allow_all_memberships;not null;default:false"`
	CreatedAt           time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// PostRolePrivacy allows a role to see a private post.
type PostRolePrivacy struct {
	PostID uuid.UUID `gorm:"column:post_id;type:uuid;primaryKey"`
	RoleID uuid.UUID `gorm:"column:role_id;type:uuid;primaryKey"`
}

func (PostRolePrivacy) TableName() string { return "post_role_privacy" }

// PostMembershipPrivacy allows a membership tier to see a private post.
type PostMembershipPrivacy struct {
	PostID       uuid.UUID `gorm:"column:post_id;type:uuid;primaryKey"`
	MembershipID uuid.UUID `gorm:"column:membership_id;type:uuid;primaryKey"`
}

func (PostMembershipPrivacy) TableName() string { return "post_membership_privacy" }

// PostComment is a flat comment on a post.
type PostComment struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PostID    uuid.UUID `gorm:"column:post_id;type:uuid;not null;index"`
	AuthorID  uuid.UUID `gorm:"column:author_id;type:uuid;not null"`
	Body      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
