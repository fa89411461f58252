package memberships

import (
	"time"

	"github.com/google/uuid"

	"github.com/syncuphq/syncup-backend/pkg/db/models"
)

// MemberDTO is the transport shape for an organization member.
type MemberDTO struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	UserID         uuid.UUID  `json:"user_id"`
	RoleID         uuid.UUID  `json:"role_id"`
	MembershipID   *uuid.UUID `json:"membership_id,omitempty"`
	JoinedAt       time.Time  `json:"joined_at"`
}

// MemberWithUser joins member metadata with the user profile for org admins.
type MemberWithUser struct {
	MemberID     uuid.UUID  `json:"member_id"`
	UserID       uuid.UUID  `json:"user_id"`
	Email        string     `json:"email"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	RoleID       uuid.UUID  `json:"role_id"`
	RoleName     string     `json:"role_name"`
	MembershipID *uuid.UUID `json:"membership_id,omitempty"`
	JoinedAt     time.Time  `json:"joined_at"`
}

// ToDTO converts a model to the external DTO.
func ToDTO(m *models.OrganizationMember) *MemberDTO {
	if m == nil {
		return nil
	}
	return &MemberDTO{
		ID:             m.ID,
		OrganizationID: m.OrganizationID,
		UserID:         m.UserID,
		RoleID:         m.RoleID,
		MembershipID:   m.MembershipID,
		JoinedAt:       m.JoinedAt,
	}
}
