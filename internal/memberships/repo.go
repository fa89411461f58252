package memberships

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/syncuphq/syncup-backend/pkg/db/models"
)

// Repository exposes organization member persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetMember retrieves the member row for a user in an organization, or nil.
func (r *Repository) GetMember(ctx context.Context, orgID, userID uuid.UUID) (*models.OrganizationMember, error) {
	var member models.OrganizationMember
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

// GetMemberTx is GetMember inside an open transaction.
func (r *Repository) GetMemberTx(tx *gorm.DB, orgID, userID uuid.UUID) (*models.OrganizationMember, error) {
	if tx == nil {
		return nil, errors.New("transaction required")
	}
	var member models.OrganizationMember
	err := tx.Where("organization_id = ? AND user_id = ?", orgID, userID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

// InsertTx persists a new member row.
func (r *Repository) InsertTx(tx *gorm.DB, member *models.OrganizationMember) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.Create(member).Error
}

// ApplyTierTx sets the membership tier with a guarded conditional update:
// the write only lands when the row still holds no tier or already holds
// the target tier. Returns the number of rows updated.
func (r *Repository) ApplyTierTx(tx *gorm.DB, orgID, userID, tierID uuid.UUID) (int64, error) {
	if tx == nil {
		return 0, errors.New("transaction required")
	}
	res := tx.Model(&models.OrganizationMember{}).
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		Where("membership_id IS NULL OR membership_id = ?", tierID).
		Update("membership_id", tierID)
	return res.RowsAffected, res.Error
}

// ReplaceTierTx overwrites the membership tier unconditionally. Used by
// the confirmed subscribe path where the user already approved the change.
func (r *Repository) ReplaceTierTx(tx *gorm.DB, orgID, userID, tierID uuid.UUID) (int64, error) {
	if tx == nil {
		return 0, errors.New("transaction required")
	}
	res := tx.Model(&models.OrganizationMember{}).
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		Update("membership_id", tierID)
	return res.RowsAffected, res.Error
}

// ClearTierTx removes the tier from the member row holding it.
func (r *Repository) ClearTierTx(tx *gorm.DB, userID, tierID uuid.UUID) (int64, error) {
	if tx == nil {
		return 0, errors.New("transaction required")
	}
	res := tx.Model(&models.OrganizationMember{}).
		Where("user_id = ? AND membership_id = ?", userID, tierID).
		Update("membership_id", nil)
	return res.RowsAffected, res.Error
}

// UpdateMemberRole reassigns a member's role.
func (r *Repository) UpdateMemberRole(ctx context.Context, orgID, userID, roleID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.OrganizationMember{}).
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		Update("role_id", roleID)
	return res.RowsAffected, res.Error
}

// DeleteMemberTx removes the member row for a user leaving the organization.
func (r *Repository) DeleteMemberTx(tx *gorm.DB, orgID, userID uuid.UUID) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.Where("organization_id = ? AND user_id = ?", orgID, userID).
		Delete(&models.OrganizationMember{}).Error
}

// ListByOrg returns member rows joined with user profiles and role names.
func (r *Repository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]MemberWithUser, error) {
	var rows []MemberWithUser
	err := r.db.WithContext(ctx).
		Model(&models.OrganizationMember{}).
		Select(`organization_members.id AS member_id,
			organization_members.user_id,
			users.email, users.first_name, users.last_name,
			organization_members.role_id,
			organization_roles.name AS role_name,
			organization_members.membership_id,
			organization_members.joined_at`).
		Joins("JOIN users ON users.id = organization_members.user_id").
		Joins("JOIN organization_roles ON organization_roles.id = organization_members.role_id").
		Where("organization_members.organization_id = ?", orgID).
		Order("organization_members.joined_at").
		Scan(&rows).Error
	return rows, err
}

// ListByTier returns the members currently holding a tier.
func (r *Repository) ListByTier(ctx context.Context, tierID uuid.UUID) ([]models.OrganizationMember, error) {
	var rows []models.OrganizationMember
	err := r.db.WithContext(ctx).
		Where("membership_id = ?", tierID).
		Order("joined_at").
		Find(&rows).Error
	return rows, err
}

// CountByTier returns how many members hold the tier.
func (r *Repository) CountByTier(ctx context.Context, tierID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrganizationMember{}).
		Where("membership_id = ?", tierID).
		Count(&count).Error
	return count, err
}

// ListUserOrganizations returns the organizations a user belongs to.
func (r *Repository) ListUserOrganizations(ctx context.Context, userID uuid.UUID) ([]models.OrganizationMember, error) {
	var rows []models.OrganizationMember
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("joined_at").
		Find(&rows).Error
	return rows, err
}
