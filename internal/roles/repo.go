package roles

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/syncuphq/syncup-backend/pkg/db/models"
)

// DefaultRoleName is seeded with every organization and assigned to
// members who join without an explicit role.
const DefaultRoleName = "User"

// Repository persists per-organization roles.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get loads a role by id, nil when no such role exists.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.OrganizationRole, error) {
	var role models.OrganizationRole
	err := r.db.WithContext(ctx).First(&role, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// ListByOrg returns an organization's role catalog ordered by name.
func (r *Repository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.OrganizationRole, error) {
	var roles []models.OrganizationRole
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("name ASC").
		Find(&roles).Error
	return roles, err
}

// Create inserts a new role.
func (r *Repository) Create(ctx context.Context, role *models.OrganizationRole) error {
	return r.db.WithContext(ctx).Create(role).Error
}

// Rename updates a role's name.
func (r *Repository) Rename(ctx context.Context, id uuid.UUID, name string) error {
	return r.db.WithContext(ctx).
		Model(&models.OrganizationRole{}).
		Where("id = ?", id).
		Update("name", name).Error
}

// Delete removes a role.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.OrganizationRole{}, "id = ?", id).Error
}

// DefaultRoleTx returns the organization's default role, nil when the
// organization has none.
func (r *Repository) DefaultRoleTx(tx *gorm.DB, orgID uuid.UUID) (*models.OrganizationRole, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required")
	}
	var role models.OrganizationRole
	err := tx.Where("organization_id = ? AND is_default", orgID).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// SeedDefaultTx creates the default role for a freshly created
// organization inside the caller's transaction.
func (r *Repository) SeedDefaultTx(tx *gorm.DB, orgID uuid.UUID) (*models.OrganizationRole, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required")
	}
	role := &models.OrganizationRole{
		OrganizationID: orgID,
		Name:           DefaultRoleName,
		IsDefault:      true,
	}
	if err := tx.Create(role).Error; err != nil {
		return nil, err
	}
	return role, nil
}

// CountMembers reports how many members currently hold the role.
func (r *Repository) CountMembers(ctx context.Context, roleID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrganizationMember{}).
		Where("role_id = ?", roleID).
		Count(&count).Error
	return count, err
}
