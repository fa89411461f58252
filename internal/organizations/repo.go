package organizations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/syncuphq/syncup-backend/pkg/db/models"
	"github.com/syncuphq/syncup-backend/pkg/enums"
)

// Repository persists organizations and their join requests.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get loads an organization by id, nil when no such organization exists.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// GetBySlug loads an organization by slug, nil when no such slug exists.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	var org models.Organization
	err := r.db.WithContext(ctx).First(&org, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// InsertTx creates the organization inside the caller's transaction.
func (r *Repository) InsertTx(tx *gorm.DB, org *models.Organization) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}
	return tx.Create(org).Error
}

// Update overwrites the organization's mutable fields.
func (r *Repository) Update(ctx context.Context, org *models.Organization) error {
	return r.db.WithContext(ctx).
		Model(&models.Organization{}).
		Where("id = ?", org.ID).
		Updates(map[string]any{
			"name":        org.Name,
			"description": org.Description,
			"access":      org.Access,
		}).Error
}

// Delete removes the organization. Dependent rows cascade in the schema.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Organization{}, "id = ?", id).Error
}

// List returns organizations, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]models.Organization, error) {
	var orgs []models.Organization
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&orgs).Error
	return orgs, err
}

// PendingRequest returns the user's pending join request, nil when none.
func (r *Repository) PendingRequest(ctx context.Context, orgID, userID uuid.UUID) (*models.OrganizationRequest, error) {
	var req models.OrganizationRequest
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND user_id = ? AND status = ?", orgID, userID, enums.RequestPending).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// GetRequest loads a join request by id, nil when missing.
func (r *Repository) GetRequest(ctx context.Context, id uuid.UUID) (*models.OrganizationRequest, error) {
	var req models.OrganizationRequest
	err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// InsertRequest records a new pending join request.
func (r *Repository) InsertRequest(ctx context.Context, req *models.OrganizationRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// ListPendingRequests returns an organization's pending join requests,
// oldest first.
func (r *Repository) ListPendingRequests(ctx context.Context, orgID uuid.UUID) ([]models.OrganizationRequest, error) {
	var reqs []models.OrganizationRequest
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND status = ?", orgID, enums.RequestPending).
		Order("created_at ASC").
		Find(&reqs).Error
	return reqs, err
}

// DecideRequestTx settles a pending request. The status guard means a
// request can only be decided once.
func (r *Repository) DecideRequestTx(tx *gorm.DB, id uuid.UUID, status enums.RequestStatus, decidedBy uuid.UUID, at time.Time) (int64, error) {
	if tx == nil {
		return 0, fmt.Errorf("transaction required")
	}
	res := tx.Model(&models.OrganizationRequest{}).
		Where("id = ? AND status = ?", id, enums.RequestPending).
		Updates(map[string]any{
			"status":     status,
			"decided_by": decidedBy,
			"decided_at": at,
		})
	return res.RowsAffected, res.Error
}
