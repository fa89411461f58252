package memberships

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/syncuphq/syncup-backend/pkg/db"
	"github.com/syncuphq/syncup-backend/pkg/db/models"
	"github.com/syncuphq/syncup-backend/pkg/enums"
	pkgerrors "github.com/syncuphq/syncup-backend/pkg/errors"
)

// TiersRepository persists membership tiers.
type TiersRepository struct {
	db *gorm.DB
}

func NewTiersRepository(db *gorm.DB) *TiersRepository {
	return &TiersRepository{db: db}
}

// Get loads a tier by id, nil when no such tier exists.
func (r *TiersRepository) Get(ctx context.Context, tierID uuid.UUID) (*models.MembershipTier, error) {
	var tier models.MembershipTier
	err := r.db.WithContext(ctx).First(&tier, "id = ?", tierID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

// ListByOrg returns an organization's tiers, cheapest first.
func (r *TiersRepository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.MembershipTier, error) {
	var tiers []models.MembershipTier
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("price ASC, name ASC").
		Find(&tiers).Error
	return tiers, err
}

// Create inserts a new tier.
func (r *TiersRepository) Create(ctx context.Context, tier *models.MembershipTier) error {
	return r.db.WithContext(ctx).Create(tier).Error
}

// Update overwrites the tier's mutable fields.
func (r *TiersRepository) Update(ctx context.Context, tier *models.MembershipTier) error {
	return r.db.WithContext(ctx).
		Model(&models.MembershipTier{}).
		Where("id = ?", tier.ID).
		Updates(map[string]any{
			"name":          tier.Name,
			"description":   tier.Description,
			"price":         tier.Price,
			"billing_cycle": tier.BillingCycle,
			"features":      tier.Features,
			"is_active":     tier.IsActive,
		}).Error
}

// Deactivate retires a tier without breaking existing subscriptions.
func (r *TiersRepository) Deactivate(ctx context.Context, tierID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.MembershipTier{}).
		Where("id = ? AND is_active", tierID).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

// TierInput carries the fields for tier create/update.
type TierInput struct {
	Name         string
	Description  string
	Price        decimal.Decimal
	BillingCycle enums.BillingCycle
	Features     []string
}

type tierMemberReader interface {
	CountByTier(ctx context.Context, tierID uuid.UUID) (int64, error)
	ListByTier(ctx context.Context, tierID uuid.UUID) ([]models.OrganizationMember, error)
}

// TierWithCount pairs a tier with its live member count.
type TierWithCount struct {
	models.MembershipTier
	MemberCount int64 `json:"memberCount"`
}

// TiersService manages the tier catalog for organizations.
type TiersService struct {
	tiers   *TiersRepository
	members tierMemberReader
}

// NewTiersService builds the tier catalog service.
func NewTiersService(tiers *TiersRepository, members tierMemberReader) (*TiersService, error) {
	if tiers == nil {
		return nil, fmt.Errorf("tiers repo required")
	}
	if members == nil {
		return nil, fmt.Errorf("member counter required")
	}
	return &TiersService{tiers: tiers, members: members}, nil
}

// List returns the organization's tiers with live member counts.
func (s *TiersService) List(ctx context.Context, orgID uuid.UUID) ([]TierWithCount, error) {
	if orgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}
	tiers, err := s.tiers.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list tiers")
	}
	out := make([]TierWithCount, 0, len(tiers))
	for _, tier := range tiers {
		count, err := s.members.CountByTier(ctx, tier.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count tier members")
		}
		out = append(out, TierWithCount{MembershipTier: tier, MemberCount: count})
	}
	return out, nil
}

// Create adds a tier to the organization's catalog.
func (s *TiersService) Create(ctx context.Context, orgID uuid.UUID, input TierInput) (*models.MembershipTier, error) {
	if orgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}
	if err := validateTierInput(&input); err != nil {
		return nil, err
	}

	tier := &models.MembershipTier{
		OrganizationID: orgID,
		Name:           input.Name,
		Description:    input.Description,
		Price:          input.Price,
		BillingCycle:   input.BillingCycle,
		Features:       pq.StringArray(input.Features),
		IsActive:       true,
	}
	if err := s.tiers.Create(ctx, tier); err != nil {
		if db.IsUniqueViolation(err, "idx_org_tier_name") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a tier with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create tier")
	}
	return tier, nil
}

// Update rewrites an existing tier.
func (s *TiersService) Update(ctx context.Context, orgID, tierID uuid.UUID, input TierInput) (*models.MembershipTier, error) {
	tier, err := s.requireTier(ctx, orgID, tierID)
	if err != nil {
		return nil, err
	}
	if err := validateTierInput(&input); err != nil {
		return nil, err
	}

	tier.Name = input.Name
	tier.Description = input.Description
	tier.Price = input.Price
	tier.BillingCycle = input.BillingCycle
	tier.Features = pq.StringArray(input.Features)
	if err := s.tiers.Update(ctx, tier); err != nil {
		if db.IsUniqueViolation(err, "idx_org_tier_name") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a tier with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update tier")
	}
	return tier, nil
}

// Retire deactivates a tier. Existing subscribers keep it until they
// cancel or switch.
func (s *TiersService) Retire(ctx context.Context, orgID, tierID uuid.UUID) error {
	if _, err := s.requireTier(ctx, orgID, tierID); err != nil {
		return err
	}
	rows, err := s.tiers.Deactivate(ctx, tierID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "retire tier")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "tier is already retired")
	}
	return nil
}

// Members lists the member rows subscribed to a tier.
func (s *TiersService) Members(ctx context.Context, orgID, tierID uuid.UUID) ([]models.OrganizationMember, error) {
	if _, err := s.requireTier(ctx, orgID, tierID); err != nil {
		return nil, err
	}
	return s.members.ListByTier(ctx, tierID)
}

func (s *TiersService) requireTier(ctx context.Context, orgID, tierID uuid.UUID) (*models.MembershipTier, error) {
	if orgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}
	if tierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tier id is required")
	}
	tier, err := s.tiers.Get(ctx, tierID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load tier")
	}
	if tier == nil || tier.OrganizationID != orgID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "membership tier not found")
	}
	return tier, nil
}

func validateTierInput(input *TierInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "tier name is required")
	}
	if input.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "registration fee cannot be negative")
	}
	if input.BillingCycle == "" {
		input.BillingCycle = enums.BillingCycleMonthly
	}
	if !input.BillingCycle.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid billing cycle")
	}
	return nil
}
