package newsletters

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/syncuphq/syncup-backend/pkg/db/models"
	"github.com/syncuphq/syncup-backend/pkg/enums"
)

// Repository persists newsletter records and resolves recipient lists.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// InsertTx stores a sent newsletter record inside the caller's
// transaction.
func (r *Repository) InsertTx(tx *gorm.DB, newsletter *models.Newsletter) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}
	return tx.Create(newsletter).Error
}

// ListByOrg returns an organization's newsletters, newest first.
func (r *Repository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Newsletter, error) {
	var newsletters []models.Newsletter
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("created_at DESC").
		Find(&newsletters).Error
	return newsletters, err
}

// MemberEmails returns the email addresses of an organization's members.
func (r *Repository) MemberEmails(ctx context.Context, orgID uuid.UUID) ([]string, error) {
	var emails []string
	err := r.db.WithContext(ctx).
		Model(&models.OrganizationMember{}).
		Joins("JOIN users ON users.id = organization_members.user_id").
		Where("organization_members.organization_id = ? AND users.is_active", orgID).
		Pluck("users.email", &emails).Error
	return emails, err
}

// RegistrantEmails returns the email addresses of an event's confirmed
// registrants.
func (r *Repository) RegistrantEmails(ctx context.Context, eventID uuid.UUID) ([]string, error) {
	var emails []string
	err := r.db.WithContext(ctx).
		Model(&models.EventRegistration{}).
		Joins("JOIN users ON users.id = event_registrations.user_id").
		Where("event_registrations.event_id = ? AND event_registrations.status = ? AND users.is_active",
			eventID, enums.RegistrationRegistered).
		Pluck("users.email", &emails).Error
	return emails, err
}
