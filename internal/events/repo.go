package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/syncuphq/syncup-backend/pkg/db/models"
	"github.com/syncuphq/syncup-backend/pkg/enums"
)

// Repository persists events, their privacy allow-lists, discount
// rules, and registrations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get loads an event by id, nil when no such event exists.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).First(&event, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ListByOrg returns an organization's events, soonest first.
func (r *Repository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("starts_at ASC").
		Find(&events).Error
	return events, err
}

// InsertTx stores the event together with its allow-lists and discount
// rules inside the caller's transaction.
func (r *Repository) InsertTx(tx *gorm.DB, event *models.Event, roleIDs, membershipIDs []uuid.UUID, discounts []models.EventDiscount) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}
	if err := tx.Create(event).Error; err != nil {
		return err
	}
	return r.writeScopeRowsTx(tx, event.ID, roleIDs, membershipIDs, discounts)
}

// UpdateTx overwrites the event and replaces its allow-lists and
// discount rules.
func (r *Repository) UpdateTx(tx *gorm.DB, event *models.Event, roleIDs, membershipIDs []uuid.UUID, discounts []models.EventDiscount) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}
	err := tx.Model(&models.Event{}).
		Where("id = ?", event.ID).
		Updates(map[string]any{
			"title":                 event.Title,
			"description":           event.Description,
			"location":              event.Location,
			"starts_at":             event.StartsAt,
			"ends_at":               event.EndsAt,
			"capacity":              event.Capacity,
			"price":                 event.Price,
			"privacy":               event.Privacy,
			"allow_all_roles":       event.AllowAllRoles,
			"allow_all_memberships": event.AllowAllMemberships,
		}).Error
	if err != nil {
		return err
	}
	if err := tx.Where("event_id = ?", event.ID).Delete(&models.EventRolePrivacy{}).Error; err != nil {
		return err
	}
	if err := tx.Where("event_id = ?", event.ID).Delete(&models.EventMembershipPrivacy{}).Error; err != nil {
		return err
	}
	if err := tx.Where("event_id = ?", event.ID).Delete(&models.EventDiscount{}).Error; err != nil {
		return err
	}
	return r.writeScopeRowsTx(tx, event.ID, roleIDs, membershipIDs, discounts)
}

func (r *Repository) writeScopeRowsTx(tx *gorm.DB, eventID uuid.UUID, roleIDs, membershipIDs []uuid.UUID, discounts []models.EventDiscount) error {
	for _, roleID := range roleIDs {
		if err := tx.Create(&models.EventRolePrivacy{EventID: eventID, RoleID: roleID}).Error; err != nil {
			return err
		}
	}
	for _, membershipID := range membershipIDs {
		if err := tx.Create(&models.EventMembershipPrivacy{EventID: eventID, MembershipID: membershipID}).Error; err != nil {
			return err
		}
	}
	for i := range discounts {
		discounts[i].EventID = eventID
		if err := tx.Create(&discounts[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the event. Allow-lists, discounts, and registrations
// cascade in the schema.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Event{}, "id = ?", id).Error
}

// ScopeRoleIDs returns the allow-listed role ids for an event.
func (r *Repository) ScopeRoleIDs(ctx context.Context, eventID uuid.UUID) ([]uuid.UUID, error) {
	var rows []models.EventRolePrivacy
	if err := r.db.WithContext(ctx).Where("event_id = ?", eventID).Find(&rows).Error; err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.RoleID)
	}
	return ids, nil
}

// ScopeMembershipIDs returns the allow-listed membership tier ids for
// an event.
func (r *Repository) ScopeMembershipIDs(ctx context.Context, eventID uuid.UUID) ([]uuid.UUID, error) {
	var rows []models.EventMembershipPrivacy
	if err := r.db.WithContext(ctx).Where("event_id = ?", eventID).Find(&rows).Error; err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.MembershipID)
	}
	return ids, nil
}

// ListDiscounts returns the event's discount rules.
func (r *Repository) ListDiscounts(ctx context.Context, eventID uuid.UUID) ([]models.EventDiscount, error) {
	var discounts []models.EventDiscount
	err := r.db.WithContext(ctx).Where("event_id = ?", eventID).Find(&discounts).Error
	return discounts, err
}

// GetRegistration returns the user's registration for an event, nil
// when none exists.
func (r *Repository) GetRegistration(ctx context.Context, eventID, userID uuid.UUID) (*models.EventRegistration, error) {
	var reg models.EventRegistration
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		First(&reg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// CountActiveTx counts registered rows for an event inside the caller's
// transaction. Capacity checks always use this live count.
func (r *Repository) CountActiveTx(tx *gorm.DB, eventID uuid.UUID) (int64, error) {
	if tx == nil {
		return 0, fmt.Errorf("transaction required")
	}
	var count int64
	err := tx.Model(&models.EventRegistration{}).
		Where("event_id = ? AND status = ?", eventID, enums.RegistrationRegistered).
		Count(&count).Error
	return count, err
}

// InsertRegistrationTx stores a new registration.
func (r *Repository) InsertRegistrationTx(tx *gorm.DB, reg *models.EventRegistration) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}
	return tx.Create(reg).Error
}

// DeleteRegistration removes the user's registration.
func (r *Repository) DeleteRegistration(ctx context.Context, eventID, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Delete(&models.EventRegistration{})
	return res.RowsAffected, res.Error
}

// ConfirmRegistrationTx flips a pending registration to registered once
// its invoice is paid.
func (r *Repository) ConfirmRegistrationTx(tx *gorm.DB, eventID, userID uuid.UUID) (int64, error) {
	if tx == nil {
		return 0, fmt.Errorf("transaction required")
	}
	res := tx.Model(&models.EventRegistration{}).
		Where("event_id = ? AND user_id = ? AND status = ?", eventID, userID, enums.RegistrationPending).
		Update("status", enums.RegistrationRegistered)
	return res.RowsAffected, res.Error
}

// UpdateAttendance records attendance for a registration.
func (r *Repository) UpdateAttendance(ctx context.Context, eventID, userID uuid.UUID, attendance enums.AttendanceStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.EventRegistration{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Update("attendance", attendance)
	return res.RowsAffected, res.Error
}

// ListRegistrations returns an event's registrations, oldest first.
func (r *Repository) ListRegistrations(ctx context.Context, eventID uuid.UUID) ([]models.EventRegistration, error) {
	var regs []models.EventRegistration
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&regs).Error
	return regs, err
}
