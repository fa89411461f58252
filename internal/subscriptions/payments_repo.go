package subscriptions

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

// PaymentsRepository persists invoice-backed payments.
type PaymentsRepository struct {
	db *gorm.DB
}

func NewPaymentsRepository(db *gorm.DB) *PaymentsRepository {
	return &PaymentsRepository{db: db}
}

// InsertTx stores a new pending payment inside the caller's transaction.
func (r *PaymentsRepository) InsertTx(tx *gorm.DB, payment *models.Payment) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}
	return tx.Create(payment).Error
}

// GetByInvoiceID returns the payment for a provider invoice id, nil when
// no such payment exists.
func (r *PaymentsRepository) GetByInvoiceID(ctx context.Context, invoiceID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// MarkPaidTx flips a pending payment to paid. The status guard keeps
// duplicate webhook deliveries from re-applying side effects.
func (r *PaymentsRepository) MarkPaidTx(tx *gorm.DB, id uuid.UUID, paidAt time.Time) (int64, error) {
	if tx == nil {
		return 0, fmt.Errorf("transaction required")
	}
	result := tx.Model(&models.Payment{}).
		Where("id = ? AND status <> ?", id, enums.PaymentStatusPaid).
		Updates(map[string]any{
			"status":  enums.PaymentStatusPaid,
			"paid_at": paidAt,
		})
	return result.RowsAffected, result.Error
}

// ListByOrg returns an organization's payments, newest first.
func (r *PaymentsRepository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}
