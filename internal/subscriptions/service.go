package subscriptions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/syncuphq/syncup-backend/internal/activity"
	"github.com/syncuphq/syncup-backend/pkg/db/models"
	"github.com/syncuphq/syncup-backend/pkg/enums"
	pkgerrors "github.com/syncuphq/syncup-backend/pkg/errors"
	"github.com/syncuphq/syncup-backend/pkg/logger"
)

type memberRepository interface {
	GetMember(ctx context.Context, orgID, userID uuid.UUID) (*models.OrganizationMember, error)
	GetMemberTx(tx *gorm.DB, orgID, userID uuid.UUID) (*models.OrganizationMember, error)
	InsertTx(tx *gorm.DB, member *models.OrganizationMember) error
	ReplaceTierTx(tx *gorm.DB, orgID, userID, tierID uuid.UUID) (int64, error)
	ApplyTierTx(tx *gorm.DB, orgID, userID, tierID uuid.UUID) (int64, error)
	ClearTierTx(tx *gorm.DB, userID, tierID uuid.UUID) (int64, error)
}

type roleRepository interface {
	DefaultRoleTx(tx *gorm.DB, orgID uuid.UUID) (*models.OrganizationRole, error)
}

type tierRepository interface {
	Get(ctx context.Context, tierID uuid.UUID) (*models.MembershipTier, error)
}

type orgRepository interface {
	Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error)
}

type userRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

type paymentRepository interface {
	InsertTx(tx *gorm.DB, payment *models.Payment) error
	GetByInvoiceID(ctx context.Context, invoiceID string) (*models.Payment, error)
	MarkPaidTx(tx *gorm.DB, id uuid.UUID, paidAt time.Time) (int64, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type registrationConfirmer interface {
	ConfirmRegistrationTx(tx *gorm.DB, eventID, userID uuid.UUID) (int64, error)
}

// Service coordinates the membership subscription lifecycle.
type Service interface {
	Subscribe(ctx context.Context, userID, orgID, tierID uuid.UUID) (*Outcome, error)
	ConfirmSubscribe(ctx context.Context, userID, orgID, tierID uuid.UUID) (*Outcome, error)
	ConfirmPaidSubscription(ctx context.Context, invoiceID string) error
	Cancel(ctx context.Context, userID, tierID uuid.UUID) error
}

// ServiceParams groups dependencies for the subscription service.
type ServiceParams struct {
	MemberRepo        memberRepository
	RoleRepo          roleRepository
	TierRepo          tierRepository
	OrgRepo           orgRepository
	UserRepo          userRepository
	PaymentRepo       paymentRepository
	Invoices          InvoiceClient
	Activity          activity.Sink
	TransactionRunner txRunner
	Logger            *logger.Logger
	SiteURL           string
	Currency          string

	// Registrations is optional. When set, paid event invoices flip the
	// payer's pending registration inside the same transaction.
	Registrations registrationConfirmer
}

type service struct {
	members       memberRepository
	registrations registrationConfirmer
	roles         roleRepository
	tiers         tierRepository
	orgs          orgRepository
	users         userRepository
	payments      paymentRepository
	invoices      InvoiceClient
	trail         activity.Sink
	txRunner      txRunner
	logg          *logger.Logger
	siteURL       string
	currency      string
}

// NewService builds a subscription service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.MemberRepo == nil {
		return nil, fmt.Errorf("member repo required")
	}
	if params.RoleRepo == nil {
		return nil, fmt.Errorf("role repo required")
	}
	if params.TierRepo == nil {
		return nil, fmt.Errorf("tier repo required")
	}
	if params.OrgRepo == nil {
		return nil, fmt.Errorf("organization repo required")
	}
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repo required")
	}
	if params.PaymentRepo == nil {
		return nil, fmt.Errorf("payment repo required")
	}
	if params.Invoices == nil {
		return nil, fmt.Errorf("invoice client required")
	}
	if params.Activity == nil {
		return nil, fmt.Errorf("activity sink required")
	}
	if params.TransactionRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	siteURL := strings.TrimRight(strings.TrimSpace(params.SiteURL), "/")
	if siteURL == "" {
		return nil, fmt.Errorf("site url required")
	}
	currency := strings.TrimSpace(params.Currency)
	if currency == "" {
		currency = "PHP"
	}
	return &service{
		members:       params.MemberRepo,
		registrations: params.Registrations,
		roles:         params.RoleRepo,
		tiers:         params.TierRepo,
		orgs:          params.OrgRepo,
		users:         params.UserRepo,
		payments:      params.PaymentRepo,
		invoices:      params.Invoices,
		trail:         params.Activity,
		txRunner:      params.TransactionRunner,
		logg:          params.Logger,
		siteURL:       siteURL,
		currency:      currency,
	}, nil
}

// Subscribe starts a subscription for an existing organization member.
// Switching away from a currently held tier is never done implicitly:
// the caller gets a confirmation outcome and re-enters via
// ConfirmSubscribe.
func (s *service) Subscribe(ctx context.Context, userID, orgID, tierID uuid.UUID) (*Outcome, error) {
	member, tier, err := s.resolveSubscription(ctx, userID, orgID, tierID)
	if err != nil {
		return nil, err
	}

	if member.MembershipID != nil && *member.MembershipID != tier.ID {
		return confirmationOutcome(*member.MembershipID, tier.ID), nil
	}

	// No current tier, or re-confirming the held one: both proceed. A paid
	// tier re-issues an invoice; the member row stays untouched until the
	// webhook confirms it.
	return s.process(ctx, userID, orgID, tier)
}

// ConfirmSubscribe applies a tier switch the user has explicitly confirmed.
func (s *service) ConfirmSubscribe(ctx context.Context, userID, orgID, tierID uuid.UUID) (*Outcome, error) {
	_, tier, err := s.resolveSubscription(ctx, userID, orgID, tierID)
	if err != nil {
		return nil, err
	}
	return s.process(ctx, userID, orgID, tier)
}

func (s *service) resolveSubscription(ctx context.Context, userID, orgID, tierID uuid.UUID) (*models.OrganizationMember, *models.MembershipTier, error) {
	if userID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if orgID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}
	if tierID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "tier id is required")
	}

	member, err := s.members.GetMember(ctx, orgID, userID)
	if err != nil {
		return nil, nil, err
	}
	if member == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "user is not a member of this organization")
	}

	tier, err := s.tiers.Get(ctx, tierID)
	if err != nil {
		return nil, nil, err
	}
	if tier == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "membership tier not found")
	}
	if tier.OrganizationID != orgID {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "membership tier does not belong to this organization")
	}
	if !tier.IsActive {
		return nil, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "membership tier is no longer offered")
	}
	return member, tier, nil
}

// process applies a free tier immediately or issues an invoice for a
// paid one. The paid path never touches the member row; the tier is
// applied only once ConfirmPaidSubscription runs.
func (s *service) process(ctx context.Context, userID, orgID uuid.UUID, tier *models.MembershipTier) (*Outcome, error) {
	if tier.IsFree() {
		if err := s.applyTier(ctx, userID, orgID, tier); err != nil {
			return nil, err
		}
		return subscribedOutcome(tier.ID), nil
	}
	return s.issueInvoice(ctx, userID, orgID, tier)
}

// applyTier writes a free tier for a confirmed subscription. The guarded
// paid path lives in ConfirmPaidSubscription.
func (s *service) applyTier(ctx context.Context, userID, orgID uuid.UUID, tier *models.MembershipTier) error {
	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		member, err := s.members.GetMemberTx(tx, orgID, userID)
		if err != nil {
			return err
		}
		if member == nil {
			role, err := s.roles.DefaultRoleTx(tx, orgID)
			if err != nil {
				return err
			}
			if role == nil {
				return pkgerrors.New(pkgerrors.CodeInternal, "default role missing for organization")
			}
			tierID := tier.ID
			if err := s.members.InsertTx(tx, &models.OrganizationMember{
				OrganizationID: orgID,
				UserID:         userID,
				RoleID:         role.ID,
				MembershipID:   &tierID,
			}); err != nil {
				return err
			}
		} else if _, err := s.members.ReplaceTierTx(tx, orgID, userID, tier.ID); err != nil {
			return err
		}

		s.recordSubscribeActivity(ctx, tx, userID, orgID, tier)
		return nil
	})
}

// recordSubscribeActivity writes one org-scoped and one user-scoped trail
// entry. Trail failures are logged and swallowed.
func (s *service) recordSubscribeActivity(ctx context.Context, tx *gorm.DB, userID, orgID uuid.UUID, tier *models.MembershipTier) {
	tierID := tier.ID
	entries := []activity.Entry{
		{
			OrganizationID: orgID,
			ActorID:        userID,
			Type:           enums.ActivityMembershipSubscribe,
			TargetID:       &tierID,
			Detail:         map[string]any{"scope": "organization", "tier": tier.Name},
		},
		{
			OrganizationID: orgID,
			ActorID:        userID,
			Type:           enums.ActivityMembershipSubscribe,
			TargetID:       &tierID,
			Detail:         map[string]any{"scope": "user", "tier": tier.Name},
		},
	}
	for _, entry := range entries {
		if err := s.trail.RecordTx(ctx, tx, entry); err != nil {
			s.logg.Error(ctx, "failed to record subscribe activity", err)
		}
	}
}

func (s *service) issueInvoice(ctx context.Context, userID, orgID uuid.UUID, tier *models.MembershipTier) (*Outcome, error) {
	org, err := s.orgs.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
	}
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	input := CreateInvoiceInput{
		ExternalID:         invoiceExternalID(userID, tier.ID, time.Now().UTC()),
		Amount:             tier.Price.InexactFloat64(),
		Currency:           s.currency,
		Description:        fmt.Sprintf("Payment for %s membership in %s: %s", tier.Name, org.Name, tier.Description),
		PayerEmail:         user.Email,
		SuccessRedirectURL: fmt.Sprintf("%s/%s?tab=membership", s.siteURL, org.Slug),
	}

	inv, err := s.invoices.CreateInvoice(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create membership invoice")
	}

	payment := &models.Payment{
		OrganizationID: orgID,
		PayerUserID:    userID,
		Amount:         tier.Price,
		Currency:       s.currency,
		Type:           enums.PaymentTypeMembership,
		Status:         enums.PaymentStatusPending,
		InvoiceID:      inv.ID,
		InvoiceURL:     inv.URL,
		TargetID:       tier.ID,
	}
	if err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		return s.payments.InsertTx(tx, payment)
	}); err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"invoice_id": inv.ID,
		"org_id":     orgID,
		"tier_id":    tier.ID,
	})
	s.logg.Info(logCtx, "membership invoice issued")
	return redirectOutcome(tier.ID, inv.URL), nil
}

// ConfirmPaidSubscription marks the payment paid and applies the tier.
// It is the integration seam for the invoice webhook and is idempotent
// per invoice id.
func (s *service) ConfirmPaidSubscription(ctx context.Context, invoiceID string) error {
	invoiceID = strings.TrimSpace(invoiceID)
	if invoiceID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "invoice id is required")
	}

	payment, err := s.payments.GetByInvoiceID(ctx, invoiceID)
	if err != nil {
		return err
	}
	if payment == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "payment not found for invoice")
	}
	if payment.Status == enums.PaymentStatusPaid {
		return nil
	}

	if payment.Type != enums.PaymentTypeMembership {
		return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
			rows, err := s.payments.MarkPaidTx(tx, payment.ID, time.Now().UTC())
			if err != nil || rows == 0 {
				return err
			}
			if payment.Type == enums.PaymentTypeEvent && s.registrations != nil {
				s.confirmEventRegistration(ctx, tx, payment, invoiceID)
			}
			return nil
		})
	}

	tier, err := s.tiers.Get(ctx, payment.TargetID)
	if err != nil {
		return err
	}
	if tier == nil {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "membership tier for payment no longer exists")
	}

	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.payments.MarkPaidTx(tx, payment.ID, time.Now().UTC())
		if err != nil {
			return err
		}
		if rows == 0 {
			// another webhook delivery won the race
			return nil
		}

		member, err := s.members.GetMemberTx(tx, payment.OrganizationID, payment.PayerUserID)
		if err != nil {
			return err
		}
		if member == nil {
			role, err := s.roles.DefaultRoleTx(tx, payment.OrganizationID)
			if err != nil {
				return err
			}
			if role == nil {
				return pkgerrors.New(pkgerrors.CodeInternal, "default role missing for organization")
			}
			tierID := tier.ID
			if err := s.members.InsertTx(tx, &models.OrganizationMember{
				OrganizationID: payment.OrganizationID,
				UserID:         payment.PayerUserID,
				RoleID:         role.ID,
				MembershipID:   &tierID,
			}); err != nil {
				return err
			}
		} else {
			applied, err := s.members.ApplyTierTx(tx, payment.OrganizationID, payment.PayerUserID, tier.ID)
			if err != nil {
				return err
			}
			if applied == 0 {
				logCtx := s.logg.WithFields(ctx, map[string]any{
					"invoice_id": invoiceID,
					"tier_id":    tier.ID,
				})
				s.logg.Warn(logCtx, "paid tier not applied, member already holds a different tier")
			}
		}

		paymentID := payment.ID
		if err := s.trail.RecordTx(ctx, tx, activity.Entry{
			OrganizationID: payment.OrganizationID,
			ActorID:        payment.PayerUserID,
			Type:           enums.ActivityPaymentConfirmed,
			Aggregate:      enums.AggregatePayment,
			TargetID:       &paymentID,
			Detail:         map[string]any{"invoice_id": invoiceID, "amount": payment.Amount.String()},
		}); err != nil {
			s.logg.Error(ctx, "failed to record payment activity", err)
		}
		s.recordSubscribeActivity(ctx, tx, payment.PayerUserID, payment.OrganizationID, tier)
		return nil
	})
}

// confirmEventRegistration flips the payer's pending event registration
// once the invoice is paid. A missing pending row is logged, not fatal:
// the registration may have been cancelled before payment settled.
func (s *service) confirmEventRegistration(ctx context.Context, tx *gorm.DB, payment *models.Payment, invoiceID string) {
	confirmed, err := s.registrations.ConfirmRegistrationTx(tx, payment.TargetID, payment.PayerUserID)
	if err != nil {
		s.logg.Error(ctx, "failed to confirm paid registration", err)
		return
	}
	if confirmed == 0 {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"invoice_id": invoiceID,
			"event_id":   payment.TargetID,
		})
		s.logg.Warn(logCtx, "no pending registration for paid event invoice")
		return
	}

	eventID := payment.TargetID
	if err := s.trail.RecordTx(ctx, tx, activity.Entry{
		OrganizationID: payment.OrganizationID,
		ActorID:        payment.PayerUserID,
		Type:           enums.ActivityEventRegistered,
		Aggregate:      enums.AggregateEvent,
		TargetID:       &eventID,
		Detail:         map[string]any{"invoice_id": invoiceID},
	}); err != nil {
		s.logg.Error(ctx, "failed to record registration activity", err)
	}
}

// Cancel clears the member's tier for the (user, tier) pair. No refunds.
func (s *service) Cancel(ctx context.Context, userID, tierID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if tierID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "tier id is required")
	}

	tier, err := s.tiers.Get(ctx, tierID)
	if err != nil {
		return err
	}
	if tier == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "membership tier not found")
	}

	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.members.ClearTierTx(tx, userID, tierID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "no active subscription for this tier")
		}

		if err := s.trail.RecordTx(ctx, tx, activity.Entry{
			OrganizationID: tier.OrganizationID,
			ActorID:        userID,
			Type:           enums.ActivityMembershipCancel,
			TargetID:       &tierID,
			Detail:         map[string]any{"tier": tier.Name},
		}); err != nil {
			s.logg.Error(ctx, "failed to record cancel activity", err)
		}
		return nil
	})
}

func invoiceExternalID(userID, tierID uuid.UUID, now time.Time) string {
	return fmt.Sprintf("%s-%s-%s", userID, tierID, now.Format(time.RFC3339))
}
