package subscriptions

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/syncuphq/syncup-backend/internal/activity"
	"github.com/syncuphq/syncup-backend/pkg/db/models"
	"github.com/syncuphq/syncup-backend/pkg/enums"
	pkgerrors "github.com/syncuphq/syncup-backend/pkg/errors"
	"github.com/syncuphq/syncup-backend/pkg/logger"
)

type stubMembers struct {
	member   *models.OrganizationMember
	txMember *models.OrganizationMember

	inserted []*models.OrganizationMember
	replaced int
	applied  int
	cleared  int

	applyRows int64
	clearRows int64
}

func (s *stubMembers) GetMember(_ context.Context, _, _ uuid.UUID) (*models.OrganizationMember, error) {
	return s.member, nil
}

func (s *stubMembers) GetMemberTx(_ *gorm.DB, _, _ uuid.UUID) (*models.OrganizationMember, error) {
	return s.txMember, nil
}

func (s *stubMembers) InsertTx(_ *gorm.DB, member *models.OrganizationMember) error {
	s.inserted = append(s.inserted, member)
	return nil
}

func (s *stubMembers) ReplaceTierTx(_ *gorm.DB, _, _, _ uuid.UUID) (int64, error) {
	s.replaced++
	return 1, nil
}

func (s *stubMembers) ApplyTierTx(_ *gorm.DB, _, _, _ uuid.UUID) (int64, error) {
	s.applied++
	return s.applyRows, nil
}

func (s *stubMembers) ClearTierTx(_ *gorm.DB, _, _ uuid.UUID) (int64, error) {
	s.cleared++
	return s.clearRows, nil
}

type stubRoles struct {
	role *models.OrganizationRole
}

func (s *stubRoles) DefaultRoleTx(_ *gorm.DB, _ uuid.UUID) (*models.OrganizationRole, error) {
	return s.role, nil
}

type stubTiers struct {
	tier *models.MembershipTier
}

func (s *stubTiers) Get(_ context.Context, _ uuid.UUID) (*models.MembershipTier, error) {
	return s.tier, nil
}

type stubOrgs struct {
	org *models.Organization
}

func (s *stubOrgs) Get(_ context.Context, _ uuid.UUID) (*models.Organization, error) {
	return s.org, nil
}

type stubUsers struct {
	user *models.User
}

func (s *stubUsers) Get(_ context.Context, _ uuid.UUID) (*models.User, error) {
	return s.user, nil
}

type stubPayments struct {
	payment *models.Payment

	inserted     []*models.Payment
	markedPaid   int
	markPaidRows int64
}

func (s *stubPayments) InsertTx(_ *gorm.DB, payment *models.Payment) error {
	s.inserted = append(s.inserted, payment)
	return nil
}

func (s *stubPayments) GetByInvoiceID(_ context.Context, _ string) (*models.Payment, error) {
	return s.payment, nil
}

func (s *stubPayments) MarkPaidTx(_ *gorm.DB, _ uuid.UUID, _ time.Time) (int64, error) {
	s.markedPaid++
	return s.markPaidRows, nil
}

type stubInvoices struct {
	invoice   *Invoice
	err       error
	lastInput CreateInvoiceInput
	calls     int
}

func (s *stubInvoices) CreateInvoice(_ context.Context, input CreateInvoiceInput) (*Invoice, error) {
	s.calls++
	s.lastInput = input
	if s.err != nil {
		return nil, s.err
	}
	return s.invoice, nil
}

type stubTrail struct {
	entries []activity.Entry
	err     error
}

func (s *stubTrail) RecordTx(_ context.Context, _ *gorm.DB, entry activity.Entry) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubRegistrations struct {
	confirmRows int64
	confirmed   int
	lastEventID uuid.UUID
	lastUserID  uuid.UUID
}

func (s *stubRegistrations) ConfirmRegistrationTx(tx *gorm.DB, eventID, userID uuid.UUID) (int64, error) {
	s.confirmed++
	s.lastEventID = eventID
	s.lastUserID = userID
	return s.confirmRows, nil
}

type serviceFixture struct {
	members       *stubMembers
	roles         *stubRoles
	tiers         *stubTiers
	orgs          *stubOrgs
	users         *stubUsers
	payments      *stubPayments
	invoices      *stubInvoices
	trail         *stubTrail
	registrations *stubRegistrations
}

func newFixture() *serviceFixture {
	return &serviceFixture{
		members:  &stubMembers{},
		roles:    &stubRoles{role: &models.OrganizationRole{ID: uuid.New(), Name: "User"}},
		tiers:    &stubTiers{},
		orgs:     &stubOrgs{},
		users:    &stubUsers{},
		payments: &stubPayments{},
		invoices: &stubInvoices{},
		trail:    &stubTrail{},
	}
}

func (f *serviceFixture) build(t *testing.T) Service {
	t.Helper()
	params := ServiceParams{
		MemberRepo:        f.members,
		RoleRepo:          f.roles,
		TierRepo:          f.tiers,
		OrgRepo:           f.orgs,
		UserRepo:          f.users,
		PaymentRepo:       f.payments,
		Invoices:          f.invoices,
		Activity:          f.trail,
		TransactionRunner: stubTx{},
		Logger:            logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard}),
		SiteURL:           "https://syncup.example",
		Currency:          "PHP",
	}
	if f.registrations != nil {
		params.Registrations = f.registrations
	}
	svc, err := NewService(params)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func freeTier(orgID uuid.UUID) *models.MembershipTier {
	return &models.MembershipTier{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Name:           "Community",
		Description:    "Open access",
		Price:          decimal.Zero,
		IsActive:       true,
	}
}

func paidTier(orgID uuid.UUID) *models.MembershipTier {
	return &models.MembershipTier{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Name:           "Gold",
		Description:    "All access pass",
		Price:          decimal.NewFromInt(500),
		IsActive:       true,
	}
}

func TestSubscribeRejectsNonMember(t *testing.T) {
	f := newFixture()
	orgID := uuid.New()
	f.tiers.tier = freeTier(orgID)
	svc := f.build(t)

	_, err := svc.Subscribe(context.Background(), uuid.New(), orgID, f.tiers.tier.ID)
	if !pkgerrors.Is(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestSubscribeSameFreeTierReprocesses(t *testing.T) {
	f := newFixture()
	orgID := uuid.New()
	tier := freeTier(orgID)
	f.tiers.tier = tier
	tierID := tier.ID
	member := &models.OrganizationMember{OrganizationID: orgID, UserID: uuid.New(), MembershipID: &tierID}
	f.members.member = member
	f.members.txMember = member
	svc := f.build(t)

	outcome, err := svc.Subscribe(context.Background(), member.UserID, orgID, tier.ID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if outcome.Kind != OutcomeSubscribed {
		t.Fatalf("kind = %s, want %s", outcome.Kind, OutcomeSubscribed)
	}
	// Re-confirming the held tier runs the normal processing path, no
	// confirmation detour.
	if f.members.replaced != 1 {
		t.Fatalf("replace calls = %d, want 1", f.members.replaced)
	}
	if len(f.trail.entries) != 2 {
		t.Fatalf("activity entries = %d, want 2", len(f.trail.entries))
	}
}

func TestSubscribeSamePaidTierReissuesInvoice(t *testing.T) {
	f := newFixture()
	orgID := uuid.New()
	tier := paidTier(orgID)
	f.tiers.tier = tier
	tierID := tier.ID
	userID := uuid.New()
	f.members.member = &models.OrganizationMember{OrganizationID: orgID, UserID: userID, MembershipID: &tierID}
	f.orgs.org = &models.Organization{ID: orgID, Name: "Trail Runners", Slug: "trail-runners"}
	f.users.user = &models.User{ID: userID, Email: "runner@example.com"}
	f.invoices.invoice = &Invoice{ID: "inv-2", URL: "https://checkout.xendit.co/inv-2"}
	svc := f.build(t)

	outcome, err := svc.Subscribe(context.Background(), userID, orgID, tier.ID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if outcome.Kind != OutcomeRedirectToPayment {
		t.Fatalf("kind = %s, want %s", outcome.Kind, OutcomeRedirectToPayment)
	}
	if f.invoices.calls != 1 {
		t.Fatalf("invoice calls = %d, want 1", f.invoices.calls)
	}
	if f.members.replaced != 0 || f.members.applied != 0 || len(f.members.inserted) != 0 {
		t.Fatal("paid path must not touch the member row")
	}
}

func TestSubscribeDifferentTierRequiresConfirmation(t *testing.T) {
	f := newFixture()
	orgID := uuid.New()
	tier := freeTier(orgID)
	f.tiers.tier = tier
	currentID := uuid.New()
	f.members.member = &models.OrganizationMember{MembershipID: &currentID}
	svc := f.build(t)

	outcome, err := svc.Subscribe(context.Background(), uuid.New(), orgID, tier.ID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if outcome.Kind != OutcomeRequiresConfirmation {
		t.Fatalf("kind = %s, want %s", outcome.Kind, OutcomeRequiresConfirmation)
	}
	if outcome.CurrentTierID == nil || *outcome.CurrentTierID != currentID {
		t.Errorf("current tier = %v, want %s", outcome.CurrentTierID, currentID)
	}
	if outcome.TargetTierID == nil || *outcome.TargetTierID != tier.ID {
		t.Errorf("target tier = %v, want %s", outcome.TargetTierID, tier.ID)
	}
	if f.members.replaced != 0 || len(f.members.inserted) != 0 {
		t.Fatal("expected no member mutation")
	}
}

func TestSubscribeFreeTierAppliesAndRecordsActivity(t *testing.T) {
	f := newFixture()
	orgID := uuid.New()
	tier := freeTier(orgID)
	f.tiers.tier = tier
	member := &models.OrganizationMember{OrganizationID: orgID, UserID: uuid.New()}
	f.members.member = member
	f.members.txMember = member
	svc := f.build(t)

	outcome, err := svc.Subscribe(context.Background(), member.UserID, orgID, tier.ID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if outcome.Kind != OutcomeSubscribed {
		t.Fatalf("kind = %s, want %s", outcome.Kind, OutcomeSubscribed)
	}
	if f.members.replaced != 1 {
		t.Fatalf("replace calls = %d, want 1", f.members.replaced)
	}
	if len(f.trail.entries) != 2 {
		t.Fatalf("activity entries = %d, want 2", len(f.trail.entries))
	}
	scopes := map[any]bool{}
	for _, entry := range f.trail.entries {
		if entry.Type != enums.ActivityMembershipSubscribe {
			t.Errorf("activity type = %s, want %s", entry.Type, enums.ActivityMembershipSubscribe)
		}
		scopes[entry.Detail["scope"]] = true
	}
	if !scopes["organization"] || !scopes["user"] {
		t.Errorf("expected organization and user scoped entries, got %v", scopes)
	}
}

func TestSubscribeFreeTierInsertsRowWithDefaultRole(t *testing.T) {
	f := newFixture()
	orgID := uuid.New()
	tier := freeTier(orgID)
	f.tiers.tier = tier
	userID := uuid.New()
	f.members.member = &models.OrganizationMember{OrganizationID: orgID, UserID: userID}
	f.members.txMember = nil
	svc := f.build(t)

	if _, err := svc.Subscribe(context.Background(), userID, orgID, tier.ID); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if len(f.members.inserted) != 1 {
		t.Fatalf("inserted rows = %d, want 1", len(f.members.inserted))
	}
	row := f.members.inserted[0]
	if row.RoleID != f.roles.role.ID {
		t.Errorf("role id = %s, want default role %s", row.RoleID, f.roles.role.ID)
	}
	if row.MembershipID == nil || *row.MembershipID != tier.ID {
		t.Errorf("membership id = %v, want %s", row.MembershipID, tier.ID)
	}
}

func TestSubscribeActivityFailureDoesNotFail(t *testing.T) {
	f := newFixture()
	orgID := uuid.New()
	tier := freeTier(orgID)
	f.tiers.tier = tier
	member := &models.OrganizationMember{OrganizationID: orgID, UserID: uuid.New()}
	f.members.member = member
	f.members.txMember = member
	f.trail.err = errors.New("outbox down")
	svc := f.build(t)

	outcome, err := svc.Subscribe(context.Background(), member.UserID, orgID, tier.ID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if outcome.Kind != OutcomeSubscribed {
		t.Fatalf("kind = %s, want %s", outcome.Kind, OutcomeSubscribed)
	}
}

func TestSubscribePaidTierIssuesInvoice(t *testing.T) {
	f := newFixture()
	orgID := uuid.New()
	tier := paidTier(orgID)
	f.tiers.tier = tier
	userID := uuid.New()
	f.members.member = &models.OrganizationMember{OrganizationID: orgID, UserID: userID}
	f.orgs.org = &models.Organization{ID: orgID, Name: "Trail Runners", Slug: "trail-runners"}
	f.users.user = &models.User{ID: userID, Email: "runner@example.com"}
	f.invoices.invoice = &Invoice{ID: "inv-1", URL: "https://checkout.xendit.co/inv-1"}
	svc := f.build(t)

	outcome, err := svc.Subscribe(context.Background(), userID, orgID, tier.ID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if outcome.Kind != OutcomeRedirectToPayment {
		t.Fatalf("kind = %s, want %s", outcome.Kind, OutcomeRedirectToPayment)
	}
	if outcome.InvoiceURL != "https://checkout.xendit.co/inv-1" {
		t.Errorf("invoice url = %s", outcome.InvoiceURL)
	}

	input := f.invoices.lastInput
	wantPrefix := userID.String() + "-" + tier.ID.String() + "-"
	if !strings.HasPrefix(input.ExternalID, wantPrefix) {
		t.Errorf("external id = %s, want prefix %s", input.ExternalID, wantPrefix)
	}
	if input.Description != "Payment for Gold membership in Trail Runners: All access pass" {
		t.Errorf("description = %s", input.Description)
	}
	if input.SuccessRedirectURL != "https://syncup.example/trail-runners?tab=membership" {
		t.Errorf("redirect url = %s", input.SuccessRedirectURL)
	}
	if input.Currency != "PHP" {
		t.Errorf("currency = %s", input.Currency)
	}
	if input.PayerEmail != "runner@example.com" {
		t.Errorf("payer email = %s", input.PayerEmail)
	}
	if input.Amount != 500 {
		t.Errorf("amount = %v, want 500", input.Amount)
	}

	if len(f.payments.inserted) != 1 {
		t.Fatalf("payments inserted = %d, want 1", len(f.payments.inserted))
	}
	payment := f.payments.inserted[0]
	if payment.InvoiceID != "inv-1" {
		t.Errorf("payment invoice id = %s", payment.InvoiceID)
	}
	if payment.Type != enums.PaymentTypeMembership {
		t.Errorf("payment type = %s", payment.Type)
	}
	if payment.Status != enums.PaymentStatusPending {
		t.Errorf("payment status = %s", payment.Status)
	}
	if payment.TargetID != tier.ID {
		t.Errorf("payment target = %s, want tier %s", payment.TargetID, tier.ID)
	}

	if f.members.replaced != 0 || f.members.applied != 0 || len(f.members.inserted) != 0 {
		t.Fatal("paid path must not touch the member row")
	}
}

func TestSubscribePaidTierInvoiceFailure(t *testing.T) {
	f := newFixture()
	orgID := uuid.New()
	tier := paidTier(orgID)
	f.tiers.tier = tier
	userID := uuid.New()
	f.members.member = &models.OrganizationMember{OrganizationID: orgID, UserID: userID}
	f.orgs.org = &models.Organization{ID: orgID, Name: "Trail Runners", Slug: "trail-runners"}
	f.users.user = &models.User{ID: userID, Email: "runner@example.com"}
	f.invoices.err = errors.New("gateway timeout")
	svc := f.build(t)

	_, err := svc.Subscribe(context.Background(), userID, orgID, tier.ID)
	if !pkgerrors.Is(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if len(f.payments.inserted) != 0 {
		t.Fatal("expected no payment row on invoice failure")
	}
}

func TestSubscribeRejectsForeignTier(t *testing.T) {
	f := newFixture()
	orgID := uuid.New()
	f.tiers.tier = freeTier(uuid.New())
	f.members.member = &models.OrganizationMember{}
	svc := f.build(t)

	_, err := svc.Subscribe(context.Background(), uuid.New(), orgID, f.tiers.tier.ID)
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestConfirmSubscribeSwitchesTier(t *testing.T) {
	f := newFixture()
	orgID := uuid.New()
	tier := freeTier(orgID)
	f.tiers.tier = tier
	currentID := uuid.New()
	member := &models.OrganizationMember{OrganizationID: orgID, UserID: uuid.New(), MembershipID: &currentID}
	f.members.member = member
	f.members.txMember = member
	svc := f.build(t)

	outcome, err := svc.ConfirmSubscribe(context.Background(), member.UserID, orgID, tier.ID)
	if err != nil {
		t.Fatalf("ConfirmSubscribe: %v", err)
	}
	if outcome.Kind != OutcomeSubscribed {
		t.Fatalf("kind = %s, want %s", outcome.Kind, OutcomeSubscribed)
	}
	if f.members.replaced != 1 {
		t.Fatalf("replace calls = %d, want 1", f.members.replaced)
	}
}

func TestConfirmPaidSubscriptionAppliesTier(t *testing.T) {
	f := newFixture()
	orgID := uuid.New()
	tier := paidTier(orgID)
	f.tiers.tier = tier
	userID := uuid.New()
	f.payments.payment = &models.Payment{
		ID:             uuid.New(),
		OrganizationID: orgID,
		PayerUserID:    userID,
		Amount:         tier.Price,
		Type:           enums.PaymentTypeMembership,
		Status:         enums.PaymentStatusPending,
		InvoiceID:      "inv-1",
		TargetID:       tier.ID,
	}
	f.payments.markPaidRows = 1
	f.members.txMember = &models.OrganizationMember{OrganizationID: orgID, UserID: userID}
	f.members.applyRows = 1
	svc := f.build(t)

	if err := svc.ConfirmPaidSubscription(context.Background(), "inv-1"); err != nil {
		t.Fatalf("ConfirmPaidSubscription: %v", err)
	}
	if f.payments.markedPaid != 1 {
		t.Fatalf("mark paid calls = %d, want 1", f.payments.markedPaid)
	}
	if f.members.applied != 1 {
		t.Fatalf("apply calls = %d, want 1", f.members.applied)
	}

	var confirmed, subscribed int
	for _, entry := range f.trail.entries {
		switch entry.Type {
		case enums.ActivityPaymentConfirmed:
			confirmed++
		case enums.ActivityMembershipSubscribe:
			subscribed++
		}
	}
	if confirmed != 1 || subscribed != 2 {
		t.Errorf("activity entries: confirmed=%d subscribed=%d, want 1 and 2", confirmed, subscribed)
	}
}

func TestConfirmPaidSubscriptionAlreadyPaidIsNoop(t *testing.T) {
	f := newFixture()
	f.payments.payment = &models.Payment{
		ID:     uuid.New(),
		Type:   enums.PaymentTypeMembership,
		Status: enums.PaymentStatusPaid,
	}
	svc := f.build(t)

	if err := svc.ConfirmPaidSubscription(context.Background(), "inv-1"); err != nil {
		t.Fatalf("ConfirmPaidSubscription: %v", err)
	}
	if f.payments.markedPaid != 0 || f.members.applied != 0 {
		t.Fatal("expected no side effects for already-paid invoice")
	}
}

func TestConfirmPaidSubscriptionUnknownInvoice(t *testing.T) {
	f := newFixture()
	svc := f.build(t)

	err := svc.ConfirmPaidSubscription(context.Background(), "missing")
	if !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestConfirmPaidSubscriptionGuardedApplyLosesRace(t *testing.T) {
	f := newFixture()
	orgID := uuid.New()
	tier := paidTier(orgID)
	f.tiers.tier = tier
	userID := uuid.New()
	f.payments.payment = &models.Payment{
		ID:             uuid.New(),
		OrganizationID: orgID,
		PayerUserID:    userID,
		Amount:         tier.Price,
		Type:           enums.PaymentTypeMembership,
		Status:         enums.PaymentStatusPending,
		InvoiceID:      "inv-1",
		TargetID:       tier.ID,
	}
	f.payments.markPaidRows = 1
	held := uuid.New()
	f.members.txMember = &models.OrganizationMember{OrganizationID: orgID, UserID: userID, MembershipID: &held}
	f.members.applyRows = 0
	svc := f.build(t)

	if err := svc.ConfirmPaidSubscription(context.Background(), "inv-1"); err != nil {
		t.Fatalf("ConfirmPaidSubscription: %v", err)
	}
	if f.members.applied != 1 {
		t.Fatalf("apply calls = %d, want 1", f.members.applied)
	}
}

func TestConfirmPaidSubscriptionEventFeeOnlyMarksPaid(t *testing.T) {
	f := newFixture()
	f.payments.payment = &models.Payment{
		ID:     uuid.New(),
		Type:   enums.PaymentTypeEvent,
		Status: enums.PaymentStatusPending,
	}
	f.payments.markPaidRows = 1
	svc := f.build(t)

	if err := svc.ConfirmPaidSubscription(context.Background(), "inv-evt"); err != nil {
		t.Fatalf("ConfirmPaidSubscription: %v", err)
	}
	if f.payments.markedPaid != 1 {
		t.Fatalf("mark paid calls = %d, want 1", f.payments.markedPaid)
	}
	if f.members.applied != 0 && f.members.replaced != 0 {
		t.Fatal("event fee payment must not touch membership")
	}
}

func TestConfirmPaidSubscriptionEventFeeConfirmsRegistration(t *testing.T) {
	f := newFixture()
	eventID := uuid.New()
	userID := uuid.New()
	f.payments.payment = &models.Payment{
		ID:             uuid.New(),
		OrganizationID: uuid.New(),
		PayerUserID:    userID,
		Type:           enums.PaymentTypeEvent,
		Status:         enums.PaymentStatusPending,
		TargetID:       eventID,
	}
	f.payments.markPaidRows = 1
	f.registrations = &stubRegistrations{confirmRows: 1}
	svc := f.build(t)

	if err := svc.ConfirmPaidSubscription(context.Background(), "inv-evt-2"); err != nil {
		t.Fatalf("ConfirmPaidSubscription: %v", err)
	}
	if f.registrations.confirmed != 1 {
		t.Fatalf("confirm calls = %d, want 1", f.registrations.confirmed)
	}
	if f.registrations.lastEventID != eventID || f.registrations.lastUserID != userID {
		t.Fatalf("confirmed (%s, %s), want (%s, %s)",
			f.registrations.lastEventID, f.registrations.lastUserID, eventID, userID)
	}
	if len(f.trail.entries) != 1 || f.trail.entries[0].Type != enums.ActivityEventRegistered {
		t.Fatalf("expected registration activity, got %+v", f.trail.entries)
	}
}

func TestCancelClearsTierAndRecordsActivity(t *testing.T) {
	f := newFixture()
	orgID := uuid.New()
	tier := freeTier(orgID)
	f.tiers.tier = tier
	f.members.clearRows = 1
	svc := f.build(t)

	if err := svc.Cancel(context.Background(), uuid.New(), tier.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if f.members.cleared != 1 {
		t.Fatalf("clear calls = %d, want 1", f.members.cleared)
	}
	if len(f.trail.entries) != 1 || f.trail.entries[0].Type != enums.ActivityMembershipCancel {
		t.Fatalf("expected one cancel activity entry, got %v", f.trail.entries)
	}
}

func TestCancelWithoutSubscription(t *testing.T) {
	f := newFixture()
	orgID := uuid.New()
	f.tiers.tier = freeTier(orgID)
	f.members.clearRows = 0
	svc := f.build(t)

	err := svc.Cancel(context.Background(), uuid.New(), f.tiers.tier.ID)
	if !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
