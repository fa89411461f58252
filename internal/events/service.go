package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/syncuphq/syncup-backend/internal/activity"
	"github.com/syncuphq/syncup-backend/internal/privacy"
	"github.com/syncuphq/syncup-backend/internal/subscriptions"
	"github.com/syncuphq/syncup-backend/pkg/db"
	"github.com/syncuphq/syncup-backend/pkg/db/models"
	"github.com/syncuphq/syncup-backend/pkg/enums"
	pkgerrors "github.com/syncuphq/syncup-backend/pkg/errors"
	"github.com/syncuphq/syncup-backend/pkg/logger"
)

type eventRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Event, error)
	InsertTx(tx *gorm.DB, event *models.Event, roleIDs, membershipIDs []uuid.UUID, discounts []models.EventDiscount) error
	UpdateTx(tx *gorm.DB, event *models.Event, roleIDs, membershipIDs []uuid.UUID, discounts []models.EventDiscount) error
	Delete(ctx context.Context, id uuid.UUID) error
	ScopeRoleIDs(ctx context.Context, eventID uuid.UUID) ([]uuid.UUID, error)
	ScopeMembershipIDs(ctx context.Context, eventID uuid.UUID) ([]uuid.UUID, error)
	ListDiscounts(ctx context.Context, eventID uuid.UUID) ([]models.EventDiscount, error)
	GetRegistration(ctx context.Context, eventID, userID uuid.UUID) (*models.EventRegistration, error)
	CountActiveTx(tx *gorm.DB, eventID uuid.UUID) (int64, error)
	InsertRegistrationTx(tx *gorm.DB, reg *models.EventRegistration) error
	DeleteRegistration(ctx context.Context, eventID, userID uuid.UUID) (int64, error)
	UpdateAttendance(ctx context.Context, eventID, userID uuid.UUID, attendance enums.AttendanceStatus) (int64, error)
	ListRegistrations(ctx context.Context, eventID uuid.UUID) ([]models.EventRegistration, error)
}

type roleCatalog interface {
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.OrganizationRole, error)
}

type tierCatalog interface {
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.MembershipTier, error)
}

type memberReader interface {
	GetMember(ctx context.Context, orgID, userID uuid.UUID) (*models.OrganizationMember, error)
}

type orgReader interface {
	Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error)
}

type userReader interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

type paymentInserter interface {
	InsertTx(tx *gorm.DB, payment *models.Payment) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// EventInput carries the event create/update fields.
type EventInput struct {
	Title       string
	Description string
	Location    string
	StartsAt    time.Time
	EndsAt      *time.Time
	Capacity    *int
	Price       decimal.Decimal
	Privacy     privacy.ScopeInput
	Discounts   []privacy.DiscountRule
}

// RegistrationOutcome reports whether the registration completed
// immediately or requires paying an invoice first.
type RegistrationOutcome struct {
	Status     enums.RegistrationStatus `json:"status"`
	InvoiceURL string                   `json:"invoiceUrl,omitempty"`
}

// Service manages events, their privacy scopes, and registrations.
type Service interface {
	Create(ctx context.Context, actorID, orgID uuid.UUID, input EventInput) (*models.Event, error)
	Update(ctx context.Context, actorID, eventID uuid.UUID, input EventInput) (*models.Event, error)
	Delete(ctx context.Context, actorID, eventID uuid.UUID) error
	Get(ctx context.Context, viewerID, eventID uuid.UUID) (*models.Event, error)
	ListVisible(ctx context.Context, viewerID, orgID uuid.UUID) ([]models.Event, error)
	Register(ctx context.Context, userID, eventID uuid.UUID) (*RegistrationOutcome, error)
	CancelRegistration(ctx context.Context, userID, eventID uuid.UUID) error
	MarkAttendance(ctx context.Context, actorID, eventID, userID uuid.UUID, attendance enums.AttendanceStatus) error
	ListRegistrations(ctx context.Context, actorID, eventID uuid.UUID) ([]models.EventRegistration, error)
}

// ServiceParams groups dependencies for the events service.
type ServiceParams struct {
	EventRepo         eventRepository
	RoleCatalog       roleCatalog
	TierCatalog       tierCatalog
	MemberRepo        memberReader
	OrgRepo           orgReader
	UserRepo          userReader
	PaymentRepo       paymentInserter
	Invoices          subscriptions.InvoiceClient
	Activity          activity.Sink
	TransactionRunner txRunner
	Logger            *logger.Logger
	SiteURL           string
	Currency          string
}

type service struct {
	events   eventRepository
	roles    roleCatalog
	tiers    tierCatalog
	members  memberReader
	orgs     orgReader
	users    userReader
	payments paymentInserter
	invoices subscriptions.InvoiceClient
	trail    activity.Sink
	txRunner txRunner
	logg     *logger.Logger
	siteURL  string
	currency string
}

// NewService builds the events service.
func NewService(params ServiceParams) (Service, error) {
	if params.EventRepo == nil {
		return nil, fmt.Errorf("event repo required")
	}
	if params.RoleCatalog == nil || params.TierCatalog == nil {
		return nil, fmt.Errorf("role and tier catalogs required")
	}
	if params.MemberRepo == nil {
		return nil, fmt.Errorf("member repo required")
	}
	if params.OrgRepo == nil || params.UserRepo == nil {
		return nil, fmt.Errorf("organization and user repos required")
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
	return &service{
		events:   params.EventRepo,
		roles:    params.RoleCatalog,
		tiers:    params.TierCatalog,
		members:  params.MemberRepo,
		orgs:     params.OrgRepo,
		users:    params.UserRepo,
		payments: params.PaymentRepo,
		invoices: params.Invoices,
		trail:    params.Activity,
		txRunner: params.TransactionRunner,
		logg:     params.Logger,
		siteURL:  strings.TrimRight(strings.TrimSpace(params.SiteURL), "/"),
		currency: defaultCurrency(params.Currency),
	}, nil
}

func defaultCurrency(currency string) string {
	currency = strings.TrimSpace(currency)
	if currency == "" {
		return "PHP"
	}
	return currency
}

// Create validates the privacy scope and discount rules against the
// organization's catalogs and stores the event.
func (s *service) Create(ctx context.Context, actorID, orgID uuid.UUID, input EventInput) (*models.Event, error) {
	if actorID == uuid.Nil || orgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor and organization ids are required")
	}
	member, err := s.members.GetMember(ctx, orgID, actorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load member")
	}
	if member == nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only organization members can create events")
	}

	scope, discounts, err := s.resolveScope(ctx, orgID, input)
	if err != nil {
		return nil, err
	}
	if err := validateEventInput(&input); err != nil {
		return nil, err
	}

	event := &models.Event{
		OrganizationID:      orgID,
		CreatorID:           actorID,
		Title:               input.Title,
		Description:         input.Description,
		Location:            input.Location,
		StartsAt:            input.StartsAt,
		EndsAt:              input.EndsAt,
		Capacity:            input.Capacity,
		Price:               input.Price,
		Privacy:             scope.Type,
		AllowAllRoles:       scope.AllowAllRoles,
		AllowAllMemberships: scope.AllowAllMemberships,
	}

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.events.InsertTx(tx, event, scope.RoleIDs(), scope.MembershipIDs(), discounts); err != nil {
			return err
		}
		eventID := event.ID
		if err := s.trail.RecordTx(ctx, tx, activity.Entry{
			OrganizationID: orgID,
			ActorID:        actorID,
			Type:           enums.ActivityEventCreated,
			Aggregate:      enums.AggregateEvent,
			TargetID:       &eventID,
			Detail:         map[string]any{"title": event.Title},
		}); err != nil {
			s.logg.Error(ctx, "failed to record event created activity", err)
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create event")
	}
	return event, nil
}

// Update revalidates the scope and replaces the event's allow-lists
// and discount rules.
func (s *service) Update(ctx context.Context, actorID, eventID uuid.UUID, input EventInput) (*models.Event, error) {
	event, err := s.requireOrganizer(ctx, actorID, eventID)
	if err != nil {
		return nil, err
	}

	scope, discounts, err := s.resolveScope(ctx, event.OrganizationID, input)
	if err != nil {
		return nil, err
	}
	if err := validateEventInput(&input); err != nil {
		return nil, err
	}

	event.Title = input.Title
	event.Description = input.Description
	event.Location = input.Location
	event.StartsAt = input.StartsAt
	event.EndsAt = input.EndsAt
	event.Capacity = input.Capacity
	event.Price = input.Price
	event.Privacy = scope.Type
	event.AllowAllRoles = scope.AllowAllRoles
	event.AllowAllMemberships = scope.AllowAllMemberships

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		return s.events.UpdateTx(tx, event, scope.RoleIDs(), scope.MembershipIDs(), discounts)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update event")
	}
	return event, nil
}

func (s *service) Delete(ctx context.Context, actorID, eventID uuid.UUID) error {
	if _, err := s.requireOrganizer(ctx, actorID, eventID); err != nil {
		return err
	}
	if err := s.events.Delete(ctx, eventID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete event")
	}
	return nil
}

// Get returns the event when it is visible to the viewer. Invisible
// events are indistinguishable from missing ones.
func (s *service) Get(ctx context.Context, viewerID, eventID uuid.UUID) (*models.Event, error) {
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load event")
	}
	if event == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
	}
	visible, err := s.isVisibleTo(ctx, viewerID, event)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
	}
	return event, nil
}

// ListVisible returns the organization's events filtered by the
// viewer's role and membership tier.
func (s *service) ListVisible(ctx context.Context, viewerID, orgID uuid.UUID) ([]models.Event, error) {
	events, err := s.events.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list events")
	}

	member, err := s.viewerMember(ctx, viewerID, orgID)
	if err != nil {
		return nil, err
	}

	visible := make([]models.Event, 0, len(events))
	for i := range events {
		ok, err := s.scopeAllows(ctx, &events[i], member)
		if err != nil {
			return nil, err
		}
		if ok {
			visible = append(visible, events[i])
		}
	}
	return visible, nil
}

// Register adds the viewer to the event. Paid events return an invoice
// to settle; the registration stays pending until the webhook confirms
// payment.
func (s *service) Register(ctx context.Context, userID, eventID uuid.UUID) (*RegistrationOutcome, error) {
	event, err := s.Get(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}

	existing, err := s.events.GetRegistration(ctx, eventID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load registration")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "already registered for this event")
	}

	price, err := s.effectivePrice(ctx, event, userID)
	if err != nil {
		return nil, err
	}

	status := enums.RegistrationRegistered
	if price.IsPositive() {
		status = enums.RegistrationPending
	}

	reg := &models.EventRegistration{
		EventID:    eventID,
		UserID:     userID,
		Status:     status,
		Attendance: enums.AttendanceUnset,
	}
	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		if event.Capacity != nil {
			count, err := s.events.CountActiveTx(tx, eventID)
			if err != nil {
				return err
			}
			if count >= int64(*event.Capacity) {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "event is at capacity")
			}
		}
		if err := s.events.InsertRegistrationTx(tx, reg); err != nil {
			if db.IsUniqueViolation(err, "idx_event_reg_user") {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "already registered for this event")
			}
			return err
		}
		if status == enums.RegistrationRegistered {
			if err := s.trail.RecordTx(ctx, tx, activity.Entry{
				OrganizationID: event.OrganizationID,
				ActorID:        userID,
				Type:           enums.ActivityEventRegistered,
				Aggregate:      enums.AggregateEvent,
				TargetID:       &event.ID,
				Detail:         map[string]any{"title": event.Title},
			}); err != nil {
				s.logg.Error(ctx, "failed to record registration activity", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if status == enums.RegistrationRegistered {
		return &RegistrationOutcome{Status: status}, nil
	}

	invoiceURL, err := s.issueRegistrationInvoice(ctx, event, userID, price)
	if err != nil {
		// compensate so the user can retry
		if _, delErr := s.events.DeleteRegistration(ctx, eventID, userID); delErr != nil {
			s.logg.Error(ctx, "failed to roll back pending registration", delErr)
		}
		return nil, err
	}
	return &RegistrationOutcome{Status: status, InvoiceURL: invoiceURL}, nil
}

func (s *service) issueRegistrationInvoice(ctx context.Context, event *models.Event, userID uuid.UUID, price decimal.Decimal) (string, error) {
	org, err := s.orgs.Get(ctx, event.OrganizationID)
	if err != nil || org == nil {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "organization missing for event")
	}
	user, err := s.users.Get(ctx, userID)
	if err != nil || user == nil {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "user missing for registration")
	}

	inv, err := s.invoices.CreateInvoice(ctx, subscriptions.CreateInvoiceInput{
		ExternalID:         fmt.Sprintf("%s-%s-%s", userID, event.ID, time.Now().UTC().Format(time.RFC3339)),
		Amount:             price.InexactFloat64(),
		Currency:           s.currency,
		Description:        fmt.Sprintf("Payment for %s in %s", event.Title, org.Name),
		PayerEmail:         user.Email,
		SuccessRedirectURL: fmt.Sprintf("%s/%s?tab=events", s.siteURL, org.Slug),
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create event invoice")
	}

	payment := &models.Payment{
		OrganizationID: event.OrganizationID,
		PayerUserID:    userID,
		Amount:         price,
		Currency:       s.currency,
		Type:           enums.PaymentTypeEvent,
		Status:         enums.PaymentStatusPending,
		InvoiceID:      inv.ID,
		InvoiceURL:     inv.URL,
		TargetID:       event.ID,
	}
	if err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		return s.payments.InsertTx(tx, payment)
	}); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store event payment")
	}
	return inv.URL, nil
}

func (s *service) CancelRegistration(ctx context.Context, userID, eventID uuid.UUID) error {
	rows, err := s.events.DeleteRegistration(ctx, eventID, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancel registration")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "not registered for this event")
	}
	return nil
}

func (s *service) MarkAttendance(ctx context.Context, actorID, eventID, userID uuid.UUID, attendance enums.AttendanceStatus) error {
	if !attendance.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid attendance status")
	}
	if _, err := s.requireOrganizer(ctx, actorID, eventID); err != nil {
		return err
	}
	rows, err := s.events.UpdateAttendance(ctx, eventID, userID, attendance)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark attendance")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "registration not found")
	}
	return nil
}

func (s *service) ListRegistrations(ctx context.Context, actorID, eventID uuid.UUID) ([]models.EventRegistration, error) {
	if _, err := s.requireOrganizer(ctx, actorID, eventID); err != nil {
		return nil, err
	}
	return s.events.ListRegistrations(ctx, eventID)
}

// requireOrganizer loads the event and checks the actor is its creator
// or the organization owner.
func (s *service) requireOrganizer(ctx context.Context, actorID, eventID uuid.UUID) (*models.Event, error) {
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load event")
	}
	if event == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
	}
	if event.CreatorID == actorID {
		return event, nil
	}
	org, err := s.orgs.Get(ctx, event.OrganizationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load organization")
	}
	if org == nil || org.OwnerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the event creator or organization owner can do this")
	}
	return event, nil
}

func (s *service) resolveScope(ctx context.Context, orgID uuid.UUID, input EventInput) (privacy.Scope, []models.EventDiscount, error) {
	catalog, err := s.loadCatalog(ctx, orgID)
	if err != nil {
		return privacy.Scope{}, nil, err
	}

	scope, err := privacy.ValidateScope(input.Privacy, catalog)
	if err != nil {
		return privacy.Scope{}, nil, err
	}
	if err := privacy.ValidateDiscounts(input.Discounts, scope); err != nil {
		return privacy.Scope{}, nil, err
	}

	discounts := make([]models.EventDiscount, 0, len(input.Discounts))
	for _, rule := range input.Discounts {
		discounts = append(discounts, models.EventDiscount{
			Roles:       pq.StringArray(rule.Roles),
			Memberships: pq.StringArray(rule.Memberships),
			Percent:     rule.Percent,
		})
	}
	return scope, discounts, nil
}

func (s *service) loadCatalog(ctx context.Context, orgID uuid.UUID) (privacy.Catalog, error) {
	roles, err := s.roles.ListByOrg(ctx, orgID)
	if err != nil {
		return privacy.Catalog{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load role catalog")
	}
	tiers, err := s.tiers.ListByOrg(ctx, orgID)
	if err != nil {
		return privacy.Catalog{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load tier catalog")
	}

	catalog := privacy.Catalog{
		Roles:       make([]privacy.CatalogEntry, 0, len(roles)),
		Memberships: make([]privacy.CatalogEntry, 0, len(tiers)),
	}
	for _, role := range roles {
		catalog.Roles = append(catalog.Roles, privacy.CatalogEntry{ID: role.ID, Name: role.Name})
	}
	for _, tier := range tiers {
		catalog.Memberships = append(catalog.Memberships, privacy.CatalogEntry{ID: tier.ID, Name: tier.Name})
	}
	return catalog, nil
}

func (s *service) viewerMember(ctx context.Context, viewerID, orgID uuid.UUID) (*models.OrganizationMember, error) {
	if viewerID == uuid.Nil {
		return nil, nil
	}
	member, err := s.members.GetMember(ctx, orgID, viewerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load member")
	}
	return member, nil
}

func (s *service) isVisibleTo(ctx context.Context, viewerID uuid.UUID, event *models.Event) (bool, error) {
	member, err := s.viewerMember(ctx, viewerID, event.OrganizationID)
	if err != nil {
		return false, err
	}
	return s.scopeAllows(ctx, event, member)
}

func (s *service) scopeAllows(ctx context.Context, event *models.Event, member *models.OrganizationMember) (bool, error) {
	if event.Privacy == enums.PrivacyPublic {
		return true, nil
	}
	if member == nil {
		return false, nil
	}

	scope := privacy.Scope{
		Type:                event.Privacy,
		AllowAllRoles:       event.AllowAllRoles,
		AllowAllMemberships: event.AllowAllMemberships,
	}
	if !event.AllowAllRoles {
		roleIDs, err := s.events.ScopeRoleIDs(ctx, event.ID)
		if err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load event scope")
		}
		for _, id := range roleIDs {
			scope.Roles = append(scope.Roles, privacy.CatalogEntry{ID: id})
		}
	}
	if !event.AllowAllMemberships {
		membershipIDs, err := s.events.ScopeMembershipIDs(ctx, event.ID)
		if err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load event scope")
		}
		for _, id := range membershipIDs {
			scope.Memberships = append(scope.Memberships, privacy.CatalogEntry{ID: id})
		}
	}
	return privacy.IsVisible(scope, member.RoleID, member.MembershipID), nil
}

// effectivePrice applies the best matching discount rule for the
// viewer's role and membership tier names.
func (s *service) effectivePrice(ctx context.Context, event *models.Event, userID uuid.UUID) (decimal.Decimal, error) {
	if !event.Price.IsPositive() {
		return decimal.Zero, nil
	}

	discounts, err := s.events.ListDiscounts(ctx, event.ID)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load discounts")
	}
	if len(discounts) == 0 {
		return event.Price, nil
	}

	member, err := s.viewerMember(ctx, userID, event.OrganizationID)
	if err != nil {
		return decimal.Zero, err
	}
	if member == nil {
		return event.Price, nil
	}

	roleName, tierName, err := s.memberNames(ctx, event.OrganizationID, member)
	if err != nil {
		return decimal.Zero, err
	}

	best := decimal.Zero
	for _, rule := range discounts {
		if !discountApplies(rule, roleName, tierName) {
			continue
		}
		if rule.Percent.GreaterThan(best) {
			best = rule.Percent
		}
	}
	if best.IsZero() {
		return event.Price, nil
	}

	hundred := decimal.NewFromInt(100)
	factor := hundred.Sub(best).Div(hundred)
	return event.Price.Mul(factor).Round(2), nil
}

func (s *service) memberNames(ctx context.Context, orgID uuid.UUID, member *models.OrganizationMember) (string, string, error) {
	roles, err := s.roles.ListByOrg(ctx, orgID)
	if err != nil {
		return "", "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load role catalog")
	}
	var roleName string
	for _, role := range roles {
		if role.ID == member.RoleID {
			roleName = role.Name
			break
		}
	}

	var tierName string
	if member.MembershipID != nil {
		tiers, err := s.tiers.ListByOrg(ctx, orgID)
		if err != nil {
			return "", "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load tier catalog")
		}
		for _, tier := range tiers {
			if tier.ID == *member.MembershipID {
				tierName = tier.Name
				break
			}
		}
	}
	return roleName, tierName, nil
}

func discountApplies(rule models.EventDiscount, roleName, tierName string) bool {
	for _, name := range rule.Roles {
		if name == roleName && roleName != "" {
			return true
		}
	}
	for _, name := range rule.Memberships {
		if name == tierName && tierName != "" {
			return true
		}
	}
	return false
}

func validateEventInput(input *EventInput) error {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "event title is required")
	}
	if input.StartsAt.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "event start time is required")
	}
	if input.EndsAt != nil && !input.EndsAt.After(input.StartsAt) {
		return pkgerrors.New(pkgerrors.CodeValidation, "event must end after it starts")
	}
	if input.Capacity != nil && *input.Capacity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "capacity must be positive")
	}
	if input.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "registration fee cannot be negative")
	}
	return nil
}
