package newsletters

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/syncuphq/syncup-backend/internal/activity"
	"github.com/syncuphq/syncup-backend/pkg/db/models"
	"github.com/syncuphq/syncup-backend/pkg/enums"
	pkgerrors "github.com/syncuphq/syncup-backend/pkg/errors"
	"github.com/syncuphq/syncup-backend/pkg/logger"
)

type stubNewsletterRepo struct {
	inserted    *models.Newsletter
	newsletters []models.Newsletter
	members     []string
	registrants []string
}

func (s *stubNewsletterRepo) InsertTx(tx *gorm.DB, newsletter *models.Newsletter) error {
	newsletter.ID = uuid.New()
	s.inserted = newsletter
	return nil
}

func (s *stubNewsletterRepo) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Newsletter, error) {
	return s.newsletters, nil
}

func (s *stubNewsletterRepo) MemberEmails(ctx context.Context, orgID uuid.UUID) ([]string, error) {
	return s.members, nil
}

func (s *stubNewsletterRepo) RegistrantEmails(ctx context.Context, eventID uuid.UUID) ([]string, error) {
	return s.registrants, nil
}

type stubOrgReader struct {
	org *models.Organization
}

func (s *stubOrgReader) Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	return s.org, nil
}

type stubEventReader struct {
	event *models.Event
}

func (s *stubEventReader) Get(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
	return s.event, nil
}

type stubMailer struct {
	failFor map[string]bool
	sent    []Email
}

func (s *stubMailer) Send(ctx context.Context, email Email) (string, error) {
	if s.failFor[email.To] {
		return "", fmt.Errorf("provider rejected %s", email.To)
	}
	s.sent = append(s.sent, email)
	return fmt.Sprintf("msg-%d", len(s.sent)), nil
}

type stubTrail struct {
	entries []activity.Entry
}

func (s *stubTrail) RecordTx(ctx context.Context, tx *gorm.DB, entry activity.Entry) error {
	s.entries = append(s.entries, entry)
	return nil
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type newsletterFixture struct {
	repo   *stubNewsletterRepo
	orgs   *stubOrgReader
	events *stubEventReader
	mailer *stubMailer
	trail  *stubTrail
}

func newFixture() *newsletterFixture {
	return &newsletterFixture{
		repo:   &stubNewsletterRepo{},
		orgs:   &stubOrgReader{},
		events: &stubEventReader{},
		mailer: &stubMailer{failFor: map[string]bool{}},
		trail:  &stubTrail{},
	}
}

func (f *newsletterFixture) build(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		NewsletterRepo:    f.repo,
		OrgRepo:           f.orgs,
		EventRepo:         f.events,
		Mailer:            f.mailer,
		Activity:          f.trail,
		TransactionRunner: stubTx{},
		Logger:            logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard}),
		FromEmail:         "onboarding@resend.dev",
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func ownedOrg(ownerID uuid.UUID) *models.Organization {
	return &models.Organization{
		ID:      uuid.New(),
		Name:    "Trail Runners",
		Slug:    "trail-runners",
		OwnerID: ownerID,
	}
}

func TestSendDeliversToDedupedMembers(t *testing.T) {
	f := newFixture()
	ownerID := uuid.New()
	org := ownedOrg(ownerID)
	f.orgs.org = org
	f.repo.members = []string{"a@example.com", "B@Example.com", "b@example.com"}
	svc := f.build(t)

	result, err := svc.Send(context.Background(), ownerID, org.ID, NewsletterInput{
		Subject: "Race day",
		Body:    "<p>See you Saturday.</p>",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if result.Recipients != 2 {
		t.Fatalf("recipients = %d, want 2", result.Recipients)
	}
	if len(f.mailer.sent) != 2 {
		t.Fatalf("sent %d emails, want 2", len(f.mailer.sent))
	}
	if f.mailer.sent[0].From != "Trail Runners <onboarding@resend.dev>" {
		t.Fatalf("unexpected from %q", f.mailer.sent[0].From)
	}
	if f.repo.inserted == nil || f.repo.inserted.RecipientCount != 2 {
		t.Fatalf("unexpected newsletter row %+v", f.repo.inserted)
	}
	if f.repo.inserted.ProviderID == nil || *f.repo.inserted.ProviderID != "msg-1" {
		t.Fatalf("expected first provider id, got %v", f.repo.inserted.ProviderID)
	}
	if len(f.trail.entries) != 1 || f.trail.entries[0].Type != enums.ActivityNewsletterSent {
		t.Fatalf("expected newsletter activity, got %+v", f.trail.entries)
	}
}

func TestSendRequiresOwner(t *testing.T) {
	f := newFixture()
	f.orgs.org = ownedOrg(uuid.New())
	svc := f.build(t)

	_, err := svc.Send(context.Background(), uuid.New(), f.orgs.org.ID, NewsletterInput{
		Subject: "Race day",
		Body:    "body",
	})
	if !pkgerrors.Is(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestSendCollectsPartialFailures(t *testing.T) {
	f := newFixture()
	ownerID := uuid.New()
	org := ownedOrg(ownerID)
	f.orgs.org = org
	f.repo.members = []string{"ok@example.com", "bad@example.com"}
	f.mailer.failFor["bad@example.com"] = true
	svc := f.build(t)

	result, err := svc.Send(context.Background(), ownerID, org.ID, NewsletterInput{
		Subject: "Race day",
		Body:    "body",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if result.Recipients != 1 {
		t.Fatalf("recipients = %d, want 1", result.Recipients)
	}
	if len(result.Failed) != 1 || result.Failed[0] != "bad@example.com" {
		t.Fatalf("unexpected failures %v", result.Failed)
	}
}

func TestSendFailsWhenAllRejected(t *testing.T) {
	f := newFixture()
	ownerID := uuid.New()
	org := ownedOrg(ownerID)
	f.orgs.org = org
	f.repo.members = []string{"bad@example.com"}
	f.mailer.failFor["bad@example.com"] = true
	svc := f.build(t)

	_, err := svc.Send(context.Background(), ownerID, org.ID, NewsletterInput{
		Subject: "Race day",
		Body:    "body",
	})
	if !pkgerrors.Is(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if f.repo.inserted != nil {
		t.Fatal("expected no newsletter row")
	}
}

func TestSendEventAudienceUsesRegistrants(t *testing.T) {
	f := newFixture()
	ownerID := uuid.New()
	org := ownedOrg(ownerID)
	f.orgs.org = org
	eventID := uuid.New()
	f.events.event = &models.Event{ID: eventID, OrganizationID: org.ID, Title: "Summit Hike"}
	f.repo.members = []string{"member@example.com"}
	f.repo.registrants = []string{"runner@example.com"}
	svc := f.build(t)

	result, err := svc.Send(context.Background(), ownerID, org.ID, NewsletterInput{
		Subject: "Race day",
		Body:    "body",
		EventID: &eventID,
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if result.Recipients != 1 || f.mailer.sent[0].To != "runner@example.com" {
		t.Fatalf("expected registrant audience, got %+v", f.mailer.sent)
	}
}

func TestSendRejectsForeignEvent(t *testing.T) {
	f := newFixture()
	ownerID := uuid.New()
	org := ownedOrg(ownerID)
	f.orgs.org = org
	eventID := uuid.New()
	f.events.event = &models.Event{ID: eventID, OrganizationID: uuid.New()}
	svc := f.build(t)

	_, err := svc.Send(context.Background(), ownerID, org.ID, NewsletterInput{
		Subject: "Race day",
		Body:    "body",
		EventID: &eventID,
	})
	if !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSendWithoutRecipients(t *testing.T) {
	f := newFixture()
	ownerID := uuid.New()
	org := ownedOrg(ownerID)
	f.orgs.org = org
	svc := f.build(t)

	_, err := svc.Send(context.Background(), ownerID, org.ID, NewsletterInput{
		Subject: "Race day",
		Body:    "body",
	})
	if !pkgerrors.Is(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}
