package newsletters

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

type newsletterRepository interface {
	InsertTx(tx *gorm.DB, newsletter *models.Newsletter) error
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Newsletter, error)
	MemberEmails(ctx context.Context, orgID uuid.UUID) ([]string, error)
	RegistrantEmails(ctx context.Context, eventID uuid.UUID) ([]string, error)
}

type orgReader interface {
	Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error)
}

type eventReader interface {
	Get(ctx context.Context, eventID uuid.UUID) (*models.Event, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// NewsletterInput carries one email blast. When EventID is set the
// audience is the event's confirmed registrants instead of the whole
// member roster.
type NewsletterInput struct {
	Subject string
	Body    string
	EventID *uuid.UUID
}

// SendResult reports how a blast went. Failed lists addresses the
// provider rejected; partial failure is not an error.
type SendResult struct {
	NewsletterID uuid.UUID `json:"newsletterId"`
	Recipients   int       `json:"recipients"`
	Failed       []string  `json:"failed,omitempty"`
}

// Service sends newsletters to organization audiences.
type Service interface {
	Send(ctx context.Context, actorID, orgID uuid.UUID, input NewsletterInput) (*SendResult, error)
	List(ctx context.Context, orgID uuid.UUID) ([]models.Newsletter, error)
}

// ServiceParams groups dependencies for the newsletter service.
type ServiceParams struct {
	NewsletterRepo    newsletterRepository
	OrgRepo           orgReader
	EventRepo         eventReader
	Mailer            Mailer
	Activity          activity.Sink
	TransactionRunner txRunner
	Logger            *logger.Logger
	FromEmail         string
}

type service struct {
	newsletters newsletterRepository
	orgs        orgReader
	events      eventReader
	mailer      Mailer
	trail       activity.Sink
	txRunner    txRunner
	logg        *logger.Logger
	fromEmail   string
}

// NewService builds the newsletter service.
func NewService(params ServiceParams) (Service, error) {
	if params.NewsletterRepo == nil {
		return nil, fmt.Errorf("newsletter repo required")
	}
	if params.OrgRepo == nil {
		return nil, fmt.Errorf("organization repo required")
	}
	if params.EventRepo == nil {
		return nil, fmt.Errorf("event repo required")
	}
	if params.Mailer == nil {
		return nil, fmt.Errorf("mailer required")
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
	fromEmail := strings.TrimSpace(params.FromEmail)
	if fromEmail == "" {
		return nil, fmt.Errorf("from email required")
	}
	return &service{
		newsletters: params.NewsletterRepo,
		orgs:        params.OrgRepo,
		events:      params.EventRepo,
		mailer:      params.Mailer,
		trail:       params.Activity,
		txRunner:    params.TransactionRunner,
		logg:        params.Logger,
		fromEmail:   fromEmail,
	}, nil
}

// Send delivers the newsletter to every recipient individually so
// addresses never leak between members. Provider rejections for single
// recipients are collected, not fatal.
func (s *service) Send(ctx context.Context, actorID, orgID uuid.UUID, input NewsletterInput) (*SendResult, error) {
	input.Subject = strings.TrimSpace(input.Subject)
	input.Body = strings.TrimSpace(input.Body)
	if input.Subject == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject is required")
	}
	if input.Body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "body is required")
	}

	org, err := s.orgs.Get(ctx, orgID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load organization")
	}
	if org == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
	}
	if org.OwnerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the organization owner can send newsletters")
	}

	recipients, err := s.resolveAudience(ctx, orgID, input.EventID)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no recipients for this newsletter")
	}

	from := fmt.Sprintf("%s <%s>", org.Name, s.fromEmail)
	var (
		providerID string
		failed     []string
	)
	sent := 0
	for _, recipient := range recipients {
		id, err := s.mailer.Send(ctx, Email{
			From:    from,
			To:      recipient,
			Subject: input.Subject,
			HTML:    input.Body,
		})
		if err != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{"recipient": recipient})
			s.logg.Warn(logCtx, "newsletter delivery failed for recipient")
			failed = append(failed, recipient)
			continue
		}
		if providerID == "" {
			providerID = id
		}
		sent++
	}
	if sent == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "newsletter delivery failed for all recipients")
	}

	now := time.Now().UTC()
	newsletter := &models.Newsletter{
		OrganizationID: orgID,
		SenderID:       actorID,
		Subject:        input.Subject,
		Body:           input.Body,
		RecipientCount: sent,
		SentAt:         &now,
	}
	if providerID != "" {
		newsletter.ProviderID = &providerID
	}
	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.newsletters.InsertTx(tx, newsletter); err != nil {
			return err
		}
		newsletterID := newsletter.ID
		if err := s.trail.RecordTx(ctx, tx, activity.Entry{
			OrganizationID: orgID,
			ActorID:        actorID,
			Type:           enums.ActivityNewsletterSent,
			Aggregate:      enums.AggregateNewsletter,
			TargetID:       &newsletterID,
			Detail:         map[string]any{"subject": input.Subject, "recipients": sent},
		}); err != nil {
			s.logg.Error(ctx, "failed to record newsletter activity", err)
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store newsletter")
	}

	return &SendResult{
		NewsletterID: newsletter.ID,
		Recipients:   sent,
		Failed:       failed,
	}, nil
}

func (s *service) List(ctx context.Context, orgID uuid.UUID) ([]models.Newsletter, error) {
	return s.newsletters.ListByOrg(ctx, orgID)
}

// resolveAudience picks the recipient list and dedupes by address.
func (s *service) resolveAudience(ctx context.Context, orgID uuid.UUID, eventID *uuid.UUID) ([]string, error) {
	var (
		emails []string
		err    error
	)
	if eventID != nil {
		event, eventErr := s.events.Get(ctx, *eventID)
		if eventErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, eventErr, "load event")
		}
		if event == nil || event.OrganizationID != orgID {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found in this organization")
		}
		emails, err = s.newsletters.RegistrantEmails(ctx, *eventID)
	} else {
		emails, err = s.newsletters.MemberEmails(ctx, orgID)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load recipients")
	}

	seen := make(map[string]struct{}, len(emails))
	recipients := make([]string, 0, len(emails))
	for _, email := range emails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" {
			continue
		}
		if _, ok := seen[email]; ok {
			continue
		}
		seen[email] = struct{}{}
		recipients = append(recipients, email)
	}
	return recipients, nil
}
