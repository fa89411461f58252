package newsletters

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// Email is one outbound message to a single recipient.
type Email struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Mailer delivers a single email and returns the provider's message id.
type Mailer interface {
	Send(ctx context.Context, email Email) (string, error)
}

type resendMailer struct {
	client *resend.Client
}

// NewResendMailer builds a Mailer backed by the Resend API.
func NewResendMailer(apiKey string) Mailer {
	return &resendMailer{client: resend.NewClient(apiKey)}
}

func (m *resendMailer) Send(ctx context.Context, email Email) (string, error) {
	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    email.From,
		To:      []string{email.To},
		Subject: email.Subject,
		Html:    email.HTML,
	})
	if err != nil {
		return "", fmt.Errorf("send email: %w", err)
	}
	return sent.Id, nil
}
