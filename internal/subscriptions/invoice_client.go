package subscriptions

import (
	"context"
	"fmt"
	"strings"

	xendit "github.com/xendit/xendit-go/v6"
	"github.com/xendit/xendit-go/v6/invoice"
)

// CreateInvoiceInput carries everything needed to issue one hosted invoice.
type CreateInvoiceInput struct {
	ExternalID         string
	Amount             float64
	Currency           string
	Description        string
	PayerEmail         string
	SuccessRedirectURL string
}

// Invoice is the provider-neutral view of a hosted invoice.
type Invoice struct {
	ID         string
	URL        string
	Status     string
	ExternalID string
}

// InvoiceClient defines the subset of the invoicing gateway that the
// subscription service relies on.
type InvoiceClient interface {
	CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*Invoice, error)
}

// NewXenditInvoiceClient wraps the Xendit SDK behind InvoiceClient.
func NewXenditInvoiceClient(apiKey string) (InvoiceClient, error) {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return nil, fmt.Errorf("xendit api key required")
	}
	return &xenditInvoiceClient{api: xendit.NewClient(key)}, nil
}

type xenditInvoiceClient struct {
	api *xendit.APIClient
}

func (c *xenditInvoiceClient) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*Invoice, error) {
	if strings.TrimSpace(input.ExternalID) == "" {
		return nil, fmt.Errorf("invoice external id required")
	}
	if input.Amount <= 0 {
		return nil, fmt.Errorf("invoice amount must be positive")
	}

	req := invoice.NewCreateInvoiceRequest(input.ExternalID, input.Amount)
	if input.Currency != "" {
		req.SetCurrency(input.Currency)
	}
	if input.Description != "" {
		req.SetDescription(input.Description)
	}
	if input.PayerEmail != "" {
		req.SetPayerEmail(input.PayerEmail)
	}
	if input.SuccessRedirectURL != "" {
		req.SetSuccessRedirectUrl(input.SuccessRedirectURL)
	}
	req.SetReminderTime(1)

	created, _, err := c.api.InvoiceApi.CreateInvoice(ctx).
		CreateInvoiceRequest(*req).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("create xendit invoice: %s", err.Error())
	}
	if created == nil {
		return nil, fmt.Errorf("create xendit invoice: empty response")
	}
	return convertInvoice(created), nil
}

func convertInvoice(inv *invoice.Invoice) *Invoice {
	return &Invoice{
		ID:         inv.GetId(),
		URL:        inv.GetInvoiceUrl(),
		Status:     string(inv.GetStatus()),
		ExternalID: inv.GetExternalId(),
	}
}
