package subscriptions

import "github.com/google/uuid"

// OutcomeKind discriminates the possible results of a subscribe call.
type OutcomeKind string

const (
	// OutcomeSubscribed means the tier was applied to the member row.
	OutcomeSubscribed OutcomeKind = "subscribed"
	// OutcomeRequiresConfirmation means the member already holds a
	// different tier and the caller must confirm the switch explicitly.
	OutcomeRequiresConfirmation OutcomeKind = "requires_confirmation"
	// OutcomeRedirectToPayment means an invoice was issued and the caller
	// must complete payment before the tier is applied.
	OutcomeRedirectToPayment OutcomeKind = "redirect_to_payment"
)

// Outcome is the result of Subscribe / ConfirmSubscribe.
type Outcome struct {
	Kind          OutcomeKind `json:"kind"`
	CurrentTierID *uuid.UUID  `json:"currentTierId,omitempty"`
	TargetTierID  *uuid.UUID  `json:"targetTierId,omitempty"`
	InvoiceURL    string      `json:"invoiceUrl,omitempty"`
}

func subscribedOutcome(tierID uuid.UUID) *Outcome {
	return &Outcome{Kind: OutcomeSubscribed, TargetTierID: &tierID}
}

func confirmationOutcome(currentTierID, targetTierID uuid.UUID) *Outcome {
	return &Outcome{
		Kind:          OutcomeRequiresConfirmation,
		CurrentTierID: &currentTierID,
		TargetTierID:  &targetTierID,
	}
}

func redirectOutcome(tierID uuid.UUID, invoiceURL string) *Outcome {
	return &Outcome{
		Kind:         OutcomeRedirectToPayment,
		TargetTierID: &tierID,
		InvoiceURL:   invoiceURL,
	}
}
