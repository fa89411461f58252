package webhooks

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/syncuphq/syncup-backend/api/responses"
	pkgerrors "github.com/syncuphq/syncup-backend/pkg/errors"
	"github.com/syncuphq/syncup-backend/pkg/logger"
)

// PaymentConfirmer settles the payment row behind a paid invoice.
type PaymentConfirmer interface {
	ConfirmPaidSubscription(ctx context.Context, invoiceID string) error
}

type invoiceGuard interface {
	CheckAndMark(ctx context.Context, invoiceID string) (bool, error)
	Delete(ctx context.Context, invoiceID string) error
}

// xenditInvoiceEvent is the subset of Xendit's invoice callback payload we
// act on.
type xenditInvoiceEvent struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
	Status     string `json:"status"`
}

// XenditInvoice handles Xendit invoice callbacks. Only PAID and SETTLED
// invoices reach the confirmer; every other status is acknowledged and
// dropped.
func XenditInvoice(svc PaymentConfirmer, callbackToken string, guard invoiceGuard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if guard == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "idempotency guard unavailable"))
			return
		}

		if !validateCallbackToken(r.Header.Get("x-callback-token"), callbackToken) {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid callback token"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		var event xenditInvoiceEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode invoice event"))
			return
		}
		if strings.TrimSpace(event.ID) == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invoice id missing"))
			return
		}

		status := strings.ToUpper(strings.TrimSpace(event.Status))
		if status != "PAID" && status != "SETTLED" {
			if logg != nil {
				logg.Info(ctx, fmt.Sprintf("xendit invoice %s ignored with status %s", event.ID, status))
			}
			responses.WriteSuccess(w, nil)
			return
		}

		alreadyProcessed, err := guard.CheckAndMark(ctx, event.ID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
			return
		}
		if alreadyProcessed {
			responses.WriteSuccess(w, nil)
			return
		}

		if err := svc.ConfirmPaidSubscription(ctx, event.ID); err != nil {
			_ = guard.Delete(ctx, event.ID)
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(ctx, fmt.Sprintf("xendit invoice %s confirmed", event.ID))
		}
		responses.WriteSuccess(w, nil)
	}
}

func validateCallbackToken(header, expected string) bool {
	if header == "" || expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(header), []byte(expected)) == 1
}
