package settlement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/constants"
	internal_utils "github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/utils"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// IntentFetcher re-reads a PaymentIntent from the Stripe API.
type IntentFetcher func(ctx context.Context, id string) (*stripe.PaymentIntent, error)

// StripeAdapter verifies `payment_intent.succeeded` webhooks. When a fetcher
// is configured the intent is re-read from the API under timeout, and a
// timeout surfaces as a network error.
type StripeAdapter struct {
	webhookSecret string
	fetch         IntentFetcher
	timeout       time.Duration
}

func NewStripeAdapter(webhookSecret string, fetch IntentFetcher, timeout time.Duration) *StripeAdapter {
	if timeout <= 0 {
		timeout = constants.DefaultSettlementTimeout
	}
	return &StripeAdapter{webhookSecret: webhookSecret, fetch: fetch, timeout: timeout}
}

// NewStripeIntentFetcher binds an IntentFetcher to a Stripe API client.
func NewStripeIntentFetcher(sc *stripe.Client) IntentFetcher {
	return func(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
		return sc.V1PaymentIntents.Retrieve(ctx, id, nil)
	}
}

func (a *StripeAdapter) Method() models.SettlementMethod { return models.SettlementMethodStripe }

func (a *StripeAdapter) Verify(ctx context.Context, c Confirmation) (*Result, error) {
	if a.webhookSecret == "" {
		return nil, internal_utils.NewAdapterError(internal_utils.AdapterSignatureMismatch, errors.New("webhook secret not configured"))
	}
	event, err := webhook.ConstructEventWithOptions(c.Payload, c.Signature, a.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, internal_utils.NewAdapterError(internal_utils.AdapterSignatureMismatch, err)
	}
	if string(event.Type) != constants.StripeEventPaymentIntentSucceeded {
		return nil, internal_utils.NewAdapterError(internal_utils.AdapterStatusIncomplete,
			fmt.Errorf("event type %s", event.Type))
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, internal_utils.NewAdapterError(internal_utils.AdapterStatusIncomplete,
			fmt.Errorf("decode payment intent: %w", err))
	}

	if a.fetch != nil {
		fctx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()
		fresh, err := a.fetch(fctx, pi.ID)
		if err != nil {
			return nil, internal_utils.NewAdapterError(internal_utils.AdapterNetworkError, err)
		}
		pi = *fresh
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, internal_utils.NewAdapterError(internal_utils.AdapterStatusIncomplete,
			fmt.Errorf("payment intent %s is %s", pi.ID, pi.Status))
	}

	obligationID, err := uuid.Parse(pi.Metadata[constants.StripeMetadataObligationIDKey])
	if err != nil {
		return nil, internal_utils.NewValidationError(internal_utils.ReasonInvalidPayload,
			"payment intent %s carries no obligation id", pi.ID)
	}

	received := pi.AmountReceived
	if received == 0 {
		received = pi.Amount
	}
	return &Result{
		OK:            true,
		Method:        models.SettlementMethodStripe,
		ObligationID:  obligationID,
		ExternalTxnID: pi.ID,
		Amount:        decimal.New(received, -2),
	}, nil
}
