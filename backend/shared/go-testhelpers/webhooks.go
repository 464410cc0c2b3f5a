package testhelpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeIntentSucceededPayload builds a payment_intent.succeeded event for
// obligationID with amount in minor units.
func StripeIntentSucceededPayload(obligationID uuid.UUID, amountMinor int64) []byte {
	event := map[string]any{
		"id":          "evt_test_" + uuid.NewString()[:8],
		"object":      "event",
		"api_version": stripe.APIVersion,
		"created":     time.Now().Unix(),
		"type":        "payment_intent.succeeded",
		"data": map[string]any{
			"object": map[string]any{
				"id":              "pi_test_" + uuid.NewString()[:8],
				"object":          "payment_intent",
				"status":          "succeeded",
				"amount":          amountMinor,
				"amount_received": amountMinor,
				"currency":        "npr",
				"metadata": map[string]string{
					"obligation_id": obligationID.String(),
				},
			},
		},
	}
	b, _ := json.Marshal(event)
	return b
}

// SignStripePayload returns the Stripe-Signature header value for payload.
func (h *TestHelper) SignStripePayload(payload []byte) string {
	require.NotEmpty(h.T, h.StripeWebhookSecret, "StripeWebhookSecret is not configured in TestHelper")
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    h.StripeWebhookSecret,
		Timestamp: time.Now(),
	})
	return signed.Header
}

// PostStripeWebhook signs and posts payload, returning the status code.
func (h *TestHelper) PostStripeWebhook(webhookURL string, payload []byte) int {
	req, err := http.NewRequest(http.MethodPost, webhookURL, strings.NewReader(string(payload)))
	require.NoError(h.T, err, "failed to create webhook POST request")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", h.SignStripePayload(payload))

	resp, err := http.DefaultClient.Do(req)
	require.NoError(h.T, err, "failed to POST webhook payload")
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		h.T.Logf("Webhook POST status=%d body=%s", resp.StatusCode, h.ReadBody(resp))
	}
	return resp.StatusCode
}

// EsewaFields is the decoded form of an eSewa success callback.
func EsewaFields(obligationID uuid.UUID, amount string) map[string]any {
	return map[string]any{
		"transaction_code":   fmt.Sprintf("TXN%d", time.Now().UnixNano()%1e6),
		"status":             "COMPLETE",
		"total_amount":       amount,
		"transaction_uuid":   obligationID.String(),
		"product_code":       "EPAYTEST",
		"signed_field_names": "transaction_code,status,total_amount,transaction_uuid,product_code,signed_field_names",
	}
}
