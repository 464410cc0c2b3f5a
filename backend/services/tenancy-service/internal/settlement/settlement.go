// Package settlement verifies third-party payment confirmations. Adapters
// never touch storage; they only turn an opaque confirmation into a Result
// or a typed ExternalAdapterError.
package settlement

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
)

// Confirmation is the raw callback as received from the provider.
type Confirmation struct {
	Payload   []byte
	Signature string
}

// Result is a verified confirmation.
type Result struct {
	OK            bool                    `json:"ok"`
	Method        models.SettlementMethod `json:"method"`
	ObligationID  uuid.UUID               `json:"obligation_id"`
	ExternalTxnID string                  `json:"external_txn_id"`
	Amount        decimal.Decimal         `json:"amount"`
}

type Adapter interface {
	Method() models.SettlementMethod
	Verify(ctx context.Context, c Confirmation) (*Result, error)
}
