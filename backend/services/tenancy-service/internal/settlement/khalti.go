package settlement

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/constants"
	internal_utils "github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/utils"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
)

// KhaltiCallback is the part of Khalti's return redirect we rely on. Only
// pidx is trusted after lookup; purchase_order_id is the obligation id we
// sent when the payment was initiated.
type KhaltiCallback struct {
	Pidx            string `json:"pidx"`
	PurchaseOrderID string `json:"purchase_order_id"`
}

type khaltiLookupResponse struct {
	Pidx          string `json:"pidx"`
	TotalAmount   int64  `json:"total_amount"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
	Refunded      bool   `json:"refunded"`
}

// KhaltiAdapter re-reads a payment from Khalti's lookup endpoint with the
// merchant secret key. The callback itself is unsigned, so nothing is
// credited that the lookup does not report as Completed.
type KhaltiAdapter struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

func NewKhaltiAdapter(secretKey, baseURL string, httpClient *http.Client, timeout time.Duration) *KhaltiAdapter {
	if baseURL == "" {
		baseURL = constants.DefaultKhaltiBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = constants.DefaultSettlementTimeout
	}
	return &KhaltiAdapter{
		secretKey:  secretKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		timeout:    timeout,
	}
}

func (a *KhaltiAdapter) Method() models.SettlementMethod { return models.SettlementMethodKhalti }

func (a *KhaltiAdapter) Verify(ctx context.Context, c Confirmation) (*Result, error) {
	var cb KhaltiCallback
	if err := json.Unmarshal(c.Payload, &cb); err != nil {
		return nil, internal_utils.NewValidationError(internal_utils.ReasonInvalidPayload, "callback is not a JSON object")
	}
	if cb.Pidx == "" {
		return nil, internal_utils.NewValidationError(internal_utils.ReasonInvalidPayload, "pidx is required")
	}
	obligationID, err := parseTransactionUUID(cb.PurchaseOrderID)
	if err != nil {
		return nil, internal_utils.NewValidationError(internal_utils.ReasonInvalidPayload,
			"purchase_order_id %q carries no obligation id", cb.PurchaseOrderID)
	}
	if a.secretKey == "" {
		return nil, internal_utils.NewAdapterError(internal_utils.AdapterSignatureMismatch, errors.New("secret key not configured"))
	}

	lookup, err := a.lookup(ctx, cb.Pidx)
	if err != nil {
		return nil, err
	}
	if lookup.Status != constants.KhaltiStatusCompleted || lookup.Refunded {
		return nil, internal_utils.NewAdapterError(internal_utils.AdapterStatusIncomplete,
			fmt.Errorf("khalti payment %s is %s", cb.Pidx, lookup.Status))
	}

	ref := lookup.TransactionID
	if ref == "" {
		ref = cb.Pidx
	}
	return &Result{
		OK:            true,
		Method:        models.SettlementMethodKhalti,
		ObligationID:  obligationID,
		ExternalTxnID: ref,
		Amount:        decimal.New(lookup.TotalAmount, -2),
	}, nil
}

// lookup POSTs {"pidx": ...} to the lookup endpoint. Khalti answers an
// unknown pidx or a bad key with 4xx, which is treated as unverifiable.
func (a *KhaltiAdapter) lookup(ctx context.Context, pidx string) (*khaltiLookupResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	body, err := json.Marshal(map[string]string{"pidx": pidx})
	if err != nil {
		return nil, fmt.Errorf("marshal khalti lookup: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+constants.KhaltiLookupPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build khalti lookup: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Key "+a.secretKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, internal_utils.NewAdapterError(internal_utils.AdapterNetworkError, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, internal_utils.NewAdapterError(internal_utils.AdapterNetworkError, err)
	}
	switch {
	case resp.StatusCode >= 500:
		return nil, internal_utils.NewAdapterError(internal_utils.AdapterNetworkError,
			fmt.Errorf("khalti lookup status %d: %s", resp.StatusCode, raw))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, internal_utils.NewAdapterError(internal_utils.AdapterSignatureMismatch,
			fmt.Errorf("khalti lookup status %d: %s", resp.StatusCode, raw))
	}

	var out khaltiLookupResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, internal_utils.NewAdapterError(internal_utils.AdapterNetworkError,
			fmt.Errorf("decode khalti lookup: %w", err))
	}
	if out.Pidx != "" && out.Pidx != pidx {
		return nil, internal_utils.NewAdapterError(internal_utils.AdapterSignatureMismatch,
			fmt.Errorf("khalti lookup answered for %s, asked for %s", out.Pidx, pidx))
	}
	return &out, nil
}

// KhaltiConfirmation packs a callback into the Confirmation Verify expects.
func KhaltiConfirmation(pidx string, obligationID uuid.UUID) Confirmation {
	b, _ := json.Marshal(KhaltiCallback{Pidx: pidx, PurchaseOrderID: obligationID.String()})
	return Confirmation{Payload: b}
}
