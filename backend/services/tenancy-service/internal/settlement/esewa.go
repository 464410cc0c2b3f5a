package settlement

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/constants"
	internal_utils "github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/utils"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
)

// EsewaAdapter verifies the base64 JSON blob eSewa appends to its success
// redirect. The signature is an HMAC-SHA256 over "k=v,k=v" for the fields
// listed in signed_field_names, in that order.
type EsewaAdapter struct {
	secretKey []byte
}

func NewEsewaAdapter(secretKey string) *EsewaAdapter {
	return &EsewaAdapter{secretKey: []byte(secretKey)}
}

func (a *EsewaAdapter) Method() models.SettlementMethod { return models.SettlementMethodEsewa }

func (a *EsewaAdapter) Verify(_ context.Context, c Confirmation) (*Result, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(c.Payload)))
	if err != nil {
		return nil, internal_utils.NewValidationError(internal_utils.ReasonInvalidPayload, "data is not base64")
	}
	var fields map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return nil, internal_utils.NewValidationError(internal_utils.ReasonInvalidPayload, "data is not a JSON object")
	}

	if len(a.secretKey) == 0 {
		return nil, internal_utils.NewAdapterError(internal_utils.AdapterSignatureMismatch, errors.New("secret key not configured"))
	}
	expected := EsewaSign(a.secretKey, fields)
	got, _ := fields["signature"].(string)
	if expected == "" || !hmac.Equal([]byte(expected), []byte(got)) {
		return nil, internal_utils.NewAdapterError(internal_utils.AdapterSignatureMismatch, errors.New("esewa signature mismatch"))
	}

	if status := fieldString(fields, "status"); status != constants.EsewaStatusComplete {
		return nil, internal_utils.NewAdapterError(internal_utils.AdapterStatusIncomplete, fmt.Errorf("esewa status %q", status))
	}

	txnUUID := fieldString(fields, "transaction_uuid")
	obligationID, err := parseTransactionUUID(txnUUID)
	if err != nil {
		return nil, internal_utils.NewValidationError(internal_utils.ReasonInvalidPayload, "transaction_uuid %q carries no obligation id", txnUUID)
	}
	amount, err := decimal.NewFromString(fieldString(fields, "total_amount"))
	if err != nil {
		return nil, internal_utils.NewValidationError(internal_utils.ReasonInvalidPayload, "total_amount is not a number")
	}

	ref := fieldString(fields, "ref_id")
	if ref == "" {
		ref = fieldString(fields, "transaction_code")
	}
	if ref == "" {
		ref = txnUUID
	}
	return &Result{
		OK:            true,
		Method:        models.SettlementMethodEsewa,
		ObligationID:  obligationID,
		ExternalTxnID: ref,
		Amount:        amount,
	}, nil
}

// EsewaSign computes the base64 signature for fields. It returns "" when
// signed_field_names is absent.
func EsewaSign(secret []byte, fields map[string]any) string {
	names := fieldString(fields, "signed_field_names")
	if names == "" {
		return ""
	}
	parts := make([]string, 0, 8)
	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(name)
		parts = append(parts, name+"="+fieldString(fields, name))
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(strings.Join(parts, ",")))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// fieldString renders a JSON scalar the way it appeared on the wire.
func fieldString(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// parseTransactionUUID accepts a bare obligation id or one followed by a
// retry suffix ("<uuid>-<n>").
func parseTransactionUUID(s string) (uuid.UUID, error) {
	if id, err := uuid.Parse(s); err == nil {
		return id, nil
	}
	if len(s) > 36 {
		return uuid.Parse(s[:36])
	}
	return uuid.Nil, errors.New("not a uuid")
}
