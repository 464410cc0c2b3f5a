package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/dtos"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/services"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/settlement"
	internal_utils "github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/utils"
	shared_dtos "github.com/stayspot/mono-repo/backend/shared/go-dtos"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
)

const (
	stripeSignatureHeader = "Stripe-Signature"
	esewaDataParam        = "data"

	khaltiPidxParam          = "pidx"
	khaltiPurchaseOrderParam = "purchase_order_id"
)

type SettlementController struct {
	settlements *services.SettlementService
}

func NewSettlementController(settlements *services.SettlementService) *SettlementController {
	return &SettlementController{settlements: settlements}
}

// StripeWebhookHandler -> POST /api/v1/settlements/stripe/webhook
func (c *SettlementController) StripeWebhookHandler(w http.ResponseWriter, r *http.Request) {
	sigHeader := r.Header.Get(stripeSignatureHeader)
	if sigHeader == "" {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Missing Stripe-Signature header", nil)
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Failed to read webhook body", nil, err)
		return
	}

	o, already, err := c.settlements.Settle(r.Context(), models.SettlementMethodStripe, settlement.Confirmation{
		Payload:   payload,
		Signature: sigHeader,
	})
	if err != nil {
		// Stripe delivers every subscribed event type here; only successful
		// payment intents settle anything, the rest are acknowledged.
		if errors.Is(err, internal_utils.ErrStatusIncomplete) {
			utils.Logger.WithError(err).Info("Stripe event acknowledged without settlement")
			w.WriteHeader(http.StatusOK)
			return
		}
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.SettlementResponse{
		Obligation:     shared_dtos.NewObligationFromModel(o),
		AlreadySettled: already,
	})
}

// EsewaCallbackHandler -> POST /api/v1/settlements/esewa/callback
//
// eSewa redirects with ?data=<base64>; server-side relays post {"data": ...}.
func (c *SettlementController) EsewaCallbackHandler(w http.ResponseWriter, r *http.Request) {
	data := r.URL.Query().Get(esewaDataParam)
	if data == "" {
		var req dtos.EsewaCallbackRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}
		data = req.Data
	}

	o, already, err := c.settlements.Settle(r.Context(), models.SettlementMethodEsewa, settlement.Confirmation{
		Payload: []byte(data),
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.SettlementResponse{
		Obligation:     shared_dtos.NewObligationFromModel(o),
		AlreadySettled: already,
	})
}

// KhaltiCallbackHandler -> POST /api/v1/settlements/khalti/callback
//
// Khalti redirects with ?pidx=...&purchase_order_id=...; clients may also
// post the same fields as JSON.
func (c *SettlementController) KhaltiCallbackHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := dtos.KhaltiCallbackRequest{
		Pidx:            q.Get(khaltiPidxParam),
		PurchaseOrderID: q.Get(khaltiPurchaseOrderParam),
	}
	if req.Pidx == "" {
		if !decodeAndValidate(w, r, &req) {
			return
		}
	} else if !validateOrRespond(w, &req) {
		return
	}

	payload, err := json.Marshal(settlement.KhaltiCallback{Pidx: req.Pidx, PurchaseOrderID: req.PurchaseOrderID})
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to encode callback", nil, err)
		return
	}
	o, already, err := c.settlements.Settle(r.Context(), models.SettlementMethodKhalti, settlement.Confirmation{
		Payload: payload,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.SettlementResponse{
		Obligation:     shared_dtos.NewObligationFromModel(o),
		AlreadySettled: already,
	})
}
