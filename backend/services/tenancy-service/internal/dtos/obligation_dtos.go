package dtos

import (
	shared_dtos "github.com/stayspot/mono-repo/backend/shared/go-dtos"
)

type CreateChargeRequest struct {
	Kind    string `json:"kind" validate:"required,oneof=DEPOSIT MAINTENANCE"`
	Amount  string `json:"amount" validate:"required,numeric"`
	DueDate string `json:"due_date" validate:"required,datetime=2006-01-02"`
}

type OverrideObligationRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING PAID OVERDUE"`
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

type EsewaCallbackRequest struct {
	Data string `json:"data" validate:"required,base64"`
}

// KhaltiCallbackRequest mirrors the query Khalti appends to return_url.
type KhaltiCallbackRequest struct {
	Pidx            string `json:"pidx" validate:"required"`
	PurchaseOrderID string `json:"purchase_order_id" validate:"required,uuid"`
}

type SettlementResponse struct {
	Obligation     shared_dtos.Obligation `json:"obligation"`
	AlreadySettled bool                   `json:"already_settled"`
}

type BillingRunResponse struct {
	Created int `json:"created"`
}

type ReminderRunResponse struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
}
