package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ObligationStatus string

const (
	ObligationStatusPending ObligationStatus = "PENDING"
	ObligationStatusPaid    ObligationStatus = "PAID"
	ObligationStatusOverdue ObligationStatus = "OVERDUE"
)

func (s ObligationStatus) Valid() bool {
	return s == ObligationStatusPending || s == ObligationStatusPaid || s == ObligationStatusOverdue
}

// CanAdvanceTo reports whether next is a forward move. Anything else needs
// an administrative override.
func (s ObligationStatus) CanAdvanceTo(next ObligationStatus) bool {
	switch s {
	case ObligationStatusPending:
		return next == ObligationStatusPaid || next == ObligationStatusOverdue
	case ObligationStatusOverdue:
		return next == ObligationStatusPaid
	}
	return false
}

type ObligationKind string

const (
	ObligationKindRent        ObligationKind = "RENT"
	ObligationKindDeposit     ObligationKind = "DEPOSIT"
	ObligationKindMaintenance ObligationKind = "MAINTENANCE"
)

func (k ObligationKind) Valid() bool {
	return k == ObligationKindRent || k == ObligationKindDeposit || k == ObligationKindMaintenance
}

type SettlementMethod string

const (
	SettlementMethodStripe SettlementMethod = "STRIPE"
	SettlementMethodEsewa  SettlementMethod = "ESEWA"
	SettlementMethodKhalti SettlementMethod = "KHALTI"
	SettlementMethodCash   SettlementMethod = "CASH"
	SettlementMethodOther  SettlementMethod = "OTHER"
)

// Obligation is one billable charge tied to a tenancy.
type Obligation struct {
	ID          uuid.UUID         `json:"id"`
	TenancyID   uuid.UUID         `json:"tenancy_id"`
	Kind        ObligationKind    `json:"kind"`
	Amount      decimal.Decimal   `json:"amount"`
	DueDate     time.Time         `json:"due_date"`
	PaidDate    *time.Time        `json:"paid_date,omitempty"`
	Status      ObligationStatus  `json:"status"`
	Method      *SettlementMethod `json:"method,omitempty"`
	ExternalRef *string           `json:"external_ref,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// NormalizeOverdue applies the derived Overdue state for the civil date
// today. It returns true when the status changed.
func (o *Obligation) NormalizeOverdue(today time.Time) bool {
	if o.Status == ObligationStatusPending && o.DueDate.Before(today) {
		o.Status = ObligationStatusOverdue
		return true
	}
	return false
}

func (o *Obligation) IsPaid() bool { return o.Status == ObligationStatusPaid }

// Payment describes how an obligation was settled.
type Payment struct {
	Method      SettlementMethod
	ExternalRef string
	Amount      decimal.Decimal
	PaidDate    time.Time
}
