// go-models/unit.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type UnitStatus string

const (
	UnitStatusPendingVerification UnitStatus = "PENDING_VERIFICATION"
	UnitStatusAvailable           UnitStatus = "AVAILABLE"
	UnitStatusOccupied            UnitStatus = "OCCUPIED"
	UnitStatusRented              UnitStatus = "RENTED"
	UnitStatusDisabled            UnitStatus = "DISABLED"
)

func (s UnitStatus) Valid() bool {
	switch s {
	case UnitStatusPendingVerification, UnitStatusAvailable, UnitStatusOccupied,
		UnitStatusRented, UnitStatusDisabled:
		return true
	}
	return false
}

// Unit is a rentable listing owned by a single owner.
type Unit struct {
	ID           uuid.UUID       `json:"id"`
	OwnerID      uuid.UUID       `json:"owner_id"`
	Title        string          `json:"title"`
	MonthlyPrice decimal.Decimal `json:"monthly_price"`
	Status       UnitStatus      `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Versioned
}

type ModerationAction string

const (
	ModerationApprove ModerationAction = "APPROVE"
	ModerationDisable ModerationAction = "DISABLE"
)

// TargetStatus is the unit status an administrative action leads to.
func (a ModerationAction) TargetStatus() (UnitStatus, bool) {
	switch a {
	case ModerationApprove:
		return UnitStatusAvailable, true
	case ModerationDisable:
		return UnitStatusDisabled, true
	}
	return "", false
}

// AppliesTo reports whether the action may move a unit out of from. Approve
// only releases units awaiting review or disabled; an Occupied or Rented
// unit is held by a tenancy and must be released by that tenancy.
func (a ModerationAction) AppliesTo(from UnitStatus) bool {
	switch a {
	case ModerationApprove:
		return from == UnitStatusPendingVerification || from == UnitStatusDisabled
	case ModerationDisable:
		return true
	}
	return false
}

// UnitFilter selects a subset of units. Nil fields match everything.
type UnitFilter struct {
	Status  *UnitStatus
	OwnerID *uuid.UUID
}

// PendingVerification is the moderation queue.
func PendingVerification() UnitFilter {
	s := UnitStatusPendingVerification
	return UnitFilter{Status: &s}
}

func (f UnitFilter) Matches(u *Unit) bool {
	if f.Status != nil && u.Status != *f.Status {
		return false
	}
	if f.OwnerID != nil && u.OwnerID != *f.OwnerID {
		return false
	}
	return true
}
