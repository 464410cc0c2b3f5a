package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TenancyStatus string

const (
	TenancyStatusPending   TenancyStatus = "PENDING"
	TenancyStatusConfirmed TenancyStatus = "CONFIRMED"
	TenancyStatusRejected  TenancyStatus = "REJECTED"
	TenancyStatusActive    TenancyStatus = "ACTIVE"
	TenancyStatusCompleted TenancyStatus = "COMPLETED"
	TenancyStatusCancelled TenancyStatus = "CANCELLED"
)

var tenancyTransitions = map[TenancyStatus][]TenancyStatus{
	TenancyStatusPending:   {TenancyStatusConfirmed, TenancyStatusRejected, TenancyStatusCancelled},
	TenancyStatusConfirmed: {TenancyStatusActive, TenancyStatusCancelled, TenancyStatusCompleted},
	TenancyStatusActive:    {TenancyStatusCompleted, TenancyStatusCancelled},
}

func (s TenancyStatus) Valid() bool {
	switch s {
	case TenancyStatusPending, TenancyStatusConfirmed, TenancyStatusRejected,
		TenancyStatusActive, TenancyStatusCompleted, TenancyStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether s is a sink.
func (s TenancyStatus) IsTerminal() bool {
	return s == TenancyStatusRejected || s == TenancyStatusCompleted || s == TenancyStatusCancelled
}

// IsControlling reports whether a tenancy in s holds its unit.
func (s TenancyStatus) IsControlling() bool {
	return s == TenancyStatusConfirmed || s == TenancyStatusActive
}

func (s TenancyStatus) CanTransitionTo(next TenancyStatus) bool {
	for _, allowed := range tenancyTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PairedUnitStatus returns the unit status that must accompany a tenancy
// moving from `from` to next. ok is false when the unit is left untouched.
// Only a controlling tenancy releases its unit, and a Disabled unit is never
// overwritten.
func PairedUnitStatus(from, next TenancyStatus, current UnitStatus) (status UnitStatus, ok bool) {
	if current == UnitStatusDisabled {
		return current, false
	}
	switch next {
	case TenancyStatusConfirmed:
		status = UnitStatusOccupied
	case TenancyStatusActive:
		status = UnitStatusRented
	case TenancyStatusCancelled, TenancyStatusRejected, TenancyStatusCompleted:
		if !from.IsControlling() {
			return current, false
		}
		status = UnitStatusAvailable
	default:
		return current, false
	}
	return status, status != current
}

// Tenancy binds a renter to a unit for a date range. Dates are civil dates.
type Tenancy struct {
	ID          uuid.UUID       `json:"id"`
	RenterID    uuid.UUID       `json:"renter_id"`
	UnitID      uuid.UUID       `json:"unit_id"`
	Status      TenancyStatus   `json:"status"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     *time.Time      `json:"end_date,omitempty"`
	MonthlyRent decimal.Decimal `json:"monthly_rent"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Versioned
}

// TenancyChange is the outcome of a committed transition.
type TenancyChange struct {
	Tenancy    *Tenancy      `json:"tenancy"`
	Unit       *Unit         `json:"unit"`
	FromStatus TenancyStatus `json:"from_status"`
}
