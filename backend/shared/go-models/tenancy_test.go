package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTerminalStatusesAreSinks(t *testing.T) {
	all := []TenancyStatus{
		TenancyStatusPending, TenancyStatusConfirmed, TenancyStatusRejected,
		TenancyStatusActive, TenancyStatusCompleted, TenancyStatusCancelled,
	}
	for _, from := range []TenancyStatus{TenancyStatusRejected, TenancyStatusCompleted, TenancyStatusCancelled} {
		assert.True(t, from.IsTerminal())
		for _, to := range all {
			assert.False(t, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestTransitionTable(t *testing.T) {
	assert.True(t, TenancyStatusPending.CanTransitionTo(TenancyStatusConfirmed))
	assert.True(t, TenancyStatusPending.CanTransitionTo(TenancyStatusCancelled))
	assert.False(t, TenancyStatusPending.CanTransitionTo(TenancyStatusActive))
	assert.False(t, TenancyStatusPending.CanTransitionTo(TenancyStatusCompleted))
	assert.False(t, TenancyStatusConfirmed.CanTransitionTo(TenancyStatusConfirmed))
	assert.False(t, TenancyStatusConfirmed.CanTransitionTo(TenancyStatusRejected))
	assert.True(t, TenancyStatusConfirmed.CanTransitionTo(TenancyStatusActive))
	assert.True(t, TenancyStatusActive.CanTransitionTo(TenancyStatusCompleted))
}

func TestPairedUnitStatus(t *testing.T) {
	s, ok := PairedUnitStatus(TenancyStatusPending, TenancyStatusConfirmed, UnitStatusAvailable)
	assert.True(t, ok)
	assert.Equal(t, UnitStatusOccupied, s)

	s, ok = PairedUnitStatus(TenancyStatusConfirmed, TenancyStatusActive, UnitStatusOccupied)
	assert.True(t, ok)
	assert.Equal(t, UnitStatusRented, s)

	s, ok = PairedUnitStatus(TenancyStatusActive, TenancyStatusCancelled, UnitStatusRented)
	assert.True(t, ok)
	assert.Equal(t, UnitStatusAvailable, s)

	// Disabled wins over every release path.
	s, ok = PairedUnitStatus(TenancyStatusActive, TenancyStatusCompleted, UnitStatusDisabled)
	assert.False(t, ok)
	assert.Equal(t, UnitStatusDisabled, s)

	// A pending request never held the unit, so cancelling it must not
	// release a unit occupied by someone else.
	s, ok = PairedUnitStatus(TenancyStatusPending, TenancyStatusCancelled, UnitStatusOccupied)
	assert.False(t, ok)
	assert.Equal(t, UnitStatusOccupied, s)

	_, ok = PairedUnitStatus(TenancyStatusPending, TenancyStatusRejected, UnitStatusAvailable)
	assert.False(t, ok)
}

func TestUnitFilter(t *testing.T) {
	u := &Unit{Status: UnitStatusPendingVerification}
	assert.True(t, PendingVerification().Matches(u))
	u.Status = UnitStatusAvailable
	assert.False(t, PendingVerification().Matches(u))
	assert.True(t, UnitFilter{}.Matches(u))
}
