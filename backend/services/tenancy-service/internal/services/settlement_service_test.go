package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/settlement"
	internal_utils "github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/utils"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
	"github.com/stayspot/mono-repo/backend/shared/go-testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func depositFor(t *testing.T, f *fixture, ten *models.Tenancy) *models.Obligation {
	t.Helper()
	list, err := f.h.Store.Obligations.ListByTenancy(f.ctx, ten.ID)
	require.NoError(t, err)
	for _, o := range list {
		if o.Kind == models.ObligationKindDeposit {
			return o
		}
	}
	t.Fatalf("tenancy %s has no deposit", ten.ID)
	return nil
}

func TestSettlementReplayCreditsOnce(t *testing.T) {
	f := newFixture(t)
	u := f.availableUnit()
	ten := f.request(t, u, "2024-03-01", nil, ptr("5000"))
	dep := depositFor(t, f, ten)
	conf := f.stripeConfirmation(dep.ID, 500000)

	first, already, err := f.settlements.Settle(f.ctx, models.SettlementMethodStripe, conf)
	require.NoError(t, err)
	assert.False(t, already)
	assert.Equal(t, models.ObligationStatusPaid, first.Status)
	require.NotNil(t, first.Method)
	assert.Equal(t, models.SettlementMethodStripe, *first.Method)
	require.NotNil(t, first.PaidDate)
	assert.Equal(t, date(2024, 2, 5), *first.PaidDate)

	// Settlement composes with the state machine.
	assert.Equal(t, models.TenancyStatusConfirmed, f.h.MustGetTenancy(ten.ID).Status)
	assert.Equal(t, models.UnitStatusRented, f.h.MustGetUnit(u.ID).Status)
	f.h.AssertUnitPairing()
	require.Len(t, f.inboxOfType(t, f.owner.ID, models.NotificationPaymentReceived), 1)
	assert.Len(t, f.inboxOfType(t, f.renter.ID, models.NotificationBookingConfirmed), 1)

	second, already, err := f.settlements.Settle(f.ctx, models.SettlementMethodStripe, conf)
	require.NoError(t, err)
	assert.True(t, already)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, *first.PaidDate, *second.PaidDate)
	assert.Equal(t, *first.ExternalRef, *second.ExternalRef)

	assert.Len(t, f.inboxOfType(t, f.owner.ID, models.NotificationPaymentReceived), 1, "replay must not notify again")
	assert.Len(t, f.inboxOfType(t, f.renter.ID, models.NotificationBookingConfirmed), 1)
}

func TestSettlementSignatureMismatchRaisesAlert(t *testing.T) {
	f := newFixture(t)
	u := f.availableUnit()
	ten := f.request(t, u, "2024-03-01", nil, ptr("5000"))
	dep := depositFor(t, f, ten)

	conf := f.stripeConfirmation(dep.ID, 500000)
	conf.Signature = "t=1700000000,v1=deadbeef"
	_, _, err := f.settlements.Settle(f.ctx, models.SettlementMethodStripe, conf)
	assert.ErrorIs(t, err, internal_utils.ErrSignatureMismatch)

	require.Len(t, f.emails, 1)
	assert.Contains(t, f.emails[0].Subject, "STRIPE")
	require.Len(t, f.texts, 1)
	assert.Equal(t, models.ObligationStatusPending, f.h.MustGetObligation(dep.ID).Status)
	assert.Equal(t, models.TenancyStatusPending, f.h.MustGetTenancy(ten.ID).Status)
}

func TestSettlementAmountMismatch(t *testing.T) {
	f := newFixture(t)
	u := f.availableUnit()
	ten := f.request(t, u, "2024-03-01", nil, ptr("5000"))
	dep := depositFor(t, f, ten)

	_, _, err := f.settlements.Settle(f.ctx, models.SettlementMethodStripe, f.stripeConfirmation(dep.ID, 100))
	assert.ErrorIs(t, err, internal_utils.ErrAmountMismatch)
	assert.Equal(t, models.ObligationStatusPending, f.h.MustGetObligation(dep.ID).Status)
	assert.Empty(t, f.emails)
}

func TestSettlementLeavesTenancyWhenUnitTaken(t *testing.T) {
	f := newFixture(t)
	u := f.availableUnit()
	a := f.request(t, u, "2024-03-01", nil, ptr("5000"))

	other := testhelpers.NewActor(models.RoleTenant)
	f.renter, other = other, f.renter
	b := f.request(t, u, "2024-03-01", nil, nil)
	f.renter = other

	_, err := f.lifecycle.Transition(f.ctx, b.ID, models.TenancyStatusConfirmed, f.owner)
	require.NoError(t, err)

	paid, already, err := f.settlements.Settle(f.ctx, models.SettlementMethodStripe, f.stripeConfirmation(depositFor(t, f, a).ID, 500000))
	require.NoError(t, err)
	assert.False(t, already)
	assert.Equal(t, models.ObligationStatusPaid, paid.Status)
	assert.Equal(t, models.TenancyStatusPending, f.h.MustGetTenancy(a.ID).Status)
	assert.Equal(t, models.UnitStatusOccupied, f.h.MustGetUnit(u.ID).Status)
	f.h.AssertUnitPairing()
}

func TestSettlementViaEsewa(t *testing.T) {
	f := newFixture(t)
	_, ten := f.activeTenancy(date(2024, 1, 10), nil)
	rent := f.h.CreateTestObligation(ten, models.ObligationKindRent, 10000, date(2024, 2, 10))

	paid, already, err := f.settlements.Settle(f.ctx, models.SettlementMethodEsewa, f.esewaConfirmation(t, rent.ID, "10000.0"))
	require.NoError(t, err)
	assert.False(t, already)
	assert.Equal(t, models.ObligationStatusPaid, paid.Status)
	assert.Equal(t, models.SettlementMethodEsewa, *paid.Method)
	assert.Equal(t, models.TenancyStatusActive, f.h.MustGetTenancy(ten.ID).Status)
}

func TestSettlementUnknownObligationAndMethod(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.settlements.Settle(f.ctx, models.SettlementMethodStripe, f.stripeConfirmation(uuid.New(), 100))
	var nf *internal_utils.NotFoundError
	assert.True(t, errors.As(err, &nf))

	_, _, err = f.settlements.Settle(f.ctx, models.SettlementMethodCash, settlement.Confirmation{})
	assert.ErrorIs(t, err, internal_utils.ErrInvalidPayload)
}
