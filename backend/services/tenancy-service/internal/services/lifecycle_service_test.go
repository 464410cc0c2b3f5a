package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/dtos"
	internal_utils "github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/utils"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
	"github.com/stayspot/mono-repo/backend/shared/go-repositories"
	"github.com/stayspot/mono-repo/backend/shared/go-testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTenancyLifecycleKeepsUnitPaired(t *testing.T) {
	f := newFixture(t)
	u := f.availableUnit()
	f.setDate(2024, 1, 5)

	ten := f.request(t, u, "2024-01-10", ptr("2024-06-10"), nil)
	assert.Equal(t, models.TenancyStatusPending, ten.Status)
	assert.True(t, u.MonthlyPrice.Equal(ten.MonthlyRent))
	assert.Equal(t, models.UnitStatusAvailable, f.h.MustGetUnit(u.ID).Status)
	f.h.AssertUnitPairing()

	change, err := f.lifecycle.Transition(f.ctx, ten.ID, models.TenancyStatusConfirmed, f.owner)
	require.NoError(t, err)
	assert.Equal(t, models.TenancyStatusPending, change.FromStatus)
	assert.Equal(t, models.UnitStatusOccupied, change.Unit.Status)
	f.h.AssertUnitPairing()

	// Not yet started: the sweep leaves it alone.
	n, err := f.lifecycle.ActivateStarted(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.setDate(2024, 1, 10)
	n, err = f.lifecycle.ActivateStarted(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, models.TenancyStatusActive, f.h.MustGetTenancy(ten.ID).Status)
	assert.Equal(t, models.UnitStatusRented, f.h.MustGetUnit(u.ID).Status)
	f.h.AssertUnitPairing()

	change, err = f.lifecycle.Transition(f.ctx, ten.ID, models.TenancyStatusCompleted, f.owner)
	require.NoError(t, err)
	assert.Equal(t, models.UnitStatusAvailable, change.Unit.Status)
	f.h.AssertUnitPairing()

	_, err = f.lifecycle.Transition(f.ctx, ten.ID, models.TenancyStatusCancelled, f.owner)
	assert.ErrorIs(t, err, internal_utils.ErrInvalidTransition, "terminal states are sinks")
}

func TestTransitionAuthorization(t *testing.T) {
	stranger := testhelpers.NewActor(models.RoleTenant)
	otherOwner := testhelpers.NewActor(models.RoleOwner)

	cases := []struct {
		name    string
		actor   func(f *fixture) models.Actor
		next    models.TenancyStatus
		wantErr error
	}{
		{"renter cannot confirm", func(f *fixture) models.Actor { return f.renter }, models.TenancyStatusConfirmed, internal_utils.ErrUnauthorized},
		{"renter cannot reject", func(f *fixture) models.Actor { return f.renter }, models.TenancyStatusRejected, internal_utils.ErrUnauthorized},
		{"renter may cancel", func(f *fixture) models.Actor { return f.renter }, models.TenancyStatusCancelled, nil},
		{"stranger cannot cancel", func(*fixture) models.Actor { return stranger }, models.TenancyStatusCancelled, internal_utils.ErrUnauthorized},
		{"other owner cannot confirm", func(*fixture) models.Actor { return otherOwner }, models.TenancyStatusConfirmed, internal_utils.ErrUnauthorized},
		{"owner cannot activate", func(f *fixture) models.Actor { return f.owner }, models.TenancyStatusActive, internal_utils.ErrUnauthorized},
		{"owner may reject", func(f *fixture) models.Actor { return f.owner }, models.TenancyStatusRejected, nil},
		{"admin may confirm", func(f *fixture) models.Actor { return f.admin }, models.TenancyStatusConfirmed, nil},
		{"owner cannot complete a pending request", func(f *fixture) models.Actor { return f.owner }, models.TenancyStatusCompleted, internal_utils.ErrInvalidTransition},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			u := f.availableUnit()
			ten := f.request(t, u, "2024-03-01", nil, nil)

			_, err := f.lifecycle.Transition(f.ctx, ten.ID, tc.next, tc.actor(f))
			if tc.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, tc.next, f.h.MustGetTenancy(ten.ID).Status)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Equal(t, models.TenancyStatusPending, f.h.MustGetTenancy(ten.ID).Status)
			}
			f.h.AssertUnitPairing()
		})
	}
}

func TestTransitionRejectsUnknownStatusAndMissingTenancy(t *testing.T) {
	f := newFixture(t)
	_, err := f.lifecycle.Transition(f.ctx, uuid.New(), models.TenancyStatusCancelled, f.owner)
	var nf *internal_utils.NotFoundError
	assert.True(t, errors.As(err, &nf))

	u := f.availableUnit()
	ten := f.request(t, u, "2024-03-01", nil, nil)
	_, err = f.lifecycle.Transition(f.ctx, ten.ID, models.TenancyStatus("ARCHIVED"), f.owner)
	assert.ErrorIs(t, err, internal_utils.ErrInvalidPayload)
}

func TestRequestTenancyValidation(t *testing.T) {
	f := newFixture(t)
	u := f.availableUnit()

	_, err := f.lifecycle.RequestTenancy(f.ctx, f.owner, dtos.RequestTenancyRequest{UnitID: u.ID.String(), StartDate: "2024-03-01"})
	assert.ErrorIs(t, err, internal_utils.ErrUnauthorized, "owners cannot book their own unit")

	_, err = f.lifecycle.RequestTenancy(f.ctx, f.renter, dtos.RequestTenancyRequest{
		UnitID: u.ID.String(), StartDate: "2024-03-01", EndDate: ptr("2024-02-01"),
	})
	assert.ErrorIs(t, err, internal_utils.ErrInvalidPayload)

	pending := f.h.CreateTestUnit(f.owner, models.UnitStatusPendingVerification, 9000)
	_, err = f.lifecycle.RequestTenancy(f.ctx, f.renter, dtos.RequestTenancyRequest{UnitID: pending.ID.String(), StartDate: "2024-03-01"})
	assert.ErrorIs(t, err, internal_utils.ErrUnitUnavailable)

	_, err = f.lifecycle.RequestTenancy(f.ctx, f.renter, dtos.RequestTenancyRequest{UnitID: "nope", StartDate: "2024-03-01"})
	assert.ErrorIs(t, err, internal_utils.ErrInvalidPayload)
}

func TestRequestTenancyWithDepositCreatesObligation(t *testing.T) {
	f := newFixture(t)
	u := f.availableUnit()
	ten := f.request(t, u, "2024-03-01", nil, ptr("5000"))

	list, err := f.h.Store.Obligations.ListByTenancy(f.ctx, ten.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.ObligationKindDeposit, list[0].Kind)
	assert.Equal(t, date(2024, 3, 1), list[0].DueDate)
	assert.Equal(t, "5000.00", list[0].Amount.StringFixed(2))
}

// orphanDepositTenancies points every initial obligation at a tenancy that
// does not exist, so the store rejects the deposit row.
type orphanDepositTenancies struct {
	repositories.TenancyRepository
}

func (r orphanDepositTenancies) Create(ctx context.Context, t *models.Tenancy, initial ...*models.Obligation) error {
	for _, o := range initial {
		o.TenancyID = uuid.New()
	}
	return r.TenancyRepository.Create(ctx, t, initial...)
}

func TestRequestTenancyFailsWhenDepositCannotBeStored(t *testing.T) {
	f := newFixture(t)
	u := f.availableUnit()
	f.h.Store.Tenancies = orphanDepositTenancies{f.h.Store.Tenancies}

	_, err := f.lifecycle.RequestTenancy(f.ctx, f.renter, dtos.RequestTenancyRequest{
		UnitID:    u.ID.String(),
		StartDate: "2024-03-01",
		Deposit:   ptr("5000"),
	})
	require.Error(t, err)

	mine, err := f.h.Store.Tenancies.ListByRenter(f.ctx, f.renter.ID)
	require.NoError(t, err)
	assert.Empty(t, mine, "no tenancy may be left behind without its deposit")
	assert.Empty(t, f.inboxOfType(t, f.owner.ID, models.NotificationBookingRequest))

	// Without a deposit the same request still goes through.
	ten := f.request(t, u, "2024-03-01", nil, nil)
	assert.Equal(t, models.TenancyStatusPending, ten.Status)
}

func TestSecondConfirmOnSameUnitConflicts(t *testing.T) {
	f := newFixture(t)
	u := f.availableUnit()
	first := f.request(t, u, "2024-03-01", nil, nil)

	other := testhelpers.NewActor(models.RoleTenant)
	second, err := f.lifecycle.RequestTenancy(f.ctx, other, dtos.RequestTenancyRequest{UnitID: u.ID.String(), StartDate: "2024-04-01"})
	require.NoError(t, err)

	_, err = f.lifecycle.Transition(f.ctx, first.ID, models.TenancyStatusConfirmed, f.owner)
	require.NoError(t, err)

	_, err = f.lifecycle.Transition(f.ctx, second.ID, models.TenancyStatusConfirmed, f.owner)
	assert.ErrorIs(t, err, internal_utils.ErrUnitAlreadyControlled)

	// Rejecting the loser must not release the unit held by the winner.
	_, err = f.lifecycle.Transition(f.ctx, second.ID, models.TenancyStatusRejected, f.owner)
	require.NoError(t, err)
	assert.Equal(t, models.UnitStatusOccupied, f.h.MustGetUnit(u.ID).Status)
	f.h.AssertUnitPairing()
}

func TestDisabledUnitTakesPrecedence(t *testing.T) {
	f := newFixture(t)
	u := f.availableUnit()
	ten := f.request(t, u, "2024-03-01", nil, nil)

	_, err := f.lifecycle.ModerateUnit(f.ctx, f.admin, u.ID, models.ModerationDisable)
	require.NoError(t, err)

	_, err = f.lifecycle.Transition(f.ctx, ten.ID, models.TenancyStatusConfirmed, f.owner)
	assert.ErrorIs(t, err, internal_utils.ErrUnitUnavailable)

	// A confirmed tenancy on a unit disabled afterwards can still end, and
	// the unit stays disabled.
	u2 := f.availableUnit()
	ten2 := f.request(t, u2, "2024-03-01", nil, nil)
	_, err = f.lifecycle.Transition(f.ctx, ten2.ID, models.TenancyStatusConfirmed, f.owner)
	require.NoError(t, err)
	_, err = f.lifecycle.ModerateUnit(f.ctx, f.admin, u2.ID, models.ModerationDisable)
	require.NoError(t, err)
	_, err = f.lifecycle.Transition(f.ctx, ten2.ID, models.TenancyStatusCancelled, f.renter)
	require.NoError(t, err)
	assert.Equal(t, models.UnitStatusDisabled, f.h.MustGetUnit(u2.ID).Status)
}

func TestModerateUnit(t *testing.T) {
	f := newFixture(t)
	u, err := f.lifecycle.CreateUnit(f.ctx, f.owner, dtos.CreateUnitRequest{Title: "Sunny room", MonthlyPrice: "12000"})
	require.NoError(t, err)
	assert.Equal(t, models.UnitStatusPendingVerification, u.Status)

	queue, err := f.lifecycle.ListUnits(f.ctx, models.PendingVerification())
	require.NoError(t, err)
	require.Len(t, queue, 1)

	_, err = f.lifecycle.ModerateUnit(f.ctx, f.owner, u.ID, models.ModerationApprove)
	assert.ErrorIs(t, err, internal_utils.ErrUnauthorized)

	approved, err := f.lifecycle.ModerateUnit(f.ctx, f.admin, u.ID, models.ModerationApprove)
	require.NoError(t, err)
	assert.Equal(t, models.UnitStatusAvailable, approved.Status)

	logs, err := f.h.Store.AuditLogs.ListByTarget(f.ctx, models.TargetUnit, u.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.AuditModerate, logs[0].Action)
	assert.Equal(t, f.admin.ID, logs[0].AdminID)

	notes := f.inboxOfType(t, f.owner.ID, models.NotificationUnitModerated)
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Text, "approved")

	_, err = f.lifecycle.ModerateUnit(f.ctx, f.admin, uuid.New(), models.ModerationApprove)
	var nf *internal_utils.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestApproveRefusedWhileUnitIsHeld(t *testing.T) {
	f := newFixture(t)
	u := f.availableUnit()
	ten := f.request(t, u, "2024-03-01", nil, nil)
	_, err := f.lifecycle.Transition(f.ctx, ten.ID, models.TenancyStatusConfirmed, f.owner)
	require.NoError(t, err)

	_, err = f.lifecycle.ModerateUnit(f.ctx, f.admin, u.ID, models.ModerationApprove)
	assert.ErrorIs(t, err, internal_utils.ErrInvalidTransition)
	assert.Equal(t, models.UnitStatusOccupied, f.h.MustGetUnit(u.ID).Status)
	f.h.AssertUnitPairing()

	// The held unit stays closed to new requests.
	other := testhelpers.NewActor(models.RoleTenant)
	_, err = f.lifecycle.RequestTenancy(f.ctx, other, dtos.RequestTenancyRequest{UnitID: u.ID.String(), StartDate: "2024-04-01"})
	assert.ErrorIs(t, err, internal_utils.ErrUnitUnavailable)

	logs, err := f.h.Store.AuditLogs.ListByTarget(f.ctx, models.TargetUnit, u.ID)
	require.NoError(t, err)
	assert.Empty(t, logs)

	// Disable still wins over the pairing, and Approve then releases it.
	_, err = f.lifecycle.ModerateUnit(f.ctx, f.admin, u.ID, models.ModerationDisable)
	require.NoError(t, err)
	_, err = f.lifecycle.Transition(f.ctx, ten.ID, models.TenancyStatusCancelled, f.renter)
	require.NoError(t, err)
	approved, err := f.lifecycle.ModerateUnit(f.ctx, f.admin, u.ID, models.ModerationApprove)
	require.NoError(t, err)
	assert.Equal(t, models.UnitStatusAvailable, approved.Status)
	f.h.AssertUnitPairing()
}

func TestCreateUnitRoles(t *testing.T) {
	f := newFixture(t)
	_, err := f.lifecycle.CreateUnit(f.ctx, f.renter, dtos.CreateUnitRequest{Title: "x", MonthlyPrice: "100"})
	assert.ErrorIs(t, err, internal_utils.ErrUnauthorized)

	ownerID := f.owner.ID.String()
	u, err := f.lifecycle.CreateUnit(f.ctx, f.admin, dtos.CreateUnitRequest{Title: "x", MonthlyPrice: "100", OwnerID: &ownerID})
	require.NoError(t, err)
	assert.Equal(t, f.owner.ID, u.OwnerID)

	_, err = f.lifecycle.CreateUnit(f.ctx, f.owner, dtos.CreateUnitRequest{Title: "x", MonthlyPrice: "-1"})
	assert.ErrorIs(t, err, internal_utils.ErrInvalidPayload)
}

func TestDeleteTenancy(t *testing.T) {
	f := newFixture(t)
	u := f.availableUnit()
	ten := f.request(t, u, "2024-03-01", nil, nil)
	_, err := f.lifecycle.Transition(f.ctx, ten.ID, models.TenancyStatusConfirmed, f.owner)
	require.NoError(t, err)

	err = f.lifecycle.DeleteTenancy(f.ctx, f.admin, ten.ID)
	assert.ErrorIs(t, err, internal_utils.ErrInvalidTransition, "a controlling tenancy cannot be deleted")

	_, err = f.lifecycle.Transition(f.ctx, ten.ID, models.TenancyStatusCancelled, f.owner)
	require.NoError(t, err)
	assert.ErrorIs(t, f.lifecycle.DeleteTenancy(f.ctx, f.renter, ten.ID), internal_utils.ErrUnauthorized)
	before := len(f.inboxOfType(t, f.renter.ID, models.NotificationBookingCancelled))
	require.NoError(t, f.lifecycle.DeleteTenancy(f.ctx, f.admin, ten.ID))

	cancelled := f.inboxOfType(t, f.renter.ID, models.NotificationBookingCancelled)
	require.Len(t, cancelled, before+1)
	assert.Equal(t, ten.ID, *cancelled[0].RelatedID)
	assert.Equal(t, f.admin.ID, *cancelled[0].ActorID)
	assert.Contains(t, cancelled[0].Text, "removed")

	got, err := f.h.Store.Tenancies.GetByID(f.ctx, ten.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	logs, err := f.h.Store.AuditLogs.ListByTarget(f.ctx, models.TargetTenancy, ten.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestGetTenancyVisibility(t *testing.T) {
	f := newFixture(t)
	u := f.availableUnit()
	ten := f.request(t, u, "2024-03-01", nil, nil)

	for _, who := range []models.Actor{f.renter, f.owner, f.admin} {
		got, unit, _, err := f.lifecycle.GetTenancy(f.ctx, who, ten.ID)
		require.NoError(t, err)
		assert.Equal(t, ten.ID, got.ID)
		assert.Equal(t, u.ID, unit.ID)
	}
	_, _, _, err := f.lifecycle.GetTenancy(f.ctx, testhelpers.NewActor(models.RoleTenant), ten.ID)
	assert.ErrorIs(t, err, internal_utils.ErrUnauthorized)
}

// barrierTenancies holds every GetByID until `parties` callers have read,
// so racing transitions all observe the same starting status.
type barrierTenancies struct {
	repositories.TenancyRepository
	wg *sync.WaitGroup
}

func (b *barrierTenancies) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenancy, error) {
	t, err := b.TenancyRepository.GetByID(ctx, id)
	b.wg.Done()
	b.wg.Wait()
	return t, err
}

func TestConcurrentConfirmAndCancelHaveOneWinner(t *testing.T) {
	for i := 0; i < 20; i++ {
		f := newFixture(t)
		u := f.availableUnit()
		ten := f.request(t, u, "2024-03-01", nil, nil)

		var barrier sync.WaitGroup
		barrier.Add(2)
		orig := f.h.Store.Tenancies
		f.h.Store.Tenancies = &barrierTenancies{TenancyRepository: orig, wg: &barrier}

		var (
			wg                    sync.WaitGroup
			confirmErr, cancelErr error
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, confirmErr = f.lifecycle.Transition(f.ctx, ten.ID, models.TenancyStatusConfirmed, f.owner)
		}()
		go func() {
			defer wg.Done()
			_, cancelErr = f.lifecycle.Transition(f.ctx, ten.ID, models.TenancyStatusCancelled, f.renter)
		}()
		wg.Wait()
		f.h.Store.Tenancies = orig

		require.True(t, (confirmErr == nil) != (cancelErr == nil),
			"exactly one winner: confirm=%v cancel=%v", confirmErr, cancelErr)

		final := f.h.MustGetTenancy(ten.ID)
		unit := f.h.MustGetUnit(u.ID)
		if confirmErr == nil {
			assert.ErrorIs(t, cancelErr, internal_utils.ErrAlreadyTransitioned)
			var ce *internal_utils.ConflictError
			require.True(t, errors.As(cancelErr, &ce))
			assert.Equal(t, models.TenancyStatusConfirmed, final.Status)
			assert.Equal(t, models.UnitStatusOccupied, unit.Status)
		} else {
			assert.ErrorIs(t, confirmErr, internal_utils.ErrAlreadyTransitioned)
			assert.Equal(t, models.TenancyStatusCancelled, final.Status)
			assert.Equal(t, models.UnitStatusAvailable, unit.Status)
		}
		f.h.AssertUnitPairing()
	}
}

func TestTenancyEventsNotifyCounterParty(t *testing.T) {
	f := newFixture(t)
	ownerFeed := f.hub.Subscribe(models.NotificationChannel(f.owner.ID))
	defer ownerFeed.Close()

	u := f.availableUnit()
	ten := f.request(t, u, "2024-03-01", nil, nil)

	requests := f.inboxOfType(t, f.owner.ID, models.NotificationBookingRequest)
	require.Len(t, requests, 1)
	assert.Equal(t, ten.ID, *requests[0].RelatedID)
	assert.Equal(t, f.renter.ID, *requests[0].ActorID)
	select {
	case payload := <-ownerFeed.C():
		assert.Contains(t, string(payload), requests[0].ID.String())
	default:
		t.Fatal("owner channel received nothing")
	}

	_, err := f.lifecycle.Transition(f.ctx, ten.ID, models.TenancyStatusConfirmed, f.owner)
	require.NoError(t, err)
	assert.Len(t, f.inboxOfType(t, f.renter.ID, models.NotificationBookingConfirmed), 1)

	_, err = f.lifecycle.Transition(f.ctx, ten.ID, models.TenancyStatusCancelled, f.renter)
	require.NoError(t, err)
	cancelled := f.inboxOfType(t, f.owner.ID, models.NotificationBookingCancelled)
	require.Len(t, cancelled, 1)
	assert.Contains(t, cancelled[0].Text, "cancelled")
	assert.Empty(t, f.inboxOfType(t, f.renter.ID, models.NotificationBookingCancelled))
}
