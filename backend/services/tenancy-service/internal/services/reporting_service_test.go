package services

import (
	"testing"

	internal_utils "github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/utils"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
	"github.com/stayspot/mono-repo/backend/shared/go-testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	f := newFixture(t)
	_, ten := f.activeTenancy(date(2024, 1, 10), nil)
	f.h.CreateTestUnit(f.owner, models.UnitStatusPendingVerification, 8000)
	overdue := f.h.CreateTestObligation(ten, models.ObligationKindRent, 10000, date(2024, 1, 31))
	paid := f.h.CreateTestObligation(ten, models.ObligationKindRent, 10000, date(2024, 2, 10))
	_, _, err := f.settlements.Settle(f.ctx, models.SettlementMethodStripe, f.stripeConfirmation(paid.ID, 1000000))
	require.NoError(t, err)

	_, err = f.reporting.DashboardStats(f.ctx, f.owner)
	assert.ErrorIs(t, err, internal_utils.ErrUnauthorized)

	stats, err := f.reporting.DashboardStats(f.ctx, f.admin)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.UnitsByStatus[models.UnitStatusRented])
	assert.Equal(t, 1, stats.UnitsByStatus[models.UnitStatusPendingVerification])
	assert.Equal(t, 1, stats.TenanciesByStatus[models.TenancyStatusActive])
	assert.Equal(t, 1, stats.ObligationsByStatus[models.ObligationStatusOverdue], "overdue is derived, not stored")
	assert.Equal(t, 1, stats.ObligationsByStatus[models.ObligationStatusPaid])
	assert.Equal(t, "10000.00", stats.TotalRevenue)
	assert.Equal(t, "10000.00", stats.RevenueThisMonth)
	assert.NotEmpty(t, stats.RecentActivity)

	// Counting never writes.
	assert.Equal(t, models.ObligationStatusPending, f.h.MustGetObligation(overdue.ID).Status)
}

func TestOwnerStats(t *testing.T) {
	f := newFixture(t)
	_, ten := f.activeTenancy(date(2024, 1, 10), nil)
	f.h.CreateTestObligation(ten, models.ObligationKindRent, 10000, date(2024, 2, 10))
	f.h.CreateTestObligation(ten, models.ObligationKindDeposit, 5000, date(2024, 1, 10))
	u := f.availableUnit()
	f.request(t, u, "2024-03-01", nil, nil)

	stats, err := f.reporting.OwnerStats(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ActiveTenants)
	assert.Equal(t, 1, stats.PendingRequests)
	assert.Equal(t, 1, stats.UnitsByStatus[models.UnitStatusAvailable])
	assert.Equal(t, "0.00", stats.RevenueReceived)
	assert.Equal(t, "15000.00", stats.Outstanding)

	empty, err := f.reporting.OwnerStats(f.ctx, testhelpers.NewActor(models.RoleOwner))
	require.NoError(t, err)
	assert.Zero(t, empty.ActiveTenants)

	_, err = f.reporting.OwnerStats(f.ctx, f.renter)
	assert.ErrorIs(t, err, internal_utils.ErrUnauthorized)
}
