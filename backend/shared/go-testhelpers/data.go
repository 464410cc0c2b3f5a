package testhelpers

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
	"github.com/stretchr/testify/require"
)

// UniqueTitle generates a unit title that will not collide across runs.
func UniqueTitle(prefix string) string {
	return fmt.Sprintf("%s %d", prefix, time.Now().UnixNano())
}

// CreateTestUnit persists a unit owned by owner.
func (h *TestHelper) CreateTestUnit(owner models.Actor, status models.UnitStatus, monthlyPrice int64) *models.Unit {
	u := &models.Unit{
		ID:           uuid.New(),
		OwnerID:      owner.ID,
		Title:        UniqueTitle("Room"),
		MonthlyPrice: decimal.NewFromInt(monthlyPrice),
		Status:       status,
	}
	require.NoError(h.T, h.Store.Units.Create(h.Ctx, u), "Failed to create test unit")
	return h.MustGetUnit(u.ID)
}

// CreateTestTenancy persists a tenancy directly, bypassing the lifecycle
// rules. Callers seeding a controlling tenancy must set the unit status.
func (h *TestHelper) CreateTestTenancy(
	unit *models.Unit,
	renter models.Actor,
	status models.TenancyStatus,
	start time.Time,
	end *time.Time,
) *models.Tenancy {
	t := &models.Tenancy{
		ID:          uuid.New(),
		RenterID:    renter.ID,
		UnitID:      unit.ID,
		Status:      status,
		StartDate:   start,
		EndDate:     end,
		MonthlyRent: unit.MonthlyPrice,
	}
	require.NoError(h.T, h.Store.Tenancies.Create(h.Ctx, t), "Failed to create test tenancy")
	return h.MustGetTenancy(t.ID)
}

// CreateTestObligation persists a pending charge.
func (h *TestHelper) CreateTestObligation(
	tenancy *models.Tenancy,
	kind models.ObligationKind,
	amount int64,
	due time.Time,
) *models.Obligation {
	o := &models.Obligation{
		ID:        uuid.New(),
		TenancyID: tenancy.ID,
		Kind:      kind,
		Amount:    decimal.NewFromInt(amount),
		DueDate:   due,
		Status:    models.ObligationStatusPending,
	}
	require.NoError(h.T, h.Store.Obligations.Create(h.Ctx, o), "Failed to create test obligation")
	return o
}

func (h *TestHelper) MustGetUnit(id uuid.UUID) *models.Unit {
	u, err := h.Store.Units.GetByID(h.Ctx, id)
	require.NoError(h.T, err)
	require.NotNil(h.T, u, "unit %s not found", id)
	return u
}

func (h *TestHelper) MustGetTenancy(id uuid.UUID) *models.Tenancy {
	t, err := h.Store.Tenancies.GetByID(h.Ctx, id)
	require.NoError(h.T, err)
	require.NotNil(h.T, t, "tenancy %s not found", id)
	return t
}

func (h *TestHelper) MustGetObligation(id uuid.UUID) *models.Obligation {
	o, err := h.Store.Obligations.GetByID(h.Ctx, id)
	require.NoError(h.T, err)
	require.NotNil(h.T, o, "obligation %s not found", id)
	return o
}
