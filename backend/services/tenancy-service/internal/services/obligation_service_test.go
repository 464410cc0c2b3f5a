package services

import (
	"encoding/json"
	"testing"

	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/dtos"
	internal_utils "github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/utils"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverdueIsDerivedOnRead(t *testing.T) {
	f := newFixture(t)
	_, ten := f.activeTenancy(date(2024, 1, 1), nil)
	o := f.h.CreateTestObligation(ten, models.ObligationKindRent, 10000, date(2024, 2, 1))
	assert.Equal(t, models.ObligationStatusPending, f.h.MustGetObligation(o.ID).Status)

	f.setDate(2024, 2, 5)
	list, err := f.obligations.ListForTenancy(f.ctx, f.renter, ten.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.ObligationStatusOverdue, list[0].Status)
	assert.Equal(t, models.ObligationStatusOverdue, f.h.MustGetObligation(o.ID).Status, "derived state is persisted")

	_, _, obligations, err := f.lifecycle.GetTenancy(f.ctx, f.owner, ten.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ObligationStatusOverdue, obligations[0].Status)
}

func TestListMine(t *testing.T) {
	f := newFixture(t)
	_, ten := f.activeTenancy(date(2024, 1, 10), nil)
	f.h.CreateTestObligation(ten, models.ObligationKindRent, 10000, date(2024, 2, 10))

	mine, err := f.obligations.ListMine(f.ctx, f.renter)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	owned, err := f.obligations.ListMine(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Len(t, owned, 1)

	none, err := f.obligations.ListMine(f.ctx, f.admin)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.obligations.ListForTenancy(f.ctx, f.admin, ten.ID)
	require.NoError(t, err)
}

func TestAddCharge(t *testing.T) {
	f := newFixture(t)
	_, ten := f.activeTenancy(date(2024, 1, 10), nil)
	req := dtos.CreateChargeRequest{Kind: "MAINTENANCE", Amount: "750.5", DueDate: "2024-02-20"}

	_, err := f.obligations.AddCharge(f.ctx, f.renter, ten.ID, req)
	assert.ErrorIs(t, err, internal_utils.ErrUnauthorized)

	o, err := f.obligations.AddCharge(f.ctx, f.owner, ten.ID, req)
	require.NoError(t, err)
	assert.Equal(t, models.ObligationKindMaintenance, o.Kind)
	assert.Equal(t, "750.50", o.Amount.StringFixed(2))
	assert.Equal(t, models.ObligationStatusPending, o.Status)

	req.Kind = "RENT"
	_, err = f.obligations.AddCharge(f.ctx, f.owner, ten.ID, req)
	assert.ErrorIs(t, err, internal_utils.ErrInvalidPayload, "rent is only created by billing")
}

func TestOverrideIsAudited(t *testing.T) {
	f := newFixture(t)
	_, ten := f.activeTenancy(date(2024, 1, 10), nil)
	o := f.h.CreateTestObligation(ten, models.ObligationKindRent, 10000, date(2024, 2, 10))
	_, _, err := f.settlements.Settle(f.ctx, models.SettlementMethodStripe, f.stripeConfirmation(o.ID, 1000000))
	require.NoError(t, err)

	req := dtos.OverrideObligationRequest{Status: "PENDING", Reason: "chargeback"}
	_, err = f.obligations.Override(f.ctx, f.owner, o.ID, req)
	assert.ErrorIs(t, err, internal_utils.ErrUnauthorized)

	after, err := f.obligations.Override(f.ctx, f.admin, o.ID, req)
	require.NoError(t, err)
	assert.Equal(t, models.ObligationStatusPending, after.Status)
	assert.Nil(t, after.PaidDate)

	logs, err := f.h.Store.AuditLogs.ListByTarget(f.ctx, models.TargetObligation, o.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.AuditOverrideStatus, logs[0].Action)
	var details map[string]string
	require.NoError(t, json.Unmarshal(*logs[0].Details, &details))
	assert.Equal(t, "PAID", details["before"])
	assert.Equal(t, "PENDING", details["after"])
	assert.Equal(t, "chargeback", details["reason"])

	_, err = f.obligations.Override(f.ctx, f.admin, o.ID, dtos.OverrideObligationRequest{Status: "VOID", Reason: "x"})
	assert.ErrorIs(t, err, internal_utils.ErrInvalidOverride)
}
