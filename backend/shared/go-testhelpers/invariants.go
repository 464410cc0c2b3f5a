package testhelpers

import (
	"github.com/stayspot/mono-repo/backend/shared/go-models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allTenancyStatuses = []models.TenancyStatus{
	models.TenancyStatusPending,
	models.TenancyStatusConfirmed,
	models.TenancyStatusRejected,
	models.TenancyStatusActive,
	models.TenancyStatusCompleted,
	models.TenancyStatusCancelled,
}

// AssertUnitPairing checks that every Confirmed/Active tenancy holds its
// unit exclusively and that the unit shows the paired status, unless the
// unit was disabled by an administrator.
func (h *TestHelper) AssertUnitPairing() {
	h.T.Helper()
	tenancies, err := h.Store.Tenancies.ListByStatuses(h.Ctx, allTenancyStatuses)
	require.NoError(h.T, err)

	holders := make(map[string]int)
	for _, t := range tenancies {
		if !t.Status.IsControlling() {
			continue
		}
		holders[t.UnitID.String()]++
		u := h.MustGetUnit(t.UnitID)
		if u.Status == models.UnitStatusDisabled {
			continue
		}
		want := models.UnitStatusOccupied
		if t.Status == models.TenancyStatusActive {
			want = models.UnitStatusRented
		}
		// settlement can rent a unit straight from Pending -> Confirmed
		if t.Status == models.TenancyStatusConfirmed && u.Status == models.UnitStatusRented {
			continue
		}
		assert.Equal(h.T, want, u.Status, "unit %s paired with %s tenancy %s", u.ID, t.Status, t.ID)
	}
	for unitID, n := range holders {
		assert.Equal(h.T, 1, n, "unit %s has %d controlling tenancies", unitID, n)
	}
}
