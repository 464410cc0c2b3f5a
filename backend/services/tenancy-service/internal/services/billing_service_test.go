package services

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBillingAndReminderScenario(t *testing.T) {
	f := newFixture(t)
	end := date(2024, 6, 10)
	_, ten := f.activeTenancy(date(2024, 1, 10), &end)

	f.setDate(2024, 2, 5)
	created, err := f.billing.GenerateDue(f.ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	list, err := f.h.Store.Obligations.ListByTenancy(f.ctx, ten.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, date(2024, 2, 10), list[0].DueDate)
	assert.Equal(t, models.ObligationStatusPending, list[0].Status)
	assert.Equal(t, models.ObligationKindRent, list[0].Kind)
	assert.True(t, decimal.NewFromInt(10000).Equal(list[0].Amount))

	created, err = f.billing.GenerateDue(f.ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, created, "second run on the same day must not bill again")

	f.setDate(2024, 2, 8)
	sent, skipped, err := f.reminders.DispatchReminders(f.ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Zero(t, skipped)

	reminders := f.inboxOfType(t, f.renter.ID, models.NotificationRentReminder)
	require.Len(t, reminders, 1)
	assert.Contains(t, reminders[0].Text, "in 2 days")
	assert.Contains(t, reminders[0].Text, "Rs. 10000.00")
	assert.Equal(t, list[0].ID, *reminders[0].RelatedID)
	assert.Nil(t, reminders[0].ActorID)

	f.setDate(2024, 2, 9)
	sent, skipped, err = f.reminders.DispatchReminders(f.ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Equal(t, 1, skipped)
	assert.Len(t, f.inboxOfType(t, f.renter.ID, models.NotificationRentReminder), 1)
}

func TestBillingCatchUp(t *testing.T) {
	f := newFixture(t)
	_, ten := f.activeTenancy(date(2023, 9, 5), nil)

	f.setDate(2024, 2, 5)
	created, err := f.billing.GenerateDue(f.ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 5, created)

	list, err := f.h.Store.Obligations.ListByTenancy(f.ctx, ten.ID)
	require.NoError(t, err)
	require.Len(t, list, 5)

	want := []time.Time{
		date(2023, 10, 5), date(2023, 11, 5), date(2023, 12, 5), date(2024, 1, 5), date(2024, 2, 5),
	}
	for i, o := range list {
		assert.Equal(t, want[i], o.DueDate)
	}
	// Past cycles are born Overdue; the one due today is still Pending.
	for _, o := range list[:4] {
		assert.Equal(t, models.ObligationStatusOverdue, o.Status, "due %s", o.DueDate)
	}
	assert.Equal(t, models.ObligationStatusPending, list[4].Status)

	created, err = f.billing.GenerateDue(f.ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, created)

	// A month later exactly one more cycle appears.
	f.setDate(2024, 3, 1)
	created, err = f.billing.GenerateDue(f.ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, created)
}

func TestBillingClampsShortTenancyToEndDate(t *testing.T) {
	f := newFixture(t)
	end := date(2024, 2, 20)
	u := f.availableUnit()
	ten := f.h.CreateTestTenancy(u, f.renter, models.TenancyStatusConfirmed, date(2024, 2, 1), &end)

	f.setDate(2024, 2, 15)
	created, err := f.billing.GenerateDue(f.ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	list, err := f.h.Store.Obligations.ListByTenancy(f.ctx, ten.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, end, list[0].DueDate)

	f.setDate(2024, 4, 1)
	created, err = f.billing.GenerateDue(f.ctx, 30)
	require.NoError(t, err)
	assert.Zero(t, created, "nothing is billed past the end date")
}

func TestBillingIgnoresNonControllingTenancies(t *testing.T) {
	f := newFixture(t)
	u := f.availableUnit()
	f.h.CreateTestTenancy(u, f.renter, models.TenancyStatusPending, date(2023, 12, 1), nil)
	f.h.CreateTestTenancy(u, f.renter, models.TenancyStatusCancelled, date(2023, 12, 1), nil)

	f.setDate(2024, 2, 5)
	created, err := f.billing.GenerateDue(f.ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestBillingConcurrentRunsConverge(t *testing.T) {
	f := newFixture(t)
	_, ten := f.activeTenancy(date(2023, 9, 5), nil)
	f.setDate(2024, 2, 5)

	const runs = 8
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := f.billing.GenerateDue(f.ctx, 7)
			assert.NoError(t, err)
			mu.Lock()
			total += n
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, total)
	list, err := f.h.Store.Obligations.ListByTenancy(f.ctx, ten.ID)
	require.NoError(t, err)
	assert.Len(t, list, 5)
}

func TestRentDueDate(t *testing.T) {
	end := date(2024, 6, 10)
	ten := &models.Tenancy{StartDate: date(2024, 1, 31), EndDate: &end}
	assert.Equal(t, date(2024, 2, 29), RentDueDate(ten, 1))
	assert.Equal(t, date(2024, 3, 31), RentDueDate(ten, 2))
	assert.Equal(t, date(2024, 4, 30), RentDueDate(ten, 3))
}
