package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
	"github.com/stayspot/mono-repo/backend/shared/go-repositories"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTenancy(t *testing.T, s *repositories.Store, status models.TenancyStatus) (*models.Unit, *models.Tenancy) {
	t.Helper()
	ctx := context.Background()
	u := &models.Unit{
		ID: uuid.New(), OwnerID: uuid.New(), Title: "Room",
		MonthlyPrice: decimal.NewFromInt(10000), Status: models.UnitStatusAvailable,
	}
	require.NoError(t, s.Units.Create(ctx, u))
	ten := &models.Tenancy{
		ID: uuid.New(), RenterID: uuid.New(), UnitID: u.ID, Status: status,
		StartDate: utils.Date(2024, 1, 10), MonthlyRent: u.MonthlyPrice,
	}
	require.NoError(t, s.Tenancies.Create(ctx, ten))
	return u, ten
}

func rent(tenancyID uuid.UUID, due time.Time) *models.Obligation {
	return &models.Obligation{
		ID: uuid.New(), TenancyID: tenancyID, Kind: models.ObligationKindRent,
		Amount: decimal.NewFromInt(10000), DueDate: due, Status: models.ObligationStatusPending,
	}
}

func TestRentSlotIsUnique(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	_, ten := seedTenancy(t, s, models.TenancyStatusActive)

	created, err := s.Obligations.CreateIfNotExists(ctx, rent(ten.ID, utils.Date(2024, 2, 10)))
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.Obligations.CreateIfNotExists(ctx, rent(ten.ID, utils.Date(2024, 2, 10)))
	require.NoError(t, err)
	assert.False(t, created)

	err = s.Obligations.Create(ctx, rent(ten.ID, utils.Date(2024, 2, 10)))
	assert.ErrorIs(t, err, utils.ErrDuplicateObligation)

	// A deposit on the same date does not occupy the rent slot.
	dep := rent(ten.ID, utils.Date(2024, 2, 10))
	dep.Kind = models.ObligationKindDeposit
	require.NoError(t, s.Obligations.Create(ctx, dep))

	latest, err := s.Obligations.LatestRentDueDate(ctx, ten.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, utils.Date(2024, 2, 10), *latest)
}

func TestOneControllingTenancyPerUnit(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	u, first := seedTenancy(t, s, models.TenancyStatusPending)
	second := &models.Tenancy{
		ID: uuid.New(), RenterID: uuid.New(), UnitID: u.ID, Status: models.TenancyStatusPending,
		StartDate: utils.Date(2024, 3, 1), MonthlyRent: u.MonthlyPrice,
	}
	require.NoError(t, s.Tenancies.Create(ctx, second))

	confirm := func(*models.Tenancy, *models.Unit) (repositories.TransitionPlan, error) {
		occupied := models.UnitStatusOccupied
		return repositories.TransitionPlan{Status: models.TenancyStatusConfirmed, UnitStatus: &occupied}, nil
	}
	_, err := s.Tenancies.TransitionAtomic(ctx, first.ID, confirm)
	require.NoError(t, err)

	_, err = s.Tenancies.TransitionAtomic(ctx, second.ID, confirm)
	assert.ErrorIs(t, err, utils.ErrUnitAlreadyControlled)

	got, err := s.Tenancies.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TenancyStatusPending, got.Status, "failed transition must not write")
}

func TestCreateTenancyWithObligationsIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	u, first := seedTenancy(t, s, models.TenancyStatusPending)
	taken := rent(first.ID, utils.Date(2024, 2, 10))
	require.NoError(t, s.Obligations.Create(ctx, taken))

	newTenancy := func() *models.Tenancy {
		return &models.Tenancy{
			ID: uuid.New(), RenterID: uuid.New(), UnitID: u.ID, Status: models.TenancyStatusPending,
			StartDate: utils.Date(2024, 3, 1), MonthlyRent: u.MonthlyPrice,
		}
	}
	deposit := func(tenancyID uuid.UUID) *models.Obligation {
		return &models.Obligation{
			ID: uuid.New(), TenancyID: tenancyID, Kind: models.ObligationKindDeposit,
			Amount: decimal.NewFromInt(5000), DueDate: utils.Date(2024, 3, 1), Status: models.ObligationStatusPending,
		}
	}

	ok := newTenancy()
	require.NoError(t, s.Tenancies.Create(ctx, ok, deposit(ok.ID)))
	list, err := s.Obligations.ListByTenancy(ctx, ok.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// The deposit reuses an existing obligation id, so its insert fails.
	failed := newTenancy()
	clash := deposit(failed.ID)
	clash.ID = taken.ID
	err = s.Tenancies.Create(ctx, failed, deposit(failed.ID), clash)
	require.Error(t, err)

	got, err := s.Tenancies.GetByID(ctx, failed.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "tenancy must not survive a failed deposit insert")
	list, err = s.Obligations.ListByTenancy(ctx, failed.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
	still, err := s.Obligations.GetByID(ctx, taken.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, still.TenancyID)
}

func TestReminderDedupUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	recipient, related := uuid.New(), uuid.New()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.Notifications.CreateIfAbsent(ctx, &models.NotificationRecord{
				ID: uuid.New(), RecipientID: recipient, Type: models.NotificationRentReminder,
				Text: "due", RelatedID: &related,
			})
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, created)

	list, err := s.Notifications.ListByRecipient(ctx, recipient, models.NotificationFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMarkPaidAtomicIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	_, ten := seedTenancy(t, s, models.TenancyStatusActive)
	o := rent(ten.ID, utils.Date(2024, 2, 10))
	require.NoError(t, s.Obligations.Create(ctx, o))

	p := models.Payment{
		Method: models.SettlementMethodStripe, ExternalRef: "pi_1",
		Amount: o.Amount, PaidDate: utils.Date(2024, 2, 9),
	}
	first, applied, err := s.Obligations.MarkPaidAtomic(ctx, o.ID, p)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, models.ObligationStatusPaid, first.Status)

	p.PaidDate = utils.Date(2024, 2, 20)
	second, applied, err := s.Obligations.MarkPaidAtomic(ctx, o.ID, p)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, first.PaidDate, second.PaidDate)

	total, err := s.Obligations.SumPaid(ctx, nil)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(10000)))
}

func TestUnitUpdateWithRetryBumpsVersion(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	u, _ := seedTenancy(t, s, models.TenancyStatusPending)

	require.NoError(t, s.Units.UpdateWithRetry(ctx, u.ID, func(stored *models.Unit) error {
		stored.Status = models.UnitStatusDisabled
		return nil
	}))
	got, err := s.Units.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UnitStatusDisabled, got.Status)
	assert.Equal(t, int64(2), got.RowVersion)
}
