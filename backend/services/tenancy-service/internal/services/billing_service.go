package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/config"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/constants"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
	"github.com/stayspot/mono-repo/backend/shared/go-repositories"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
)

// BillingService materializes monthly rent obligations. The
// (tenancy, RENT, due_date) uniqueness constraint is the only bookkeeping:
// any number of overlapping runs converge on the same rows.
type BillingService struct {
	clock
	tenancies   repositories.TenancyRepository
	obligations repositories.ObligationRepository
}

func NewBillingService(cfg *config.Config, store *repositories.Store) *BillingService {
	return &BillingService{
		clock:       newClock(cfg.BusinessLocation),
		tenancies:   store.Tenancies,
		obligations: store.Obligations,
	}
}

var billableStatuses = []models.TenancyStatus{
	models.TenancyStatusConfirmed,
	models.TenancyStatusActive,
}

// GenerateDue creates every missing rent obligation due within horizonDays
// of today for each Confirmed or Active tenancy and returns how many rows
// this run inserted.
func (s *BillingService) GenerateDue(ctx context.Context, horizonDays int) (int, error) {
	horizonDays = clampHorizon(horizonDays)
	tenancies, err := s.tenancies.ListByStatuses(ctx, billableStatuses)
	if err != nil {
		return 0, fmt.Errorf("list billable tenancies: %w", err)
	}

	today := s.Today()
	until := today.AddDate(0, 0, horizonDays)
	created, failed := 0, 0
	for _, t := range tenancies {
		if ctx.Err() != nil {
			return created, ctx.Err()
		}
		n, err := s.generateForTenancy(ctx, t, today, until)
		created += n
		if err != nil {
			failed++
			utils.Logger.WithError(err).WithField("tenancyID", t.ID).Error("Billing failed for tenancy")
		}
	}

	utils.Logger.WithFields(logrus.Fields{
		"tenancies": len(tenancies),
		"created":   created,
		"failed":    failed,
		"until":     until.Format(utils.DateLayout),
	}).Info("Billing run finished")
	return created, nil
}

func (s *BillingService) generateForTenancy(ctx context.Context, t *models.Tenancy, today, until time.Time) (int, error) {
	latest, err := s.obligations.LatestRentDueDate(ctx, t.ID)
	if err != nil {
		return 0, err
	}
	k := 1
	if latest != nil {
		k = monthsBetween(t.StartDate, *latest) + 1
	}

	created := 0
	for {
		due := RentDueDate(t, k)
		if due.After(until) || (t.EndDate != nil && due.After(*t.EndDate)) {
			return created, nil
		}
		o := &models.Obligation{
			ID:        uuid.New(),
			TenancyID: t.ID,
			Kind:      models.ObligationKindRent,
			Amount:    t.MonthlyRent,
			DueDate:   due,
			Status:    models.ObligationStatusPending,
		}
		o.NormalizeOverdue(today)
		ok, err := s.obligations.CreateIfNotExists(ctx, o)
		if err != nil {
			return created, fmt.Errorf("create rent due %s: %w", due.Format(utils.DateLayout), err)
		}
		if ok {
			created++
		}
		k++
	}
}

// RentDueDate is the k-th monthly due date of t, k >= 1. The first cycle is
// clamped to the end date for tenancies shorter than a month.
func RentDueDate(t *models.Tenancy, k int) time.Time {
	due := utils.AddMonthsClamped(t.StartDate, k)
	if k == 1 && t.EndDate != nil && due.After(*t.EndDate) {
		return *t.EndDate
	}
	return due
}

// monthsBetween counts calendar months from a to b, ignoring the day.
func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

func clampHorizon(days int) int {
	if days <= 0 {
		return constants.DefaultHorizonDays
	}
	if days > constants.MaxHorizonDays {
		return constants.MaxHorizonDays
	}
	return days
}
