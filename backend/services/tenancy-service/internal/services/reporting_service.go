package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/config"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/constants"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/dtos"
	internal_utils "github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/utils"
	shared_dtos "github.com/stayspot/mono-repo/backend/shared/go-dtos"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
	"github.com/stayspot/mono-repo/backend/shared/go-repositories"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
)

// ReportingService composes dashboard figures on demand. It holds no state.
type ReportingService struct {
	clock
	store *repositories.Store
}

func NewReportingService(cfg *config.Config, store *repositories.Store) *ReportingService {
	return &ReportingService{clock: newClock(cfg.BusinessLocation), store: store}
}

func (s *ReportingService) DashboardStats(ctx context.Context, actor models.Actor) (*dtos.DashboardStats, error) {
	if !actor.IsAdmin() {
		return nil, internal_utils.NewValidationError(internal_utils.ReasonUnauthorized, "admin only")
	}
	today := s.Today()

	units, err := s.store.Units.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	tenancies, err := s.store.Tenancies.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	obligations, err := s.store.Obligations.CountByStatus(ctx, today)
	if err != nil {
		return nil, err
	}
	total, err := s.store.Obligations.SumPaid(ctx, nil)
	if err != nil {
		return nil, err
	}
	monthStart := utils.MonthStart(today)
	thisMonth, err := s.store.Obligations.SumPaid(ctx, &monthStart)
	if err != nil {
		return nil, err
	}
	recent, err := s.store.Notifications.ListRecent(ctx, constants.RecentActivityLimit)
	if err != nil {
		return nil, err
	}

	return &dtos.DashboardStats{
		UnitsByStatus:       units,
		TenanciesByStatus:   tenancies,
		ObligationsByStatus: obligations,
		TotalRevenue:        total.StringFixed(2),
		RevenueThisMonth:    thisMonth.StringFixed(2),
		RecentActivity:      shared_dtos.NewNotificationsFromModels(recent),
	}, nil
}

// OwnerStats summarizes the caller's own listings.
func (s *ReportingService) OwnerStats(ctx context.Context, actor models.Actor) (*dtos.OwnerStats, error) {
	if actor.Role != models.RoleOwner && !actor.IsAdmin() {
		return nil, internal_utils.NewValidationError(internal_utils.ReasonUnauthorized, "owner only")
	}
	ownerID := actor.ID
	units, err := s.store.Units.List(ctx, models.UnitFilter{OwnerID: &ownerID})
	if err != nil {
		return nil, err
	}

	stats := &dtos.OwnerStats{
		UnitsByStatus:   make(map[models.UnitStatus]int),
		RevenueReceived: decimal.Zero.StringFixed(2),
		Outstanding:     decimal.Zero.StringFixed(2),
	}
	if len(units) == 0 {
		return stats, nil
	}
	unitIDs := make([]uuid.UUID, len(units))
	for i, u := range units {
		stats.UnitsByStatus[u.Status]++
		unitIDs[i] = u.ID
	}

	tenancies, err := s.store.Tenancies.ListByUnitIDs(ctx, unitIDs)
	if err != nil {
		return nil, err
	}
	tenancyIDs := make([]uuid.UUID, 0, len(tenancies))
	for _, t := range tenancies {
		switch t.Status {
		case models.TenancyStatusActive:
			stats.ActiveTenants++
		case models.TenancyStatusPending:
			stats.PendingRequests++
		}
		tenancyIDs = append(tenancyIDs, t.ID)
	}
	if len(tenancyIDs) == 0 {
		return stats, nil
	}

	obligations, err := s.store.Obligations.ListByTenancyIDs(ctx, tenancyIDs)
	if err != nil {
		return nil, err
	}
	received, outstanding := decimal.Zero, decimal.Zero
	for _, o := range obligations {
		if o.IsPaid() {
			received = received.Add(o.Amount)
		} else {
			outstanding = outstanding.Add(o.Amount)
		}
	}
	stats.RevenueReceived = received.StringFixed(2)
	stats.Outstanding = outstanding.StringFixed(2)
	return stats, nil
}
