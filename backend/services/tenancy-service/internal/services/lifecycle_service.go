package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/config"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/dtos"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/events"
	internal_utils "github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/utils"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
	"github.com/stayspot/mono-repo/backend/shared/go-repositories"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
)

// errNoChange aborts an atomic transition without an error surfacing.
var errNoChange = errors.New("no_change")

// LifecycleService owns the coupled Unit/Tenancy state machine.
type LifecycleService struct {
	clock
	store  *repositories.Store
	events events.Publisher
}

func NewLifecycleService(cfg *config.Config, store *repositories.Store, pub events.Publisher) *LifecycleService {
	return &LifecycleService{
		clock:  newClock(cfg.BusinessLocation),
		store:  store,
		events: pub,
	}
}

/* ---------- units ---------- */

func (s *LifecycleService) CreateUnit(ctx context.Context, actor models.Actor, req dtos.CreateUnitRequest) (*models.Unit, error) {
	if actor.Role != models.RoleOwner && !actor.IsAdmin() {
		return nil, internal_utils.NewValidationError(internal_utils.ReasonUnauthorized, "only owners may list units")
	}
	price, err := parseAmount(req.MonthlyPrice, "monthly_price")
	if err != nil {
		return nil, err
	}
	ownerID := actor.ID
	if req.OwnerID != nil {
		if !actor.IsAdmin() {
			return nil, internal_utils.NewValidationError(internal_utils.ReasonUnauthorized, "only admins may list units for another owner")
		}
		if ownerID, err = parseID(*req.OwnerID, "owner_id"); err != nil {
			return nil, err
		}
	}

	u := &models.Unit{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Title:        req.Title,
		MonthlyPrice: price,
		Status:       models.UnitStatusPendingVerification,
	}
	if err := s.store.Units.Create(ctx, u); err != nil {
		return nil, err
	}
	utils.Logger.WithFields(logrus.Fields{"unitID": u.ID, "ownerID": u.OwnerID}).Info("Unit created, awaiting verification")
	return u, nil
}

func (s *LifecycleService) ListUnits(ctx context.Context, filter models.UnitFilter) ([]*models.Unit, error) {
	return s.store.Units.List(ctx, filter)
}

// ModerateUnit applies an administrative action to a unit. It never looks at
// tenancies: Disabled takes precedence over any paired status, and Approve is
// refused on a unit that is Occupied or Rented.
func (s *LifecycleService) ModerateUnit(
	ctx context.Context,
	actor models.Actor,
	unitID uuid.UUID,
	action models.ModerationAction,
) (*models.Unit, error) {
	if !actor.IsAdmin() {
		return nil, internal_utils.NewValidationError(internal_utils.ReasonUnauthorized, "only admins may moderate units")
	}
	target, ok := action.TargetStatus()
	if !ok {
		return nil, internal_utils.NewValidationError(internal_utils.ReasonInvalidPayload, "unknown moderation action %q", action)
	}

	var before models.UnitStatus
	err := s.store.Units.UpdateWithRetry(ctx, unitID, func(u *models.Unit) error {
		if !action.AppliesTo(u.Status) {
			return internal_utils.NewValidationError(internal_utils.ReasonInvalidTransition,
				"cannot %s unit %s while it is %s", strings.ToLower(string(action)), u.ID, u.Status)
		}
		before = u.Status
		u.Status = target
		return nil
	})
	if err != nil {
		if errors.Is(err, utils.ErrNoRowsUpdated) || isNotFound(err) {
			return nil, internal_utils.NewNotFoundError("unit", unitID)
		}
		return nil, err
	}
	unit, err := s.store.Units.GetByID(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, internal_utils.NewNotFoundError("unit", unitID)
	}

	details, _ := models.NewAuditDetails(map[string]any{
		"action": action,
		"before": before,
		"after":  unit.Status,
	})
	if err := s.store.AuditLogs.Create(ctx, &models.AdminAuditLog{
		ID:         uuid.New(),
		AdminID:    actor.ID,
		Action:     models.AuditModerate,
		TargetID:   unitID,
		TargetType: models.TargetUnit,
		Details:    details,
	}); err != nil {
		utils.Logger.WithError(err).WithField("unitID", unitID).Error("Failed to write moderation audit log")
	}

	utils.Logger.WithFields(logrus.Fields{
		"unitID": unitID, "action": action, "before": before, "after": unit.Status,
	}).Info("Unit moderated")
	if s.events != nil {
		s.events.Publish(ctx, events.Event{
			Type:       events.UnitModerated,
			OccurredAt: s.Now(),
			Actor:      actor,
			UnitID:     unit.ID,
			UnitTitle:  unit.Title,
			OwnerID:    unit.OwnerID,
			UnitStatus: unit.Status,
		})
	}
	return unit, nil
}

/* ---------- tenancies ---------- */

// RequestTenancy records a renter's booking request against an available unit.
func (s *LifecycleService) RequestTenancy(
	ctx context.Context,
	actor models.Actor,
	req dtos.RequestTenancyRequest,
) (*models.Tenancy, error) {
	if actor.IsSystem() {
		return nil, internal_utils.NewValidationError(internal_utils.ReasonUnauthorized, "system cannot book units")
	}
	unitID, err := parseID(req.UnitID, "unit_id")
	if err != nil {
		return nil, err
	}
	start, err := parseDate(req.StartDate, "start_date")
	if err != nil {
		return nil, err
	}
	var end *time.Time
	if req.EndDate != nil {
		e, err := parseDate(*req.EndDate, "end_date")
		if err != nil {
			return nil, err
		}
		if !e.After(start) {
			return nil, internal_utils.NewValidationError(internal_utils.ReasonInvalidPayload, "end_date must be after start_date")
		}
		end = &e
	}
	var deposit *decimal.Decimal
	if req.Deposit != nil {
		d, err := parseAmount(*req.Deposit, "deposit")
		if err != nil {
			return nil, err
		}
		if d.IsPositive() {
			deposit = &d
		}
	}

	unit, err := s.store.Units.GetByID(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, internal_utils.NewNotFoundError("unit", unitID)
	}
	if unit.OwnerID == actor.ID {
		return nil, internal_utils.NewValidationError(internal_utils.ReasonUnauthorized, "owners cannot book their own unit")
	}
	if unit.Status != models.UnitStatusAvailable {
		return nil, internal_utils.NewValidationError(internal_utils.ReasonUnitUnavailable, "unit %s is %s", unit.ID, unit.Status)
	}

	t := &models.Tenancy{
		ID:          uuid.New(),
		RenterID:    actor.ID,
		UnitID:      unit.ID,
		Status:      models.TenancyStatusPending,
		StartDate:   start,
		EndDate:     end,
		MonthlyRent: unit.MonthlyPrice,
	}
	var initial []*models.Obligation
	if deposit != nil {
		o := &models.Obligation{
			ID:        uuid.New(),
			TenancyID: t.ID,
			Kind:      models.ObligationKindDeposit,
			Amount:    *deposit,
			DueDate:   start,
			Status:    models.ObligationStatusPending,
		}
		o.NormalizeOverdue(s.Today())
		initial = append(initial, o)
	}
	if err := s.store.Tenancies.Create(ctx, t, initial...); err != nil {
		return nil, fmt.Errorf("create tenancy: %w", err)
	}

	utils.Logger.WithFields(logrus.Fields{"tenancyID": t.ID, "unitID": unit.ID, "renterID": actor.ID}).
		Info("Tenancy requested")
	s.publish(ctx, actor, t, unit, "")
	return t, nil
}

// GetTenancy returns the tenancy with its unit and obligations, derived
// Overdue applied.
func (s *LifecycleService) GetTenancy(
	ctx context.Context,
	actor models.Actor,
	id uuid.UUID,
) (*models.Tenancy, *models.Unit, []*models.Obligation, error) {
	t, unit, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	if !canViewTenancy(actor, t, unit) {
		return nil, nil, nil, internal_utils.NewValidationError(internal_utils.ReasonUnauthorized, "not a party to tenancy %s", id)
	}
	obligations, err := s.store.Obligations.ListByTenancy(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	today := s.Today()
	persistOverdue(ctx, s.store.Obligations, normalizeOverdue(obligations, today), today)
	return t, unit, obligations, nil
}

// Transition moves a tenancy to next on behalf of actor. The status observed
// here is re-checked under lock; losing a race yields ConflictError.
func (s *LifecycleService) Transition(
	ctx context.Context,
	id uuid.UUID,
	next models.TenancyStatus,
	actor models.Actor,
) (*models.TenancyChange, error) {
	if !next.Valid() {
		return nil, internal_utils.NewValidationError(internal_utils.ReasonInvalidPayload, "unknown status %q", next)
	}
	t, unit, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeTransition(actor, t, unit, next); err != nil {
		return nil, err
	}
	if err := checkTransition(t, unit, next); err != nil {
		return nil, err
	}
	observed := t.Status

	change, err := s.store.Tenancies.TransitionAtomic(ctx, id, func(current *models.Tenancy, lockedUnit *models.Unit) (repositories.TransitionPlan, error) {
		if current.Status != observed {
			return repositories.TransitionPlan{}, internal_utils.NewConflictError(
				internal_utils.ConflictAlreadyTransitioned, current,
				"tenancy %s moved to %s concurrently", current.ID, current.Status)
		}
		if err := checkTransition(current, lockedUnit, next); err != nil {
			return repositories.TransitionPlan{}, err
		}
		return planFor(current.Status, next, lockedUnit), nil
	})
	if err != nil {
		return nil, s.mapTransitionError(ctx, id, err)
	}

	utils.Logger.WithFields(logrus.Fields{
		"tenancyID": id,
		"from":      change.FromStatus,
		"to":        change.Tenancy.Status,
		"unit":      change.Unit.Status,
		"actor":     actor.Role,
	}).Info("Tenancy transitioned")
	s.publish(ctx, actor, change.Tenancy, change.Unit, change.FromStatus)
	return change, nil
}

// ActivateStarted moves confirmed tenancies whose start date has arrived to
// Active. Failures are isolated per tenancy.
func (s *LifecycleService) ActivateStarted(ctx context.Context) (int, error) {
	confirmed, err := s.store.Tenancies.ListByStatuses(ctx, []models.TenancyStatus{models.TenancyStatusConfirmed})
	if err != nil {
		return 0, fmt.Errorf("list confirmed tenancies: %w", err)
	}
	today := s.Today()
	activated, failed := 0, 0
	for _, t := range confirmed {
		if ctx.Err() != nil {
			break
		}
		if t.StartDate.After(today) {
			continue
		}
		if _, err := s.Transition(ctx, t.ID, models.TenancyStatusActive, models.SystemActor); err != nil {
			if errors.Is(err, internal_utils.ErrAlreadyTransitioned) {
				continue
			}
			failed++
			utils.Logger.WithError(err).WithField("tenancyID", t.ID).Error("Failed to activate tenancy")
			continue
		}
		activated++
	}
	utils.Logger.WithFields(logrus.Fields{"activated": activated, "failed": failed}).Info("Activation sweep finished")
	return activated, nil
}

// ConfirmBySettlement applies the settlement side effects to a still-pending
// tenancy: Pending becomes Confirmed and an Available unit becomes Rented.
// It returns nil, nil when the tenancy or unit has already moved on.
func (s *LifecycleService) ConfirmBySettlement(ctx context.Context, tenancyID uuid.UUID) (*models.TenancyChange, error) {
	change, err := s.store.Tenancies.TransitionAtomic(ctx, tenancyID, func(current *models.Tenancy, unit *models.Unit) (repositories.TransitionPlan, error) {
		if current.Status != models.TenancyStatusPending || unit.Status != models.UnitStatusAvailable {
			return repositories.TransitionPlan{}, errNoChange
		}
		rented := models.UnitStatusRented
		return repositories.TransitionPlan{Status: models.TenancyStatusConfirmed, UnitStatus: &rented}, nil
	})
	if errors.Is(err, errNoChange) {
		return nil, nil
	}
	if err != nil {
		return nil, s.mapTransitionError(ctx, tenancyID, err)
	}
	utils.Logger.WithField("tenancyID", tenancyID).Info("Tenancy confirmed by settlement")
	s.publish(ctx, models.SystemActor, change.Tenancy, change.Unit, change.FromStatus)
	return change, nil
}

// DeleteTenancy removes a tenancy that does not hold its unit.
func (s *LifecycleService) DeleteTenancy(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	t, unit, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !canManageTenancy(actor, unit) {
		return internal_utils.NewValidationError(internal_utils.ReasonUnauthorized, "only the owner or an admin may delete a tenancy")
	}
	if t.Status.IsControlling() {
		return internal_utils.NewValidationError(internal_utils.ReasonInvalidTransition,
			"tenancy %s is %s; end it before deleting", id, t.Status)
	}
	if err := s.store.Tenancies.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return internal_utils.NewNotFoundError("tenancy", id)
		}
		return err
	}
	if actor.IsAdmin() {
		details, _ := models.NewAuditDetails(t)
		if err := s.store.AuditLogs.Create(ctx, &models.AdminAuditLog{
			ID:         uuid.New(),
			AdminID:    actor.ID,
			Action:     models.AuditDelete,
			TargetID:   id,
			TargetType: models.TargetTenancy,
			Details:    details,
		}); err != nil {
			utils.Logger.WithError(err).WithField("tenancyID", id).Error("Failed to write delete audit log")
		}
	}
	utils.Logger.WithField("tenancyID", id).Info("Tenancy deleted")
	if s.events != nil {
		s.events.Publish(ctx, events.Event{
			Type:       events.TenancyDeleted,
			OccurredAt: s.Now(),
			Actor:      actor,
			TenancyID:  t.ID,
			UnitID:     unit.ID,
			UnitTitle:  unit.Title,
			RenterID:   t.RenterID,
			OwnerID:    unit.OwnerID,
			FromStatus: t.Status,
		})
	}
	return nil
}

/* ---------- internals ---------- */

func (s *LifecycleService) load(ctx context.Context, id uuid.UUID) (*models.Tenancy, *models.Unit, error) {
	t, err := s.store.Tenancies.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if t == nil {
		return nil, nil, internal_utils.NewNotFoundError("tenancy", id)
	}
	unit, err := s.store.Units.GetByID(ctx, t.UnitID)
	if err != nil {
		return nil, nil, err
	}
	if unit == nil {
		return nil, nil, internal_utils.NewNotFoundError("unit", t.UnitID)
	}
	return t, unit, nil
}

// checkTransition validates the state machine edge and unit availability.
func checkTransition(t *models.Tenancy, unit *models.Unit, next models.TenancyStatus) error {
	if t.Status.IsTerminal() {
		return internal_utils.NewValidationError(internal_utils.ReasonInvalidTransition,
			"tenancy %s is %s, a terminal status", t.ID, t.Status)
	}
	if !t.Status.CanTransitionTo(next) {
		return internal_utils.NewValidationError(internal_utils.ReasonInvalidTransition,
			"cannot move tenancy from %s to %s", t.Status, next)
	}
	if next == models.TenancyStatusConfirmed &&
		(unit.Status == models.UnitStatusDisabled || unit.Status == models.UnitStatusPendingVerification) {
		return internal_utils.NewValidationError(internal_utils.ReasonUnitUnavailable, "unit %s is %s", unit.ID, unit.Status)
	}
	return nil
}

func planFor(from, next models.TenancyStatus, unit *models.Unit) repositories.TransitionPlan {
	plan := repositories.TransitionPlan{Status: next}
	if us, ok := models.PairedUnitStatus(from, next, unit.Status); ok {
		plan.UnitStatus = &us
	}
	return plan
}

func (s *LifecycleService) mapTransitionError(ctx context.Context, id uuid.UUID, err error) error {
	switch {
	case isNotFound(err):
		return internal_utils.NewNotFoundError("tenancy", id)
	case errors.Is(err, utils.ErrUnitAlreadyControlled):
		current, _ := s.store.Tenancies.GetByID(ctx, id)
		return internal_utils.NewConflictError(internal_utils.ConflictUnitAlreadyControlled, current,
			"another tenancy already holds this unit")
	}
	return err
}

func (s *LifecycleService) publish(
	ctx context.Context,
	actor models.Actor,
	t *models.Tenancy,
	unit *models.Unit,
	from models.TenancyStatus,
) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, events.Event{
		Type:       events.TenancyStatusChanged,
		OccurredAt: s.Now(),
		Actor:      actor,
		TenancyID:  t.ID,
		UnitID:     unit.ID,
		UnitTitle:  unit.Title,
		RenterID:   t.RenterID,
		OwnerID:    unit.OwnerID,
		FromStatus: from,
		ToStatus:   t.Status,
	})
}

// persistOverdue writes derived Overdue back. Failure only costs a later
// re-derivation, so it is logged and swallowed.
func persistOverdue(ctx context.Context, repo repositories.ObligationRepository, ids []uuid.UUID, today time.Time) {
	if len(ids) == 0 {
		return
	}
	if _, err := repo.MarkOverdue(ctx, ids, today); err != nil {
		utils.Logger.WithError(err).WithField("count", len(ids)).Warn("Failed to persist derived overdue status")
	}
}
