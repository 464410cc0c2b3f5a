package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/config"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/dtos"
	internal_utils "github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/utils"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
	"github.com/stayspot/mono-repo/backend/shared/go-repositories"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
)

// ObligationService serves obligation reads with derived Overdue applied,
// manual charges and administrative overrides.
type ObligationService struct {
	clock
	store     *repositories.Store
	lifecycle *LifecycleService
}

func NewObligationService(cfg *config.Config, store *repositories.Store, lifecycle *LifecycleService) *ObligationService {
	return &ObligationService{
		clock:     newClock(cfg.BusinessLocation),
		store:     store,
		lifecycle: lifecycle,
	}
}

func (s *ObligationService) ListForTenancy(ctx context.Context, actor models.Actor, tenancyID uuid.UUID) ([]*models.Obligation, error) {
	t, unit, err := s.lifecycle.load(ctx, tenancyID)
	if err != nil {
		return nil, err
	}
	if !canViewTenancy(actor, t, unit) {
		return nil, internal_utils.NewValidationError(internal_utils.ReasonUnauthorized, "not a party to tenancy %s", tenancyID)
	}
	list, err := s.store.Obligations.ListByTenancy(ctx, tenancyID)
	if err != nil {
		return nil, err
	}
	return s.normalized(ctx, list), nil
}

// ListMine returns a renter's own obligations, or for an owner every
// obligation on their units.
func (s *ObligationService) ListMine(ctx context.Context, actor models.Actor) ([]*models.Obligation, error) {
	var (
		list []*models.Obligation
		err  error
	)
	switch actor.Role {
	case models.RoleOwner:
		ownerID := actor.ID
		units, err := s.store.Units.List(ctx, models.UnitFilter{OwnerID: &ownerID})
		if err != nil {
			return nil, err
		}
		if len(units) == 0 {
			return []*models.Obligation{}, nil
		}
		unitIDs := make([]uuid.UUID, len(units))
		for i, u := range units {
			unitIDs[i] = u.ID
		}
		tenancies, err := s.store.Tenancies.ListByUnitIDs(ctx, unitIDs)
		if err != nil {
			return nil, err
		}
		ids := make([]uuid.UUID, len(tenancies))
		for i, t := range tenancies {
			ids[i] = t.ID
		}
		if len(ids) == 0 {
			return []*models.Obligation{}, nil
		}
		list, err = s.store.Obligations.ListByTenancyIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
	default:
		list, err = s.store.Obligations.ListByRenter(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
	}
	return s.normalized(ctx, list), nil
}

// AddCharge records a deposit or maintenance charge against a tenancy.
func (s *ObligationService) AddCharge(
	ctx context.Context,
	actor models.Actor,
	tenancyID uuid.UUID,
	req dtos.CreateChargeRequest,
) (*models.Obligation, error) {
	t, unit, err := s.lifecycle.load(ctx, tenancyID)
	if err != nil {
		return nil, err
	}
	if !canManageTenancy(actor, unit) {
		return nil, internal_utils.NewValidationError(internal_utils.ReasonUnauthorized, "only the owner or an admin may add charges")
	}
	kind := models.ObligationKind(req.Kind)
	if kind != models.ObligationKindDeposit && kind != models.ObligationKindMaintenance {
		return nil, internal_utils.NewValidationError(internal_utils.ReasonInvalidPayload, "kind must be DEPOSIT or MAINTENANCE")
	}
	if t.Status == models.TenancyStatusRejected || t.Status == models.TenancyStatusCancelled {
		return nil, internal_utils.NewValidationError(internal_utils.ReasonInvalidTransition,
			"tenancy %s is %s", t.ID, t.Status)
	}
	amount, err := parseAmount(req.Amount, "amount")
	if err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, internal_utils.NewValidationError(internal_utils.ReasonInvalidPayload, "amount must be positive")
	}
	due, err := parseDate(req.DueDate, "due_date")
	if err != nil {
		return nil, err
	}

	o := &models.Obligation{
		ID:        uuid.New(),
		TenancyID: t.ID,
		Kind:      kind,
		Amount:    amount,
		DueDate:   due,
		Status:    models.ObligationStatusPending,
	}
	o.NormalizeOverdue(s.Today())
	if err := s.store.Obligations.Create(ctx, o); err != nil {
		return nil, err
	}
	utils.Logger.WithFields(logrus.Fields{"obligationID": o.ID, "tenancyID": t.ID, "kind": kind}).Info("Charge added")
	return o, nil
}

// Override sets any status on an obligation. Only admins may do this and
// each override is written to the audit log with its reason.
func (s *ObligationService) Override(
	ctx context.Context,
	actor models.Actor,
	id uuid.UUID,
	req dtos.OverrideObligationRequest,
) (*models.Obligation, error) {
	if !actor.IsAdmin() {
		return nil, internal_utils.NewValidationError(internal_utils.ReasonUnauthorized, "only admins may override obligation status")
	}
	status := models.ObligationStatus(req.Status)
	if !status.Valid() {
		return nil, internal_utils.NewValidationError(internal_utils.ReasonInvalidOverride, "unknown status %q", req.Status)
	}

	before, after, err := s.store.Obligations.OverrideStatusAtomic(ctx, id, status)
	if err != nil {
		if isNotFound(err) {
			return nil, internal_utils.NewNotFoundError("obligation", id)
		}
		return nil, err
	}

	details, _ := models.NewAuditDetails(map[string]any{
		"before": before.Status,
		"after":  after.Status,
		"reason": req.Reason,
	})
	if err := s.store.AuditLogs.Create(ctx, &models.AdminAuditLog{
		ID:         uuid.New(),
		AdminID:    actor.ID,
		Action:     models.AuditOverrideStatus,
		TargetID:   id,
		TargetType: models.TargetObligation,
		Details:    details,
	}); err != nil {
		utils.Logger.WithError(err).WithField("obligationID", id).Error("Failed to write override audit log")
	}
	utils.Logger.WithFields(logrus.Fields{
		"obligationID": id, "before": before.Status, "after": after.Status, "adminID": actor.ID,
	}).Warn("Obligation status overridden")
	return after, nil
}

func (s *ObligationService) normalized(ctx context.Context, list []*models.Obligation) []*models.Obligation {
	today := s.Today()
	persistOverdue(ctx, s.store.Obligations, normalizeOverdue(list, today), today)
	return list
}
