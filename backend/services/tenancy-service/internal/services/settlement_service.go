package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/config"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/events"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/settlement"
	internal_utils "github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/utils"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
	"github.com/stayspot/mono-repo/backend/shared/go-repositories"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
)

// SettlementService credits obligations from verified provider callbacks.
// Replaying a confirmation returns the already-paid obligation without
// crediting or notifying a second time.
type SettlementService struct {
	clock
	store     *repositories.Store
	lifecycle *LifecycleService
	alerts    *AlertService
	events    events.Publisher
	adapters  map[models.SettlementMethod]settlement.Adapter
}

func NewSettlementService(
	cfg *config.Config,
	store *repositories.Store,
	lifecycle *LifecycleService,
	alerts *AlertService,
	pub events.Publisher,
	adapters ...settlement.Adapter,
) *SettlementService {
	s := &SettlementService{
		clock:     newClock(cfg.BusinessLocation),
		store:     store,
		lifecycle: lifecycle,
		alerts:    alerts,
		events:    pub,
		adapters:  make(map[models.SettlementMethod]settlement.Adapter, len(adapters)),
	}
	for _, a := range adapters {
		s.adapters[a.Method()] = a
	}
	return s
}

// Settle verifies c with the adapter for method and applies the payment.
func (s *SettlementService) Settle(
	ctx context.Context,
	method models.SettlementMethod,
	c settlement.Confirmation,
) (o *models.Obligation, alreadySettled bool, err error) {
	adapter, ok := s.adapters[method]
	if !ok {
		return nil, false, internal_utils.NewValidationError(internal_utils.ReasonInvalidPayload,
			"settlement method %s is not configured", method)
	}

	res, err := adapter.Verify(ctx, c)
	if err != nil {
		if errors.Is(err, internal_utils.ErrSignatureMismatch) && s.alerts != nil {
			s.alerts.SignatureMismatch(ctx, method, err)
		} else {
			utils.Logger.WithError(err).WithField("method", method).Warn("Settlement confirmation not accepted")
		}
		return nil, false, err
	}
	log := utils.Logger.WithFields(logrus.Fields{
		"method":       method,
		"obligationID": res.ObligationID,
		"externalTxn":  res.ExternalTxnID,
	})

	current, err := s.store.Obligations.GetByID(ctx, res.ObligationID)
	if err != nil {
		return nil, false, err
	}
	if current == nil {
		return nil, false, internal_utils.NewNotFoundError("obligation", res.ObligationID)
	}
	if current.IsPaid() {
		log.Info("Settlement replayed; obligation already paid")
		return current, true, nil
	}
	if res.Amount.LessThan(current.Amount) {
		return nil, false, internal_utils.NewValidationError(internal_utils.ReasonAmountMismatch,
			"received %s but obligation %s is %s", res.Amount.StringFixed(2), current.ID, current.Amount.StringFixed(2))
	}

	paid, applied, err := s.store.Obligations.MarkPaidAtomic(ctx, current.ID, models.Payment{
		Method:      res.Method,
		ExternalRef: res.ExternalTxnID,
		Amount:      res.Amount,
		PaidDate:    s.Today(),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, false, internal_utils.NewNotFoundError("obligation", current.ID)
		}
		return nil, false, err
	}
	if !applied {
		log.Info("Settlement lost race to a concurrent replay")
		return paid, true, nil
	}
	log.Info("Obligation settled")

	t, unit, err := s.lifecycle.load(ctx, paid.TenancyID)
	if err != nil {
		log.WithError(err).Error("Settled obligation has no resolvable tenancy")
		return paid, false, nil
	}
	if t.Status == models.TenancyStatusPending {
		change, err := s.lifecycle.ConfirmBySettlement(ctx, t.ID)
		switch {
		case err != nil:
			log.WithError(err).Warn("Settlement could not confirm pending tenancy")
		case change == nil:
			log.WithField("unitStatus", unit.Status).Warn("Unit not available; tenancy left pending")
		}
	}

	if s.events != nil {
		amount := paid.Amount
		m := res.Method
		id := paid.ID
		s.events.Publish(ctx, events.Event{
			Type:         events.ObligationSettled,
			OccurredAt:   s.Now(),
			Actor:        models.SystemActor,
			TenancyID:    t.ID,
			UnitID:       unit.ID,
			UnitTitle:    unit.Title,
			RenterID:     t.RenterID,
			OwnerID:      unit.OwnerID,
			ObligationID: &id,
			Amount:       &amount,
			Method:       &m,
		})
	}
	return paid, false, nil
}
