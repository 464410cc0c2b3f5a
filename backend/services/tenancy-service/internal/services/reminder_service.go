package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/config"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
	"github.com/stayspot/mono-repo/backend/shared/go-repositories"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
)

// ReminderService sends at most one rent reminder per obligation.
type ReminderService struct {
	clock
	store    *repositories.Store
	notifier *NotificationService
}

func NewReminderService(cfg *config.Config, store *repositories.Store, notifier *NotificationService) *ReminderService {
	return &ReminderService{
		clock:    newClock(cfg.BusinessLocation),
		store:    store,
		notifier: notifier,
	}
}

type reminderTarget struct {
	tenancy *models.Tenancy
	title   string
}

// DispatchReminders notifies renters of unpaid rent due within windowDays.
// An obligation already reminded is counted as skipped.
func (s *ReminderService) DispatchReminders(ctx context.Context, windowDays int) (sent, skipped int, err error) {
	windowDays = clampHorizon(windowDays)
	today := s.Today()
	due, err := s.store.Obligations.ListRentDueBy(ctx, today.AddDate(0, 0, windowDays))
	if err != nil {
		return 0, 0, fmt.Errorf("list due rent: %w", err)
	}
	persistOverdue(ctx, s.store.Obligations, normalizeOverdue(due, today), today)

	targets := make(map[uuid.UUID]*reminderTarget)
	failed := 0
	for _, o := range due {
		if ctx.Err() != nil {
			return sent, skipped, ctx.Err()
		}
		target, err := s.target(ctx, targets, o.TenancyID)
		if err != nil {
			failed++
			utils.Logger.WithError(err).WithField("obligationID", o.ID).Error("Failed to resolve reminder recipient")
			continue
		}
		if target == nil {
			continue
		}

		text := reminderText(o, target.title, today)
		_, created, err := s.notifier.NotifyOnce(ctx, target.tenancy.RenterID, nil, models.NotificationRentReminder, text, o.ID)
		if err != nil {
			failed++
			utils.Logger.WithError(err).WithField("obligationID", o.ID).Error("Failed to send rent reminder")
			continue
		}
		if created {
			sent++
		} else {
			skipped++
		}
	}

	utils.Logger.WithFields(logrus.Fields{
		"sent": sent, "skipped": skipped, "failed": failed, "window": windowDays,
	}).Info("Reminder run finished")
	return sent, skipped, nil
}

// target resolves the renter and unit title once per tenancy. It returns
// nil for tenancies that ended without ever holding the unit.
func (s *ReminderService) target(ctx context.Context, cache map[uuid.UUID]*reminderTarget, tenancyID uuid.UUID) (*reminderTarget, error) {
	if t, ok := cache[tenancyID]; ok {
		return t, nil
	}
	t, err := s.store.Tenancies.GetByID(ctx, tenancyID)
	if err != nil {
		return nil, err
	}
	if t == nil || t.Status == models.TenancyStatusRejected || t.Status == models.TenancyStatusCancelled {
		cache[tenancyID] = nil
		return nil, nil
	}
	title := "your room"
	if u, err := s.store.Units.GetByID(ctx, t.UnitID); err == nil && u != nil {
		title = u.Title
	}
	target := &reminderTarget{tenancy: t, title: title}
	cache[tenancyID] = target
	return target, nil
}

func reminderText(o *models.Obligation, title string, today time.Time) string {
	rel := RelativeDue(o.DueDate, today)
	if o.DueDate.Before(today) {
		return fmt.Sprintf("Rent of %s for %s %s (%s).",
			formatMoney(o.Amount), title, rel, o.DueDate.Format(utils.DateLayout))
	}
	return fmt.Sprintf("Rent of %s for %s is due %s (%s).",
		formatMoney(o.Amount), title, rel, o.DueDate.Format(utils.DateLayout))
}
