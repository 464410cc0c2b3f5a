package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/constants"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/events"
	internal_utils "github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/utils"
	shared_dtos "github.com/stayspot/mono-repo/backend/shared/go-dtos"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
	"github.com/stayspot/mono-repo/backend/shared/go-repositories"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
)

// ChannelPublisher pushes a payload to a named real-time channel.
type ChannelPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// NotificationService persists a notification and then pushes it to the
// recipient's channel. The stored record is the source of truth; a failed
// push is logged and recovered by the inbox listing.
type NotificationService struct {
	clock
	repo repositories.NotificationRepository
	pub  ChannelPublisher
}

func NewNotificationService(store *repositories.Store, pub ChannelPublisher) *NotificationService {
	return &NotificationService{
		clock: newClock(nil),
		repo:  store.Notifications,
		pub:   pub,
	}
}

// Subscribe attaches the fanout handlers to bus.
func (s *NotificationService) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.TenancyStatusChanged, s.HandleTenancyEvent)
	bus.Subscribe(events.TenancyDeleted, s.HandleTenancyDeleted)
	bus.Subscribe(events.ObligationSettled, s.HandleObligationSettled)
	bus.Subscribe(events.UnitModerated, s.HandleUnitModerated)
}

func (s *NotificationService) newRecord(
	recipient uuid.UUID,
	actor *uuid.UUID,
	typ models.NotificationType,
	text string,
	related *uuid.UUID,
) *models.NotificationRecord {
	return &models.NotificationRecord{
		ID:          uuid.New(),
		RecipientID: recipient,
		ActorID:     actor,
		Type:        typ,
		Text:        text,
		RelatedID:   related,
		CreatedAt:   s.Now(),
	}
}

func (s *NotificationService) Notify(
	ctx context.Context,
	recipient uuid.UUID,
	actor *uuid.UUID,
	typ models.NotificationType,
	text string,
	related *uuid.UUID,
) (*models.NotificationRecord, error) {
	rec := s.newRecord(recipient, actor, typ, text, related)
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("persist notification: %w", err)
	}
	s.deliver(ctx, rec)
	return rec, nil
}

// NotifyOnce creates the record only if none exists for the same
// (recipient, type, related) key. created is false when it already existed.
func (s *NotificationService) NotifyOnce(
	ctx context.Context,
	recipient uuid.UUID,
	actor *uuid.UUID,
	typ models.NotificationType,
	text string,
	related uuid.UUID,
) (rec *models.NotificationRecord, created bool, err error) {
	rec = s.newRecord(recipient, actor, typ, text, &related)
	created, err = s.repo.CreateIfAbsent(ctx, rec)
	if err != nil {
		return nil, false, fmt.Errorf("persist notification: %w", err)
	}
	if !created {
		return nil, false, nil
	}
	s.deliver(ctx, rec)
	return rec, true, nil
}

func (s *NotificationService) deliver(ctx context.Context, rec *models.NotificationRecord) {
	if s.pub == nil {
		return
	}
	payload, err := json.Marshal(shared_dtos.NewNotificationFromModel(rec))
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to encode notification payload")
		return
	}
	channel := models.NotificationChannel(rec.RecipientID)
	if err := s.pub.Publish(ctx, channel, payload); err != nil {
		utils.Logger.WithError(err).WithFields(logrus.Fields{
			"channel":        channel,
			"notificationID": rec.ID,
		}).Warn("Real-time delivery failed; record remains in inbox")
	}
}

func (s *NotificationService) List(
	ctx context.Context,
	recipient uuid.UUID,
	filter models.NotificationFilter,
) ([]*models.NotificationRecord, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = constants.DefaultInboxLimit
	}
	if filter.Limit > constants.MaxInboxLimit {
		filter.Limit = constants.MaxInboxLimit
	}
	list, err := s.repo.ListByRecipient(ctx, recipient, filter)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.repo.CountUnread(ctx, recipient)
	if err != nil {
		return nil, 0, err
	}
	return list, unread, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, recipient, id uuid.UUID) error {
	ok, err := s.repo.MarkRead(ctx, id, recipient)
	if err != nil {
		return err
	}
	if !ok {
		return internal_utils.NewNotFoundError("notification", id)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, recipient uuid.UUID) (int64, error) {
	return s.repo.MarkAllRead(ctx, recipient)
}

// HandleTenancyEvent notifies the counter-party of a committed tenancy
// change. A new request goes to the owner; any later change made by the
// renter goes to the owner, and everything else goes to the renter.
func (s *NotificationService) HandleTenancyEvent(ctx context.Context, evt events.Event) error {
	title := evt.UnitTitle
	if title == "" {
		title = "your unit"
	}

	var (
		recipient uuid.UUID
		text      string
		typ       = models.BookingNotificationType(evt.ToStatus)
	)
	switch {
	case evt.ToStatus == models.TenancyStatusPending:
		recipient = evt.OwnerID
		text = fmt.Sprintf("New booking request for %s.", title)
	case evt.Actor.ID == evt.RenterID && !evt.Actor.IsSystem():
		recipient = evt.OwnerID
		text = fmt.Sprintf("The renter %s the booking for %s.", statusVerb(evt.ToStatus), title)
	default:
		recipient = evt.RenterID
		text = fmt.Sprintf("Your booking for %s was %s.", title, statusVerb(evt.ToStatus))
	}

	_, err := s.Notify(ctx, recipient, evt.Actor.IDPtr(), typ, text, &evt.TenancyID)
	return err
}

// HandleTenancyDeleted tells the renter their booking was withdrawn. Only
// the owner or an admin can delete, so the renter is always the other party.
func (s *NotificationService) HandleTenancyDeleted(ctx context.Context, evt events.Event) error {
	title := evt.UnitTitle
	if title == "" {
		title = "your unit"
	}
	text := fmt.Sprintf("Your booking for %s was cancelled and removed.", title)
	_, err := s.Notify(ctx, evt.RenterID, evt.Actor.IDPtr(), models.NotificationBookingCancelled, text, &evt.TenancyID)
	return err
}

// HandleObligationSettled tells the owner a payment arrived.
func (s *NotificationService) HandleObligationSettled(ctx context.Context, evt events.Event) error {
	if evt.ObligationID == nil || evt.Amount == nil {
		return nil
	}
	via := "online payment"
	if evt.Method != nil {
		via = string(*evt.Method)
	}
	text := fmt.Sprintf("Payment of %s received via %s for %s.", formatMoney(*evt.Amount), via, evt.UnitTitle)
	renter := evt.RenterID
	_, err := s.Notify(ctx, evt.OwnerID, &renter, models.NotificationPaymentReceived, text, evt.ObligationID)
	return err
}

// HandleUnitModerated tells the owner about an administrative action on
// their listing.
func (s *NotificationService) HandleUnitModerated(ctx context.Context, evt events.Event) error {
	var text string
	switch evt.UnitStatus {
	case models.UnitStatusAvailable:
		text = fmt.Sprintf("Your listing %s was approved and is now visible to renters.", evt.UnitTitle)
	case models.UnitStatusDisabled:
		text = fmt.Sprintf("Your listing %s was disabled by an administrator.", evt.UnitTitle)
	default:
		text = fmt.Sprintf("Your listing %s is now %s.", evt.UnitTitle, evt.UnitStatus)
	}
	unitID := evt.UnitID
	_, err := s.Notify(ctx, evt.OwnerID, evt.Actor.IDPtr(), models.NotificationUnitModerated, text, &unitID)
	return err
}

func statusVerb(s models.TenancyStatus) string {
	switch s {
	case models.TenancyStatusConfirmed:
		return "confirmed"
	case models.TenancyStatusRejected:
		return "rejected"
	case models.TenancyStatusCancelled:
		return "cancelled"
	case models.TenancyStatusActive:
		return "activated"
	case models.TenancyStatusCompleted:
		return "completed"
	}
	return "updated"
}
