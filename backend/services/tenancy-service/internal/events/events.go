// Package events carries committed domain changes to in-process handlers and,
// optionally, to a message broker.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/constants"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
)

type Type string

const (
	TenancyStatusChanged Type = "tenancy_status_changed"
	TenancyDeleted       Type = "tenancy_deleted"
	ObligationSettled    Type = "obligation_settled"
	UnitModerated        Type = "unit_moderated"
)

// RoutingKey is the broker routing key for t.
func (t Type) RoutingKey() string {
	switch t {
	case TenancyStatusChanged:
		return constants.RoutingKeyTenancyChanged
	case TenancyDeleted:
		return constants.RoutingKeyTenancyDeleted
	case ObligationSettled:
		return constants.RoutingKeyObligationSettled
	case UnitModerated:
		return constants.RoutingKeyUnitModerated
	}
	return string(t)
}

type Event struct {
	ID         uuid.UUID    `json:"id"`
	Type       Type         `json:"type"`
	OccurredAt time.Time    `json:"occurred_at"`
	Actor      models.Actor `json:"actor"`

	TenancyID uuid.UUID `json:"tenancy_id"`
	UnitID    uuid.UUID `json:"unit_id"`
	UnitTitle string    `json:"unit_title,omitempty"`
	RenterID  uuid.UUID `json:"renter_id"`
	OwnerID   uuid.UUID `json:"owner_id"`

	FromStatus models.TenancyStatus `json:"from_status,omitempty"`
	ToStatus   models.TenancyStatus `json:"to_status,omitempty"`
	UnitStatus models.UnitStatus    `json:"unit_status,omitempty"`

	ObligationID *uuid.UUID               `json:"obligation_id,omitempty"`
	Amount       *decimal.Decimal         `json:"amount,omitempty"`
	Method       *models.SettlementMethod `json:"method,omitempty"`
}

// Publisher accepts events after the change they describe has committed.
type Publisher interface {
	Publish(ctx context.Context, evt Event)
}

type Handler func(ctx context.Context, evt Event) error

// Mirror forwards serialized events to an external broker.
type Mirror interface {
	PublishJSON(ctx context.Context, key string, v any) error
	Close() error
}

// Bus dispatches synchronously to subscribed handlers. A failing handler is
// logged and never affects the publisher or the remaining handlers.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Type][]Handler
	mirror   Mirror
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[Type][]Handler)}
}

func (b *Bus) Subscribe(t Type, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], h)
}

// SetMirror attaches a broker mirror. Pass nil to detach.
func (b *Bus) SetMirror(m Mirror) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mirror = m
}

func (b *Bus) Publish(ctx context.Context, evt Event) {
	if evt.ID == uuid.Nil {
		evt.ID = uuid.New()
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}

	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[evt.Type]...)
	mirror := b.mirror
	b.mu.RUnlock()

	logger := utils.Logger.WithFields(logrus.Fields{
		"event":     evt.Type,
		"eventID":   evt.ID,
		"tenancyID": evt.TenancyID,
	})
	for _, h := range handlers {
		if err := h(ctx, evt); err != nil {
			logger.WithError(err).Error("Event handler failed")
		}
	}

	if mirror != nil {
		mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.AMQPPublishTimeout)
		defer cancel()
		if err := mirror.PublishJSON(mctx, evt.Type.RoutingKey(), evt); err != nil {
			logger.WithError(err).Warn("Failed to mirror event to broker")
		}
	}
}
