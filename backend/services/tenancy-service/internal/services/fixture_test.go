package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/config"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/dtos"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/events"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/realtime"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/settlement"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
	"github.com/stayspot/mono-repo/backend/shared/go-testhelpers"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type fixture struct {
	h   *testhelpers.TestHelper
	ctx context.Context
	cfg *config.Config
	bus *events.Bus
	hub *realtime.Hub

	notifications *NotificationService
	lifecycle     *LifecycleService
	billing       *BillingService
	reminders     *ReminderService
	settlements   *SettlementService
	obligations   *ObligationService
	reporting     *ReportingService

	mu     sync.Mutex
	emails []*mail.SGMailV3
	texts  []*twilioApi.CreateMessageParams

	owner  models.Actor
	renter models.Actor
	admin  models.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	h := testhelpers.NewMemoryHelper(t)
	cfg := &config.Config{
		OrganizationName:   "StaySpot",
		AppName:            "tenancy-service",
		Env:                "test",
		BusinessLocation:   time.UTC,
		BillingHorizonDays: 7,
		ReminderWindowDays: 7,
		SecurityAlertEmail: "security@stayspot.test",
		SecurityAlertPhone: "+9779800000000",
		TwilioFromPhone:    "+15550000000",
	}

	f := &fixture{
		h:      h,
		ctx:    h.Ctx,
		cfg:    cfg,
		bus:    events.NewBus(),
		hub:    realtime.NewHub(),
		owner:  testhelpers.NewActor(models.RoleOwner),
		renter: testhelpers.NewActor(models.RoleTenant),
		admin:  testhelpers.NewActor(models.RoleAdmin),
	}

	alerts := NewAlertServiceWithSenders(cfg,
		func(m *mail.SGMailV3) error {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.emails = append(f.emails, m)
			return nil
		},
		func(p *twilioApi.CreateMessageParams) error {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.texts = append(f.texts, p)
			return nil
		},
	)

	f.notifications = NewNotificationService(h.Store, f.hub)
	f.notifications.Subscribe(f.bus)
	f.lifecycle = NewLifecycleService(cfg, h.Store, f.bus)
	f.billing = NewBillingService(cfg, h.Store)
	f.reminders = NewReminderService(cfg, h.Store, f.notifications)
	f.obligations = NewObligationService(cfg, h.Store, f.lifecycle)
	f.reporting = NewReportingService(cfg, h.Store)
	f.settlements = NewSettlementService(cfg, h.Store, f.lifecycle, alerts, f.bus,
		settlement.NewStripeAdapter(h.StripeWebhookSecret, nil, time.Second),
		settlement.NewEsewaAdapter(h.EsewaSecretKey),
	)

	for _, c := range []interface{ SetClock(func() time.Time) }{
		&f.notifications.clock, &f.lifecycle.clock, &f.billing.clock, &f.reminders.clock,
		&f.obligations.clock, &f.reporting.clock, &f.settlements.clock,
	} {
		c.SetClock(h.Clock.Now)
	}
	return f
}

func (f *fixture) setDate(y int, m time.Month, d int) {
	f.h.Clock.SetDate(y, m, d)
}

// availableUnit creates an approved unit owned by f.owner.
func (f *fixture) availableUnit() *models.Unit {
	return f.h.CreateTestUnit(f.owner, models.UnitStatusAvailable, 10000)
}

// request books unit for f.renter through the lifecycle service.
func (f *fixture) request(t *testing.T, unit *models.Unit, start string, end *string, deposit *string) *models.Tenancy {
	t.Helper()
	ten, err := f.lifecycle.RequestTenancy(f.ctx, f.renter, dtos.RequestTenancyRequest{
		UnitID:    unit.ID.String(),
		StartDate: start,
		EndDate:   end,
		Deposit:   deposit,
	})
	require.NoError(t, err)
	return ten
}

// activeTenancy seeds a tenancy that already holds its unit.
func (f *fixture) activeTenancy(start time.Time, end *time.Time) (*models.Unit, *models.Tenancy) {
	u := f.h.CreateTestUnit(f.owner, models.UnitStatusRented, 10000)
	ten := f.h.CreateTestTenancy(u, f.renter, models.TenancyStatusActive, start, end)
	return u, ten
}

func (f *fixture) inbox(t *testing.T, who uuid.UUID) []*models.NotificationRecord {
	t.Helper()
	list, _, err := f.notifications.List(f.ctx, who, models.NotificationFilter{Limit: 100})
	require.NoError(t, err)
	return list
}

func (f *fixture) inboxOfType(t *testing.T, who uuid.UUID, typ models.NotificationType) []*models.NotificationRecord {
	t.Helper()
	var out []*models.NotificationRecord
	for _, n := range f.inbox(t, who) {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

func (f *fixture) stripeConfirmation(obligationID uuid.UUID, amountMinor int64) settlement.Confirmation {
	payload := testhelpers.StripeIntentSucceededPayload(obligationID, amountMinor)
	return settlement.Confirmation{Payload: payload, Signature: f.h.SignStripePayload(payload)}
}

func (f *fixture) esewaConfirmation(t *testing.T, obligationID uuid.UUID, amount string) settlement.Confirmation {
	t.Helper()
	fields := testhelpers.EsewaFields(obligationID, amount)
	fields["signature"] = settlement.EsewaSign([]byte(f.h.EsewaSecretKey), fields)
	b, err := json.Marshal(fields)
	require.NoError(t, err)
	return settlement.Confirmation{Payload: []byte(base64.StdEncoding.EncodeToString(b))}
}

func ptr(s string) *string { return &s }

func date(y int, m time.Month, d int) time.Time { return utils.Date(y, m, d) }
