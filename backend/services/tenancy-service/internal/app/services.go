package app

import (
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/events"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/realtime"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/services"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/settlement"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
	"github.com/stripe/stripe-go/v82"
)

// Services is the wired service graph shared by the HTTP server and the
// ops CLI.
type Services struct {
	Bus *events.Bus
	Hub *realtime.Hub

	Lifecycle     *services.LifecycleService
	Billing       *services.BillingService
	Reminders     *services.ReminderService
	Notifications *services.NotificationService
	Obligations   *services.ObligationService
	Settlements   *services.SettlementService
	Reporting     *services.ReportingService
	Alerts        *services.AlertService

	mirror events.Mirror
}

// BuildServices wires every service against the app's store. Committed
// events fan out to notifications and, when enabled, to the AMQP mirror.
func (a *App) BuildServices() *Services {
	cfg := a.Config
	bus := events.NewBus()
	hub := realtime.NewHub()

	s := &Services{Bus: bus, Hub: hub}
	if cfg.LDFlag_AMQPEventMirror && cfg.AMQPUrl != "" {
		mirror, err := events.NewAMQPPublisher(cfg.AMQPUrl, cfg.AMQPExchange)
		if err != nil {
			utils.Logger.WithError(err).Error("AMQP event mirror unavailable; continuing without it")
		} else {
			bus.SetMirror(mirror)
			s.mirror = mirror
			utils.Logger.Infof("Mirroring domain events to AMQP exchange %s", cfg.AMQPExchange)
		}
	}

	var fetch settlement.IntentFetcher
	if cfg.StripeSecretKey != "" {
		fetch = settlement.NewStripeIntentFetcher(stripe.NewClient(cfg.StripeSecretKey))
	} else {
		utils.Logger.Warn("STRIPE_SECRET_KEY not set; Stripe intents are trusted from the signed webhook")
	}

	s.Notifications = services.NewNotificationService(a.Store, hub)
	s.Notifications.Subscribe(bus)
	s.Alerts = services.NewAlertService(cfg)
	s.Lifecycle = services.NewLifecycleService(cfg, a.Store, bus)
	s.Billing = services.NewBillingService(cfg, a.Store)
	s.Reminders = services.NewReminderService(cfg, a.Store, s.Notifications)
	s.Obligations = services.NewObligationService(cfg, a.Store, s.Lifecycle)
	s.Reporting = services.NewReportingService(cfg, a.Store)
	s.Settlements = services.NewSettlementService(cfg, a.Store, s.Lifecycle, s.Alerts, bus,
		settlement.NewStripeAdapter(cfg.StripeWebhookSecret, fetch, cfg.SettlementTimeout),
		settlement.NewEsewaAdapter(cfg.EsewaSecretKey),
		settlement.NewKhaltiAdapter(cfg.KhaltiSecretKey, cfg.KhaltiBaseURL, nil, cfg.SettlementTimeout),
	)
	return s
}

func (s *Services) Close() {
	if s.mirror != nil {
		if err := s.mirror.Close(); err != nil {
			utils.Logger.WithError(err).Warn("Closing AMQP mirror failed")
		}
	}
}
