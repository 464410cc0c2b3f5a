package constants

import "time"

// Background job scheduling and timeouts
const (
	JobsCronSpec          = "0 */3 * * *" // every three hours, UTC
	BillingJobTimeout     = 10 * time.Minute
	ReminderJobTimeout    = 5 * time.Minute
	ActivationJobTimeout  = 5 * time.Minute
	DefaultHorizonDays    = 7
	DefaultReminderWindow = 7
	MaxHorizonDays        = 90
)

// Settlement
const (
	DefaultSettlementTimeout = 10 * time.Second

	// Metadata key on Stripe PaymentIntents carrying our obligation id.
	StripeMetadataObligationIDKey = "obligation_id"

	StripeEventPaymentIntentSucceeded = "payment_intent.succeeded"

	EsewaStatusComplete = "COMPLETE"

	DefaultKhaltiBaseURL  = "https://khalti.com/api/v2"
	KhaltiLookupPath      = "/epayment/lookup/"
	KhaltiStatusCompleted = "Completed"
)

// Security alert content
const (
	EmailSubjectSignatureMismatch = "SECURITY: settlement signature mismatch (%s)"
	SecurityTeamName              = "StaySpot Security"
	DefaultSendgridFromEmail      = "no-reply@stayspot.app"
)

// Event mirror
const (
	DefaultAMQPExchange         = "stayspot.events"
	RoutingKeyTenancyChanged    = "tenancy.status_changed"
	RoutingKeyTenancyDeleted    = "tenancy.deleted"
	RoutingKeyObligationSettled = "obligation.settled"
	RoutingKeyUnitModerated     = "unit.moderated"
	AMQPPublishTimeout          = 5 * time.Second
)

// Notifications
const (
	DefaultInboxLimit     = 50
	MaxInboxLimit         = 200
	RecentActivityLimit   = 10
	RealtimeSendBuffer    = 32
	RealtimeWriteDeadline = 10 * time.Second
)

// Dev seeding
const DevTokenTTL = 24 * time.Hour
