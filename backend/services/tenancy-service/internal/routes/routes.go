package routes

const (
	Health = "/health"

	Units         = "/api/v1/units"
	AdminModerate = "/api/v1/admin/units/{id}/moderate"

	Tenancies           = "/api/v1/tenancies"
	Tenancy             = "/api/v1/tenancies/{id}"
	TenancyStatus       = "/api/v1/tenancies/{id}/status"
	TenancyObligations  = "/api/v1/tenancies/{id}/obligations"
	MyObligations       = "/api/v1/obligations"
	AdminOverride       = "/api/v1/admin/obligations/{id}/override"
	StripeWebhook       = "/api/v1/settlements/stripe/webhook"
	EsewaCallback       = "/api/v1/settlements/esewa/callback"
	KhaltiCallback      = "/api/v1/settlements/khalti/callback"
	Notifications       = "/api/v1/notifications"
	NotificationRead    = "/api/v1/notifications/{id}/read"
	NotificationReadAll = "/api/v1/notifications/read-all"
	JobsReminders       = "/api/v1/jobs/reminders"
	AdminJobsBilling    = "/api/v1/admin/jobs/billing"
	AdminDashboard      = "/api/v1/admin/dashboard"
	OwnerStats          = "/api/v1/owners/me/stats"

	NotificationsWS = "/ws/notifications"
)
