package controllers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/app"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/routes"
	"github.com/stayspot/mono-repo/backend/shared/go-middleware"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
)

// NewRouter mounts every HTTP route on a fresh router.
func NewRouter(application *app.App, svc *app.Services) *mux.Router {
	cfg := application.Config

	healthController := NewHealthController(application)
	unitController := NewUnitController(svc.Lifecycle)
	tenancyController := NewTenancyController(svc.Lifecycle)
	obligationController := NewObligationController(svc.Obligations)
	settlementController := NewSettlementController(svc.Settlements)
	notificationController := NewNotificationController(svc.Notifications)
	jobsController := NewJobsController(cfg, svc.Billing, svc.Reminders)
	reportController := NewReportController(svc.Reporting)

	router := mux.NewRouter()

	// Public routes
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.StripeWebhook, settlementController.StripeWebhookHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.EsewaCallback, settlementController.EsewaCallbackHandler).Methods(http.MethodPost, http.MethodGet)
	router.HandleFunc(routes.KhaltiCallback, settlementController.KhaltiCallbackHandler).Methods(http.MethodPost, http.MethodGet)

	// Admin routes
	admin := router.NewRoute().Subrouter()
	admin.Use(middleware.AdminAuthMiddleware(cfg.RSAPublicKey))
	admin.HandleFunc(routes.AdminModerate, unitController.ModerateUnitHandler).Methods(http.MethodPost)
	admin.HandleFunc(routes.AdminOverride, obligationController.OverrideHandler).Methods(http.MethodPost)
	admin.HandleFunc(routes.AdminJobsBilling, jobsController.RunBillingHandler).Methods(http.MethodPost)
	admin.HandleFunc(routes.AdminDashboard, reportController.DashboardHandler).Methods(http.MethodGet)

	// Owner and admin routes
	managers := router.NewRoute().Subrouter()
	managers.Use(middleware.AuthMiddleware(cfg.RSAPublicKey), middleware.RequireRole(models.RoleOwner, models.RoleAdmin))
	managers.HandleFunc(routes.OwnerStats, reportController.OwnerStatsHandler).Methods(http.MethodGet)
	managers.HandleFunc(routes.JobsReminders, jobsController.RunRemindersHandler).Methods(http.MethodPost)

	// Routes for any signed-in caller
	secured := router.NewRoute().Subrouter()
	secured.Use(middleware.AuthMiddleware(cfg.RSAPublicKey))
	secured.HandleFunc(routes.Units, unitController.CreateUnitHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.Units, unitController.ListUnitsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.Tenancies, tenancyController.RequestTenancyHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.Tenancy, tenancyController.GetTenancyHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.Tenancy, tenancyController.DeleteTenancyHandler).Methods(http.MethodDelete)
	secured.HandleFunc(routes.TenancyStatus, tenancyController.TransitionHandler).Methods(http.MethodPatch)
	secured.HandleFunc(routes.TenancyObligations, obligationController.ListForTenancyHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.TenancyObligations, obligationController.AddChargeHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.MyObligations, obligationController.ListMineHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.Notifications, notificationController.ListHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.NotificationReadAll, notificationController.MarkAllReadHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.NotificationRead, notificationController.MarkReadHandler).Methods(http.MethodPost)
	secured.Handle(routes.NotificationsWS, svc.Hub.Handler()).Methods(http.MethodGet)

	return router
}
