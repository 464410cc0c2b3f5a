package main

import (
	"context"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/cors"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/app"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/config"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/constants"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/controllers"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
	_ "time/tzdata"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()
	defer cfg.Close()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize tenancy-service:", err)
	}
	defer application.Close()

	if cfg.LDFlag_SeedDbWithTestData {
		if err := application.SeedAllTestData(context.Background()); err != nil {
			utils.Logger.Fatal("Failed to seed test data:", err)
		}
	}

	svc := application.BuildServices()
	defer svc.Close()

	router := controllers.NewRouter(application, svc)

	// Cron job setup. Every job is idempotent, so overlapping with an
	// on-demand run is harmless.
	c := cron.New(cron.WithLocation(time.UTC))

	_, err = c.AddFunc(cfg.JobsCronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.ActivationJobTimeout)
		defer cancel()
		utils.Logger.Info("Starting activation cron job...")
		if _, err := svc.Lifecycle.ActivateStarted(ctx); err != nil {
			utils.Logger.WithError(err).Error("Failed to activate started tenancies")
		}
	})
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to schedule activation cron")
	}

	_, err = c.AddFunc(cfg.JobsCronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.BillingJobTimeout)
		defer cancel()
		utils.Logger.Info("Starting billing cron job...")
		if _, err := svc.Billing.GenerateDue(ctx, cfg.BillingHorizonDays); err != nil {
			utils.Logger.WithError(err).Error("Failed to generate due rent")
		}

		rctx, rcancel := context.WithTimeout(context.Background(), constants.ReminderJobTimeout)
		defer rcancel()
		if _, _, err := svc.Reminders.DispatchReminders(rctx, cfg.ReminderWindowDays); err != nil {
			utils.Logger.WithError(err).Error("Failed to dispatch rent reminders")
		}
	})
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to schedule billing cron")
	}

	c.Start()
	defer c.Stop()
	utils.Logger.Infof("Scheduled tenancy cron jobs (%s)", cfg.JobsCronSpec)

	allowedOrigins := []string{cfg.AppUrl}
	if !cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, utils.CORSLowSecurityAllowedOriginLocalhost)
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Stripe-Signature", "ngrok-skip-browser-warning"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("tenancy-service failed to start:", err)
	}
}
