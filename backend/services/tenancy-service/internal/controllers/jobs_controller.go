package controllers

import (
	"net/http"
	"strconv"

	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/config"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/constants"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/dtos"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/services"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
)

// JobsController exposes the scheduled jobs for on-demand runs.
type JobsController struct {
	cfg       *config.Config
	billing   *services.BillingService
	reminders *services.ReminderService
}

func NewJobsController(cfg *config.Config, billing *services.BillingService, reminders *services.ReminderService) *JobsController {
	return &JobsController{cfg: cfg, billing: billing, reminders: reminders}
}

// daysParam reads an optional day count in [0, MaxHorizonDays].
func daysParam(w http.ResponseWriter, r *http.Request, name string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 || v > constants.MaxHorizonDays {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid "+name, nil, err)
		return 0, false
	}
	return v, true
}

// POST /api/v1/admin/jobs/billing?horizon_days=7
func (c *JobsController) RunBillingHandler(w http.ResponseWriter, r *http.Request) {
	days, ok := daysParam(w, r, "horizon_days", c.cfg.BillingHorizonDays)
	if !ok {
		return
	}
	created, err := c.billing.GenerateDue(r.Context(), days)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.BillingRunResponse{Created: created})
}

// POST /api/v1/jobs/reminders?window_days=7
func (c *JobsController) RunRemindersHandler(w http.ResponseWriter, r *http.Request) {
	days, ok := daysParam(w, r, "window_days", c.cfg.ReminderWindowDays)
	if !ok {
		return
	}
	sent, skipped, err := c.reminders.DispatchReminders(r.Context(), days)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.ReminderRunResponse{Sent: sent, Skipped: skipped})
}
