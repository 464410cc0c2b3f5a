package controllers

import (
	"net/http"

	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/services"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
)

type ReportController struct {
	reports *services.ReportingService
}

func NewReportController(reports *services.ReportingService) *ReportController {
	return &ReportController{reports: reports}
}

// GET /api/v1/admin/dashboard
func (c *ReportController) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	stats, err := c.reports.DashboardStats(r.Context(), actor)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, stats)
}

// GET /api/v1/owners/me/stats
func (c *ReportController) OwnerStatsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	stats, err := c.reports.OwnerStats(r.Context(), actor)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, stats)
}
