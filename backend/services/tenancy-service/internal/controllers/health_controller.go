package controllers

import (
	"context"
	"net/http"

	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/app"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/dtos"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
)

type HealthController struct {
	app *app.App
}

func NewHealthController(app *app.App) *HealthController {
	return &HealthController{app}
}

func (c *HealthController) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	if err := c.app.Store.Ping(context.Background()); err != nil {
		utils.Logger.WithError(err).Error("tenancy-service store unreachable")
		utils.RespondErrorWithCode(w, http.StatusServiceUnavailable, utils.ErrCodeInternal, "Database unreachable", nil, err)
		return
	}
	resp := dtos.HealthCheckResponse{Status: "OK"}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
