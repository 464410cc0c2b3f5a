package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/dtos"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/services"
	shared_dtos "github.com/stayspot/mono-repo/backend/shared/go-dtos"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
)

type UnitController struct {
	lifecycle *services.LifecycleService
}

func NewUnitController(lifecycle *services.LifecycleService) *UnitController {
	return &UnitController{lifecycle: lifecycle}
}

// POST /api/v1/units
func (c *UnitController) CreateUnitHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req dtos.CreateUnitRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	unit, err := c.lifecycle.CreateUnit(r.Context(), actor, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, shared_dtos.NewUnitFromModel(unit))
}

// GET /api/v1/units?status=AVAILABLE&owner_id=...
func (c *UnitController) ListUnitsHandler(w http.ResponseWriter, r *http.Request) {
	var filter models.UnitFilter
	q := r.URL.Query()
	if raw := q.Get("status"); raw != "" {
		status := models.UnitStatus(raw)
		if !status.Valid() {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Unknown unit status", nil)
			return
		}
		filter.Status = &status
	}
	if raw := q.Get("owner_id"); raw != "" {
		ownerID, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid owner_id", nil, err)
			return
		}
		filter.OwnerID = &ownerID
	}

	units, err := c.lifecycle.ListUnits(r.Context(), filter)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, shared_dtos.NewUnitsFromModels(units))
}

// POST /api/v1/admin/units/{id}/moderate
func (c *UnitController) ModerateUnitHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "ModerateUnitHandler")

	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	unitID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req dtos.ModerateUnitRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	unit, err := c.lifecycle.ModerateUnit(r.Context(), actor, unitID, models.ModerationAction(req.Action))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	logger.WithField("unitID", unit.ID).Infof("Unit moderated to %s", unit.Status)
	utils.RespondWithJSON(w, http.StatusOK, shared_dtos.NewUnitFromModel(unit))
}
