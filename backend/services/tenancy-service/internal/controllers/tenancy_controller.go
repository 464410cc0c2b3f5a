package controllers

import (
	"net/http"

	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/dtos"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/services"
	shared_dtos "github.com/stayspot/mono-repo/backend/shared/go-dtos"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
)

type TenancyController struct {
	lifecycle *services.LifecycleService
}

func NewTenancyController(lifecycle *services.LifecycleService) *TenancyController {
	return &TenancyController{lifecycle: lifecycle}
}

// POST /api/v1/tenancies
func (c *TenancyController) RequestTenancyHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req dtos.RequestTenancyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	t, err := c.lifecycle.RequestTenancy(r.Context(), actor, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, shared_dtos.NewTenancyFromModel(t))
}

// GET /api/v1/tenancies/{id}
func (c *TenancyController) GetTenancyHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	t, unit, obligations, err := c.lifecycle.GetTenancy(r.Context(), actor, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.TenancyDetailsResponse{
		Tenancy:     shared_dtos.NewTenancyFromModel(t),
		Unit:        shared_dtos.NewUnitFromModel(unit),
		Obligations: shared_dtos.NewObligationsFromModels(obligations),
	})
}

// PATCH /api/v1/tenancies/{id}/status
func (c *TenancyController) TransitionHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "TransitionHandler")

	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req dtos.TransitionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	change, err := c.lifecycle.Transition(r.Context(), id, models.TenancyStatus(req.Status), actor)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	logger.WithField("tenancyID", id).Infof("Tenancy %s -> %s", change.FromStatus, change.Tenancy.Status)
	utils.RespondWithJSON(w, http.StatusOK, dtos.NewTenancyChangeResponse(change))
}

// DELETE /api/v1/tenancies/{id}
func (c *TenancyController) DeleteTenancyHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := c.lifecycle.DeleteTenancy(r.Context(), actor, id); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
