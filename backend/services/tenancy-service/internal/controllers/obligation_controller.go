package controllers

import (
	"net/http"

	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/dtos"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/services"
	shared_dtos "github.com/stayspot/mono-repo/backend/shared/go-dtos"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
)

type ObligationController struct {
	obligations *services.ObligationService
}

func NewObligationController(obligations *services.ObligationService) *ObligationController {
	return &ObligationController{obligations: obligations}
}

// GET /api/v1/tenancies/{id}/obligations
func (c *ObligationController) ListForTenancyHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	tenancyID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	list, err := c.obligations.ListForTenancy(r.Context(), actor, tenancyID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, shared_dtos.NewObligationsFromModels(list))
}

// POST /api/v1/tenancies/{id}/obligations
func (c *ObligationController) AddChargeHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	tenancyID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req dtos.CreateChargeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	o, err := c.obligations.AddCharge(r.Context(), actor, tenancyID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, shared_dtos.NewObligationFromModel(o))
}

// GET /api/v1/obligations
func (c *ObligationController) ListMineHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	list, err := c.obligations.ListMine(r.Context(), actor)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, shared_dtos.NewObligationsFromModels(list))
}

// POST /api/v1/admin/obligations/{id}/override
func (c *ObligationController) OverrideHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "OverrideHandler")

	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req dtos.OverrideObligationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	o, err := c.obligations.Override(r.Context(), actor, id, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	logger.WithField("obligationID", o.ID).Infof("Obligation status overridden to %s", o.Status)
	utils.RespondWithJSON(w, http.StatusOK, shared_dtos.NewObligationFromModel(o))
}
