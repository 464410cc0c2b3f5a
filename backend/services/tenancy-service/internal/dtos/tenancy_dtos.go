package dtos

import (
	shared_dtos "github.com/stayspot/mono-repo/backend/shared/go-dtos"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
)

type RequestTenancyRequest struct {
	UnitID    string  `json:"unit_id" validate:"required,uuid"`
	StartDate string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   *string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Deposit   *string `json:"deposit,omitempty" validate:"omitempty,numeric"`
}

type TransitionRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING CONFIRMED REJECTED ACTIVE COMPLETED CANCELLED"`
}

type TenancyChangeResponse struct {
	Tenancy    shared_dtos.Tenancy  `json:"tenancy"`
	Unit       shared_dtos.Unit     `json:"unit"`
	FromStatus models.TenancyStatus `json:"from_status"`
}

func NewTenancyChangeResponse(c *models.TenancyChange) TenancyChangeResponse {
	return TenancyChangeResponse{
		Tenancy:    shared_dtos.NewTenancyFromModel(c.Tenancy),
		Unit:       shared_dtos.NewUnitFromModel(c.Unit),
		FromStatus: c.FromStatus,
	}
}

type TenancyDetailsResponse struct {
	Tenancy     shared_dtos.Tenancy      `json:"tenancy"`
	Unit        shared_dtos.Unit         `json:"unit"`
	Obligations []shared_dtos.Obligation `json:"obligations"`
}
