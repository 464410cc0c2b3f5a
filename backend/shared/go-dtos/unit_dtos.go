package dtos

import (
	"time"

	"github.com/stayspot/mono-repo/backend/shared/go-models"
)

type Unit struct {
	ID           string            `json:"id"`
	OwnerID      string            `json:"owner_id"`
	Title        string            `json:"title"`
	MonthlyPrice string            `json:"monthly_price"`
	Status       models.UnitStatus `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	RowVersion   int64             `json:"row_version"`
}

func NewUnitFromModel(u *models.Unit) Unit {
	return Unit{
		ID:           u.ID.String(),
		OwnerID:      u.OwnerID.String(),
		Title:        u.Title,
		MonthlyPrice: u.MonthlyPrice.StringFixed(2),
		Status:       u.Status,
		CreatedAt:    u.CreatedAt,
		RowVersion:   u.RowVersion,
	}
}

func NewUnitsFromModels(list []*models.Unit) []Unit {
	out := make([]Unit, 0, len(list))
	for _, u := range list {
		out = append(out, NewUnitFromModel(u))
	}
	return out
}
