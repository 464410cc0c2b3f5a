package dtos

import (
	"time"

	"github.com/stayspot/mono-repo/backend/shared/go-models"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
)

// Tenancy renders civil dates as YYYY-MM-DD rather than timestamps.
type Tenancy struct {
	ID          string               `json:"id"`
	RenterID    string               `json:"renter_id"`
	UnitID      string               `json:"unit_id"`
	Status      models.TenancyStatus `json:"status"`
	StartDate   string               `json:"start_date"`
	EndDate     *string              `json:"end_date,omitempty"`
	MonthlyRent string               `json:"monthly_rent"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	RowVersion  int64                `json:"row_version"`
}

func NewTenancyFromModel(t *models.Tenancy) Tenancy {
	out := Tenancy{
		ID:          t.ID.String(),
		RenterID:    t.RenterID.String(),
		UnitID:      t.UnitID.String(),
		Status:      t.Status,
		StartDate:   t.StartDate.Format(utils.DateLayout),
		MonthlyRent: t.MonthlyRent.StringFixed(2),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		RowVersion:  t.RowVersion,
	}
	if t.EndDate != nil {
		out.EndDate = utils.Ptr(t.EndDate.Format(utils.DateLayout))
	}
	return out
}

type Obligation struct {
	ID          string                   `json:"id"`
	TenancyID   string                   `json:"tenancy_id"`
	Kind        models.ObligationKind    `json:"kind"`
	Amount      string                   `json:"amount"`
	DueDate     string                   `json:"due_date"`
	PaidDate    *string                  `json:"paid_date,omitempty"`
	Status      models.ObligationStatus  `json:"status"`
	Method      *models.SettlementMethod `json:"method,omitempty"`
	ExternalRef *string                  `json:"external_ref,omitempty"`
}

func NewObligationFromModel(o *models.Obligation) Obligation {
	out := Obligation{
		ID:          o.ID.String(),
		TenancyID:   o.TenancyID.String(),
		Kind:        o.Kind,
		Amount:      o.Amount.StringFixed(2),
		DueDate:     o.DueDate.Format(utils.DateLayout),
		Status:      o.Status,
		Method:      o.Method,
		ExternalRef: o.ExternalRef,
	}
	if o.PaidDate != nil {
		out.PaidDate = utils.Ptr(o.PaidDate.Format(utils.DateLayout))
	}
	return out
}

func NewObligationsFromModels(list []*models.Obligation) []Obligation {
	out := make([]Obligation, 0, len(list))
	for _, o := range list {
		out = append(out, NewObligationFromModel(o))
	}
	return out
}
