package dtos

type CreateUnitRequest struct {
	Title        string  `json:"title" validate:"required,min=3,max=200"`
	MonthlyPrice string  `json:"monthly_price" validate:"required,numeric"`
	OwnerID      *string `json:"owner_id,omitempty" validate:"omitempty,uuid"` // admin only
}

type ModerateUnitRequest struct {
	Action string `json:"action" validate:"required,oneof=APPROVE DISABLE"`
}
