package budget

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateCategoryRequest struct {
	Name      string          `json:"name" validate:"required"`
	Allocated decimal.Decimal `json:"allocated" validate:"required"`
}

type UpdateCategoryRequest struct {
	Name      *string          `json:"name,omitempty"`
	Allocated *decimal.Decimal `json:"allocated,omitempty"`
}

type RecordSpendRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

type CategoryResponse struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Allocated decimal.Decimal `json:"allocated"`
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
	CreatedAt time.Time       `json:"created_at"`
}

func ToResponse(c *Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Allocated: c.Allocated,
		Spent:     c.Spent,
		Remaining: c.Remaining(),
		CreatedAt: c.CreatedAt,
	}
}

func ToResponseList(categories []*Category) []CategoryResponse {
	resp := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = ToResponse(c)
	}
	return resp
}
