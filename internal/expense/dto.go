package expense

import (
	"time"

	"github.com/shopspring/decimal"
)

type ParticipantInput struct {
	UserID int64            `json:"user_id" validate:"required"`
	Amount *decimal.Decimal `json:"amount,omitempty"` // required for EXACT, ignored for EQUAL
}

type CreateExpenseRequest struct {
	Description  string             `json:"description" validate:"required"`
	Amount       decimal.Decimal    `json:"amount" validate:"required"`
	GroupID      *int64             `json:"group_id,omitempty"`
	PayerID      int64              `json:"payer_id,omitempty"` // defaults to the caller
	Category     string             `json:"category,omitempty"`
	Notes        string             `json:"notes,omitempty"`
	Date         *time.Time         `json:"date,omitempty"`
	SplitType    string             `json:"split_type" validate:"required,oneof=EQUAL EXACT"`
	Participants []ParticipantInput `json:"participants" validate:"required,min=1"`
}

type ParticipantResponse struct {
	UserID int64           `json:"user_id"`
	Name   string          `json:"name,omitempty"`
	Share  decimal.Decimal `json:"share"`
}

type ExpenseResponse struct {
	ID           int64                 `json:"id"`
	Description  string                `json:"description"`
	Amount       decimal.Decimal       `json:"amount"`
	GroupID      *int64                `json:"group_id,omitempty"`
	PayerID      int64                 `json:"payer_id"`
	PayerName    string                `json:"payer_name,omitempty"`
	CreatedBy    int64                 `json:"created_by"`
	Category     string                `json:"category,omitempty"`
	Notes        string                `json:"notes,omitempty"`
	Date         time.Time             `json:"date"`
	Settled      bool                  `json:"settled"`
	SettledAt    *time.Time            `json:"settled_at,omitempty"`
	Participants []ParticipantResponse `json:"participants,omitempty"`
}

type SplitSummaryResponse struct {
	TotalPaid  decimal.Decimal `json:"total_paid"`
	TotalOwed  decimal.Decimal `json:"total_owed"`
	NetBalance decimal.Decimal `json:"net_balance"`
}

type MonthlySpendingResponse struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
}

func ToResponse(e *Expense) ExpenseResponse {
	resp := ExpenseResponse{
		ID:          e.ID,
		Description: e.Description,
		Amount:      e.Amount,
		GroupID:     e.GroupID,
		PayerID:     e.PayerID,
		PayerName:   e.PayerName,
		CreatedBy:   e.CreatedBy,
		Category:    e.Category,
		Notes:       e.Notes,
		Date:        e.Date,
		Settled:     e.Settled,
		SettledAt:   e.SettledAt,
	}
	for _, p := range e.Participants {
		resp.Participants = append(resp.Participants, ParticipantResponse{
			UserID: p.UserID,
			Name:   p.Name,
			Share:  p.Share,
		})
	}
	return resp
}

func ToResponseList(expenses []*Expense) []ExpenseResponse {
	resp := make([]ExpenseResponse, len(expenses))
	for i, e := range expenses {
		resp[i] = ToResponse(e)
	}
	return resp
}
