package expense

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/equalify/equalify/internal/friend"
)

// Expense represents one shared cost
type Expense struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	GroupID     *int64          `json:"group_id,omitempty"` // nil for a personal expense
	PayerID     int64           `json:"payer_id"`
	CreatedBy   int64           `json:"created_by"`
	Category    string          `json:"category"`
	Notes       string          `json:"notes,omitempty"`
	Date        time.Time       `json:"date"`
	Settled     bool            `json:"settled"`
	SettledAt   *time.Time      `json:"settled_at,omitempty"`

	// Populated via JOIN / second query
	PayerName    string         `json:"payer_name,omitempty"`
	Participants []*Participant `json:"participants,omitempty"`
}

// Participant is one user's slice of an expense. Share is stored verbatim at
// creation so deletion can reverse the ledger without recomputing (and
// without rounding loss).
type Participant struct {
	ID        int64           `json:"id"`
	ExpenseID int64           `json:"expense_id"`
	UserID    int64           `json:"user_id"`
	Share     decimal.Decimal `json:"share"`

	// Populated via JOIN
	Name string `json:"name,omitempty"`
}

// Shares converts the stored participants into ledger fold inputs
func (e *Expense) Shares() []friend.ParticipantShare {
	shares := make([]friend.ParticipantShare, len(e.Participants))
	for i, p := range e.Participants {
		shares[i] = friend.ParticipantShare{UserID: p.UserID, Share: p.Share}
	}
	return shares
}

// InvolvesUser reports whether the user paid for or participates in the expense
func (e *Expense) InvolvesUser(userID int64) bool {
	if e.PayerID == userID {
		return true
	}
	for _, p := range e.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}
