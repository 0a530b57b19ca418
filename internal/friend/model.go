package friend

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Friend is a directed pairwise ledger entry held from one user's
// perspective. Owes is what the owner owes the counterparty; IsOwed is what
// the counterparty owes the owner. Both stay >= 0 at all times; the mirror
// record (owned by the counterparty) carries the same amounts with the two
// fields swapped.
type Friend struct {
	ID           int64           `json:"id"`
	UserID       int64           `json:"user_id"`
	FriendUserID *int64          `json:"friend_user_id,omitempty"` // nil until the friend registers
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Owes         decimal.Decimal `json:"owes"`
	IsOwed       decimal.Decimal `json:"is_owed"`
	DateAdded    time.Time       `json:"date_added"`
}

// Direction says which way money moved in a settlement
type Direction string

const (
	DirectionTheyPaidMe Direction = "theyPaidMe" // reduces the owner's owes
	DirectionIPaidThem  Direction = "iPaidThem"  // reduces the owner's isOwed
)

// Settlement records one accepted repayment between the owner and a friend
type Settlement struct {
	ID             int64           `json:"id"`
	Reference      uuid.UUID       `json:"reference"`
	UserID         int64           `json:"user_id"`
	FriendID       int64           `json:"friend_id"`
	CounterpartyID *int64          `json:"counterparty_id,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	Direction      Direction       `json:"direction"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ParticipantShare is one participant's slice of an expense, used when
// folding an expense into (or out of) the ledger
type ParticipantShare struct {
	UserID int64
	Share  decimal.Decimal
}
