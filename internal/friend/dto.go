package friend

import "github.com/shopspring/decimal"

// AddFriendRequest represents the request to add a friend
type AddFriendRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name,omitempty"`
}

// SettleRequest represents the request to record a repayment
type SettleRequest struct {
	Amount     decimal.Decimal `json:"amount" validate:"required,gt=0"`
	SettleType Direction       `json:"settle_type" validate:"required,oneof=theyPaidMe iPaidThem"`
	Reference  string          `json:"reference,omitempty"` // optional idempotency key (UUID)
}

// BalanceResponse is the aggregate balance across all friends of a user
type BalanceResponse struct {
	TotalOwes   decimal.Decimal `json:"total_owes"`
	TotalIsOwed decimal.Decimal `json:"total_is_owed"`
	NetBalance  decimal.Decimal `json:"net_balance"`
}

// FriendResponse represents a friend record in responses
type FriendResponse struct {
	ID           int64           `json:"id"`
	FriendUserID *int64          `json:"friend_user_id,omitempty"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Owes         decimal.Decimal `json:"owes"`
	IsOwed       decimal.Decimal `json:"is_owed"`
	DateAdded    string          `json:"date_added"`
}

// SettlementResponse represents a recorded settlement in responses
type SettlementResponse struct {
	ID        int64           `json:"id"`
	Reference string          `json:"reference"`
	FriendID  int64           `json:"friend_id"`
	Amount    decimal.Decimal `json:"amount"`
	Direction Direction       `json:"direction"`
	CreatedAt string          `json:"created_at"`
}

// ToResponse converts a Friend model to a FriendResponse DTO
func (f *Friend) ToResponse() *FriendResponse {
	return &FriendResponse{
		ID:           f.ID,
		FriendUserID: f.FriendUserID,
		Name:         f.Name,
		Email:        f.Email,
		Owes:         f.Owes,
		IsOwed:       f.IsOwed,
		DateAdded:    f.DateAdded.Format("2006-01-02T15:04:05Z"),
	}
}

// ToResponse converts a Settlement model to a SettlementResponse DTO
func (s *Settlement) ToResponse() *SettlementResponse {
	return &SettlementResponse{
		ID:        s.ID,
		Reference: s.Reference.String(),
		FriendID:  s.FriendID,
		Amount:    s.Amount,
		Direction: s.Direction,
		CreatedAt: s.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
