package budget

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is a per-user spending bucket with a monthly allocation
type Category struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Name      string          `json:"name"`
	Allocated decimal.Decimal `json:"allocated"`
	Spent     decimal.Decimal `json:"spent"`
	CreatedAt time.Time       `json:"created_at"`
}

// Remaining is the unspent part of the allocation; negative when overspent
func (c *Category) Remaining() decimal.Decimal {
	return c.Allocated.Sub(c.Spent)
}
