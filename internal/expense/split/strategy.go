package split

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Mode defines the split calculation mode
type Mode string

const (
	ModeEqual Mode = "EQUAL"
	ModeExact Mode = "EXACT"
)

// Input represents a participant in a split with an optional explicit amount
type Input struct {
	UserID int64            `json:"user_id"`
	Amount *decimal.Decimal `json:"amount,omitempty"` // required for EXACT splits
}

// Output represents the calculated share for a single participant
type Output struct {
	UserID int64           `json:"user_id"`
	Share  decimal.Decimal `json:"share"`
}

// Strategy is the interface that all split strategies implement.
// Calculate returns one share per participant, payer included; shares of an
// accepted split always account for the full expense amount.
type Strategy interface {
	Calculate(totalAmount decimal.Decimal, participants []Input) ([]Output, error)
	Mode() Mode
	Validate(totalAmount decimal.Decimal, participants []Input) error
}

// Factory creates split strategies based on the requested mode
type Factory struct{}

// NewFactory creates a new split strategy factory
func NewFactory() *Factory {
	return &Factory{}
}

// Create returns the strategy implementation for the given mode
func (f *Factory) Create(mode Mode) (Strategy, error) {
	switch mode {
	case ModeEqual:
		return &EqualStrategy{}, nil
	case ModeExact:
		return &ExactStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}
}

// CreateFromString creates a strategy from a request-supplied mode string
func (f *Factory) CreateFromString(mode string) (Strategy, error) {
	return f.Create(Mode(mode))
}

var (
	ErrUnknownMode          = errors.New("unknown split mode")
	ErrNoParticipants       = errors.New("at least one participant is required")
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrDuplicateParticipant = errors.New("participants must be unique")
	ErrMissingAmount        = errors.New("amount required for all participants")
	ErrNegativeShare        = errors.New("participant amounts cannot be negative")
)

// MismatchError reports explicit shares that do not sum to the expense amount
type MismatchError struct {
	Expected decimal.Decimal
	Actual   decimal.Decimal
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("total split amount must equal expense amount: expected %s, got %s", e.Expected, e.Actual)
}

// tolerance allowed when comparing explicit shares against the total
var tolerance = decimal.New(1, -2) // 0.01

// cent is the smallest unit shares are expressed in
var cent = decimal.New(1, -2)

// validateCommon applies the checks shared by every strategy
func validateCommon(totalAmount decimal.Decimal, participants []Input) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if !totalAmount.IsPositive() {
		return ErrInvalidAmount
	}

	seen := make(map[int64]struct{}, len(participants))
	for _, p := range participants {
		if _, ok := seen[p.UserID]; ok {
			return ErrDuplicateParticipant
		}
		seen[p.UserID] = struct{}{}
	}
	return nil
}
