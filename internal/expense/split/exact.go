package split

import "github.com/shopspring/decimal"

// ExactStrategy uses caller-supplied amounts for each participant. The
// amounts must account for the whole expense.
type ExactStrategy struct{}

// Mode returns the split mode identifier
func (s *ExactStrategy) Mode() Mode {
	return ModeExact
}

// Validate checks that every participant carries a non-negative amount and
// that the amounts sum to the total within the allowed tolerance
func (s *ExactStrategy) Validate(totalAmount decimal.Decimal, participants []Input) error {
	if err := validateCommon(totalAmount, participants); err != nil {
		return err
	}

	sum := decimal.Zero
	for _, p := range participants {
		if p.Amount == nil {
			return ErrMissingAmount
		}
		if p.Amount.IsNegative() {
			return ErrNegativeShare
		}
		sum = sum.Add(*p.Amount)
	}

	if sum.Sub(totalAmount).Abs().GreaterThan(tolerance) {
		return &MismatchError{Expected: totalAmount, Actual: sum}
	}
	return nil
}

// Calculate returns the amounts specified for each participant unchanged
func (s *ExactStrategy) Calculate(totalAmount decimal.Decimal, participants []Input) ([]Output, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	outputs := make([]Output, len(participants))
	for i, p := range participants {
		outputs[i] = Output{UserID: p.UserID, Share: *p.Amount}
	}
	return outputs, nil
}
