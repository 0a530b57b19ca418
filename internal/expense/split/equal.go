package split

import "github.com/shopspring/decimal"

// EqualStrategy divides the expense evenly among all participants.
type EqualStrategy struct{}

// Mode returns the split mode identifier
func (s *EqualStrategy) Mode() Mode {
	return ModeEqual
}

// Validate checks if the inputs are valid for an equal split
func (s *EqualStrategy) Validate(totalAmount decimal.Decimal, participants []Input) error {
	return validateCommon(totalAmount, participants)
}

// Calculate divides the total amount evenly among all participants.
// A naive per-head division can leave a remainder unaccounted for; here the
// base share is floored to whole cents and the residual cents are handed out
// one each to participants in listed order, so the output shares always sum
// to the total exactly.
func (s *EqualStrategy) Calculate(totalAmount decimal.Decimal, participants []Input) ([]Output, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	count := decimal.NewFromInt(int64(len(participants)))
	base := totalAmount.Div(count).RoundFloor(2)
	remainder := totalAmount.Sub(base.Mul(count))

	outputs := make([]Output, len(participants))
	for i, p := range participants {
		outputs[i] = Output{UserID: p.UserID, Share: base}
	}

	for i := 0; remainder.GreaterThanOrEqual(cent); i++ {
		outputs[i].Share = outputs[i].Share.Add(cent)
		remainder = remainder.Sub(cent)
	}
	// Sub-cent residue shows up only for totals finer than two decimal
	// places; the first participant absorbs it.
	if remainder.IsPositive() {
		outputs[0].Share = outputs[0].Share.Add(remainder)
	}

	return outputs, nil
}
