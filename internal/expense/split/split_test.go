package split

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func amtPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func sumShares(outputs []Output) decimal.Decimal {
	sum := decimal.Zero
	for _, o := range outputs {
		sum = sum.Add(o.Share)
	}
	return sum
}

func TestFactory(t *testing.T) {
	f := NewFactory()

	equal, err := f.CreateFromString("EQUAL")
	require.NoError(t, err)
	assert.Equal(t, ModeEqual, equal.Mode())

	exact, err := f.CreateFromString("EXACT")
	require.NoError(t, err)
	assert.Equal(t, ModeExact, exact.Mode())

	_, err = f.CreateFromString("PERCENTAGE")
	assert.Error(t, err)
}

func TestEqualStrategy_Calculate(t *testing.T) {
	tests := []struct {
		name      string
		total     string
		users     []int64
		wantShare []string
	}{
		{
			name:      "divides evenly",
			total:     "90.00",
			users:     []int64{1, 2, 3},
			wantShare: []string{"30", "30", "30"},
		},
		{
			name:      "residual cent goes to first participant",
			total:     "100.00",
			users:     []int64{1, 2, 3},
			wantShare: []string{"33.34", "33.33", "33.33"},
		},
		{
			name:      "two residual cents spread over first two",
			total:     "100.01",
			users:     []int64{1, 2, 3},
			wantShare: []string{"33.34", "33.34", "33.33"},
		},
		{
			name:      "single participant gets everything",
			total:     "42.55",
			users:     []int64{7},
			wantShare: []string{"42.55"},
		},
		{
			name:      "tiny amount smaller than one cent per head",
			total:     "0.01",
			users:     []int64{1, 2},
			wantShare: []string{"0.01", "0"},
		},
	}

	s := &EqualStrategy{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inputs := make([]Input, len(tt.users))
			for i, id := range tt.users {
				inputs[i] = Input{UserID: id}
			}

			outputs, err := s.Calculate(amt(tt.total), inputs)
			require.NoError(t, err)
			require.Len(t, outputs, len(tt.users))

			for i, want := range tt.wantShare {
				assert.True(t, outputs[i].Share.Equal(amt(want)),
					"share %d: want %s, got %s", i, want, outputs[i].Share)
			}
			assert.True(t, sumShares(outputs).Equal(amt(tt.total)),
				"shares must sum to the total exactly")
		})
	}
}

func TestEqualStrategy_SumIsExactForAwkwardDivisions(t *testing.T) {
	s := &EqualStrategy{}
	totals := []string{"0.01", "0.10", "1", "10", "99.99", "100", "123.45", "1000.01"}

	for _, total := range totals {
		for n := 1; n <= 11; n++ {
			inputs := make([]Input, n)
			for i := range inputs {
				inputs[i] = Input{UserID: int64(i + 1)}
			}
			outputs, err := s.Calculate(amt(total), inputs)
			require.NoError(t, err)
			assert.True(t, sumShares(outputs).Equal(amt(total)),
				"total=%s n=%d: got sum %s", total, n, sumShares(outputs))
		}
	}
}

func TestEqualStrategy_Validation(t *testing.T) {
	s := &EqualStrategy{}

	_, err := s.Calculate(amt("100"), nil)
	assert.ErrorIs(t, err, ErrNoParticipants)

	_, err = s.Calculate(amt("0"), []Input{{UserID: 1}})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = s.Calculate(amt("-5"), []Input{{UserID: 1}})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = s.Calculate(amt("100"), []Input{{UserID: 1}, {UserID: 1}})
	assert.ErrorIs(t, err, ErrDuplicateParticipant)
}

func TestExactStrategy_Calculate(t *testing.T) {
	s := &ExactStrategy{}

	outputs, err := s.Calculate(amt("100"), []Input{
		{UserID: 1, Amount: amtPtr("50")},
		{UserID: 2, Amount: amtPtr("50")},
	})
	require.NoError(t, err)
	require.Len(t, outputs, 2)
	assert.True(t, outputs[0].Share.Equal(amt("50")))
	assert.True(t, outputs[1].Share.Equal(amt("50")))
}

func TestExactStrategy_AllowsSmallTolerance(t *testing.T) {
	s := &ExactStrategy{}

	// 0.01 off from the total is accepted
	_, err := s.Calculate(amt("100"), []Input{
		{UserID: 1, Amount: amtPtr("50.00")},
		{UserID: 2, Amount: amtPtr("49.99")},
	})
	assert.NoError(t, err)
}

func TestExactStrategy_RejectsMismatch(t *testing.T) {
	s := &ExactStrategy{}

	_, err := s.Calculate(amt("100"), []Input{
		{UserID: 1, Amount: amtPtr("50")},
		{UserID: 2, Amount: amtPtr("49")},
	})
	require.Error(t, err)

	var mismatch *MismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.True(t, mismatch.Expected.Equal(amt("100")))
	assert.True(t, mismatch.Actual.Equal(amt("99")))
}

func TestExactStrategy_Validation(t *testing.T) {
	s := &ExactStrategy{}

	_, err := s.Calculate(amt("100"), []Input{
		{UserID: 1, Amount: amtPtr("100")},
		{UserID: 2},
	})
	assert.ErrorIs(t, err, ErrMissingAmount)

	_, err = s.Calculate(amt("100"), []Input{
		{UserID: 1, Amount: amtPtr("110")},
		{UserID: 2, Amount: amtPtr("-10")},
	})
	assert.ErrorIs(t, err, ErrNegativeShare)

	_, err = s.Calculate(amt("100"), []Input{
		{UserID: 1, Amount: amtPtr("50")},
		{UserID: 1, Amount: amtPtr("50")},
	})
	assert.ErrorIs(t, err, ErrDuplicateParticipant)
}
