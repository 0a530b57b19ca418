package expense

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equalify/equalify/internal/expense/split"
	"github.com/equalify/equalify/internal/friend"
)

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func amtPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

type fakeStore struct {
	nextID   int64
	expenses map[int64]*Expense
}

func newFakeStore() *fakeStore {
	return &fakeStore{expenses: make(map[int64]*Expense)}
}

func (f *fakeStore) CreateWithParticipants(_ context.Context, expense *Expense, shares []split.Output) (*Expense, error) {
	f.nextID++
	expense.ID = f.nextID
	for _, share := range shares {
		expense.Participants = append(expense.Participants, &Participant{
			ExpenseID: expense.ID,
			UserID:    share.UserID,
			Share:     share.Share,
		})
	}
	f.expenses[expense.ID] = expense
	return expense, nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*Expense, error) {
	return f.expenses[id], nil
}

func (f *fakeStore) ListByGroup(_ context.Context, groupID int64) ([]*Expense, error) {
	var out []*Expense
	for _, e := range f.expenses {
		if e.GroupID != nil && *e.GroupID == groupID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) ListRecentForUser(_ context.Context, userID int64, limit int) ([]*Expense, error) {
	var out []*Expense
	for _, e := range f.expenses {
		if e.InvolvesUser(userID) {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) MarkSettled(_ context.Context, id int64) (*Expense, error) {
	e := f.expenses[id]
	now := time.Now()
	e.Settled = true
	e.SettledAt = &now
	return e, nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) error {
	delete(f.expenses, id)
	return nil
}

func (f *fakeStore) SplitSummary(_ context.Context, userID int64) (decimal.Decimal, decimal.Decimal, error) {
	paid, owed := decimal.Zero, decimal.Zero
	for _, e := range f.expenses {
		if e.PayerID == userID {
			paid = paid.Add(e.Amount)
		}
		for _, p := range e.Participants {
			if p.UserID == userID {
				owed = owed.Add(p.Share)
			}
		}
	}
	return paid, owed, nil
}

func (f *fakeStore) MonthlySpending(_ context.Context, userID int64) ([]MonthlySpendingResponse, error) {
	totals := make(map[string]decimal.Decimal)
	for _, e := range f.expenses {
		if e.PayerID == userID {
			month := e.Date.Format("2006-01")
			totals[month] = totals[month].Add(e.Amount)
		}
	}
	var out []MonthlySpendingResponse
	for month, total := range totals {
		out = append(out, MonthlySpendingResponse{Month: month, Total: total})
	}
	return out, nil
}

// fakeLedger tracks net pairwise debt: balances[{debtor, creditor}] is what
// debtor owes creditor. Reverse rejects going negative like the real ledger.
type fakeLedger struct {
	balances map[[2]int64]decimal.Decimal
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{balances: make(map[[2]int64]decimal.Decimal)}
}

func (f *fakeLedger) ApplyExpense(_ context.Context, payerID int64, shares []friend.ParticipantShare) error {
	for _, s := range shares {
		if s.UserID == payerID || s.Share.IsZero() {
			continue
		}
		key := [2]int64{s.UserID, payerID}
		f.balances[key] = f.balances[key].Add(s.Share)
	}
	return nil
}

func (f *fakeLedger) ReverseExpense(_ context.Context, payerID int64, shares []friend.ParticipantShare) error {
	for _, s := range shares {
		if s.UserID == payerID || s.Share.IsZero() {
			continue
		}
		key := [2]int64{s.UserID, payerID}
		if f.balances[key].Sub(s.Share).IsNegative() {
			return friend.ErrNegativeBalance
		}
	}
	for _, s := range shares {
		if s.UserID == payerID || s.Share.IsZero() {
			continue
		}
		key := [2]int64{s.UserID, payerID}
		f.balances[key] = f.balances[key].Sub(s.Share)
	}
	return nil
}

type fakeGroups struct {
	members map[int64][]int64
	admins  map[int64][]int64
	totals  map[int64]decimal.Decimal
}

func newFakeGroups() *fakeGroups {
	return &fakeGroups{
		members: make(map[int64][]int64),
		admins:  make(map[int64][]int64),
		totals:  make(map[int64]decimal.Decimal),
	}
}

func (f *fakeGroups) IsMember(_ context.Context, groupID, userID int64) (bool, error) {
	for _, id := range f.members[groupID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeGroups) IsAdmin(_ context.Context, groupID, userID int64) (bool, error) {
	for _, id := range f.admins[groupID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeGroups) AddToTotal(_ context.Context, id int64, delta decimal.Decimal) error {
	total := f.totals[id].Add(delta)
	if total.IsNegative() {
		total = decimal.Zero
	}
	f.totals[id] = total
	return nil
}

func newTestService() (*Service, *fakeStore, *fakeLedger, *fakeGroups) {
	store := newFakeStore()
	ledger := newFakeLedger()
	groups := newFakeGroups()
	return NewService(store, ledger, groups), store, ledger, groups
}

func equalRequest(payerID int64, amount string, userIDs ...int64) *CreateExpenseRequest {
	req := &CreateExpenseRequest{
		Description: "Dinner",
		Amount:      amt(amount),
		PayerID:     payerID,
		SplitType:   "EQUAL",
	}
	for _, id := range userIDs {
		req.Participants = append(req.Participants, ParticipantInput{UserID: id})
	}
	return req
}

func TestCreateEqualSplitUpdatesLedger(t *testing.T) {
	svc, _, ledger, _ := newTestService()
	ctx := context.Background()

	expense, err := svc.Create(ctx, 1, equalRequest(1, "90", 1, 2, 3))
	require.NoError(t, err)

	require.Len(t, expense.Participants, 3)
	assert.True(t, ledger.balances[[2]int64{2, 1}].Equal(amt("30")))
	assert.True(t, ledger.balances[[2]int64{3, 1}].Equal(amt("30")))
	_, ok := ledger.balances[[2]int64{1, 1}]
	assert.False(t, ok, "payer must not owe themselves")
}

func TestCreateExactSplit(t *testing.T) {
	svc, _, ledger, _ := newTestService()
	ctx := context.Background()

	req := &CreateExpenseRequest{
		Description: "Groceries",
		Amount:      amt("100"),
		PayerID:     1,
		SplitType:   "EXACT",
		Participants: []ParticipantInput{
			{UserID: 1, Amount: amtPtr("70")},
			{UserID: 2, Amount: amtPtr("30")},
		},
	}
	_, err := svc.Create(ctx, 1, req)
	require.NoError(t, err)
	assert.True(t, ledger.balances[[2]int64{2, 1}].Equal(amt("30")))
}

func TestCreateExactSplitMismatchRejected(t *testing.T) {
	svc, store, _, _ := newTestService()
	ctx := context.Background()

	req := &CreateExpenseRequest{
		Description: "Groceries",
		Amount:      amt("100"),
		PayerID:     1,
		SplitType:   "EXACT",
		Participants: []ParticipantInput{
			{UserID: 1, Amount: amtPtr("70")},
			{UserID: 2, Amount: amtPtr("20")},
		},
	}
	_, err := svc.Create(ctx, 1, req)

	var mismatch *split.MismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Empty(t, store.expenses, "rejected expense must not be persisted")
}

func TestCreateRequiresPayerAmongParticipants(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Create(context.Background(), 1, equalRequest(1, "90", 2, 3))
	assert.ErrorIs(t, err, ErrPayerNotListed)
}

func TestCreateRequiresDescription(t *testing.T) {
	svc, _, _, _ := newTestService()

	req := equalRequest(1, "90", 1, 2)
	req.Description = "   "
	_, err := svc.Create(context.Background(), 1, req)
	assert.ErrorIs(t, err, ErrDescriptionMissing)
}

func TestCreateUnknownSplitModeRejected(t *testing.T) {
	svc, _, _, _ := newTestService()

	req := equalRequest(1, "90", 1, 2)
	req.SplitType = "PERCENT"
	_, err := svc.Create(context.Background(), 1, req)
	assert.ErrorIs(t, err, split.ErrUnknownMode)
}

func TestCreateGroupExpenseBumpsTotal(t *testing.T) {
	svc, _, _, groups := newTestService()
	ctx := context.Background()
	groups.members[7] = []int64{1, 2, 3}

	groupID := int64(7)
	req := equalRequest(1, "90", 1, 2, 3)
	req.GroupID = &groupID

	_, err := svc.Create(ctx, 1, req)
	require.NoError(t, err)
	assert.True(t, groups.totals[7].Equal(amt("90")))

	_, err = svc.Create(ctx, 2, func() *CreateExpenseRequest {
		r := equalRequest(2, "30", 1, 2)
		r.GroupID = &groupID
		return r
	}())
	require.NoError(t, err)
	assert.True(t, groups.totals[7].Equal(amt("120")))
}

func TestCreateGroupExpenseRequiresMembership(t *testing.T) {
	svc, store, _, groups := newTestService()
	groups.members[7] = []int64{2, 3}

	groupID := int64(7)
	req := equalRequest(1, "90", 1, 2)
	req.GroupID = &groupID

	_, err := svc.Create(context.Background(), 1, req)
	assert.ErrorIs(t, err, ErrNotGroupMember)
	assert.Empty(t, store.expenses)
}

func TestDeleteReversesLedgerAndGroupTotal(t *testing.T) {
	svc, store, ledger, groups := newTestService()
	ctx := context.Background()
	groups.members[7] = []int64{1, 2, 3}

	groupID := int64(7)
	req := equalRequest(1, "90", 1, 2, 3)
	req.GroupID = &groupID

	expense, err := svc.Create(ctx, 1, req)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, 1, expense.ID))

	assert.True(t, ledger.balances[[2]int64{2, 1}].IsZero())
	assert.True(t, ledger.balances[[2]int64{3, 1}].IsZero())
	assert.True(t, groups.totals[7].IsZero())
	assert.Empty(t, store.expenses)
}

func TestDeleteAuthorization(t *testing.T) {
	svc, store, _, groups := newTestService()
	ctx := context.Background()
	groups.members[7] = []int64{1, 2, 3}
	groups.admins[7] = []int64{3}

	groupID := int64(7)
	req := equalRequest(1, "90", 1, 2, 3)
	req.GroupID = &groupID

	expense, err := svc.Create(ctx, 1, req)
	require.NoError(t, err)

	// plain member who did not create it
	err = svc.Delete(ctx, 2, expense.ID)
	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.Len(t, store.expenses, 1)

	// group admin may delete
	require.NoError(t, svc.Delete(ctx, 3, expense.ID))
	assert.Empty(t, store.expenses)
}

func TestDeletePersonalExpenseCreatorOnly(t *testing.T) {
	svc, store, _, _ := newTestService()
	ctx := context.Background()

	expense, err := svc.Create(ctx, 1, equalRequest(1, "50", 1, 2))
	require.NoError(t, err)

	err = svc.Delete(ctx, 2, expense.ID)
	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.Len(t, store.expenses, 1)

	require.NoError(t, svc.Delete(ctx, 1, expense.ID))
}

func TestDeleteAbortsWhenReversalWouldGoNegative(t *testing.T) {
	svc, store, ledger, _ := newTestService()
	ctx := context.Background()

	expense, err := svc.Create(ctx, 1, equalRequest(1, "90", 1, 2, 3))
	require.NoError(t, err)

	// user 2 already settled part of the debt out of band
	key := [2]int64{2, 1}
	ledger.balances[key] = amt("10")

	err = svc.Delete(ctx, 1, expense.ID)
	assert.ErrorIs(t, err, friend.ErrNegativeBalance)
	assert.Len(t, store.expenses, 1, "expense must stay when reversal fails")
	assert.True(t, ledger.balances[[2]int64{3, 1}].Equal(amt("30")), "untouched balances keep their value")
}

func TestSettleFlagLeavesLedgerAlone(t *testing.T) {
	svc, _, ledger, _ := newTestService()
	ctx := context.Background()

	expense, err := svc.Create(ctx, 1, equalRequest(1, "90", 1, 2, 3))
	require.NoError(t, err)

	settled, err := svc.Settle(ctx, 2, expense.ID)
	require.NoError(t, err)
	assert.True(t, settled.Settled)
	require.NotNil(t, settled.SettledAt)
	assert.True(t, ledger.balances[[2]int64{2, 1}].Equal(amt("30")), "settle flag must not touch balances")
}

func TestSettleRequiresInvolvement(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	expense, err := svc.Create(ctx, 1, equalRequest(1, "90", 1, 2))
	require.NoError(t, err)

	_, err = svc.Settle(ctx, 99, expense.ID)
	assert.ErrorIs(t, err, ErrNotInvolved)
}

func TestSettleTwiceRejected(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	expense, err := svc.Create(ctx, 1, equalRequest(1, "90", 1, 2))
	require.NoError(t, err)

	_, err = svc.Settle(ctx, 1, expense.ID)
	require.NoError(t, err)

	_, err = svc.Settle(ctx, 1, expense.ID)
	assert.ErrorIs(t, err, ErrAlreadySettled)
}

func TestListByGroupRequiresMembership(t *testing.T) {
	svc, _, _, groups := newTestService()
	groups.members[7] = []int64{1}

	_, err := svc.ListByGroup(context.Background(), 2, 7)
	assert.ErrorIs(t, err, ErrNotGroupMember)
}

func TestSplitSummary(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, equalRequest(1, "90", 1, 2, 3))
	require.NoError(t, err)
	_, err = svc.Create(ctx, 2, equalRequest(2, "30", 1, 2))
	require.NoError(t, err)

	summary, err := svc.SplitSummary(ctx, 1)
	require.NoError(t, err)
	assert.True(t, summary.TotalPaid.Equal(amt("90")))
	assert.True(t, summary.TotalOwed.Equal(amt("45")), "own share of both expenses")
	assert.True(t, summary.NetBalance.Equal(amt("45")))
}

func TestDeleteAllForGroup(t *testing.T) {
	svc, store, ledger, groups := newTestService()
	ctx := context.Background()
	groups.members[7] = []int64{1, 2}

	groupID := int64(7)
	for _, amount := range []string{"40", "60"} {
		req := equalRequest(1, amount, 1, 2)
		req.GroupID = &groupID
		_, err := svc.Create(ctx, 1, req)
		require.NoError(t, err)
	}
	require.Len(t, store.expenses, 2)
	assert.True(t, ledger.balances[[2]int64{2, 1}].Equal(amt("50")))

	require.NoError(t, svc.DeleteAllForGroup(ctx, 7))
	assert.Empty(t, store.expenses)
	assert.True(t, ledger.balances[[2]int64{2, 1}].IsZero())
}
