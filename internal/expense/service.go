package expense

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/equalify/equalify/internal/expense/split"
	"github.com/equalify/equalify/internal/friend"
)

var (
	ErrExpenseNotFound    = errors.New("expense not found")
	ErrGroupNotFound      = errors.New("group not found")
	ErrNotGroupMember     = errors.New("user is not a member of this group")
	ErrNotAuthorized      = errors.New("user is not allowed to modify this expense")
	ErrNotInvolved        = errors.New("user is not involved in this expense")
	ErrAlreadySettled     = errors.New("expense is already settled")
	ErrDescriptionMissing = errors.New("description is required")
	ErrPayerNotListed     = errors.New("payer must be one of the participants")
)

// Store is the persistence surface the service needs
type Store interface {
	CreateWithParticipants(ctx context.Context, expense *Expense, shares []split.Output) (*Expense, error)
	GetByID(ctx context.Context, id int64) (*Expense, error)
	ListByGroup(ctx context.Context, groupID int64) ([]*Expense, error)
	ListRecentForUser(ctx context.Context, userID int64, limit int) ([]*Expense, error)
	MarkSettled(ctx context.Context, id int64) (*Expense, error)
	Delete(ctx context.Context, id int64) error
	SplitSummary(ctx context.Context, userID int64) (totalPaid, totalOwed decimal.Decimal, err error)
	MonthlySpending(ctx context.Context, userID int64) ([]MonthlySpendingResponse, error)
}

// Ledger folds expense shares into pairwise friend balances. Implemented by
// friend.Service.
type Ledger interface {
	ApplyExpense(ctx context.Context, payerID int64, shares []friend.ParticipantShare) error
	ReverseExpense(ctx context.Context, payerID int64, shares []friend.ParticipantShare) error
}

// Groups is the slice of the group repository expenses care about
type Groups interface {
	IsMember(ctx context.Context, groupID, userID int64) (bool, error)
	IsAdmin(ctx context.Context, groupID, userID int64) (bool, error)
	AddToTotal(ctx context.Context, id int64, delta decimal.Decimal) error
}

const recentLimit = 10

type Service struct {
	store  Store
	ledger Ledger
	groups Groups
	splits *split.Factory
}

func NewService(store Store, ledger Ledger, groups Groups) *Service {
	return &Service{
		store:  store,
		ledger: ledger,
		groups: groups,
		splits: split.NewFactory(),
	}
}

// Create validates the request, computes the split, persists the expense with
// its shares and folds the non-payer shares into the friends ledger. When the
// expense belongs to a group the group's running total is bumped as well.
func (s *Service) Create(ctx context.Context, creatorID int64, req *CreateExpenseRequest) (*Expense, error) {
	if strings.TrimSpace(req.Description) == "" {
		return nil, ErrDescriptionMissing
	}

	payerID := req.PayerID
	if payerID == 0 {
		payerID = creatorID
	}

	if req.GroupID != nil {
		member, err := s.groups.IsMember(ctx, *req.GroupID, creatorID)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, ErrNotGroupMember
		}
	}

	strategy, err := s.splits.CreateFromString(req.SplitType)
	if err != nil {
		return nil, err
	}

	inputs := make([]split.Input, len(req.Participants))
	payerListed := false
	for i, p := range req.Participants {
		inputs[i] = split.Input{UserID: p.UserID, Amount: p.Amount}
		if p.UserID == payerID {
			payerListed = true
		}
	}
	if !payerListed {
		return nil, ErrPayerNotListed
	}

	shares, err := strategy.Calculate(req.Amount, inputs)
	if err != nil {
		return nil, err
	}

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}

	expense := &Expense{
		Description: strings.TrimSpace(req.Description),
		Amount:      req.Amount,
		GroupID:     req.GroupID,
		PayerID:     payerID,
		CreatedBy:   creatorID,
		Category:    req.Category,
		Notes:       req.Notes,
		Date:        date,
	}

	expense, err = s.store.CreateWithParticipants(ctx, expense, shares)
	if err != nil {
		return nil, err
	}

	if err := s.ledger.ApplyExpense(ctx, payerID, expense.Shares()); err != nil {
		return nil, err
	}

	if req.GroupID != nil {
		if err := s.groups.AddToTotal(ctx, *req.GroupID, req.Amount); err != nil {
			return nil, err
		}
	}
	return expense, nil
}

func (s *Service) Get(ctx context.Context, callerID, id int64) (*Expense, error) {
	expense, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, ErrExpenseNotFound
	}
	if !expense.InvolvesUser(callerID) {
		if expense.GroupID == nil {
			return nil, ErrNotInvolved
		}
		member, err := s.groups.IsMember(ctx, *expense.GroupID, callerID)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, ErrNotInvolved
		}
	}
	return expense, nil
}

// Delete reverses the ledger fold from the stored shares, shrinks the group
// total and removes the expense. Reversal runs first so an expense that
// cannot be unwound (a balance already settled down) is left in place.
func (s *Service) Delete(ctx context.Context, callerID, id int64) error {
	expense, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if expense == nil {
		return ErrExpenseNotFound
	}

	allowed := expense.CreatedBy == callerID
	if !allowed && expense.GroupID != nil {
		allowed, err = s.groups.IsAdmin(ctx, *expense.GroupID, callerID)
		if err != nil {
			return err
		}
	}
	if !allowed {
		return ErrNotAuthorized
	}

	if err := s.ledger.ReverseExpense(ctx, expense.PayerID, expense.Shares()); err != nil {
		return err
	}

	if expense.GroupID != nil {
		if err := s.groups.AddToTotal(ctx, *expense.GroupID, expense.Amount.Neg()); err != nil {
			return err
		}
	}
	return s.store.Delete(ctx, id)
}

// Settle flips the bookkeeping flag on the expense. It deliberately leaves
// the friends ledger alone; actual debt settlement goes through the friend
// settle endpoint.
func (s *Service) Settle(ctx context.Context, callerID, id int64) (*Expense, error) {
	expense, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, ErrExpenseNotFound
	}
	if !expense.InvolvesUser(callerID) {
		return nil, ErrNotInvolved
	}
	if expense.Settled {
		return nil, ErrAlreadySettled
	}
	return s.store.MarkSettled(ctx, id)
}

func (s *Service) ListByGroup(ctx context.Context, callerID, groupID int64) ([]*Expense, error) {
	member, err := s.groups.IsMember(ctx, groupID, callerID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotGroupMember
	}
	return s.store.ListByGroup(ctx, groupID)
}

func (s *Service) ListRecent(ctx context.Context, userID int64) ([]*Expense, error) {
	return s.store.ListRecentForUser(ctx, userID, recentLimit)
}

func (s *Service) SplitSummary(ctx context.Context, userID int64) (*SplitSummaryResponse, error) {
	paid, owed, err := s.store.SplitSummary(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &SplitSummaryResponse{
		TotalPaid:  paid,
		TotalOwed:  owed,
		NetBalance: paid.Sub(owed),
	}, nil
}

func (s *Service) MonthlySpending(ctx context.Context, userID int64) ([]MonthlySpendingResponse, error) {
	return s.store.MonthlySpending(ctx, userID)
}

// DeleteAllForGroup unwinds and removes every expense in a group. Used by the
// group service before the group itself is deleted.
func (s *Service) DeleteAllForGroup(ctx context.Context, groupID int64) error {
	expenses, err := s.store.ListByGroup(ctx, groupID)
	if err != nil {
		return err
	}
	for _, expense := range expenses {
		if err := s.ledger.ReverseExpense(ctx, expense.PayerID, expense.Shares()); err != nil {
			return err
		}
		if err := s.store.Delete(ctx, expense.ID); err != nil {
			return err
		}
	}
	return nil
}
