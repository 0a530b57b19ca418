package friend

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/equalify/equalify/internal/user"
)

// Common errors
var (
	ErrFriendNotFound     = errors.New("friend not found")
	ErrNotOwner           = errors.New("not authorized to act on this friend")
	ErrFriendAlreadyAdded = errors.New("friend already added")
	ErrEmailRequired      = errors.New("please provide an email address")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrInvalidDirection   = errors.New("settle type must be theyPaidMe or iPaidThem")
	ErrInvalidReference   = errors.New("reference must be a valid UUID")
)

// ExceedsDebtError reports a settlement larger than the outstanding balance
type ExceedsDebtError struct {
	Requested   decimal.Decimal
	Outstanding decimal.Decimal
}

func (e *ExceedsDebtError) Error() string {
	return fmt.Sprintf("settlement amount exceeds debt: requested %s, outstanding %s", e.Requested, e.Outstanding)
}

// Store is the persistence interface the service depends on
type Store interface {
	Create(ctx context.Context, ownerID int64, friendUserID *int64, name, email string) (*Friend, error)
	GetByID(ctx context.Context, id int64) (*Friend, error)
	GetByOwnerAndCounterparty(ctx context.Context, ownerID, counterpartyID int64) (*Friend, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*Friend, error)
	ListOwing(ctx context.Context, ownerID int64) ([]*Friend, error)
	ListOwed(ctx context.Context, ownerID int64) ([]*Friend, error)
	Delete(ctx context.Context, id int64) error
	AdjustPair(ctx context.Context, ownerID, counterpartyID int64, owesDelta, isOwedDelta decimal.Decimal) (*Friend, error)
	ReduceOwes(ctx context.Context, id int64, amount decimal.Decimal) (*Friend, error)
	ReduceIsOwed(ctx context.Context, id int64, amount decimal.Decimal) (*Friend, error)
	TotalBalance(ctx context.Context, ownerID int64) (owes, isOwed decimal.Decimal, err error)
	CreateSettlement(ctx context.Context, ownerID, friendID int64, counterpartyID *int64, ref uuid.UUID, amount decimal.Decimal, direction Direction) (*Settlement, error)
	GetSettlementByReference(ctx context.Context, ownerID int64, ref uuid.UUID) (*Settlement, error)
	ListSettlements(ctx context.Context, ownerID int64) ([]*Settlement, error)
}

// UserDirectory resolves registered users when linking friends by email
type UserDirectory interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

// Notifier emits in-app notifications; may be nil
type Notifier interface {
	Notify(ctx context.Context, recipientID, senderID int64, kind, text, resourceType string, resourceID int64) error
}

// Service owns the pairwise balance ledger and the settlement processor
type Service struct {
	repo     Store
	users    UserDirectory
	notifier Notifier
}

// NewService creates a new friend service
func NewService(repo Store, users UserDirectory, notifier Notifier) *Service {
	return &Service{repo: repo, users: users, notifier: notifier}
}

// AddFriend creates a zero-balance friend record, linking it to a registered
// account when one exists for the email
func (s *Service) AddFriend(ctx context.Context, ownerID int64, req *AddFriendRequest) (*Friend, error) {
	if req.Email == "" {
		return nil, ErrEmailRequired
	}

	name := req.Name
	var friendUserID *int64

	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if u != nil {
		existing, err := s.repo.GetByOwnerAndCounterparty(ctx, ownerID, u.ID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrFriendAlreadyAdded
		}
		friendUserID = &u.ID
		name = u.Name
	}

	f, err := s.repo.Create(ctx, ownerID, friendUserID, name, req.Email)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil && friendUserID != nil {
		// Best effort; a lost notification never fails the request
		_ = s.notifier.Notify(ctx, *friendUserID, ownerID, "friend_add", "You've been added as a friend", "friend", f.ID)
	}

	return f, nil
}

// ListFriends retrieves all friends of a user
func (s *Service) ListFriends(ctx context.Context, ownerID int64) ([]*Friend, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// ListOwing retrieves the friends the user still owes money to
func (s *Service) ListOwing(ctx context.Context, ownerID int64) ([]*Friend, error) {
	return s.repo.ListOwing(ctx, ownerID)
}

// ListOwed retrieves the friends who still owe the user money
func (s *Service) ListOwed(ctx context.Context, ownerID int64) ([]*Friend, error) {
	return s.repo.ListOwed(ctx, ownerID)
}

// DeleteFriend removes a friend record owned by the caller
func (s *Service) DeleteFriend(ctx context.Context, ownerID, friendID int64) error {
	f, err := s.repo.GetByID(ctx, friendID)
	if err != nil {
		return err
	}
	if f == nil {
		return ErrFriendNotFound
	}
	if f.UserID != ownerID {
		return ErrNotOwner
	}
	return s.repo.Delete(ctx, friendID)
}

// TotalBalance sums the user's ledger: what they owe, what they are owed,
// and the net (isOwed - owes)
func (s *Service) TotalBalance(ctx context.Context, ownerID int64) (*BalanceResponse, error) {
	owes, isOwed, err := s.repo.TotalBalance(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &BalanceResponse{
		TotalOwes:   owes,
		TotalIsOwed: isOwed,
		NetBalance:  isOwed.Sub(owes),
	}, nil
}

// ApplyExpense folds an expense into the ledger. For every participant other
// than the payer, the participant's record gains owes += share and the
// payer's mirror record gains isOwed += share. Each record is adjusted with
// a single atomic statement.
func (s *Service) ApplyExpense(ctx context.Context, payerID int64, shares []ParticipantShare) error {
	return s.fold(ctx, payerID, shares, false)
}

// ReverseExpense applies the exact inverse of ApplyExpense using the shares
// stored on the expense record, so deletion restores every balance precisely
func (s *Service) ReverseExpense(ctx context.Context, payerID int64, shares []ParticipantShare) error {
	return s.fold(ctx, payerID, shares, true)
}

func (s *Service) fold(ctx context.Context, payerID int64, shares []ParticipantShare, reverse bool) error {
	for _, p := range shares {
		if p.UserID == payerID || p.Share.IsZero() {
			continue
		}

		delta := p.Share
		if reverse {
			delta = delta.Neg()
		}

		if _, err := s.repo.AdjustPair(ctx, p.UserID, payerID, delta, decimal.Zero); err != nil {
			return fmt.Errorf("ledger update for user %d: %w", p.UserID, err)
		}
		if _, err := s.repo.AdjustPair(ctx, payerID, p.UserID, decimal.Zero, delta); err != nil {
			return fmt.Errorf("ledger update for payer %d: %w", payerID, err)
		}
	}
	return nil
}

// SettleResult is the outcome of a recorded settlement
type SettleResult struct {
	Settlement *Settlement `json:"settlement"`
	Friend     *Friend     `json:"friend"`
}

// Settle records a repayment against one friend balance. theyPaidMe reduces
// the owner's owes; iPaidThem reduces the owner's isOwed. A settlement that
// would overdraw the recorded debt is rejected whole; nothing is clamped.
// Replaying a request with an already-recorded reference returns the original
// settlement without touching the ledger again.
func (s *Service) Settle(ctx context.Context, ownerID, friendID int64, req *SettleRequest) (*SettleResult, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if req.SettleType != DirectionTheyPaidMe && req.SettleType != DirectionIPaidThem {
		return nil, ErrInvalidDirection
	}

	ref := uuid.New()
	if req.Reference != "" {
		parsed, err := uuid.Parse(req.Reference)
		if err != nil {
			return nil, ErrInvalidReference
		}
		ref = parsed

		existing, err := s.repo.GetSettlementByReference(ctx, ownerID, ref)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			f, err := s.repo.GetByID(ctx, existing.FriendID)
			if err != nil {
				return nil, err
			}
			return &SettleResult{Settlement: existing, Friend: f}, nil
		}
	}

	f, err := s.repo.GetByID(ctx, friendID)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, ErrFriendNotFound
	}
	if f.UserID != ownerID {
		return nil, ErrNotOwner
	}

	var outstanding decimal.Decimal
	if req.SettleType == DirectionTheyPaidMe {
		outstanding = f.Owes
	} else {
		outstanding = f.IsOwed
	}
	if req.Amount.GreaterThan(outstanding) {
		return nil, &ExceedsDebtError{Requested: req.Amount, Outstanding: outstanding}
	}

	var updated *Friend
	if req.SettleType == DirectionTheyPaidMe {
		updated, err = s.repo.ReduceOwes(ctx, friendID, req.Amount)
	} else {
		updated, err = s.repo.ReduceIsOwed(ctx, friendID, req.Amount)
	}
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// The guarded update lost a race; the debt shrank underneath us.
		return nil, &ExceedsDebtError{Requested: req.Amount, Outstanding: outstanding}
	}

	// Keep the counterparty's mirror record consistent. Each side is its own
	// atomic statement; no cross-record transaction is required.
	if f.FriendUserID != nil {
		var mirrorErr error
		if req.SettleType == DirectionTheyPaidMe {
			_, mirrorErr = s.repo.AdjustPair(ctx, *f.FriendUserID, ownerID, decimal.Zero, req.Amount.Neg())
		} else {
			_, mirrorErr = s.repo.AdjustPair(ctx, *f.FriendUserID, ownerID, req.Amount.Neg(), decimal.Zero)
		}
		if mirrorErr != nil {
			return nil, fmt.Errorf("mirror ledger update: %w", mirrorErr)
		}
	}

	settlement, err := s.repo.CreateSettlement(ctx, ownerID, friendID, f.FriendUserID, ref, req.Amount, req.SettleType)
	if err != nil {
		return nil, err
	}

	return &SettleResult{Settlement: settlement, Friend: updated}, nil
}

// ListSettlements retrieves a user's recorded settlements
func (s *Service) ListSettlements(ctx context.Context, ownerID int64) ([]*Settlement, error) {
	return s.repo.ListSettlements(ctx, ownerID)
}
