package friend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// ErrNegativeBalance is returned when an adjustment would drive a balance
// below zero. The statement is rejected as a whole; nothing is clamped.
var ErrNegativeBalance = errors.New("balance adjustment would go negative")

// Repository handles friend and settlement data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new friend repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const friendColumns = `id, user_id, friend_user_id, name, email, owes, is_owed, date_added`

// Create inserts a new friend record with zero balances
func (r *Repository) Create(ctx context.Context, ownerID int64, friendUserID *int64, name, email string) (*Friend, error) {
	query := `
		INSERT INTO friends (user_id, friend_user_id, name, email, owes, is_owed)
		VALUES ($1, $2, $3, $4, 0, 0)
		RETURNING ` + friendColumns

	f, err := scanFriend(r.db.QueryRowContext(ctx, query, ownerID, friendUserID, name, email))
	if err != nil {
		return nil, fmt.Errorf("failed to create friend: %w", err)
	}
	return f, nil
}

// GetByID retrieves a friend record by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Friend, error) {
	query := `SELECT ` + friendColumns + ` FROM friends WHERE id = $1`
	f, err := scanFriend(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get friend: %w", err)
	}
	return f, nil
}

// GetByOwnerAndCounterparty retrieves the ledger record one user holds about another
func (r *Repository) GetByOwnerAndCounterparty(ctx context.Context, ownerID, counterpartyID int64) (*Friend, error) {
	query := `SELECT ` + friendColumns + ` FROM friends WHERE user_id = $1 AND friend_user_id = $2`
	f, err := scanFriend(r.db.QueryRowContext(ctx, query, ownerID, counterpartyID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get friend: %w", err)
	}
	return f, nil
}

// ListByOwner retrieves all friends of a user
func (r *Repository) ListByOwner(ctx context.Context, ownerID int64) ([]*Friend, error) {
	query := `SELECT ` + friendColumns + ` FROM friends WHERE user_id = $1 ORDER BY date_added DESC`
	return r.list(ctx, query, ownerID)
}

// ListOwing retrieves the friends the owner owes money to (owes > 0)
func (r *Repository) ListOwing(ctx context.Context, ownerID int64) ([]*Friend, error) {
	query := `SELECT ` + friendColumns + ` FROM friends WHERE user_id = $1 AND owes > 0 ORDER BY owes DESC`
	return r.list(ctx, query, ownerID)
}

// ListOwed retrieves the friends who owe the owner money (is_owed > 0)
func (r *Repository) ListOwed(ctx context.Context, ownerID int64) ([]*Friend, error) {
	query := `SELECT ` + friendColumns + ` FROM friends WHERE user_id = $1 AND is_owed > 0 ORDER BY is_owed DESC`
	return r.list(ctx, query, ownerID)
}

// Delete removes a friend record
func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM friends WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete friend: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AdjustPair applies deltas to the ledger record ownerID holds about
// counterpartyID, creating it on first use. The whole operation is one
// statement, so concurrent adjustments to the same pair never lose updates;
// the table's non-negativity checks reject (rather than clamp) any
// adjustment that would go below zero.
func (r *Repository) AdjustPair(ctx context.Context, ownerID, counterpartyID int64, owesDelta, isOwedDelta decimal.Decimal) (*Friend, error) {
	query := `
		INSERT INTO friends (user_id, friend_user_id, name, email, owes, is_owed)
		SELECT $1, u.id, u.name, u.email, $3, $4
		FROM users u WHERE u.id = $2
		ON CONFLICT (user_id, friend_user_id)
		DO UPDATE SET owes = friends.owes + EXCLUDED.owes,
		              is_owed = friends.is_owed + EXCLUDED.is_owed
		RETURNING ` + friendColumns

	f, err := scanFriend(r.db.QueryRowContext(ctx, query, ownerID, counterpartyID, owesDelta, isOwedDelta))
	if err != nil {
		if isCheckViolation(err) {
			return nil, ErrNegativeBalance
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("counterparty user %d not found", counterpartyID)
		}
		return nil, fmt.Errorf("failed to adjust balance: %w", err)
	}
	return f, nil
}

// ReduceOwes atomically decrements owes on one friend record, guarded so the
// result cannot go negative. Returns (nil, nil) when the guard fails.
func (r *Repository) ReduceOwes(ctx context.Context, id int64, amount decimal.Decimal) (*Friend, error) {
	query := `
		UPDATE friends SET owes = owes - $2
		WHERE id = $1 AND owes >= $2
		RETURNING ` + friendColumns
	return r.reduce(ctx, query, id, amount)
}

// ReduceIsOwed atomically decrements is_owed on one friend record, guarded so
// the result cannot go negative. Returns (nil, nil) when the guard fails.
func (r *Repository) ReduceIsOwed(ctx context.Context, id int64, amount decimal.Decimal) (*Friend, error) {
	query := `
		UPDATE friends SET is_owed = is_owed - $2
		WHERE id = $1 AND is_owed >= $2
		RETURNING ` + friendColumns
	return r.reduce(ctx, query, id, amount)
}

func (r *Repository) reduce(ctx context.Context, query string, id int64, amount decimal.Decimal) (*Friend, error) {
	f, err := scanFriend(r.db.QueryRowContext(ctx, query, id, amount))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to reduce balance: %w", err)
	}
	return f, nil
}

// TotalBalance sums owes and is_owed across all friend records of a user
func (r *Repository) TotalBalance(ctx context.Context, ownerID int64) (owes, isOwed decimal.Decimal, err error) {
	query := `
		SELECT COALESCE(SUM(owes), 0), COALESCE(SUM(is_owed), 0)
		FROM friends WHERE user_id = $1
	`
	if err = r.db.QueryRowContext(ctx, query, ownerID).Scan(&owes, &isOwed); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to total balances: %w", err)
	}
	return owes, isOwed, nil
}

// CreateSettlement records an accepted repayment
func (r *Repository) CreateSettlement(ctx context.Context, ownerID, friendID int64, counterpartyID *int64, ref uuid.UUID, amount decimal.Decimal, direction Direction) (*Settlement, error) {
	query := `
		INSERT INTO settlements (reference, user_id, friend_id, counterparty_id, amount, direction)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, reference, user_id, friend_id, counterparty_id, amount, direction, created_at
	`

	s := &Settlement{}
	err := r.db.QueryRowContext(ctx, query, ref, ownerID, friendID, counterpartyID, amount, direction).Scan(
		&s.ID, &s.Reference, &s.UserID, &s.FriendID, &s.CounterpartyID, &s.Amount, &s.Direction, &s.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record settlement: %w", err)
	}
	return s, nil
}

// GetSettlementByReference retrieves a settlement previously recorded by this
// user under the given idempotency reference
func (r *Repository) GetSettlementByReference(ctx context.Context, ownerID int64, ref uuid.UUID) (*Settlement, error) {
	query := `
		SELECT id, reference, user_id, friend_id, counterparty_id, amount, direction, created_at
		FROM settlements WHERE user_id = $1 AND reference = $2
	`

	s := &Settlement{}
	err := r.db.QueryRowContext(ctx, query, ownerID, ref).Scan(
		&s.ID, &s.Reference, &s.UserID, &s.FriendID, &s.CounterpartyID, &s.Amount, &s.Direction, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return s, nil
}

// ListSettlements retrieves a user's recorded settlements, newest first
func (r *Repository) ListSettlements(ctx context.Context, ownerID int64) ([]*Settlement, error) {
	query := `
		SELECT id, reference, user_id, friend_id, counterparty_id, amount, direction, created_at
		FROM settlements WHERE user_id = $1 ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*Settlement
	for rows.Next() {
		s := &Settlement{}
		if err := rows.Scan(&s.ID, &s.Reference, &s.UserID, &s.FriendID, &s.CounterpartyID, &s.Amount, &s.Direction, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, s)
	}
	return settlements, rows.Err()
}

func (r *Repository) list(ctx context.Context, query string, args ...interface{}) ([]*Friend, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	var friends []*Friend
	for rows.Next() {
		f := &Friend{}
		if err := rows.Scan(&f.ID, &f.UserID, &f.FriendUserID, &f.Name, &f.Email, &f.Owes, &f.IsOwed, &f.DateAdded); err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		friends = append(friends, f)
	}
	return friends, rows.Err()
}

func scanFriend(row *sql.Row) (*Friend, error) {
	f := &Friend{}
	err := row.Scan(&f.ID, &f.UserID, &f.FriendUserID, &f.Name, &f.Email, &f.Owes, &f.IsOwed, &f.DateAdded)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func isCheckViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23514"
}
