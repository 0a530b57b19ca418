package expense

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/equalify/equalify/internal/expense/split"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const expenseColumns = `e.id, e.description, e.amount, e.group_id, e.payer_id, e.created_by,
		e.category, e.notes, e.date, e.settled, e.settled_at, u.name`

// CreateWithParticipants inserts the expense and its participant shares in a
// single transaction so a failed share insert never leaves an orphan expense.
func (r *Repository) CreateWithParticipants(ctx context.Context, expense *Expense, shares []split.Output) (*Expense, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO expenses (description, amount, group_id, payer_id, created_by, category, notes, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, settled, settled_at`

	err = tx.QueryRowContext(ctx, query,
		expense.Description, expense.Amount, expense.GroupID, expense.PayerID,
		expense.CreatedBy, expense.Category, expense.Notes, expense.Date,
	).Scan(&expense.ID, &expense.Settled, &expense.SettledAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	for _, share := range shares {
		participant := &Participant{ExpenseID: expense.ID, UserID: share.UserID, Share: share.Share}
		err = tx.QueryRowContext(ctx, `
			INSERT INTO expense_participants (expense_id, user_id, share)
			VALUES ($1, $2, $3)
			RETURNING id`,
			participant.ExpenseID, participant.UserID, participant.Share,
		).Scan(&participant.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to create expense participant: %w", err)
		}
		expense.Participants = append(expense.Participants, participant)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return expense, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Expense, error) {
	query := `
		SELECT ` + expenseColumns + `
		FROM expenses e
		JOIN users u ON u.id = e.payer_id
		WHERE e.id = $1`

	expense, err := scanExpense(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, nil
	}
	if err := r.loadParticipants(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

func (r *Repository) loadParticipants(ctx context.Context, expense *Expense) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.expense_id, p.user_id, p.share, u.name
		FROM expense_participants p
		JOIN users u ON u.id = p.user_id
		WHERE p.expense_id = $1
		ORDER BY p.id`, expense.ID)
	if err != nil {
		return fmt.Errorf("failed to get expense participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p Participant
		if err := rows.Scan(&p.ID, &p.ExpenseID, &p.UserID, &p.Share, &p.Name); err != nil {
			return fmt.Errorf("failed to scan expense participant: %w", err)
		}
		expense.Participants = append(expense.Participants, &p)
	}
	return rows.Err()
}

func (r *Repository) ListByGroup(ctx context.Context, groupID int64) ([]*Expense, error) {
	query := `
		SELECT ` + expenseColumns + `
		FROM expenses e
		JOIN users u ON u.id = e.payer_id
		WHERE e.group_id = $1
		ORDER BY e.date DESC, e.id DESC`
	return r.list(ctx, query, groupID)
}

// ListRecentForUser returns the newest expenses the user paid for or
// participates in.
func (r *Repository) ListRecentForUser(ctx context.Context, userID int64, limit int) ([]*Expense, error) {
	query := `
		SELECT DISTINCT ` + expenseColumns + `
		FROM expenses e
		JOIN users u ON u.id = e.payer_id
		LEFT JOIN expense_participants p ON p.expense_id = e.id
		WHERE e.payer_id = $1 OR p.user_id = $1
		ORDER BY e.date DESC, e.id DESC
		LIMIT $2`
	return r.list(ctx, query, userID, limit)
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]*Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, expense := range expenses {
		if err := r.loadParticipants(ctx, expense); err != nil {
			return nil, err
		}
	}
	return expenses, nil
}

// MarkSettled flips the settle flag. The flag is bookkeeping only and does
// not touch the friends ledger.
func (r *Repository) MarkSettled(ctx context.Context, id int64) (*Expense, error) {
	query := `
		UPDATE expenses
		SET settled = TRUE, settled_at = NOW()
		WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return nil, fmt.Errorf("failed to settle expense: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM expense_participants WHERE expense_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete expense participants: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return tx.Commit()
}

// SplitSummary aggregates what the user paid out versus what their shares
// add up to across all expenses.
func (r *Repository) SplitSummary(ctx context.Context, userID int64) (totalPaid, totalOwed decimal.Decimal, err error) {
	query := `
		SELECT
			COALESCE((SELECT SUM(amount) FROM expenses WHERE payer_id = $1), 0),
			COALESCE((SELECT SUM(share) FROM expense_participants WHERE user_id = $1), 0)`

	err = r.db.QueryRowContext(ctx, query, userID).Scan(&totalPaid, &totalOwed)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to get split summary: %w", err)
	}
	return totalPaid, totalOwed, nil
}

func (r *Repository) MonthlySpending(ctx context.Context, userID int64) ([]MonthlySpendingResponse, error) {
	query := `
		SELECT to_char(date, 'YYYY-MM') AS month, SUM(amount)
		FROM expenses
		WHERE payer_id = $1
		GROUP BY month
		ORDER BY month DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get monthly spending: %w", err)
	}
	defer rows.Close()

	var months []MonthlySpendingResponse
	for rows.Next() {
		var m MonthlySpendingResponse
		if err := rows.Scan(&m.Month, &m.Total); err != nil {
			return nil, fmt.Errorf("failed to scan monthly spending: %w", err)
		}
		months = append(months, m)
	}
	return months, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*Expense, error) {
	var e Expense
	err := row.Scan(&e.ID, &e.Description, &e.Amount, &e.GroupID, &e.PayerID, &e.CreatedBy,
		&e.Category, &e.Notes, &e.Date, &e.Settled, &e.SettledAt, &e.PayerName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return &e, nil
}
