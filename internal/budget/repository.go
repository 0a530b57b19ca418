package budget

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const categoryColumns = `id, user_id, name, allocated, spent, created_at`

func (r *Repository) Create(ctx context.Context, userID int64, name string, allocated decimal.Decimal) (*Category, error) {
	query := `
		INSERT INTO budget_categories (user_id, name, allocated)
		VALUES ($1, $2, $3)
		RETURNING ` + categoryColumns

	return scanCategory(r.db.QueryRowContext(ctx, query, userID, name, allocated))
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM budget_categories WHERE id = $1`
	return scanCategory(r.db.QueryRowContext(ctx, query, id))
}

func (r *Repository) GetByOwnerAndName(ctx context.Context, userID int64, name string) (*Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM budget_categories WHERE user_id = $1 AND LOWER(name) = LOWER($2)`
	return scanCategory(r.db.QueryRowContext(ctx, query, userID, name))
}

func (r *Repository) ListByOwner(ctx context.Context, userID int64) ([]*Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM budget_categories WHERE user_id = $1 ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list budget categories: %w", err)
	}
	defer rows.Close()

	var categories []*Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *Repository) Update(ctx context.Context, id int64, name *string, allocated *decimal.Decimal) (*Category, error) {
	query := `
		UPDATE budget_categories
		SET name = COALESCE($2, name), allocated = COALESCE($3, allocated)
		WHERE id = $1
		RETURNING ` + categoryColumns

	return scanCategory(r.db.QueryRowContext(ctx, query, id, name, allocated))
}

// AddSpent bumps the running spend atomically
func (r *Repository) AddSpent(ctx context.Context, id int64, delta decimal.Decimal) (*Category, error) {
	query := `
		UPDATE budget_categories
		SET spent = spent + $2
		WHERE id = $1
		RETURNING ` + categoryColumns

	return scanCategory(r.db.QueryRowContext(ctx, query, id, delta))
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM budget_categories WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete budget category: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (*Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Allocated, &c.Spent, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get budget category: %w", err)
	}
	return &c, nil
}
