package notification

import (
	"context"
	"database/sql"
	"fmt"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, n *Notification) (*Notification, error) {
	query := `
		INSERT INTO notifications (user_id, sender_id, kind, message, resource_type, resource_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, read, created_at`

	err := r.db.QueryRowContext(ctx, query,
		n.UserID, n.SenderID, n.Kind, n.Message, n.ResourceType, n.ResourceID,
	).Scan(&n.ID, &n.Read, &n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return n, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]*Notification, error) {
	query := `
		SELECT n.id, n.user_id, n.sender_id, n.kind, n.message, n.resource_type, n.resource_id,
			n.read, n.created_at, COALESCE(u.name, '')
		FROM notifications n
		LEFT JOIN users u ON u.id = n.sender_id
		WHERE n.user_id = $1
		ORDER BY n.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*Notification
	for rows.Next() {
		var n Notification
		err := rows.Scan(&n.ID, &n.UserID, &n.SenderID, &n.Kind, &n.Message,
			&n.ResourceType, &n.ResourceID, &n.Read, &n.CreatedAt, &n.SenderName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}

func (r *Repository) CountUnread(ctx context.Context, userID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE`
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead flips the read flag; the user_id guard keeps users from touching
// notifications that are not theirs. Returns false when nothing matched.
func (r *Repository) MarkRead(ctx context.Context, userID, id int64) (bool, error) {
	query := `UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to mark notification read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return affected > 0, nil
}

func (r *Repository) MarkAllRead(ctx context.Context, userID int64) error {
	query := `UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
