package notification

import (
	"context"
	"errors"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Store is the persistence surface the service needs
type Store interface {
	Create(ctx context.Context, n *Notification) (*Notification, error)
	ListByUser(ctx context.Context, userID int64) ([]*Notification, error)
	CountUnread(ctx context.Context, userID int64) (int, error)
	MarkRead(ctx context.Context, userID, id int64) (bool, error)
	MarkAllRead(ctx context.Context, userID int64) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Notify records an in-app notification. Satisfies the Notifier interfaces of
// the friend and group services.
func (s *Service) Notify(ctx context.Context, recipientID, senderID int64, kind, text, resourceType string, resourceID int64) error {
	n := &Notification{
		UserID:       recipientID,
		Kind:         kind,
		Message:      text,
		ResourceType: resourceType,
	}
	if senderID != 0 {
		n.SenderID = &senderID
	}
	if resourceID != 0 {
		n.ResourceID = &resourceID
	}
	_, err := s.store.Create(ctx, n)
	return err
}

func (s *Service) ListMine(ctx context.Context, userID int64) ([]*Notification, int, error) {
	notifications, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return notifications, unread, nil
}

func (s *Service) MarkRead(ctx context.Context, userID, id int64) error {
	ok, err := s.store.MarkRead(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID int64) error {
	return s.store.MarkAllRead(ctx, userID)
}
