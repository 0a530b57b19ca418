package notification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	nextID        int64
	notifications map[int64]*Notification
}

func newFakeStore() *fakeStore {
	return &fakeStore{notifications: make(map[int64]*Notification)}
}

func (f *fakeStore) Create(_ context.Context, n *Notification) (*Notification, error) {
	f.nextID++
	n.ID = f.nextID
	n.CreatedAt = time.Now()
	f.notifications[n.ID] = n
	return n, nil
}

func (f *fakeStore) ListByUser(_ context.Context, userID int64) ([]*Notification, error) {
	var out []*Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeStore) CountUnread(_ context.Context, userID int64) (int, error) {
	count := 0
	for _, n := range f.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) MarkRead(_ context.Context, userID, id int64) (bool, error) {
	n, ok := f.notifications[id]
	if !ok || n.UserID != userID {
		return false, nil
	}
	n.Read = true
	return true, nil
}

func (f *fakeStore) MarkAllRead(_ context.Context, userID int64) error {
	for _, n := range f.notifications {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

func TestNotifyAndList(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	require.NoError(t, svc.Notify(ctx, 2, 1, KindFriendAdd, "You've been added as a friend", "friend", 10))
	require.NoError(t, svc.Notify(ctx, 2, 1, KindGroupInvite, "You've been added to Trip", "group", 7))
	require.NoError(t, svc.Notify(ctx, 3, 1, KindFriendAdd, "You've been added as a friend", "friend", 11))

	notifications, unread, err := svc.ListMine(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, notifications, 2)
	assert.Equal(t, 2, unread)
}

func TestNotifyWithoutSenderOrResource(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	require.NoError(t, svc.Notify(context.Background(), 2, 0, KindSettlement, "Debt settled", "", 0))

	n := store.notifications[1]
	assert.Nil(t, n.SenderID)
	assert.Nil(t, n.ResourceID)
}

func TestMarkReadGuardedByOwner(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	require.NoError(t, svc.Notify(ctx, 2, 1, KindFriendAdd, "hi", "friend", 10))

	err := svc.MarkRead(ctx, 3, 1)
	assert.ErrorIs(t, err, ErrNotificationNotFound)

	require.NoError(t, svc.MarkRead(ctx, 2, 1))

	_, unread, err := svc.ListMine(ctx, 2)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestMarkAllRead(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Notify(ctx, 2, 1, KindGroupInvite, "hi", "group", 7))
	}
	require.NoError(t, svc.MarkAllRead(ctx, 2))

	_, unread, err := svc.ListMine(ctx, 2)
	require.NoError(t, err)
	assert.Zero(t, unread)
}
