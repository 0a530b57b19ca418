package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equalify/equalify/pkg/auth"
)

type fakeStore struct {
	nextID  int64
	users   map[int64]*User
	byEmail map[string]int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[int64]*User), byEmail: make(map[string]int64)}
}

func (f *fakeStore) Create(_ context.Context, name, email, passwordHash string) (*User, error) {
	f.nextID++
	u := &User{ID: f.nextID, Name: name, Email: email, PasswordHash: passwordHash, CreatedAt: time.Now()}
	f.users[u.ID] = u
	f.byEmail[email] = u.ID
	return u, nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*User, error) {
	return f.users[id], nil
}

func (f *fakeStore) GetByEmail(_ context.Context, email string) (*User, error) {
	id, ok := f.byEmail[email]
	if !ok {
		return nil, nil
	}
	return f.users[id], nil
}

func newTestService() (*Service, *auth.TokenManager) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	return NewService(newFakeStore(), tokens), tokens
}

func TestRegisterAndLogin(t *testing.T) {
	svc, tokens := newTestService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, &RegisterRequest{Name: "Alice", Email: "Alice@Example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", registered.Email, "emails are normalized")
	assert.NotEmpty(t, registered.Token)

	userID, err := tokens.Verify(registered.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, userID)

	loggedIn, err := svc.Login(ctx, &LoginRequest{Email: "alice@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, loggedIn.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterRequest{Name: "Alice", Email: "alice@example.com", Password: "hunter22"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, &RegisterRequest{Name: "Other", Email: "ALICE@example.com", Password: "secret"})
	assert.ErrorIs(t, err, ErrEmailAlreadyInUse)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(context.Background(), &RegisterRequest{Name: " ", Email: "a@b.c", Password: "x"})
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterRequest{Name: "Alice", Email: "alice@example.com", Password: "hunter22"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &LoginRequest{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrInvalidCredentials, "unknown email gets the same error as a bad password")
}
