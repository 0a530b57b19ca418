package budget

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakeStore struct {
	nextID     int64
	categories map[int64]*Category
}

func newFakeStore() *fakeStore {
	return &fakeStore{categories: make(map[int64]*Category)}
}

func (f *fakeStore) Create(_ context.Context, userID int64, name string, allocated decimal.Decimal) (*Category, error) {
	f.nextID++
	c := &Category{
		ID:        f.nextID,
		UserID:    userID,
		Name:      name,
		Allocated: allocated,
		Spent:     decimal.Zero,
		CreatedAt: time.Now(),
	}
	f.categories[c.ID] = c
	return c, nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*Category, error) {
	return f.categories[id], nil
}

func (f *fakeStore) GetByOwnerAndName(_ context.Context, userID int64, name string) (*Category, error) {
	for _, c := range f.categories {
		if c.UserID == userID && strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListByOwner(_ context.Context, userID int64) ([]*Category, error) {
	var out []*Category
	for _, c := range f.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, id int64, name *string, allocated *decimal.Decimal) (*Category, error) {
	c := f.categories[id]
	if name != nil {
		c.Name = *name
	}
	if allocated != nil {
		c.Allocated = *allocated
	}
	return c, nil
}

func (f *fakeStore) AddSpent(_ context.Context, id int64, delta decimal.Decimal) (*Category, error) {
	c := f.categories[id]
	c.Spent = c.Spent.Add(delta)
	return c, nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) error {
	delete(f.categories, id)
	return nil
}

func TestCreateCategory(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	c, err := svc.Create(ctx, 1, &CreateCategoryRequest{Name: "Groceries", Allocated: amt("400")})
	require.NoError(t, err)
	assert.True(t, c.Remaining().Equal(amt("400")))

	_, err = svc.Create(ctx, 1, &CreateCategoryRequest{Name: "groceries", Allocated: amt("100")})
	assert.ErrorIs(t, err, ErrNameTaken, "names are unique per user, case-insensitively")

	_, err = svc.Create(ctx, 2, &CreateCategoryRequest{Name: "Groceries", Allocated: amt("100")})
	assert.NoError(t, err, "another user may reuse the name")
}

func TestCreateCategoryValidation(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, &CreateCategoryRequest{Name: "  ", Allocated: amt("400")})
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.Create(ctx, 1, &CreateCategoryRequest{Name: "Rent", Allocated: amt("-1")})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestRecordSpend(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	c, err := svc.Create(ctx, 1, &CreateCategoryRequest{Name: "Groceries", Allocated: amt("100")})
	require.NoError(t, err)

	c, err = svc.RecordSpend(ctx, 1, c.ID, &RecordSpendRequest{Amount: amt("60")})
	require.NoError(t, err)
	assert.True(t, c.Remaining().Equal(amt("40")))

	// overspending is allowed, remaining goes negative
	c, err = svc.RecordSpend(ctx, 1, c.ID, &RecordSpendRequest{Amount: amt("60")})
	require.NoError(t, err)
	assert.True(t, c.Remaining().Equal(amt("-20")))

	_, err = svc.RecordSpend(ctx, 1, c.ID, &RecordSpendRequest{Amount: amt("0")})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestOwnerGuard(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	c, err := svc.Create(ctx, 1, &CreateCategoryRequest{Name: "Groceries", Allocated: amt("100")})
	require.NoError(t, err)

	_, err = svc.RecordSpend(ctx, 2, c.ID, &RecordSpendRequest{Amount: amt("10")})
	assert.ErrorIs(t, err, ErrNotOwner)

	err = svc.Delete(ctx, 2, c.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	err = svc.Delete(ctx, 1, c.ID)
	assert.NoError(t, err)

	err = svc.Delete(ctx, 1, c.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}
