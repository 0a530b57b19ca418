package budget

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrCategoryNotFound = errors.New("budget category not found")
	ErrNotOwner         = errors.New("budget category belongs to another user")
	ErrNameRequired     = errors.New("category name is required")
	ErrNameTaken        = errors.New("a category with this name already exists")
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
)

// Store is the persistence surface the service needs
type Store interface {
	Create(ctx context.Context, userID int64, name string, allocated decimal.Decimal) (*Category, error)
	GetByID(ctx context.Context, id int64) (*Category, error)
	GetByOwnerAndName(ctx context.Context, userID int64, name string) (*Category, error)
	ListByOwner(ctx context.Context, userID int64) ([]*Category, error)
	Update(ctx context.Context, id int64, name *string, allocated *decimal.Decimal) (*Category, error)
	AddSpent(ctx context.Context, id int64, delta decimal.Decimal) (*Category, error)
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, userID int64, req *CreateCategoryRequest) (*Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if req.Allocated.IsNegative() {
		return nil, ErrInvalidAmount
	}

	existing, err := s.store.GetByOwnerAndName(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrNameTaken
	}
	return s.store.Create(ctx, userID, name, req.Allocated)
}

func (s *Service) List(ctx context.Context, userID int64) ([]*Category, error) {
	return s.store.ListByOwner(ctx, userID)
}

func (s *Service) Update(ctx context.Context, userID, id int64, req *UpdateCategoryRequest) (*Category, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, ErrNameRequired
	}
	if req.Allocated != nil && req.Allocated.IsNegative() {
		return nil, ErrInvalidAmount
	}
	return s.store.Update(ctx, id, req.Name, req.Allocated)
}

// RecordSpend adds to the category's running spend. Spending past the
// allocation is allowed; Remaining just goes negative.
func (s *Service) RecordSpend(ctx context.Context, userID, id int64, req *RecordSpendRequest) (*Category, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.store.AddSpent(ctx, id, req.Amount)
}

func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

func (s *Service) owned(ctx context.Context, userID, id int64) (*Category, error) {
	category, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	if category.UserID != userID {
		return nil, ErrNotOwner
	}
	return category, nil
}
