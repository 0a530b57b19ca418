package group

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Common errors
var (
	ErrGroupNotFound       = errors.New("group not found")
	ErrMemberNotFound      = errors.New("member not found")
	ErrMemberAlreadyExists = errors.New("user is already a member")
	ErrNotMember           = errors.New("not a member of this group")
	ErrNotAdmin            = errors.New("not authorized: admin role required")
	ErrLastAdmin           = errors.New("cannot remove the only admin of a group")
	ErrNameRequired        = errors.New("group name is required")
)

// Store is the persistence interface the service depends on
type Store interface {
	Create(ctx context.Context, name, description string) (*Group, error)
	GetByID(ctx context.Context, id int64) (*Group, error)
	ListByUserID(ctx context.Context, userID int64) ([]*Group, error)
	Update(ctx context.Context, id int64, name, description *string) (*Group, error)
	Delete(ctx context.Context, id int64) error
	AddMember(ctx context.Context, groupID, userID int64, role MemberRole) (*GroupMember, error)
	GetMember(ctx context.Context, groupID, userID int64) (*GroupMember, error)
	GetMembers(ctx context.Context, groupID int64) ([]*GroupMember, error)
	RemoveMember(ctx context.Context, groupID, userID int64) error
	CountAdmins(ctx context.Context, groupID int64) (int, error)
}

// ExpensePurger removes all of a group's expenses, reversing their ledger
// effects; wired to the expense service in main
type ExpensePurger interface {
	DeleteAllForGroup(ctx context.Context, groupID int64) error
}

// Notifier emits in-app notifications; may be nil
type Notifier interface {
	Notify(ctx context.Context, recipientID, senderID int64, kind, text, resourceType string, resourceID int64) error
}

// Service handles group business logic
type Service struct {
	repo     Store
	notifier Notifier
	expenses ExpensePurger
}

// NewService creates a new group service
func NewService(repo Store, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// SetExpensePurger wires the expense cleanup used when a group is deleted.
// Set after construction because the expense service depends on this package.
func (s *Service) SetExpensePurger(p ExpensePurger) {
	s.expenses = p
}

// Create creates a new group and adds the creator as its admin
func (s *Service) Create(ctx context.Context, creatorID int64, req *CreateGroupRequest) (*Group, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrNameRequired
	}

	g, err := s.repo.Create(ctx, strings.TrimSpace(req.Name), req.Description)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.AddMember(ctx, g.ID, creatorID, MemberRoleAdmin); err != nil {
		return nil, fmt.Errorf("failed to add creator as admin: %w", err)
	}

	return g, nil
}

// GetWithMembers retrieves a group with its members; callers must be members
func (s *Service) GetWithMembers(ctx context.Context, callerID, groupID int64) (*Group, []*GroupMember, error) {
	g, err := s.repo.GetByID(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	if g == nil {
		return nil, nil, ErrGroupNotFound
	}

	member, err := s.repo.GetMember(ctx, groupID, callerID)
	if err != nil {
		return nil, nil, err
	}
	if member == nil {
		return nil, nil, ErrNotMember
	}

	members, err := s.repo.GetMembers(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	return g, members, nil
}

// ListMine retrieves the caller's groups
func (s *Service) ListMine(ctx context.Context, userID int64) ([]*Group, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// Update modifies a group; admin only
func (s *Service) Update(ctx context.Context, callerID, groupID int64, req *UpdateGroupRequest) (*Group, error) {
	if err := s.requireAdmin(ctx, groupID, callerID); err != nil {
		return nil, err
	}

	g, err := s.repo.Update(ctx, groupID, req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGroupNotFound
	}
	return g, nil
}

// Delete removes a group, its memberships, and its expenses. Expenses are
// reversed one by one so friend balances stay conserved. Admin only.
func (s *Service) Delete(ctx context.Context, callerID, groupID int64) error {
	if err := s.requireAdmin(ctx, groupID, callerID); err != nil {
		return err
	}

	if s.expenses != nil {
		if err := s.expenses.DeleteAllForGroup(ctx, groupID); err != nil {
			return fmt.Errorf("failed to purge group expenses: %w", err)
		}
	}

	return s.repo.Delete(ctx, groupID)
}

// AddMember adds a user to a group; admin only
func (s *Service) AddMember(ctx context.Context, callerID, groupID int64, req *AddMemberRequest) (*GroupMember, error) {
	g, err := s.repo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGroupNotFound
	}

	if err := s.requireAdmin(ctx, groupID, callerID); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetMember(ctx, groupID, req.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrMemberAlreadyExists
	}

	role := req.Role
	if role != MemberRoleAdmin {
		role = MemberRoleMember
	}

	m, err := s.repo.AddMember(ctx, groupID, req.UserID, role)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		text := fmt.Sprintf("You've been added to group %q", g.Name)
		_ = s.notifier.Notify(ctx, req.UserID, callerID, "group_invite", text, "group", groupID)
	}

	return m, nil
}

// RemoveMember removes a user from a group. Admins may remove anyone; any
// member may remove themselves. Removing the last admin is rejected so the
// group never ends up admin-less.
func (s *Service) RemoveMember(ctx context.Context, callerID, groupID, userID int64) error {
	member, err := s.repo.GetMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrMemberNotFound
	}

	if callerID != userID {
		if err := s.requireAdmin(ctx, groupID, callerID); err != nil {
			return err
		}
	}

	if member.Role == MemberRoleAdmin {
		admins, err := s.repo.CountAdmins(ctx, groupID)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}

	return s.repo.RemoveMember(ctx, groupID, userID)
}

func (s *Service) requireAdmin(ctx context.Context, groupID, userID int64) error {
	member, err := s.repo.GetMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrNotMember
	}
	if member.Role != MemberRoleAdmin {
		return ErrNotAdmin
	}
	return nil
}
