package service

import (
	"context"
	"fmt"

	"github.com/pandamall/atlogistics/internal/domain"
	"github.com/pandamall/atlogistics/internal/port"
)

// UserService is the admin-facing user management surface.
type UserService struct {
	users port.UserStore
}

// NewUserService creates a new user service.
func NewUserService(users port.UserStore) *UserService {
	return &UserService{users: users}
}

// ListUsers returns every account; the admin screen filters client-side.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.ListUsers(ctx)
}

// UpdateUser applies a partial update (name, email, role, status). The
// status toggle ACTIVE<->SUSPENDED rides this operation too.
func (s *UserService) UpdateUser(ctx context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
	return s.users.UpdateUser(ctx, id, upd)
}

// DeleteUser removes an account. Deleting an ADMIN account is refused
// server-side regardless of who asks; the UI disabling the button is not a
// trust boundary.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	target, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if target.Role == domain.RoleAdmin {
		return fmt.Errorf("delete user %q: %w", id, port.ErrAdminDeleteRefused)
	}
	return s.users.DeleteUser(ctx, id)
}
