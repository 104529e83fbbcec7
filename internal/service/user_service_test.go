package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pandamall/atlogistics/internal/domain"
	"github.com/pandamall/atlogistics/internal/port"
)

func TestDeleteUserRefusesAdmins(t *testing.T) {
	admin := &domain.User{Username: "root", Role: domain.RoleAdmin, Status: domain.StatusActive}
	users := newMemUserStore(admin)
	svc := NewUserService(users)

	err := svc.DeleteUser(context.Background(), admin.ID)
	assert.ErrorIs(t, err, port.ErrAdminDeleteRefused)

	// Still there.
	_, err = users.GetUserByID(context.Background(), admin.ID)
	assert.NoError(t, err)
}

func TestDeleteUserRemovesCustomer(t *testing.T) {
	customer := &domain.User{Username: "bob", Role: domain.RoleCustomer, Status: domain.StatusActive}
	users := newMemUserStore(customer)
	svc := NewUserService(users)

	require.NoError(t, svc.DeleteUser(context.Background(), customer.ID))
	_, err := users.GetUserByID(context.Background(), customer.ID)
	assert.ErrorIs(t, err, port.ErrUserNotFound)
}

func TestDeleteUserUnknownID(t *testing.T) {
	svc := NewUserService(newMemUserStore())
	err := svc.DeleteUser(context.Background(), "missing")
	assert.ErrorIs(t, err, port.ErrUserNotFound)
}

func TestUpdateUserAppliesPartialFields(t *testing.T) {
	u := &domain.User{Username: "bob", Name: "Bob", Email: "bob@example.com", Role: domain.RoleCustomer, Status: domain.StatusActive}
	users := newMemUserStore(u)
	svc := NewUserService(users)

	staff := domain.RoleStaff
	updated, err := svc.UpdateUser(context.Background(), u.ID, domain.UserUpdate{Role: &staff})
	require.NoError(t, err)

	assert.Equal(t, domain.RoleStaff, updated.Role)
	assert.Equal(t, "Bob", updated.Name, "untouched fields survive")
	assert.Equal(t, "bob@example.com", updated.Email)
}
