package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pandamall/atlogistics/internal/domain"
	"github.com/pandamall/atlogistics/internal/port"
	"github.com/pandamall/atlogistics/internal/token"
)

func newAuthService(users *memUserStore) *AuthService {
	tokens := token.NewManager("test-secret", "pandamall")
	refresh := token.NewRefreshManager(newMemRefreshStore(), time.Hour)
	return NewAuthService(users, port.AuthProviderRegistry{}, tokens, refresh)
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestLoginIssuesTokenPair(t *testing.T) {
	users := newMemUserStore(&domain.User{
		Username:     "alice",
		Email:        "alice@example.com",
		Role:         domain.RoleCustomer,
		Status:       domain.StatusActive,
		PasswordHash: hashed(t, "pw123"),
	})
	svc := newAuthService(users)

	result, err := svc.Login(context.Background(), "alice", "pw123")
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, "alice", result.User.Username)
}

func TestLoginWrongPasswordAndUnknownUserLookIdentical(t *testing.T) {
	users := newMemUserStore(&domain.User{
		Username:     "alice",
		Status:       domain.StatusActive,
		PasswordHash: hashed(t, "pw123"),
	})
	svc := newAuthService(users)

	_, badPw := svc.Login(context.Background(), "alice", "wrong")
	_, noUser := svc.Login(context.Background(), "nobody", "pw123")

	assert.ErrorIs(t, badPw, port.ErrInvalidCredentials)
	assert.ErrorIs(t, noUser, port.ErrInvalidCredentials)
}

func TestLoginSuspendedAccount(t *testing.T) {
	users := newMemUserStore(&domain.User{
		Username:     "alice",
		Status:       domain.StatusSuspended,
		PasswordHash: hashed(t, "pw123"),
	})
	svc := newAuthService(users)

	_, err := svc.Login(context.Background(), "alice", "pw123")
	assert.ErrorIs(t, err, port.ErrAccountSuspended)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	users := newMemUserStore(&domain.User{Username: "alice", Email: "alice@example.com"})
	svc := newAuthService(users)

	_, err := svc.Register(context.Background(), "alice", "pw", "new@example.com", domain.RoleCustomer)
	assert.ErrorIs(t, err, port.ErrUserExists)

	_, err = svc.Register(context.Background(), "newname", "pw", "alice@example.com", domain.RoleCustomer)
	assert.ErrorIs(t, err, port.ErrUserExists)
}

func TestRegisterDowngradesSelfAssignedAdmin(t *testing.T) {
	svc := newAuthService(newMemUserStore())

	result, err := svc.Register(context.Background(), "mallory", "pw", "m@example.com", domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, result.User.Role)
}

func TestRefreshRotatesToken(t *testing.T) {
	users := newMemUserStore()
	svc := newAuthService(users)

	login, err := svc.Register(context.Background(), "alice", "pw", "a@example.com", domain.RoleCustomer)
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The presented token was consumed by the rotation.
	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	assert.ErrorIs(t, err, port.ErrRefreshTokenInvalid)
}

func TestRefreshRejectsSuspendedAccount(t *testing.T) {
	users := newMemUserStore()
	svc := newAuthService(users)

	login, err := svc.Register(context.Background(), "alice", "pw", "a@example.com", domain.RoleCustomer)
	require.NoError(t, err)

	suspended := domain.StatusSuspended
	_, err = users.UpdateUser(context.Background(), login.User.ID, domain.UserUpdate{Status: &suspended})
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	assert.ErrorIs(t, err, port.ErrAccountSuspended)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	svc := newAuthService(newMemUserStore())

	login, err := svc.Register(context.Background(), "alice", "pw", "a@example.com", domain.RoleCustomer)
	require.NoError(t, err)

	svc.Logout(context.Background(), login.User.ID)

	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	assert.ErrorIs(t, err, port.ErrRefreshTokenInvalid)
}
