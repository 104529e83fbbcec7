package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pandamall/atlogistics/internal/domain"
	"github.com/pandamall/atlogistics/internal/port"
)

func testUser() *domain.User {
	return &domain.User{
		ID:       "u1",
		Username: "alice",
		Email:    "alice@example.com",
		Role:     domain.RoleAdmin,
	}
}

func TestMintAndVerifyRoundTrip(t *testing.T) {
	m := NewManager("secret", "pandamall")

	signed, err := m.Mint(testUser())
	require.NoError(t, err)

	uc, err := m.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "u1", uc.UserID)
	assert.Equal(t, "alice", uc.Username)
	assert.Equal(t, domain.RoleAdmin, uc.Role)
	assert.True(t, uc.IsAdmin())
}

func TestVerifyExpiredToken(t *testing.T) {
	now := time.Now()
	minter := NewManager("secret", "pandamall",
		WithTTL(15*time.Minute),
		WithNowFunc(func() time.Time { return now }),
	)
	signed, err := minter.Mint(testUser())
	require.NoError(t, err)

	later := NewManager("secret", "pandamall",
		WithNowFunc(func() time.Time { return now.Add(16 * time.Minute) }),
	)
	_, err = later.Verify(signed)
	assert.ErrorIs(t, err, port.ErrTokenExpired)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signed, err := NewManager("secret-a", "pandamall").Mint(testUser())
	require.NoError(t, err)

	_, err = NewManager("secret-b", "pandamall").Verify(signed)
	assert.ErrorIs(t, err, port.ErrTokenInvalid)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	signed, err := NewManager("secret", "other-app").Mint(testUser())
	require.NoError(t, err)

	_, err = NewManager("secret", "pandamall").Verify(signed)
	assert.ErrorIs(t, err, port.ErrTokenInvalid)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := NewManager("secret", "pandamall").Verify("not-a-jwt")
	assert.ErrorIs(t, err, port.ErrTokenInvalid)
}
