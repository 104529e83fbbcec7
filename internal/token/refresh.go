package token

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/pandamall/atlogistics/internal/port"
)

const refreshTokenBytes = 32

// RefreshManager handles refresh token creation, validation, and rotation.
// Tokens are opaque random values stored server-side; a user holds at most
// one live token, and every successful refresh rotates it.
type RefreshManager struct {
	store   port.RefreshTokenStore
	ttl     time.Duration
	nowFunc func() time.Time
}

// RefreshOption configures a RefreshManager.
type RefreshOption func(*RefreshManager)

// WithRefreshNowFunc overrides the clock (primarily for testing).
func WithRefreshNowFunc(now func() time.Time) RefreshOption {
	return func(m *RefreshManager) {
		m.nowFunc = now
	}
}

// NewRefreshManager creates a refresh token manager.
func NewRefreshManager(store port.RefreshTokenStore, ttl time.Duration, options ...RefreshOption) *RefreshManager {
	m := &RefreshManager{
		store:   store,
		ttl:     ttl,
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// TTL returns the refresh token lifetime.
func (m *RefreshManager) TTL() time.Duration {
	return m.ttl
}

// Issue generates a new refresh token for the user, superseding any
// existing one.
func (m *RefreshManager) Issue(ctx context.Context, userID string) (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	tokenStr := hex.EncodeToString(buf)

	now := m.nowFunc()
	err := m.store.UpsertRefreshToken(ctx, &port.StoredRefreshToken{
		Token:     tokenStr,
		UserID:    userID,
		ExpiresAt: now.Add(m.ttl),
		CreatedAt: now,
	})
	if err != nil {
		return "", fmt.Errorf("store refresh token: %w", err)
	}
	return tokenStr, nil
}

// Rotate validates a presented refresh token and exchanges it for a new
// one. The old token is deleted first, so a token can be used at most once;
// expired or unknown tokens yield port.ErrRefreshTokenInvalid.
func (m *RefreshManager) Rotate(ctx context.Context, presented string) (userID, newToken string, err error) {
	stored, err := m.store.GetRefreshToken(ctx, presented)
	if err != nil {
		return "", "", fmt.Errorf("lookup refresh token: %w", err)
	}

	if delErr := m.store.DeleteRefreshToken(ctx, stored.Token); delErr != nil {
		return "", "", fmt.Errorf("rotate refresh token: %w", delErr)
	}

	if m.nowFunc().After(stored.ExpiresAt) {
		return "", "", fmt.Errorf("refresh token expired at %v: %w", stored.ExpiresAt, port.ErrRefreshTokenInvalid)
	}

	newToken, err = m.Issue(ctx, stored.UserID)
	if err != nil {
		return "", "", err
	}
	return stored.UserID, newToken, nil
}

// Revoke deletes all refresh tokens held by the user (logout).
func (m *RefreshManager) Revoke(ctx context.Context, userID string) error {
	return m.store.DeleteRefreshTokensByUser(ctx, userID)
}
