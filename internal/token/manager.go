package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pandamall/atlogistics/internal/domain"
	"github.com/pandamall/atlogistics/internal/port"
)

// Claims is the access-token payload. Roles travel as a claim so clients
// can decode them for display; authorization always re-verifies server-side.
type Claims struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// Manager mints and verifies short-lived HS256 access tokens.
type Manager struct {
	secret  []byte
	issuer  string
	ttl     time.Duration
	nowFunc func() time.Time
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithNowFunc overrides the clock (primarily for testing).
func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

// WithTTL sets the access-token lifetime.
func WithTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		m.ttl = ttl
	}
}

// NewManager creates a Manager signing with the given secret and issuer.
func NewManager(secret, issuer string, options ...ManagerOption) *Manager {
	m := &Manager{
		secret:  []byte(secret),
		issuer:  issuer,
		ttl:     15 * time.Minute,
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// TTL returns the configured access-token lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Mint creates a signed access token for the user.
func (m *Manager) Mint(u *domain.User) (string, error) {
	now := m.nowFunc()
	claims := Claims{
		Username: u.Username,
		Email:    u.Email,
		Roles:    []string{string(u.Role)},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning the authenticated context.
// Expired tokens map to port.ErrTokenExpired, everything else invalid to
// port.ErrTokenInvalid.
func (m *Manager) Verify(tokenStr string) (*domain.UserContext, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenStr, &claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return m.secret, nil
		},
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.nowFunc),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("verify access token: %w", port.ErrTokenExpired)
		}
		return nil, fmt.Errorf("verify access token: %w", port.ErrTokenInvalid)
	}

	role := domain.RoleCustomer
	if len(claims.Roles) > 0 {
		role = domain.ParseRole(claims.Roles[0])
	}
	return &domain.UserContext{
		UserID:   claims.Subject,
		Username: claims.Username,
		Email:    claims.Email,
		Role:     role,
	}, nil
}
