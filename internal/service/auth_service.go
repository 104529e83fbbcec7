package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/pandamall/atlogistics/internal/domain"
	"github.com/pandamall/atlogistics/internal/port"
	"github.com/pandamall/atlogistics/internal/token"
)

// AuthService handles credentials and OAuth authentication, access-token
// minting, and refresh-token rotation. It depends on store interfaces only.
type AuthService struct {
	users     port.UserStore
	providers port.AuthProviderRegistry
	tokens    *token.Manager
	refresh   *token.RefreshManager
}

// NewAuthService creates a new authentication service.
func NewAuthService(users port.UserStore, providers port.AuthProviderRegistry, tokens *token.Manager, refresh *token.RefreshManager) *AuthService {
	return &AuthService{
		users:     users,
		providers: providers,
		tokens:    tokens,
		refresh:   refresh,
	}
}

// LoginResult is the outcome of a successful authentication: the access
// token for the response body and the refresh token destined for the
// httpOnly cookie.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         *domain.User
}

// Login verifies credentials and issues a token pair.
// Failed lookups and bad passwords both map to ErrInvalidCredentials so the
// response does not reveal which usernames exist.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("authenticate user %q: %w", username, port.ErrInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("authenticate user %q: %w", username, port.ErrInvalidCredentials)
	}

	if user.Status != domain.StatusActive {
		return nil, fmt.Errorf("authenticate user %q: %w", username, port.ErrAccountSuspended)
	}

	return s.issueTokens(ctx, user)
}

// Register creates a credentials-based account and logs it in. The ADMIN
// role cannot be self-assigned here; requests asking for it are downgraded.
func (s *AuthService) Register(ctx context.Context, username, password, email string, role domain.Role) (*LoginResult, error) {
	exists, err := s.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("register user %q: %w", username, port.ErrUserExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if role == domain.RoleAdmin {
		role = domain.RoleCustomer
	}

	user, err := s.users.CreateUser(ctx, &domain.User{
		Username:     username,
		Email:        email,
		Name:         username,
		Provider:     "credentials",
		Role:         role,
		Status:       domain.StatusActive,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return s.issueTokens(ctx, user)
}

// Refresh exchanges a presented refresh token for a new token pair,
// rotating the refresh token. Any failure invalidates the session.
func (s *AuthService) Refresh(ctx context.Context, presented string) (*LoginResult, error) {
	userID, newRefresh, err := s.refresh.Rotate(ctx, presented)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	if user.Status != domain.StatusActive {
		return nil, fmt.Errorf("refresh session for %q: %w", userID, port.ErrAccountSuspended)
	}

	access, err := s.tokens.Mint(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: access, RefreshToken: newRefresh, User: user}, nil
}

// Logout revokes the user's refresh tokens. Best-effort: failures are
// logged, the client tears its session down regardless.
func (s *AuthService) Logout(ctx context.Context, userID string) {
	if err := s.refresh.Revoke(ctx, userID); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("user_id", userID).Msg("refresh token revocation failed")
	}
}

// GetAuthURL returns the OAuth2 authorization URL for the given provider.
func (s *AuthService) GetAuthURL(providerName, state string) (string, error) {
	provider, ok := s.providers[providerName]
	if !ok {
		return "", fmt.Errorf("unknown provider: %s", providerName)
	}
	return provider.AuthURL(state), nil
}

// HandleCallback processes the OAuth2 callback: exchanges the code, upserts
// the user, and issues the same token pair as credentials login.
func (s *AuthService) HandleCallback(ctx context.Context, providerName, code string) (*LoginResult, error) {
	provider, ok := s.providers[providerName]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", providerName)
	}

	tokens, err := provider.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	profile, err := provider.GetUserProfile(ctx, tokens.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	user, err := s.users.UpsertOAuthUser(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	if user.Status != domain.StatusActive {
		return nil, fmt.Errorf("oauth login for %q: %w", user.Username, port.ErrAccountSuspended)
	}

	result, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().Str("user_id", user.ID).Str("provider", providerName).Msg("user authenticated")
	return result, nil
}

// GetProfile returns the caller's own user record.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

// UpdateProfile updates the caller's display fields and avatar.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, name, email, avatarURL string) (*domain.User, error) {
	return s.users.UpdateProfile(ctx, userID, name, email, avatarURL)
}

func (s *AuthService) issueTokens(ctx context.Context, user *domain.User) (*LoginResult, error) {
	access, err := s.tokens.Mint(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.refresh.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: access, RefreshToken: refresh, User: user}, nil
}
