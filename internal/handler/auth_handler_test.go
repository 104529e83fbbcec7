package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pandamall/atlogistics/internal/domain"
	"github.com/pandamall/atlogistics/internal/port"
	"github.com/pandamall/atlogistics/internal/service"
	"github.com/pandamall/atlogistics/internal/token"
)

// stubProvider is a minimal port.AuthProvider that always exchanges
// successfully.
type stubProvider struct{}

func (stubProvider) ProviderName() string { return "google" }

func (stubProvider) AuthURL(state string) string {
	return "https://accounts.example.com/o/oauth2/auth?state=" + url.QueryEscape(state)
}

func (stubProvider) ExchangeCode(_ context.Context, code string) (*domain.TokenPair, error) {
	return &domain.TokenPair{AccessToken: "upstream-" + code}, nil
}

func (stubProvider) GetUserProfile(_ context.Context, _ string) (*domain.User, error) {
	return &domain.User{
		Username:   "oauth-user",
		Email:      "oauth-user@example.com",
		Provider:   "google",
		ProviderID: "google-123",
	}, nil
}

// stubUserStore backs the auth handler tests with just the calls the
// OAuth flow touches.
type stubUserStore struct{}

func (stubUserStore) CreateUser(_ context.Context, u *domain.User) (*domain.User, error) {
	return u, nil
}

func (stubUserStore) UpsertOAuthUser(_ context.Context, u *domain.User) (*domain.User, error) {
	out := *u
	out.ID = "u-oauth"
	out.Role = domain.RoleCustomer
	out.Status = domain.StatusActive
	return &out, nil
}

func (stubUserStore) GetUserByID(_ context.Context, _ string) (*domain.User, error) {
	return nil, port.ErrUserNotFound
}

func (stubUserStore) GetUserByUsername(_ context.Context, _ string) (*domain.User, error) {
	return nil, port.ErrUserNotFound
}

func (stubUserStore) ExistsByUsernameOrEmail(_ context.Context, _, _ string) (bool, error) {
	return false, nil
}

func (stubUserStore) ListUsers(_ context.Context) ([]domain.User, error) { return nil, nil }

func (stubUserStore) UpdateUser(_ context.Context, _ string, _ domain.UserUpdate) (*domain.User, error) {
	return nil, port.ErrUserNotFound
}

func (stubUserStore) UpdateProfile(_ context.Context, _, _, _, _ string) (*domain.User, error) {
	return nil, port.ErrUserNotFound
}

func (stubUserStore) DeleteUser(_ context.Context, _ string) error { return nil }

type stubRefreshStore struct{}

func (stubRefreshStore) UpsertRefreshToken(_ context.Context, _ *port.StoredRefreshToken) error {
	return nil
}

func (stubRefreshStore) GetRefreshToken(_ context.Context, _ string) (*port.StoredRefreshToken, error) {
	return nil, port.ErrRefreshTokenInvalid
}

func (stubRefreshStore) DeleteRefreshToken(_ context.Context, _ string) error { return nil }

func (stubRefreshStore) DeleteRefreshTokensByUser(_ context.Context, _ string) error { return nil }

func newAuthTestApp(t *testing.T) *fiber.App {
	t.Helper()
	tokens := token.NewManager("secret", "pandamall")
	refresh := token.NewRefreshManager(stubRefreshStore{}, time.Hour)
	providers := port.AuthProviderRegistry{"google": stubProvider{}}
	svc := service.NewAuthService(stubUserStore{}, providers, tokens, refresh)

	app := fiber.New()
	h := NewAuthHandler(svc, "https://shop.example.com", t.TempDir(), 5*time.Second, time.Hour)
	h.Register(app, func(c fiber.Ctx) error { return c.Next() })
	return app
}

func stateCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, ck := range resp.Cookies() {
		if ck.Name == "oauth_state" {
			return ck
		}
	}
	return nil
}

func TestOAuthLoginSetsStateCookieMatchingRedirect(t *testing.T) {
	app := newAuthTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/auth/google/login", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	ck := stateCookie(t, resp)
	require.NotNil(t, ck, "login must set the state cookie")
	assert.NotEmpty(t, ck.Value)
	assert.True(t, ck.HttpOnly)

	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, ck.Value, loc.Query().Get("state"))
}

func TestOAuthCallbackAcceptsMatchingState(t *testing.T) {
	app := newAuthTestApp(t)

	login, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/auth/google/login", nil))
	require.NoError(t, err)
	ck := stateCookie(t, login)
	require.NotNil(t, ck)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=abc&state="+ck.Value, nil)
	req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "shop.example.com", loc.Host)
	assert.NotEmpty(t, loc.Query().Get("token"))

	// Single use: the callback clears the state cookie.
	cleared := stateCookie(t, resp)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
}

func TestOAuthCallbackRejectsMismatchedState(t *testing.T) {
	app := newAuthTestApp(t)

	login, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/auth/google/login", nil))
	require.NoError(t, err)
	ck := stateCookie(t, login)
	require.NotNil(t, ck)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=abc&state=forged", nil)
	req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOAuthCallbackRejectsMissingStateCookie(t *testing.T) {
	app := newAuthTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=abc&state=whatever", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
