package handler

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/pandamall/atlogistics/internal/domain"
	"github.com/pandamall/atlogistics/internal/middleware"
	"github.com/pandamall/atlogistics/internal/port"
	"github.com/pandamall/atlogistics/internal/service"
)

const (
	refreshCookieName = "refresh_token"
	oauthStateCookie  = "oauth_state"
	oauthStateTTL     = 10 * time.Minute
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
	frontendURL string
	uploadDir   string
	authTimeout time.Duration
	refreshTTL  time.Duration
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService *service.AuthService, frontendURL, uploadDir string, authTimeout, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		frontendURL: frontendURL,
		uploadDir:   uploadDir,
		authTimeout: authTimeout,
		refreshTTL:  refreshTTL,
	}
}

// Register sets up auth routes. The authed handler is the bearer-token
// middleware guarding the session-bound endpoints.
func (h *AuthHandler) Register(app *fiber.App, authed fiber.Handler) {
	auth := app.Group("/api/auth")
	auth.Post("/login", h.Login)
	auth.Post("/register", h.RegisterUser)
	auth.Get("/refresh", h.Refresh)
	auth.Post("/logout", h.Logout, authed)
	auth.Get("/profile", h.GetProfile, authed)
	auth.Post("/profile", h.UpdateProfile, authed)

	auth.Get("/:provider/login", h.OAuthLogin)
	auth.Get("/:provider/callback", h.OAuthCallback)
}

// Login handles credentials login. The access token travels in the body,
// the refresh token only in the httpOnly cookie.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username and password required"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), h.authTimeout)
	defer cancel()

	result, err := h.authService.Login(ctx, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, port.ErrInvalidCredentials):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
		case errors.Is(err, port.ErrAccountSuspended):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "account suspended"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		}
	}

	h.setRefreshCookie(c, result.RefreshToken)
	return c.JSON(fiber.Map{"token": result.AccessToken, "user": result.User})
}

// RegisterUser handles account creation.
func (h *AuthHandler) RegisterUser(c fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Email    string `json:"email"`
		Role     string `json:"role"`
	}
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Username == "" || req.Password == "" || req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username, password and email required"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), h.authTimeout)
	defer cancel()

	result, err := h.authService.Register(ctx, req.Username, req.Password, req.Email, domain.ParseRole(req.Role))
	if err != nil {
		if errors.Is(err, port.ErrUserExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "username or email already exists"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	h.setRefreshCookie(c, result.RefreshToken)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"token": result.AccessToken, "user": result.User})
}

// Refresh exchanges the httpOnly refresh cookie for a new access token.
// No bearer token is read here; the cookie is the only credential.
func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	presented := c.Cookies(refreshCookieName)
	if presented == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing refresh token"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), h.authTimeout)
	defer cancel()

	result, err := h.authService.Refresh(ctx, presented)
	if err != nil {
		h.clearRefreshCookie(c)
		if errors.Is(err, port.ErrRefreshTokenInvalid) || errors.Is(err, port.ErrAccountSuspended) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid refresh token"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	h.setRefreshCookie(c, result.RefreshToken)
	return c.JSON(fiber.Map{"token": result.AccessToken})
}

// Logout revokes the caller's refresh tokens and clears the cookie.
// Best-effort by contract: the client tears down regardless.
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	h.authService.Logout(c.Context(), uc.UserID)
	h.clearRefreshCookie(c)
	return c.SendStatus(fiber.StatusNoContent)
}

// GetProfile returns the caller's user record.
func (h *AuthHandler) GetProfile(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	user, err := h.authService.GetProfile(c.Context(), uc.UserID)
	if err != nil {
		if errors.Is(err, port.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(user)
}

// UpdateProfile updates display fields via multipart form, with an
// optional avatar upload.
func (h *AuthHandler) UpdateProfile(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	name := c.FormValue("name")
	email := c.FormValue("email")

	avatarURL := ""
	if file, err := c.FormFile("avatar"); err == nil && file != nil {
		ext := strings.ToLower(filepath.Ext(file.Filename))
		switch ext {
		case ".jpg", ".jpeg", ".png", ".webp":
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unsupported avatar format"})
		}
		filename := uuid.NewString() + ext
		if err := c.SaveFile(file, filepath.Join(h.uploadDir, filename)); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "avatar upload failed"})
		}
		avatarURL = "/uploads/" + filename
	}

	user, err := h.authService.UpdateProfile(c.Context(), uc.UserID, name, email, avatarURL)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(user)
}

// OAuthLogin redirects to the OAuth2 provider's consent screen. The CSRF
// state is mirrored into a short-lived httpOnly cookie so the callback can
// verify the round trip.
func (h *AuthHandler) OAuthLogin(c fiber.Ctx) error {
	provider := c.Params("provider")
	state := generateState()

	authURL, err := h.authService.GetAuthURL(provider, state)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/api/auth",
		Expires:  time.Now().Add(oauthStateTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect().To(authURL)
}

// OAuthCallback handles the provider callback: verifies the CSRF state,
// exchanges the code, issues the token pair, and hands the access token
// back to the frontend.
func (h *AuthHandler) OAuthCallback(c fiber.Ctx) error {
	provider := c.Params("provider")
	code := c.Query("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing authorization code"})
	}

	state := c.Query("state")
	expected := c.Cookies(oauthStateCookie)
	h.clearStateCookie(c)
	if state == "" || expected == "" || subtle.ConstantTimeCompare([]byte(state), []byte(expected)) != 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid oauth state"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), h.authTimeout)
	defer cancel()

	result, err := h.authService.HandleCallback(ctx, provider, code)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	h.setRefreshCookie(c, result.RefreshToken)
	redirectURL := h.frontendURL + "/auth/callback?token=" + result.AccessToken
	return c.Redirect().To(redirectURL)
}

func (h *AuthHandler) setRefreshCookie(c fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/api/auth",
		Expires:  time.Now().Add(h.refreshTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *AuthHandler) clearStateCookie(c fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/api/auth",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(c fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/api/auth",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func generateState() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
