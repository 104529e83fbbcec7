package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/pandamall/atlogistics/internal/domain"
	"github.com/pandamall/atlogistics/internal/port"
	"github.com/pandamall/atlogistics/internal/token"
)

const userLocalsKey = "user"

// AuthMiddleware validates the bearer access token and injects a
// UserContext into the request locals. Authorization is decided here, never
// from anything a client decoded for display.
func AuthMiddleware(tokens *token.Manager) fiber.Handler {
	return func(c fiber.Ctx) error {
		var raw string

		authHeader := c.Get("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
				raw = parts[1]
			}
		}

		if raw == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing authorization",
			})
		}

		uc, err := tokens.Verify(raw)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, port.ErrTokenExpired) {
				msg = "token expired"
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
		}

		c.Locals(userLocalsKey, uc)
		return c.Next()
	}
}

// RequireAdmin allows only ADMIN callers past. Must run after AuthMiddleware.
func RequireAdmin() fiber.Handler {
	return func(c fiber.Ctx) error {
		if uc := GetUserContext(c); !uc.IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "admin access required",
			})
		}
		return c.Next()
	}
}

// GetUserContext extracts the UserContext from Fiber locals.
func GetUserContext(c fiber.Ctx) *domain.UserContext {
	uc, ok := c.Locals(userLocalsKey).(*domain.UserContext)
	if !ok {
		return nil
	}
	return uc
}
