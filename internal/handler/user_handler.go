package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/pandamall/atlogistics/internal/domain"
	"github.com/pandamall/atlogistics/internal/port"
	"github.com/pandamall/atlogistics/internal/service"
)

// UserHandler exposes the admin user management endpoints.
type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Register sets up user routes behind the admin guard.
func (h *UserHandler) Register(app *fiber.App, authed, admin fiber.Handler) {
	users := app.Group("/api/users", authed, admin)
	users.Get("/", h.ListUsers)
	users.Patch("/:id", h.UpdateUser)
	users.Delete("/:id", h.DeleteUser)
}

func (h *UserHandler) ListUsers(c fiber.Ctx) error {
	users, err := h.userService.ListUsers(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(users)
}

func (h *UserHandler) UpdateUser(c fiber.Ctx) error {
	var upd domain.UserUpdate
	if err := c.Bind().JSON(&upd); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	user, err := h.userService.UpdateUser(c.Context(), c.Params("id"), upd)
	if err != nil {
		switch {
		case errors.Is(err, port.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		case errors.Is(err, port.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		}
	}
	return c.JSON(user)
}

// DeleteUser removes an account. Admin accounts are refused here on the
// server, not just hidden in a UI.
func (h *UserHandler) DeleteUser(c fiber.Ctx) error {
	if err := h.userService.DeleteUser(c.Context(), c.Params("id")); err != nil {
		switch {
		case errors.Is(err, port.ErrAdminDeleteRefused):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin accounts cannot be deleted"})
		case errors.Is(err, port.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}
