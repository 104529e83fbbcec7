package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/pandamall/atlogistics/internal/domain"
	"github.com/pandamall/atlogistics/internal/middleware"
	"github.com/pandamall/atlogistics/internal/port"
	"github.com/pandamall/atlogistics/internal/service"
)

// CartHandler handles the server-side cart endpoints. All responses wrap
// the full cart snapshot, so a single round trip is enough for the client
// to replace its local view.
type CartHandler struct {
	cartService *service.CartService
}

func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// Register sets up cart routes behind the bearer-token middleware.
func (h *CartHandler) Register(app *fiber.App, authed fiber.Handler) {
	cart := app.Group("/api/cart", authed)
	cart.Get("/", h.GetCart)
	cart.Post("/items", h.AddItem)
	cart.Put("/items/:itemId", h.UpdateItem)
	cart.Delete("/items/:itemId", h.RemoveItem)
	cart.Delete("/clear", h.Clear)
}

// cartUserID resolves the cart owner for a request. The userId query
// parameter may only name someone else when the caller is an admin.
func cartUserID(c fiber.Ctx) (string, error) {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return "", port.ErrUnauthorized
	}
	requested := c.Query("userId", uc.UserID)
	if requested != uc.UserID && !uc.IsAdmin() {
		return "", port.ErrForbidden
	}
	return requested, nil
}

func (h *CartHandler) GetCart(c fiber.Ctx) error {
	userID, err := cartUserID(c)
	if err != nil {
		return cartAccessError(c, err)
	}

	snapshot, err := h.cartService.GetCart(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(fiber.Map{"data": snapshot})
}

func (h *CartHandler) AddItem(c fiber.Ctx) error {
	userID, err := cartUserID(c)
	if err != nil {
		return cartAccessError(c, err)
	}

	var req domain.AddToCartRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	snapshot, err := h.cartService.AddItem(c.Context(), userID, req)
	if err != nil {
		if errors.Is(err, port.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": snapshot})
}

func (h *CartHandler) UpdateItem(c fiber.Ctx) error {
	userID, err := cartUserID(c)
	if err != nil {
		return cartAccessError(c, err)
	}

	var req struct {
		Quantity *int `json:"quantity"`
	}
	if err := c.Bind().JSON(&req); err != nil || req.Quantity == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "quantity required"})
	}

	snapshot, err := h.cartService.UpdateQuantity(c.Context(), userID, c.Params("itemId"), *req.Quantity)
	if err != nil {
		if errors.Is(err, port.ErrCartItemNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "cart item not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(fiber.Map{"data": snapshot})
}

func (h *CartHandler) RemoveItem(c fiber.Ctx) error {
	userID, err := cartUserID(c)
	if err != nil {
		return cartAccessError(c, err)
	}

	snapshot, err := h.cartService.RemoveItem(c.Context(), userID, c.Params("itemId"))
	if err != nil {
		if errors.Is(err, port.ErrCartItemNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "cart item not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(fiber.Map{"data": snapshot})
}

func (h *CartHandler) Clear(c fiber.Ctx) error {
	userID, err := cartUserID(c)
	if err != nil {
		return cartAccessError(c, err)
	}

	snapshot, err := h.cartService.Clear(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(fiber.Map{"data": snapshot})
}

func cartAccessError(c fiber.Ctx, err error) error {
	if errors.Is(err, port.ErrForbidden) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "cannot access another user's cart"})
	}
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
}

// parseIntQuery reads an integer query parameter with a default.
func parseIntQuery(c fiber.Ctx, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
