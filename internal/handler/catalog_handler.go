package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/pandamall/atlogistics/internal/domain"
	"github.com/pandamall/atlogistics/internal/port"
	"github.com/pandamall/atlogistics/internal/service"
)

// CatalogHandler exposes categories and products. Reads are public,
// mutations sit behind the admin guard.
type CatalogHandler struct {
	catalogService *service.CatalogService
}

func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// Register sets up catalog routes. authed and admin guard the mutations.
func (h *CatalogHandler) Register(app *fiber.App, authed, admin fiber.Handler) {
	app.Get("/api/categories", h.ListCategories)
	app.Get("/api/products", h.ListProducts)

	app.Post("/api/categories", h.CreateCategory, authed, admin)
	app.Put("/api/categories/:id", h.UpdateCategory, authed, admin)
	app.Delete("/api/categories/:id", h.DeleteCategory, authed, admin)

	app.Post("/api/products", h.CreateProduct, authed, admin)
	app.Put("/api/products/:id", h.UpdateProduct, authed, admin)
	app.Delete("/api/products/:id", h.DeleteProduct, authed, admin)
}

func (h *CatalogHandler) ListCategories(c fiber.Ctx) error {
	categories, err := h.catalogService.ListCategories(c.Context(), c.Query("q"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(categories)
}

// ListProducts returns the catalog, filtered by ?q= or restricted to an
// explicit ?ids= list. The ids form wins when both are present.
func (h *CatalogHandler) ListProducts(c fiber.Ctx) error {
	if raw := c.Query("ids"); raw != "" {
		ids := strings.Split(raw, ",")
		for i := range ids {
			ids[i] = strings.TrimSpace(ids[i])
		}
		products, err := h.catalogService.GetProductsByIDs(c.Context(), ids)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		}
		return c.JSON(products)
	}

	products, err := h.catalogService.ListProducts(c.Context(), c.Query("q"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(products)
}

func (h *CatalogHandler) CreateCategory(c fiber.Ctx) error {
	var cat domain.Category
	if err := c.Bind().JSON(&cat); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	created, err := h.catalogService.CreateCategory(c.Context(), &cat)
	if err != nil {
		return catalogError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *CatalogHandler) UpdateCategory(c fiber.Ctx) error {
	var cat domain.Category
	if err := c.Bind().JSON(&cat); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	cat.ID = c.Params("id")

	updated, err := h.catalogService.UpdateCategory(c.Context(), &cat)
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(updated)
}

func (h *CatalogHandler) DeleteCategory(c fiber.Ctx) error {
	if err := h.catalogService.DeleteCategory(c.Context(), c.Params("id")); err != nil {
		return catalogError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CatalogHandler) CreateProduct(c fiber.Ctx) error {
	var p domain.Product
	if err := c.Bind().JSON(&p); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	created, err := h.catalogService.CreateProduct(c.Context(), &p)
	if err != nil {
		return catalogError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *CatalogHandler) UpdateProduct(c fiber.Ctx) error {
	var p domain.Product
	if err := c.Bind().JSON(&p); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	p.ID = c.Params("id")

	updated, err := h.catalogService.UpdateProduct(c.Context(), &p)
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(updated)
}

func (h *CatalogHandler) DeleteProduct(c fiber.Ctx) error {
	if err := h.catalogService.DeleteProduct(c.Context(), c.Params("id")); err != nil {
		return catalogError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// catalogError maps catalog sentinels to statuses. Admin mutation errors
// always surface as JSON bodies, never silent success.
func catalogError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, port.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, port.ErrCategoryNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "category not found"})
	case errors.Is(err, port.ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
}
