package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/pandamall/atlogistics/internal/domain"
	"github.com/pandamall/atlogistics/internal/service"
)

// MarketplaceHandler proxies searches against external marketplaces.
// The service layer guarantees a result even when the upstream is down,
// so these endpoints never return 5xx.
type MarketplaceHandler struct {
	marketplaceService *service.MarketplaceService
}

func NewMarketplaceHandler(marketplaceService *service.MarketplaceService) *MarketplaceHandler {
	return &MarketplaceHandler{marketplaceService: marketplaceService}
}

// Register sets up marketplace routes.
func (h *MarketplaceHandler) Register(app *fiber.App) {
	mp := app.Group("/api/marketplace")
	mp.Get("/:platform/search/simple", h.Search)
	mp.Get("/:platform/products/:id", h.ItemDetail)
}

func (h *MarketplaceHandler) Search(c fiber.Ctx) error {
	platform, err := domain.ParsePlatform(c.Params("platform"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	keyword := c.Query("keyword")
	page := parseIntQuery(c, "page", 1)
	if page < 1 {
		page = 1
	}
	sort := domain.SortCode(c.Query("sort"))

	result := h.marketplaceService.Search(c.Context(), platform, keyword, page, sort)
	return c.JSON(fiber.Map{"code": 200, "data": result})
}

func (h *MarketplaceHandler) ItemDetail(c fiber.Ctx) error {
	platform, err := domain.ParsePlatform(c.Params("platform"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	product := h.marketplaceService.ItemDetail(c.Context(), platform, c.Params("id"))
	return c.JSON(fiber.Map{"code": 200, "data": product})
}
