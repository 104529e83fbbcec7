package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/pandamall/atlogistics/internal/adapter/marketplace"
	"github.com/pandamall/atlogistics/internal/domain"
	"github.com/pandamall/atlogistics/internal/port"
)

// Configurable is implemented by providers that may run without an
// upstream credential.
type Configurable interface {
	Configured() bool
}

// MarketplaceService fronts the external marketplace API. Upstream
// failures never escape this boundary: timeouts, bad payloads, and missing
// credentials all degrade to deterministic mock listings so pages render
// within the configured bound.
type MarketplaceService struct {
	provider port.MarketplaceProvider
}

// NewMarketplaceService creates a new marketplace proxy service.
func NewMarketplaceService(provider port.MarketplaceProvider) *MarketplaceService {
	return &MarketplaceService{provider: provider}
}

// Search returns one page of listings, falling back to mock data on any
// upstream failure.
func (s *MarketplaceService) Search(ctx context.Context, platform domain.Platform, keyword string, page, sort int) *domain.SearchResult {
	if page < 1 {
		page = 1
	}
	if !s.upstreamConfigured() {
		return marketplace.MockSearchResult(platform, keyword, page)
	}

	result, err := s.provider.Search(ctx, platform, keyword, page, sort)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).
			Str("platform", string(platform)).
			Str("keyword", keyword).
			Msg("marketplace search failed, serving mock data")
		return marketplace.MockSearchResult(platform, keyword, page)
	}
	if result.Products == nil {
		result.Products = []domain.MarketProduct{}
	}
	return result
}

// ItemDetail returns a single listing, falling back to a mock listing on
// any upstream failure.
func (s *MarketplaceService) ItemDetail(ctx context.Context, platform domain.Platform, itemID string) *domain.MarketProduct {
	if !s.upstreamConfigured() {
		p := marketplace.MockProduct(platform, itemID)
		return &p
	}

	product, err := s.provider.ItemDetail(ctx, platform, itemID)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).
			Str("platform", string(platform)).
			Str("item_id", itemID).
			Msg("marketplace item detail failed, serving mock data")
		p := marketplace.MockProduct(platform, itemID)
		return &p
	}
	return product
}

func (s *MarketplaceService) upstreamConfigured() bool {
	if c, ok := s.provider.(Configurable); ok {
		return c.Configured()
	}
	return true
}
