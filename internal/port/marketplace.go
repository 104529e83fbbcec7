package port

import (
	"context"

	"github.com/pandamall/atlogistics/internal/domain"
)

// MarketplaceProvider abstracts the external marketplace data source.
// Implementations own their HTTP timeout; callers must still be prepared
// for errors and substitute fallback data at the proxy boundary.
type MarketplaceProvider interface {
	// Search returns one page of listings for a keyword.
	Search(ctx context.Context, platform domain.Platform, keyword string, page, sort int) (*domain.SearchResult, error)

	// ItemDetail returns a single listing by upstream item ID.
	ItemDetail(ctx context.Context, platform domain.Platform, itemID string) (*domain.MarketProduct, error)
}
