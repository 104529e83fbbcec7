package domain

import "fmt"

// Platform identifies an external marketplace.
type Platform string

const (
	PlatformAliExpress Platform = "aliexpress"
	PlatformTaobao     Platform = "taobao"
	Platform1688       Platform = "1688"
)

// ParsePlatform validates a platform path segment.
func ParsePlatform(s string) (Platform, error) {
	switch Platform(s) {
	case PlatformAliExpress, PlatformTaobao, Platform1688:
		return Platform(s), nil
	default:
		return "", fmt.Errorf("unknown platform %q", s)
	}
}

// Currency returns the default currency for listings on this platform.
func (p Platform) Currency() string {
	if p == PlatformAliExpress {
		return "USD"
	}
	return "CNY"
}

// Marketplace sort keys, mapped to the upstream API's integer codes.
const (
	SortDefault   = 0
	SortPriceAsc  = 1
	SortPriceDesc = 2
	SortSales     = 3
)

// SortCode translates a frontend sort key to the upstream integer code.
// Unknown keys fall back to the default ordering.
func SortCode(key string) int {
	switch key {
	case "price-asc":
		return SortPriceAsc
	case "price-desc":
		return SortPriceDesc
	case "sales":
		return SortSales
	default:
		return SortDefault
	}
}

// MarketProduct is a listing sourced from an external marketplace,
// carrying the upstream wire field names.
type MarketProduct struct {
	ItemID        string   `json:"item_id"`
	Title         string   `json:"title"`
	Price         string   `json:"price"`
	OriginalPrice string   `json:"original_price,omitempty"`
	MainImgs      []string `json:"main_imgs"`
	Video         string   `json:"video,omitempty"`
	ShopName      string   `json:"shop_name"`
	SellerID      string   `json:"seller_id"`
	Sales         int      `json:"sales"`
	CategoryName  string   `json:"category_name"`
	Currency      string   `json:"currency,omitempty"`
	Platform      Platform `json:"platform,omitempty"`
}

// SearchResult is one page of marketplace search results.
type SearchResult struct {
	Platform Platform        `json:"platform"`
	Products []MarketProduct `json:"products"`
	NextPage int             `json:"nextPage,omitempty"`
}
