package marketplace

import (
	"fmt"
	"hash/fnv"

	"github.com/pandamall/atlogistics/internal/domain"
)

// Mock listings stand in for the upstream whenever it is unavailable or no
// credential is configured. Generation is deterministic per item ID so
// repeated requests render stable pages.

var mockTitles = []string{
	"Wireless Bluetooth Earbuds",
	"Portable Mini Fan USB Rechargeable",
	"Women's Summer Floral Dress",
	"Mechanical Gaming Keyboard RGB",
	"Stainless Steel Water Bottle 750ml",
	"Kids Educational Building Blocks",
	"Men's Casual Canvas Sneakers",
	"LED Strip Lights 5m Remote Control",
}

var mockShops = []string{
	"Sunrise Trading Co.",
	"Golden Dragon Store",
	"EastWind Global",
	"Lucky Panda Shop",
}

var mockCategories = []string{
	"Electronics", "Fashion", "Home & Living", "Toys & Hobbies",
}

// MockProduct builds a deterministic listing for an item ID.
func MockProduct(platform domain.Platform, itemID string) domain.MarketProduct {
	h := fnv.New32a()
	h.Write([]byte(itemID))
	seed := h.Sum32()

	price := 199 + int(seed%9800)
	original := price + int(seed%5000)
	return domain.MarketProduct{
		ItemID:        itemID,
		Title:         mockTitles[seed%uint32(len(mockTitles))],
		Price:         fmt.Sprintf("%d.00", price),
		OriginalPrice: fmt.Sprintf("%d.00", original),
		MainImgs:      []string{fmt.Sprintf("/images/mock/%d.jpg", seed%12)},
		ShopName:      mockShops[seed%uint32(len(mockShops))],
		SellerID:      fmt.Sprintf("seller-%d", seed%1000),
		Sales:         int(seed % 50000),
		CategoryName:  mockCategories[seed%uint32(len(mockCategories))],
		Currency:      platform.Currency(),
		Platform:      platform,
	}
}

// MockSearchResult builds one deterministic page of mock listings for a
// keyword.
func MockSearchResult(platform domain.Platform, keyword string, page int) *domain.SearchResult {
	const pageSize = 8
	products := make([]domain.MarketProduct, 0, pageSize)
	for i := 0; i < pageSize; i++ {
		id := fmt.Sprintf("%s-%s-%d-%d", platform, keyword, page, i)
		products = append(products, MockProduct(platform, id))
	}
	return &domain.SearchResult{
		Platform: platform,
		Products: products,
		NextPage: page + 1,
	}
}
