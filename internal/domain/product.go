package domain

import (
	"math"
	"strings"
	"time"
)

// Product is a locally managed catalog record with per-language titles.
type Product struct {
	ID            string    `json:"id"            db:"id"`
	Title         string    `json:"title"         db:"title"`
	TitleEn       string    `json:"titleEn"       db:"title_en"`
	TitleZh       string    `json:"titleZh"       db:"title_zh"`
	Price         float64   `json:"price"         db:"price"`
	OriginalPrice float64   `json:"originalPrice" db:"original_price"`
	Discount      int       `json:"discount"      db:"discount"`
	Sold          int       `json:"sold"          db:"sold"`
	Stock         int       `json:"stock"         db:"stock"`
	Category      string    `json:"category"      db:"category"`
	Image         string    `json:"image"         db:"image"`
	CreatedAt     time.Time `json:"createdAt"     db:"created_at"`
}

// ComputeDiscount derives the discount percentage from the original and
// current price. A zero or negative original price yields 0 rather than a
// division by zero.
func ComputeDiscount(price, originalPrice float64) int {
	if originalPrice <= 0 {
		return 0
	}
	return int(math.Round((originalPrice - price) / originalPrice * 100))
}

// Matches reports whether the product matches a case-insensitive substring
// query across its display fields. An empty query matches everything.
func (p Product) Matches(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.TitleEn), q) ||
		strings.Contains(strings.ToLower(p.Category), q)
}

// FilterProducts returns the products matching the query, preserving order.
func FilterProducts(products []Product, query string) []Product {
	if query == "" {
		return products
	}
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Matches(query) {
			out = append(out, p)
		}
	}
	return out
}
