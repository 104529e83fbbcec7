package domain

import (
	"strings"
	"time"
)

// Category is a storefront category with per-language display names.
type Category struct {
	ID           string    `json:"id"           db:"id"`
	Name         string    `json:"name"         db:"name"`
	NameEn       string    `json:"nameEn"       db:"name_en"`
	NameZh       string    `json:"nameZh"       db:"name_zh"`
	Icon         string    `json:"icon"         db:"icon"`
	ProductCount int       `json:"productCount" db:"product_count"`
	CreatedAt    time.Time `json:"createdAt"    db:"created_at"`
}

// Matches reports whether the category matches a case-insensitive substring
// query across its display names.
func (c Category) Matches(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(c.Name), q) ||
		strings.Contains(strings.ToLower(c.NameEn), q)
}
