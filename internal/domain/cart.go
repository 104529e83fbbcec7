package domain

import "time"

// CartItem is one line in a user's cart: a product, an optional variant
// selection, and a quantity. Quantity is always >= 1 for a stored item;
// an update that would drop it to zero removes the line instead.
type CartItem struct {
	ID            string    `json:"id"             db:"id"`
	ProductID     string    `json:"productId"      db:"product_id"`
	Title         string    `json:"title"          db:"title"`
	Image         string    `json:"image"          db:"image"`
	Price         float64   `json:"price"          db:"price"`
	Currency      string    `json:"currency"       db:"currency"`
	Quantity      int       `json:"quantity"       db:"quantity"`
	SelectedSize  string    `json:"selectedSize,omitempty"  db:"selected_size"`
	SelectedColor string    `json:"selectedColor,omitempty" db:"selected_color"`
	AddedAt       time.Time `json:"addedAt"        db:"added_at"`
}

// VariantKey identifies a product+variant combination. Two adds with the
// same key merge into one line item.
func (i CartItem) VariantKey() string {
	return i.ProductID + "|" + i.SelectedSize + "|" + i.SelectedColor
}

// CartSnapshot is the full cart state returned by every cart operation.
// The server-side snapshot is authoritative for authenticated users.
type CartSnapshot struct {
	Items      []CartItem `json:"items"`
	TotalPrice float64    `json:"totalPrice"`
}

// NewCartSnapshot builds a snapshot with the total computed from the items.
func NewCartSnapshot(items []CartItem) CartSnapshot {
	if items == nil {
		items = []CartItem{}
	}
	snap := CartSnapshot{Items: items}
	for _, it := range items {
		snap.TotalPrice += it.Price * float64(it.Quantity)
	}
	return snap
}

// TotalItems returns the summed quantity across all line items.
func (s CartSnapshot) TotalItems() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

// AddToCartRequest is the payload for adding an item to the remote cart.
type AddToCartRequest struct {
	ProductID     string  `json:"productId"`
	Title         string  `json:"title"`
	Image         string  `json:"image"`
	Price         float64 `json:"price"`
	Currency      string  `json:"currency"`
	Quantity      int     `json:"quantity"`
	SelectedSize  string  `json:"selectedSize,omitempty"`
	SelectedColor string  `json:"selectedColor,omitempty"`
}

// UpdateCartItemRequest carries a quantity change for one line item.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}
