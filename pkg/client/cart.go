package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pandamall/atlogistics/internal/domain"
)

// LocalCart is the anonymous cart, persisted as a JSON file so it
// survives restarts. Adds with the same product+variant merge into one
// line; a quantity update to zero or below removes the line.
type LocalCart struct {
	mu    sync.Mutex
	path  string
	items []CartItem
}

// NewLocalCart opens (or lazily creates) the cart file at path.
func NewLocalCart(path string) *LocalCart {
	lc := &LocalCart{path: path}
	lc.load()
	return lc
}

func (lc *LocalCart) load() {
	data, err := os.ReadFile(lc.path)
	if err != nil {
		return
	}
	var items []CartItem
	if json.Unmarshal(data, &items) == nil {
		lc.items = items
	}
}

func (lc *LocalCart) save() error {
	data, err := json.MarshalIndent(lc.items, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(lc.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(lc.path, data, 0o600)
}

// Snapshot returns the current cart state.
func (lc *LocalCart) Snapshot() CartSnapshot {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	items := make([]CartItem, len(lc.items))
	copy(items, lc.items)
	return domain.NewCartSnapshot(items)
}

// Add puts an item in the cart, merging with an existing line that has
// the same product and variant.
func (lc *LocalCart) Add(req AddToCartRequest) (CartSnapshot, error) {
	if req.ProductID == "" {
		return CartSnapshot{}, errors.New("productId is required")
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()

	incoming := CartItem{
		ProductID:     req.ProductID,
		SelectedSize:  req.SelectedSize,
		SelectedColor: req.SelectedColor,
	}
	merged := false
	for i := range lc.items {
		if lc.items[i].VariantKey() == incoming.VariantKey() {
			lc.items[i].Quantity += req.Quantity
			merged = true
			break
		}
	}
	if !merged {
		lc.items = append(lc.items, CartItem{
			ID:            uuid.NewString(),
			ProductID:     req.ProductID,
			Title:         req.Title,
			Image:         req.Image,
			Price:         req.Price,
			Currency:      req.Currency,
			Quantity:      req.Quantity,
			SelectedSize:  req.SelectedSize,
			SelectedColor: req.SelectedColor,
			AddedAt:       time.Now().UTC(),
		})
	}

	if err := lc.save(); err != nil {
		return CartSnapshot{}, fmt.Errorf("persist cart: %w", err)
	}
	return domain.NewCartSnapshot(lc.items), nil
}

// UpdateQuantity sets a line's quantity; zero or below removes the line.
func (lc *LocalCart) UpdateQuantity(itemID string, quantity int) (CartSnapshot, error) {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	for i := range lc.items {
		if lc.items[i].ID != itemID {
			continue
		}
		if quantity <= 0 {
			lc.items = append(lc.items[:i], lc.items[i+1:]...)
		} else {
			lc.items[i].Quantity = quantity
		}
		if err := lc.save(); err != nil {
			return CartSnapshot{}, fmt.Errorf("persist cart: %w", err)
		}
		return domain.NewCartSnapshot(lc.items), nil
	}
	return CartSnapshot{}, fmt.Errorf("cart item %q not found", itemID)
}

// Remove deletes a line item.
func (lc *LocalCart) Remove(itemID string) (CartSnapshot, error) {
	return lc.UpdateQuantity(itemID, 0)
}

// Clear empties the cart.
func (lc *LocalCart) Clear() (CartSnapshot, error) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.items = nil
	if err := lc.save(); err != nil {
		return CartSnapshot{}, fmt.Errorf("persist cart: %w", err)
	}
	return domain.NewCartSnapshot(nil), nil
}

// cartData unwraps the server's cart envelope.
type cartData struct {
	Data CartSnapshot `json:"data"`
}

// Cart returns the current cart: the server snapshot when authenticated,
// the local file otherwise. The server snapshot always replaces the
// local view, never merges into it.
func (c *Client) Cart(ctx context.Context) (CartSnapshot, error) {
	if !c.session.Authenticated() {
		return c.anonCart().Snapshot(), nil
	}
	var out cartData
	if err := c.do(ctx, http.MethodGet, "/api/cart", nil, &out); err != nil {
		return CartSnapshot{}, err
	}
	return out.Data, nil
}

// AddToCart adds an item to whichever cart is active.
func (c *Client) AddToCart(ctx context.Context, req AddToCartRequest) (CartSnapshot, error) {
	if !c.session.Authenticated() {
		return c.anonCart().Add(req)
	}
	var out cartData
	if err := c.do(ctx, http.MethodPost, "/api/cart/items", req, &out); err != nil {
		return CartSnapshot{}, err
	}
	return out.Data, nil
}

// UpdateCartItem changes a line's quantity; zero or below removes it.
func (c *Client) UpdateCartItem(ctx context.Context, itemID string, quantity int) (CartSnapshot, error) {
	if !c.session.Authenticated() {
		return c.anonCart().UpdateQuantity(itemID, quantity)
	}
	var out cartData
	in := UpdateCartItemRequest{Quantity: quantity}
	if err := c.do(ctx, http.MethodPut, "/api/cart/items/"+url.PathEscape(itemID), in, &out); err != nil {
		return CartSnapshot{}, err
	}
	return out.Data, nil
}

// RemoveCartItem deletes a line item.
func (c *Client) RemoveCartItem(ctx context.Context, itemID string) (CartSnapshot, error) {
	if !c.session.Authenticated() {
		return c.anonCart().Remove(itemID)
	}
	var out cartData
	if err := c.do(ctx, http.MethodDelete, "/api/cart/items/"+url.PathEscape(itemID), nil, &out); err != nil {
		return CartSnapshot{}, err
	}
	return out.Data, nil
}

// ClearCart empties whichever cart is active.
func (c *Client) ClearCart(ctx context.Context) (CartSnapshot, error) {
	if !c.session.Authenticated() {
		return c.anonCart().Clear()
	}
	var out cartData
	if err := c.do(ctx, http.MethodDelete, "/api/cart/clear", nil, &out); err != nil {
		return CartSnapshot{}, err
	}
	return out.Data, nil
}

// SyncLocalCart pushes the anonymous cart to the server after login and
// clears the local file. Items merge server-side by product+variant.
func (c *Client) SyncLocalCart(ctx context.Context) (CartSnapshot, error) {
	if !c.session.Authenticated() {
		return CartSnapshot{}, errors.New("not authenticated")
	}

	local := c.anonCart().Snapshot()
	var last CartSnapshot
	for _, item := range local.Items {
		snap, err := c.AddToCart(ctx, AddToCartRequest{
			ProductID:     item.ProductID,
			Title:         item.Title,
			Image:         item.Image,
			Price:         item.Price,
			Currency:      item.Currency,
			Quantity:      item.Quantity,
			SelectedSize:  item.SelectedSize,
			SelectedColor: item.SelectedColor,
		})
		if err != nil {
			return CartSnapshot{}, fmt.Errorf("sync cart item %s: %w", item.ProductID, err)
		}
		last = snap
	}
	if len(local.Items) == 0 {
		return c.Cart(ctx)
	}
	if _, err := c.anonCart().Clear(); err != nil {
		return last, err
	}
	return last, nil
}

func (c *Client) anonCart() *LocalCart {
	if c.localCart == nil {
		dir, err := os.UserCacheDir()
		if err != nil {
			dir = os.TempDir()
		}
		c.localCart = NewLocalCart(filepath.Join(dir, "pandamall", "cart.json"))
	}
	return c.localCart
}
