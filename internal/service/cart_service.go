package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pandamall/atlogistics/internal/domain"
	"github.com/pandamall/atlogistics/internal/port"
)

// CartService owns the server-side cart. Every operation returns the full
// snapshot: the server is authoritative and concurrent mutations settle as
// last-write-wins.
type CartService struct {
	store port.CartStore
}

// NewCartService creates a new cart service.
func NewCartService(store port.CartStore) *CartService {
	return &CartService{store: store}
}

// GetCart returns the user's current cart snapshot.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.CartSnapshot, error) {
	items, err := s.store.ListCartItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	snap := domain.NewCartSnapshot(items)
	return &snap, nil
}

// AddItem appends a line item, merging on {productId, size, color} by
// incrementing quantity. A missing quantity defaults to 1.
func (s *CartService) AddItem(ctx context.Context, userID string, req domain.AddToCartRequest) (*domain.CartSnapshot, error) {
	if req.ProductID == "" {
		return nil, fmt.Errorf("add to cart: product id required: %w", port.ErrValidation)
	}
	qty := req.Quantity
	if qty <= 0 {
		qty = 1
	}

	existing, err := s.store.GetCartItemByVariant(ctx, userID, req.ProductID, req.SelectedSize, req.SelectedColor)
	switch {
	case err == nil:
		if err := s.store.UpdateCartItemQuantity(ctx, userID, existing.ID, existing.Quantity+qty); err != nil {
			return nil, err
		}
	case errors.Is(err, port.ErrCartItemNotFound):
		item := &domain.CartItem{
			ProductID:     req.ProductID,
			Title:         req.Title,
			Image:         req.Image,
			Price:         req.Price,
			Currency:      req.Currency,
			Quantity:      qty,
			SelectedSize:  req.SelectedSize,
			SelectedColor: req.SelectedColor,
		}
		if err := s.store.InsertCartItem(ctx, userID, item); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return s.GetCart(ctx, userID)
}

// UpdateQuantity sets a line item's quantity. Zero or below removes the
// line entirely; a non-positive quantity is never stored.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (*domain.CartSnapshot, error) {
	if quantity <= 0 {
		if err := s.store.DeleteCartItem(ctx, userID, itemID); err != nil {
			return nil, err
		}
		return s.GetCart(ctx, userID)
	}

	if err := s.store.UpdateCartItemQuantity(ctx, userID, itemID, quantity); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

// RemoveItem deletes one line item.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) (*domain.CartSnapshot, error) {
	if err := s.store.DeleteCartItem(ctx, userID, itemID); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

// Clear empties the cart, as after a successful checkout.
func (s *CartService) Clear(ctx context.Context, userID string) (*domain.CartSnapshot, error) {
	if err := s.store.ClearCart(ctx, userID); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}
