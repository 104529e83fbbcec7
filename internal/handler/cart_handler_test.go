package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pandamall/atlogistics/internal/domain"
	"github.com/pandamall/atlogistics/internal/middleware"
	"github.com/pandamall/atlogistics/internal/port"
	"github.com/pandamall/atlogistics/internal/service"
	"github.com/pandamall/atlogistics/internal/token"
)

// memCartStore is a minimal in-memory port.CartStore for handler tests.
type memCartStore struct {
	mu    sync.Mutex
	items map[string][]domain.CartItem
}

func (s *memCartStore) ListCartItems(_ context.Context, userID string) ([]domain.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CartItem, len(s.items[userID]))
	copy(out, s.items[userID])
	return out, nil
}

func (s *memCartStore) GetCartItemByVariant(_ context.Context, userID, productID, size, color string) (*domain.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := domain.CartItem{ProductID: productID, SelectedSize: size, SelectedColor: color}.VariantKey()
	for _, it := range s.items[userID] {
		if it.VariantKey() == key {
			cp := it
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("variant %s: %w", key, port.ErrCartItemNotFound)
}

func (s *memCartStore) InsertCartItem(_ context.Context, userID string, item *domain.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if s.items == nil {
		s.items = map[string][]domain.CartItem{}
	}
	s.items[userID] = append(s.items[userID], *item)
	return nil
}

func (s *memCartStore) UpdateCartItemQuantity(_ context.Context, userID, itemID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items[userID] {
		if s.items[userID][i].ID == itemID {
			s.items[userID][i].Quantity = quantity
			return nil
		}
	}
	return fmt.Errorf("item %q: %w", itemID, port.ErrCartItemNotFound)
}

func (s *memCartStore) DeleteCartItem(_ context.Context, userID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.items[userID]
	for i := range lines {
		if lines[i].ID == itemID {
			s.items[userID] = append(lines[:i], lines[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("item %q: %w", itemID, port.ErrCartItemNotFound)
}

func (s *memCartStore) ClearCart(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, userID)
	return nil
}

func newCartTestApp(t *testing.T) (*fiber.App, *token.Manager) {
	t.Helper()
	tokens := token.NewManager("secret", "pandamall")
	app := fiber.New()
	NewCartHandler(service.NewCartService(&memCartStore{})).Register(app, middleware.AuthMiddleware(tokens))
	return app, tokens
}

func bearer(t *testing.T, tokens *token.Manager, id string, role domain.Role) string {
	t.Helper()
	signed, err := tokens.Mint(&domain.User{ID: id, Username: id, Role: role})
	require.NoError(t, err)
	return "Bearer " + signed
}

func TestCartRequiresAuthentication(t *testing.T) {
	app, _ := newCartTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/cart", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCartRejectsForeignUserID(t *testing.T) {
	app, tokens := newCartTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/cart?userId=someone-else", nil)
	req.Header.Set("Authorization", bearer(t, tokens, "u1", domain.RoleCustomer))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCartAdminMayInspectAnyCart(t *testing.T) {
	app, tokens := newCartTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/cart?userId=someone-else", nil)
	req.Header.Set("Authorization", bearer(t, tokens, "root", domain.RoleAdmin))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
