package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/pandamall/atlogistics/internal/domain"
	"github.com/pandamall/atlogistics/internal/port"
)

// memUserStore is an in-memory port.UserStore.
type memUserStore struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUserStore(seed ...*domain.User) *memUserStore {
	s := &memUserStore{users: map[string]*domain.User{}}
	for _, u := range seed {
		if u.ID == "" {
			u.ID = uuid.NewString()
		}
		s.users[u.ID] = u
	}
	return s
}

func (s *memUserStore) CreateUser(_ context.Context, u *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	cp.ID = uuid.NewString()
	s.users[cp.ID] = &cp
	return &cp, nil
}

func (s *memUserStore) UpsertOAuthUser(_ context.Context, u *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Provider == u.Provider && existing.ProviderID == u.ProviderID {
			existing.Name = u.Name
			existing.AvatarURL = u.AvatarURL
			return existing, nil
		}
	}
	cp := *u
	cp.ID = uuid.NewString()
	if cp.Status == "" {
		cp.Status = domain.StatusActive
	}
	if cp.Role == "" {
		cp.Role = domain.RoleCustomer
	}
	s.users[cp.ID] = &cp
	return &cp, nil
}

func (s *memUserStore) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", id, port.ErrUserNotFound)
	}
	return u, nil
}

func (s *memUserStore) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, port.ErrUserNotFound)
}

func (s *memUserStore) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *memUserStore) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (s *memUserStore) UpdateUser(_ context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", id, port.ErrUserNotFound)
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.Status != nil {
		u.Status = *upd.Status
	}
	return u, nil
}

func (s *memUserStore) UpdateProfile(_ context.Context, id, name, email, avatarURL string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", id, port.ErrUserNotFound)
	}
	if name != "" {
		u.Name = name
	}
	if email != "" {
		u.Email = email
	}
	if avatarURL != "" {
		u.AvatarURL = avatarURL
	}
	return u, nil
}

func (s *memUserStore) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return fmt.Errorf("user %q: %w", id, port.ErrUserNotFound)
	}
	delete(s.users, id)
	return nil
}

// memRefreshStore is an in-memory port.RefreshTokenStore.
type memRefreshStore struct {
	mu     sync.Mutex
	tokens map[string]*port.StoredRefreshToken
}

func newMemRefreshStore() *memRefreshStore {
	return &memRefreshStore{tokens: map[string]*port.StoredRefreshToken{}}
}

func (s *memRefreshStore) UpsertRefreshToken(_ context.Context, t *port.StoredRefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for tok, stored := range s.tokens {
		if stored.UserID == t.UserID {
			delete(s.tokens, tok)
		}
	}
	s.tokens[t.Token] = t
	return nil
}

func (s *memRefreshStore) GetRefreshToken(_ context.Context, token string) (*port.StoredRefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.tokens[token]
	if !ok {
		return nil, fmt.Errorf("token not found: %w", port.ErrRefreshTokenInvalid)
	}
	return stored, nil
}

func (s *memRefreshStore) DeleteRefreshToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}

func (s *memRefreshStore) DeleteRefreshTokensByUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for tok, stored := range s.tokens {
		if stored.UserID == userID {
			delete(s.tokens, tok)
		}
	}
	return nil
}

// memCartStore is an in-memory port.CartStore.
type memCartStore struct {
	mu    sync.Mutex
	items map[string][]domain.CartItem // userID -> lines
}

func newMemCartStore() *memCartStore {
	return &memCartStore{items: map[string][]domain.CartItem{}}
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

// memCatalogStore is an in-memory port.CatalogStore.
type memCatalogStore struct {
	mu         sync.Mutex
	categories []domain.Category
	products   []domain.Product
}

func newMemCatalogStore() *memCatalogStore {
	return &memCatalogStore{}
}

func (s *memCatalogStore) ListCategories(_ context.Context) ([]domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Category, len(s.categories))
	copy(out, s.categories)
	return out, nil
}

func (s *memCatalogStore) CreateCategory(_ context.Context, c *domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	s.categories = append(s.categories, cp)
	return &cp, nil
}

func (s *memCatalogStore) UpdateCategory(_ context.Context, c *domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.categories {
		if s.categories[i].ID == c.ID {
			s.categories[i] = *c
			return c, nil
		}
	}
	return nil, fmt.Errorf("category %q: %w", c.ID, port.ErrCategoryNotFound)
}

func (s *memCatalogStore) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.categories {
		if s.categories[i].ID == id {
			s.categories = append(s.categories[:i], s.categories[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("category %q: %w", id, port.ErrCategoryNotFound)
}

func (s *memCatalogStore) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

func (s *memCatalogStore) GetProductsByIDs(_ context.Context, ids []string) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []domain.Product
	for _, p := range s.products {
		if want[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memCatalogStore) CreateProduct(_ context.Context, p *domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	s.products = append(s.products, cp)
	return &cp, nil
}

func (s *memCatalogStore) UpdateProduct(_ context.Context, p *domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == p.ID {
			s.products[i] = *p
			return p, nil
		}
	}
	return nil, fmt.Errorf("product %q: %w", p.ID, port.ErrProductNotFound)
}

func (s *memCatalogStore) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("product %q: %w", id, port.ErrProductNotFound)
}
