package port

import (
	"context"
	"time"

	"github.com/pandamall/atlogistics/internal/domain"
)

// UserStore is the data-access contract for user records.
// Not-found lookups return ErrUserNotFound.
type UserStore interface {
	CreateUser(ctx context.Context, u *domain.User) (*domain.User, error)
	UpsertOAuthUser(ctx context.Context, u *domain.User) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateUser(ctx context.Context, id string, upd domain.UserUpdate) (*domain.User, error)
	UpdateProfile(ctx context.Context, id, name, email, avatarURL string) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// StoredRefreshToken is a server-side refresh credential row. The token
// value itself travels only in the httpOnly cookie.
type StoredRefreshToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// RefreshTokenStore persists refresh tokens. A user holds at most one live
// token; rotation replaces it.
type RefreshTokenStore interface {
	// UpsertRefreshToken stores the token, superseding any existing token
	// for the same user.
	UpsertRefreshToken(ctx context.Context, t *StoredRefreshToken) error
	// GetRefreshToken returns ErrRefreshTokenInvalid for unknown tokens.
	GetRefreshToken(ctx context.Context, token string) (*StoredRefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	DeleteRefreshTokensByUser(ctx context.Context, userID string) error
}

// CartStore persists per-user cart line items.
type CartStore interface {
	ListCartItems(ctx context.Context, userID string) ([]domain.CartItem, error)
	// GetCartItemByVariant returns ErrCartItemNotFound when no line matches.
	GetCartItemByVariant(ctx context.Context, userID, productID, size, color string) (*domain.CartItem, error)
	InsertCartItem(ctx context.Context, userID string, item *domain.CartItem) error
	UpdateCartItemQuantity(ctx context.Context, userID, itemID string, quantity int) error
	DeleteCartItem(ctx context.Context, userID, itemID string) error
	ClearCart(ctx context.Context, userID string) error
}

// CatalogStore persists the locally managed categories and products.
type CatalogStore interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, c *domain.Category) (*domain.Category, error)
	UpdateCategory(ctx context.Context, c *domain.Category) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	CreateProduct(ctx context.Context, p *domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, p *domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}
