package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/pandamall/atlogistics/internal/domain"
	"github.com/pandamall/atlogistics/internal/port"
)

// PostgresStore handles all relational database operations.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection and returns a store instance.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// --- Users ---

const userColumns = `id, username, email, name, avatar_url, provider, provider_id, role, status, password_hash, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.Name, &u.AvatarURL,
		&u.Provider, &u.ProviderID, &u.Role, &u.Status, &u.PasswordHash,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new credentials-based user.
func (s *PostgresStore) CreateUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (id, username, email, name, avatar_url, provider, provider_id, role, status, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + userColumns

	id := u.ID
	if id == "" {
		id = uuid.NewString()
	}
	row := s.db.QueryRowContext(ctx, query,
		id, u.Username, u.Email, u.Name, u.AvatarURL,
		u.Provider, u.ProviderID, u.Role, u.Status, u.PasswordHash,
	)
	created, err := scanUser(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, fmt.Errorf("create user %q: %w", u.Username, port.ErrUserExists)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

// UpsertOAuthUser inserts or updates a user by provider + provider_id.
func (s *PostgresStore) UpsertOAuthUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (id, username, email, name, avatar_url, provider, provider_id, role, status, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, '')
		ON CONFLICT (provider, provider_id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			avatar_url = EXCLUDED.avatar_url,
			updated_at = NOW()
		RETURNING ` + userColumns

	id := u.ID
	if id == "" {
		id = uuid.NewString()
	}
	row := s.db.QueryRowContext(ctx, query,
		id, u.Username, u.Email, u.Name, u.AvatarURL,
		u.Provider, u.ProviderID, u.Role, u.Status,
	)
	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("upsert oauth user: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by ID.
func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get user %q: %w", id, port.ErrUserNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// GetUserByUsername retrieves a user by username.
func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get user %q: %w", username, port.ErrUserNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// ExistsByUsernameOrEmail reports whether a user with the given username or
// email already exists.
func (s *PostgresStore) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 OR email = $2)`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, username, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("check existing user: %w", err)
	}
	return exists, nil
}

// ListUsers returns all users ordered by creation time. The admin screen
// filters client-side, so there is no pagination here.
func (s *PostgresStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateUser applies a partial admin update, leaving nil fields untouched.
func (s *PostgresStore) UpdateUser(ctx context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
	query := `
		UPDATE users SET
			name = COALESCE($2, name),
			email = COALESCE($3, email),
			role = COALESCE($4, role),
			status = COALESCE($5, status),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(s.db.QueryRowContext(ctx, query, id, upd.Name, upd.Email, upd.Role, upd.Status))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("update user %q: %w", id, port.ErrUserNotFound)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// UpdateProfile updates the caller's own display fields. Empty values keep
// the stored ones.
func (s *PostgresStore) UpdateProfile(ctx context.Context, id, name, email, avatarURL string) (*domain.User, error) {
	query := `
		UPDATE users SET
			name = COALESCE(NULLIF($2, ''), name),
			email = COALESCE(NULLIF($3, ''), email),
			avatar_url = COALESCE(NULLIF($4, ''), avatar_url),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(s.db.QueryRowContext(ctx, query, id, name, email, avatarURL))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("update profile %q: %w", id, port.ErrUserNotFound)
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// DeleteUser removes a user record.
func (s *PostgresStore) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete user %q: %w", id, port.ErrUserNotFound)
	}
	return nil
}

// --- Refresh tokens ---

// UpsertRefreshToken stores a refresh token, superseding any existing token
// for the same user.
func (s *PostgresStore) UpsertRefreshToken(ctx context.Context, t *port.StoredRefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (token, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			token = EXCLUDED.token,
			expires_at = EXCLUDED.expires_at,
			created_at = EXCLUDED.created_at`

	if _, err := s.db.ExecContext(ctx, query, t.Token, t.UserID, t.ExpiresAt, t.CreatedAt); err != nil {
		return fmt.Errorf("upsert refresh token: %w", err)
	}
	return nil
}

// GetRefreshToken looks up a refresh token by its value.
func (s *PostgresStore) GetRefreshToken(ctx context.Context, token string) (*port.StoredRefreshToken, error) {
	query := `SELECT token, user_id, expires_at, created_at FROM refresh_tokens WHERE token = $1`

	var t port.StoredRefreshToken
	err := s.db.QueryRowContext(ctx, query, token).Scan(&t.Token, &t.UserID, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, port.ErrRefreshTokenInvalid
		}
		return nil, fmt.Errorf("get refresh token: %w", err)
	}
	return &t, nil
}

// DeleteRefreshToken removes a single refresh token.
func (s *PostgresStore) DeleteRefreshToken(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

// DeleteRefreshTokensByUser removes all refresh tokens held by a user.
func (s *PostgresStore) DeleteRefreshTokensByUser(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete refresh tokens: %w", err)
	}
	return nil
}

// --- Cart ---

const cartColumns = `id, product_id, title, image, price, currency, quantity, selected_size, selected_color, added_at`

// ListCartItems returns the user's cart lines, oldest first.
func (s *PostgresStore) ListCartItems(ctx context.Context, userID string) ([]domain.CartItem, error) {
	query := `SELECT ` + cartColumns + ` FROM cart_items WHERE user_id = $1 ORDER BY added_at`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var it domain.CartItem
		if err := rows.Scan(
			&it.ID, &it.ProductID, &it.Title, &it.Image, &it.Price, &it.Currency,
			&it.Quantity, &it.SelectedSize, &it.SelectedColor, &it.AddedAt,
		); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetCartItemByVariant finds the line matching a product+variant combination.
func (s *PostgresStore) GetCartItemByVariant(ctx context.Context, userID, productID, size, color string) (*domain.CartItem, error) {
	query := `SELECT ` + cartColumns + ` FROM cart_items
	          WHERE user_id = $1 AND product_id = $2 AND selected_size = $3 AND selected_color = $4`

	var it domain.CartItem
	err := s.db.QueryRowContext(ctx, query, userID, productID, size, color).Scan(
		&it.ID, &it.ProductID, &it.Title, &it.Image, &it.Price, &it.Currency,
		&it.Quantity, &it.SelectedSize, &it.SelectedColor, &it.AddedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, port.ErrCartItemNotFound
		}
		return nil, fmt.Errorf("get cart item: %w", err)
	}
	return &it, nil
}

// InsertCartItem adds a new line to the user's cart.
func (s *PostgresStore) InsertCartItem(ctx context.Context, userID string, item *domain.CartItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	query := `
		INSERT INTO cart_items (id, user_id, product_id, title, image, price, currency, quantity, selected_size, selected_color)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := s.db.ExecContext(ctx, query,
		item.ID, userID, item.ProductID, item.Title, item.Image,
		item.Price, item.Currency, item.Quantity, item.SelectedSize, item.SelectedColor,
	)
	if err != nil {
		return fmt.Errorf("insert cart item: %w", err)
	}
	return nil
}

// UpdateCartItemQuantity sets the quantity on one line. The service layer
// guarantees quantity >= 1 here; non-positive updates delete instead.
func (s *PostgresStore) UpdateCartItemQuantity(ctx context.Context, userID, itemID string, quantity int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE cart_items SET quantity = $3 WHERE user_id = $1 AND id = $2`,
		userID, itemID, quantity,
	)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update cart item %q: %w", itemID, port.ErrCartItemNotFound)
	}
	return nil
}

// DeleteCartItem removes one line from the user's cart.
func (s *PostgresStore) DeleteCartItem(ctx context.Context, userID, itemID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND id = $2`, userID, itemID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete cart item %q: %w", itemID, port.ErrCartItemNotFound)
	}
	return nil
}

// ClearCart removes every line from the user's cart.
func (s *PostgresStore) ClearCart(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// --- Catalog: categories ---

const categoryColumns = `id, name, name_en, name_zh, icon, product_count, created_at`

// ListCategories returns all categories ordered by creation time.
func (s *PostgresStore) ListCategories(ctx context.Context) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories ORDER BY created_at`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.NameEn, &c.NameZh, &c.Icon, &c.ProductCount, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// CreateCategory inserts a new category.
func (s *PostgresStore) CreateCategory(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	id := c.ID
	if id == "" {
		id = uuid.NewString()
	}
	query := `
		INSERT INTO categories (id, name, name_en, name_zh, icon, product_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + categoryColumns

	var created domain.Category
	err := s.db.QueryRowContext(ctx, query, id, c.Name, c.NameEn, c.NameZh, c.Icon, c.ProductCount).Scan(
		&created.ID, &created.Name, &created.NameEn, &created.NameZh,
		&created.Icon, &created.ProductCount, &created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &created, nil
}

// UpdateCategory updates an existing category.
func (s *PostgresStore) UpdateCategory(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	query := `
		UPDATE categories SET name = $2, name_en = $3, name_zh = $4, icon = $5, product_count = $6
		WHERE id = $1
		RETURNING ` + categoryColumns

	var updated domain.Category
	err := s.db.QueryRowContext(ctx, query, c.ID, c.Name, c.NameEn, c.NameZh, c.Icon, c.ProductCount).Scan(
		&updated.ID, &updated.Name, &updated.NameEn, &updated.NameZh,
		&updated.Icon, &updated.ProductCount, &updated.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("update category %q: %w", c.ID, port.ErrCategoryNotFound)
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return &updated, nil
}

// DeleteCategory removes a category.
func (s *PostgresStore) DeleteCategory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete category %q: %w", id, port.ErrCategoryNotFound)
	}
	return nil
}

// --- Catalog: products ---

const productColumns = `id, title, title_en, title_zh, price, original_price, discount, sold, stock, category, image, created_at`

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.Title, &p.TitleEn, &p.TitleZh, &p.Price, &p.OriginalPrice,
		&p.Discount, &p.Sold, &p.Stock, &p.Category, &p.Image, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProducts returns all products ordered by creation time.
func (s *PostgresStore) ListProducts(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// GetProductsByIDs returns the products matching the given IDs. Unknown IDs
// are skipped, matching the listing contract.
func (s *PostgresStore) GetProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`
	rows, err := s.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get products by ids: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// CreateProduct inserts a new product.
func (s *PostgresStore) CreateProduct(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	id := p.ID
	if id == "" {
		id = uuid.NewString()
	}
	query := `
		INSERT INTO products (id, title, title_en, title_zh, price, original_price, discount, sold, stock, category, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + productColumns

	created, err := scanProduct(s.db.QueryRowContext(ctx, query,
		id, p.Title, p.TitleEn, p.TitleZh, p.Price, p.OriginalPrice,
		p.Discount, p.Sold, p.Stock, p.Category, p.Image,
	))
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return created, nil
}

// UpdateProduct updates an existing product.
func (s *PostgresStore) UpdateProduct(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	query := `
		UPDATE products SET
			title = $2, title_en = $3, title_zh = $4, price = $5, original_price = $6,
			discount = $7, sold = $8, stock = $9, category = $10, image = $11
		WHERE id = $1
		RETURNING ` + productColumns

	updated, err := scanProduct(s.db.QueryRowContext(ctx, query,
		p.ID, p.Title, p.TitleEn, p.TitleZh, p.Price, p.OriginalPrice,
		p.Discount, p.Sold, p.Stock, p.Category, p.Image,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("update product %q: %w", p.ID, port.ErrProductNotFound)
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	return updated, nil
}

// DeleteProduct removes a product.
func (s *PostgresStore) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete product %q: %w", id, port.ErrProductNotFound)
	}
	return nil
}

// --- Audit Logs ---

// WriteAudit implements middleware.AuditWriter.
func (s *PostgresStore) WriteAudit(userID, action, resource, resourceID, details, ip, userAgent string) error {
	query := `INSERT INTO audit_logs (user_id, action, resource, resource_id, details, ip, user_agent)
	          VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7)`
	_, err := s.db.ExecContext(context.Background(), query,
		userID, action, resource, resourceID, details, ip, userAgent,
	)
	return err
}

// ListAuditLogs returns the most recent audit entries, optionally filtered
// by action.
func (s *PostgresStore) ListAuditLogs(ctx context.Context, limit int, action string) ([]domain.AuditLog, error) {
	query := `SELECT id, user_id, action, resource, resource_id, details::text, ip, user_agent, created_at
	          FROM audit_logs`
	args := []any{}
	if action != "" {
		query += ` WHERE action = $1`
		args = append(args, action)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	logs := []domain.AuditLog{}
	for rows.Next() {
		var l domain.AuditLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.Action, &l.Resource, &l.ResourceID, &l.Details, &l.IP, &l.UserAgent, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
