package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Categories lists catalog categories, optionally filtered by query.
func (c *Client) Categories(ctx context.Context, query string) ([]Category, error) {
	path := "/api/categories"
	if query != "" {
		path += "?q=" + url.QueryEscape(query)
	}
	var out []Category
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Products lists catalog products, optionally filtered by query. The
// filter is case-insensitive over title and category.
func (c *Client) Products(ctx context.Context, query string) ([]Product, error) {
	path := "/api/products"
	if query != "" {
		path += "?q=" + url.QueryEscape(query)
	}
	var out []Product
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ProductsByIDs fetches the given products. Unknown IDs are silently
// skipped; an empty ID list yields an empty slice.
func (c *Client) ProductsByIDs(ctx context.Context, ids []string) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}
	path := "/api/products?ids=" + url.QueryEscape(strings.Join(ids, ","))
	var out []Product
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// marketEnvelope unwraps the marketplace proxy's response format.
type marketEnvelope[T any] struct {
	Code int `json:"code"`
	Data T   `json:"data"`
}

// MarketSearch queries an external marketplace through the server proxy.
// Sort accepts "price-asc", "price-desc", "sales", or "" for relevance.
func (c *Client) MarketSearch(ctx context.Context, platform Platform, keyword string, page int, sort string) (*SearchResult, error) {
	q := url.Values{}
	q.Set("keyword", keyword)
	q.Set("page", strconv.Itoa(page))
	if sort != "" {
		q.Set("sort", sort)
	}
	path := "/api/marketplace/" + string(platform) + "/search/simple?" + q.Encode()

	var out marketEnvelope[*SearchResult]
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// MarketItemDetail fetches one marketplace listing through the proxy.
func (c *Client) MarketItemDetail(ctx context.Context, platform Platform, itemID string) (*MarketProduct, error) {
	path := "/api/marketplace/" + string(platform) + "/products/" + url.PathEscape(itemID)
	var out marketEnvelope[*MarketProduct]
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Admin operations. These require a session whose token carries the
// ADMIN role; the server enforces it regardless of what the client
// believes.

// ListUsers returns every account.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateUser applies a partial update to an account.
func (c *Client) UpdateUser(ctx context.Context, id string, upd UserUpdate) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodPatch, "/api/users/"+url.PathEscape(id), upd, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteUser removes an account. The server refuses to delete admins.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(id), nil, nil)
}

// CreateProduct adds a catalog product.
func (c *Client) CreateProduct(ctx context.Context, p *Product) (*Product, error) {
	var out Product
	if err := c.do(ctx, http.MethodPost, "/api/products", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProduct replaces a catalog product.
func (c *Client) UpdateProduct(ctx context.Context, p *Product) (*Product, error) {
	var out Product
	if err := c.do(ctx, http.MethodPut, "/api/products/"+url.PathEscape(p.ID), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProduct removes a catalog product.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/products/"+url.PathEscape(id), nil, nil)
}

// CreateCategory adds a catalog category.
func (c *Client) CreateCategory(ctx context.Context, cat *Category) (*Category, error) {
	var out Category
	if err := c.do(ctx, http.MethodPost, "/api/categories", cat, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCategory replaces a catalog category.
func (c *Client) UpdateCategory(ctx context.Context, cat *Category) (*Category, error) {
	var out Category
	if err := c.do(ctx, http.MethodPut, "/api/categories/"+url.PathEscape(cat.ID), cat, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCategory removes a catalog category.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/categories/"+url.PathEscape(id), nil, nil)
}
