package service

import (
	"context"
	"fmt"

	"github.com/pandamall/atlogistics/internal/domain"
	"github.com/pandamall/atlogistics/internal/port"
)

// CatalogService manages the locally administered categories and products.
// List endpoints return the full set with an optional case-insensitive
// substring filter; the admin screens paginate nothing.
type CatalogService struct {
	store port.CatalogStore
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(store port.CatalogStore) *CatalogService {
	return &CatalogService{store: store}
}

// ListCategories returns categories matching an optional filter query.
func (s *CatalogService) ListCategories(ctx context.Context, query string) ([]domain.Category, error) {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return cats, nil
	}
	out := make([]domain.Category, 0, len(cats))
	for _, c := range cats {
		if c.Matches(query) {
			out = append(out, c)
		}
	}
	return out, nil
}

// CreateCategory validates and inserts a category.
func (s *CatalogService) CreateCategory(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	if c.Name == "" {
		return nil, fmt.Errorf("create category: name required: %w", port.ErrValidation)
	}
	return s.store.CreateCategory(ctx, c)
}

// UpdateCategory validates and updates a category.
func (s *CatalogService) UpdateCategory(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	if c.ID == "" || c.Name == "" {
		return nil, fmt.Errorf("update category: id and name required: %w", port.ErrValidation)
	}
	return s.store.UpdateCategory(ctx, c)
}

// DeleteCategory removes a category.
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	return s.store.DeleteCategory(ctx, id)
}

// ListProducts returns products matching an optional filter query.
func (s *CatalogService) ListProducts(ctx context.Context, query string) ([]domain.Product, error) {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FilterProducts(products, query), nil
}

// GetProductsByIDs returns the products for the given IDs; unknown IDs are
// skipped rather than erroring, matching the public listing contract.
func (s *CatalogService) GetProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}
	products, err := s.store.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

// CreateProduct validates, derives the discount, and inserts a product.
func (s *CatalogService) CreateProduct(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	p.Discount = domain.ComputeDiscount(p.Price, p.OriginalPrice)
	return s.store.CreateProduct(ctx, p)
}

// UpdateProduct validates, re-derives the discount, and updates a product.
func (s *CatalogService) UpdateProduct(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("update product: id required: %w", port.ErrValidation)
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	p.Discount = domain.ComputeDiscount(p.Price, p.OriginalPrice)
	return s.store.UpdateProduct(ctx, p)
}

// DeleteProduct removes a product.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	return s.store.DeleteProduct(ctx, id)
}

func validateProduct(p *domain.Product) error {
	if p.Title == "" {
		return fmt.Errorf("product title required: %w", port.ErrValidation)
	}
	if p.Price < 0 || p.OriginalPrice < 0 {
		return fmt.Errorf("product price must not be negative: %w", port.ErrValidation)
	}
	return nil
}
