// Package catalog serves categories and products.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hongminglow/storefront-be/internal/models"
	"github.com/hongminglow/storefront-be/internal/storage"
)

var (
	// ErrNoProducts is returned when a category has no products.
	ErrNoProducts = fmt.Errorf("products: %w", storage.ErrNotFound)
	// ErrProductNotFound is returned for unknown product ids.
	ErrProductNotFound = fmt.Errorf("product: %w", storage.ErrNotFound)
	// ErrInvalid flags catalog entries rejected on upsert.
	ErrInvalid = errors.New("invalid catalog entry")
)

type Service struct {
	store storage.CatalogStore
}

func NewService(store storage.CatalogStore) *Service {
	return &Service{store: store}
}

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

// ListProductsByCategory treats an empty result as not found.
func (s *Service) ListProductsByCategory(ctx context.Context, categoryID string) ([]models.Product, error) {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return nil, ErrNoProducts
	}
	products, err := s.store.ListProductsByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if len(products) == 0 {
		return nil, ErrNoProducts
	}
	return products, nil
}

func (s *Service) GetProduct(ctx context.Context, productID string) (models.Product, error) {
	product, err := s.store.FindProduct(ctx, strings.TrimSpace(productID))
	if errors.Is(err, storage.ErrNotFound) {
		return models.Product{}, ErrProductNotFound
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("find product: %w", err)
	}
	return product, nil
}

// FindProduct satisfies cart.ProductLookup.
func (s *Service) FindProduct(ctx context.Context, productID string) (models.Product, error) {
	return s.GetProduct(ctx, productID)
}

func (s *Service) UpsertCategory(ctx context.Context, category models.Category) error {
	if strings.TrimSpace(category.ID) == "" || strings.TrimSpace(category.Name) == "" {
		return fmt.Errorf("%w: category needs id and name", ErrInvalid)
	}
	if err := s.store.UpsertCategory(ctx, category); err != nil {
		return fmt.Errorf("upsert category %s: %w", category.ID, err)
	}
	return nil
}

func (s *Service) UpsertProduct(ctx context.Context, product models.Product) error {
	if strings.TrimSpace(product.ID) == "" || strings.TrimSpace(product.Title) == "" {
		return fmt.Errorf("%w: product needs id and title", ErrInvalid)
	}
	if product.Price.IsNegative() {
		return fmt.Errorf("%w: product %s has a negative price", ErrInvalid, product.ID)
	}
	if err := s.store.UpsertProduct(ctx, product); err != nil {
		return fmt.Errorf("upsert product %s: %w", product.ID, err)
	}
	return nil
}
