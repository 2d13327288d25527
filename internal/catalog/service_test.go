package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/storefront-be/internal/models"
	"github.com/hongminglow/storefront-be/internal/storage"
	"github.com/hongminglow/storefront-be/internal/storage/memory"
)

func seeded(t *testing.T) *Service {
	t.Helper()
	ctx := context.Background()
	svc := NewService(memory.New())
	require.NoError(t, svc.UpsertCategory(ctx, models.Category{ID: "cat-1", Name: "Lighting"}))
	require.NoError(t, svc.UpsertCategory(ctx, models.Category{ID: "cat-2", Name: "Empty"}))
	require.NoError(t, svc.UpsertProduct(ctx, models.Product{
		ID: "p1", Title: "Desk lamp", Price: decimal.RequireFromString("19.99"), CategoryID: "cat-1",
	}))
	return svc
}

func TestListCategories(t *testing.T) {
	cats, err := seeded(t).ListCategories(context.Background())
	require.NoError(t, err)
	assert.Len(t, cats, 2)

	empty, err := NewService(memory.New()).ListCategories(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, empty)
}

func TestListProductsByCategory(t *testing.T) {
	ctx := context.Background()
	svc := seeded(t)

	products, err := svc.ListProductsByCategory(ctx, "  cat-1 ")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "p1", products[0].ID)

	_, err = svc.ListProductsByCategory(ctx, "cat-2")
	assert.ErrorIs(t, err, ErrNoProducts)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = svc.ListProductsByCategory(ctx, "   ")
	assert.ErrorIs(t, err, ErrNoProducts)
}

func TestGetProduct(t *testing.T) {
	ctx := context.Background()
	svc := seeded(t)

	p, err := svc.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "19.99", p.Price.String())

	_, err = svc.GetProduct(ctx, "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestUpsertValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.New())
	assert.ErrorIs(t, svc.UpsertCategory(ctx, models.Category{ID: "c"}), ErrInvalid)
	assert.ErrorIs(t, svc.UpsertProduct(ctx, models.Product{Title: "x"}), ErrInvalid)
	assert.ErrorIs(t, svc.UpsertProduct(ctx, models.Product{ID: "p", Title: "x", Price: decimal.NewFromInt(-1)}), ErrInvalid)
}
