// Package storagetest holds the behavioural suite every storage.Store
// backend must pass.
package storagetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/storefront-be/internal/models"
	"github.com/hongminglow/storefront-be/internal/storage"
)

// Run exercises store. Ids are random so the suite can run against a shared
// database without cleanup.
func Run(t *testing.T, store storage.Store) {
	t.Run("users", func(t *testing.T) { testUsers(t, store) })
	t.Run("blacklist", func(t *testing.T) { testBlacklist(t, store) })
	t.Run("carts", func(t *testing.T) { testCarts(t, store) })
	t.Run("orders", func(t *testing.T) { testOrders(t, store) })
	t.Run("catalog", func(t *testing.T) { testCatalog(t, store) })
}

func testUsers(t *testing.T, store storage.Store) {
	ctx := context.Background()
	name := "user_" + uuid.NewString()
	user := models.User{ID: uuid.NewString(), Username: name, PasswordHash: "hash", CreatedAt: time.Now().UTC().Truncate(time.Millisecond)}

	_, err := store.CreateUser(ctx, user)
	require.NoError(t, err)
	_, err = store.CreateUser(ctx, models.User{ID: uuid.NewString(), Username: name, PasswordHash: "x", CreatedAt: time.Now()})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	got, err := store.FindByUsername(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)

	_, err = store.FindByUsername(ctx, "missing_"+uuid.NewString())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testBlacklist(t *testing.T, store storage.Store) {
	ctx := context.Background()
	token := "tok-" + uuid.NewString()
	expired := "tok-" + uuid.NewString()
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Revoke(ctx, token, now.Add(time.Hour)))
		}()
	}
	wg.Wait()

	revoked, err := store.IsRevoked(ctx, token)
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, store.Revoke(ctx, expired, now.Add(-time.Hour)))
	n, err := store.PruneExpired(ctx, now)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))

	revoked, err = store.IsRevoked(ctx, expired)
	require.NoError(t, err)
	assert.False(t, revoked)
	revoked, err = store.IsRevoked(ctx, token)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func testCarts(t *testing.T, store storage.Store) {
	ctx := context.Background()
	userID := uuid.NewString()
	cart := models.NewCart(uuid.NewString(), userID, time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond))
	cart.AddItem(models.CartItem{ProductID: "p1", Quantity: 3, Price: decimal.RequireFromString("0.1"), Title: "Pin"})

	created, err := store.CreateCart(ctx, cart)
	require.NoError(t, err)
	assert.EqualValues(t, 1, created.Version)
	assert.Equal(t, "0.3", created.Total.String())

	_, err = store.CreateCart(ctx, models.NewCart(uuid.NewString(), userID, time.Now()))
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	byUser, err := store.FindCartByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byUser.ID)
	require.Len(t, byUser.Items, 1)
	assert.Equal(t, "Pin", byUser.Items[0].Title)
	assert.True(t, byUser.Items[0].Price.Equal(decimal.RequireFromString("0.1")))

	next := byUser.Clone()
	next.Status = models.CartConverting
	next.PendingOrderID = uuid.NewString()
	updated, err := store.UpdateCart(ctx, next)
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated.Version)
	assert.Equal(t, next.PendingOrderID, updated.PendingOrderID)

	_, err = store.UpdateCart(ctx, next)
	assert.ErrorIs(t, err, storage.ErrVersionConflict)

	stuck, err := store.ListConvertingCarts(ctx, time.Now())
	require.NoError(t, err)
	assert.True(t, containsCart(stuck, created.ID))

	require.NoError(t, store.DeleteCart(ctx, created.ID))
	require.NoError(t, store.DeleteCart(ctx, created.ID))
	_, err = store.FindCart(ctx, created.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.UpdateCart(ctx, updated)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func containsCart(carts []models.Cart, id string) bool {
	for _, c := range carts {
		if c.ID == id {
			return true
		}
	}
	return false
}

func testOrders(t *testing.T, store storage.Store) {
	ctx := context.Background()
	userID := uuid.NewString()
	base := time.Now().UTC().Truncate(time.Millisecond)

	var ids []string
	for i := 0; i < 3; i++ {
		cart := models.NewCart(uuid.NewString(), userID, base)
		cart.AddItem(models.CartItem{ProductID: "p1", Quantity: i + 1, Price: decimal.RequireFromString("2.50")})
		order := models.NewOrderFromCart(uuid.NewString(), cart, base.Add(time.Duration(i)*time.Second))
		_, err := store.CreateOrder(ctx, order)
		require.NoError(t, err)
		ids = append(ids, order.ID)
	}

	_, err := store.CreateOrder(ctx, models.Order{ID: ids[0], UserID: userID, Total: decimal.Zero, Date: base, Status: models.OrderStatusActive})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	orders, err := store.ListOrdersByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	for i, o := range orders {
		assert.Equal(t, ids[i], o.ID)
	}
	assert.Equal(t, "7.5", orders[2].Total.String())

	got, err := store.FindOrder(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusActive, got.Status)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)

	_, err = store.FindOrder(ctx, uuid.NewString())
	assert.ErrorIs(t, err, storage.ErrNotFound)

	none, err := store.ListOrdersByUser(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testCatalog(t *testing.T, store storage.Store) {
	ctx := context.Background()
	categoryID := "cat-" + uuid.NewString()
	productID := "prod-" + uuid.NewString()

	require.NoError(t, store.UpsertCategory(ctx, models.Category{ID: categoryID, Name: "Draft"}))
	require.NoError(t, store.UpsertCategory(ctx, models.Category{ID: categoryID, Name: "Lighting"}))
	categories, err := store.ListCategories(ctx)
	require.NoError(t, err)
	var found bool
	for _, c := range categories {
		if c.ID == categoryID {
			found = true
			assert.Equal(t, "Lighting", c.Name)
		}
	}
	assert.True(t, found)

	product := models.Product{
		ID:           productID,
		Title:        "Desk lamp",
		Price:        decimal.RequireFromString("19.99"),
		Availability: true,
		CategoryID:   categoryID,
	}
	require.NoError(t, store.UpsertProduct(ctx, product))
	product.Price = decimal.RequireFromString("17.49")
	require.NoError(t, store.UpsertProduct(ctx, product))

	products, err := store.ListProductsByCategory(ctx, categoryID)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "17.49", products[0].Price.String())

	got, err := store.FindProduct(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, "Desk lamp", got.Title)

	_, err = store.FindProduct(ctx, "missing-"+uuid.NewString())
	assert.ErrorIs(t, err, storage.ErrNotFound)

	empty, err := store.ListProductsByCategory(ctx, "cat-"+uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, empty)
}
