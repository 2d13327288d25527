package order

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/storefront-be/internal/models"
	"github.com/hongminglow/storefront-be/internal/storage"
	"github.com/hongminglow/storefront-be/internal/storage/memory"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func seedCart(t *testing.T, store storage.CartStore, id, userID string, items ...models.CartItem) models.Cart {
	t.Helper()
	c := models.NewCart(id, userID, time.Now())
	for _, it := range items {
		c.AddItem(it)
	}
	created, err := store.CreateCart(context.Background(), c)
	require.NoError(t, err)
	return created
}

func line(productID string, qty int, price int64) models.CartItem {
	return models.CartItem{ProductID: productID, Quantity: qty, Price: decimal.NewFromInt(price)}
}

func TestPlaceOrderSnapshotsAndDeletesCart(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewService(store, quietLogger(), 5)
	cart := seedCart(t, store, "c1", "u1", line("p1", 2, 10))

	o, err := svc.PlaceOrder(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, "u1", o.UserID)
	assert.Equal(t, models.OrderStatusActive, o.Status)
	assert.Equal(t, "20", o.Total.String())
	require.Len(t, o.Items, 1)
	assert.Equal(t, cart.Items[0].ProductID, o.Items[0].ProductID)
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.Equal(t, "10", o.Items[0].Price.String())
	assert.Equal(t, "20", o.Items[0].Total.String())
	assert.WithinDuration(t, time.Now(), o.Date, time.Minute)

	_, err = store.FindCartByUser(ctx, "u1")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	stored, err := svc.GetOrder(ctx, "u1", o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, stored.ID)
}

func TestPlaceOrderMissingCart(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewService(store, quietLogger(), 5)

	_, err := svc.PlaceOrder(ctx, "u1", "nope")
	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	orders, err := svc.ListOrders(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestPlaceOrderForeignCart(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewService(store, quietLogger(), 5)
	seedCart(t, store, "c1", "owner", line("p1", 1, 1))

	_, err := svc.PlaceOrder(ctx, "intruder", "c1")
	assert.ErrorIs(t, err, ErrCartNotFound)

	_, err = store.FindCart(ctx, "c1")
	assert.NoError(t, err, "cart must survive")
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	store := memory.New()
	svc := NewService(store, quietLogger(), 5)
	seedCart(t, store, "c1", "u1")

	o, err := svc.PlaceOrder(context.Background(), "u1", "c1")
	require.NoError(t, err)
	assert.Empty(t, o.Items)
	assert.True(t, o.Total.IsZero())
}

// flakyDeleteStore fails the first DeleteCart call.
type flakyDeleteStore struct {
	*memory.Store
	failed bool
}

func (s *flakyDeleteStore) DeleteCart(ctx context.Context, cartID string) error {
	if !s.failed {
		s.failed = true
		return errors.New("connection reset")
	}
	return s.Store.DeleteCart(ctx, cartID)
}

func TestPlaceOrderResumesAfterPartialFailure(t *testing.T) {
	ctx := context.Background()
	store := &flakyDeleteStore{Store: memory.New()}
	svc := NewService(store, quietLogger(), 5)
	seedCart(t, store, "c1", "u1", line("p1", 1, 7))

	_, err := svc.PlaceOrder(ctx, "u1", "c1")
	require.Error(t, err)

	stuck, err := store.FindCart(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.CartConverting, stuck.Status)
	require.NotEmpty(t, stuck.PendingOrderID)

	o, err := svc.PlaceOrder(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, stuck.PendingOrderID, o.ID)

	orders, err := svc.ListOrders(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, orders, 1, "retry must not duplicate the order")
}

// racingStore applies a concurrent cart edit just before the first attempt
// to mark a cart converting, so that attempt loses the version race.
type racingStore struct {
	*memory.Store
	edits int
	raced bool
}

func (s *racingStore) UpdateCart(ctx context.Context, c models.Cart) (models.Cart, error) {
	if c.Status == models.CartConverting && s.edits > 0 {
		s.edits--
		s.raced = true
		stored, err := s.Store.FindCart(ctx, c.ID)
		if err != nil {
			return models.Cart{}, err
		}
		stored.AddItem(line("p2", 1, 5))
		if _, err := s.Store.UpdateCart(ctx, stored); err != nil {
			return models.Cart{}, err
		}
	}
	return s.Store.UpdateCart(ctx, c)
}

func TestPlaceOrderRetriesAfterConcurrentEdit(t *testing.T) {
	ctx := context.Background()
	store := &racingStore{Store: memory.New(), edits: 1}
	svc := NewService(store, quietLogger(), 5)
	seedCart(t, store, "c1", "u1", line("p1", 2, 10))

	o, err := svc.PlaceOrder(ctx, "u1", "c1")
	require.NoError(t, err)
	require.True(t, store.raced)
	require.Len(t, o.Items, 2, "order must include the edit that won the race")
	assert.Equal(t, "25", o.Total.String())

	_, err = store.FindCart(ctx, "c1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPlaceOrderGivesUpOnContendedCart(t *testing.T) {
	ctx := context.Background()
	store := &racingStore{Store: memory.New(), edits: 3}
	svc := NewService(store, quietLogger(), 3)
	seedCart(t, store, "c1", "u1", line("p1", 1, 1))

	_, err := svc.PlaceOrder(ctx, "u1", "c1")
	assert.ErrorIs(t, err, storage.ErrVersionConflict)
	assert.Zero(t, store.edits)

	c, err := store.FindCart(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.CartActive, c.Status)
	assert.Empty(t, c.PendingOrderID)

	orders, err := svc.ListOrders(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestListOrdersInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewService(store, quietLogger(), 5)

	var ids []string
	for _, cartID := range []string{"c1", "c2", "c3"} {
		seedCart(t, store, cartID, "u1", line("p1", 1, 1))
		o, err := svc.PlaceOrder(ctx, "u1", cartID)
		require.NoError(t, err)
		ids = append(ids, o.ID)
	}

	orders, err := svc.ListOrders(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, orders, 3)
	for i, o := range orders {
		assert.Equal(t, ids[i], o.ID)
	}
}

func TestGetOrderOwnership(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewService(store, quietLogger(), 5)
	seedCart(t, store, "c1", "u1", line("p1", 1, 1))
	o, err := svc.PlaceOrder(ctx, "u1", "c1")
	require.NoError(t, err)

	_, err = svc.GetOrder(ctx, "u2", o.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	_, err = svc.GetOrder(ctx, "u1", "missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func markConverting(t *testing.T, store *memory.Store, c models.Cart, pending string) {
	t.Helper()
	c.Status = models.CartConverting
	c.PendingOrderID = pending
	c.UpdatedAt = time.Now().Add(-time.Hour)
	_, err := store.UpdateCart(context.Background(), c)
	require.NoError(t, err)
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewService(store, quietLogger(), 5)

	finished := seedCart(t, store, "c1", "u1", line("p1", 1, 3))
	markConverting(t, store, finished, "o1")
	_, err := store.CreateOrder(ctx, models.NewOrderFromCart("o1", finished, time.Now()))
	require.NoError(t, err)

	abandoned := seedCart(t, store, "c2", "u2", line("p1", 1, 3))
	markConverting(t, store, abandoned, "o2")

	res, err := svc.Reconcile(ctx, time.Now().Add(-10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, ReconcileResult{Completed: 1, Reverted: 1}, res)

	_, err = store.FindCart(ctx, "c1")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	reverted, err := store.FindCart(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, models.CartActive, reverted.Status)
	assert.Empty(t, reverted.PendingOrderID)
	assert.Len(t, reverted.Items, 1)
}

func TestReconcileIgnoresRecentCarts(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewService(store, quietLogger(), 5)

	c := seedCart(t, store, "c1", "u1")
	c.Status = models.CartConverting
	c.PendingOrderID = "o1"
	_, err := store.UpdateCart(ctx, c)
	require.NoError(t, err)

	res, err := svc.Reconcile(ctx, time.Now().Add(-10*time.Minute))
	require.NoError(t, err)
	assert.Zero(t, res)

	still, err := store.FindCart(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.CartConverting, still.Status)
}
