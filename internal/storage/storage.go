package storage

import (
	"context"
	"errors"
	"time"

	"github.com/hongminglow/storefront-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrVersionConflict indicates a conditional update lost against a
// concurrent writer.
var ErrVersionConflict = errors.New("record version conflict")

// UserStore captures persistence operations needed by the auth handlers.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
}

// BlacklistStore is the persisted set of revoked tokens.
type BlacklistStore interface {
	// Revoke inserts token. Inserting a token that is already present is a
	// no-op, including when two callers race on the same token.
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
	// PruneExpired deletes entries whose token expired before now.
	PruneExpired(ctx context.Context, now time.Time) (int64, error)
}

// CartStore persists carts. At most one cart exists per user.
type CartStore interface {
	FindCartByUser(ctx context.Context, userID string) (models.Cart, error)
	FindCart(ctx context.Context, cartID string) (models.Cart, error)
	// CreateCart returns ErrAlreadyExists when the user already owns a cart.
	CreateCart(ctx context.Context, cart models.Cart) (models.Cart, error)
	// UpdateCart writes cart only if the stored version equals cart.Version
	// and returns the cart with its new version. A stale version yields
	// ErrVersionConflict; a missing cart yields ErrNotFound.
	UpdateCart(ctx context.Context, cart models.Cart) (models.Cart, error)
	// DeleteCart is idempotent.
	DeleteCart(ctx context.Context, cartID string) error
	// ListConvertingCarts returns carts in converting status last touched
	// before the given time.
	ListConvertingCarts(ctx context.Context, before time.Time) ([]models.Cart, error)
}

// OrderStore persists immutable orders.
type OrderStore interface {
	// CreateOrder returns ErrAlreadyExists when the order id is taken.
	CreateOrder(ctx context.Context, order models.Order) (models.Order, error)
	FindOrder(ctx context.Context, orderID string) (models.Order, error)
	// ListOrdersByUser returns orders in insertion order.
	ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error)
}

// CatalogStore serves read-only reference data plus the upserts used by seeding.
type CatalogStore interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListProductsByCategory(ctx context.Context, categoryID string) ([]models.Product, error)
	FindProduct(ctx context.Context, productID string) (models.Product, error)
	UpsertCategory(ctx context.Context, category models.Category) error
	UpsertProduct(ctx context.Context, product models.Product) error
}

// Store bundles every collection a backend must serve.
type Store interface {
	UserStore
	BlacklistStore
	CartStore
	OrderStore
	CatalogStore
	Ping(ctx context.Context) error
	Close()
}
