package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/hongminglow/storefront-be/internal/models"
	"github.com/hongminglow/storefront-be/internal/storage"
)

const cartColumns = `id, user_id, items, total::text, status, pending_order_id, version, updated_at`

// FindCartByUser fetches the live cart owned by userID.
func (s *Store) FindCartByUser(ctx context.Context, userID string) (models.Cart, error) {
	query := `SELECT ` + cartColumns + ` FROM carts WHERE user_id = $1;`
	return scanCart(s.pool.QueryRow(ctx, query, userID))
}

// FindCart fetches a cart by id.
func (s *Store) FindCart(ctx context.Context, cartID string) (models.Cart, error) {
	query := `SELECT ` + cartColumns + ` FROM carts WHERE id = $1;`
	return scanCart(s.pool.QueryRow(ctx, query, cartID))
}

// CreateCart inserts cart at version 1. The unique index on user_id turns a
// concurrent first add into ErrAlreadyExists.
func (s *Store) CreateCart(ctx context.Context, cart models.Cart) (models.Cart, error) {
	items, err := json.Marshal(cart.Items)
	if err != nil {
		return models.Cart{}, fmt.Errorf("encode cart items: %w", err)
	}
	query := `
		INSERT INTO carts (id, user_id, items, total, status, pending_order_id, version, updated_at)
		VALUES ($1, $2, $3, $4::text::numeric, $5, $6, 1, $7)
		RETURNING ` + cartColumns + `;`
	row := s.pool.QueryRow(ctx, query, cart.ID, cart.UserID, items, cart.Total.String(),
		string(cart.Status), cart.PendingOrderID, cart.UpdatedAt)
	created, err := scanCart(row)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Cart{}, storage.ErrAlreadyExists
		}
		return models.Cart{}, err
	}
	return created, nil
}

// UpdateCart is a compare-and-swap on the version column.
func (s *Store) UpdateCart(ctx context.Context, cart models.Cart) (models.Cart, error) {
	items, err := json.Marshal(cart.Items)
	if err != nil {
		return models.Cart{}, fmt.Errorf("encode cart items: %w", err)
	}
	query := `
		UPDATE carts
		SET items = $3, total = $4::text::numeric, status = $5, pending_order_id = $6,
			version = version + 1, updated_at = $7
		WHERE id = $1 AND version = $2
		RETURNING ` + cartColumns + `;`
	row := s.pool.QueryRow(ctx, query, cart.ID, cart.Version, items, cart.Total.String(),
		string(cart.Status), cart.PendingOrderID, cart.UpdatedAt)
	updated, err := scanCart(row)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return models.Cart{}, err
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM carts WHERE id = $1);`, cart.ID).Scan(&exists); err != nil {
		return models.Cart{}, fmt.Errorf("check cart: %w", err)
	}
	if exists {
		return models.Cart{}, storage.ErrVersionConflict
	}
	return models.Cart{}, storage.ErrNotFound
}

// DeleteCart removes the cart if present.
func (s *Store) DeleteCart(ctx context.Context, cartID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM carts WHERE id = $1;`, cartID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

// ListConvertingCarts returns carts stuck mid-checkout.
func (s *Store) ListConvertingCarts(ctx context.Context, before time.Time) ([]models.Cart, error) {
	query := `SELECT ` + cartColumns + ` FROM carts WHERE status = $1 AND updated_at < $2 ORDER BY updated_at;`
	rows, err := s.pool.Query(ctx, query, string(models.CartConverting), before)
	if err != nil {
		return nil, fmt.Errorf("list converting carts: %w", err)
	}
	defer rows.Close()

	var carts []models.Cart
	for rows.Next() {
		cart, err := scanCart(rows)
		if err != nil {
			return nil, err
		}
		carts = append(carts, cart)
	}
	return carts, rows.Err()
}

func scanCart(row pgx.Row) (models.Cart, error) {
	var (
		cart   models.Cart
		items  []byte
		total  string
		status string
	)
	if err := row.Scan(&cart.ID, &cart.UserID, &items, &total, &status, &cart.PendingOrderID, &cart.Version, &cart.UpdatedAt); err != nil {
		return models.Cart{}, notFound(err)
	}
	if err := json.Unmarshal(items, &cart.Items); err != nil {
		return models.Cart{}, fmt.Errorf("decode cart items: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	amount, err := decimal.NewFromString(total)
	if err != nil {
		return models.Cart{}, fmt.Errorf("decode cart total: %w", err)
	}
	cart.Total = amount
	cart.Status = models.CartStatus(status)
	return cart, nil
}
