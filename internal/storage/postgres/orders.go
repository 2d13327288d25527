package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/hongminglow/storefront-be/internal/models"
	"github.com/hongminglow/storefront-be/internal/storage"
)

const orderColumns = `id, user_id, items, total::text, placed_at, status`

// CreateOrder inserts an order; a reused id yields ErrAlreadyExists.
func (s *Store) CreateOrder(ctx context.Context, order models.Order) (models.Order, error) {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return models.Order{}, fmt.Errorf("encode order items: %w", err)
	}
	query := `
		INSERT INTO orders (id, user_id, items, total, placed_at, status)
		VALUES ($1, $2, $3, $4::text::numeric, $5, $6)
		RETURNING ` + orderColumns + `;`
	row := s.pool.QueryRow(ctx, query, order.ID, order.UserID, items, order.Total.String(), order.Date, order.Status)
	created, err := scanOrder(row)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Order{}, storage.ErrAlreadyExists
		}
		return models.Order{}, err
	}
	return created, nil
}

// FindOrder fetches a single order.
func (s *Store) FindOrder(ctx context.Context, orderID string) (models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1;`
	return scanOrder(s.pool.QueryRow(ctx, query, orderID))
}

// ListOrdersByUser returns the user's orders in insertion order.
func (s *Store) ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY seq;`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func scanOrder(row pgx.Row) (models.Order, error) {
	var (
		order models.Order
		items []byte
		total string
	)
	if err := row.Scan(&order.ID, &order.UserID, &items, &total, &order.Date, &order.Status); err != nil {
		return models.Order{}, notFound(err)
	}
	if err := json.Unmarshal(items, &order.Items); err != nil {
		return models.Order{}, fmt.Errorf("decode order items: %w", err)
	}
	amount, err := decimal.NewFromString(total)
	if err != nil {
		return models.Order{}, fmt.Errorf("decode order total: %w", err)
	}
	order.Total = amount
	return order, nil
}
