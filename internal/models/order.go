package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatusActive is stamped on every freshly placed order.
const OrderStatusActive = "Active"

// Order is an immutable snapshot of a cart at checkout time.
type Order struct {
	ID     string          `json:"id"`
	UserID string          `json:"userId"`
	Items  []CartItem      `json:"items"`
	Total  decimal.Decimal `json:"total"`
	Date   time.Time       `json:"date"`
	Status string          `json:"status"`
}

// NewOrderFromCart copies items and total verbatim from cart.
func NewOrderFromCart(id string, cart Cart, now time.Time) Order {
	snapshot := cart.Clone()
	return Order{
		ID:     id,
		UserID: cart.UserID,
		Items:  snapshot.Items,
		Total:  cart.Total,
		Date:   now,
		Status: OrderStatusActive,
	}
}
