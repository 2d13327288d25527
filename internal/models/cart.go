package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartStatus tracks whether a cart accepts mutations.
type CartStatus string

const (
	CartActive     CartStatus = "active"
	CartConverting CartStatus = "converting"
)

// CartItem is one product line. Total is always Quantity * Price.
type CartItem struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Total     decimal.Decimal `json:"total"`
	Title     string          `json:"title,omitempty"`
	Image     string          `json:"image,omitempty"`
}

// Cart is the per-user staging area. Version is bumped by the store on
// every successful conditional update.
type Cart struct {
	ID             string          `json:"id"`
	UserID         string          `json:"userId"`
	Items          []CartItem      `json:"items"`
	Total          decimal.Decimal `json:"total"`
	Status         CartStatus      `json:"status"`
	PendingOrderID string          `json:"-"`
	Version        int64           `json:"-"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// NewCart returns an empty active cart owned by userID.
func NewCart(id, userID string, now time.Time) Cart {
	return Cart{
		ID:        id,
		UserID:    userID,
		Items:     []CartItem{},
		Total:     decimal.Zero,
		Status:    CartActive,
		UpdatedAt: now,
	}
}

// Recalculate rederives every line total and the cart total.
func (c *Cart) Recalculate() {
	total := decimal.Zero
	for i := range c.Items {
		item := &c.Items[i]
		item.Total = item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(item.Total)
	}
	c.Total = total
}

// AddItem merges item into the cart by product id. A repeat add increments
// the quantity and keeps the price already stored on the line.
func (c *Cart) AddItem(item CartItem) {
	if i := c.indexOf(item.ProductID); i >= 0 {
		existing := &c.Items[i]
		existing.Quantity += item.Quantity
		if existing.Title == "" {
			existing.Title = item.Title
		}
		if existing.Image == "" {
			existing.Image = item.Image
		}
	} else {
		c.Items = append(c.Items, item)
	}
	c.Recalculate()
}

// SetQuantity replaces the quantity of an existing line. It reports false
// when the product is not in the cart.
func (c *Cart) SetQuantity(productID string, quantity int) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	c.Items[i].Quantity = quantity
	c.Recalculate()
	return true
}

// RemoveItem drops every line whose product id equals productID and
// reports whether anything was removed.
func (c *Cart) RemoveItem(productID string) bool {
	kept := make([]CartItem, 0, len(c.Items))
	for _, item := range c.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	removed := len(kept) != len(c.Items)
	c.Items = kept
	c.Recalculate()
	return removed
}

// Clone returns a deep copy so snapshots never share the items slice.
func (c Cart) Clone() Cart {
	out := c
	out.Items = make([]CartItem, len(c.Items))
	copy(out.Items, c.Items)
	return out
}

func (c *Cart) indexOf(productID string) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}
