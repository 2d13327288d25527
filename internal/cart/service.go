// Package cart owns the per-user shopping cart and its mutation rules.
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/hongminglow/storefront-be/internal/models"
	"github.com/hongminglow/storefront-be/internal/storage"
)

var (
	// ErrCartNotFound is returned when the user has no cart.
	ErrCartNotFound = fmt.Errorf("cart: %w", storage.ErrNotFound)
	// ErrItemNotFound is returned when the product is not in the cart.
	ErrItemNotFound = fmt.Errorf("cart item: %w", storage.ErrNotFound)
	// ErrValidation flags malformed input such as a negative quantity.
	ErrValidation = errors.New("invalid cart input")
	// ErrCartLocked is returned while the cart is being converted to an order.
	ErrCartLocked = errors.New("cart is being checked out")
)

const defaultMaxAttempts = 5

// ProductLookup resolves catalog entries used to fill display fields.
type ProductLookup interface {
	FindProduct(ctx context.Context, productID string) (models.Product, error)
}

// AddItemInput is one line submitted by the client.
type AddItemInput struct {
	ProductID string
	Quantity  int
	Price     decimal.Decimal
	Title     string
	Image     string
}

// Service applies cart mutations with optimistic concurrency.
type Service struct {
	carts       storage.CartStore
	products    ProductLookup
	log         logrus.FieldLogger
	maxAttempts int
	now         func() time.Time
}

// NewService wires a cart service. products may be nil, in which case
// display fields are taken from the request as-is.
func NewService(carts storage.CartStore, products ProductLookup, log logrus.FieldLogger, maxAttempts int) *Service {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &Service{
		carts:       carts,
		products:    products,
		log:         log,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// GetCart returns the user's cart, or nil when none exists.
func (s *Service) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.carts.FindCartByUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return &cart, nil
}

// AddItem merges in into the user's cart, creating the cart on first use.
func (s *Service) AddItem(ctx context.Context, userID string, in AddItemInput) (models.Cart, error) {
	if in.ProductID == "" {
		return models.Cart{}, fmt.Errorf("%w: productId is required", ErrValidation)
	}
	if in.Quantity < 0 {
		return models.Cart{}, fmt.Errorf("%w: quantity must not be negative", ErrValidation)
	}
	if in.Price.IsNegative() {
		return models.Cart{}, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	item := s.enrich(ctx, models.CartItem{
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		Price:     in.Price,
		Title:     in.Title,
		Image:     in.Image,
	})

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		current, err := s.carts.FindCartByUser(ctx, userID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			cart := models.NewCart(uuid.NewString(), userID, s.now())
			cart.AddItem(item)
			created, err := s.carts.CreateCart(ctx, cart)
			if errors.Is(err, storage.ErrAlreadyExists) {
				// Another request created the cart first; merge into it.
				continue
			}
			if err != nil {
				return models.Cart{}, fmt.Errorf("create cart: %w", err)
			}
			s.log.WithFields(logrus.Fields{"user_id": userID, "cart_id": created.ID}).Info("cart created")
			return created, nil
		case err != nil:
			return models.Cart{}, fmt.Errorf("load cart: %w", err)
		}

		updated, err := s.write(ctx, current, func(c *models.Cart) error {
			c.AddItem(item)
			return nil
		})
		if errors.Is(err, storage.ErrVersionConflict) {
			continue
		}
		return updated, err
	}
	return models.Cart{}, s.exhausted(userID)
}

// UpdateItem replaces the quantity of an existing line.
func (s *Service) UpdateItem(ctx context.Context, userID, productID string, quantity int) (models.Cart, error) {
	if quantity < 0 {
		return models.Cart{}, fmt.Errorf("%w: quantity must not be negative", ErrValidation)
	}
	return s.mutate(ctx, userID, func(c *models.Cart) error {
		if !c.SetQuantity(productID, quantity) {
			return ErrItemNotFound
		}
		return nil
	})
}

// RemoveItem drops the product from the cart. Removing a product that is
// not in the cart succeeds and returns the cart unchanged.
func (s *Service) RemoveItem(ctx context.Context, userID, productID string) (models.Cart, error) {
	return s.mutate(ctx, userID, func(c *models.Cart) error {
		if !c.RemoveItem(productID) {
			return errUnchanged
		}
		return nil
	})
}

var errUnchanged = errors.New("cart unchanged")

// mutate runs a read-modify-write cycle against the stored version, retrying
// on conflict until maxAttempts is reached.
func (s *Service) mutate(ctx context.Context, userID string, apply func(*models.Cart) error) (models.Cart, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		current, err := s.carts.FindCartByUser(ctx, userID)
		if errors.Is(err, storage.ErrNotFound) {
			return models.Cart{}, ErrCartNotFound
		}
		if err != nil {
			return models.Cart{}, fmt.Errorf("load cart: %w", err)
		}

		updated, err := s.write(ctx, current, apply)
		if errors.Is(err, storage.ErrVersionConflict) {
			s.log.WithFields(logrus.Fields{"user_id": userID, "attempt": attempt}).Debug("cart version conflict, retrying")
			continue
		}
		return updated, err
	}
	return models.Cart{}, s.exhausted(userID)
}

func (s *Service) write(ctx context.Context, current models.Cart, apply func(*models.Cart) error) (models.Cart, error) {
	if current.Status == models.CartConverting {
		return models.Cart{}, ErrCartLocked
	}
	next := current.Clone()
	if err := apply(&next); err != nil {
		if errors.Is(err, errUnchanged) {
			return current, nil
		}
		return models.Cart{}, err
	}
	next.UpdatedAt = s.now()
	updated, err := s.carts.UpdateCart(ctx, next)
	switch {
	case errors.Is(err, storage.ErrVersionConflict):
		return models.Cart{}, err
	case errors.Is(err, storage.ErrNotFound):
		// Checked out or deleted between read and write.
		return models.Cart{}, ErrCartNotFound
	case err != nil:
		return models.Cart{}, fmt.Errorf("update cart: %w", err)
	}
	return updated, nil
}

func (s *Service) exhausted(userID string) error {
	s.log.WithField("user_id", userID).Warn("cart update gave up after repeated version conflicts")
	return fmt.Errorf("cart update: %w", storage.ErrVersionConflict)
}

// enrich fills blank title and image from the catalog. Lookup failures are
// ignored: carts may hold products the catalog does not know.
func (s *Service) enrich(ctx context.Context, item models.CartItem) models.CartItem {
	if s.products == nil || (item.Title != "" && item.Image != "") {
		return item
	}
	product, err := s.products.FindProduct(ctx, item.ProductID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.WithError(err).WithField("product_id", item.ProductID).Warn("catalog lookup failed")
		}
		return item
	}
	if item.Title == "" {
		item.Title = product.Title
	}
	if item.Image == "" {
		item.Image = product.Image
	}
	return item
}
