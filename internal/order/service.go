// Package order converts carts into orders and serves order history.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hongminglow/storefront-be/internal/models"
	"github.com/hongminglow/storefront-be/internal/storage"
)

var (
	// ErrCartNotFound is returned when the cart is missing or owned by someone else.
	ErrCartNotFound = fmt.Errorf("cart: %w", storage.ErrNotFound)
	// ErrOrderNotFound is returned when the order is missing or owned by someone else.
	ErrOrderNotFound = fmt.Errorf("order: %w", storage.ErrNotFound)
)

// Store is the persistence the order service needs.
type Store interface {
	storage.CartStore
	storage.OrderStore
}

const defaultMaxAttempts = 5

// Service places orders. Conversion runs as a saga: the cart is marked
// converting with a pending order id, the order is written under that id,
// then the cart is deleted. Reconcile repairs carts left mid-way.
type Service struct {
	store       Store
	log         logrus.FieldLogger
	maxAttempts int
	now         func() time.Time
}

// NewService wires an order service. maxAttempts bounds how often locking
// the cart is retried against concurrent cart edits.
func NewService(store Store, log logrus.FieldLogger, maxAttempts int) *Service {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &Service{store: store, log: log, maxAttempts: maxAttempts, now: time.Now}
}

// PlaceOrder converts cartID, owned by userID, into an order.
func (s *Service) PlaceOrder(ctx context.Context, userID, cartID string) (models.Order, error) {
	cart, err := s.lock(ctx, userID, cartID)
	if err != nil {
		return models.Order{}, err
	}

	order, err := s.createOrder(ctx, cart)
	if err != nil {
		return models.Order{}, err
	}
	if err := s.store.DeleteCart(ctx, cart.ID); err != nil {
		// The order exists; Reconcile will remove the cart.
		s.log.WithError(err).WithFields(logrus.Fields{"cart_id": cart.ID, "order_id": order.ID}).
			Error("delete converted cart")
		return models.Order{}, fmt.Errorf("delete cart: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id":  userID,
		"cart_id":  cart.ID,
		"order_id": order.ID,
		"total":    order.Total.String(),
	}).Info("order placed")
	return order, nil
}

// lock moves the cart to converting, rereading it after every lost version
// race. A cart that is already converting is returned as is so an
// interrupted checkout resumes with its pending order id.
func (s *Service) lock(ctx context.Context, userID, cartID string) (models.Cart, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		cart, err := s.store.FindCart(ctx, cartID)
		if errors.Is(err, storage.ErrNotFound) || (err == nil && cart.UserID != userID) {
			return models.Cart{}, ErrCartNotFound
		}
		if err != nil {
			return models.Cart{}, fmt.Errorf("load cart: %w", err)
		}
		if cart.Status == models.CartConverting {
			return cart, nil
		}

		next := cart.Clone()
		next.Status = models.CartConverting
		next.PendingOrderID = uuid.NewString()
		next.UpdatedAt = s.now()

		updated, err := s.store.UpdateCart(ctx, next)
		switch {
		case errors.Is(err, storage.ErrVersionConflict):
			s.log.WithFields(logrus.Fields{"cart_id": cartID, "attempt": attempt}).Debug("cart changed during checkout, retrying")
			continue
		case errors.Is(err, storage.ErrNotFound):
			return models.Cart{}, ErrCartNotFound
		case err != nil:
			return models.Cart{}, fmt.Errorf("lock cart: %w", err)
		}
		return updated, nil
	}
	s.log.WithFields(logrus.Fields{"cart_id": cartID, "attempts": s.maxAttempts}).Warn("checkout gave up on contended cart")
	return models.Cart{}, fmt.Errorf("lock cart after %d attempts: %w", s.maxAttempts, storage.ErrVersionConflict)
}

// createOrder is idempotent on the pending order id.
func (s *Service) createOrder(ctx context.Context, cart models.Cart) (models.Order, error) {
	order := models.NewOrderFromCart(cart.PendingOrderID, cart, s.now())
	created, err := s.store.CreateOrder(ctx, order)
	if errors.Is(err, storage.ErrAlreadyExists) {
		existing, ferr := s.store.FindOrder(ctx, order.ID)
		if ferr != nil {
			return models.Order{}, fmt.Errorf("load existing order: %w", ferr)
		}
		return existing, nil
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("create order: %w", err)
	}
	return created, nil
}

// ListOrders returns the user's orders in the order they were placed.
func (s *Service) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.store.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// GetOrder returns one of the user's orders.
func (s *Service) GetOrder(ctx context.Context, userID, orderID string) (models.Order, error) {
	order, err := s.store.FindOrder(ctx, orderID)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && order.UserID != userID) {
		return models.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("load order: %w", err)
	}
	return order, nil
}

// ReconcileResult counts what a sweep did.
type ReconcileResult struct {
	Completed int
	Reverted  int
}

// Reconcile inspects carts stuck in converting since before cutoff. A cart
// whose pending order exists is deleted; any other is returned to active.
func (s *Service) Reconcile(ctx context.Context, cutoff time.Time) (ReconcileResult, error) {
	var res ReconcileResult
	carts, err := s.store.ListConvertingCarts(ctx, cutoff)
	if err != nil {
		return res, fmt.Errorf("list converting carts: %w", err)
	}

	var errs []error
	for _, cart := range carts {
		log := s.log.WithFields(logrus.Fields{"cart_id": cart.ID, "order_id": cart.PendingOrderID})

		_, err := s.store.FindOrder(ctx, cart.PendingOrderID)
		switch {
		case err == nil:
			if err := s.store.DeleteCart(ctx, cart.ID); err != nil {
				errs = append(errs, fmt.Errorf("delete cart %s: %w", cart.ID, err))
				continue
			}
			res.Completed++
			log.Info("reconciled converted cart")
		case errors.Is(err, storage.ErrNotFound):
			next := cart.Clone()
			next.Status = models.CartActive
			next.PendingOrderID = ""
			next.UpdatedAt = s.now()
			if _, err := s.store.UpdateCart(ctx, next); err != nil {
				if errors.Is(err, storage.ErrVersionConflict) || errors.Is(err, storage.ErrNotFound) {
					// A checkout resumed concurrently; leave it to finish.
					continue
				}
				errs = append(errs, fmt.Errorf("revert cart %s: %w", cart.ID, err))
				continue
			}
			res.Reverted++
			log.Warn("reverted stale converting cart")
		default:
			errs = append(errs, fmt.Errorf("find order %s: %w", cart.PendingOrderID, err))
		}
	}
	return res, errors.Join(errs...)
}
