// Package memory is an in-process storage backend. It backs the "memory"
// storage driver and the service and handler tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hongminglow/storefront-be/internal/models"
	"github.com/hongminglow/storefront-be/internal/storage"
)

var _ storage.Store = (*Store)(nil)

type blacklistEntry struct {
	expiresAt time.Time
}

// Store keeps every collection in maps guarded by a single mutex.
type Store struct {
	mu sync.RWMutex

	users      map[string]models.User // keyed by username
	blacklist  map[string]blacklistEntry
	carts      map[string]models.Cart // keyed by cart id
	cartByUser map[string]string
	orders     []models.Order
	categories []models.Category
	products   []models.Product
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:      make(map[string]models.User),
		blacklist:  make(map[string]blacklistEntry),
		carts:      make(map[string]models.Cart),
		cartByUser: make(map[string]string),
	}
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() {}

func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Username]; ok {
		return models.User{}, storage.ErrAlreadyExists
	}
	s.users[user.Username] = user
	return user, nil
}

func (s *Store) FindByUsername(_ context.Context, username string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[username]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

func (s *Store) Revoke(_ context.Context, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blacklist[token]; !ok {
		s.blacklist[token] = blacklistEntry{expiresAt: expiresAt}
	}
	return nil
}

func (s *Store) IsRevoked(_ context.Context, token string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blacklist[token]
	return ok, nil
}

func (s *Store) PruneExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for token, entry := range s.blacklist {
		if entry.expiresAt.Before(now) {
			delete(s.blacklist, token)
			n++
		}
	}
	return n, nil
}

func (s *Store) FindCartByUser(_ context.Context, userID string) (models.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.cartByUser[userID]
	if !ok {
		return models.Cart{}, storage.ErrNotFound
	}
	return s.carts[id].Clone(), nil
}

func (s *Store) FindCart(_ context.Context, cartID string) (models.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cart, ok := s.carts[cartID]
	if !ok {
		return models.Cart{}, storage.ErrNotFound
	}
	return cart.Clone(), nil
}

func (s *Store) CreateCart(_ context.Context, cart models.Cart) (models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cartByUser[cart.UserID]; ok {
		return models.Cart{}, storage.ErrAlreadyExists
	}
	if _, ok := s.carts[cart.ID]; ok {
		return models.Cart{}, storage.ErrAlreadyExists
	}
	cart = cart.Clone()
	cart.Version = 1
	s.carts[cart.ID] = cart
	s.cartByUser[cart.UserID] = cart.ID
	return cart.Clone(), nil
}

func (s *Store) UpdateCart(_ context.Context, cart models.Cart) (models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.carts[cart.ID]
	if !ok {
		return models.Cart{}, storage.ErrNotFound
	}
	if stored.Version != cart.Version {
		return models.Cart{}, storage.ErrVersionConflict
	}
	cart = cart.Clone()
	cart.UserID = stored.UserID
	cart.Version = stored.Version + 1
	s.carts[cart.ID] = cart
	return cart.Clone(), nil
}

func (s *Store) DeleteCart(_ context.Context, cartID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.carts[cartID]
	if !ok {
		return nil
	}
	delete(s.carts, cartID)
	if s.cartByUser[cart.UserID] == cartID {
		delete(s.cartByUser, cart.UserID)
	}
	return nil
}

func (s *Store) ListConvertingCarts(_ context.Context, before time.Time) ([]models.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Cart
	for _, cart := range s.carts {
		if cart.Status == models.CartConverting && cart.UpdatedAt.Before(before) {
			out = append(out, cart.Clone())
		}
	}
	return out, nil
}

func (s *Store) CreateOrder(_ context.Context, order models.Order) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.orders {
		if existing.ID == order.ID {
			return models.Order{}, storage.ErrAlreadyExists
		}
	}
	order.Items = append([]models.CartItem(nil), order.Items...)
	s.orders = append(s.orders, order)
	return order, nil
}

func (s *Store) FindOrder(_ context.Context, orderID string) (models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, order := range s.orders {
		if order.ID == orderID {
			return order, nil
		}
	}
	return models.Order{}, storage.ErrNotFound
}

func (s *Store) ListOrdersByUser(_ context.Context, userID string) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Order{}
	for _, order := range s.orders {
		if order.UserID == userID {
			out = append(out, order)
		}
	}
	return out, nil
}

func (s *Store) ListCategories(context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Category{}, s.categories...), nil
}

func (s *Store) ListProductsByCategory(_ context.Context, categoryID string) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Product{}
	for _, p := range s.products {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) FindProduct(_ context.Context, productID string) (models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == productID {
			return p, nil
		}
	}
	return models.Product{}, storage.ErrNotFound
}

func (s *Store) UpsertCategory(_ context.Context, category models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.categories {
		if c.ID == category.ID {
			s.categories[i] = category
			return nil
		}
	}
	s.categories = append(s.categories, category)
	return nil
}

func (s *Store) UpsertProduct(_ context.Context, product models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.products {
		if p.ID == product.ID {
			s.products[i] = product
			return nil
		}
	}
	s.products = append(s.products, product)
	return nil
}
