package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hongminglow/storefront-be/internal/models"
	"github.com/hongminglow/storefront-be/internal/storage"
)

func (s *Store) FindCartByUser(ctx context.Context, userID string) (models.Cart, error) {
	return s.findCart(ctx, bson.M{"userId": userID})
}

func (s *Store) FindCart(ctx context.Context, cartID string) (models.Cart, error) {
	return s.findCart(ctx, bson.M{"_id": cartID})
}

func (s *Store) findCart(ctx context.Context, filter bson.M) (models.Cart, error) {
	var doc cartDoc
	if err := s.db.Collection(cartsCollection).FindOne(ctx, filter).Decode(&doc); err != nil {
		return models.Cart{}, notFound(err)
	}
	return doc.model()
}

func (s *Store) CreateCart(ctx context.Context, cart models.Cart) (models.Cart, error) {
	cart.Version = 1
	doc, err := toCartDoc(cart)
	if err != nil {
		return models.Cart{}, err
	}
	if _, err := s.db.Collection(cartsCollection).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.Cart{}, storage.ErrAlreadyExists
		}
		return models.Cart{}, fmt.Errorf("insert cart: %w", err)
	}
	return cart, nil
}

// UpdateCart matches on {_id, version} so a stale writer matches nothing.
func (s *Store) UpdateCart(ctx context.Context, cart models.Cart) (models.Cart, error) {
	doc, err := toCartDoc(cart)
	if err != nil {
		return models.Cart{}, err
	}
	filter := bson.M{"_id": cart.ID, "version": cart.Version}
	update := bson.M{
		"$set": bson.M{
			"items":          doc.Items,
			"total":          doc.Total,
			"status":         doc.Status,
			"pendingOrderId": doc.PendingOrderID,
			"updatedAt":      doc.UpdatedAt,
		},
		"$inc": bson.M{"version": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated cartDoc
	err = s.db.Collection(cartsCollection).FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == nil {
		return updated.model()
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Cart{}, fmt.Errorf("update cart: %w", err)
	}

	n, err := s.db.Collection(cartsCollection).CountDocuments(ctx, bson.M{"_id": cart.ID}, options.Count().SetLimit(1))
	if err != nil {
		return models.Cart{}, fmt.Errorf("check cart: %w", err)
	}
	if n > 0 {
		return models.Cart{}, storage.ErrVersionConflict
	}
	return models.Cart{}, storage.ErrNotFound
}

func (s *Store) DeleteCart(ctx context.Context, cartID string) error {
	if _, err := s.db.Collection(cartsCollection).DeleteOne(ctx, bson.M{"_id": cartID}); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

func (s *Store) ListConvertingCarts(ctx context.Context, before time.Time) ([]models.Cart, error) {
	filter := bson.M{"status": string(models.CartConverting), "updatedAt": bson.M{"$lt": before}}
	cur, err := s.db.Collection(cartsCollection).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "updatedAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list converting carts: %w", err)
	}
	var docs []cartDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode converting carts: %w", err)
	}
	carts := make([]models.Cart, 0, len(docs))
	for _, doc := range docs {
		cart, err := doc.model()
		if err != nil {
			return nil, err
		}
		carts = append(carts, cart)
	}
	return carts, nil
}
