package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hongminglow/storefront-be/internal/models"
	"github.com/hongminglow/storefront-be/internal/storage"
)

func (s *Store) CreateOrder(ctx context.Context, order models.Order) (models.Order, error) {
	items, err := toItemDocs(order.Items)
	if err != nil {
		return models.Order{}, err
	}
	total, err := toDecimal128(order.Total)
	if err != nil {
		return models.Order{}, err
	}
	doc := orderDoc{ID: order.ID, UserID: order.UserID, Items: items, Total: total, Date: order.Date, Status: order.Status}
	if _, err := s.db.Collection(ordersCollection).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.Order{}, storage.ErrAlreadyExists
		}
		return models.Order{}, fmt.Errorf("insert order: %w", err)
	}
	return order, nil
}

func (s *Store) FindOrder(ctx context.Context, orderID string) (models.Order, error) {
	var doc orderDoc
	if err := s.db.Collection(ordersCollection).FindOne(ctx, bson.M{"_id": orderID}).Decode(&doc); err != nil {
		return models.Order{}, notFound(err)
	}
	return doc.model()
}

func (s *Store) ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.db.Collection(ordersCollection).Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	orders := make([]models.Order, 0, len(docs))
	for _, doc := range docs {
		order, err := doc.model()
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}
