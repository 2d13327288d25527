package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hongminglow/storefront-be/internal/models"
)

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	cur, err := s.db.Collection(categoriesCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	var docs []categoryDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	categories := make([]models.Category, 0, len(docs))
	for _, doc := range docs {
		categories = append(categories, models.Category{ID: doc.ID, Name: doc.Name, Description: doc.Description})
	}
	return categories, nil
}

func (s *Store) ListProductsByCategory(ctx context.Context, categoryID string) ([]models.Product, error) {
	cur, err := s.db.Collection(productsCollection).Find(ctx, bson.M{"category": categoryID})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	products := make([]models.Product, 0, len(docs))
	for _, doc := range docs {
		p, err := doc.model()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func (s *Store) FindProduct(ctx context.Context, productID string) (models.Product, error) {
	var doc productDoc
	if err := s.db.Collection(productsCollection).FindOne(ctx, bson.M{"_id": productID}).Decode(&doc); err != nil {
		return models.Product{}, notFound(err)
	}
	return doc.model()
}

func (s *Store) UpsertCategory(ctx context.Context, c models.Category) error {
	doc := categoryDoc{ID: c.ID, Name: c.Name, Description: c.Description}
	_, err := s.db.Collection(categoriesCollection).ReplaceOne(ctx, bson.M{"_id": c.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert category %s: %w", c.ID, err)
	}
	return nil
}

func (s *Store) UpsertProduct(ctx context.Context, p models.Product) error {
	price, err := toDecimal128(p.Price)
	if err != nil {
		return err
	}
	doc := productDoc{
		ID:           p.ID,
		Title:        p.Title,
		Price:        price,
		Description:  p.Description,
		Availability: p.Availability,
		Image:        p.Image,
		CategoryID:   p.CategoryID,
	}
	_, err = s.db.Collection(productsCollection).ReplaceOne(ctx, bson.M{"_id": p.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert product %s: %w", p.ID, err)
	}
	return nil
}
