package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/hongminglow/storefront-be/internal/models"
)

const productColumns = `id, title, price::text, description, availability, image, category_id`

// ListCategories returns every category in insertion order.
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, description FROM categories ORDER BY seq;`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ListProductsByCategory returns products referencing categoryID.
func (s *Store) ListProductsByCategory(ctx context.Context, categoryID string) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE category_id = $1 ORDER BY seq;`
	rows, err := s.pool.Query(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// FindProduct fetches a product by id.
func (s *Store) FindProduct(ctx context.Context, productID string) (models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1;`
	return scanProduct(s.pool.QueryRow(ctx, query, productID))
}

// UpsertCategory inserts or replaces a category.
func (s *Store) UpsertCategory(ctx context.Context, c models.Category) error {
	const query = `
		INSERT INTO categories (id, name, description)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description;
	`
	if _, err := s.pool.Exec(ctx, query, c.ID, c.Name, c.Description); err != nil {
		return fmt.Errorf("upsert category %s: %w", c.ID, err)
	}
	return nil
}

// UpsertProduct inserts or replaces a product.
func (s *Store) UpsertProduct(ctx context.Context, p models.Product) error {
	const query = `
		INSERT INTO products (id, title, price, description, availability, image, category_id)
		VALUES ($1, $2, $3::text::numeric, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title, price = EXCLUDED.price, description = EXCLUDED.description,
			availability = EXCLUDED.availability, image = EXCLUDED.image, category_id = EXCLUDED.category_id;
	`
	if _, err := s.pool.Exec(ctx, query, p.ID, p.Title, p.Price.String(), p.Description, p.Availability, p.Image, p.CategoryID); err != nil {
		return fmt.Errorf("upsert product %s: %w", p.ID, err)
	}
	return nil
}

func scanProduct(row pgx.Row) (models.Product, error) {
	var (
		p     models.Product
		price string
	)
	if err := row.Scan(&p.ID, &p.Title, &price, &p.Description, &p.Availability, &p.Image, &p.CategoryID); err != nil {
		return models.Product{}, notFound(err)
	}
	amount, err := decimal.NewFromString(price)
	if err != nil {
		return models.Product{}, fmt.Errorf("decode product price: %w", err)
	}
	p.Price = amount
	return p, nil
}
