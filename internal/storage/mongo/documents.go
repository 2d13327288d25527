package mongo

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hongminglow/storefront-be/internal/models"
)

type userDoc struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username"`
	PasswordHash string    `bson:"passwordHash"`
	CreatedAt    time.Time `bson:"createdAt"`
}

type blacklistDoc struct {
	Token     string    `bson:"token"`
	ExpiresAt time.Time `bson:"expiresAt"`
	CreatedAt time.Time `bson:"createdAt"`
}

type itemDoc struct {
	ProductID string               `bson:"productId"`
	Quantity  int                  `bson:"quantity"`
	Price     primitive.Decimal128 `bson:"price"`
	Total     primitive.Decimal128 `bson:"total"`
	Title     string               `bson:"title,omitempty"`
	Image     string               `bson:"image,omitempty"`
}

type cartDoc struct {
	ID             string               `bson:"_id"`
	UserID         string               `bson:"userId"`
	Items          []itemDoc            `bson:"items"`
	Total          primitive.Decimal128 `bson:"total"`
	Status         string               `bson:"status"`
	PendingOrderID string               `bson:"pendingOrderId"`
	Version        int64                `bson:"version"`
	UpdatedAt      time.Time            `bson:"updatedAt"`
}

type orderDoc struct {
	ID     string               `bson:"_id"`
	UserID string               `bson:"userId"`
	Items  []itemDoc            `bson:"items"`
	Total  primitive.Decimal128 `bson:"total"`
	Date   time.Time            `bson:"date"`
	Status string               `bson:"status"`
}

type categoryDoc struct {
	ID          string `bson:"_id"`
	Name        string `bson:"name"`
	Description string `bson:"description,omitempty"`
}

type productDoc struct {
	ID           string               `bson:"_id"`
	Title        string               `bson:"title"`
	Price        primitive.Decimal128 `bson:"price"`
	Description  string               `bson:"description"`
	Availability bool                 `bson:"availability"`
	Image        string               `bson:"image"`
	CategoryID   string               `bson:"category"`
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	out, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("encode decimal %s: %w", d, err)
	}
	return out, nil
}

func fromDecimal128(d primitive.Decimal128) (decimal.Decimal, error) {
	out, err := decimal.NewFromString(d.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("decode decimal %s: %w", d, err)
	}
	return out, nil
}

func toItemDocs(items []models.CartItem) ([]itemDoc, error) {
	docs := make([]itemDoc, 0, len(items))
	for _, item := range items {
		price, err := toDecimal128(item.Price)
		if err != nil {
			return nil, err
		}
		total, err := toDecimal128(item.Total)
		if err != nil {
			return nil, err
		}
		docs = append(docs, itemDoc{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     price,
			Total:     total,
			Title:     item.Title,
			Image:     item.Image,
		})
	}
	return docs, nil
}

func fromItemDocs(docs []itemDoc) ([]models.CartItem, error) {
	items := make([]models.CartItem, 0, len(docs))
	for _, doc := range docs {
		price, err := fromDecimal128(doc.Price)
		if err != nil {
			return nil, err
		}
		total, err := fromDecimal128(doc.Total)
		if err != nil {
			return nil, err
		}
		items = append(items, models.CartItem{
			ProductID: doc.ProductID,
			Quantity:  doc.Quantity,
			Price:     price,
			Total:     total,
			Title:     doc.Title,
			Image:     doc.Image,
		})
	}
	return items, nil
}

func toCartDoc(cart models.Cart) (cartDoc, error) {
	items, err := toItemDocs(cart.Items)
	if err != nil {
		return cartDoc{}, err
	}
	total, err := toDecimal128(cart.Total)
	if err != nil {
		return cartDoc{}, err
	}
	return cartDoc{
		ID:             cart.ID,
		UserID:         cart.UserID,
		Items:          items,
		Total:          total,
		Status:         string(cart.Status),
		PendingOrderID: cart.PendingOrderID,
		Version:        cart.Version,
		UpdatedAt:      cart.UpdatedAt,
	}, nil
}

func (d cartDoc) model() (models.Cart, error) {
	items, err := fromItemDocs(d.Items)
	if err != nil {
		return models.Cart{}, err
	}
	total, err := fromDecimal128(d.Total)
	if err != nil {
		return models.Cart{}, err
	}
	return models.Cart{
		ID:             d.ID,
		UserID:         d.UserID,
		Items:          items,
		Total:          total,
		Status:         models.CartStatus(d.Status),
		PendingOrderID: d.PendingOrderID,
		Version:        d.Version,
		UpdatedAt:      d.UpdatedAt,
	}, nil
}

func (d orderDoc) model() (models.Order, error) {
	items, err := fromItemDocs(d.Items)
	if err != nil {
		return models.Order{}, err
	}
	total, err := fromDecimal128(d.Total)
	if err != nil {
		return models.Order{}, err
	}
	return models.Order{ID: d.ID, UserID: d.UserID, Items: items, Total: total, Date: d.Date, Status: d.Status}, nil
}

func (d productDoc) model() (models.Product, error) {
	price, err := fromDecimal128(d.Price)
	if err != nil {
		return models.Product{}, err
	}
	return models.Product{
		ID:           d.ID,
		Title:        d.Title,
		Price:        price,
		Description:  d.Description,
		Availability: d.Availability,
		Image:        d.Image,
		CategoryID:   d.CategoryID,
	}, nil
}
