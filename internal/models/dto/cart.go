package dto

import "github.com/shopspring/decimal"

type AddItemRequest struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Title     string          `json:"title,omitempty"`
	Image     string          `json:"image,omitempty"`
}

type UpdateItemRequest struct {
	Quantity *int `json:"quantity"`
}
