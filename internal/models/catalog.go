package models

import "github.com/shopspring/decimal"

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Product references its Category by id.
type Product struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Price        decimal.Decimal `json:"price"`
	Description  string          `json:"description"`
	Availability bool            `json:"availability"`
	Image        string          `json:"image"`
	CategoryID   string          `json:"category"`
}
