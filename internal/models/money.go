package models

import "github.com/shopspring/decimal"

func init() {
	// Prices and totals travel as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}
