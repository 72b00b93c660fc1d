package model

import "github.com/shopspring/decimal"

type Product struct {
	BaseModel
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	ImageURL    string          `json:"imageUrl"`
	// Quantity is owned by the stock ledger; only inventory.Ledger changes it after creation.
	Quantity   int64  `json:"quantity"`
	CategoryID string `json:"categoryId"` // may dangle after its category is deleted
	AlertLimit int64  `json:"alertLimit"`
}

// IsLowStock reports whether stock has fallen to or below the alert threshold.
func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.AlertLimit
}
