package model

import "github.com/shopspring/decimal"

// Sale is immutable once written. ProductName and CategoryID are snapshots taken at
// sale time and never follow later product edits.
type Sale struct {
	BaseModel
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	CategoryID  string          `json:"categoryId"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Total       decimal.Decimal `json:"total"`
}

func SaleTotal(quantity int64, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(quantity))
}
