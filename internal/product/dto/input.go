package dto

import (
	"github.com/fekuna/omnipos-store-service/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const DefaultAlertLimit = 5

type CreateProductInput struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	ImageURL    string          `json:"imageUrl"`
	Quantity    int64           `json:"quantity"`
	CategoryID  string          `json:"categoryId"`
	AlertLimit  *int64          `json:"alertLimit"`
}

func (in *CreateProductInput) Validate() error {
	return validator.First(
		validator.Required("name", in.Name),
		validator.Required("categoryId", in.CategoryID),
		validatePrice(in.Price),
		validator.NonNegative("quantity", in.Quantity),
		validateAlertLimit(in.AlertLimit),
	)
}

func (in *CreateProductInput) ResolvedAlertLimit() int64 {
	if in.AlertLimit == nil {
		return DefaultAlertLimit
	}
	return *in.AlertLimit
}

type UpdateProductInput struct {
	ID          string          `json:"-"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	ImageURL    string          `json:"imageUrl"`
	CategoryID  string          `json:"categoryId"`
	AlertLimit  int64           `json:"alertLimit"`
	// Quantity, when set, is the stock level the operator wants to end up with.
	Quantity *int64 `json:"quantity"`
}

func (in *UpdateProductInput) Validate() error {
	errs := []error{
		validator.Required("name", in.Name),
		validator.Required("categoryId", in.CategoryID),
		validatePrice(in.Price),
		validator.NonNegative("alertLimit", in.AlertLimit),
	}
	if in.Quantity != nil {
		errs = append(errs, validator.NonNegative("quantity", *in.Quantity))
	}
	return validator.First(errs...)
}

type AdjustStockInput struct {
	ProductID string `json:"-"`
	Delta     int64  `json:"delta"`
}

func (in *AdjustStockInput) Validate() error {
	if in.Delta == 0 {
		return validator.New("delta", "must not be zero")
	}
	return nil
}

type ProductFilters struct {
	Query      string
	CategoryID string
	InStock    bool
}

func validatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return validator.New("price", "must be greater than zero")
	}
	return nil
}

func validateAlertLimit(limit *int64) error {
	if limit == nil {
		return nil
	}
	return validator.NonNegative("alertLimit", *limit)
}
