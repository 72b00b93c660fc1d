package dto

import (
	"fmt"

	"github.com/fekuna/omnipos-store-service/internal/pkg/validator"
)

type OrderItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

type CreateOrderInput struct {
	Items []OrderItemInput `json:"items"`
	Notes string           `json:"notes"`
}

func (in *CreateOrderInput) Validate() error {
	if len(in.Items) == 0 {
		return validator.New("items", "must contain at least one product")
	}
	return validateItems(in.Items)
}

type ReceiveOrderInput struct {
	OrderID string           `json:"-"`
	Items   []OrderItemInput `json:"items"`
}

func (in *ReceiveOrderInput) Validate() error {
	if err := validator.Required("orderId", in.OrderID); err != nil {
		return err
	}
	return validateItems(in.Items)
}

func validateItems(items []OrderItemInput) error {
	for i, item := range items {
		if err := validator.First(
			validator.Required(fmt.Sprintf("items[%d].productId", i), item.ProductID),
			validator.Positive(fmt.Sprintf("items[%d].quantity", i), item.Quantity),
		); err != nil {
			return err
		}
	}
	return nil
}
