package order

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-store-service/internal/model"
	"github.com/fekuna/omnipos-store-service/internal/order/dto"
)

var ErrOrderAlreadyReceived = errors.New("order already received")

type ReceiveResult struct {
	Order *model.Order `json:"order"`
	// Skipped lists product ids that no longer exist; their stock could not be restored.
	Skipped []string `json:"skipped,omitempty"`
}

type OrderList struct {
	Pending  []model.Order `json:"pending"`
	Received []model.Order `json:"received"`
}

type UseCase interface {
	CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (*model.Order, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	ListOrders(ctx context.Context) (*OrderList, error)
	ListPending(ctx context.Context) ([]model.Order, error)
	// ReceiveOrder adds every item's quantity to stock and marks the order received. An
	// empty item list means the items stored on the order.
	ReceiveOrder(ctx context.Context, input *dto.ReceiveOrderInput) (*ReceiveResult, error)
}
