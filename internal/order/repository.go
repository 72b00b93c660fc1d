package order

import (
	"context"

	"github.com/fekuna/omnipos-store-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id string) (*model.Order, error)
	FindAll(ctx context.Context) ([]model.Order, error)
	FindByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error)
	// MarkReceived flips a pending order to received and stamps receivedAt with the
	// store clock. It fails with store.ErrPreconditionFailed when the order is no longer
	// pending.
	MarkReceived(ctx context.Context, id string) error
}
