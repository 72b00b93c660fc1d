package repository

import (
	"context"

	"github.com/fekuna/omnipos-store-service/internal/model"
	"github.com/fekuna/omnipos-store-service/internal/store"
)

const fieldStatus = "status"

type DocumentRepository struct {
	orders *store.Collection[model.Order]
}

func NewDocumentRepository(s store.Store) *DocumentRepository {
	return &DocumentRepository{orders: store.NewCollection[model.Order](s, store.Orders)}
}

func (r *DocumentRepository) Create(ctx context.Context, o *model.Order) error {
	id, err := r.orders.Create(ctx, o)
	if err != nil {
		return err
	}
	stored, err := r.orders.Get(ctx, id)
	if err != nil {
		return err
	}
	*o = *stored
	return nil
}

func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	return r.orders.Get(ctx, id)
}

func (r *DocumentRepository) FindAll(ctx context.Context) ([]model.Order, error) {
	return r.orders.List(ctx)
}

func (r *DocumentRepository) FindByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error) {
	return r.orders.List(ctx, store.Where(fieldStatus, status))
}

func (r *DocumentRepository) MarkReceived(ctx context.Context, id string) error {
	return r.orders.Update(ctx, id,
		map[string]interface{}{
			fieldStatus:  model.OrderStatusReceived,
			"receivedAt": store.ServerTimestamp{},
		},
		store.Where(fieldStatus, model.OrderStatusPending),
	)
}
