package repository

import (
	"context"

	"github.com/fekuna/omnipos-store-service/internal/model"
	"github.com/fekuna/omnipos-store-service/internal/store"
)

const fieldQuantity = "quantity"

type DocumentRepository struct {
	products *store.Collection[model.Product]
}

func NewDocumentRepository(s store.Store) *DocumentRepository {
	return &DocumentRepository{products: store.NewCollection[model.Product](s, store.Products)}
}

func (r *DocumentRepository) IncrementQuantity(ctx context.Context, productID string, delta int64) error {
	return r.products.Increment(ctx, productID, fieldQuantity, delta)
}

func (r *DocumentRepository) FindAll(ctx context.Context) ([]model.Product, error) {
	return r.products.List(ctx)
}
