package repository

import (
	"context"

	"github.com/fekuna/omnipos-store-service/internal/model"
	"github.com/fekuna/omnipos-store-service/internal/store"
)

type DocumentRepository struct {
	sales *store.Collection[model.Sale]
}

func NewDocumentRepository(s store.Store) *DocumentRepository {
	return &DocumentRepository{sales: store.NewCollection[model.Sale](s, store.Sales)}
}

func (r *DocumentRepository) Create(ctx context.Context, sale *model.Sale) error {
	id, err := r.sales.Create(ctx, sale)
	if err != nil {
		return err
	}
	stored, err := r.sales.Get(ctx, id)
	if err != nil {
		return err
	}
	*sale = *stored
	return nil
}

func (r *DocumentRepository) FindAll(ctx context.Context) ([]model.Sale, error) {
	return r.sales.List(ctx)
}

func (r *DocumentRepository) FindByProduct(ctx context.Context, productID string) ([]model.Sale, error) {
	return r.sales.List(ctx, store.Where("productId", productID))
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) (bool, error) {
	return r.sales.Delete(ctx, id)
}
