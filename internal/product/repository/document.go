package repository

import (
	"context"

	"github.com/fekuna/omnipos-store-service/internal/model"
	"github.com/fekuna/omnipos-store-service/internal/store"
)

type DocumentRepository struct {
	products *store.Collection[model.Product]
}

func NewDocumentRepository(s store.Store) *DocumentRepository {
	return &DocumentRepository{products: store.NewCollection[model.Product](s, store.Products)}
}

func (r *DocumentRepository) Create(ctx context.Context, p *model.Product) error {
	id, err := r.products.Create(ctx, p)
	if err != nil {
		return err
	}
	stored, err := r.products.Get(ctx, id)
	if err != nil {
		return err
	}
	*p = *stored
	return nil
}

func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	return r.products.Get(ctx, id)
}

func (r *DocumentRepository) FindAll(ctx context.Context) ([]model.Product, error) {
	return r.products.List(ctx)
}

func (r *DocumentRepository) FindByCategory(ctx context.Context, categoryID string) ([]model.Product, error) {
	return r.products.List(ctx, store.Where("categoryId", categoryID))
}

func (r *DocumentRepository) Update(ctx context.Context, p *model.Product) error {
	return r.products.Update(ctx, p.ID, map[string]interface{}{
		"name":        p.Name,
		"price":       p.Price,
		"description": p.Description,
		"imageUrl":    p.ImageURL,
		"categoryId":  p.CategoryID,
		"alertLimit":  p.AlertLimit,
	})
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) (bool, error) {
	return r.products.Delete(ctx, id)
}
