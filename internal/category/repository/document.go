package repository

import (
	"context"

	"github.com/fekuna/omnipos-store-service/internal/model"
	"github.com/fekuna/omnipos-store-service/internal/store"
)

type DocumentRepository struct {
	categories *store.Collection[model.Category]
}

func NewDocumentRepository(s store.Store) *DocumentRepository {
	return &DocumentRepository{categories: store.NewCollection[model.Category](s, store.Categories)}
}

func (r *DocumentRepository) Create(ctx context.Context, c *model.Category) error {
	id, err := r.categories.Create(ctx, c)
	if err != nil {
		return err
	}
	stored, err := r.categories.Get(ctx, id)
	if err != nil {
		return err
	}
	*c = *stored
	return nil
}

func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	return r.categories.Get(ctx, id)
}

func (r *DocumentRepository) FindAll(ctx context.Context) ([]model.Category, error) {
	return r.categories.List(ctx)
}

func (r *DocumentRepository) Update(ctx context.Context, c *model.Category) error {
	return r.categories.Update(ctx, c.ID, map[string]interface{}{
		"name": c.Name,
	})
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) (bool, error) {
	return r.categories.Delete(ctx, id)
}
