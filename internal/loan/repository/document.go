package repository

import (
	"context"

	"github.com/fekuna/omnipos-store-service/internal/model"
	"github.com/fekuna/omnipos-store-service/internal/store"
)

type DocumentRepository struct {
	loans *store.Collection[model.BottleLoan]
}

func NewDocumentRepository(s store.Store) *DocumentRepository {
	return &DocumentRepository{loans: store.NewCollection[model.BottleLoan](s, store.BottleLoans)}
}

func (r *DocumentRepository) Create(ctx context.Context, l *model.BottleLoan) error {
	id, err := r.loans.Create(ctx, l)
	if err != nil {
		return err
	}
	stored, err := r.loans.Get(ctx, id)
	if err != nil {
		return err
	}
	*l = *stored
	return nil
}

func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*model.BottleLoan, error) {
	return r.loans.Get(ctx, id)
}

func (r *DocumentRepository) FindAll(ctx context.Context) ([]model.BottleLoan, error) {
	return r.loans.List(ctx)
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) (bool, error) {
	return r.loans.Delete(ctx, id)
}
