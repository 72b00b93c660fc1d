package product

import (
	"context"

	"github.com/fekuna/omnipos-store-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByCategory(ctx context.Context, categoryID string) ([]model.Product, error)
	// Update writes every catalog field except quantity, which belongs to the stock ledger.
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id string) (bool, error)
}
