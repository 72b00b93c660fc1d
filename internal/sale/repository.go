package sale

import (
	"context"

	"github.com/fekuna/omnipos-store-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, sale *model.Sale) error
	FindAll(ctx context.Context) ([]model.Sale, error)
	FindByProduct(ctx context.Context, productID string) ([]model.Sale, error)
	Delete(ctx context.Context, id string) (bool, error)
}
