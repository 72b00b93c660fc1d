package inventory

import (
	"context"

	"github.com/fekuna/omnipos-store-service/internal/model"
)

type Repository interface {
	// IncrementQuantity applies delta to the stored quantity with the store's atomic
	// increment.
	IncrementQuantity(ctx context.Context, productID string, delta int64) error
	FindAll(ctx context.Context) ([]model.Product, error)
}
