package inventory

import (
	"context"

	"github.com/fekuna/omnipos-store-service/internal/model"
)

// Ledger is the single entry point for changes to Product.Quantity.
type Ledger interface {
	// AdjustQuantity adds delta (negative to decrement) to the product's stock. It does
	// not check bounds; stock may go negative.
	AdjustQuantity(ctx context.Context, productID string, delta int64) error
}

type UseCase interface {
	Ledger
	ListLowStock(ctx context.Context) ([]model.Product, error)
}
