package sale

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-store-service/internal/model"
	"github.com/fekuna/omnipos-store-service/internal/sale/dto"
)

var ErrInsufficientStock = errors.New("insufficient stock")

// CancelResult reports whether a sale was reversed. Finding nothing to cancel is a
// normal outcome, not an error.
type CancelResult struct {
	Cancelled bool        `json:"cancelled"`
	Sale      *model.Sale `json:"sale,omitempty"`
}

type UseCase interface {
	// RecordSale decrements stock and writes the sale as one unit. It trusts its input:
	// quantity and stock are checked by Sell.
	RecordSale(ctx context.Context, input *dto.RecordSaleInput) (*model.Sale, error)
	// Sell checks the request against the product's current stock and records the sale
	// with the product's name, category and price at this moment.
	Sell(ctx context.Context, input *dto.SellInput) (*model.Sale, error)
	// CancelLastSale reverses the most recent sale of the product made today.
	CancelLastSale(ctx context.Context, productID string) (*CancelResult, error)
	ListSales(ctx context.Context, r dto.Range) ([]model.Sale, error)
}
