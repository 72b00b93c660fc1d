package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/fekuna/omnipos-store-service/internal/events"
	"github.com/fekuna/omnipos-store-service/internal/inflight"
	"github.com/fekuna/omnipos-store-service/internal/inventory"
	"github.com/fekuna/omnipos-store-service/internal/model"
	"github.com/fekuna/omnipos-store-service/internal/pkg/clock"
	"github.com/fekuna/omnipos-store-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-store-service/internal/pkg/metrics"
	"github.com/fekuna/omnipos-store-service/internal/product"
	"github.com/fekuna/omnipos-store-service/internal/report"
	"github.com/fekuna/omnipos-store-service/internal/sale"
	"github.com/fekuna/omnipos-store-service/internal/sale/dto"
	"github.com/fekuna/omnipos-store-service/internal/store"
	"go.uber.org/zap"
)

type saleUseCase struct {
	repo      sale.Repository
	products  product.Repository
	ledger    inventory.Ledger
	tx        store.Transactor
	guard     inflight.Guard
	publisher events.Publisher
	clock     clock.Clock
	logger    logger.ZapLogger
}

func NewSaleUseCase(
	repo sale.Repository,
	products product.Repository,
	ledger inventory.Ledger,
	tx store.Transactor,
	guard inflight.Guard,
	publisher events.Publisher,
	clk clock.Clock,
	log logger.ZapLogger,
) sale.UseCase {
	return &saleUseCase{
		repo:      repo,
		products:  products,
		ledger:    ledger,
		tx:        tx,
		guard:     guard,
		publisher: publisher,
		clock:     clk,
		logger:    log,
	}
}

func (uc *saleUseCase) RecordSale(ctx context.Context, input *dto.RecordSaleInput) (*model.Sale, error) {
	s, err := uc.record(ctx, input)
	if err != nil {
		return nil, err
	}
	uc.recorded(ctx, s)
	return s, nil
}

func (uc *saleUseCase) Sell(ctx context.Context, input *dto.SellInput) (*model.Sale, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var s *model.Sale
	err := inflight.Do(ctx, uc.guard, inflight.Key("sell", input.ProductID), func() error {
		return uc.tx.RunInTx(ctx, func(ctx context.Context) error {
			p, err := uc.products.FindByID(ctx, input.ProductID)
			if err != nil {
				return err
			}
			if input.Quantity > p.Quantity {
				return fmt.Errorf("%w: requested %d, %d available", sale.ErrInsufficientStock, input.Quantity, p.Quantity)
			}

			s, err = uc.record(ctx, &dto.RecordSaleInput{
				ProductID:   p.ID,
				ProductName: p.Name,
				CategoryID:  p.CategoryID,
				Quantity:    input.Quantity,
				UnitPrice:   p.Price,
			})
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	uc.recorded(ctx, s)
	return s, nil
}

func (uc *saleUseCase) record(ctx context.Context, input *dto.RecordSaleInput) (*model.Sale, error) {
	s := &model.Sale{
		ProductID:   input.ProductID,
		ProductName: input.ProductName,
		CategoryID:  input.CategoryID,
		Quantity:    input.Quantity,
		UnitPrice:   input.UnitPrice,
		Total:       model.SaleTotal(input.Quantity, input.UnitPrice),
	}

	err := uc.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := uc.ledger.AdjustQuantity(ctx, input.ProductID, -input.Quantity); err != nil {
			return err
		}
		return uc.repo.Create(ctx, s)
	})
	if err != nil {
		return nil, fmt.Errorf("record sale of product %s: %w", input.ProductID, err)
	}
	return s, nil
}

// recorded runs after the sale is committed.
func (uc *saleUseCase) recorded(ctx context.Context, s *model.Sale) {
	metrics.SalesRecorded.Inc()
	uc.logger.Info("Sale recorded",
		zap.String("sale_id", s.ID),
		zap.String("product_id", s.ProductID),
		zap.Int64("quantity", s.Quantity),
		zap.String("total", s.Total.StringFixed(2)),
	)
	uc.publisher.Publish(ctx, events.SaleRecorded, s.ProductID, s)
}

func (uc *saleUseCase) CancelLastSale(ctx context.Context, productID string) (*sale.CancelResult, error) {
	result := &sale.CancelResult{}

	err := inflight.Do(ctx, uc.guard, inflight.Key("cancel-sale", productID), func() error {
		return uc.tx.RunInTx(ctx, func(ctx context.Context) error {
			sales, err := uc.repo.FindByProduct(ctx, productID)
			if err != nil {
				return err
			}

			last := latest(report.Today(sales, uc.clock.Now()))
			if last == nil {
				return nil
			}

			// A sale already removed by a concurrent cancel must not restore stock twice.
			removed, err := uc.repo.Delete(ctx, last.ID)
			if err != nil {
				return err
			}
			if !removed {
				return store.ErrConflict
			}
			if err := uc.ledger.AdjustQuantity(ctx, productID, last.Quantity); err != nil {
				return err
			}

			result.Cancelled = true
			result.Sale = last
			return nil
		})
	})
	if err != nil {
		metrics.SaleCancellations.WithLabelValues("failed").Inc()
		return nil, err
	}

	if !result.Cancelled {
		metrics.SaleCancellations.WithLabelValues("nothing").Inc()
		uc.logger.Debug("No sale to cancel today", zap.String("product_id", productID))
		return result, nil
	}

	metrics.SaleCancellations.WithLabelValues("cancelled").Inc()
	uc.logger.Info("Sale cancelled",
		zap.String("sale_id", result.Sale.ID),
		zap.String("product_id", productID),
		zap.Int64("quantity", result.Sale.Quantity),
	)
	uc.publisher.Publish(ctx, events.SaleCancelled, productID, result.Sale)

	return result, nil
}

func (uc *saleUseCase) ListSales(ctx context.Context, r dto.Range) ([]model.Sale, error) {
	sales, err := uc.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	switch r {
	case dto.RangeToday:
		return report.Today(sales, uc.clock.Now()), nil
	case dto.RangeWeek:
		return report.ThisWeek(sales, uc.clock.Now()), nil
	default:
		return sales, nil
	}
}

// latest picks the newest sale; equal timestamps fall back to the larger id, which for
// time-ordered ids is the later write.
func latest(sales []model.Sale) *model.Sale {
	if len(sales) == 0 {
		return nil
	}
	sorted := append([]model.Sale(nil), sales...)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID > sorted[j].ID
	})
	return &sorted[0]
}
