package usecase

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-store-service/internal/inventory"
	"github.com/fekuna/omnipos-store-service/internal/model"
	"github.com/fekuna/omnipos-store-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-store-service/internal/pkg/metrics"
	"github.com/fekuna/omnipos-store-service/internal/report"
	"go.uber.org/zap"
)

type inventoryUseCase struct {
	repo   inventory.Repository
	logger logger.ZapLogger
}

func NewInventoryUseCase(repo inventory.Repository, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *inventoryUseCase) AdjustQuantity(ctx context.Context, productID string, delta int64) error {
	if delta == 0 {
		return nil
	}

	if err := uc.repo.IncrementQuantity(ctx, productID, delta); err != nil {
		return fmt.Errorf("adjust stock of product %s by %d: %w", productID, delta, err)
	}

	direction := "in"
	if delta < 0 {
		direction = "out"
	}
	metrics.StockAdjustments.WithLabelValues(direction).Inc()

	uc.logger.Debug("Stock adjusted",
		zap.String("product_id", productID),
		zap.Int64("delta", delta),
	)
	return nil
}

func (uc *inventoryUseCase) ListLowStock(ctx context.Context) ([]model.Product, error) {
	products, err := uc.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return report.LowStock(products), nil
}
