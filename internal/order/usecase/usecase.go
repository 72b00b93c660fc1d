package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-store-service/internal/events"
	"github.com/fekuna/omnipos-store-service/internal/inflight"
	"github.com/fekuna/omnipos-store-service/internal/inventory"
	"github.com/fekuna/omnipos-store-service/internal/model"
	"github.com/fekuna/omnipos-store-service/internal/order"
	"github.com/fekuna/omnipos-store-service/internal/order/dto"
	"github.com/fekuna/omnipos-store-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-store-service/internal/pkg/metrics"
	"github.com/fekuna/omnipos-store-service/internal/product"
	"github.com/fekuna/omnipos-store-service/internal/report"
	"github.com/fekuna/omnipos-store-service/internal/store"
	"go.uber.org/zap"
)

type orderUseCase struct {
	repo      order.Repository
	products  product.Repository
	ledger    inventory.Ledger
	tx        store.Transactor
	guard     inflight.Guard
	publisher events.Publisher
	logger    logger.ZapLogger
}

func NewOrderUseCase(
	repo order.Repository,
	products product.Repository,
	ledger inventory.Ledger,
	tx store.Transactor,
	guard inflight.Guard,
	publisher events.Publisher,
	log logger.ZapLogger,
) order.UseCase {
	return &orderUseCase{
		repo:      repo,
		products:  products,
		ledger:    ledger,
		tx:        tx,
		guard:     guard,
		publisher: publisher,
		logger:    log,
	}
}

// CreateOrder snapshots each product's name and stock. Repeated products are merged.
func (uc *orderUseCase) CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (*model.Order, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	items := make([]model.OrderItem, 0, len(input.Items))
	index := make(map[string]int, len(input.Items))
	for _, in := range input.Items {
		if i, ok := index[in.ProductID]; ok {
			items[i].Quantity += in.Quantity
			continue
		}
		p, err := uc.products.FindByID(ctx, in.ProductID)
		if err != nil {
			return nil, fmt.Errorf("order item %s: %w", in.ProductID, err)
		}
		index[in.ProductID] = len(items)
		items = append(items, model.OrderItem{
			ProductID:    p.ID,
			ProductName:  p.Name,
			Quantity:     in.Quantity,
			CurrentStock: p.Quantity,
		})
	}

	o := &model.Order{
		Items:  items,
		Notes:  input.Notes,
		Status: model.OrderStatusPending,
	}
	if err := uc.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	uc.logger.Info("Order created", zap.String("order_id", o.ID), zap.Int("items", len(o.Items)))
	uc.publisher.Publish(ctx, events.OrderCreated, o.ID, o)
	return o, nil
}

func (uc *orderUseCase) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	return uc.repo.FindByID(ctx, id)
}

func (uc *orderUseCase) ListOrders(ctx context.Context) (*order.OrderList, error) {
	orders, err := uc.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	pending, received := report.SplitOrders(orders)
	return &order.OrderList{Pending: pending, Received: received}, nil
}

func (uc *orderUseCase) ListPending(ctx context.Context) ([]model.Order, error) {
	return uc.repo.FindByStatus(ctx, model.OrderStatusPending)
}

func (uc *orderUseCase) ReceiveOrder(ctx context.Context, input *dto.ReceiveOrderInput) (*order.ReceiveResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	result := &order.ReceiveResult{}
	err := inflight.Do(ctx, uc.guard, inflight.Key("receive-order", input.OrderID), func() error {
		return uc.tx.RunInTx(ctx, func(ctx context.Context) error {
			o, err := uc.repo.FindByID(ctx, input.OrderID)
			if err != nil {
				return err
			}
			if !o.IsPending() {
				return order.ErrOrderAlreadyReceived
			}

			for _, item := range receivedItems(o, input.Items) {
				err := uc.ledger.AdjustQuantity(ctx, item.ProductID, item.Quantity)
				if errors.Is(err, store.ErrNotFound) {
					uc.logger.Warn("Received item for a product that no longer exists",
						zap.String("order_id", o.ID),
						zap.String("product_id", item.ProductID),
						zap.Int64("quantity", item.Quantity),
					)
					result.Skipped = append(result.Skipped, item.ProductID)
					continue
				}
				if err != nil {
					return err
				}
			}

			if err := uc.repo.MarkReceived(ctx, o.ID); err != nil {
				if errors.Is(err, store.ErrPreconditionFailed) {
					return order.ErrOrderAlreadyReceived
				}
				return err
			}

			result.Order, err = uc.repo.FindByID(ctx, o.ID)
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.OrdersReceived.Inc()
	uc.logger.Info("Order received",
		zap.String("order_id", result.Order.ID),
		zap.Int("items", len(result.Order.Items)),
		zap.Strings("skipped", result.Skipped),
	)
	uc.publisher.Publish(ctx, events.OrderReceived, result.Order.ID, result)
	return result, nil
}

func receivedItems(o *model.Order, items []dto.OrderItemInput) []dto.OrderItemInput {
	if len(items) > 0 {
		return items
	}
	out := make([]dto.OrderItemInput, len(o.Items))
	for i, item := range o.Items {
		out[i] = dto.OrderItemInput{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return out
}
