package listener

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fekuna/omnipos-store-service/internal/order"
	"github.com/fekuna/omnipos-store-service/internal/order/dto"
	"github.com/fekuna/omnipos-store-service/internal/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const EventRestockDelivered = "RestockDelivered"

// MessageReader is satisfied by broker.KafkaConsumer.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// DeliveryListener receives restock orders announced by the supplier delivery feed.
type DeliveryListener struct {
	consumer MessageReader
	uc       order.UseCase
	logger   logger.ZapLogger
}

func NewDeliveryListener(consumer MessageReader, uc order.UseCase, logger logger.ZapLogger) *DeliveryListener {
	return &DeliveryListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
	}
}

func (l *DeliveryListener) Start(ctx context.Context) {
	l.logger.Info("Starting restock delivery listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping restock delivery listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type DeliveryEvent struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Payload   DeliveryPayload `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

type DeliveryPayload struct {
	OrderID string                `json:"order_id"`
	Items   []DeliveryItemPayload `json:"items"`
}

type DeliveryItemPayload struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

func (l *DeliveryListener) processMessage(ctx context.Context, value []byte) {
	var event DeliveryEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != EventRestockDelivered {
		return
	}

	l.logger.Info("Processing RestockDelivered event", zap.String("order_id", event.Payload.OrderID))

	input := &dto.ReceiveOrderInput{OrderID: event.Payload.OrderID}
	for _, item := range event.Payload.Items {
		input.Items = append(input.Items, dto.OrderItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	_, err := l.uc.ReceiveOrder(ctx, input)
	switch {
	case err == nil:
	case errors.Is(err, order.ErrOrderAlreadyReceived):
		// Redelivered message.
		l.logger.Debug("Order already received", zap.String("order_id", input.OrderID))
	default:
		l.logger.Error("Failed to receive delivered order",
			zap.String("order_id", input.OrderID),
			zap.Error(err),
		)
	}
}
