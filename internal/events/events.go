// Package events publishes store activity to the message broker for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/fekuna/omnipos-store-service/internal/pkg/broker"
	"github.com/fekuna/omnipos-store-service/internal/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	SaleRecorded  = "SaleRecorded"
	SaleCancelled = "SaleCancelled"
	OrderCreated  = "OrderCreated"
	OrderReceived = "OrderReceived"
	LoanCreated   = "LoanCreated"
	LoanReturned  = "LoanReturned"
)

type Event struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// Publisher delivers events after the state change they describe has been committed.
// Delivery is best effort: failures are logged and never undo the change.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload interface{})
}

type kafkaPublisher struct {
	producer *broker.KafkaProducer
	logger   logger.ZapLogger
}

func NewKafkaPublisher(producer *broker.KafkaProducer, log logger.ZapLogger) Publisher {
	return &kafkaPublisher{producer: producer, logger: log}
}

func (p *kafkaPublisher) Publish(ctx context.Context, eventType, key string, payload interface{}) {
	ev, err := NewEvent(eventType, payload)
	if err != nil {
		p.logger.Error("Failed to build event", zap.String("event_type", eventType), zap.Error(err))
		return
	}
	value, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error("Failed to marshal event", zap.String("event_type", eventType), zap.Error(err))
		return
	}

	headers := map[string]string{"event_type": eventType}
	if err := p.producer.Publish(ctx, key, value, headers); err != nil {
		p.logger.Error("Failed to publish event",
			zap.String("event_type", eventType),
			zap.String("key", key),
			zap.Error(err),
		)
		return
	}
	p.logger.Debug("Event published", zap.String("event_type", eventType), zap.String("key", key))
}

func NewEvent(eventType string, payload interface{}) (*Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	return &Event{
		EventID:   id.String(),
		EventType: eventType,
		Payload:   raw,
		Timestamp: time.Now().UTC(),
	}, nil
}

type nopPublisher struct{}

// NewNop returns a Publisher that drops every event.
func NewNop() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, string, string, interface{}) {}

// Recorder keeps published events in memory. Tests use it to assert on side effects.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, eventType, _ string, payload interface{}) {
	ev, err := NewEvent(eventType, payload)
	if err != nil {
		return
	}
	r.mu.Lock()
	r.events = append(r.events, *ev)
	r.mu.Unlock()
}

func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.EventType
	}
	return out
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
