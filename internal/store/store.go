// Package store is the entity store adapter: named collections of JSON documents with
// store-assigned identities and creation timestamps, live subscriptions, atomic
// increments and transactional units.
package store

import (
	"context"
	"encoding/json"
	"errors"
)

// Collection names shared by every backend.
const (
	Products    = "products"
	Categories  = "categories"
	Sales       = "sales"
	Orders      = "orders"
	BottleLoans = "bottleLoans"
)

// Reserved document keys. Both are owned by the store and ignored on writes.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrPreconditionFailed = errors.New("record does not match precondition")
	ErrConflict           = errors.New("record changed concurrently")
)

// Document is one record serialized as a JSON object that includes "id" and "createdAt".
type Document = json.RawMessage

// SnapshotFunc receives the full, ordered contents of a collection on every change.
// err is set when a refresh after a change notification could not be loaded; docs is
// nil in that case.
type SnapshotFunc func(docs []Document, err error)

// Unsubscribe releases a subscription. Calls after the first are no-ops.
type Unsubscribe func()

// ServerTimestamp, used as a value in Update fields, is replaced by the store's clock.
type ServerTimestamp struct{}

// Filter is a single-field equality condition.
type Filter struct {
	Field string
	Value interface{}
}

func Where(field string, value interface{}) Filter {
	return Filter{Field: field, Value: value}
}

// Transactor groups store calls into one atomic unit.
type Transactor interface {
	// RunInTx executes fn as one atomic unit. Store calls made with the ctx passed to fn
	// join the unit; nested calls join the outer unit.
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Store interface {
	// Subscribe delivers the current contents of collection, ordered by creation time
	// descending, once immediately and again after every change.
	Subscribe(collection string, fn SnapshotFunc) (Unsubscribe, error)

	Create(ctx context.Context, collection string, data interface{}) (string, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	List(ctx context.Context, collection string, filters ...Filter) ([]Document, error)

	// Update merges fields into an existing record. Every precondition must hold on the
	// stored record or ErrPreconditionFailed is returned and nothing is written.
	Update(ctx context.Context, collection, id string, fields map[string]interface{}, preconditions ...Filter) error

	// Increment adds delta to a numeric field without a separate read.
	Increment(ctx context.Context, collection, id, field string, delta int64) error

	// Delete removes a record and reports whether it existed.
	Delete(ctx context.Context, collection, id string) (bool, error)

	Transactor

	Ping(ctx context.Context) error
	Close() error
}

// SplitFields separates server timestamp sentinels from plain values and drops the
// reserved keys.
func SplitFields(fields map[string]interface{}) (values map[string]interface{}, timestamps []string) {
	values = make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if k == FieldID || k == FieldCreatedAt {
			continue
		}
		if _, ok := v.(ServerTimestamp); ok {
			timestamps = append(timestamps, k)
			continue
		}
		values[k] = v
	}
	return values, timestamps
}

// FiltersObject renders filters as a JSON object usable for containment matching.
func FiltersObject(filters []Filter) map[string]interface{} {
	obj := make(map[string]interface{}, len(filters))
	for _, f := range filters {
		obj[f.Field] = f.Value
	}
	return obj
}
