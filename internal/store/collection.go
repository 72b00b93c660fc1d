package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Collection is a typed view over one named collection. T must carry `json:"id"` and
// `json:"createdAt"` fields to receive the store-owned metadata.
type Collection[T any] struct {
	store Store
	name  string
}

func NewCollection[T any](s Store, name string) *Collection[T] {
	return &Collection[T]{store: s, name: name}
}

func (c *Collection[T]) Name() string {
	return c.name
}

func (c *Collection[T]) Create(ctx context.Context, v *T) (string, error) {
	return c.store.Create(ctx, c.name, v)
}

func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	doc, err := c.store.Get(ctx, c.name, id)
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(doc, &v); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", c.name, id, err)
	}
	return &v, nil
}

func (c *Collection[T]) List(ctx context.Context, filters ...Filter) ([]T, error) {
	docs, err := c.store.List(ctx, c.name, filters...)
	if err != nil {
		return nil, err
	}
	return c.decode(docs)
}

func (c *Collection[T]) Update(ctx context.Context, id string, fields map[string]interface{}, preconditions ...Filter) error {
	return c.store.Update(ctx, c.name, id, fields, preconditions...)
}

func (c *Collection[T]) Increment(ctx context.Context, id, field string, delta int64) error {
	return c.store.Increment(ctx, c.name, id, field, delta)
}

func (c *Collection[T]) Delete(ctx context.Context, id string) (bool, error) {
	return c.store.Delete(ctx, c.name, id)
}

// Subscribe decodes each snapshot before handing it to fn. A snapshot that fails to
// decode is reported through err.
func (c *Collection[T]) Subscribe(fn func(items []T, err error)) (Unsubscribe, error) {
	return c.store.Subscribe(c.name, func(docs []Document, err error) {
		if err != nil {
			fn(nil, err)
			return
		}
		items, err := c.decode(docs)
		fn(items, err)
	})
}

func (c *Collection[T]) decode(docs []Document) ([]T, error) {
	items := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := json.Unmarshal(doc, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", c.name, err)
		}
		items = append(items, v)
	}
	return items, nil
}
