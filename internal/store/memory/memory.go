// Package memory provides an in-process implementation of store.Store used by tests
// and by ephemeral runs without PostgreSQL.
package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fekuna/omnipos-store-service/internal/store"
	"github.com/google/uuid"
)

var _ store.Store = (*Store)(nil)

// record data is never mutated in place; writes replace the map.
type record struct {
	id        string
	createdAt time.Time
	data      map[string]interface{}
}

type state map[string]map[string]record

func (s state) clone() state {
	out := make(state, len(s))
	for name, coll := range s {
		c := make(map[string]record, len(coll))
		for id, r := range coll {
			c[id] = r
		}
		out[name] = c
	}
	return out
}

type txKey struct{}

type tx struct {
	state   state
	changed map[string]struct{}
}

type Option func(*Store)

// WithClock overrides the clock used for createdAt and server timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

type Store struct {
	// writeMu serializes writers and transactions; mu guards committed for readers.
	writeMu   sync.Mutex
	mu        sync.RWMutex
	committed state
	hub       *store.Hub
	now       func() time.Time
}

func New(opts ...Option) *Store {
	s := &Store{
		committed: make(state),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = store.NewHub(func(ctx context.Context, collection string) ([]store.Document, error) {
		return s.List(ctx, collection)
	})
	return s
}

func (s *Store) Subscribe(collection string, fn store.SnapshotFunc) (store.Unsubscribe, error) {
	return s.hub.Subscribe(collection, fn)
}

func (s *Store) Create(ctx context.Context, collection string, data interface{}) (string, error) {
	fields, err := toMap(data)
	if err != nil {
		return "", err
	}
	delete(fields, store.FieldID)
	delete(fields, store.FieldCreatedAt)

	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}

	err = s.write(ctx, collection, func(st state) error {
		if st[collection] == nil {
			st[collection] = make(map[string]record)
		}
		st[collection][id.String()] = record{id: id.String(), createdAt: s.now(), data: fields}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (store.Document, error) {
	var doc store.Document
	err := s.read(ctx, func(st state) error {
		r, ok := st[collection][id]
		if !ok {
			return store.ErrNotFound
		}
		var err error
		doc, err = r.document()
		return err
	})
	return doc, err
}

func (s *Store) List(ctx context.Context, collection string, filters ...store.Filter) ([]store.Document, error) {
	var docs []store.Document
	err := s.read(ctx, func(st state) error {
		records := make([]record, 0, len(st[collection]))
		for _, r := range st[collection] {
			ok, err := r.matches(filters)
			if err != nil {
				return err
			}
			if ok {
				records = append(records, r)
			}
		}
		sort.Slice(records, func(i, j int) bool {
			if !records[i].createdAt.Equal(records[j].createdAt) {
				return records[i].createdAt.After(records[j].createdAt)
			}
			return records[i].id > records[j].id
		})

		docs = make([]store.Document, 0, len(records))
		for _, r := range records {
			doc, err := r.document()
			if err != nil {
				return err
			}
			docs = append(docs, doc)
		}
		return nil
	})
	return docs, err
}

func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]interface{}, preconditions ...store.Filter) error {
	values, timestamps := store.SplitFields(fields)
	patch, err := toMap(values)
	if err != nil {
		return err
	}

	return s.write(ctx, collection, func(st state) error {
		r, ok := st[collection][id]
		if !ok {
			return store.ErrNotFound
		}
		match, err := r.matches(preconditions)
		if err != nil {
			return err
		}
		if !match {
			return store.ErrPreconditionFailed
		}

		merged := make(map[string]interface{}, len(r.data)+len(patch)+len(timestamps))
		for k, v := range r.data {
			merged[k] = v
		}
		for k, v := range patch {
			merged[k] = v
		}
		now := s.now().Format(time.RFC3339Nano)
		for _, k := range timestamps {
			merged[k] = now
		}
		r.data = merged
		st[collection][id] = r
		return nil
	})
}

func (s *Store) Increment(ctx context.Context, collection, id, field string, delta int64) error {
	return s.write(ctx, collection, func(st state) error {
		r, ok := st[collection][id]
		if !ok {
			return store.ErrNotFound
		}

		current, err := numberValue(r.data[field])
		if err != nil {
			return fmt.Errorf("increment %s.%s: %w", collection, field, err)
		}

		merged := make(map[string]interface{}, len(r.data)+1)
		for k, v := range r.data {
			merged[k] = v
		}
		merged[field] = json.Number(fmt.Sprintf("%d", current+delta))
		r.data = merged
		st[collection][id] = r
		return nil
	})
}

func (s *Store) Delete(ctx context.Context, collection, id string) (bool, error) {
	existed := false
	err := s.write(ctx, collection, func(st state) error {
		if _, ok := st[collection][id]; ok {
			existed = true
			delete(st[collection], id)
		}
		return nil
	})
	return existed, err
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*tx); ok {
		return fn(ctx)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	t := &tx{state: s.committed.clone(), changed: make(map[string]struct{})}
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		return err
	}

	s.mu.Lock()
	s.committed = t.state
	s.mu.Unlock()

	for collection := range t.changed {
		s.hub.Notify(collection)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close() error {
	s.hub.Close()
	return nil
}

func (s *Store) read(ctx context.Context, fn func(st state) error) error {
	if t, ok := ctx.Value(txKey{}).(*tx); ok {
		return fn(t.state)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.committed)
}

func (s *Store) write(ctx context.Context, collection string, fn func(st state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t, ok := ctx.Value(txKey{}).(*tx); ok {
		if err := fn(t.state); err != nil {
			return err
		}
		t.changed[collection] = struct{}{}
		return nil
	}

	s.writeMu.Lock()
	s.mu.Lock()
	err := fn(s.committed)
	s.mu.Unlock()
	s.writeMu.Unlock()
	if err != nil {
		return err
	}
	s.hub.Notify(collection)
	return nil
}

func (r record) document() (store.Document, error) {
	out := make(map[string]interface{}, len(r.data)+2)
	for k, v := range r.data {
		out[k] = v
	}
	out[store.FieldID] = r.id
	out[store.FieldCreatedAt] = r.createdAt.Format(time.RFC3339Nano)
	return json.Marshal(out)
}

func (r record) matches(filters []store.Filter) (bool, error) {
	for _, f := range filters {
		want, err := json.Marshal(f.Value)
		if err != nil {
			return false, err
		}
		got, err := json.Marshal(r.data[f.Field])
		if err != nil {
			return false, err
		}
		if !bytes.Equal(want, got) {
			return false, nil
		}
	}
	return true, nil
}

// toMap round-trips v through JSON so stored values match what the postgres backend
// would hold.
func toMap(v interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	out := map[string]interface{}{}
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("document must be a JSON object: %w", err)
	}
	return out, nil
}

func numberValue(v interface{}) (int64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, err
		}
		return int64(f), nil
	default:
		return 0, fmt.Errorf("field is not numeric: %T", v)
	}
}
