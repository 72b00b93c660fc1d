package store

import (
	"context"
	"sync"

	"github.com/fekuna/omnipos-store-service/internal/pkg/metrics"
)

// Loader reads the current ordered contents of a collection.
type Loader func(ctx context.Context, collection string) ([]Document, error)

// Hub fans change notifications out to subscribers. Each subscriber runs on its own
// goroutine and reloads the collection when woken; bursts of notifications collapse
// into a single reload.
type Hub struct {
	load   Loader
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	nextID uint64
	subs   map[string]map[uint64]*subscriber
}

type subscriber struct {
	collection string
	fn         SnapshotFunc
	wake       chan struct{}
	done       chan struct{}
	once       sync.Once
}

func NewHub(load Loader) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		load:   load,
		ctx:    ctx,
		cancel: cancel,
		subs:   make(map[string]map[uint64]*subscriber),
	}
}

func (h *Hub) Subscribe(collection string, fn SnapshotFunc) (Unsubscribe, error) {
	s := &subscriber{
		collection: collection,
		fn:         fn,
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
	}

	// Register before the initial load so a write landing in between still wakes us.
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	if h.subs[collection] == nil {
		h.subs[collection] = make(map[uint64]*subscriber)
	}
	h.subs[collection][id] = s
	h.mu.Unlock()

	initial, err := h.load(h.ctx, collection)
	if err != nil {
		h.remove(collection, id)
		return nil, err
	}

	metrics.ActiveSubscriptions.WithLabelValues(collection).Inc()
	go h.run(s, initial)

	return func() {
		s.once.Do(func() {
			close(s.done)
			h.remove(collection, id)
			metrics.ActiveSubscriptions.WithLabelValues(collection).Dec()
		})
	}, nil
}

func (h *Hub) run(s *subscriber, initial []Document) {
	s.fn(initial, nil)
	for {
		select {
		case <-s.done:
			return
		case <-h.ctx.Done():
			return
		case <-s.wake:
			docs, err := h.load(h.ctx, s.collection)
			select {
			case <-s.done:
				return
			default:
			}
			if err != nil {
				s.fn(nil, err)
				continue
			}
			s.fn(docs, nil)
		}
	}
}

// Notify wakes every subscriber of collection.
func (h *Hub) Notify(collection string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.subs[collection] {
		select {
		case s.wake <- struct{}{}:
		default:
		}
	}
}

// NotifyAll wakes every subscriber, e.g. after the change feed reconnected and
// notifications may have been lost.
func (h *Hub) NotifyAll() {
	h.mu.Lock()
	collections := make([]string, 0, len(h.subs))
	for c := range h.subs {
		collections = append(collections, c)
	}
	h.mu.Unlock()
	for _, c := range collections {
		h.Notify(c)
	}
}

// Close stops every subscriber goroutine.
func (h *Hub) Close() {
	h.cancel()
}

func (h *Hub) remove(collection string, id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[collection], id)
	if len(h.subs[collection]) == 0 {
		delete(h.subs, collection)
	}
}
