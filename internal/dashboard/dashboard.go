// Package dashboard keeps the home-screen summary current by subscribing to every
// collection it is derived from and recomputing on each snapshot.
package dashboard

import (
	"context"
	"sync"

	"github.com/fekuna/omnipos-store-service/internal/model"
	"github.com/fekuna/omnipos-store-service/internal/pkg/clock"
	"github.com/fekuna/omnipos-store-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-store-service/internal/report"
	"github.com/fekuna/omnipos-store-service/internal/store"
	"go.uber.org/zap"
)

type snapshot struct {
	products []model.Product
	sales    []model.Sale
	orders   []model.Order
	loans    []model.BottleLoan
}

type Live struct {
	store  store.Store
	clock  clock.Clock
	logger logger.ZapLogger

	mu      sync.Mutex
	snap    snapshot
	ready   map[string]bool
	current *report.Summary
	watch   map[uint64]chan report.Summary
	nextID  uint64
	unsubs  []store.Unsubscribe
}

func NewLive(s store.Store, clk clock.Clock, log logger.ZapLogger) *Live {
	return &Live{
		store:  s,
		clock:  clk,
		logger: log,
		ready:  make(map[string]bool),
		watch:  make(map[uint64]chan report.Summary),
	}
}

// Start opens the four subscriptions. Each first snapshot arrives asynchronously;
// Current reports ok=false until all four have been seen.
func (l *Live) Start() error {
	subscribe := []func() (store.Unsubscribe, error){
		func() (store.Unsubscribe, error) {
			return store.NewCollection[model.Product](l.store, store.Products).Subscribe(func(items []model.Product, err error) {
				l.apply(store.Products, err, func(s *snapshot) { s.products = items })
			})
		},
		func() (store.Unsubscribe, error) {
			return store.NewCollection[model.Sale](l.store, store.Sales).Subscribe(func(items []model.Sale, err error) {
				l.apply(store.Sales, err, func(s *snapshot) { s.sales = items })
			})
		},
		func() (store.Unsubscribe, error) {
			return store.NewCollection[model.Order](l.store, store.Orders).Subscribe(func(items []model.Order, err error) {
				l.apply(store.Orders, err, func(s *snapshot) { s.orders = items })
			})
		},
		func() (store.Unsubscribe, error) {
			return store.NewCollection[model.BottleLoan](l.store, store.BottleLoans).Subscribe(func(items []model.BottleLoan, err error) {
				l.apply(store.BottleLoans, err, func(s *snapshot) { s.loans = items })
			})
		},
	}

	for _, sub := range subscribe {
		unsub, err := sub()
		if err != nil {
			l.Stop()
			return err
		}
		l.mu.Lock()
		l.unsubs = append(l.unsubs, unsub)
		l.mu.Unlock()
	}
	return nil
}

func (l *Live) Stop() {
	l.mu.Lock()
	unsubs := l.unsubs
	l.unsubs = nil
	for id, ch := range l.watch {
		close(ch)
		delete(l.watch, id)
	}
	l.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}

// Current returns the latest summary recomputed against the clock now, so day and
// week windows roll over even without new writes.
func (l *Live) Current() (report.Summary, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil {
		return report.Summary{}, false
	}
	return l.summarize(), true
}

// Watch delivers every recomputed summary until ctx ends. Slow readers only see the
// latest value.
func (l *Live) Watch(ctx context.Context) <-chan report.Summary {
	ch := make(chan report.Summary, 1)

	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.watch[id] = ch
	if l.current != nil {
		ch <- *l.current
	}
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.mu.Lock()
		if _, ok := l.watch[id]; ok {
			close(ch)
			delete(l.watch, id)
		}
		l.mu.Unlock()
	}()
	return ch
}

func (l *Live) apply(collection string, err error, set func(*snapshot)) {
	if err != nil {
		l.logger.Error("Dashboard subscription failed", zap.String("collection", collection), zap.Error(err))
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	set(&l.snap)
	l.ready[collection] = true
	if len(l.ready) < 4 {
		return
	}

	summary := l.summarize()
	l.current = &summary
	for _, ch := range l.watch {
		select {
		case <-ch:
		default:
		}
		ch <- summary
	}
}

func (l *Live) summarize() report.Summary {
	return report.Summarize(l.snap.products, l.snap.sales, l.snap.orders, l.snap.loans, l.clock.Now())
}
