// Package inflight rejects a second submission of the same operation while the first one
// is still running, e.g. a sale button tapped twice.
package inflight

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fekuna/omnipos-store-service/internal/pkg/cache"
	"github.com/google/uuid"
)

var ErrInFlight = errors.New("operation already in progress")

// DefaultTTL bounds how long a crashed holder can block the key.
const DefaultTTL = 30 * time.Second

type Release func()

type Guard interface {
	// Acquire claims key or fails with ErrInFlight. The returned Release must be called
	// once the operation is done.
	Acquire(ctx context.Context, key string) (Release, error)
}

func Key(operation, resource string) string {
	return fmt.Sprintf("inflight:%s:%s", operation, resource)
}

// Do runs fn while holding key.
func Do(ctx context.Context, g Guard, key string, fn func() error) error {
	release, err := g.Acquire(ctx, key)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}

type redisGuard struct {
	client *cache.RedisClient
	ttl    time.Duration
}

func NewRedisGuard(client *cache.RedisClient, ttl time.Duration) Guard {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisGuard{client: client, ttl: ttl}
}

func (g *redisGuard) Acquire(ctx context.Context, key string) (Release, error) {
	token := uuid.New().String()
	ok, err := g.client.AcquireLock(ctx, key, token, g.ttl)
	if err != nil {
		return nil, fmt.Errorf("acquire %s: %w", key, err)
	}
	if !ok {
		return nil, ErrInFlight
	}
	return func() {
		// Detached from ctx so a cancelled request still frees the key.
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = g.client.ReleaseLock(rctx, key, token)
	}, nil
}

type localGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocalGuard keeps keys in process memory. Used when Redis is not configured.
func NewLocalGuard() Guard {
	return &localGuard{held: make(map[string]struct{})}
}

func (g *localGuard) Acquire(ctx context.Context, key string) (Release, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.held[key]; ok {
		return nil, ErrInFlight
	}
	g.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.held, key)
			g.mu.Unlock()
		})
	}, nil
}
