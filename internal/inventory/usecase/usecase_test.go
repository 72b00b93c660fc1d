package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/fekuna/omnipos-store-service/internal/inventory/repository"
	"github.com/fekuna/omnipos-store-service/internal/model"
	"github.com/fekuna/omnipos-store-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-store-service/internal/store"
	"github.com/fekuna/omnipos-store-service/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProduct(t *testing.T, s store.Store, name string, quantity, alertLimit int64) string {
	t.Helper()
	id, err := store.NewCollection[model.Product](s, store.Products).Create(context.Background(), &model.Product{
		Name:       name,
		Quantity:   quantity,
		AlertLimit: alertLimit,
	})
	require.NoError(t, err)
	return id
}

func quantityOf(t *testing.T, s store.Store, id string) int64 {
	t.Helper()
	p, err := store.NewCollection[model.Product](s, store.Products).Get(context.Background(), id)
	require.NoError(t, err)
	return p.Quantity
}

func TestAdjustQuantity(t *testing.T) {
	s := memory.New()
	uc := NewInventoryUseCase(repository.NewDocumentRepository(s), logger.NewNop())
	id := seedProduct(t, s, "Pepsi", 10, 5)

	require.NoError(t, uc.AdjustQuantity(context.Background(), id, -3))
	assert.Equal(t, int64(7), quantityOf(t, s, id))

	require.NoError(t, uc.AdjustQuantity(context.Background(), id, 0))
	assert.Equal(t, int64(7), quantityOf(t, s, id))

	// Stock may go negative; callers check availability themselves.
	require.NoError(t, uc.AdjustQuantity(context.Background(), id, -9))
	assert.Equal(t, int64(-2), quantityOf(t, s, id))
}

func TestAdjustQuantityUnknownProduct(t *testing.T) {
	uc := NewInventoryUseCase(repository.NewDocumentRepository(memory.New()), logger.NewNop())

	err := uc.AdjustQuantity(context.Background(), "missing", 1)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAdjustQuantityConcurrent(t *testing.T) {
	s := memory.New()
	uc := NewInventoryUseCase(repository.NewDocumentRepository(s), logger.NewNop())
	id := seedProduct(t, s, "Fanta", 0, 5)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, uc.AdjustQuantity(context.Background(), id, 2))
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(100), quantityOf(t, s, id))
}

func TestListLowStock(t *testing.T) {
	s := memory.New()
	uc := NewInventoryUseCase(repository.NewDocumentRepository(s), logger.NewNop())
	seedProduct(t, s, "At limit", 5, 5)
	seedProduct(t, s, "Above", 6, 5)
	seedProduct(t, s, "Empty", 0, 0)

	low, err := uc.ListLowStock(context.Background())
	require.NoError(t, err)
	names := make([]string, 0, len(low))
	for _, p := range low {
		names = append(names, p.Name)
	}
	assert.ElementsMatch(t, []string{"At limit", "Empty"}, names)
}
