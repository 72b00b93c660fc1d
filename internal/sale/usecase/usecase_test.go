package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-store-service/internal/events"
	"github.com/fekuna/omnipos-store-service/internal/inflight"
	invRepo "github.com/fekuna/omnipos-store-service/internal/inventory/repository"
	invUC "github.com/fekuna/omnipos-store-service/internal/inventory/usecase"
	"github.com/fekuna/omnipos-store-service/internal/model"
	"github.com/fekuna/omnipos-store-service/internal/pkg/clock"
	"github.com/fekuna/omnipos-store-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-store-service/internal/pkg/validator"
	prodRepo "github.com/fekuna/omnipos-store-service/internal/product/repository"
	"github.com/fekuna/omnipos-store-service/internal/sale"
	"github.com/fekuna/omnipos-store-service/internal/sale/dto"
	"github.com/fekuna/omnipos-store-service/internal/sale/repository"
	"github.com/fekuna/omnipos-store-service/internal/store"
	"github.com/fekuna/omnipos-store-service/internal/store/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var laPaz = time.FixedZone("BOT", -4*60*60)

type fixture struct {
	store     *memory.Store
	clock     *clock.Manual
	products  *store.Collection[model.Product]
	sales     *store.Collection[model.Sale]
	publisher *events.Recorder
	uc        sale.UseCase
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	clk := clock.NewManual(now)
	s := memory.New(memory.WithClock(clk.Now))
	t.Cleanup(func() { _ = s.Close() })

	log := logger.NewNop()
	ledger := invUC.NewInventoryUseCase(invRepo.NewDocumentRepository(s), log)
	rec := &events.Recorder{}

	return &fixture{
		store:     s,
		clock:     clk,
		products:  store.NewCollection[model.Product](s, store.Products),
		sales:     store.NewCollection[model.Sale](s, store.Sales),
		publisher: rec,
		uc: NewSaleUseCase(
			repository.NewDocumentRepository(s),
			prodRepo.NewDocumentRepository(s),
			ledger,
			s,
			inflight.NewLocalGuard(),
			rec,
			clk,
			log,
		),
	}
}

func (f *fixture) product(t *testing.T, name, price string, quantity int64) string {
	t.Helper()
	id, err := f.products.Create(context.Background(), &model.Product{
		Name:       name,
		Price:      decimal.RequireFromString(price),
		Quantity:   quantity,
		CategoryID: "drinks",
		AlertLimit: 2,
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) quantity(t *testing.T, id string) int64 {
	t.Helper()
	p, err := f.products.Get(context.Background(), id)
	require.NoError(t, err)
	return p.Quantity
}

func TestRecordSale(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.Date(2024, 3, 6, 10, 0, 0, 0, laPaz))
	pid := f.product(t, "Coca Cola", "10.00", 10)

	s, err := f.uc.RecordSale(ctx, &dto.RecordSaleInput{
		ProductID:   pid,
		ProductName: "Coca Cola",
		CategoryID:  "drinks",
		Quantity:    3,
		UnitPrice:   decimal.RequireFromString("10.00"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "30.00", s.Total.StringFixed(2))
	assert.Equal(t, int64(7), f.quantity(t, pid))
	assert.Equal(t, []string{events.SaleRecorded}, f.publisher.Types())
}

func TestRecordSaleDoesNotCheckStock(t *testing.T) {
	f := newFixture(t, time.Date(2024, 3, 6, 10, 0, 0, 0, laPaz))
	pid := f.product(t, "Agua", "4.00", 1)

	_, err := f.uc.RecordSale(context.Background(), &dto.RecordSaleInput{
		ProductID: pid,
		Quantity:  3,
		UnitPrice: decimal.RequireFromString("4.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(-2), f.quantity(t, pid))
}

func TestRecordSaleUnknownProductWritesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.Date(2024, 3, 6, 10, 0, 0, 0, laPaz))

	_, err := f.uc.RecordSale(ctx, &dto.RecordSaleInput{ProductID: "missing", Quantity: 1, UnitPrice: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, store.ErrNotFound)

	all, err := f.sales.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSellSnapshotsProduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.Date(2024, 3, 6, 10, 0, 0, 0, laPaz))
	pid := f.product(t, "Pepsi", "8.50", 5)

	s, err := f.uc.Sell(ctx, &dto.SellInput{ProductID: pid, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, "Pepsi", s.ProductName)
	assert.Equal(t, "drinks", s.CategoryID)
	assert.Equal(t, "17.00", s.Total.StringFixed(2))
	assert.Equal(t, int64(3), f.quantity(t, pid))

	// Later product edits do not touch the sale.
	require.NoError(t, f.products.Update(ctx, pid, map[string]interface{}{"name": "Pepsi Black"}))
	stored, err := f.sales.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pepsi", stored.ProductName)
}

func TestSellRejectsBadQuantity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.Date(2024, 3, 6, 10, 0, 0, 0, laPaz))
	pid := f.product(t, "Pepsi", "8.50", 2)

	_, err := f.uc.Sell(ctx, &dto.SellInput{ProductID: pid, Quantity: 3})
	assert.ErrorIs(t, err, sale.ErrInsufficientStock)

	_, err = f.uc.Sell(ctx, &dto.SellInput{ProductID: pid, Quantity: 0})
	var verr *validator.ValidationError
	assert.ErrorAs(t, err, &verr)

	assert.Equal(t, int64(2), f.quantity(t, pid))
	assert.Empty(t, f.publisher.Types())
}

func TestCancelLastSale(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.Date(2024, 3, 6, 10, 0, 0, 0, laPaz))
	pid := f.product(t, "Coca Cola", "10.00", 10)

	first, err := f.uc.Sell(ctx, &dto.SellInput{ProductID: pid, Quantity: 1})
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	second, err := f.uc.Sell(ctx, &dto.SellInput{ProductID: pid, Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(6), f.quantity(t, pid))

	res, err := f.uc.CancelLastSale(ctx, pid)
	require.NoError(t, err)
	require.True(t, res.Cancelled)
	assert.Equal(t, second.ID, res.Sale.ID)
	assert.Equal(t, int64(9), f.quantity(t, pid))

	_, err = f.sales.Get(ctx, second.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Not idempotent: the next call reverses the previous sale.
	res, err = f.uc.CancelLastSale(ctx, pid)
	require.NoError(t, err)
	require.True(t, res.Cancelled)
	assert.Equal(t, first.ID, res.Sale.ID)
	assert.Equal(t, int64(10), f.quantity(t, pid))

	res, err = f.uc.CancelLastSale(ctx, pid)
	require.NoError(t, err)
	assert.False(t, res.Cancelled)
	assert.Nil(t, res.Sale)
	assert.Equal(t, int64(10), f.quantity(t, pid))
}

func TestCancelLastSaleIgnoresEarlierDays(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.Date(2024, 3, 5, 23, 59, 0, 0, laPaz))
	pid := f.product(t, "Coca Cola", "10.00", 10)

	_, err := f.uc.Sell(ctx, &dto.SellInput{ProductID: pid, Quantity: 2})
	require.NoError(t, err)

	f.clock.Set(time.Date(2024, 3, 6, 0, 0, 30, 0, laPaz))
	res, err := f.uc.CancelLastSale(ctx, pid)
	require.NoError(t, err)
	assert.False(t, res.Cancelled)
	assert.Equal(t, int64(8), f.quantity(t, pid))
}

func TestCancelLastSaleSameTimestampPicksLatestWrite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.Date(2024, 3, 6, 10, 0, 0, 0, laPaz))
	pid := f.product(t, "Coca Cola", "10.00", 10)

	_, err := f.uc.Sell(ctx, &dto.SellInput{ProductID: pid, Quantity: 1})
	require.NoError(t, err)
	second, err := f.uc.Sell(ctx, &dto.SellInput{ProductID: pid, Quantity: 2})
	require.NoError(t, err)

	res, err := f.uc.CancelLastSale(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, second.ID, res.Sale.ID)
}

func TestConcurrentCancelsRestoreOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.Date(2024, 3, 6, 10, 0, 0, 0, laPaz))
	pid := f.product(t, "Coca Cola", "10.00", 10)

	_, err := f.uc.Sell(ctx, &dto.SellInput{ProductID: pid, Quantity: 4})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.uc.CancelLastSale(ctx, pid)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(10), f.quantity(t, pid))
}

func TestListSales(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.Date(2024, 3, 4, 9, 0, 0, 0, laPaz))
	pid := f.product(t, "Coca Cola", "10.00", 100)

	_, err := f.uc.Sell(ctx, &dto.SellInput{ProductID: pid, Quantity: 1}) // Monday
	require.NoError(t, err)
	f.clock.Set(time.Date(2024, 3, 6, 9, 0, 0, 0, laPaz))
	_, err = f.uc.Sell(ctx, &dto.SellInput{ProductID: pid, Quantity: 1}) // Wednesday
	require.NoError(t, err)

	today, err := f.uc.ListSales(ctx, dto.RangeToday)
	require.NoError(t, err)
	assert.Len(t, today, 1)

	week, err := f.uc.ListSales(ctx, dto.RangeWeek)
	require.NoError(t, err)
	assert.Len(t, week, 2)

	f.clock.Set(time.Date(2024, 3, 11, 9, 0, 0, 0, laPaz))
	week, err = f.uc.ListSales(ctx, dto.RangeWeek)
	require.NoError(t, err)
	assert.Empty(t, week)

	all, err := f.uc.ListSales(ctx, dto.RangeAll)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
