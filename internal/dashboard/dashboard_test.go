package dashboard

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	invRepo "github.com/fekuna/omnipos-store-service/internal/inventory/repository"
	invUC "github.com/fekuna/omnipos-store-service/internal/inventory/usecase"
	"github.com/fekuna/omnipos-store-service/internal/model"
	"github.com/fekuna/omnipos-store-service/internal/pkg/clock"
	"github.com/fekuna/omnipos-store-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-store-service/internal/report"
	"github.com/fekuna/omnipos-store-service/internal/store"
	"github.com/fekuna/omnipos-store-service/internal/store/memory"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLive(t *testing.T) (*Live, *memory.Store, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC))
	s := memory.New(memory.WithClock(clk.Now))
	live := NewLive(s, clk, logger.NewNop())
	require.NoError(t, live.Start())
	t.Cleanup(func() {
		live.Stop()
		_ = s.Close()
	})
	return live, s, clk
}

func TestLiveRecomputesOnWrites(t *testing.T) {
	live, s, _ := newLive(t)
	ctx := context.Background()

	require.Eventually(t, func() bool {
		_, ok := live.Current()
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	products := store.NewCollection[model.Product](s, store.Products)
	_, err := products.Create(ctx, &model.Product{Name: "Coca", Price: decimal.NewFromInt(10), Quantity: 1, AlertLimit: 5})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		summary, ok := live.Current()
		return ok && summary.LowStockCount == 1
	}, 2*time.Second, 10*time.Millisecond)

	loans := store.NewCollection[model.BottleLoan](s, store.BottleLoans)
	_, err = loans.Create(ctx, &model.BottleLoan{DebtorName: "Rosa", BottleType: "2L", GuaranteeAmount: decimal.NewFromInt(7)})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		summary, _ := live.Current()
		return summary.OutstandingLoans == 1 && summary.TotalGuarantee.Equal(decimal.NewFromInt(7))
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatchDeliversLatestSummary(t *testing.T) {
	live, s, _ := newLive(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := live.Watch(ctx)

	orders := store.NewCollection[model.Order](s, store.Orders)
	_, err := orders.Create(context.Background(), &model.Order{Status: model.OrderStatusPending})
	require.NoError(t, err)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case summary := <-updates:
			if summary.PendingOrders == 1 {
				cancel()
				return
			}
		case <-deadline:
			t.Fatal("no summary with the pending order")
		}
	}
}

func TestSummaryEndpointFallsBackToDirectRead(t *testing.T) {
	clk := clock.NewManual(time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC))
	s := memory.New(memory.WithClock(clk.Now))
	defer s.Close()
	log := logger.NewNop()

	// Not started: Current has nothing yet.
	live := NewLive(s, clk, log)
	inv := invUC.NewInventoryUseCase(invRepo.NewDocumentRepository(s), log)
	router := mux.NewRouter()
	NewHandler(live, s, inv, clk, log).RegisterRoutes(router)

	_, err := store.NewCollection[model.Order](s, store.Orders).Create(context.Background(), &model.Order{Status: model.OrderStatusPending})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data report.Summary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Data.PendingOrders)
}

func TestSalesReportEndpoint(t *testing.T) {
	clk := clock.NewManual(time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC))
	s := memory.New(memory.WithClock(clk.Now))
	defer s.Close()
	log := logger.NewNop()
	router := mux.NewRouter()
	NewHandler(NewLive(s, clk, log), s, invUC.NewInventoryUseCase(invRepo.NewDocumentRepository(s), log), clk, log).RegisterRoutes(router)

	ctx := context.Background()
	catID, err := store.NewCollection[model.Category](s, store.Categories).Create(ctx, &model.Category{Name: "Bebidas"})
	require.NoError(t, err)
	_, err = store.NewCollection[model.Sale](s, store.Sales).Create(ctx, &model.Sale{
		ProductID: "p1", ProductName: "Coca", CategoryID: catID, Quantity: 2,
		UnitPrice: decimal.NewFromInt(10), Total: decimal.NewFromInt(20),
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/sales?period=week", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data report.SalesReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data.Categories, 1)
	assert.Equal(t, "Bebidas", body.Data.Categories[0].CategoryName)
	assert.Equal(t, "20.00", body.Data.Total.StringFixed(2))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/sales?period=year", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStreamCollection(t *testing.T) {
	clk := clock.NewManual(time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC))
	s := memory.New(memory.WithClock(clk.Now))
	defer s.Close()
	log := logger.NewNop()
	router := mux.NewRouter()
	NewHandler(NewLive(s, clk, log), s, invUC.NewInventoryUseCase(invRepo.NewDocumentRepository(s), log), clk, log).RegisterRoutes(router)

	srv := httptest.NewServer(router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/streams/unknown")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/streams/categories", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	next := func() string {
		for lines.Scan() {
			if strings.HasPrefix(lines.Text(), "data: ") {
				return strings.TrimPrefix(lines.Text(), "data: ")
			}
		}
		return ""
	}

	assert.Equal(t, "[]", next())

	_, err = store.NewCollection[model.Category](s, store.Categories).Create(context.Background(), &model.Category{Name: "Snacks"})
	require.NoError(t, err)

	var docs []model.Category
	require.NoError(t, json.Unmarshal([]byte(next()), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "Snacks", docs[0].Name)
}
