package dashboard

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fekuna/omnipos-store-service/internal/inventory"
	"github.com/fekuna/omnipos-store-service/internal/pkg/clock"
	"github.com/fekuna/omnipos-store-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-store-service/internal/pkg/response"
	"github.com/fekuna/omnipos-store-service/internal/pkg/validator"
	"github.com/fekuna/omnipos-store-service/internal/report"
	"github.com/fekuna/omnipos-store-service/internal/store"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const keepAliveInterval = 25 * time.Second

var streamable = map[string]bool{
	store.Products:    true,
	store.Categories:  true,
	store.Sales:       true,
	store.Orders:      true,
	store.BottleLoans: true,
}

type Handler struct {
	live      *Live
	store     store.Store
	inventory inventory.UseCase
	clock     clock.Clock
	logger    logger.ZapLogger
}

func NewHandler(live *Live, s store.Store, inv inventory.UseCase, clk clock.Clock, log logger.ZapLogger) *Handler {
	return &Handler{
		live:      live,
		store:     s,
		inventory: inv,
		clock:     clk,
		logger:    log,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/dashboard", h.Summary).Methods(http.MethodGet)
	router.HandleFunc("/api/dashboard/stream", h.StreamSummary).Methods(http.MethodGet)
	router.HandleFunc("/api/streams/{collection}", h.StreamCollection).Methods(http.MethodGet)
	router.HandleFunc("/api/reports/sales", h.SalesReport).Methods(http.MethodGet)
	router.HandleFunc("/api/reports/low-stock", h.LowStock).Methods(http.MethodGet)
}

// Summary handles GET /api/dashboard
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	if summary, ok := h.live.Current(); ok {
		response.OK(w, summary)
		return
	}
	summary, err := LoadSummary(r.Context(), h.store, h.clock.Now())
	if err != nil {
		response.Error(w, h.logger, "Failed to load dashboard", err)
		return
	}
	response.OK(w, summary)
}

// SalesReport handles GET /api/reports/sales?period=day|week
func (h *Handler) SalesReport(w http.ResponseWriter, r *http.Request) {
	period := report.Period(r.URL.Query().Get("period"))
	switch period {
	case "":
		period = report.PeriodDay
	case report.PeriodDay, report.PeriodWeek:
	default:
		response.Error(w, h.logger, "Invalid period", validator.New("period", "must be day or week"))
		return
	}

	rep, err := LoadSalesReport(r.Context(), h.store, period, h.clock.Now())
	if err != nil {
		response.Error(w, h.logger, "Failed to build sales report", err)
		return
	}
	response.OK(w, rep)
}

// LowStock handles GET /api/reports/low-stock
func (h *Handler) LowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.inventory.ListLowStock(r.Context())
	if err != nil {
		response.Error(w, h.logger, "Failed to list low stock", err)
		return
	}
	response.OK(w, products)
}

// StreamSummary handles GET /api/dashboard/stream as server-sent events.
func (h *Handler) StreamSummary(w http.ResponseWriter, r *http.Request) {
	stream, ok := newEventStream(w)
	if !ok {
		response.JSON(w, http.StatusNotImplemented, response.Response{Error: "Streaming unsupported"})
		return
	}

	updates := h.live.Watch(r.Context())
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := stream.comment("keep-alive"); err != nil {
				return
			}
		case summary, ok := <-updates:
			if !ok {
				return
			}
			if err := stream.send("summary", summary); err != nil {
				h.logger.Debug("Dashboard stream closed", zap.Error(err))
				return
			}
		}
	}
}

// StreamCollection handles GET /api/streams/{collection}. Every event carries the full
// ordered contents of the collection.
func (h *Handler) StreamCollection(w http.ResponseWriter, r *http.Request) {
	collection := mux.Vars(r)["collection"]
	if !streamable[collection] {
		response.Error(w, h.logger, "Unknown collection", fmt.Errorf("%w: collection %q", store.ErrNotFound, collection))
		return
	}

	stream, ok := newEventStream(w)
	if !ok {
		response.JSON(w, http.StatusNotImplemented, response.Response{Error: "Streaming unsupported"})
		return
	}

	snapshots := make(chan []json.RawMessage, 1)
	failures := make(chan error, 1)
	unsubscribe, err := h.store.Subscribe(collection, func(docs []store.Document, err error) {
		if err != nil {
			select {
			case failures <- err:
			default:
			}
			return
		}
		select {
		case <-snapshots:
		default:
		}
		snapshots <- docs
	})
	if err != nil {
		h.logger.Error("Failed to subscribe", zap.String("collection", collection), zap.Error(err))
		_ = stream.send("error", map[string]string{"error": "subscription failed"})
		return
	}
	defer unsubscribe()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := stream.comment("keep-alive"); err != nil {
				return
			}
		case err := <-failures:
			h.logger.Warn("Collection refresh failed", zap.String("collection", collection), zap.Error(err))
			if err := stream.send("error", map[string]string{"error": "refresh failed"}); err != nil {
				return
			}
		case docs := <-snapshots:
			if err := stream.send("snapshot", docs); err != nil {
				return
			}
		}
	}
}
