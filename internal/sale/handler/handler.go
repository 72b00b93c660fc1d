package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-store-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-store-service/internal/pkg/response"
	"github.com/fekuna/omnipos-store-service/internal/sale"
	"github.com/fekuna/omnipos-store-service/internal/sale/dto"
	"github.com/gorilla/mux"
)

func init() {
	response.Register(sale.ErrInsufficientStock, http.StatusUnprocessableEntity)
}

type SaleHandler struct {
	uc     sale.UseCase
	logger logger.ZapLogger
}

func NewSaleHandler(uc sale.UseCase, log logger.ZapLogger) *SaleHandler {
	return &SaleHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *SaleHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/sales", h.ListSales).Methods(http.MethodGet)
	router.HandleFunc("/api/sales", h.Sell).Methods(http.MethodPost)
	router.HandleFunc("/api/products/{id}/sales/cancel-last", h.CancelLastSale).Methods(http.MethodPost)
}

// Sell handles POST /api/sales
func (h *SaleHandler) Sell(w http.ResponseWriter, r *http.Request) {
	var input dto.SellInput
	if err := response.Decode(r, &input); err != nil {
		response.Error(w, h.logger, "Invalid request body", err)
		return
	}

	s, err := h.uc.Sell(r.Context(), &input)
	if err != nil {
		response.Error(w, h.logger, "Failed to record sale", err)
		return
	}
	response.Created(w, "Sale recorded successfully", s)
}

// ListSales handles GET /api/sales?range=today|week
func (h *SaleHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	rng, err := dto.ParseRange(r.URL.Query().Get("range"))
	if err != nil {
		response.Error(w, h.logger, "Invalid range", err)
		return
	}

	sales, err := h.uc.ListSales(r.Context(), rng)
	if err != nil {
		response.Error(w, h.logger, "Failed to list sales", err)
		return
	}
	response.OK(w, sales)
}

// CancelLastSale handles POST /api/products/{id}/sales/cancel-last
func (h *SaleHandler) CancelLastSale(w http.ResponseWriter, r *http.Request) {
	result, err := h.uc.CancelLastSale(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, h.logger, "Failed to cancel sale", err)
		return
	}

	msg := "No sale to cancel today"
	if result.Cancelled {
		msg = "Sale cancelled successfully"
	}
	response.JSON(w, http.StatusOK, response.Response{Success: true, Message: msg, Data: result})
}
