package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-store-service/internal/order"
	"github.com/fekuna/omnipos-store-service/internal/order/dto"
	"github.com/fekuna/omnipos-store-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-store-service/internal/pkg/response"
	"github.com/gorilla/mux"
)

func init() {
	response.Register(order.ErrOrderAlreadyReceived, http.StatusConflict)
}

type OrderHandler struct {
	uc     order.UseCase
	logger logger.ZapLogger
}

func NewOrderHandler(uc order.UseCase, log logger.ZapLogger) *OrderHandler {
	return &OrderHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *OrderHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/orders", h.ListOrders).Methods(http.MethodGet)
	router.HandleFunc("/api/orders", h.CreateOrder).Methods(http.MethodPost)
	router.HandleFunc("/api/orders/{id}", h.GetOrder).Methods(http.MethodGet)
	router.HandleFunc("/api/orders/{id}/receive", h.ReceiveOrder).Methods(http.MethodPost)
}

// CreateOrder handles POST /api/orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var input dto.CreateOrderInput
	if err := response.Decode(r, &input); err != nil {
		response.Error(w, h.logger, "Invalid request body", err)
		return
	}

	o, err := h.uc.CreateOrder(r.Context(), &input)
	if err != nil {
		response.Error(w, h.logger, "Failed to create order", err)
		return
	}
	response.Created(w, "Order created successfully", o)
}

// GetOrder handles GET /api/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.uc.GetOrder(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, h.logger, "Failed to get order", err)
		return
	}
	response.OK(w, o)
}

// ListOrders handles GET /api/orders?status=pending
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("status") == "pending" {
		orders, err := h.uc.ListPending(r.Context())
		if err != nil {
			response.Error(w, h.logger, "Failed to list orders", err)
			return
		}
		response.OK(w, orders)
		return
	}

	list, err := h.uc.ListOrders(r.Context())
	if err != nil {
		response.Error(w, h.logger, "Failed to list orders", err)
		return
	}
	response.OK(w, list)
}

// ReceiveOrder handles POST /api/orders/{id}/receive. The body is optional.
func (h *OrderHandler) ReceiveOrder(w http.ResponseWriter, r *http.Request) {
	var input dto.ReceiveOrderInput
	if err := response.DecodeOptional(r, &input); err != nil {
		response.Error(w, h.logger, "Invalid request body", err)
		return
	}
	input.OrderID = mux.Vars(r)["id"]

	result, err := h.uc.ReceiveOrder(r.Context(), &input)
	if err != nil {
		response.Error(w, h.logger, "Failed to receive order", err)
		return
	}
	response.JSON(w, http.StatusOK, response.Response{Success: true, Message: "Order received successfully", Data: result})
}
