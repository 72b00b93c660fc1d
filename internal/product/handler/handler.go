package handler

import (
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-store-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-store-service/internal/pkg/response"
	"github.com/fekuna/omnipos-store-service/internal/product"
	"github.com/fekuna/omnipos-store-service/internal/product/dto"
	"github.com/gorilla/mux"
)

type ProductHandler struct {
	uc     product.UseCase
	logger logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *ProductHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/products", h.ListProducts).Methods(http.MethodGet)
	router.HandleFunc("/api/products", h.CreateProduct).Methods(http.MethodPost)
	router.HandleFunc("/api/products/{id}", h.GetProduct).Methods(http.MethodGet)
	router.HandleFunc("/api/products/{id}", h.UpdateProduct).Methods(http.MethodPut)
	router.HandleFunc("/api/products/{id}", h.DeleteProduct).Methods(http.MethodDelete)
	router.HandleFunc("/api/products/{id}/stock", h.AdjustStock).Methods(http.MethodPost)
}

// CreateProduct handles POST /api/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input dto.CreateProductInput
	if err := response.Decode(r, &input); err != nil {
		response.Error(w, h.logger, "Invalid request body", err)
		return
	}

	p, err := h.uc.CreateProduct(r.Context(), &input)
	if err != nil {
		response.Error(w, h.logger, "Failed to create product", err)
		return
	}
	response.Created(w, "Product created successfully", p)
}

// GetProduct handles GET /api/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.uc.GetProduct(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, h.logger, "Failed to get product", err)
		return
	}
	response.OK(w, p)
}

// ListProducts handles GET /api/products?q=&categoryId=&inStock=
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	inStock, _ := strconv.ParseBool(q.Get("inStock"))

	products, err := h.uc.ListProducts(r.Context(), &dto.ProductFilters{
		Query:      q.Get("q"),
		CategoryID: q.Get("categoryId"),
		InStock:    inStock,
	})
	if err != nil {
		response.Error(w, h.logger, "Failed to list products", err)
		return
	}
	response.OK(w, products)
}

// UpdateProduct handles PUT /api/products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var input dto.UpdateProductInput
	if err := response.Decode(r, &input); err != nil {
		response.Error(w, h.logger, "Invalid request body", err)
		return
	}
	input.ID = mux.Vars(r)["id"]

	p, err := h.uc.UpdateProduct(r.Context(), &input)
	if err != nil {
		response.Error(w, h.logger, "Failed to update product", err)
		return
	}
	response.OK(w, p)
}

// DeleteProduct handles DELETE /api/products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.DeleteProduct(r.Context(), mux.Vars(r)["id"]); err != nil {
		response.Error(w, h.logger, "Failed to delete product", err)
		return
	}
	response.JSON(w, http.StatusOK, response.Response{Success: true, Message: "Product deleted successfully"})
}

// AdjustStock handles POST /api/products/{id}/stock
func (h *ProductHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	var input dto.AdjustStockInput
	if err := response.Decode(r, &input); err != nil {
		response.Error(w, h.logger, "Invalid request body", err)
		return
	}
	input.ProductID = mux.Vars(r)["id"]

	p, err := h.uc.AdjustStock(r.Context(), &input)
	if err != nil {
		response.Error(w, h.logger, "Failed to adjust stock", err)
		return
	}
	response.OK(w, p)
}
