package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-store-service/internal/category"
	"github.com/fekuna/omnipos-store-service/internal/category/dto"
	"github.com/fekuna/omnipos-store-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-store-service/internal/pkg/response"
	"github.com/gorilla/mux"
)

type CategoryHandler struct {
	uc     category.UseCase
	logger logger.ZapLogger
}

func NewCategoryHandler(uc category.UseCase, log logger.ZapLogger) *CategoryHandler {
	return &CategoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *CategoryHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/categories", h.ListCategories).Methods(http.MethodGet)
	router.HandleFunc("/api/categories", h.CreateCategory).Methods(http.MethodPost)
	router.HandleFunc("/api/categories/{id}", h.GetCategory).Methods(http.MethodGet)
	router.HandleFunc("/api/categories/{id}", h.UpdateCategory).Methods(http.MethodPut)
	router.HandleFunc("/api/categories/{id}", h.DeleteCategory).Methods(http.MethodDelete)
}

// CreateCategory handles POST /api/categories
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input dto.CreateCategoryInput
	if err := response.Decode(r, &input); err != nil {
		response.Error(w, h.logger, "Invalid request body", err)
		return
	}

	cat, err := h.uc.CreateCategory(r.Context(), &input)
	if err != nil {
		response.Error(w, h.logger, "Failed to create category", err)
		return
	}
	response.Created(w, "Category created successfully", cat)
}

// GetCategory handles GET /api/categories/{id}
func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := h.uc.GetCategory(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, h.logger, "Failed to get category", err)
		return
	}
	response.OK(w, cat)
}

// ListCategories handles GET /api/categories
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.uc.ListCategories(r.Context())
	if err != nil {
		response.Error(w, h.logger, "Failed to list categories", err)
		return
	}
	response.OK(w, cats)
}

// UpdateCategory handles PUT /api/categories/{id}
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var input dto.UpdateCategoryInput
	if err := response.Decode(r, &input); err != nil {
		response.Error(w, h.logger, "Invalid request body", err)
		return
	}
	input.ID = mux.Vars(r)["id"]

	cat, err := h.uc.UpdateCategory(r.Context(), &input)
	if err != nil {
		response.Error(w, h.logger, "Failed to update category", err)
		return
	}
	response.OK(w, cat)
}

// DeleteCategory handles DELETE /api/categories/{id}
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.DeleteCategory(r.Context(), mux.Vars(r)["id"]); err != nil {
		response.Error(w, h.logger, "Failed to delete category", err)
		return
	}
	response.JSON(w, http.StatusOK, response.Response{Success: true, Message: "Category deleted successfully"})
}
