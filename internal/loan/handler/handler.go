package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-store-service/internal/loan"
	"github.com/fekuna/omnipos-store-service/internal/loan/dto"
	"github.com/fekuna/omnipos-store-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-store-service/internal/pkg/response"
	"github.com/gorilla/mux"
)

type LoanHandler struct {
	uc     loan.UseCase
	logger logger.ZapLogger
}

func NewLoanHandler(uc loan.UseCase, log logger.ZapLogger) *LoanHandler {
	return &LoanHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *LoanHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/loans", h.ListLoans).Methods(http.MethodGet)
	router.HandleFunc("/api/loans", h.CreateLoan).Methods(http.MethodPost)
	router.HandleFunc("/api/loans/{id}", h.MarkReturned).Methods(http.MethodDelete)
}

// CreateLoan handles POST /api/loans
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var input dto.CreateLoanInput
	if err := response.Decode(r, &input); err != nil {
		response.Error(w, h.logger, "Invalid request body", err)
		return
	}

	l, err := h.uc.CreateLoan(r.Context(), &input)
	if err != nil {
		response.Error(w, h.logger, "Failed to create loan", err)
		return
	}
	response.Created(w, "Loan created successfully", l)
}

// ListLoans handles GET /api/loans
func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	list, err := h.uc.ListLoans(r.Context())
	if err != nil {
		response.Error(w, h.logger, "Failed to list loans", err)
		return
	}
	response.OK(w, list)
}

// MarkReturned handles DELETE /api/loans/{id}
func (h *LoanHandler) MarkReturned(w http.ResponseWriter, r *http.Request) {
	result, err := h.uc.MarkReturned(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, h.logger, "Failed to return loan", err)
		return
	}
	response.JSON(w, http.StatusOK, response.Response{Success: true, Message: "Loan returned", Data: result})
}
