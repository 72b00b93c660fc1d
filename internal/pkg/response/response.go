// Package response writes the JSON envelope shared by every HTTP handler and maps domain
// errors to status codes.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/fekuna/omnipos-store-service/internal/inflight"
	"github.com/fekuna/omnipos-store-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-store-service/internal/pkg/validator"
	"github.com/fekuna/omnipos-store-service/internal/store"
	"go.uber.org/zap"
)

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// statusByError holds domain errors registered by packages that sit above this one.
var statusByError = map[error]int{
	store.ErrNotFound:           http.StatusNotFound,
	store.ErrPreconditionFailed: http.StatusConflict,
	store.ErrConflict:           http.StatusConflict,
	inflight.ErrInFlight:        http.StatusConflict,
}

// Register maps err (and anything wrapping it) to status. Call from package init only.
func Register(err error, status int) {
	statusByError[err] = status
}

func StatusFor(err error) int {
	var verr *validator.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}
	for target, status := range statusByError {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func OK(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, Response{Success: true, Data: data})
}

func Created(w http.ResponseWriter, message string, data interface{}) {
	JSON(w, http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

// Error writes err with its mapped status. Server-side failures are logged; their
// details are not sent to the client.
func Error(w http.ResponseWriter, log logger.ZapLogger, msg string, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error(msg, zap.Error(err))
		JSON(w, status, Response{Success: false, Error: msg})
		return
	}
	JSON(w, status, Response{Success: false, Error: err.Error()})
}

// Decode reads a JSON request body into v. A malformed body is a validation error.
func Decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return validator.New("body", "is required")
		}
		return validator.New("body", fmt.Sprintf("invalid JSON: %v", err))
	}
	return nil
}

// DecodeOptional is Decode for endpoints whose body may be omitted.
func DecodeOptional(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return validator.New("body", fmt.Sprintf("invalid JSON: %v", err))
}
