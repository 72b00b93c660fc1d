package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fekuna/omnipos-store-service/internal/pkg/logger"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareChain(t *testing.T) {
	log := logger.NewNop()
	router := mux.NewRouter()
	router.Use(Recoverer(log), HTTPLogger(log))
	router.HandleFunc("/api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	router.HandleFunc("/panic", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/abc", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStatusRecorderFlushes(t *testing.T) {
	rec := httptest.NewRecorder()
	var w http.ResponseWriter = &statusRecorder{ResponseWriter: rec, status: http.StatusOK}

	f, ok := w.(http.Flusher)
	assert.True(t, ok)
	f.Flush()
	assert.True(t, rec.Flushed)
}
