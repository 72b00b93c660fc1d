package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-store-service/internal/events"
	"github.com/fekuna/omnipos-store-service/internal/loan/repository"
	"github.com/fekuna/omnipos-store-service/internal/loan/usecase"
	"github.com/fekuna/omnipos-store-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-store-service/internal/store/memory"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func newRouter() *mux.Router {
	s := memory.New()
	uc := usecase.NewLoanUseCase(repository.NewDocumentRepository(s), s, events.NewNop(), logger.NewNop())
	router := mux.NewRouter()
	NewLoanHandler(uc, logger.NewNop()).RegisterRoutes(router)
	return router
}

func do(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestLoanEndpoints(t *testing.T) {
	router := newRouter()

	rec, env := do(t, router, http.MethodPost, "/api/loans", `{"debtorName":"Rosa","bottleType":"2L","guaranteeAmount":"10"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.ID)

	rec, env = do(t, router, http.MethodGet, "/api/loans", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Loans          []json.RawMessage `json:"loans"`
		TotalGuarantee string            `json:"totalGuarantee"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list.Loans, 1)
	assert.Equal(t, "10", list.TotalGuarantee)

	rec, env = do(t, router, http.MethodDelete, "/api/loans/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
}

func TestCreateLoanRejectsMissingFields(t *testing.T) {
	rec, env := do(t, newRouter(), http.MethodPost, "/api/loans", `{"bottleType":"2L"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "debtorName")
}
