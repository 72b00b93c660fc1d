package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-store-service/internal/inflight"
	"github.com/fekuna/omnipos-store-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-store-service/internal/pkg/validator"
	"github.com/fekuna/omnipos-store-service/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("get: %w", store.ErrNotFound), http.StatusNotFound},
		{"precondition", store.ErrPreconditionFailed, http.StatusConflict},
		{"in flight", inflight.ErrInFlight, http.StatusConflict},
		{"validation", validator.New("name", "is required"), http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestErrorHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, logger.NewNop(), "Failed to list products", errors.New("pq: connection refused"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "Failed to list products", body.Error)
}

func TestDecode(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"cola"}`))
	require.NoError(t, Decode(req, &v))
	assert.Equal(t, "cola", v.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	err := Decode(req, &v)
	assert.Equal(t, http.StatusBadRequest, StatusFor(err))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	err = Decode(req, &v)
	assert.Equal(t, http.StatusBadRequest, StatusFor(err))
}

func TestDecodeOptional(t *testing.T) {
	var body struct {
		Items []string `json:"items"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	require.NoError(t, DecodeOptional(r, &body))
	assert.Nil(t, body.Items)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"items":["a"]}`))
	require.NoError(t, DecodeOptional(r, &body))
	assert.Equal(t, []string{"a"}, body.Items)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"items":`))
	var verr *validator.ValidationError
	assert.ErrorAs(t, DecodeOptional(r, &body), &verr)
}
