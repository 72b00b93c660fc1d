package image

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-store-service/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "store", r.FormValue("upload_preset"))

		f, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "cola.png", header.Filename)
		assert.Equal(t, "png-bytes", string(data))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"secure_url":"https://img.example/cola.png"}`))
	}))
	defer srv.Close()

	u := NewUploader(Config{UploadURL: srv.URL, UploadPreset: "store"}, logger.NewNop())
	url, err := u.Upload(context.Background(), "cola.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/cola.png", url)
}

func TestUploadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	u := NewUploader(Config{UploadURL: srv.URL, UploadPreset: "store"}, logger.NewNop())
	_, err := u.Upload(context.Background(), "cola.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUploadFailed)
}
