package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-store-service/internal/image"
	"github.com/fekuna/omnipos-store-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-store-service/internal/pkg/response"
	"github.com/fekuna/omnipos-store-service/internal/pkg/validator"
	"github.com/gorilla/mux"
)

const maxUploadSize = 10 << 20

func init() {
	response.Register(image.ErrUploadFailed, http.StatusBadGateway)
}

type ImageHandler struct {
	uploader image.Uploader
	logger   logger.ZapLogger
}

func NewImageHandler(uploader image.Uploader, log logger.ZapLogger) *ImageHandler {
	return &ImageHandler{
		uploader: uploader,
		logger:   log,
	}
}

func (h *ImageHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/images", h.Upload).Methods(http.MethodPost)
}

// Upload handles POST /api/images with a multipart "file" field.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		response.Error(w, h.logger, "Invalid upload", validator.New("file", "is required"))
		return
	}
	defer file.Close()

	url, err := h.uploader.Upload(r.Context(), header.Filename, file)
	if err != nil {
		response.Error(w, h.logger, "Failed to upload image", err)
		return
	}
	response.Created(w, "Image uploaded successfully", map[string]string{"url": url})
}
