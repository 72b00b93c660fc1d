// Package image uploads product pictures to the image host and returns their public URL.
package image

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/fekuna/omnipos-store-service/internal/pkg/logger"
	"go.uber.org/zap"
)

var ErrUploadFailed = errors.New("image upload failed")

type Config struct {
	UploadURL    string
	UploadPreset string
	Timeout      time.Duration
}

type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
}

type httpUploader struct {
	cfg    Config
	client *http.Client
	logger logger.ZapLogger
}

// NewUploader posts unsigned multipart uploads (file, upload_preset) and reads the
// secure_url of the response.
func NewUploader(cfg Config, log logger.ZapLogger) Uploader {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &httpUploader{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: log,
	}
}

func (u *httpUploader) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", err
	}
	if err := form.WriteField("upload_preset", u.cfg.UploadPreset); err != nil {
		return "", err
	}
	if err := form.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.cfg.UploadURL, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		u.logger.Error("Image host unreachable", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		u.logger.Error("Image host rejected upload",
			zap.String("filename", filename),
			zap.Int("status", resp.StatusCode),
		)
		return "", fmt.Errorf("%w: status %d", ErrUploadFailed, resp.StatusCode)
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrUploadFailed, err)
	}
	if out.SecureURL == "" {
		return "", fmt.Errorf("%w: response carried no secure_url", ErrUploadFailed)
	}
	return out.SecureURL, nil
}
