package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/agendahub/booking-api/internal/config"
	apperrors "github.com/agendahub/booking-api/pkg/errors"
	"github.com/agendahub/booking-api/pkg/metrics"
)

// Client is an HTTP implementation of Gateway.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *zerolog.Logger
	metrics *metrics.Metrics
}

func NewClient(cfg config.StorageConfig, logger *zerolog.Logger, m *metrics.Metrics) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
		metrics: m,
	}
}

type uploadResponse struct {
	URL string `json:"url"`
}

func (c *Client) Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	start := time.Now()
	url, err := c.doUpload(ctx, filename, contentType, r)
	c.observe("upload", start, err)
	return url, err
}

func (c *Client) doUpload(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("failed to copy blob: %w", err)
	}
	if err := writer.WriteField("content_type", contentType); err != nil {
		return "", fmt.Errorf("failed to write form field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/blobs", &body)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", apperrors.Upstream("storage service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", apperrors.Upstream(fmt.Sprintf("storage service returned %d", resp.StatusCode), nil)
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", apperrors.Upstream("failed to decode storage response", err)
	}
	return out.URL, nil
}

func (c *Client) Delete(ctx context.Context, blobID string) error {
	start := time.Now()
	err := c.doDelete(ctx, blobID)
	c.observe("delete", start, err)
	return err
}

func (c *Client) doDelete(ctx context.Context, blobID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/blobs/"+blobID, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.Upstream("storage service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return apperrors.Upstream(fmt.Sprintf("storage service returned %d", resp.StatusCode), nil)
	}
	return nil
}

func (c *Client) observe(operation string, start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.metrics.GatewayRequests.WithLabelValues("storage", operation, status).Inc()
	c.metrics.GatewayLatency.WithLabelValues("storage", operation).Observe(time.Since(start).Seconds())
}
