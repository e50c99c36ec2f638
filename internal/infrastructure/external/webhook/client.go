// Package webhook posts reviewed extraction records to the downstream endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/garyjia/mrsl-intake/internal/domain/entity"
)

const (
	DefaultTimeout = 30 * time.Second

	maxErrorBody = 1024
)

// Config for the webhook client
type Config struct {
	URL           string
	Timeout       time.Duration
	SigningSecret string
}

// Client submits records with a single POST. There is no retry.
type Client struct {
	cfg    Config
	http   *http.Client
	signer *Signer
	now    func() time.Time
	logger *zap.Logger
}

// Option configures the Client
type Option func(*Client)

// WithClock overrides the source of the submission timestamp
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient creates a webhook client
func NewClient(cfg Config, logger *zap.Logger, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		signer: NewSigner(cfg.SigningSecret),
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit posts the record with its provenance. Any 2xx status is success.
func (c *Client) Submit(ctx context.Context, record entity.ExtractionRecord, filename string) error {
	at := c.now()
	payload, err := entity.NewSubmissionPayload(record, filename, at)
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return &SubmissionError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	c.signer.Sign(req, body, at)

	reqID := uuid.NewString()
	start := time.Now()
	c.logger.Info("Submitting record",
		zap.String("req_id", reqID),
		zap.String("source_filename", filename),
		zap.String("extracted_at", payload.ExtractedAt))

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("Webhook request failed",
			zap.String("req_id", reqID),
			zap.Error(err),
			zap.Int64("elapsed_ms", time.Since(start).Milliseconds()))
		return &SubmissionError{Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("webhook response body close error", zap.Error(err))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Error("Webhook rejected submission",
			zap.String("req_id", reqID),
			zap.Int("status", resp.StatusCode),
			zap.Int64("elapsed_ms", time.Since(start).Milliseconds()))
		return &SubmissionError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	c.logger.Info("Record submitted",
		zap.String("req_id", reqID),
		zap.Int("status", resp.StatusCode),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()))
	return nil
}
