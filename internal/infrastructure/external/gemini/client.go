// Package gemini calls the Gemini generateContent REST endpoint with an inline PDF.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/mrsl-intake/internal/application/port"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-3.1-pro-preview"
	DefaultTimeout = 120 * time.Second

	// maxErrorBody bounds how much of a failed response is kept in the error
	maxErrorBody = 2048
)

// Config for the Gemini client
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	Temperature *float32
}

// Client implements port.InferenceProvider for Gemini
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates a Gemini client, filling defaults for empty settings
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

func (c *Client) Name() string { return "gemini" }

func (c *Client) HasCredential() bool {
	return strings.TrimSpace(c.cfg.APIKey) != ""
}

// Generate sends the document inline and returns the concatenated text parts of the first candidate
func (c *Client) Generate(ctx context.Context, req port.InferenceRequest) (string, error) {
	body := generateRequest{
		Contents: []content{{
			Parts: []part{
				{InlineData: &inlineData{
					MimeType: req.Document.MediaType,
					Data:     req.Document.Base64(),
				}},
				{Text: req.TaskPrompt},
			},
		}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   ToResponseSchema(req.Schema),
			Temperature:      c.cfg.Temperature,
		},
	}
	if req.SystemInstruction != "" {
		body.SystemInstruction = &content{Parts: []part{{Text: req.SystemInstruction}}}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(strings.TrimPrefix(c.cfg.Model, "models/")))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.cfg.APIKey)

	c.logger.Debug("Calling Gemini",
		zap.String("model", c.cfg.Model),
		zap.Int("request_bytes", len(payload)))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini http error: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("gemini response body close error", zap.Error(err))
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read gemini response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("gemini status %d: %s", resp.StatusCode, truncate(raw, maxErrorBody))
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if len(out.Candidates) == 0 {
		if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("gemini blocked the prompt: %s", out.PromptFeedback.BlockReason)
		}
		return "", nil
	}

	var text strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}

	c.logger.Debug("Gemini responded",
		zap.String("finish_reason", out.Candidates[0].FinishReason),
		zap.Int("text_len", text.Len()))

	return text.String(), nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
