// Package extraction turns an insurance PDF into an ExtractionRecord through a hosted model.
package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/garyjia/mrsl-intake/internal/application/port"
	"github.com/garyjia/mrsl-intake/internal/domain/classcode"
	"github.com/garyjia/mrsl-intake/internal/domain/entity"
)

// Client sends one document per call to an inference provider and validates the answer.
// A failed call is never retried and malformed output is never repaired.
type Client struct {
	provider      port.InferenceProvider
	validator     *Validator
	codes         []classcode.Entry
	referenceDate time.Time
	now           func() time.Time
	logger        *zap.Logger
}

// Option configures the Client
type Option func(*Client)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithReferenceDate pins the date used to resolve relative phrases.
// A request's own ReferenceDate still takes precedence.
func WithReferenceDate(date time.Time) Option {
	return func(c *Client) {
		c.referenceDate = date
	}
}

// WithClock overrides the source of the current time
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithCodes overrides the classification list given to the model
func WithCodes(codes []classcode.Entry) Option {
	return func(c *Client) {
		c.codes = codes
	}
}

// NewClient creates an extraction client over provider
func NewClient(provider port.InferenceProvider, opts ...Option) (*Client, error) {
	if provider == nil {
		return nil, fmt.Errorf("inference provider is required")
	}
	validator, err := NewValidator(ResponseSchema())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare response schema: %w", err)
	}

	c := &Client{
		provider:  provider,
		validator: validator,
		codes:     classcode.All(),
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Extract sends the document to the provider and returns the validated record
func (c *Client) Extract(ctx context.Context, req port.ExtractRequest) (entity.ExtractionRecord, error) {
	if !c.provider.HasCredential() {
		c.logger.Error("Inference credential missing", zap.String("provider", c.provider.Name()))
		return entity.ExtractionRecord{}, &ConfigurationError{Provider: c.provider.Name()}
	}

	reqID := uuid.NewString()
	start := time.Now()
	refDate := c.resolveReferenceDate(req.ReferenceDate)

	c.logger.Info("Extraction started",
		zap.String("req_id", reqID),
		zap.String("provider", c.provider.Name()),
		zap.String("filename", req.Filename),
		zap.Int("size_bytes", len(req.Content)),
		zap.String("reference_date", refDate.Format(ReferenceDateLayout)))

	mediaType := req.MediaType
	if mediaType == "" {
		mediaType = "application/pdf"
	}

	text, err := c.provider.Generate(ctx, port.InferenceRequest{
		SystemInstruction: BuildInstruction(c.codes, refDate),
		TaskPrompt:        TaskPrompt,
		Document:          port.Document{MediaType: mediaType, Data: req.Content},
		Schema:            ResponseSchema(),
		SchemaName:        SchemaName,
	})
	if err != nil {
		c.logger.Error("Inference call failed",
			zap.String("req_id", reqID),
			zap.Error(err),
			zap.Int64("elapsed_ms", time.Since(start).Milliseconds()))
		return entity.ExtractionRecord{}, &ExtractionError{Stage: StageTransport, Err: err}
	}

	record, err := c.parse(text)
	if err != nil {
		c.logger.Error("Model response rejected",
			zap.String("req_id", reqID),
			zap.Error(err),
			zap.Int("response_len", len(text)),
			zap.Int64("elapsed_ms", time.Since(start).Milliseconds()))
		return entity.ExtractionRecord{}, err
	}

	c.logger.Info("Extraction completed",
		zap.String("req_id", reqID),
		zap.Int("null_fields", countNulls(record)),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()))

	return record, nil
}

// parse validates raw model text and converts it into a record
func (c *Client) parse(text string) (entity.ExtractionRecord, error) {
	raw := []byte(strings.TrimSpace(text))
	if len(raw) == 0 {
		return entity.ExtractionRecord{}, &ExtractionError{Stage: StageEmpty}
	}

	doc, err := c.validator.Decode(raw)
	if err != nil {
		return entity.ExtractionRecord{}, &ExtractionError{Stage: StageDecode, Err: err}
	}
	if err := c.validator.Validate(doc); err != nil {
		return entity.ExtractionRecord{}, &ExtractionError{Stage: StageSchema, Err: err}
	}

	var record entity.ExtractionRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return entity.ExtractionRecord{}, &ExtractionError{Stage: StageDecode, Err: err}
	}
	return normalize(record), nil
}

func (c *Client) resolveReferenceDate(requested time.Time) time.Time {
	switch {
	case !requested.IsZero():
		return requested
	case !c.referenceDate.IsZero():
		return c.referenceDate
	default:
		return c.now()
	}
}

// normalize turns blank strings into nulls so "" never stands in for a missing value
func normalize(record entity.ExtractionRecord) entity.ExtractionRecord {
	for _, f := range entity.Fields {
		if v, ok := record.Get(f); ok && strings.TrimSpace(v) == "" {
			record, _ = record.With(f, "")
		}
	}
	return record
}

func countNulls(record entity.ExtractionRecord) int {
	n := 0
	for _, f := range entity.Fields {
		if _, ok := record.Get(f); !ok {
			n++
		}
	}
	return n
}
