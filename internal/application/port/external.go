package port

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/garyjia/mrsl-intake/internal/domain/entity"
)

// Document is the binary payload handed to an inference provider
type Document struct {
	MediaType string
	Data      []byte
}

// Base64 returns the standard base64 text of the document bytes for JSON transports
func (d Document) Base64() string {
	return base64.StdEncoding.EncodeToString(d.Data)
}

// InferenceRequest carries everything a hosted model needs for one extraction call
type InferenceRequest struct {
	SystemInstruction string
	TaskPrompt        string
	Document          Document
	// Schema is the JSON Schema the response object must conform to
	Schema map[string]any
	// SchemaName labels the schema for providers that require one
	SchemaName string
}

// InferenceProvider wraps a hosted document-understanding model.
// Generate returns the raw JSON text of the model's answer.
type InferenceProvider interface {
	Name() string
	// HasCredential reports whether the provider was configured with an API key
	HasCredential() bool
	Generate(ctx context.Context, req InferenceRequest) (string, error)
}

// ExtractRequest describes one document to extract
type ExtractRequest struct {
	Filename  string
	MediaType string
	Content   []byte
	// ReferenceDate resolves relative dates; zero means now
	ReferenceDate time.Time
}

// Extractor turns a document into an ExtractionRecord
type Extractor interface {
	Extract(ctx context.Context, req ExtractRequest) (entity.ExtractionRecord, error)
}

// Submitter forwards a reviewed record to the downstream webhook
type Submitter interface {
	Submit(ctx context.Context, record entity.ExtractionRecord, filename string) error
}
