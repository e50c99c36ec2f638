// Package container provides dependency injection and lifecycle management
// for the MRSL document intake tool.
package container

import (
	"fmt"
	"time"
)

// Provider names accepted by InferenceConfig.Provider
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config holds all configuration for the Container.
// It aggregates configurations for all subsystems.
type Config struct {
	// Inference configuration
	Inference InferenceConfig

	// Extraction prompt configuration
	Extraction ExtractionConfig

	// Webhook configuration
	Webhook WebhookConfig

	// Upload limits
	Upload UploadConfig

	// Server configuration
	Server ServerConfig
}

// InferenceConfig holds hosted model settings.
type InferenceConfig struct {
	// Provider is gemini or openai
	Provider string

	// APIKey may be empty; extraction then fails with a configuration error
	APIKey string

	// Model overrides the provider default
	Model string

	// BaseURL overrides the provider endpoint
	BaseURL string

	// Timeout for one inference call
	Timeout time.Duration

	// MaxPages caps rendered pages for image based providers
	MaxPages int

	// Temperature is left to the provider when nil
	Temperature *float32
}

// ExtractionConfig holds prompt inputs.
type ExtractionConfig struct {
	// ReferenceDate pins the date used for relative expressions; zero means today
	ReferenceDate time.Time
}

// WebhookConfig holds the submission target.
type WebhookConfig struct {
	URL           string
	Timeout       time.Duration
	SigningSecret string
}

// UploadConfig holds intake limits.
type UploadConfig struct {
	MaxBytes int64
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host to bind to
	Host string

	// Port to listen on
	Port int

	// ReadTimeout for HTTP server
	ReadTimeout time.Duration

	// WriteTimeout for HTTP server
	WriteTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Inference: InferenceConfig{
			Provider: ProviderGemini,
			Timeout:  120 * time.Second,
			MaxPages: 4,
		},
		Webhook: WebhookConfig{
			Timeout: 30 * time.Second,
		},
		Upload: UploadConfig{
			MaxBytes: 20 << 20,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 150 * time.Second,
		},
	}
}

// Validate checks that required configuration values are present.
// The API key and webhook URL are checked where they are used.
func (c *Config) Validate() error {
	switch c.Inference.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown inference provider %q", c.Inference.Provider)
	}

	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload.max_bytes must be positive")
	}

	return nil
}
