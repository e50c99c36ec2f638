package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Inference provider names
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// ReferenceDateLayout is the layout of extraction.reference_date
const ReferenceDateLayout = "2006-01-02"

// Config holds all application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Inference  InferenceConfig  `mapstructure:"inference"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
	Webhook    WebhookConfig    `mapstructure:"webhook"`
	Upload     UploadConfig     `mapstructure:"upload"`
	Logger     LoggerConfig     `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// InferenceConfig holds the hosted model configuration
type InferenceConfig struct {
	Provider    string        `mapstructure:"provider"` // gemini or openai
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxPages    int           `mapstructure:"max_pages"` // openai only
	Temperature *float32      `mapstructure:"temperature"`
}

// ExtractionConfig holds prompt inputs
type ExtractionConfig struct {
	// ReferenceDate pins the date relative expressions resolve against (YYYY-MM-DD).
	// Empty means the current date at call time.
	ReferenceDate string `mapstructure:"reference_date"`
}

// WebhookConfig holds the submission target
type WebhookConfig struct {
	URL           string        `mapstructure:"url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	SigningSecret string        `mapstructure:"signing_secret"`
}

// UploadConfig holds intake limits
type UploadConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from an optional YAML file, a .env file and environment variables.
// A missing config file is not an error; defaults and the environment still apply.
func Load(configPath string) (*Config, error) {
	cfg, err := read(configPath)
	if err != nil {
		return nil, err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadForExtraction loads configuration for commands that never submit,
// so the webhook target may be absent.
func LoadForExtraction(configPath string) (*Config, error) {
	cfg, err := read(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateInference(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func read(configPath string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults
	setDefaults(v)

	// Read config file
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	// Override with environment variables
	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.resolveAPIKey()

	return &cfg, nil
}

// loadDotEnv exports variables from path without overriding the process environment
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := gotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 150*time.Second)

	// Inference defaults
	v.SetDefault("inference.provider", ProviderGemini)
	v.SetDefault("inference.timeout", 120*time.Second)
	v.SetDefault("inference.max_pages", 4)

	// Webhook defaults
	v.SetDefault("webhook.timeout", 30*time.Second)

	// Upload defaults
	v.SetDefault("upload.max_bytes", 20<<20)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars(v *viper.Viper) error {
	bindings := map[string][]string{
		"inference.provider":     {"INFERENCE_PROVIDER"},
		"inference.api_key":      {"INFERENCE_API_KEY"},
		"inference.model":        {"INFERENCE_MODEL"},
		"webhook.url":            {"WEBHOOK_URL"},
		"webhook.signing_secret": {"WEBHOOK_SIGNING_SECRET"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	return nil
}

// resolveAPIKey falls back to the provider specific environment variable
func (c *Config) resolveAPIKey() {
	c.Inference.Provider = strings.ToLower(strings.TrimSpace(c.Inference.Provider))
	if c.Inference.APIKey != "" {
		return
	}
	switch c.Inference.Provider {
	case ProviderGemini:
		c.Inference.APIKey = os.Getenv("GEMINI_API_KEY")
	case ProviderOpenAI:
		c.Inference.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

// Validate validates the configuration. The inference key is checked when extraction runs.
func (c *Config) Validate() error {
	if err := c.ValidateInference(); err != nil {
		return err
	}

	// Validate webhook target
	if c.Webhook.URL == "" {
		return fmt.Errorf("webhook.url is required")
	}
	u, err := url.Parse(c.Webhook.URL)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("webhook.url must be an absolute http(s) URL, got %q", c.Webhook.URL)
	}

	return nil
}

// ValidateInference validates everything extraction depends on except the key
func (c *Config) ValidateInference() error {
	switch c.Inference.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("inference.provider must be %q or %q, got %q",
			ProviderGemini, ProviderOpenAI, c.Inference.Provider)
	}

	if _, err := c.Extraction.ParseReferenceDate(); err != nil {
		return err
	}

	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload.max_bytes must be positive")
	}

	return nil
}

// ParseReferenceDate returns the pinned reference date, or the zero time when none is set
func (e ExtractionConfig) ParseReferenceDate() (time.Time, error) {
	if strings.TrimSpace(e.ReferenceDate) == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(ReferenceDateLayout, strings.TrimSpace(e.ReferenceDate))
	if err != nil {
		return time.Time{}, fmt.Errorf("extraction.reference_date must be YYYY-MM-DD: %w", err)
	}
	return t, nil
}

// Address returns the listen address of the HTTP server
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
