package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"INFERENCE_PROVIDER", "INFERENCE_API_KEY", "INFERENCE_MODEL",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "WEBHOOK_URL", "WEBHOOK_SIGNING_SECRET",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_FileAndDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
inference:
  provider: openai
  api_key: sk-file
  temperature: 0.2
extraction:
  reference_date: "2024-03-01"
webhook:
  url: https://hooks.example.com/mrsl
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.Inference.Provider)
	assert.Equal(t, "sk-file", cfg.Inference.APIKey)
	require.NotNil(t, cfg.Inference.Temperature)
	assert.InDelta(t, 0.2, *cfg.Inference.Temperature, 0.0001)
	assert.Equal(t, 4, cfg.Inference.MaxPages)
	assert.Equal(t, 120*time.Second, cfg.Inference.Timeout)
	assert.Equal(t, "https://hooks.example.com/mrsl", cfg.Webhook.URL)
	assert.Equal(t, 30*time.Second, cfg.Webhook.Timeout)
	assert.Equal(t, int64(20<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())

	date, err := cfg.Extraction.ParseReferenceDate()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), date)
}

func TestLoad_MissingFileUsesEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEBHOOK_URL", "http://localhost:9000/hook")
	t.Setenv("GEMINI_API_KEY", "gm-env")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.Inference.Provider)
	assert.Equal(t, "gm-env", cfg.Inference.APIKey)
	assert.Equal(t, "http://localhost:9000/hook", cfg.Webhook.URL)
	assert.Nil(t, cfg.Inference.Temperature)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("INFERENCE_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("WEBHOOK_URL", "https://env.example.com/hook")
	path := writeConfig(t, `
inference:
  provider: gemini
webhook:
  url: https://file.example.com/hook
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.Inference.Provider)
	assert.Equal(t, "sk-env", cfg.Inference.APIKey)
	assert.Equal(t, "https://env.example.com/hook", cfg.Webhook.URL)
}

func TestLoad_MissingKeyIsNotAStartupError(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEBHOOK_URL", "https://hooks.example.com/mrsl")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Inference.APIKey)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing webhook",
			content: "inference:\n  provider: gemini\n",
			wantErr: "webhook.url is required",
		},
		{
			name:    "relative webhook",
			content: "webhook:\n  url: /hook\n",
			wantErr: "absolute http(s) URL",
		},
		{
			name:    "non http webhook",
			content: "webhook:\n  url: ftp://example.com/hook\n",
			wantErr: "absolute http(s) URL",
		},
		{
			name:    "unknown provider",
			content: "inference:\n  provider: claude\nwebhook:\n  url: https://example.com\n",
			wantErr: "inference.provider",
		},
		{
			name:    "bad reference date",
			content: "extraction:\n  reference_date: 01/03/2024\nwebhook:\n  url: https://example.com\n",
			wantErr: "reference_date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadForExtraction_WebhookOptional(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadForExtraction(writeConfig(t, "inference:\n  provider: gemini\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Webhook.URL)
}

func TestToContainerConfig(t *testing.T) {
	temp := float32(0.1)
	cfg := &Config{
		Server:     ServerConfig{Host: "127.0.0.1", Port: 9090},
		Inference:  InferenceConfig{Provider: ProviderGemini, APIKey: "k", Temperature: &temp},
		Extraction: ExtractionConfig{ReferenceDate: "2025-06-30"},
		Webhook:    WebhookConfig{URL: "https://example.com/hook", SigningSecret: "s"},
		Upload:     UploadConfig{MaxBytes: 1024},
	}

	cc, err := cfg.ToContainerConfig()
	require.NoError(t, err)
	assert.Equal(t, "gemini", cc.Inference.Provider)
	assert.Equal(t, &temp, cc.Inference.Temperature)
	assert.Equal(t, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), cc.Extraction.ReferenceDate)
	assert.Equal(t, "s", cc.Webhook.SigningSecret)
	assert.Equal(t, int64(1024), cc.Upload.MaxBytes)
	assert.Equal(t, 9090, cc.Server.Port)
	assert.NoError(t, cc.Validate())

	cfg.Extraction.ReferenceDate = "tomorrow"
	_, err = cfg.ToContainerConfig()
	assert.Error(t, err)
}
