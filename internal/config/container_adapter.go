package config

import (
	"github.com/garyjia/mrsl-intake/internal/container"
)

// ToContainerConfig converts the application Config to a container.Config.
// This provides a bridge between the file-based config loaded by viper
// and the container's configuration structure.
func (c *Config) ToContainerConfig() (*container.Config, error) {
	referenceDate, err := c.Extraction.ParseReferenceDate()
	if err != nil {
		return nil, err
	}

	return &container.Config{
		Inference: container.InferenceConfig{
			Provider:    c.Inference.Provider,
			APIKey:      c.Inference.APIKey,
			Model:       c.Inference.Model,
			BaseURL:     c.Inference.BaseURL,
			Timeout:     c.Inference.Timeout,
			MaxPages:    c.Inference.MaxPages,
			Temperature: c.Inference.Temperature,
		},
		Extraction: container.ExtractionConfig{
			ReferenceDate: referenceDate,
		},
		Webhook: container.WebhookConfig{
			URL:           c.Webhook.URL,
			Timeout:       c.Webhook.Timeout,
			SigningSecret: c.Webhook.SigningSecret,
		},
		Upload: container.UploadConfig{
			MaxBytes: c.Upload.MaxBytes,
		},
		Server: container.ServerConfig{
			Host:         c.Server.Host,
			Port:         c.Server.Port,
			ReadTimeout:  c.Server.ReadTimeout,
			WriteTimeout: c.Server.WriteTimeout,
		},
	}, nil
}
