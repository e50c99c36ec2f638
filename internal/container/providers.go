package container

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/mrsl-intake/internal/application/dispatcher"
	"github.com/garyjia/mrsl-intake/internal/application/port"
	"github.com/garyjia/mrsl-intake/internal/application/service"
	"github.com/garyjia/mrsl-intake/internal/extraction"
	"github.com/garyjia/mrsl-intake/internal/infrastructure/external/gemini"
	"github.com/garyjia/mrsl-intake/internal/infrastructure/external/openai"
	"github.com/garyjia/mrsl-intake/internal/infrastructure/external/webhook"
	"github.com/garyjia/mrsl-intake/internal/intake"
	"github.com/garyjia/mrsl-intake/internal/pdf"
)

// ProvideInferenceProvider creates the hosted model client named by cfg.Provider.
// Returns port.InferenceProvider implementation.
func ProvideInferenceProvider(cfg *InferenceConfig, renderer pdf.Renderer, logger *zap.Logger) (port.InferenceProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("inference config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	switch cfg.Provider {
	case ProviderGemini:
		return gemini.NewClient(gemini.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Timeout:     cfg.Timeout,
			Temperature: cfg.Temperature,
		}, logger), nil

	case ProviderOpenAI:
		if renderer == nil {
			return nil, fmt.Errorf("pdf renderer is required for %s", cfg.Provider)
		}
		var temperature float32
		if cfg.Temperature != nil {
			temperature = *cfg.Temperature
		}
		return openai.NewProvider(openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Timeout:     cfg.Timeout,
			MaxPages:    cfg.MaxPages,
			Temperature: temperature,
		}, renderer, logger), nil
	}

	return nil, fmt.Errorf("unknown inference provider %q", cfg.Provider)
}

// ProvideExtractor creates the extraction client over provider.
func ProvideExtractor(provider port.InferenceProvider, cfg *ExtractionConfig, logger *zap.Logger) (*extraction.Client, error) {
	if provider == nil {
		return nil, fmt.Errorf("inference provider is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	opts := []extraction.Option{extraction.WithLogger(logger)}
	if cfg != nil && !cfg.ReferenceDate.IsZero() {
		opts = append(opts, extraction.WithReferenceDate(cfg.ReferenceDate))
	}
	return extraction.NewClient(provider, opts...)
}

// ProvideSubmitter creates the webhook client.
// Returns port.Submitter implementation.
func ProvideSubmitter(cfg *WebhookConfig, logger *zap.Logger) (port.Submitter, error) {
	if cfg == nil {
		return nil, fmt.Errorf("webhook config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return webhook.NewClient(webhook.Config{
		URL:           cfg.URL,
		Timeout:       cfg.Timeout,
		SigningSecret: cfg.SigningSecret,
	}, logger), nil
}

// ProvideDispatcher creates the event dispatcher.
// Returns dispatcher.Dispatcher implementation.
func ProvideDispatcher(logger *zap.Logger) (dispatcher.Dispatcher, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return dispatcher.NewDispatcher(
		dispatcher.WithLogger(logger.Named("dispatcher")),
	), nil
}

// SessionDeps holds dependencies required for creating the review session.
type SessionDeps struct {
	Intake     *intake.Intake
	Extractor  port.Extractor
	Submitter  port.Submitter
	Dispatcher dispatcher.Dispatcher
	Logger     *zap.Logger
}

// SessionBundle groups the session and the notification feed subscribed to its events.
type SessionBundle struct {
	Session       service.Session
	Notifications service.NotificationService
}

// ProvideSession creates the review session and its notification feed.
// The feed subscribes before the session publishes anything.
func ProvideSession(deps *SessionDeps) (*SessionBundle, error) {
	if deps == nil {
		return nil, fmt.Errorf("session dependencies are required")
	}
	if deps.Intake == nil {
		return nil, fmt.Errorf("intake is required")
	}
	if deps.Extractor == nil {
		return nil, fmt.Errorf("extractor is required")
	}
	if deps.Submitter == nil {
		return nil, fmt.Errorf("submitter is required")
	}
	if deps.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	notifications := service.NewNotificationService(deps.Dispatcher, service.DefaultFeedCapacity)
	session := service.NewSession(
		deps.Intake,
		deps.Extractor,
		deps.Submitter,
		deps.Dispatcher,
		deps.Logger.Named("session"),
	)

	return &SessionBundle{
		Session:       session,
		Notifications: notifications,
	}, nil
}
