package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/garyjia/mrsl-intake/internal/application/dispatcher"
	"github.com/garyjia/mrsl-intake/internal/application/port"
	"github.com/garyjia/mrsl-intake/internal/application/service"
	"github.com/garyjia/mrsl-intake/internal/export"
	"github.com/garyjia/mrsl-intake/internal/extraction"
	"github.com/garyjia/mrsl-intake/internal/intake"
	"github.com/garyjia/mrsl-intake/internal/pdf"
)

// Container manages all application dependencies and lifecycle.
// Components are initialized in order and torn down in reverse.
type Container struct {
	config *Config
	logger *zap.Logger

	// Infrastructure
	pdfReader *pdf.Reader
	intake    *intake.Intake
	provider  port.InferenceProvider
	submitter port.Submitter
	exporter  *export.Writer

	// Application
	extractor     *extraction.Client
	dispatcher    dispatcher.Dispatcher
	session       service.Session
	notifications service.NotificationService

	// Lifecycle
	mu     sync.RWMutex
	ready  atomic.Bool
	closed atomic.Bool
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components.
// Components are initialized in dependency order:
// 1. PDF reader and intake
// 2. External clients (inference provider, webhook)
// 3. Extraction client
// 4. Event dispatcher, session and notification feed
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}

	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization")

	// Step 1: Initialize intake
	c.pdfReader = pdf.NewReader(c.logger.Named("pdf"))
	c.intake = intake.New(c.config.Upload.MaxBytes, c.pdfReader, c.logger.Named("intake"))
	c.exporter = export.NewWriter(c.logger.Named("export"))

	// Step 2: Initialize external clients
	if err := c.initExternalClients(); err != nil {
		return fmt.Errorf("failed to initialize external clients: %w", err)
	}
	c.logger.Info("External clients initialized",
		zap.String("provider", c.provider.Name()),
		zap.Bool("credential_present", c.provider.HasCredential()))

	// Step 3: Initialize extraction
	extractor, err := ProvideExtractor(c.provider, &c.config.Extraction, c.logger.Named("extraction"))
	if err != nil {
		return fmt.Errorf("failed to initialize extraction: %w", err)
	}
	c.extractor = extractor

	// Step 4: Initialize dispatcher and session
	if err := c.initSession(); err != nil {
		return fmt.Errorf("failed to initialize session: %w", err)
	}
	c.logger.Info("Session initialized")

	c.ready.Store(true)
	c.logger.Info("Container started successfully")

	return nil
}

// Close gracefully shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	if c.dispatcher != nil {
		if err := c.dispatcher.Close(); err != nil {
			c.logger.Error("Failed to close dispatcher", zap.Error(err))
			c.closed.Store(true)
			c.ready.Store(false)
			return fmt.Errorf("close dispatcher: %w", err)
		}
		c.logger.Info("Dispatcher closed")
	}

	c.closed.Store(true)
	c.ready.Store(false)
	c.logger.Info("Container closed successfully")
	return nil
}

// Ready returns whether the container is fully initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
// A missing inference key marks the inference component unhealthy without failing startup.
func (c *Container) Health() *HealthStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	// Check inference provider
	switch {
	case c.provider == nil:
		status.Components["inference"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	case !c.provider.HasCredential():
		status.Components["inference"] = ComponentHealth{
			Healthy: false,
			Message: fmt.Sprintf("%s API key is missing", c.provider.Name()),
		}
		status.Overall = false
	default:
		status.Components["inference"] = ComponentHealth{Healthy: true, Message: c.provider.Name()}
	}

	// Check webhook
	if c.config.Webhook.URL == "" {
		status.Components["webhook"] = ComponentHealth{Healthy: false, Message: "url not configured"}
		status.Overall = false
	} else {
		status.Components["webhook"] = ComponentHealth{Healthy: true}
	}

	// Check session
	if c.session != nil {
		status.Components["session"] = ComponentHealth{
			Healthy: true,
			Message: c.session.Snapshot().State.String(),
		}
	} else {
		status.Components["session"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	}

	return status
}

// initExternalClients creates the inference provider and the webhook client.
func (c *Container) initExternalClients() error {
	provider, err := ProvideInferenceProvider(&c.config.Inference, c.pdfReader, c.logger.Named(c.config.Inference.Provider))
	if err != nil {
		return err
	}
	c.provider = provider

	submitter, err := ProvideSubmitter(&c.config.Webhook, c.logger.Named("webhook"))
	if err != nil {
		return err
	}
	c.submitter = submitter
	return nil
}

// initSession creates the dispatcher, the session and the notification feed.
func (c *Container) initSession() error {
	d, err := ProvideDispatcher(c.logger)
	if err != nil {
		return err
	}
	c.dispatcher = d

	bundle, err := ProvideSession(&SessionDeps{
		Intake:     c.intake,
		Extractor:  c.extractor,
		Submitter:  c.submitter,
		Dispatcher: c.dispatcher,
		Logger:     c.logger,
	})
	if err != nil {
		return err
	}
	c.session = bundle.Session
	c.notifications = bundle.Notifications
	return nil
}

// Accessor methods

// Intake returns the file intake.
func (c *Container) Intake() *intake.Intake {
	return c.intake
}

// Extractor returns the extraction client.
func (c *Container) Extractor() *extraction.Client {
	return c.extractor
}

// Session returns the review session.
func (c *Container) Session() service.Session {
	return c.session
}

// Notifications returns the notification feed.
func (c *Container) Notifications() service.NotificationService {
	return c.notifications
}

// Exporter returns the spreadsheet writer.
func (c *Container) Exporter() *export.Writer {
	return c.exporter
}

// Dispatcher returns the event dispatcher.
func (c *Container) Dispatcher() dispatcher.Dispatcher {
	return c.dispatcher
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns the container's configuration.
func (c *Container) Config() *Config {
	return c.config
}
