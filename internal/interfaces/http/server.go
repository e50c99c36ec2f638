// Package http provides the web front end: an HTML review page and a JSON API over the session.
package http

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/garyjia/mrsl-intake/internal/application/service"
	"github.com/garyjia/mrsl-intake/internal/container"
	"github.com/garyjia/mrsl-intake/internal/export"
)

//go:embed templates/*.html
var templateFS embed.FS

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxUploadBytes int64
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:           "0.0.0.0",
		Port:           8080,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   180 * time.Second,
		MaxUploadBytes: 20 << 20,
	}
}

// HealthReporter reports component health for GET /health
type HealthReporter interface {
	Health() *container.HealthStatus
}

// ServerOption configures optional server dependencies
type ServerOption func(*Server)

// WithHealthReporter makes /health report component status
func WithHealthReporter(r HealthReporter) ServerOption {
	return func(s *Server) {
		s.health = r
	}
}

// Server is the HTTP server adapter
type Server struct {
	config        ServerConfig
	httpServer    *http.Server
	router        *gin.Engine
	session       service.Session
	notifications service.NotificationService
	exporter      *export.Writer
	health        HealthReporter
	logger        *zap.Logger
}

// NewServer creates a new HTTP server over the session
func NewServer(
	config ServerConfig,
	session service.Session,
	notifications service.NotificationService,
	exporter *export.Writer,
	logger *zap.Logger,
	opts ...ServerOption,
) (*Server, error) {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.MaxMultipartMemory = config.MaxUploadBytes + (1 << 20)

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	server := &Server{
		config:        config,
		router:        router,
		session:       session,
		notifications: notifications,
		exporter:      exporter,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(server)
	}

	// Setup middleware
	server.setupMiddleware()

	// Setup routes
	server.setupRoutes()

	return server, nil
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.router.Use(gin.Recovery())

	// Logging middleware
	s.router.Use(s.loggingMiddleware())
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		// Process request
		c.Next()

		s.logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.session, s.notifications, s.exporter, s.config.MaxUploadBytes, s.logger)
	handlers.health = s.health
	pages := NewPages(s.session, s.notifications, s.config.MaxUploadBytes, s.logger)

	// Health check
	s.router.GET("/health", handlers.HealthCheck)

	// HTML front end
	s.router.GET("/", pages.Index)
	s.router.POST("/upload", pages.Upload)
	s.router.POST("/review", pages.Review)
	s.router.POST("/clear", pages.Clear)

	// API routes
	api := s.router.Group("/api/v1")
	{
		api.GET("/session", handlers.GetSession)
		api.DELETE("/session", handlers.ClearSession)
		api.POST("/session/file", handlers.UploadFile)
		api.PATCH("/session/record", handlers.EditRecord)
		api.POST("/session/submit", handlers.Submit)
		api.GET("/session/export.xlsx", handlers.ExportXLSX)
		api.GET("/class-codes", handlers.ListClassCodes)
		api.GET("/notifications", handlers.DrainNotifications)
		api.GET("/notifications/latest", handlers.LatestNotification)
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	addr := s.Address()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
