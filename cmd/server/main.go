package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/garyjia/mrsl-intake/internal/config"
	"github.com/garyjia/mrsl-intake/internal/container"
	httpiface "github.com/garyjia/mrsl-intake/internal/interfaces/http"
	"github.com/garyjia/mrsl-intake/pkg/utils"
)

// version is set at build time via ldflags
var version = "dev"

func main() {
	configPath := os.Getenv("MRSL_CONFIG")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting MRSL intake server",
		zap.String("version", version),
		zap.String("provider", cfg.Inference.Provider),
		zap.String("address", cfg.Server.Address()))

	containerCfg, err := cfg.ToContainerConfig()
	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Wire application components
	app, err := container.NewContainer(containerCfg, logger)
	if err != nil {
		logger.Fatal("Failed to create container", zap.Error(err))
	}
	if err := app.Start(ctx); err != nil {
		logger.Fatal("Failed to start container", zap.Error(err))
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("Container closed with errors", zap.Error(err))
		}
	}()

	if health := app.Health(); !health.Overall {
		for name, component := range health.Components {
			if !component.Healthy {
				logger.Warn("Component not ready",
					zap.String("component", name),
					zap.String("message", component.Message))
			}
		}
	}

	// Create HTTP server
	httpiface.Version = version
	server, err := httpiface.NewServer(httpiface.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxUploadBytes: cfg.Upload.MaxBytes,
	}, app.Session(), app.Notifications(), app.Exporter(), logger.Named("http"),
		httpiface.WithHealthReporter(app))
	if err != nil {
		logger.Fatal("Failed to create HTTP server", zap.Error(err))
	}

	// Blocks until SIGINT/SIGTERM, then shuts down gracefully
	if err := server.Start(ctx); err != nil {
		logger.Error("HTTP server stopped with error", zap.Error(err))
		return
	}

	logger.Info("Server exited successfully")
}
