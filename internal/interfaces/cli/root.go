// Package cli implements the mrsl command line tool.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/mrsl-intake/internal/application/port"
	"github.com/garyjia/mrsl-intake/internal/application/service"
	"github.com/garyjia/mrsl-intake/internal/config"
	"github.com/garyjia/mrsl-intake/internal/container"
	"github.com/garyjia/mrsl-intake/internal/intake"
	"github.com/garyjia/mrsl-intake/pkg/utils"
)

// version is set at build time via ldflags
var version = "dev"

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "mrsl",
	Short: "Extract and review MRSL insurance documents",
	Long: `mrsl reads an insurance PDF, asks a hosted model for the MRSL fields,
lets you review them and forwards the confirmed record to the configured webhook.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "config file (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging on stderr")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// App is what the commands need from the wired application.
type App struct {
	Intake        *intake.Intake
	Extractor     port.Extractor
	Session       service.Session
	Notifications service.NotificationService
	Logger        *zap.Logger
	Close         func() error
}

// appLoader builds the application. withWebhook is false for commands that never submit.
type appLoader func(ctx context.Context, withWebhook bool) (*App, error)

// loadApp is replaced in tests.
var loadApp appLoader = loadContainerApp

func loadContainerApp(ctx context.Context, withWebhook bool) (*App, error) {
	load := config.LoadForExtraction
	if withWebhook {
		load = config.Load
	}
	cfg, err := load(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := utils.NewCLILogger(verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	containerCfg, err := cfg.ToContainerConfig()
	if err != nil {
		return nil, err
	}
	c, err := container.NewContainer(containerCfg, logger)
	if err != nil {
		return nil, err
	}
	if err := c.Start(ctx); err != nil {
		return nil, err
	}

	return &App{
		Intake:        c.Intake(),
		Extractor:     c.Extractor(),
		Session:       c.Session(),
		Notifications: c.Notifications(),
		Logger:        logger,
		Close: func() error {
			_ = logger.Sync()
			return c.Close()
		},
	}, nil
}
