/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ssargent/marcdb/pkg/config"
	"github.com/ssargent/marcdb/pkg/di"
	"github.com/ssargent/marcdb/pkg/logging"
)

type contextKey string

const appContextKey contextKey = "app"

// appContext carries the resolved configuration and logger to subcommands
type appContext struct {
	config *config.Config
	logger *zap.Logger
}

var container *di.Container

// SetContainer injects the dependency container used by the commands
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "marcdb",
	Short: "MarcDB - MARC21 record toolkit",
	Long: `MarcDB reads, inspects, converts and stores MARC21 (ISO 2709) bibliographic
records. Files can be dumped, converted to JSON, YAML or MessagePack, re-serialized,
browsed interactively, or imported into a local catalog served over a REST API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}

		logger, err := logging.New(cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.Logging.Level, err)
		}

		// Store in command context
		cmd.SetContext(context.WithValue(cmd.Context(), appContextKey, &appContext{
			config: cfg,
			logger: logger,
		}))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app, ok := cmd.Context().Value(appContextKey).(*appContext); ok {
			_ = app.logger.Sync()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/marcdb/config.yaml when present)")
	rootCmd.PersistentFlags().StringP("data-dir", "d", "", "Catalog data directory (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
}

// resolveConfig loads the config file, if any, and applies flag overrides
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	cfg := config.DefaultConfig()
	switch {
	case configPath != "":
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case config.ConfigExists(config.GetDefaultConfigPath()):
		loaded, err := config.LoadConfig(config.GetDefaultConfigPath())
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir, _ = cmd.Flags().GetString("data-dir")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level, _ = cmd.Flags().GetString("log-level")
	}

	return cfg, nil
}

// appFrom returns the context set up by PersistentPreRunE, falling back to
// defaults when a command runs without it
func appFrom(cmd *cobra.Command) *appContext {
	if ctx := cmd.Context(); ctx != nil {
		if app, ok := ctx.Value(appContextKey).(*appContext); ok {
			return app
		}
	}
	return &appContext{config: config.DefaultConfig(), logger: zap.NewNop()}
}
