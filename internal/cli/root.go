// Package cli implements the vibewall command line: one-shot generation to
// local files and the long-running API server.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Sniplyy/VibeWall/internal/app"
	"github.com/Sniplyy/VibeWall/internal/config"
	"github.com/Sniplyy/VibeWall/internal/platform/logger"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	cfgPath string
	isDebug bool
}

// NewRootCommand builds the vibewall command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "vibewall",
		Short:         "AI wallpaper generator",
		Long:          `VibeWall generates phone and desktop wallpapers with Gemini image and Veo video models.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.cfgPath, "config", "", "config file (defaults and VIBEWALL_* environment variables otherwise)")
	rootCmd.PersistentFlags().BoolVar(&opts.isDebug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(newGenerateCommand(opts), newServeCommand(opts))
	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// bootstrap loads configuration, installs the logger and builds the
// application.
func (o *rootOptions) bootstrap(ctx context.Context) (*app.Application, *config.Config, *slog.Logger, error) {
	cfg, err := config.Load(o.cfgPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.isDebug {
		cfg.Server.LogLevel = "debug"
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	a, err := app.New(ctx, cfg, l)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	return a, cfg, l, nil
}
