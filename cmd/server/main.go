// Package main implements the entry point for the VibeWall API server,
// which accepts wallpaper generation requests and runs them in the
// background against the Gemini image and Veo video models.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sniplyy/VibeWall/internal/app"
	"github.com/Sniplyy/VibeWall/internal/config"
	"github.com/Sniplyy/VibeWall/internal/platform/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to an optional configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	l.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, l)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return application.Serve(ctx)
}
