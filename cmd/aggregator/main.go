package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"

	"github.com/falseness/market-data-aggregator/internal/config"
	"github.com/falseness/market-data-aggregator/internal/runner"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	logPath := flag.String("log", "", "Optional log file (in addition to stdout)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(*logPath, cfg.SlogLevel())
	logger.Info("Starting market data aggregator",
		"configPath", *configPath,
		"app", cfg.App.Name,
		"mode", cfg.Feed.Mode)

	// Create and run service
	r, err := runner.New(cfg, logger)
	if err != nil {
		logger.Error("Failed to create runner", "error", err)
		os.Exit(1)
	}

	if err := r.Run(context.Background()); err != nil {
		logger.Error("Service error", "error", err)
		os.Exit(1)
	}
}

// setupLogger initializes the logger
func setupLogger(logPath string, level slog.Level) *slog.Logger {
	var out io.Writer = os.Stdout
	if logPath != "" {
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			slog.Error("Failed to open log file, using stdout only", "error", err)
		} else {
			out = io.MultiWriter(os.Stdout, logFile)
		}
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: level,
	}))
}
