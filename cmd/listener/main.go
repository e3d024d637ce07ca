package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/todmarkets/todmarkets-go/internal/api"
	"github.com/todmarkets/todmarkets-go/internal/config"
	"github.com/todmarkets/todmarkets-go/internal/realtime"
	"github.com/todmarkets/todmarkets-go/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (default: environment)")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting listener",
		"version", version.Version,
		"commit", version.Commit,
	)

	// Load configuration
	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadAndValidate(*configPath)
	} else {
		cfg, err = config.FromEnv()
	}
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded", "domain_url", cfg.DomainURL)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	apiClient := api.NewClient(
		cfg.DomainURL,
		cfg.APIKey,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
	)

	manager := realtime.NewManager(realtime.ManagerConfig{
		APIKey:           cfg.APIKey,
		DomainURL:        cfg.DomainURL,
		ClientName:       cfg.Realtime.ClientName,
		AuthTimeout:      cfg.Realtime.AuthTimeout,
		HandshakeTimeout: cfg.Realtime.HandshakeTimeout,
		WriteTimeout:     cfg.Realtime.WriteTimeout,
		BufferSize:       cfg.Realtime.BufferSize,
	}, apiClient, logger)

	if err := manager.Run(ctx); err != nil {
		logger.Error("listener terminated", "error", err)
		os.Exit(1)
	}

	logger.Info("listener stopped")
}
