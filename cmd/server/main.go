package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/reshetovitsme/yandere-telegram-feed/internal/di"
	runService "github.com/reshetovitsme/yandere-telegram-feed/internal/modules/run/service"
	"github.com/reshetovitsme/yandere-telegram-feed/internal/shared/config"
	httpServer "github.com/reshetovitsme/yandere-telegram-feed/internal/transport/http"
	"github.com/samber/do/v2"
	slogmulti "github.com/samber/slog-multi"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	level, known := cfg.SlogLevel()

	// Text logs on stdout, errors duplicated as JSON on stderr
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	jsonHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})

	logger := slog.New(slogmulti.Fanout(textHandler, jsonHandler))
	slog.SetDefault(logger)

	if !known {
		slog.Warn("Unknown log level, falling back to info", "log_level", cfg.Core.LogLevel)
	}
	slog.Info("Configuration loaded", "config", cfg)

	injector, err := di.Setup(cfg)
	if err != nil {
		slog.Error("Failed to setup dependency injection", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := di.Shutdown(injector); err != nil {
			slog.Error("Error during shutdown", "error", err)
		}
	}()

	scheduler, err := do.Invoke[*runService.Scheduler](injector)
	if err != nil {
		slog.Error("Failed to initialize scheduler", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.Core.HTTPPort != "" {
		server := do.MustInvoke[*httpServer.Server](injector)
		go func() {
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("HTTP server stopped", "error", err)
				cancel()
			}
		}()
	}

	scheduler.Start()

	slog.Info("Application started", "next_run", scheduler.Next(), "port", cfg.Core.HTTPPort)
	slog.Info("Press Ctrl+C to stop")

	<-ctx.Done()
	slog.Info("Shutting down...")
}
