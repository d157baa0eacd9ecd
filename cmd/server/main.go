package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/quantumtrack/quantumtrack/internal/api"
	"github.com/quantumtrack/quantumtrack/internal/config"
	"github.com/quantumtrack/quantumtrack/internal/notifier"
	"github.com/quantumtrack/quantumtrack/internal/quantum"
	"github.com/quantumtrack/quantumtrack/internal/registry"
	"github.com/quantumtrack/quantumtrack/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("quantumtrack starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"users", len(cfg.Users),
		"notify_interval", cfg.Notify.Interval,
		"notify_window", cfg.Notify.Window,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// User directory, swapped atomically on config hot-reload.
	reg := registry.New(cfg.Users)
	go func() {
		err := config.Watch(ctx, *configPath, func(next *config.Config) {
			reg.Replace(next.Users)
		})
		if err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	factory := quantum.NewFactory(cfg.Quantum)

	// WebSocket hub for job-status-change subscribers.
	hub := ws.New()
	go hub.Run(ctx)

	// Last-seen-status map with background retention eviction, feeding the
	// change-notifier poll loop.
	state := notifier.NewState(cfg.Notify.Retention)
	go state.Run(ctx)
	go notifier.New(reg, factory, state, hub, cfg.Notify).Run(ctx)

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: api.New(reg, factory, hub),
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("quantumtrack shutting down")
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}
