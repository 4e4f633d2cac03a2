package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	advisorimpl "github.com/postcareplus/postcare-sms/external/advisor"
	configloader "github.com/postcareplus/postcare-sms/external/config"
	directoryimpl "github.com/postcareplus/postcare-sms/external/directory"
	langtableimpl "github.com/postcareplus/postcare-sms/external/langtable"
	repositoryimpl "github.com/postcareplus/postcare-sms/external/repository"
	scoringimpl "github.com/postcareplus/postcare-sms/external/scoring"
	smsimpl "github.com/postcareplus/postcare-sms/external/sms"
	"github.com/postcareplus/postcare-sms/internal/alert"
	"github.com/postcareplus/postcare-sms/internal/config"
	"github.com/postcareplus/postcare-sms/internal/session"
	"github.com/samber/do/v2"
)

const dailySummaryInterval = 24 * time.Hour

func main() {
	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env)

	slog.Info("startup: building dependency graph")
	injector := setupDI(cfg)

	slog.Info("startup: launching sms service")
	runService(cfg, injector)
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	repositoryimpl.RegisterDI(injector)
	langtableimpl.RegisterDI(injector)
	smsimpl.RegisterDI(injector)
	scoringimpl.RegisterDI(injector)
	directoryimpl.RegisterDI(injector)
	advisorimpl.RegisterDI(injector)
	alert.RegisterDI(injector)
	session.RegisterDI(injector)

	return injector
}

func runService(cfg *config.Config, injector do.Injector) {
	manager, err := do.Invoke[*session.Manager](injector)
	if err != nil {
		slog.Error("failed to resolve session manager", "error", err)
		os.Exit(1)
	}
	notifier, err := do.Invoke[*alert.Notifier](injector)
	if err != nil {
		slog.Error("failed to resolve notifier", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go manager.RunCleanupLoop(ctx)
	if cfg.DailySummaryEnabled {
		go runDailySummaryLoop(ctx, notifier)
	}

	srv := newServer(cfg.WebhookListenAddr, manager)
	done := make(chan struct{})
	go func() {
		slog.Info("startup: webhook listener starting", "addr", cfg.WebhookListenAddr)
		if err := srv.ListenAndServe(); err != nil {
			slog.Error("webhook listener stopped", "error", err)
		}
		close(done)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		slog.Info("shutting down")
		srv.Shutdown()
	case <-done:
	}
}

func runDailySummaryLoop(ctx context.Context, notifier *alert.Notifier) {
	ticker := time.NewTicker(dailySummaryInterval)
	defer ticker.Stop()
	slog.Info("daily summary loop started", "interval", dailySummaryInterval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := notifier.SendDailySummary(ctx); err != nil {
				slog.Error("daily summary failed", "error", err)
			}
		}
	}
}
