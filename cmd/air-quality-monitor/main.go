package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/air-quality-monitor/internal/airquality"
	"github.com/i474232898/air-quality-monitor/internal/airquality/providers"
	httpapi "github.com/i474232898/air-quality-monitor/internal/api/http"
	"github.com/i474232898/air-quality-monitor/internal/cache"
	"github.com/i474232898/air-quality-monitor/internal/config"
	"github.com/i474232898/air-quality-monitor/internal/observability"
	"github.com/i474232898/air-quality-monitor/internal/scheduler"
	"github.com/i474232898/air-quality-monitor/internal/store"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("air-quality-monitor stopped", zap.Error(err))
	}
}

func run(cfg *config.AppConfig, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Reading store selected by STORE_BACKEND.
	readings, err := store.Open(ctx, store.Options{
		Backend:         cfg.Store.Backend,
		SQLitePath:      cfg.Store.SQLitePath,
		MongoURI:        cfg.Store.MongoURI,
		MongoDatabase:   cfg.Store.MongoDatabase,
		MongoCollection: cfg.Store.MongoCollection,
	})
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Store.Backend, err)
	}
	defer closeQuietly(logger, "store", readings)

	// Optional live lookup cache.
	liveCache, err := cache.New(cfg.LiveCache.Backend, cfg.LiveCache.MemcachedAddrs, cfg.LiveCache.MemcachedTimeout)
	if err != nil {
		return fmt.Errorf("creating live cache: %w", err)
	}
	if closer, ok := liveCache.(io.Closer); ok {
		defer closeQuietly(logger, "live cache", closer)
	}
	if pinger, ok := liveCache.(interface{ Ping() error }); ok {
		if err := pinger.Ping(); err != nil {
			logger.Warn("live cache unreachable, lookups will go to the provider until it recovers",
				zap.String("backend", cfg.LiveCache.Backend),
				zap.Error(err),
			)
		}
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.IQAir.HTTPTimeout,
	}
	provider := providers.NewIQAirProvider(httpClient, cfg.IQAir.BaseURL, cfg.IQAir.APIKey, logger)

	service := airquality.NewService(readings, provider,
		airquality.WithLogger(logger),
		airquality.WithLiveCache(liveCache, cfg.LiveCache.TTL),
	)

	zone := cfg.DefaultZone()

	// Scheduler that periodically samples the zone.
	sched := scheduler.New(zone, cfg.IngestInterval, service, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	app := httpapi.NewApp(service, zone, logger, httpapi.ServerOptions{
		RequestTimeout: cfg.RequestTimeout,
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening",
			zap.String("port", cfg.Port),
			zap.String("store", cfg.Store.Backend),
			zap.String("zone", zone.Name),
		)
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		logger.Info("shutting down")
		sched.Stop()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func closeQuietly(logger *zap.Logger, name string, c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Warn("close failed", zap.String("resource", name), zap.Error(err))
	}
}
