// Package main is the entry point for the quotation search service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/quote-finder/internal/adapters/cache"
	"github.com/jsamuelsen/quote-finder/internal/adapters/catalog"
	"github.com/jsamuelsen/quote-finder/internal/adapters/http"
	"github.com/jsamuelsen/quote-finder/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-finder/internal/app"
	"github.com/jsamuelsen/quote-finder/internal/platform/config"
	"github.com/jsamuelsen/quote-finder/internal/platform/logging"
	"github.com/jsamuelsen/quote-finder/internal/platform/telemetry"
	"github.com/jsamuelsen/quote-finder/internal/ports"
	"github.com/jsamuelsen/quote-finder/internal/search"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the service.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

const healthCheckTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Determine profile from environment
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	// 2. Load and validate configuration (fail fast)
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 3. Initialize logging
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
	)

	// 4. Initialize telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		Insecure:     cfg.Telemetry.Insecure,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(context.Background()); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	metrics := telemetry.NewSearchMetrics(prometheus.DefaultRegisterer)

	// 5. Build catalog sources and the in-memory store
	sources, err := catalog.BuildSources(cfg.Catalog, cfg.Client, logger)
	if err != nil {
		return fmt.Errorf("building catalog sources: %w", err)
	}

	store := catalog.NewStore()

	var resultCache ports.SearchCache
	if cfg.Search.CacheEnabled {
		resultCache = cache.NewMemoryCache(cfg.Search.CacheTTL, cfg.Search.CacheCleanup)
	}

	// 6. Load the catalog (fail fast on a required source)
	catalogService := app.NewCatalogService(app.CatalogServiceConfig{
		Store:       store,
		Sources:     sources.Sources,
		Cache:       resultCache,
		Metrics:     metrics,
		Logger:      logger,
		Concurrency: cfg.Catalog.Concurrency,
		AllowEmpty:  cfg.Catalog.AllowEmpty,
		Debounce:    cfg.Catalog.Debounce,
	})

	report, err := catalogService.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	logger.Info("catalog loaded",
		slog.Int("quotations", report.Quotations),
		slog.Int("duplicates", report.Duplicates),
		slog.Any("skipped", report.Skipped),
	)

	// 7. Register health checks
	healthRegistry := ports.NewHealthRegistry(healthCheckTimeout)

	if err := healthRegistry.Register(catalogService); err != nil {
		return fmt.Errorf("registering catalog health check: %w", err)
	}

	for i, remote := range sources.Remotes {
		register := healthRegistry.Register
		if cfg.Catalog.Remotes[i].Optional {
			register = healthRegistry.RegisterOptional
		}

		if err := register(remote); err != nil {
			return fmt.Errorf("registering %s health check: %w", remote.Name(), err)
		}
	}

	// 8. Create search service (application layer)
	searchService := app.NewSearchService(app.SearchServiceConfig{
		Catalog: store,
		Cache:   resultCache,
		Engine: search.NewEngine(
			search.WithShards(cfg.Search.Shards),
			search.WithMinShardSize(cfg.Search.MinShardSize),
			search.WithMatchTimeout(cfg.Search.MaxRegexTime),
		),
		Metrics: metrics,
		Logger:  logger,
	})

	// 9. Reload on catalog file changes
	if cfg.Catalog.Watch && len(sources.Files) > 0 {
		if err := watchCatalog(ctx, logger, sources.Files, catalogService); err != nil {
			return err
		}
	}

	// 10. Create handlers
	buildInfo := handlers.NewBuildInfo(Version, Commit, BuildTime)

	routerCfg := http.NewRouterConfig(logger, cfg)
	routerCfg.Health = handlers.NewHealthHandler(healthRegistry, store, buildInfo)
	routerCfg.Quotations = handlers.NewQuotationHandler(searchService)
	routerCfg.Tools = handlers.NewToolsHandler()
	routerCfg.Admin = handlers.NewAdminHandler(catalogService)

	// 11. Create HTTP server and router
	server := http.New(&cfg.Server, cfg.App.Environment, logger)
	http.SetupRouter(server.Engine(), routerCfg)

	// 12. Start server (non-blocking)
	serverErr := server.Start()

	// 13. Wait for shutdown signal
	return waitForShutdown(ctx, logger, server, serverErr, cfg.Server.ShutdownTimeout)
}

// watchCatalog starts the file watcher and feeds its changes to the catalog
// service until ctx is done.
func watchCatalog(ctx context.Context, logger *slog.Logger, files []string, catalogService *app.CatalogService) error {
	watcher, err := catalog.NewWatcher(files, logger)
	if err != nil {
		return fmt.Errorf("creating catalog watcher: %w", err)
	}

	changes, err := watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watching catalog files: %w", err)
	}

	go func() {
		if err := catalogService.Watch(ctx, changes); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("catalog watch stopped", slog.Any("error", err))
		}
	}()

	logger.Info("watching catalog files", slog.Any("files", files))

	return nil
}

// waitForShutdown blocks until a shutdown signal is received or server error occurs.
// It then performs graceful shutdown of the HTTP server.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	// Detached from ctx so in-flight requests can drain after the watcher stops.
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	logger.Info("initiating graceful shutdown",
		slog.Duration("timeout", shutdownTimeout),
	)

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
