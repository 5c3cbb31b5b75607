//go:build integration

package integration

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-finder/internal/adapters/cache"
	"github.com/jsamuelsen/quote-finder/internal/adapters/catalog"
	"github.com/jsamuelsen/quote-finder/internal/adapters/http"
	"github.com/jsamuelsen/quote-finder/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-finder/internal/app"
	"github.com/jsamuelsen/quote-finder/internal/platform/config"
	"github.com/jsamuelsen/quote-finder/internal/ports"
	"github.com/jsamuelsen/quote-finder/internal/search"
)

// sampleCatalog is the catalog shipped with the service.
const sampleCatalog = "../../configs/quotations.yaml"

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testClientConfig returns fast retry and breaker settings for remote sources.
func testClientConfig() config.ClientConfig {
	return config.ClientConfig{
		Timeout: 2 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     2,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     50 * time.Millisecond,
			Multiplier:      2.0,
		},
		CircuitBreaker: config.CircuitBreakerConfig{
			MaxFailures:   5,
			Timeout:       time.Second,
			HalfOpenLimit: 1,
		},
		Transport: config.TransportConfig{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     30 * time.Second,
		},
	}
}

// stack is the service wired the way cmd/service wires it, minus telemetry.
type stack struct {
	store    *catalog.Store
	catalog  *app.CatalogService
	search   *app.SearchService
	registry *ports.DefaultHealthRegistry
	router   *gin.Engine
}

// newStack builds and loads the service over catalogCfg. The initial load
// error is returned rather than failing so callers can assert on it.
func newStack(catalogCfg config.CatalogConfig, auth config.AuthConfig) (*stack, error) {
	logger := discardLogger()

	sources, err := catalog.BuildSources(catalogCfg, testClientConfig(), logger)
	if err != nil {
		return nil, err
	}

	s := &stack{
		store:    catalog.NewStore(),
		registry: ports.NewHealthRegistry(time.Second),
	}

	resultCache := cache.NewMemoryCache(time.Minute, time.Minute)

	s.catalog = app.NewCatalogService(app.CatalogServiceConfig{
		Store:       s.store,
		Sources:     sources.Sources,
		Cache:       resultCache,
		Logger:      logger,
		Concurrency: catalogCfg.Concurrency,
		AllowEmpty:  catalogCfg.AllowEmpty,
		Debounce:    catalogCfg.Debounce,
	})

	s.search = app.NewSearchService(app.SearchServiceConfig{
		Catalog: s.store,
		Cache:   resultCache,
		Engine:  search.NewEngine(search.WithShards(4), search.WithMinShardSize(2)),
		Logger:  logger,
	})

	if err := s.registry.Register(s.catalog); err != nil {
		return nil, err
	}

	for i, remote := range sources.Remotes {
		register := s.registry.Register
		if catalogCfg.Remotes[i].Optional {
			register = s.registry.RegisterOptional
		}

		if err := register(remote); err != nil {
			return nil, err
		}
	}

	cfg := http.RouterConfig{
		Logger:     logger,
		App:        config.AppConfig{Name: "quote-finder", Version: "test", Environment: "test"},
		Auth:       auth,
		Timeout:    5 * time.Second,
		Health:     handlers.NewHealthHandler(s.registry, s.store, handlers.NewBuildInfo("test", "none", "now")),
		Quotations: handlers.NewQuotationHandler(s.search),
		Tools:      handlers.NewToolsHandler(),
		Admin:      handlers.NewAdminHandler(s.catalog),
	}

	s.router = gin.New()
	http.SetupRouter(s.router, cfg)

	_, err = s.catalog.Load(context.Background())

	return s, err
}

// mustStack is newStack for callers that expect the load to succeed.
func mustStack(t *testing.T, catalogCfg config.CatalogConfig) *stack {
	t.Helper()

	s, err := newStack(catalogCfg, config.AuthConfig{})
	require.NoError(t, err)

	return s
}

// serve starts an httptest server for the stack's router.
func (s *stack) serve(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(s.router)
	t.Cleanup(server.Close)

	return server
}
