package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-finder/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-finder/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-finder/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-finder/internal/platform/config"
	"github.com/jsamuelsen/quote-finder/internal/platform/telemetry"
)

// RouterConfig holds the handlers and settings the router wires together.
// Nil handlers are skipped.
type RouterConfig struct {
	Logger *slog.Logger

	App       config.AppConfig
	Auth      config.AuthConfig
	RateLimit config.RateLimitConfig

	// Timeout bounds every /api/v1 request. Zero disables it.
	Timeout time.Duration

	Health     *handlers.HealthHandler
	Quotations *handlers.QuotationHandler
	Tools      *handlers.ToolsHandler
	Admin      *handlers.AdminHandler
}

// SetupRouter configures middleware and routes on engine.
// Middleware runs in this order:
//  1. Recovery
//  2. Request ID and correlation ID
//  3. OpenTelemetry tracing, then metrics
//  4. Logging, which skips /-/ probes
//
// The /api/v1 group adds the request timeout and, when enabled, the rate
// limiter. Admin routes are guarded by the configured admin role.
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.TracingMiddleware(cfg.App.Name),
		telemetry.Middleware(),
		middleware.Logging(cfg.Logger),
	)

	engine.NoRoute(func(c *gin.Context) {
		dto.RespondWithErrorCode(c, dto.ErrorCodeNotFound, "route not found")
	})

	if cfg.Health != nil {
		cfg.Health.RegisterHealthRoutesOnEngine(engine)
	}

	apiV1 := engine.Group("/api/v1")
	if cfg.Timeout > 0 {
		apiV1.Use(middleware.Timeout(cfg.Timeout))
	}

	if cfg.RateLimit.Enabled {
		apiV1.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}

	setupAPIRoutes(apiV1, cfg)
}

func setupAPIRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.Quotations != nil {
		cfg.Quotations.RegisterRoutes(rg)
	}

	if cfg.Tools != nil {
		cfg.Tools.RegisterRoutes(rg)
	}

	if cfg.Admin != nil {
		cfg.Admin.RegisterRoutes(rg, middleware.RequireAdmin(&cfg.Auth)...)
	}
}

// NewRouterConfig builds a RouterConfig from the loaded configuration.
func NewRouterConfig(logger *slog.Logger, cfg *config.Config) RouterConfig {
	return RouterConfig{
		Logger:    logger,
		App:       cfg.App,
		Auth:      cfg.Auth,
		RateLimit: cfg.RateLimit,
		Timeout:   cfg.Server.RequestTimeout,
	}
}
