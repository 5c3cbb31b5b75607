// Package app contains the finder's use cases. Services coordinate the
// search engine, the catalog repository and the sources through ports and
// know nothing about HTTP or the command line.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quote-finder/internal/domain"
	"github.com/jsamuelsen/quote-finder/internal/platform/logging"
	"github.com/jsamuelsen/quote-finder/internal/platform/telemetry"
	"github.com/jsamuelsen/quote-finder/internal/ports"
	"github.com/jsamuelsen/quote-finder/internal/search"
)

// Metrics receives search and catalog activity. *telemetry.SearchMetrics
// implements it.
type Metrics interface {
	ObserveSearch(strategy, outcome string, elapsed time.Duration, results int)
	ObserveCache(hit bool)
	ObserveReload(ok bool, elapsed time.Duration, size int)
}

type noopMetrics struct{}

func (noopMetrics) ObserveSearch(string, string, time.Duration, int) {}
func (noopMetrics) ObserveCache(bool)                                {}
func (noopMetrics) ObserveReload(bool, time.Duration, int)           {}

// SearchService runs searches against the current catalog.
type SearchService struct {
	catalog ports.CatalogRepository
	cache   ports.SearchCache
	engine  *search.Engine
	metrics Metrics
	logger  *slog.Logger
}

// SearchServiceConfig contains the dependencies of a SearchService.
// Catalog is required; Cache may be nil to disable result caching.
type SearchServiceConfig struct {
	Catalog ports.CatalogRepository
	Cache   ports.SearchCache
	Engine  *search.Engine
	Metrics Metrics
	Logger  *slog.Logger
}

// NewSearchService creates a search service. It panics without a catalog.
func NewSearchService(cfg SearchServiceConfig) *SearchService {
	if cfg.Catalog == nil {
		panic("app: SearchService requires a catalog repository")
	}

	if cfg.Engine == nil {
		cfg.Engine = search.NewEngine()
	}

	if cfg.Metrics == nil {
		cfg.Metrics = noopMetrics{}
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &SearchService{
		catalog: cfg.Catalog,
		cache:   cfg.Cache,
		engine:  cfg.Engine,
		metrics: cfg.Metrics,
		logger:  cfg.Logger.With(slog.String("component", "app.SearchService")),
	}
}

// Search runs req against the current catalog snapshot. An unknown strategy
// or a pattern that does not compile is a validation error; the latter is
// also a *domain.FilterCompileError.
func (s *SearchService) Search(ctx context.Context, req search.Request) (search.Result, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "SearchService.Search",
		trace.WithAttributes(
			attribute.String("search.strategy", req.Strategy.String()),
			attribute.Bool("search.match_case", req.MatchCase),
			attribute.Bool("search.limit_enabled", req.LimitEnabled),
		),
	)
	defer span.End()

	logger := logging.FromContextOr(ctx, s.logger)
	strategy := req.Strategy.String()

	catalog, generation := s.catalog.Snapshot(ctx)
	key := cacheKey(generation, req)

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, key); ok {
			s.metrics.ObserveCache(true)
			span.SetAttributes(attribute.Bool("search.cache_hit", true), attribute.Int("search.results", cached.Len()))

			return cached, nil
		}

		s.metrics.ObserveCache(false)
	}

	start := time.Now()

	result, err := s.engine.Search(ctx, catalog, req)
	if err != nil {
		outcome := "error"
		if domain.IsValidation(err) {
			outcome = "invalid"
		}

		s.metrics.ObserveSearch(strategy, outcome, time.Since(start), 0)
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)

		if outcome == "invalid" {
			logger.DebugContext(ctx, "search rejected", slog.String("strategy", strategy), slog.Any("error", err))
		} else if !errors.Is(err, context.Canceled) {
			logger.WarnContext(ctx, "search failed", slog.String("strategy", strategy), slog.Any("error", err))
		}

		return search.Result{}, fmt.Errorf("searching catalog: %w", err)
	}

	elapsed := time.Since(start)
	s.metrics.ObserveSearch(strategy, "ok", elapsed, result.Len())
	span.SetAttributes(attribute.Bool("search.cache_hit", false), attribute.Int("search.results", result.Len()))

	if s.cache != nil {
		s.cache.Set(ctx, key, result)
	}

	logger.DebugContext(ctx, "search completed",
		slog.String("strategy", strategy),
		slog.Int("results", result.Len()),
		slog.Bool("capped", result.Capped),
		slog.Uint64("generation", generation),
		slog.Duration("duration", elapsed),
	)

	return result, nil
}

// Get returns one quotation of the current catalog.
func (s *SearchService) Get(ctx context.Context, id string) (*domain.Quotation, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.NewValidationError("id", "cannot be empty")
	}

	q, err := s.catalog.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting quotation: %w", err)
	}

	return q, nil
}

// List returns up to n quotations that follow the record with ID after, in
// catalog order. An empty after starts at the beginning. An after that is no
// longer in the catalog is a validation error on the cursor.
func (s *SearchService) List(ctx context.Context, after string, n int) (domain.Catalog, error) {
	catalog, _ := s.catalog.Snapshot(ctx)

	start := 0

	if after != "" {
		idx := catalog.Index(after)
		if idx < 0 {
			return nil, domain.NewValidationErrorWithValue("cursor", "position no longer in catalog", after)
		}

		start = idx + 1
	}

	end := min(start+max(n, 0), len(catalog))

	page := make(domain.Catalog, 0, end-start)

	return append(page, catalog[start:end]...), nil
}

// cacheKey identifies a request against one catalog generation. LimitValue
// is kept verbatim since ParseLimit does not trim.
func cacheKey(generation uint64, req search.Request) string {
	var b strings.Builder

	b.WriteString(strconv.FormatUint(generation, 10))
	b.WriteByte('|')
	b.WriteString(req.Strategy.String())
	b.WriteByte('|')
	b.WriteString(strconv.FormatBool(req.MatchCase))
	b.WriteByte('|')
	b.WriteString(strconv.FormatBool(req.LimitEnabled))
	b.WriteByte('|')
	b.WriteString(strconv.Quote(req.LimitValue))
	b.WriteByte('|')
	b.WriteString(strconv.Quote(req.Keyword))
	b.WriteByte('|')
	b.WriteString(strconv.Quote(req.Author))

	return b.String()
}
