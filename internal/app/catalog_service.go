package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jsamuelsen/quote-finder/internal/domain"
	"github.com/jsamuelsen/quote-finder/internal/platform/logging"
	"github.com/jsamuelsen/quote-finder/internal/ports"
)

// Reload triggers recorded in ReloadReport.
const (
	TriggerStartup = "startup"
	TriggerAdmin   = "admin"
	TriggerWatch   = "watch"
)

const defaultDebounce = 500 * time.Millisecond

// Source is a catalog source and whether the catalog may be built without it.
type Source struct {
	ports.CatalogSource

	// Optional sources that fail to load are skipped and reported.
	Optional bool
}

// CatalogServiceConfig contains the dependencies of a CatalogService.
type CatalogServiceConfig struct {
	Store   ports.CatalogRepository
	Sources []Source
	Cache   ports.SearchCache
	Metrics Metrics
	Logger  *slog.Logger

	// Concurrency bounds how many sources load at once. Zero means all.
	Concurrency int

	// AllowEmpty accepts a reload that produces no quotations.
	AllowEmpty bool

	// Debounce is how long Watch waits for changes to settle.
	Debounce time.Duration
}

// ReloadReport describes a completed reload.
type ReloadReport struct {
	Trigger    string        `json:"trigger"`
	Generation uint64        `json:"generation"`
	Quotations int           `json:"quotations"`
	Duplicates int           `json:"duplicates"`
	Skipped    []string      `json:"skipped,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// CatalogService loads the catalog from its sources and swaps it into the
// store. Only one reload runs at a time.
type CatalogService struct {
	store       ports.CatalogRepository
	sources     []Source
	cache       ports.SearchCache
	metrics     Metrics
	logger      *slog.Logger
	executor    *Executor
	concurrency int
	allowEmpty  bool
	debounce    time.Duration

	reloading sync.Mutex

	mu      sync.RWMutex
	lastErr error
	loaded  bool
}

// NewCatalogService creates a catalog service. It panics without a store.
func NewCatalogService(cfg CatalogServiceConfig) *CatalogService {
	if cfg.Store == nil {
		panic("app: CatalogService requires a catalog store")
	}

	if cfg.Metrics == nil {
		cfg.Metrics = noopMetrics{}
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}

	logger := cfg.Logger.With(slog.String("component", "app.CatalogService"))

	return &CatalogService{
		store:       cfg.Store,
		sources:     cfg.Sources,
		cache:       cfg.Cache,
		metrics:     cfg.Metrics,
		logger:      logger,
		executor:    NewExecutor(logger),
		concurrency: cfg.Concurrency,
		allowEmpty:  cfg.AllowEmpty,
		debounce:    cfg.Debounce,
	}
}

type reloadInput struct {
	trigger string
	start   time.Time
}

type reloadPlan struct {
	catalog    domain.Catalog
	duplicates int
	skipped    []string
	generation uint64
}

// Load performs the start-up reload.
func (s *CatalogService) Load(ctx context.Context) (*ReloadReport, error) {
	return s.Reload(ctx, TriggerStartup)
}

// Reload reads every source, verifies the combined catalog and replaces the
// store's catalog. A failing required source or an empty catalog (unless
// allowed) leaves the current catalog in place. A reload requested while one
// is running fails with *domain.ConflictError.
func (s *CatalogService) Reload(ctx context.Context, trigger string) (*ReloadReport, error) {
	if !s.reloading.TryLock() {
		return nil, domain.NewConflictError("catalog reload", "a reload is already running")
	}
	defer s.reloading.Unlock()

	in := reloadInput{trigger: trigger, start: time.Now()}

	report, err := Execute(ctx, s.executor, s.reloadOperation(), in)

	s.mu.Lock()
	s.lastErr = err
	if err == nil {
		s.loaded = true
	}
	s.mu.Unlock()

	if err != nil {
		s.metrics.ObserveReload(false, 0, 0)
		return nil, fmt.Errorf("reloading catalog: %w", err)
	}

	s.metrics.ObserveReload(true, report.Duration, report.Quotations)

	return report, nil
}

func (s *CatalogService) reloadOperation() Operation[reloadInput, []PartialResult[domain.Catalog], *reloadPlan, *ReloadReport] {
	return Operation[reloadInput, []PartialResult[domain.Catalog], *reloadPlan, *ReloadReport]{
		Name: "catalog.reload",
		Validate: func(ctx context.Context, _ reloadInput) error {
			if len(s.sources) == 0 {
				return domain.NewValidationError("catalog.sources", "no catalog sources configured")
			}

			return ctx.Err()
		},
		Perform: func(ctx context.Context, _ reloadInput) ([]PartialResult[domain.Catalog], error) {
			loaders := make([]func(context.Context) (domain.Catalog, error), len(s.sources))
			for i, src := range s.sources {
				loaders[i] = src.Load
			}

			return ParallelPartialLimit(ctx, s.concurrency, loaders...), nil
		},
		Verify: s.verify,
		Archive: func(ctx context.Context, _ reloadInput, plan *reloadPlan) error {
			plan.generation = s.store.Replace(ctx, plan.catalog)

			if s.cache != nil {
				s.cache.Purge(ctx)
			}

			return nil
		},
		Respond: func(_ context.Context, in reloadInput, plan *reloadPlan) (*ReloadReport, error) {
			return &ReloadReport{
				Trigger:    in.trigger,
				Generation: plan.generation,
				Quotations: len(plan.catalog),
				Duplicates: plan.duplicates,
				Skipped:    plan.skipped,
				Duration:   time.Since(in.start),
			}, nil
		},
	}
}

// verify concatenates the source catalogs in configuration order. The first
// record with a given ID wins; later ones are dropped and counted.
func (s *CatalogService) verify(
	ctx context.Context,
	_ reloadInput,
	results []PartialResult[domain.Catalog],
) (*reloadPlan, error) {
	logger := logging.FromContextOr(ctx, s.logger)
	plan := &reloadPlan{catalog: make(domain.Catalog, 0)}
	seen := make(map[string]struct{})

	for i, res := range results {
		src := s.sources[i]

		if res.Err != nil {
			if !src.Optional {
				return nil, fmt.Errorf("source %q: %w", src.Name(), res.Err)
			}

			logger.WarnContext(ctx, "skipping optional catalog source",
				slog.String("source", src.Name()),
				slog.Any("error", res.Err),
			)

			plan.skipped = append(plan.skipped, src.Name())

			continue
		}

		for _, q := range res.Value {
			if q == nil {
				continue
			}

			if q.ID != "" {
				if _, dup := seen[q.ID]; dup {
					plan.duplicates++
					continue
				}

				seen[q.ID] = struct{}{}
			}

			plan.catalog = append(plan.catalog, q)
		}
	}

	if len(plan.catalog) == 0 && !s.allowEmpty {
		return nil, domain.NewValidationError("catalog", "no quotations loaded")
	}

	if plan.duplicates > 0 {
		logger.WarnContext(ctx, "dropped quotations with duplicate IDs", slog.Int("count", plan.duplicates))
	}

	return plan, nil
}

// Watch reloads the catalog after changes arrive on changes, once they have
// been quiet for the debounce period. It returns when ctx is done or changes
// is closed.
func (s *CatalogService) Watch(ctx context.Context, changes <-chan string) error {
	var (
		timer *time.Timer
		fire  <-chan time.Time
		last  string
	)

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case path, ok := <-changes:
			if !ok {
				return nil
			}

			last = path

			if timer == nil {
				timer = time.NewTimer(s.debounce)
			} else {
				timer.Reset(s.debounce)
			}

			fire = timer.C

		case <-fire:
			fire = nil

			report, err := s.Reload(ctx, TriggerWatch)

			switch {
			case err == nil:
				s.logger.InfoContext(ctx, "catalog reloaded after change",
					slog.String("path", last),
					slog.Int("quotations", report.Quotations),
					slog.Uint64("generation", report.Generation),
				)
			case errors.Is(err, context.Canceled):
				return ctx.Err()
			default:
				s.logger.WarnContext(ctx, "catalog reload after change failed",
					slog.String("path", last),
					slog.Any("error", err),
				)
			}
		}
	}
}

// Name implements ports.HealthChecker.
func (s *CatalogService) Name() string {
	return "catalog"
}

// Check implements ports.HealthChecker. The catalog is healthy once a reload
// has succeeded. A later failed reload leaves the previous catalog serving
// and the check passing.
func (s *CatalogService) Check(ctx context.Context) error {
	s.mu.RLock()
	loaded, lastErr := s.loaded, s.lastErr
	s.mu.RUnlock()

	if !loaded {
		if lastErr != nil {
			return fmt.Errorf("catalog not loaded: %w", lastErr)
		}

		return domain.NewUnavailableError("catalog", "not loaded yet")
	}

	if _, gen := s.store.Snapshot(ctx); gen == 0 {
		return domain.NewUnavailableError("catalog", "store is empty")
	}

	return nil
}
