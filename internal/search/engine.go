package search

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen/quote-finder/internal/domain"
	"github.com/jsamuelsen/quote-finder/internal/match"
)

// Engine runs searches. It holds no per-search state and is safe for
// concurrent use as long as the catalogs it is given are not modified.
type Engine struct {
	shards       int
	minShardSize int
	matchTimeout time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithShards scans the catalog in n contiguous shards concurrently.
// Values below 2 keep the scan sequential.
func WithShards(n int) Option {
	return func(e *Engine) {
		e.shards = n
	}
}

// WithMinShardSize sets the smallest catalog slice worth a goroutine.
func WithMinShardSize(n int) Option {
	return func(e *Engine) {
		e.minShardSize = max(n, 1)
	}
}

// WithMatchTimeout bounds each regex evaluation.
func WithMatchTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.matchTimeout = d
	}
}

// NewEngine creates an Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		shards:       1,
		minShardSize: 256,
		matchTimeout: match.DefaultMatchTimeout,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Filters is the pair of filters built from a request. A nil field means the
// corresponding criterion is absent.
type Filters struct {
	Keyword match.TermFilter
	Author  match.TermFilter
}

// BuildFilters compiles the request's filters. The author filter always uses
// phrase containment whatever the keyword strategy. A pattern that does not
// compile is reported as *domain.FilterCompileError.
func (e *Engine) BuildFilters(req Request) (Filters, error) {
	var f Filters

	ignoreCase := !req.MatchCase

	if req.Keyword != "" {
		kind, err := req.Strategy.filterKind()
		if err != nil {
			return Filters{}, err
		}

		keyword := req.Keyword

		f.Keyword, err = match.New(kind, &keyword,
			match.IgnoreCase(ignoreCase),
			match.MatchTimeout(e.matchTimeout),
		)
		if err != nil {
			return Filters{}, err
		}
	}

	if req.Author != "" {
		f.Author = match.NewContainsAll(req.Author, ignoreCase)
	}

	return f, nil
}

// Matches applies the filters to one quotation. Keyword filters see the
// accent-folded text and the raw topic; the author filter sees the raw
// display name.
func (f Filters) Matches(q *domain.Quotation) bool {
	if f.Keyword != nil {
		text := match.Normalize(q.Text)
		if !f.Keyword.Accept(&text) && !f.Keyword.Accept(optional(q.Topic)) {
			return false
		}
	}

	if f.Author != nil {
		name := q.DisplayName()
		if !f.Author.Accept(&name) {
			return false
		}
	}

	return true
}

// Search returns the quotations of catalog accepted by req, in catalog order.
//
// With the cap enabled and a limit below one the result is empty and the
// catalog is not scanned. Cancelling ctx stops the scan and returns ctx.Err().
func (e *Engine) Search(ctx context.Context, catalog domain.Catalog, req Request) (Result, error) {
	filters, err := e.BuildFilters(req)
	if err != nil {
		return Result{}, err
	}

	limit := req.Limit()

	if req.LimitEnabled && limit < 1 {
		return Result{Records: []*domain.Quotation{}, Limit: limit}, nil
	}

	var records []*domain.Quotation
	if e.useShards(len(catalog)) {
		records, err = e.scanSharded(ctx, catalog, filters, limit)
	} else {
		records, err = scan(ctx, catalog, filters, limit)
	}

	if err != nil {
		return Result{}, err
	}

	return Result{
		Records: records,
		Limit:   limit,
		Capped:  limit > 0 && len(records) == limit,
	}, nil
}

func (e *Engine) useShards(n int) bool {
	return e.shards > 1 && n >= e.minShardSize*2
}

// scan walks catalog in order and stops once limit records matched.
// A limit below one means no cap.
func scan(ctx context.Context, catalog domain.Catalog, f Filters, limit int) ([]*domain.Quotation, error) {
	records := make([]*domain.Quotation, 0)

	for _, q := range catalog {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !f.Matches(q) {
			continue
		}

		records = append(records, q)
		if limit > 0 && len(records) >= limit {
			break
		}
	}

	return records, nil
}

// scanSharded splits catalog into contiguous shards, collects every match of
// every shard, merges them in shard order and only then applies the cap.
func (e *Engine) scanSharded(
	ctx context.Context,
	catalog domain.Catalog,
	f Filters,
	limit int,
) ([]*domain.Quotation, error) {
	shards := min(e.shards, len(catalog)/e.minShardSize)
	size := (len(catalog) + shards - 1) / shards
	partial := make([][]*domain.Quotation, shards)

	g, gctx := errgroup.WithContext(ctx)

	for i := range shards {
		lo := min(i*size, len(catalog))
		hi := min(lo+size, len(catalog))

		g.Go(func() error {
			found, err := scan(gctx, catalog[lo:hi], f, 0)
			if err != nil {
				return err
			}

			partial[i] = found

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]*domain.Quotation, 0)
	for _, p := range partial {
		records = append(records, p...)
	}

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	return records, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
