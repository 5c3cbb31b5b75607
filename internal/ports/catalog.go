// Package ports defines the contracts between the finder's application layer
// and its adapters.
//
// Ports take a context first, return domain types and report failures with
// the domain error types (ErrNotFound, ErrUnavailable, ...).
package ports

import (
	"context"

	"github.com/jsamuelsen/quote-finder/internal/domain"
	"github.com/jsamuelsen/quote-finder/internal/search"
)

// CatalogSource produces quotations from one origin: a file, a remote
// endpoint. Sources are loaded at start-up and on every reload.
type CatalogSource interface {
	// Name identifies the source in logs and health checks.
	Name() string

	// Load reads the full set of quotations from the source, in source order.
	// Returns domain.ErrUnavailable when the source cannot be reached and
	// domain.ErrValidation when its content is malformed.
	Load(ctx context.Context) (domain.Catalog, error)
}

// CatalogRepository holds the catalog that searches run against.
type CatalogRepository interface {
	// Snapshot returns the current catalog and its generation. The catalog
	// must be treated as read-only; it is never modified in place.
	Snapshot(ctx context.Context) (domain.Catalog, uint64)

	// Replace swaps in a new catalog and returns its generation.
	Replace(ctx context.Context, catalog domain.Catalog) uint64

	// Get returns one quotation by ID or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Quotation, error)
}

// SearchCache memoizes search results. Keys already encode the catalog
// generation, so stale entries are simply never read again.
type SearchCache interface {
	Get(ctx context.Context, key string) (search.Result, bool)
	Set(ctx context.Context, key string, result search.Result)

	// Purge drops every entry.
	Purge(ctx context.Context)
}
