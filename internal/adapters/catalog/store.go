package catalog

import (
	"context"
	"sync/atomic"

	"github.com/jsamuelsen/quote-finder/internal/domain"
	"github.com/jsamuelsen/quote-finder/internal/ports"
)

// Ensure Store implements the interface.
var _ ports.CatalogRepository = (*Store)(nil)

type snapshot struct {
	catalog    domain.Catalog
	generation uint64
	index      map[string]int
}

// Store is the in-memory catalog repository. Readers get an immutable
// snapshot and never block; Replace swaps the whole catalog atomically.
type Store struct {
	current atomic.Pointer[snapshot]
}

// NewStore creates an empty store at generation zero.
func NewStore() *Store {
	s := &Store{}
	s.current.Store(&snapshot{catalog: domain.Catalog{}, index: map[string]int{}})

	return s
}

// Snapshot implements ports.CatalogRepository.
func (s *Store) Snapshot(context.Context) (domain.Catalog, uint64) {
	snap := s.current.Load()
	return snap.catalog, snap.generation
}

// Replace implements ports.CatalogRepository. The store keeps its own copy
// of the slice so callers may reuse theirs.
func (s *Store) Replace(_ context.Context, catalog domain.Catalog) uint64 {
	owned := make(domain.Catalog, len(catalog))
	copy(owned, catalog)

	index := make(map[string]int, len(owned))
	for i, q := range owned {
		if _, ok := index[q.ID]; !ok {
			index[q.ID] = i
		}
	}

	for {
		old := s.current.Load()
		next := &snapshot{catalog: owned, generation: old.generation + 1, index: index}

		if s.current.CompareAndSwap(old, next) {
			return next.generation
		}
	}
}

// Get implements ports.CatalogRepository.
func (s *Store) Get(_ context.Context, id string) (*domain.Quotation, error) {
	snap := s.current.Load()

	if i, ok := snap.index[id]; ok {
		return snap.catalog[i], nil
	}

	return nil, domain.NewNotFoundError("quotation", id)
}

// Len returns the number of quotations in the current catalog.
func (s *Store) Len() int {
	return len(s.current.Load().catalog)
}
