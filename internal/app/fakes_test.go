package app

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen/quote-finder/internal/domain"
	"github.com/jsamuelsen/quote-finder/internal/search"
)

// discardLogger returns a logger that discards all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memRepo struct {
	mu      sync.RWMutex
	catalog domain.Catalog
	gen     uint64
}

func newMemRepo(catalog domain.Catalog) *memRepo {
	r := &memRepo{}
	if catalog != nil {
		r.catalog, r.gen = catalog, 1
	}

	return r
}

func (r *memRepo) Snapshot(context.Context) (domain.Catalog, uint64) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.catalog, r.gen
}

func (r *memRepo) Replace(_ context.Context, catalog domain.Catalog) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.catalog = catalog
	r.gen++

	return r.gen
}

func (r *memRepo) Get(_ context.Context, id string) (*domain.Quotation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if q, ok := r.catalog.Find(id); ok {
		return q, nil
	}

	return nil, domain.NewNotFoundError("quotation", id)
}

type mapCache struct {
	mu      sync.Mutex
	entries map[string]search.Result
	purges  int
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]search.Result)}
}

func (c *mapCache) Get(_ context.Context, key string) (search.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.entries[key]

	return r, ok
}

func (c *mapCache) Set(_ context.Context, key string, result search.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = result
}

func (c *mapCache) Purge(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]search.Result)
	c.purges++
}

func (c *mapCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

type mockSource struct {
	mock.Mock

	name string
}

func newMockSource(name string) *mockSource {
	return &mockSource{name: name}
}

func (m *mockSource) Name() string {
	return m.name
}

func (m *mockSource) Load(ctx context.Context) (domain.Catalog, error) {
	args := m.Called(ctx)

	catalog, _ := args.Get(0).(domain.Catalog)

	return catalog, args.Error(1)
}

type recordingMetrics struct {
	mu       sync.Mutex
	outcomes []string
	hits     int
	misses   int
	reloads  []bool
	size     int
}

func (m *recordingMetrics) ObserveSearch(_, outcome string, _ time.Duration, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.outcomes = append(m.outcomes, outcome)
}

func (m *recordingMetrics) ObserveCache(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func (m *recordingMetrics) ObserveReload(ok bool, _ time.Duration, size int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reloads = append(m.reloads, ok)
	if ok {
		m.size = size
	}
}

func quotations(ids ...string) domain.Catalog {
	out := make(domain.Catalog, 0, len(ids))
	for _, id := range ids {
		out = append(out, &domain.Quotation{ID: id, Text: "quotation " + id})
	}

	return out
}

func catalogIDs(c domain.Catalog) []string {
	out := make([]string, 0, len(c))
	for _, q := range c {
		out = append(out, q.ID)
	}

	return out
}
