package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen/quote-finder/internal/app"
	"github.com/jsamuelsen/quote-finder/internal/domain"
	"github.com/jsamuelsen/quote-finder/internal/ports"
	"github.com/jsamuelsen/quote-finder/internal/search"
)

type mockSearchService struct {
	mock.Mock
}

func (m *mockSearchService) Search(ctx context.Context, req search.Request) (search.Result, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(search.Result), args.Error(1)
}

func (m *mockSearchService) Get(ctx context.Context, id string) (*domain.Quotation, error) {
	args := m.Called(ctx, id)

	q, _ := args.Get(0).(*domain.Quotation)

	return q, args.Error(1)
}

func (m *mockSearchService) List(ctx context.Context, after string, n int) (domain.Catalog, error) {
	args := m.Called(ctx, after, n)

	catalog, _ := args.Get(0).(domain.Catalog)

	return catalog, args.Error(1)
}

type mockReloader struct {
	mock.Mock
}

func (m *mockReloader) Reload(ctx context.Context, trigger string) (*app.ReloadReport, error) {
	args := m.Called(ctx, trigger)

	report, _ := args.Get(0).(*app.ReloadReport)

	return report, args.Error(1)
}

type mockHealthChecks struct {
	mock.Mock
}

func (m *mockHealthChecks) CheckAll(ctx context.Context) *ports.HealthResult {
	args := m.Called(ctx)
	return args.Get(0).(*ports.HealthResult)
}

type staticCatalog struct {
	catalog    domain.Catalog
	generation uint64
}

func (s staticCatalog) Snapshot(context.Context) (domain.Catalog, uint64) {
	return s.catalog, s.generation
}

func quotations(ids ...string) domain.Catalog {
	catalog := make(domain.Catalog, 0, len(ids))
	for _, id := range ids {
		catalog = append(catalog, &domain.Quotation{ID: id, Text: "quote " + id})
	}

	return catalog
}
