package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-finder/internal/domain"
)

func TestNewCatalogService_PanicsWithoutStore(t *testing.T) {
	assert.Panics(t, func() {
		NewCatalogService(CatalogServiceConfig{})
	})
}

func TestCatalogService_Reload(t *testing.T) {
	errDown := domain.NewUnavailableError("remote", "connection refused")

	tests := []struct {
		name        string
		setup       func(a, b *mockSource)
		optionalB   bool
		allowEmpty  bool
		expectedIDs []string
		duplicates  int
		skipped     []string
		errStep     ExecutionStep
	}{
		{
			name: "concatenates in source order",
			setup: func(a, b *mockSource) {
				a.On("Load", mock.Anything).Return(quotations("a1", "a2"), nil)
				b.On("Load", mock.Anything).Return(quotations("b1"), nil)
			},
			expectedIDs: []string{"a1", "a2", "b1"},
		},
		{
			name: "first duplicate wins",
			setup: func(a, b *mockSource) {
				a.On("Load", mock.Anything).Return(quotations("x", "y"), nil)
				b.On("Load", mock.Anything).Return(quotations("y", "z", "x"), nil)
			},
			expectedIDs: []string{"x", "y", "z"},
			duplicates:  2,
		},
		{
			name: "optional source failure is skipped",
			setup: func(a, b *mockSource) {
				a.On("Load", mock.Anything).Return(quotations("a1"), nil)
				b.On("Load", mock.Anything).Return(nil, errDown)
			},
			optionalB:   true,
			expectedIDs: []string{"a1"},
			skipped:     []string{"b"},
		},
		{
			name: "required source failure aborts",
			setup: func(a, b *mockSource) {
				a.On("Load", mock.Anything).Return(quotations("a1"), nil)
				b.On("Load", mock.Anything).Return(nil, errDown)
			},
			errStep: StepVerify,
		},
		{
			name: "empty catalog rejected",
			setup: func(a, b *mockSource) {
				a.On("Load", mock.Anything).Return(domain.Catalog{}, nil)
				b.On("Load", mock.Anything).Return(domain.Catalog{}, nil)
			},
			errStep: StepVerify,
		},
		{
			name: "empty catalog allowed",
			setup: func(a, b *mockSource) {
				a.On("Load", mock.Anything).Return(domain.Catalog{}, nil)
				b.On("Load", mock.Anything).Return(domain.Catalog{}, nil)
			},
			allowEmpty:  true,
			expectedIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := newMockSource("a"), newMockSource("b")
			tt.setup(a, b)

			store := newMemRepo(quotations("old"))
			cache := newMapCache()
			metrics := &recordingMetrics{}

			svc := NewCatalogService(CatalogServiceConfig{
				Store:      store,
				Sources:    []Source{{CatalogSource: a}, {CatalogSource: b, Optional: tt.optionalB}},
				Cache:      cache,
				Metrics:    metrics,
				Logger:     discardLogger(),
				AllowEmpty: tt.allowEmpty,
			})

			report, err := svc.Reload(context.Background(), TriggerAdmin)

			a.AssertExpectations(t)
			b.AssertExpectations(t)

			current, gen := store.Snapshot(context.Background())

			if tt.errStep != "" {
				require.Error(t, err)

				step, ok := FailedStep(err)
				require.True(t, ok)
				assert.Equal(t, tt.errStep, step)
				assert.Equal(t, []string{"old"}, catalogIDs(current))
				assert.Equal(t, uint64(1), gen)
				assert.Zero(t, cache.purges)
				assert.Equal(t, []bool{false}, metrics.reloads)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, TriggerAdmin, report.Trigger)
			assert.Equal(t, uint64(2), report.Generation)
			assert.Equal(t, len(tt.expectedIDs), report.Quotations)
			assert.Equal(t, tt.duplicates, report.Duplicates)
			assert.Equal(t, tt.skipped, report.Skipped)
			assert.Equal(t, tt.expectedIDs, catalogIDs(current))
			assert.Equal(t, 1, cache.purges)
			assert.Equal(t, []bool{true}, metrics.reloads)
			assert.Equal(t, len(tt.expectedIDs), metrics.size)
		})
	}
}

func TestCatalogService_Reload_RequiredFailureKeepsCause(t *testing.T) {
	src := newMockSource("remote")
	src.On("Load", mock.Anything).Return(nil, domain.NewUnavailableError("remote", "down"))

	svc := NewCatalogService(CatalogServiceConfig{
		Store:   newMemRepo(nil),
		Sources: []Source{{CatalogSource: src}},
		Logger:  discardLogger(),
	})

	_, err := svc.Load(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err))
	assert.Contains(t, err.Error(), `source "remote"`)
}

func TestCatalogService_Reload_NoSources(t *testing.T) {
	svc := NewCatalogService(CatalogServiceConfig{
		Store:  newMemRepo(nil),
		Logger: discardLogger(),
	})

	_, err := svc.Load(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	step, _ := FailedStep(err)
	assert.Equal(t, StepValidate, step)
}

func TestCatalogService_Reload_Conflict(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	src := newMockSource("slow")
	src.On("Load", mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(quotations("s1"), nil).
		Once()

	svc := NewCatalogService(CatalogServiceConfig{
		Store:   newMemRepo(nil),
		Sources: []Source{{CatalogSource: src}},
		Logger:  discardLogger(),
	})

	var (
		wg       sync.WaitGroup
		firstErr error
	)

	wg.Go(func() {
		_, firstErr = svc.Reload(context.Background(), TriggerAdmin)
	})

	<-started

	_, err := svc.Reload(context.Background(), TriggerAdmin)
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))

	close(release)
	wg.Wait()

	require.NoError(t, firstErr)
}

func TestCatalogService_Check(t *testing.T) {
	src := newMockSource("file")
	src.On("Load", mock.Anything).Return(nil, errors.New("no such file")).Once()
	src.On("Load", mock.Anything).Return(quotations("f1"), nil).Once()
	src.On("Load", mock.Anything).Return(nil, errors.New("parse error")).Once()

	svc := NewCatalogService(CatalogServiceConfig{
		Store:   newMemRepo(nil),
		Sources: []Source{{CatalogSource: src}},
		Logger:  discardLogger(),
	})

	ctx := context.Background()

	assert.Equal(t, "catalog", svc.Name())
	assert.True(t, domain.IsUnavailable(svc.Check(ctx)))

	_, err := svc.Load(ctx)
	require.Error(t, err)
	assert.ErrorContains(t, svc.Check(ctx), "no such file")

	_, err = svc.Reload(ctx, TriggerAdmin)
	require.NoError(t, err)
	require.NoError(t, svc.Check(ctx))

	_, err = svc.Reload(ctx, TriggerAdmin)
	require.Error(t, err)
	assert.NoError(t, svc.Check(ctx))
}

func TestCatalogService_Watch(t *testing.T) {
	var (
		mu    sync.Mutex
		loads int
	)

	src := newMockSource("file")
	src.On("Load", mock.Anything).
		Run(func(mock.Arguments) {
			mu.Lock()
			loads++
			mu.Unlock()
		}).
		Return(quotations("w1"), nil)

	store := newMemRepo(nil)

	svc := NewCatalogService(CatalogServiceConfig{
		Store:    store,
		Sources:  []Source{{CatalogSource: src}},
		Logger:   discardLogger(),
		Debounce: 20 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan string)
	done := make(chan error, 1)

	go func() { done <- svc.Watch(ctx, changes) }()

	for range 5 {
		changes <- "quotations.yaml"
	}

	assert.Eventually(t, func() bool {
		_, gen := store.Snapshot(ctx)
		return gen == 1
	}, time.Second, 5*time.Millisecond)

	// The burst collapses into one reload.
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	assert.Equal(t, 1, loads)
	mu.Unlock()

	close(changes)
	require.NoError(t, <-done)
}

func TestCatalogService_Watch_StopsOnCancel(t *testing.T) {
	svc := NewCatalogService(CatalogServiceConfig{
		Store:  newMemRepo(nil),
		Logger: discardLogger(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := svc.Watch(ctx, make(chan string))
	require.ErrorIs(t, err, context.Canceled)
}
