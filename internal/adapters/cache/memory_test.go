package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-finder/internal/domain"
	"github.com/jsamuelsen/quote-finder/internal/search"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute, time.Minute)

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	result := search.Result{
		Records: []*domain.Quotation{{ID: "q1", Text: "Life is short"}},
		Limit:   1,
		Capped:  true,
	}

	c.Set(ctx, "1|contains_all|life", result)

	got, ok := c.Get(ctx, "1|contains_all|life")
	require.True(t, ok)
	assert.Equal(t, result, got)
	assert.Equal(t, 1, c.Len())

	c.Purge(ctx)

	_, ok = c.Get(ctx, "1|contains_all|life")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10*time.Millisecond, time.Hour)

	c.Set(ctx, "k", search.Result{Limit: -1})

	assert.Eventually(t, func() bool {
		_, ok := c.Get(ctx, "k")
		return !ok
	}, time.Second, 5*time.Millisecond)
}
