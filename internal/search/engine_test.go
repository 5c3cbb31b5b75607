package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-finder/internal/domain"
)

func sampleCatalog() domain.Catalog {
	return domain.Catalog{
		{ID: "r0", FirstName: "Jane", LastName: "Doe", Topic: "life", Text: "Life is what happens"},
		{ID: "r1", FirstName: "John", LastName: "Smith", Topic: "work", Text: "Work is worship"},
		{ID: "r2", FirstName: "Jane", LastName: "Roe", Topic: "life", Text: "Life is short"},
		{ID: "r3", Topic: "art", Text: "L'art pour l'art, c'est déjà ça"},
		{ID: "r4", FirstName: "Robert", LastName: "Frost", Text: "The woods are lovely, dark and deep"},
	}
}

func ids(r Result) []string {
	out := make([]string, 0, len(r.Records))
	for _, q := range r.Records {
		out = append(out, q.ID)
	}

	return out
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name     string
		req      Request
		expected []string
	}{
		{
			name:     "no filters match everything",
			req:      Request{},
			expected: []string{"r0", "r1", "r2", "r3", "r4"},
		},
		{
			name:     "keyword keeps catalog order",
			req:      Request{Keyword: "life"},
			expected: []string{"r0", "r2"},
		},
		{
			name:     "keyword matches topic",
			req:      Request{Keyword: "work", MatchCase: true},
			expected: []string{"r1"},
		},
		{
			name:     "case sensitive keyword",
			req:      Request{Keyword: "life", MatchCase: true},
			expected: []string{"r0", "r2"},
		},
		{
			name:     "case sensitive keyword without topic hit",
			req:      Request{Keyword: "Work", MatchCase: true},
			expected: []string{"r1"},
		},
		{
			name:     "accent folded text",
			req:      Request{Keyword: "deja"},
			expected: []string{"r3"},
		},
		{
			name:     "accented keyword does not match folded text",
			req:      Request{Keyword: "déjà"},
			expected: []string{},
		},
		{
			name:     "author only",
			req:      Request{Author: "jane"},
			expected: []string{"r0", "r2"},
		},
		{
			name:     "anonymous author",
			req:      Request{Author: "anonymous"},
			expected: []string{"r3"},
		},
		{
			name:     "keyword and author",
			req:      Request{Keyword: "short", Author: "Jane"},
			expected: []string{"r2"},
		},
		{
			name:     "wildcard behaves like contains all",
			req:      Request{Keyword: "life is", Strategy: StrategyWildcard},
			expected: []string{"r0", "r2"},
		},
		{
			name:     "wildcard has no glob grammar",
			req:      Request{Keyword: "Lif*", Strategy: StrategyWildcard},
			expected: []string{},
		},
		{
			name:     "regex full match",
			req:      Request{Keyword: `life is .*`, Strategy: StrategyRegex},
			expected: []string{"r0", "r2"},
		},
		{
			name:     "regex partial match rejected",
			req:      Request{Keyword: `short`, Strategy: StrategyRegex},
			expected: []string{},
		},
		{
			name:     "regex matches topic in full",
			req:      Request{Keyword: `a.t`, Strategy: StrategyRegex},
			expected: []string{"r3"},
		},
		{
			name:     "regex matching empty input ignores missing topic",
			req:      Request{Keyword: `x*`, Strategy: StrategyRegex},
			expected: []string{},
		},
		{
			name:     "soundex on topic",
			req:      Request{Keyword: "lyfe", Strategy: StrategySoundex},
			expected: []string{"r0", "r2"},
		},
		{
			name:     "author uses containment regardless of strategy",
			req:      Request{Author: "Frost", Strategy: StrategyRegex},
			expected: []string{"r4"},
		},
		{
			name:     "cap stops at limit",
			req:      Request{LimitEnabled: true, LimitValue: "2"},
			expected: []string{"r0", "r1"},
		},
		{
			name:     "cap disabled ignores value",
			req:      Request{Keyword: "life", LimitValue: "0"},
			expected: []string{"r0", "r2"},
		},
		{
			name:     "unparseable cap returns nothing",
			req:      Request{LimitEnabled: true, LimitValue: "ten"},
			expected: []string{},
		},
		{
			name:     "zero cap returns nothing",
			req:      Request{LimitEnabled: true, LimitValue: "0"},
			expected: []string{},
		},
		{
			name:     "empty cap returns nothing",
			req:      Request{LimitEnabled: true},
			expected: []string{},
		},
	}

	engine := NewEngine()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := engine.Search(context.Background(), sampleCatalog(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ids(result))
		})
	}
}

func TestSearch_EndToEnd(t *testing.T) {
	catalog := domain.Catalog{
		{FirstName: "Jane", LastName: "Doe", Topic: "life", Text: "Life is what happens"},
	}
	engine := NewEngine()

	result, err := engine.Search(context.Background(), catalog, Request{Keyword: "happens"})
	require.NoError(t, err)
	require.Equal(t, 1, result.Len())
	assert.Same(t, catalog[0], result.Records[0], "results reference catalog records")

	result, err = engine.Search(context.Background(), catalog, Request{Keyword: "xyz"})
	require.NoError(t, err)
	assert.Zero(t, result.Len())
}

func TestSearch_OrderPreserved(t *testing.T) {
	catalog := domain.Catalog{
		{ID: "r0", Text: "match here"},
		{ID: "r1", Text: "nothing"},
		{ID: "r2", Text: "another match"},
	}

	result, err := NewEngine().Search(context.Background(), catalog, Request{Keyword: "match"})
	require.NoError(t, err)
	assert.Equal(t, []string{"r0", "r2"}, ids(result))
}

func TestSearch_CappedFlag(t *testing.T) {
	engine := NewEngine()

	result, err := engine.Search(context.Background(), sampleCatalog(), Request{LimitEnabled: true, LimitValue: "2"})
	require.NoError(t, err)
	assert.True(t, result.Capped)
	assert.Equal(t, 2, result.Limit)

	result, err = engine.Search(context.Background(), sampleCatalog(), Request{Keyword: "worship", LimitEnabled: true, LimitValue: "5"})
	require.NoError(t, err)
	assert.False(t, result.Capped)

	result, err = engine.Search(context.Background(), sampleCatalog(), Request{})
	require.NoError(t, err)
	assert.Equal(t, -1, result.Limit)
	assert.False(t, result.Capped)
}

func TestSearch_InvalidRegex(t *testing.T) {
	_, err := NewEngine().Search(context.Background(), sampleCatalog(), Request{
		Keyword:  "(life",
		Strategy: StrategyRegex,
	})

	require.Error(t, err)
	assert.True(t, domain.IsFilterCompile(err))
}

func TestSearch_InvalidRegexBeforeCapShortCircuit(t *testing.T) {
	_, err := NewEngine().Search(context.Background(), sampleCatalog(), Request{
		Keyword:      "[",
		Strategy:     StrategyRegex,
		LimitEnabled: true,
		LimitValue:   "0",
	})

	require.Error(t, err)
}

func TestSearch_UnknownStrategy(t *testing.T) {
	_, err := NewEngine().Search(context.Background(), sampleCatalog(), Request{
		Keyword:  "life",
		Strategy: Strategy(42),
	})

	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestSearch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine().Search(ctx, sampleCatalog(), Request{Keyword: "life"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestSearch_EmptyCatalog(t *testing.T) {
	result, err := NewEngine().Search(context.Background(), nil, Request{Keyword: "life"})
	require.NoError(t, err)
	assert.NotNil(t, result.Records)
	assert.Zero(t, result.Len())
}

func largeCatalog(n int) domain.Catalog {
	catalog := make(domain.Catalog, n)
	for i := range catalog {
		text := "filler text"
		if i%7 == 0 {
			text = "needle in the haystack"
		}

		catalog[i] = &domain.Quotation{ID: fmt.Sprintf("q%04d", i), Text: text}
	}

	return catalog
}

func TestSearch_ShardedMatchesSequential(t *testing.T) {
	catalog := largeCatalog(1000)
	sequential := NewEngine()
	sharded := NewEngine(WithShards(4), WithMinShardSize(10))

	requests := []Request{
		{Keyword: "needle"},
		{Keyword: "needle", LimitEnabled: true, LimitValue: "1"},
		{Keyword: "needle", LimitEnabled: true, LimitValue: "37"},
		{Keyword: "needle", LimitEnabled: true, LimitValue: "100000"},
		{Keyword: "filler", LimitEnabled: true, LimitValue: "500"},
	}

	for _, req := range requests {
		t.Run(req.Keyword+"/"+req.LimitValue, func(t *testing.T) {
			want, err := sequential.Search(context.Background(), catalog, req)
			require.NoError(t, err)

			got, err := sharded.Search(context.Background(), catalog, req)
			require.NoError(t, err)

			assert.Equal(t, ids(want), ids(got))
			assert.Equal(t, want.Capped, got.Capped)
		})
	}
}

func TestSearch_ShardedManyShards(t *testing.T) {
	catalog := largeCatalog(11)
	engine := NewEngine(WithShards(10), WithMinShardSize(1))

	result, err := engine.Search(context.Background(), catalog, Request{Keyword: "needle"})
	require.NoError(t, err)
	assert.Equal(t, []string{"q0000", "q0007"}, ids(result))
}

func TestSearch_ShardedCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewEngine(WithShards(4), WithMinShardSize(10))
	_, err := engine.Search(ctx, largeCatalog(200), Request{Keyword: "needle"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestSearch_FoldsOnlyQuotationText(t *testing.T) {
	catalog := domain.Catalog{
		{ID: "topic", FirstName: "José", LastName: "Martí", Topic: "café", Text: "Honor is worth more than gold"},
		{ID: "text", LastName: "Balzac", Topic: "morning", Text: "Le café est prêt"},
	}

	tests := []struct {
		name     string
		req      Request
		expected []string
	}{
		{"plain keyword hits folded text only", Request{Keyword: "cafe"}, []string{"text"}},
		{"accented keyword hits raw topic only", Request{Keyword: "café"}, []string{"topic"}},
		{"accented keyword case sensitive", Request{Keyword: "café", MatchCase: true}, []string{"topic"}},
		{"regex on raw topic", Request{Keyword: "caf.", Strategy: StrategyRegex}, []string{"topic"}},
		{"plain author misses accented name", Request{Author: "Marti"}, []string{}},
		{"plain first name misses", Request{Author: "jose"}, []string{}},
		{"accented author matches raw name", Request{Author: "josé martí"}, []string{"topic"}},
	}

	engine := NewEngine()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := engine.Search(context.Background(), catalog, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ids(result))
		})
	}
}
