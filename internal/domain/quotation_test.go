package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuotation_DisplayName(t *testing.T) {
	tests := []struct {
		name     string
		first    string
		last     string
		expected string
	}{
		{name: "both names", first: "Jane", last: "Doe", expected: "Jane Doe"},
		{name: "first only", first: "Voltaire", expected: "Voltaire"},
		{name: "last only", last: "Plato", expected: "Plato"},
		{name: "neither", expected: AnonymousAuthor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &Quotation{FirstName: tt.first, LastName: tt.last, Text: "x"}
			assert.Equal(t, tt.expected, q.DisplayName())
			assert.NotEmpty(t, q.DisplayName())
		})
	}
}

func TestCatalog_Find(t *testing.T) {
	c := Catalog{
		{ID: "a", Text: "first"},
		{ID: "b", Text: "second"},
	}

	q, ok := c.Find("b")
	assert.True(t, ok)
	assert.Equal(t, "second", q.Text)

	_, ok = c.Find("missing")
	assert.False(t, ok)
}

func TestCatalog_Index(t *testing.T) {
	c := Catalog{
		{ID: "a", Text: "first"},
		{ID: "b", Text: "second"},
	}

	assert.Equal(t, 0, c.Index("a"))
	assert.Equal(t, 1, c.Index("b"))
	assert.Equal(t, -1, c.Index("missing"))
	assert.Equal(t, -1, Catalog(nil).Index("a"))
}

func TestStableID(t *testing.T) {
	id := StableID("Jane", "Doe", "Life is short")

	assert.Len(t, id, 36)
	assert.Equal(t, id, StableID("Jane", "Doe", "Life is short"))
	assert.NotEqual(t, id, StableID("Jane", "Doe", "Life is long"))
	assert.NotEqual(t, StableID("ab", "c", "x"), StableID("a", "bc", "x"))
}
