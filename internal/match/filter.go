// Package match holds the text matching primitives of the finder: the term
// filters, the phrase parser, Soundex, edit distance and accent folding.
//
// Everything in this package is safe for concurrent use. Filters are
// immutable after construction and the helpers keep no state.
package match

import (
	"fmt"
	"time"
)

// TermFilter decides whether a candidate string matches a term.
// A nil candidate stands for an absent value.
//
// The set of implementations is closed; use New or the variant constructors.
type TermFilter interface {
	Accept(candidate *string) bool
	Kind() Kind

	sealed()
}

// Kind names a TermFilter variant.
type Kind int

const (
	KindContainsAll Kind = iota
	KindContainsSome
	KindExact
	KindEndsWith
	KindRegex
	KindSound
	KindSimilar
)

var kindNames = map[Kind]string{
	KindContainsAll:  "contains_all",
	KindContainsSome: "contains_some",
	KindExact:        "exact",
	KindEndsWith:     "ends_with",
	KindRegex:        "regex",
	KindSound:        "sound",
	KindSimilar:      "similar",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

// DefaultMatchTimeout bounds a single regex evaluation.
const DefaultMatchTimeout = 250 * time.Millisecond

type options struct {
	ignoreCase   bool
	maxDistance  int
	matchTimeout time.Duration
}

// Option configures filter construction.
type Option func(*options)

// IgnoreCase makes the filter compare case-insensitively.
func IgnoreCase(ignore bool) Option {
	return func(o *options) {
		o.ignoreCase = ignore
	}
}

// MaxDistance sets the edit distance threshold of the similar filter.
func MaxDistance(n int) Option {
	return func(o *options) {
		o.maxDistance = n
	}
}

// MatchTimeout bounds the time spent evaluating one candidate against a
// regex filter. Zero or negative means DefaultMatchTimeout.
func MatchTimeout(d time.Duration) Option {
	return func(o *options) {
		o.matchTimeout = d
	}
}

// New builds the filter of the given kind for term. Only the regex kind can
// fail, with a *domain.FilterCompileError.
func New(kind Kind, term *string, opts ...Option) (TermFilter, error) {
	o := options{matchTimeout: DefaultMatchTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	switch kind {
	case KindContainsAll:
		return NewContainsAll(deref(term), o.ignoreCase), nil
	case KindContainsSome:
		return NewContainsSome(deref(term), o.ignoreCase), nil
	case KindExact:
		return NewExact(term, o.ignoreCase), nil
	case KindEndsWith:
		return NewEndsWith(term, o.ignoreCase), nil
	case KindRegex:
		re, err := newRegex(term, o.ignoreCase, o.matchTimeout)
		if err != nil {
			return nil, err
		}

		return re, nil
	case KindSound:
		return NewSound(term, o.ignoreCase), nil
	case KindSimilar:
		return NewSimilar(term, o.ignoreCase, o.maxDistance), nil
	default:
		return nil, fmt.Errorf("unknown filter kind %d", int(kind))
	}
}

// nullCheck applies the shared null rules: absence matches absence and never
// matches a value. decided is false when both sides are present.
func nullCheck(term, candidate *string) (decided, accept bool) {
	switch {
	case term == nil && candidate == nil:
		return true, true
	case term == nil || candidate == nil:
		return true, false
	default:
		return false, false
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
