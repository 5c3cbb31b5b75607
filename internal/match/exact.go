package match

import "strings"

// Exact accepts candidates equal to the stored term.
type Exact struct {
	term       *string
	ignoreCase bool
}

// NewExact stores term without phrase parsing. A nil term only matches a nil candidate.
func NewExact(term *string, ignoreCase bool) *Exact {
	return &Exact{term: term, ignoreCase: ignoreCase}
}

// Accept compares candidate to the term.
func (f *Exact) Accept(candidate *string) bool {
	if decided, ok := nullCheck(f.term, candidate); decided {
		return ok
	}

	if f.ignoreCase {
		return strings.EqualFold(*f.term, *candidate)
	}

	return *f.term == *candidate
}

// Kind returns KindExact.
func (f *Exact) Kind() Kind { return KindExact }

func (f *Exact) sealed() {}

// EndsWith accepts candidates that end with the stored term.
type EndsWith struct {
	term       *string
	ignoreCase bool
}

// NewEndsWith stores term without phrase parsing.
func NewEndsWith(term *string, ignoreCase bool) *EndsWith {
	return &EndsWith{term: term, ignoreCase: ignoreCase}
}

// Accept tests whether candidate has the term as a suffix.
func (f *EndsWith) Accept(candidate *string) bool {
	if decided, ok := nullCheck(f.term, candidate); decided {
		return ok
	}

	if f.ignoreCase {
		return strings.HasSuffix(strings.ToLower(*candidate), strings.ToLower(*f.term))
	}

	return strings.HasSuffix(*candidate, *f.term)
}

// Kind returns KindEndsWith.
func (f *EndsWith) Kind() Kind { return KindEndsWith }

func (f *EndsWith) sealed() {}
