package match

import "strings"

// Sound accepts candidates whose Soundex code equals the term's.
type Sound struct {
	term       *string
	code       string
	ignoreCase bool
}

// NewSound encodes term once. Codes keep the case of the first letter, so
// ignoreCase decides whether "robert" and "Rupert" agree.
func NewSound(term *string, ignoreCase bool) *Sound {
	f := &Sound{term: term, ignoreCase: ignoreCase}
	if term != nil {
		f.code = Soundex(*term)
	}

	return f
}

// Accept compares the candidate's code with the stored one.
func (f *Sound) Accept(candidate *string) bool {
	if decided, ok := nullCheck(f.term, candidate); decided {
		return ok
	}

	code := Soundex(*candidate)
	if f.ignoreCase {
		return strings.EqualFold(f.code, code)
	}

	return f.code == code
}

// Kind returns KindSound.
func (f *Sound) Kind() Kind { return KindSound }

func (f *Sound) sealed() {}

// Similar accepts candidates within an edit distance of the term.
type Similar struct {
	term        *string
	ignoreCase  bool
	maxDistance int
}

// NewSimilar stores term and the inclusive distance threshold.
func NewSimilar(term *string, ignoreCase bool, maxDistance int) *Similar {
	return &Similar{term: term, ignoreCase: ignoreCase, maxDistance: maxDistance}
}

// Accept reports whether Distance(term, candidate) <= maxDistance.
func (f *Similar) Accept(candidate *string) bool {
	if decided, ok := nullCheck(f.term, candidate); decided {
		return ok
	}

	a, b := *f.term, *candidate
	if f.ignoreCase {
		a, b = strings.ToLower(a), strings.ToLower(b)
	}

	return Distance(a, b) <= f.maxDistance
}

// Kind returns KindSimilar.
func (f *Similar) Kind() Kind { return KindSimilar }

func (f *Similar) sealed() {}
