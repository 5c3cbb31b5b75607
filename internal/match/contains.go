package match

import "strings"

// ContainsAll accepts candidates that contain every phrase of the query, each
// at least as many times as it appears in the query.
type ContainsAll struct {
	ignoreCase bool
	counts     map[string]int
	order      []string
}

// NewContainsAll parses query into phrases and counts their occurrences.
func NewContainsAll(query string, ignoreCase bool) *ContainsAll {
	f := &ContainsAll{ignoreCase: ignoreCase, counts: make(map[string]int)}

	for _, p := range ParsePhrases(query) {
		if ignoreCase {
			p = strings.ToLower(p)
		}

		if f.counts[p] == 0 {
			f.order = append(f.order, p)
		}

		f.counts[p]++
	}

	return f
}

// Accept rejects a nil candidate. Repeat occurrences are searched from one
// past the previous match, so "aa" occurs twice in "aaa".
func (f *ContainsAll) Accept(candidate *string) bool {
	if candidate == nil {
		return false
	}

	target := *candidate
	if f.ignoreCase {
		target = strings.ToLower(target)
	}

	for _, phrase := range f.order {
		if !containsTimes(target, phrase, f.counts[phrase]) {
			return false
		}
	}

	return true
}

// Kind returns KindContainsAll.
func (f *ContainsAll) Kind() Kind { return KindContainsAll }

func (f *ContainsAll) sealed() {}

func containsTimes(s, phrase string, n int) bool {
	offset := 0

	for range n {
		if offset > len(s) {
			return false
		}

		i := strings.Index(s[offset:], phrase)
		if i < 0 {
			return false
		}

		offset += i + 1
	}

	return true
}

// ContainsSome accepts candidates that contain at least one phrase of the query.
type ContainsSome struct {
	ignoreCase bool
	phrases    []string
}

// NewContainsSome parses query into phrases.
func NewContainsSome(query string, ignoreCase bool) *ContainsSome {
	phrases := ParsePhrases(query)
	if ignoreCase {
		for i, p := range phrases {
			phrases[i] = strings.ToLower(p)
		}
	}

	return &ContainsSome{ignoreCase: ignoreCase, phrases: phrases}
}

// Accept rejects a nil candidate and stops at the first phrase found.
func (f *ContainsSome) Accept(candidate *string) bool {
	if candidate == nil {
		return false
	}

	target := *candidate
	if f.ignoreCase {
		target = strings.ToLower(target)
	}

	for _, p := range f.phrases {
		if strings.Contains(target, p) {
			return true
		}
	}

	return false
}

// Kind returns KindContainsSome.
func (f *ContainsSome) Kind() Kind { return KindContainsSome }

func (f *ContainsSome) sealed() {}
