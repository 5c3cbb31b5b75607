// Package search scans a quotation catalog with keyword and author filters.
//
// A search is a read-only pass over the catalog. Results keep catalog order,
// relevance is a yes or no per record, and an optional cap bounds how many
// records come back.
package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jsamuelsen/quote-finder/internal/domain"
	"github.com/jsamuelsen/quote-finder/internal/match"
)

// Strategy selects how the keyword is matched.
type Strategy int

const (
	// StrategyContainsAll requires every phrase of the keyword.
	StrategyContainsAll Strategy = iota
	// StrategyWildcard behaves exactly like StrategyContainsAll. There is no glob grammar.
	StrategyWildcard
	// StrategyRegex requires the keyword pattern to match the whole candidate.
	StrategyRegex
	// StrategySoundex compares phonetic codes.
	StrategySoundex
)

var strategyNames = []string{
	StrategyContainsAll: "contains_all",
	StrategyWildcard:    "wildcard",
	StrategyRegex:       "regex",
	StrategySoundex:     "soundex",
}

func (s Strategy) String() string {
	if s >= 0 && int(s) < len(strategyNames) {
		return strategyNames[s]
	}

	return fmt.Sprintf("strategy(%d)", int(s))
}

// ParseStrategy maps a strategy name to a Strategy. The empty string is
// StrategyContainsAll; "contains" is accepted as an alias.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "contains_all", "contains":
		return StrategyContainsAll, nil
	case "wildcard":
		return StrategyWildcard, nil
	case "regex":
		return StrategyRegex, nil
	case "soundex":
		return StrategySoundex, nil
	default:
		return 0, domain.NewValidationErrorWithValue("strategy", "unknown strategy", name)
	}
}

// StrategyNames lists the accepted strategy names in display order.
func StrategyNames() []string {
	return append([]string(nil), strategyNames...)
}

func (s Strategy) filterKind() (match.Kind, error) {
	switch s {
	case StrategyContainsAll, StrategyWildcard:
		return match.KindContainsAll, nil
	case StrategyRegex:
		return match.KindRegex, nil
	case StrategySoundex:
		return match.KindSound, nil
	default:
		return 0, domain.NewValidationErrorWithValue("strategy", "unknown strategy", s.String())
	}
}

// Request describes one search. Empty Keyword or Author means the filter is absent.
type Request struct {
	Keyword   string
	Author    string
	Strategy  Strategy
	MatchCase bool

	// LimitEnabled turns on the result cap. LimitValue is parsed with
	// ParseLimit; when it is not a positive integer the search returns nothing.
	LimitEnabled bool
	LimitValue   string
}

// Limit returns the parsed cap, or -1 when the cap is disabled.
func (r Request) Limit() int {
	if !r.LimitEnabled {
		return -1
	}

	return ParseLimit(r.LimitValue)
}

// ParseLimit parses a cap value. Empty or unparseable input yields -1.
func ParseLimit(value string) int {
	if value == "" {
		return -1
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return -1
	}

	return n
}

// Result holds the matching quotations in catalog order. The pointers refer
// to the catalog's own records.
type Result struct {
	Records []*domain.Quotation

	// Limit is the cap in effect, or -1 when capping is disabled.
	Limit int

	// Capped reports that the cap was reached.
	Capped bool
}

// Len returns the number of matching records.
func (r Result) Len() int {
	return len(r.Records)
}
