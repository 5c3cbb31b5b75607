package match

import (
	"time"

	"github.com/dlclark/regexp2"

	"github.com/jsamuelsen/quote-finder/internal/domain"
)

// Regex accepts candidates that match the pattern in full. A pattern that
// only occurs inside the candidate is not enough.
type Regex struct {
	pattern *string
	re      *regexp2.Regexp
}

// NewRegex compiles pattern with the default match timeout.
// A nil pattern only matches a nil candidate.
func NewRegex(pattern *string, ignoreCase bool) (*Regex, error) {
	return newRegex(pattern, ignoreCase, DefaultMatchTimeout)
}

func newRegex(pattern *string, ignoreCase bool, timeout time.Duration) (*Regex, error) {
	if pattern == nil {
		return &Regex{}, nil
	}

	opts := regexp2.None
	if ignoreCase {
		opts |= regexp2.IgnoreCase
	}

	// Compile the bare pattern first so syntax errors refer to what the user typed.
	if _, err := regexp2.Compile(*pattern, opts); err != nil {
		return nil, domain.NewFilterCompileError(*pattern, err)
	}

	re, err := regexp2.Compile(`\A(?:`+*pattern+`)\z`, opts)
	if err != nil {
		return nil, domain.NewFilterCompileError(*pattern, err)
	}

	if timeout <= 0 {
		timeout = DefaultMatchTimeout
	}

	re.MatchTimeout = timeout

	return &Regex{pattern: pattern, re: re}, nil
}

// Accept reports a full match. A match that exceeds the timeout is a rejection.
func (f *Regex) Accept(candidate *string) bool {
	if decided, ok := nullCheck(f.pattern, candidate); decided {
		return ok
	}

	matched, err := f.re.MatchString(*candidate)
	if err != nil {
		return false
	}

	return matched
}

// Kind returns KindRegex.
func (f *Regex) Kind() Kind { return KindRegex }

func (f *Regex) sealed() {}
