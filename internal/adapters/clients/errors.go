// Package clients provides the resilient HTTP client used to pull catalogs
// from remote quotation sources.
package clients

import "errors"

// Transport-level failures. Callers translate them into domain errors (see
// the acl package) before they reach the application layer.
var (
	// ErrCircuitOpen is returned without contacting the remote while its
	// circuit breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last failure once every attempt is spent.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)
