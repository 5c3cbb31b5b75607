// Package domain holds the quotation entities and the errors the finder reports.
// Errors here describe lookup and matching failures; adapters translate them
// to HTTP statuses or CLI exit codes.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrNotFound indicates the requested quotation or resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates the operation collides with one already in progress.
	ErrConflict = errors.New("conflict")

	// ErrValidation indicates a request or record failed validation.
	ErrValidation = errors.New("validation failed")

	// ErrUnavailable indicates the catalog or a catalog source cannot be reached.
	ErrUnavailable = errors.New("unavailable")
)

// NotFoundError names the entity that could not be found.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with id %q not found", e.Entity, e.ID)
	}

	return e.Entity + " not found"
}

// Unwrap returns ErrNotFound.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError creates a not found error.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError reports an operation that cannot run right now.
type ConflictError struct {
	Operation string
	Reason    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Operation, e.Reason)
}

// Unwrap returns ErrConflict.
func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// NewConflictError creates a conflict error.
func NewConflictError(operation, reason string) error {
	return &ConflictError{Operation: operation, Reason: reason}
}

// ValidationError describes an invalid field.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}

	return "validation failed: " + e.Message
}

// Unwrap returns ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a validation error.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewValidationErrorWithValue creates a validation error carrying the rejected value.
func NewValidationErrorWithValue(field, message string, value any) error {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// FilterCompileError is returned when a pattern handed to the regex strategy
// does not compile. It is raised before any record is scanned.
type FilterCompileError struct {
	Pattern string
	Cause   error
}

func (e *FilterCompileError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Cause)
}

// Unwrap exposes both ErrValidation and the compiler's error.
func (e *FilterCompileError) Unwrap() []error {
	return []error{ErrValidation, e.Cause}
}

// NewFilterCompileError creates a filter compile error.
func NewFilterCompileError(pattern string, cause error) error {
	return &FilterCompileError{Pattern: pattern, Cause: cause}
}

// UnavailableError names the source that could not be reached.
type UnavailableError struct {
	Service string
	Reason  string
}

func (e *UnavailableError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("service %q unavailable: %s", e.Service, e.Reason)
	}

	return fmt.Sprintf("service %q unavailable", e.Service)
}

// Unwrap returns ErrUnavailable.
func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}

// NewUnavailableError creates an unavailable error.
func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

// IsNotFound reports whether err is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether err is a conflict error.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsValidation reports whether err is a validation error.
// FilterCompileError counts as one.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsFilterCompile reports whether err came from compiling a search pattern.
func IsFilterCompile(err error) bool {
	var fce *FilterCompileError
	return errors.As(err, &fce)
}

// IsUnavailable reports whether err is an unavailable error.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
