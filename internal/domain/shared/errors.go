// Package shared contains common domain types, errors, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
	ErrRateLimited        = errors.New("rate limited")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "schedule", "semester"
	Op      string // Operation that failed, e.g., "Merge", "ResolveDate"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Schedule domain errors
var (
	ErrBlankSubgroup     = NewDomainError("schedule", "Merge", ErrInvalidInput, "subgroup cannot be blank")
	ErrWeekOutOfRange    = NewDomainError("schedule", "ResolveDate", ErrInvalidInput, "week number must be positive")
	ErrWeekdayOutOfRange = NewDomainError("schedule", "ResolveDate", ErrInvalidInput, "day of week must be in [1,7]")
	ErrRingNotFound      = NewDomainError("schedule", "Resolve", ErrNotFound, "no ring starts at the given time")
	ErrUnparsableClock   = NewDomainError("shared", "ParseClock", ErrInvalidFormat, "cannot parse hour/minute pair")
	ErrUnknownWeekday    = NewDomainError("shared", "ParseWeekday", ErrInvalidFormat, "unknown weekday token")
)

// External service errors
var (
	ErrScheduleAPIUnavailable     = NewDomainError("szgmu", "Request", ErrServiceUnavailable, "schedule API is unavailable")
	ErrScheduleAPIRateLimited     = NewDomainError("szgmu", "Request", ErrRateLimited, "schedule API rate limit exceeded")
	ErrScheduleAPITimeout         = NewDomainError("szgmu", "Request", ErrTimeout, "schedule API request timeout")
	ErrScheduleAPIInvalidResponse = NewDomainError("szgmu", "Parse", ErrInvalidFormat, "invalid response from schedule API")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimited)
}
