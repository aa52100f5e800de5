package core

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors for handling decisions.
type ErrorCategory string

const (
	ErrCatValidation ErrorCategory = "validation" // Invalid input
	ErrCatBackend    ErrorCategory = "backend"    // Remote backend failure
	ErrCatTimeout    ErrorCategory = "timeout"    // Operation timed out
	ErrCatParse      ErrorCategory = "parse"      // Malformed backend output
	ErrCatDebate     ErrorCategory = "debate"     // Debate protocol failure
	ErrCatNetwork    ErrorCategory = "network"    // Network connectivity
	ErrCatState      ErrorCategory = "state"      // Persistence failure
	ErrCatNotFound   ErrorCategory = "not_found"  // Resource not found
	ErrCatInternal   ErrorCategory = "internal"   // Unexpected internal error
)

// DomainError represents a structured error from the domain layer.
type DomainError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Retryable bool
	Cause     error
	Details   map[string]interface{}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches a target.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Category == t.Category && e.Code == t.Code
}

// WithCause wraps an underlying error.
func (e *DomainError) WithCause(cause error) *DomainError {
	e.Cause = cause
	return e
}

// WithDetail adds contextual information.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ErrValidation creates a validation error.
func ErrValidation(code, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatValidation,
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

// ErrBackend creates a backend failure error.
func ErrBackend(backend, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatBackend,
		Code:      CodeBackendFailed,
		Message:   message,
		Retryable: true,
		Details:   map[string]interface{}{"backend": backend},
	}
}

// ErrUnavailable creates an error for a backend that cannot be reached
// at all (binary missing, client not constructed). Not retryable: an
// absent CLI will still be absent on the next attempt.
func ErrUnavailable(backend, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatBackend,
		Code:      CodeBackendUnavailable,
		Message:   message,
		Retryable: false,
		Details:   map[string]interface{}{"backend": backend},
	}
}

// ErrRateLimit creates a rate limit error.
func ErrRateLimit(message string) *DomainError {
	return &DomainError{
		Category:  ErrCatBackend,
		Code:      CodeRateLimit,
		Message:   message,
		Retryable: true,
	}
}

// ErrAuth creates an authentication error. Not retryable; a bad key
// does not get better on the second try.
func ErrAuth(message string) *DomainError {
	return &DomainError{
		Category:  ErrCatBackend,
		Code:      CodeAuthFailed,
		Message:   message,
		Retryable: false,
	}
}

// ErrTimeout creates a timeout error.
func ErrTimeout(message string) *DomainError {
	return &DomainError{
		Category:  ErrCatTimeout,
		Code:      "TIMEOUT",
		Message:   message,
		Retryable: true,
	}
}

// ErrMalformedOutput creates a parse error for a backend reply that
// contained no usable structured payload.
func ErrMalformedOutput(backend, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatParse,
		Code:      CodeMalformedOutput,
		Message:   message,
		Retryable: false,
		Details:   map[string]interface{}{"backend": backend},
	}
}

// ErrDebateFailed creates a debate protocol error naming the phase the
// protocol broke in.
func ErrDebateFailed(phase DebatePhase, cause error) *DomainError {
	return &DomainError{
		Category:  ErrCatDebate,
		Code:      CodeDebateFailed,
		Message:   fmt.Sprintf("debate failed at phase %s", phase),
		Retryable: false,
		Cause:     cause,
		Details:   map[string]interface{}{"phase": phase},
	}
}

// ErrState creates a persistence error.
func ErrState(code, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatState,
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

// ErrNotFound creates a not found error.
func ErrNotFound(resource, id string) *DomainError {
	return &DomainError{
		Category:  ErrCatNotFound,
		Code:      "NOT_FOUND",
		Message:   fmt.Sprintf("%s not found: %s", resource, id),
		Retryable: false,
	}
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Retryable
	}
	return false
}

// GetCategory extracts the error category.
func GetCategory(err error) ErrorCategory {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Category
	}
	return ErrCatInternal
}

// IsCategory checks if an error belongs to a category.
func IsCategory(err error, cat ErrorCategory) bool {
	return GetCategory(err) == cat
}

// Predefined error codes
const (
	CodeBackendFailed      = "BACKEND_FAILED"
	CodeRateLimit          = "RATE_LIMIT"
	CodeAuthFailed         = "AUTH_FAILED"
	CodeBackendUnavailable = "BACKEND_UNAVAILABLE"
	CodeMalformedOutput    = "MALFORMED_OUTPUT"
	CodeDebateFailed       = "DEBATE_FAILED"
	CodeEmptyText          = "EMPTY_TEXT"
	CodeTextTooLong        = "TEXT_TOO_LONG"
	CodeNoBackends         = "NO_BACKENDS"
	CodeInvalidConfig      = "INVALID_CONFIG"
	CodeInvalidRounds      = "INVALID_ROUNDS"
	CodeInvalidTimeout     = "INVALID_TIMEOUT"
)
