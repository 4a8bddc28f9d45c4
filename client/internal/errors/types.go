// Package errors classifies SDK transport failures so retry policies can tell
// transient failures from permanent ones.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory determines how an error is treated by retry logic.
type ErrorCategory int

const (
	// Recoverable errors are retried with exponential backoff
	// (5xx responses, connection failures, timeouts).
	Recoverable ErrorCategory = iota

	// Irrecoverable errors fail immediately (400, 401, 403, 404, ...).
	Irrecoverable
)

// String returns a human-readable representation of the category.
func (c ErrorCategory) String() string {
	switch c {
	case Recoverable:
		return "Recoverable"
	case Irrecoverable:
		return "Irrecoverable"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// ClassifiedError wraps an error with categorization metadata.
type ClassifiedError struct {
	Category   ErrorCategory
	StatusCode int    // 0 for non-HTTP failures
	Body       string // response body, for debugging
	Underlying error
}

func (e *ClassifiedError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%s] HTTP %d: %v", e.Category, e.StatusCode, e.Underlying)
	}
	return fmt.Sprintf("[%s] %v", e.Category, e.Underlying)
}

func (e *ClassifiedError) Unwrap() error { return e.Underlying }

// IsIrrecoverable reports whether err, or any error it wraps, must not be retried.
func IsIrrecoverable(err error) bool {
	var ce *ClassifiedError
	if stderrors.As(err, &ce) {
		return ce.Category == Irrecoverable
	}
	return false
}

// Permanent marks err as irrecoverable regardless of its origin.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &ClassifiedError{Category: Irrecoverable, Underlying: err}
}
