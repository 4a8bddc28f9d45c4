package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
)

// ErrTimeout is wrapped by every failure caused by a request deadline.
var ErrTimeout = stderrors.New("request timed out")

// ClassifyHTTPError maps a non-success HTTP status to a ClassifiedError.
// 4xx responses are irrecoverable except 408 and 429; everything else is retried.
func ClassifyHTTPError(statusCode int, body string, underlying error) *ClassifiedError {
	return &ClassifiedError{
		Category:   categoryFor(statusCode),
		StatusCode: statusCode,
		Body:       body,
		Underlying: underlying,
	}
}

func categoryFor(statusCode int) ErrorCategory {
	switch {
	case statusCode == http.StatusRequestTimeout, statusCode == http.StatusTooManyRequests:
		return Recoverable
	case statusCode >= 400 && statusCode < 500:
		return Irrecoverable
	default:
		return Recoverable
	}
}

// NewHTTPError builds a classified error for an unexpected status on operation.
func NewHTTPError(statusCode int, body, operation string) *ClassifiedError {
	var underlying error
	if statusCode == http.StatusRequestTimeout || statusCode == http.StatusGatewayTimeout {
		underlying = fmt.Errorf("%s failed: HTTP %d: %w", operation, statusCode, ErrTimeout)
	} else {
		underlying = fmt.Errorf("%s failed: HTTP %d", operation, statusCode)
	}
	return ClassifyHTTPError(statusCode, body, underlying)
}

// NewNetworkError classifies a transport-level failure. Deadline expiries are
// tagged with ErrTimeout; caller cancellation is irrecoverable.
func NewNetworkError(operation string, err error) *ClassifiedError {
	if stderrors.Is(err, context.Canceled) {
		return &ClassifiedError{Category: Irrecoverable, Underlying: fmt.Errorf("%s: %w", operation, err)}
	}
	if isTimeout(err) {
		return &ClassifiedError{Category: Recoverable, Underlying: fmt.Errorf("%s: %w: %w", operation, ErrTimeout, err)}
	}
	return &ClassifiedError{Category: Recoverable, Underlying: fmt.Errorf("%s network error: %w", operation, err)}
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return stderrors.As(err, &ne) && ne.Timeout()
}
