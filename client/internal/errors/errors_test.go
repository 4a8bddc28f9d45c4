package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCategoryFor(t *testing.T) {
	t.Parallel()
	cases := []struct {
		status int
		want   ErrorCategory
	}{
		{http.StatusBadRequest, Irrecoverable},
		{http.StatusNotFound, Irrecoverable},
		{http.StatusRequestTimeout, Recoverable},
		{http.StatusTooManyRequests, Recoverable},
		{http.StatusInternalServerError, Recoverable},
		{http.StatusBadGateway, Recoverable},
	}
	for _, c := range cases {
		if got := categoryFor(c.status); got != c.want {
			t.Fatalf("status %d: got %s want %s", c.status, got, c.want)
		}
	}
}

func TestNewHTTPError_GatewayTimeoutIsTimeout(t *testing.T) {
	t.Parallel()
	err := NewHTTPError(http.StatusGatewayTimeout, "", "llm request")
	if !stderrors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout in chain: %v", err)
	}
	if IsIrrecoverable(err) {
		t.Fatal("504 should be retried")
	}
}

func TestNewNetworkError(t *testing.T) {
	t.Parallel()
	deadline := NewNetworkError("get notes", fmt.Errorf("dial: %w", context.DeadlineExceeded))
	if !stderrors.Is(deadline, ErrTimeout) || deadline.Category != Recoverable {
		t.Fatalf("deadline not classified as recoverable timeout: %v", deadline)
	}
	canceled := NewNetworkError("get notes", context.Canceled)
	if !IsIrrecoverable(canceled) {
		t.Fatalf("cancellation should be irrecoverable: %v", canceled)
	}
	plain := NewNetworkError("get notes", stderrors.New("connection refused"))
	if plain.Category != Recoverable || stderrors.Is(plain, ErrTimeout) {
		t.Fatalf("unexpected classification: %v", plain)
	}
}

func TestIsIrrecoverable_Wrapped(t *testing.T) {
	t.Parallel()
	err := fmt.Errorf("save: %w", Permanent(stderrors.New("bad")))
	if !IsIrrecoverable(err) {
		t.Fatal("expected wrapped permanent error to be irrecoverable")
	}
	if IsIrrecoverable(stderrors.New("plain")) {
		t.Fatal("plain errors are recoverable")
	}
	if Permanent(nil) != nil {
		t.Fatal("Permanent(nil) must be nil")
	}
}
