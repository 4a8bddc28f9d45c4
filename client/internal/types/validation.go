package types

import (
	"fmt"
	"net/http"
	"strings"
)

// HTTPClient is satisfied by *http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ErrNotFound is returned when the backend reports a missing note.
var ErrNotFound = fmt.Errorf("note not found")

// ErrInvalidArgument is wrapped by every client-side validation failure.
var ErrInvalidArgument = fmt.Errorf("invalid argument")

// ValidateNoteID rejects identifiers the backend can never have issued.
func ValidateNoteID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: note id must be positive, got %d", ErrInvalidArgument, id)
	}
	return nil
}

// ValidateQuestion rejects empty or whitespace-only questions.
func ValidateQuestion(q string) error {
	if strings.TrimSpace(q) == "" {
		return fmt.Errorf("%w: question is empty", ErrInvalidArgument)
	}
	return nil
}
