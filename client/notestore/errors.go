package notestore

import (
	"errors"
	"fmt"

	"github.com/quillmind/quillmind/client"
)

var (
	// ErrNoteNotFound is returned for ids that are not in the local list.
	ErrNoteNotFound = errors.New("note not in store")
	// ErrNoSession is returned by draft operations when nothing is being edited.
	ErrNoSession = errors.New("no edit session open")
	// ErrDeleteInFlight is returned when a note is already being deleted.
	ErrDeleteInFlight = errors.New("delete already in flight")
)

// OpError reports a failed store operation together with its user-visible kind.
type OpError struct {
	Kind   client.Kind
	NoteID int64
	Err    error
}

func (e *OpError) Error() string {
	if e.NoteID != 0 {
		return fmt.Sprintf("%s: note %d: %v", e.Kind, e.NoteID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// FailureKind lets client.KindOf recognise the error.
func (e *OpError) FailureKind() client.Kind { return e.Kind }
