package client

import (
	"errors"
	"fmt"

	clerrors "github.com/quillmind/quillmind/client/internal/errors"
	"github.com/quillmind/quillmind/client/internal/shardqueue"
	"github.com/quillmind/quillmind/client/internal/types"
)

// ErrEmptyBaseURL is returned by New when no backend address is given.
var ErrEmptyBaseURL = errors.New("baseURL cannot be empty")

// ErrTimeout is wrapped by every failure caused by an expired deadline.
var ErrTimeout = clerrors.ErrTimeout

// IsTimeout reports whether err was caused by a deadline.
func IsTimeout(err error) bool { return errors.Is(err, ErrTimeout) }

// ErrBackPressure is returned when the client's internal shard queue is full.
var ErrBackPressure = shardqueue.ErrQueueFull

// IsBackPressure reports whether err is a back-pressure error.
func IsBackPressure(err error) bool { return errors.Is(err, ErrBackPressure) }

// Re-export shared SDK errors so callers compare against a single symbol.
var (
	ErrNotFound        = types.ErrNotFound
	ErrInvalidArgument = types.ErrInvalidArgument
)

// IsRetryable reports whether a failed call may succeed if repeated.
func IsRetryable(err error) bool {
	return err != nil && !clerrors.IsIrrecoverable(err)
}

// Kind names the user-visible failure classes.
type Kind int

const (
	LoadFailure Kind = iota + 1
	SaveFailure
	DeleteFailure
	AskFailure
	// Timeout marks any operation whose backend call ran out of time.
	Timeout
)

func (k Kind) String() string {
	switch k {
	case LoadFailure:
		return "LoadFailure"
	case SaveFailure:
		return "SaveFailure"
	case DeleteFailure:
		return "DeleteFailure"
	case AskFailure:
		return "AskFailure"
	case Timeout:
		return "Timeout"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// KindOf extracts the failure kind carried by err, if any. Timeouts report
// Timeout whatever operation they interrupted.
func KindOf(err error) (Kind, bool) {
	if IsTimeout(err) {
		return Timeout, true
	}
	var k interface{ FailureKind() Kind }
	if errors.As(err, &k) {
		return k.FailureKind(), true
	}
	return 0, false
}
