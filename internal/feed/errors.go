package feed

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	// InitializationFailure: the status call failed, the feed cannot start.
	InitializationFailure ErrorKind = iota + 1
	// BatchFetchFailure: a recommendation fetch failed; the queue is intact.
	BatchFetchFailure
	// FeedbackFailure: a like/skip call failed; local state is unchanged.
	FeedbackFailure
)

func (k ErrorKind) String() string {
	switch k {
	case InitializationFailure:
		return "initialization failure"
	case BatchFetchFailure:
		return "batch fetch failure"
	case FeedbackFailure:
		return "feedback failure"
	default:
		return "unknown failure"
	}
}

var ErrToggleInFlight = errors.New("feedback for this item is already in flight")

type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err carries a feed Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == kind
}
