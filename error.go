package triggerz

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidArgument is matched by every *ArgumentError.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrSelectorPanic wraps a panic raised inside a user-supplied
	// predicate or selector.
	ErrSelectorPanic = errors.New("selector panicked")
)

// ArgumentError reports a missing or invalid argument, detected before any
// subscription is made.
type ArgumentError struct {
	Param  string
	Reason string
}

// Error implements the error interface.
func (e *ArgumentError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("triggerz: %v: %s is required", ErrInvalidArgument, e.Param)
	}
	return fmt.Sprintf("triggerz: %v: %s %s", ErrInvalidArgument, e.Param, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidArgument) hold.
func (e *ArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func missing(param string) error {
	return &ArgumentError{Param: param}
}

// StreamError represents an error that occurred during stream processing.
// It captures both the item that caused the error and the error itself,
// enabling better debugging and error handling strategies.
//
//nolint:govet // fieldalignment: struct layout optimized for readability over memory
type StreamError[T any] struct {
	// Item is the original item that caused the processing error.
	Item T

	// Err is the underlying error that occurred during processing.
	Err error

	// ProcessorName identifies which operator generated the error.
	ProcessorName string

	// Timestamp records when the error occurred.
	Timestamp time.Time
}

// NewStreamError creates a new StreamError with the current timestamp.
func NewStreamError[T any](item T, err error, processorName string) *StreamError[T] {
	return &StreamError[T]{
		Item:          item,
		Err:           err,
		ProcessorName: processorName,
		Timestamp:     time.Now(),
	}
}

// String returns a human-readable representation of the error.
func (se *StreamError[T]) String() string {
	return fmt.Sprintf("StreamError[%s]: %v (item: %v, time: %s)",
		se.ProcessorName, se.Err, se.Item, se.Timestamp.Format(time.RFC3339))
}

// Unwrap returns the underlying error, enabling error wrapping chains.
func (se *StreamError[T]) Unwrap() error {
	return se.Err
}

// Error implements the error interface.
func (se *StreamError[T]) Error() string {
	return se.String()
}

// guard runs fn and converts a panic into an ErrSelectorPanic error.
func guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("%w: %w", ErrSelectorPanic, e)
				return
			}
			err = fmt.Errorf("%w: %v", ErrSelectorPanic, r)
		}
	}()
	fn()
	return nil
}

// test evaluates a predicate on item, reporting a panic as a *StreamError.
func test[T any](pred func(T) bool, item T, name string) (ok bool, err error) {
	if perr := guard(func() { ok = pred(item) }); perr != nil {
		return false, NewStreamError(item, perr, name)
	}
	return ok, nil
}
