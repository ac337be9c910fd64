package triggerz

import "fmt"

// NotificationKind identifies the kind of a Notification.
type NotificationKind int

const (
	// KindNext is a value notification.
	KindNext NotificationKind = iota
	// KindError is an error terminal.
	KindError
	// KindComplete is a successful terminal.
	KindComplete
)

// Notification is a materialized Observer call.
type Notification[T any] struct {
	Value T
	Err   error
	Kind  NotificationKind
}

// NextOf materializes an OnNext call.
func NextOf[T any](v T) Notification[T] {
	return Notification[T]{Kind: KindNext, Value: v}
}

// ErrorOf materializes an OnError call.
func ErrorOf[T any](err error) Notification[T] {
	return Notification[T]{Kind: KindError, Err: err}
}

// CompleteOf materializes an OnComplete call.
func CompleteOf[T any]() Notification[T] {
	return Notification[T]{Kind: KindComplete}
}

// IsTerminal reports whether n ends a stream.
func (n Notification[T]) IsTerminal() bool {
	return n.Kind != KindNext
}

// Accept replays n on o.
func (n Notification[T]) Accept(o Observer[T]) {
	switch n.Kind {
	case KindNext:
		o.OnNext(n.Value)
	case KindError:
		o.OnError(n.Err)
	case KindComplete:
		o.OnComplete()
	}
}

// String renders n as OnNext(v), OnError(err) or OnCompleted().
func (n Notification[T]) String() string {
	switch n.Kind {
	case KindNext:
		return fmt.Sprintf("OnNext(%v)", n.Value)
	case KindError:
		return fmt.Sprintf("OnError(%v)", n.Err)
	default:
		return "OnCompleted()"
	}
}
