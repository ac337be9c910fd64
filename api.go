// Package triggerz provides push-based event stream combinators built around the
// Trigger operator: a state machine that watches a shared stream, opens a
// "charging" window whenever a start condition is met, and resolves each window
// to either a single downstream notification (released) or a silent discard
// (cancelled).
//
// The core abstraction is the Observable interface. A consumer subscribes with an
// Observer and receives zero or more OnNext values followed by at most one
// terminal (OnError or OnComplete). Disposing the returned Disposable stops
// further delivery and releases every resource the subscription holds.
//
// Basic usage:
//
//	sched := triggerz.DefaultScheduler
//
//	// Start charging on every "save", cancel on "abort",
//	// release after 500ms without further events.
//	trig := triggerz.NewTrigger(
//		func(e Event) bool { return e.Kind == "save" },
//		func(w *triggerz.Window[Event]) triggerz.Observable[any] {
//			return triggerz.AsAny(triggerz.Filter(w, func(e Event) bool { return e.Kind == "abort" }))
//		},
//		sched,
//	).ReleaseAfter(func(int) time.Duration { return 500 * time.Millisecond })
//
//	released, err := trig.Observe(events)
//	if err != nil {
//		return err
//	}
//	sub := released.Subscribe(triggerz.ObserverFuncs[triggerz.Unit]{
//		Next: func(triggerz.Unit) { rebuild() },
//	})
//	defer sub.Dispose()
//
// Overlapping windows are governed by a TriggerPolicy:
//   - CancelPreviousOnTriggerStart: a new start cancels the open window
//   - IndependentTriggers: every start charges its own window
//   - DiscardTriggerIfAlreadyStarted: starts are ignored while a window is open
//
// The package also carries the small runtime the Trigger is composed from
// (Share, SplitWindows, Debounce, Filter, Skip, ...), deterministic and real-time
// schedulers, and bridges to channel-based Processors.
package triggerz

import (
	"context"
)

// Processor is the channel-facing interface for stream processing components.
// It transforms an input channel of type In to an output channel of type Out.
// Processors should:
//   - Close the output channel when the input channel is closed
//   - Respect context cancellation
//   - Be safe for concurrent use
type Processor[In, Out any] interface {
	// Process transforms the input channel to an output channel.
	// It should close the output channel when processing is complete.
	Process(ctx context.Context, in <-chan In) <-chan Out

	// Name returns a descriptive name for the processor, useful for debugging.
	Name() string
}

// Observer receives the notifications of a subscription.
// Calls to a single Observer are never made concurrently by the operators in
// this package that serialize their output (Trigger), but plain operators pass
// through whatever concurrency their source delivers with.
type Observer[T any] interface {
	OnNext(value T)
	OnError(err error)
	OnComplete()
}

// Observable is a push-based source of values.
type Observable[T any] interface {
	// Subscribe starts delivery to o. Disposing the result stops delivery and
	// releases the resources held by the subscription.
	Subscribe(o Observer[T]) Disposable
}

// Unit is the value emitted by signal-only streams.
type Unit struct{}

// String renders Unit the way it appears in notification dumps.
func (Unit) String() string {
	return "()"
}

// ObserverFuncs adapts plain functions to the Observer interface.
// Nil functions are ignored.
type ObserverFuncs[T any] struct {
	Next     func(T)
	Error    func(error)
	Complete func()
}

// OnNext calls Next if set.
func (f ObserverFuncs[T]) OnNext(v T) {
	if f.Next != nil {
		f.Next(v)
	}
}

// OnError calls Error if set.
func (f ObserverFuncs[T]) OnError(err error) {
	if f.Error != nil {
		f.Error(err)
	}
}

// OnComplete calls Complete if set.
func (f ObserverFuncs[T]) OnComplete() {
	if f.Complete != nil {
		f.Complete()
	}
}

// ObservableFunc adapts a subscribe function to the Observable interface.
// Unlike Create, it does not guard the observer; use it for operators that
// already enforce the notification contract themselves.
type ObservableFunc[T any] func(o Observer[T]) Disposable

// Subscribe calls f.
func (f ObservableFunc[T]) Subscribe(o Observer[T]) Disposable {
	return f(o)
}
