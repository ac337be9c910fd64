// Package testing provides test utilities for triggerz.
package testing

import (
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/triggerz"
)

// Recorder is an Observer that keeps every notification it receives,
// stamped with the scheduler time of its arrival. It is safe for concurrent
// use.
type Recorder[T any] struct {
	sched   triggerz.Scheduler
	changed chan struct{}
	items   []Recorded[T]
	mu      sync.Mutex
}

// Recorded is one notification and its arrival time.
type Recorded[T any] struct {
	At           time.Time
	Notification triggerz.Notification[T]
}

// NewRecorder creates a Recorder stamping notifications with sched.Now().
// A nil sched leaves the stamps zero.
func NewRecorder[T any](sched triggerz.Scheduler) *Recorder[T] {
	return &Recorder[T]{sched: sched, changed: make(chan struct{}, 1)}
}

func (r *Recorder[T]) add(n triggerz.Notification[T]) {
	var at time.Time
	if r.sched != nil {
		at = r.sched.Now()
	}
	r.mu.Lock()
	r.items = append(r.items, Recorded[T]{At: at, Notification: n})
	r.mu.Unlock()

	select {
	case r.changed <- struct{}{}:
	default:
	}
}

// OnNext records a value.
func (r *Recorder[T]) OnNext(v T) { r.add(triggerz.NextOf(v)) }

// OnError records an error terminal.
func (r *Recorder[T]) OnError(err error) { r.add(triggerz.ErrorOf[T](err)) }

// OnComplete records a completion.
func (r *Recorder[T]) OnComplete() { r.add(triggerz.CompleteOf[T]()) }

// Notifications returns a copy of everything recorded so far.
func (r *Recorder[T]) Notifications() []Recorded[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Recorded[T], len(r.items))
	copy(out, r.items)
	return out
}

// Values returns the recorded values in arrival order.
func (r *Recorder[T]) Values() []T {
	var values []T
	for _, it := range r.Notifications() {
		if it.Notification.Kind == triggerz.KindNext {
			values = append(values, it.Notification.Value)
		}
	}
	return values
}

// Terminal returns the recorded terminal, if any.
func (r *Recorder[T]) Terminal() (Recorded[T], bool) {
	for _, it := range r.Notifications() {
		if it.Notification.IsTerminal() {
			return it, true
		}
	}
	return Recorded[T]{}, false
}

// Completed reports whether the stream completed successfully.
func (r *Recorder[T]) Completed() bool {
	it, ok := r.Terminal()
	return ok && it.Notification.Kind == triggerz.KindComplete
}

// Err returns the error terminal, or nil.
func (r *Recorder[T]) Err() error {
	it, ok := r.Terminal()
	if !ok {
		return nil
	}
	return it.Notification.Err
}

// WaitForValues blocks until n values are recorded or timeout elapses and
// returns the values seen.
func (r *Recorder[T]) WaitForValues(t *testing.T, n int, timeout time.Duration) []T {
	t.Helper()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		if values := r.Values(); len(values) >= n {
			return values
		}
		select {
		case <-r.changed:
		case <-timer.C:
			values := r.Values()
			t.Errorf("expected %d values, got %d after %v", n, len(values), timeout)
			return values
		}
	}
}

// CollectResultsWithTimeout collects all results from a channel with a timeout.
func CollectResultsWithTimeout[T any](t *testing.T, ch <-chan triggerz.Result[T], timeout time.Duration) []triggerz.Result[T] {
	t.Helper()

	var results []triggerz.Result[T]
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case result, ok := <-ch:
			if !ok {
				return results
			}
			results = append(results, result)
		case <-timer.C:
			return results
		}
	}
}

// CollectValues collects all successful values from a Result channel with a timeout.
// Returns only the values, ignoring errors.
func CollectValues[T any](t *testing.T, ch <-chan triggerz.Result[T], timeout time.Duration) []T {
	t.Helper()

	results := CollectResultsWithTimeout(t, ch, timeout)
	values := make([]T, 0, len(results))
	for _, r := range results {
		if r.IsSuccess() {
			values = append(values, r.Value())
		}
	}
	return values
}

// CollectErrors collects all errors from a Result channel with a timeout.
// Returns only the errors, ignoring successes.
func CollectErrors[T any](t *testing.T, ch <-chan triggerz.Result[T], timeout time.Duration) []error {
	t.Helper()

	results := CollectResultsWithTimeout(t, ch, timeout)
	errs := make([]error, 0)
	for _, r := range results {
		if r.IsError() {
			errs = append(errs, r.Error())
		}
	}
	return errs
}

// SendValues sends a slice of values to a channel as successful Results.
// Closes the channel after all values are sent.
func SendValues[T any](t *testing.T, values []T) <-chan triggerz.Result[T] {
	t.Helper()

	ch := make(chan triggerz.Result[T], len(values))
	for _, v := range values {
		ch <- triggerz.NewSuccess(v)
	}
	close(ch)
	return ch
}

// AssertResultCount verifies the expected number of results were received.
func AssertResultCount[T any](t *testing.T, results []triggerz.Result[T], expected int) {
	t.Helper()

	if len(results) != expected {
		t.Errorf("expected %d results, got %d", expected, len(results))
	}
}

// AssertAllSuccess verifies all results are successful.
func AssertAllSuccess[T any](t *testing.T, results []triggerz.Result[T]) {
	t.Helper()

	for i, r := range results {
		if r.IsError() {
			t.Errorf("result %d: expected success, got error: %v", i, r.Error())
		}
	}
}
