package triggerz

import (
	"sync"
	"time"
)

// epoch is the virtual start time used across tests.
var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// recorded is one notification stamped with its scheduler time.
type recorded[T any] struct {
	At time.Time
	N  Notification[T]
}

// recorder is a concurrency-safe Observer that stamps every notification.
type recorder[T any] struct {
	sched Scheduler
	mu    sync.Mutex
	items []recorded[T]
}

func newRecorder[T any](sched Scheduler) *recorder[T] {
	return &recorder[T]{sched: sched}
}

func (r *recorder[T]) add(n Notification[T]) {
	var at time.Time
	if r.sched != nil {
		at = r.sched.Now()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, recorded[T]{At: at, N: n})
}

func (r *recorder[T]) OnNext(v T)        { r.add(NextOf(v)) }
func (r *recorder[T]) OnError(err error) { r.add(ErrorOf[T](err)) }
func (r *recorder[T]) OnComplete()       { r.add(CompleteOf[T]()) }

func (r *recorder[T]) all() []recorded[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]recorded[T], len(r.items))
	copy(out, r.items)
	return out
}

func (r *recorder[T]) values() []T {
	var out []T
	for _, it := range r.all() {
		if it.N.Kind == KindNext {
			out = append(out, it.N.Value)
		}
	}
	return out
}

// offsets returns the elapsed time since epoch of every value.
func (r *recorder[T]) offsets() []time.Duration {
	var out []time.Duration
	for _, it := range r.all() {
		if it.N.Kind == KindNext {
			out = append(out, it.At.Sub(epoch))
		}
	}
	return out
}

func (r *recorder[T]) count() int {
	return len(r.values())
}

func (r *recorder[T]) terminals() []recorded[T] {
	var out []recorded[T]
	for _, it := range r.all() {
		if it.N.IsTerminal() {
			out = append(out, it)
		}
	}
	return out
}

func (r *recorder[T]) completed() bool {
	ts := r.terminals()
	return len(ts) == 1 && ts[0].N.Kind == KindComplete
}

func (r *recorder[T]) err() error {
	for _, it := range r.terminals() {
		if it.N.Kind == KindError {
			return it.N.Err
		}
	}
	return nil
}

// isOne is the start condition of most trigger tests.
func isOne(v int) bool { return v == 1 }

// valueIn returns a predicate matching any of vs.
func valueIn(vs ...int) func(int) bool {
	return func(v int) bool {
		for _, x := range vs {
			if v == x {
				return true
			}
		}
		return false
	}
}

// when returns a selector emitting on the first window value matching pred.
func when(pred func(int) bool) Selector[int] {
	return func(w *Window[int]) Observable[any] {
		return AsAny(Filter[int](w, pred))
	}
}

// constant returns a release time function ignoring the attempt.
func constant(d time.Duration) func(int) time.Duration {
	return func(int) time.Duration { return d }
}
