package triggerz

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Window is one sub-stream cut out of a source by SplitWindows: the opening
// value followed by every later source value until the window closes.
// Its identity is fixed when it opens and it owns exactly one disposal scope.
type Window[T any] struct {
	openedAt time.Time
	start    T
	subject  *Subject[T]
	scope    *Scope
	id       uuid.UUID
	seq      int
}

func newWindow[T any](seq int, start T, openedAt time.Time) *Window[T] {
	return &Window[T]{
		id:       uuid.New(),
		seq:      seq,
		start:    start,
		openedAt: openedAt,
		subject:  NewSubject[T](),
		scope:    NewScope(),
	}
}

// ID uniquely identifies the window.
func (w *Window[T]) ID() uuid.UUID {
	return w.id
}

// Seq is the 0-based index of the window among those opened by one
// subscription.
func (w *Window[T]) Seq() int {
	return w.seq
}

// Start is the value that opened the window.
func (w *Window[T]) Start() T {
	return w.start
}

// OpenedAt is the scheduler time at which the window opened.
func (w *Window[T]) OpenedAt() time.Time {
	return w.openedAt
}

// Subscribe observes the window's values.
func (w *Window[T]) Subscribe(o Observer[T]) Disposable {
	return w.subject.Subscribe(o)
}

// Close exits the window's scope: it stops receiving source values and every
// subscription registered with it is disposed. Close is idempotent.
func (w *Window[T]) Close() {
	w.scope.Dispose()
}

// Closed reports whether the window's scope has been exited.
func (w *Window[T]) Closed() bool {
	return w.scope.IsDisposed()
}

type splitter[T any] struct {
	o       Observer[*Window[T]]
	opens   func(T) bool
	closing func(*Window[T]) Observable[any]
	sched   Scheduler
	outer   *Scope
	open    []*Window[T]
	mu      sync.Mutex
	seq     int
	stopped bool
	failed  atomic.Bool
}

// SplitWindows cuts source into windows. Every value for which opens returns
// true opens a new window that starts with that value; the window completes on
// the first emission of closing(window). Windows may overlap.
//
// For each source value v, in order:
//  1. v is delivered to every open window
//  2. opens(v) is evaluated
//  3. if it opened, the new window is emitted downstream, closing is
//     subscribed, and v is delivered into the new window
//
// Completing the source stops new windows from opening and completes the
// outer stream, but leaves open windows open. An error from the source, from
// opens or from a closing stream errors every open window and the outer
// stream. Disposing the outer subscription closes every open window.
//
// Example:
//
//	// One window per "begin", each closed by the next "end".
//	windows := triggerz.SplitWindows(lines,
//		func(s string) bool { return s == "begin" },
//		func(w *triggerz.Window[string]) triggerz.Observable[any] {
//			return triggerz.AsAny(triggerz.Filter(w, func(s string) bool { return s == "end" }))
//		},
//		triggerz.DefaultScheduler,
//	)
func SplitWindows[T any](source Observable[T], opens func(T) bool, closing func(*Window[T]) Observable[any], sched Scheduler) Observable[*Window[T]] {
	return Create(func(o Observer[*Window[T]]) Disposable {
		sp := &splitter[T]{
			o:       o,
			opens:   opens,
			closing: closing,
			sched:   sched,
			outer:   NewScope(),
		}
		sp.outer.Add(source.Subscribe(ObserverFuncs[T]{
			Next:     sp.next,
			Error:    sp.fail,
			Complete: sp.complete,
		}))
		return NewDisposable(sp.dispose)
	})
}

func (sp *splitter[T]) next(v T) {
	sp.mu.Lock()
	if sp.stopped {
		sp.mu.Unlock()
		return
	}
	open := slices.Clone(sp.open)
	sp.mu.Unlock()

	for _, w := range open {
		if !w.Closed() {
			w.subject.OnNext(v)
		}
	}

	ok, err := test(sp.opens, v, "window")
	if err != nil {
		sp.fail(err)
		return
	}
	if ok {
		sp.openWindow(v)
	}
}

func (sp *splitter[T]) openWindow(v T) {
	sp.mu.Lock()
	if sp.stopped {
		sp.mu.Unlock()
		return
	}
	w := newWindow(sp.seq, v, sp.sched.Now())
	sp.seq++
	sp.open = append(sp.open, w)
	sp.mu.Unlock()

	w.scope.OnDispose(func() { sp.remove(w) })

	sp.o.OnNext(w)
	if w.Closed() {
		return
	}

	var closer Observable[any]
	if err := guard(func() { closer = sp.closing(w) }); err != nil {
		sp.fail(NewStreamError(v, err, "window"))
		return
	}
	if closer != nil {
		var fired atomic.Bool
		w.scope.Add(closer.Subscribe(ObserverFuncs[any]{
			Next: func(any) {
				if fired.CompareAndSwap(false, true) {
					sp.closeWindow(w)
				}
			},
			Error: sp.fail,
		}))
	}

	if !w.Closed() {
		w.subject.OnNext(v)
	}
}

func (sp *splitter[T]) closeWindow(w *Window[T]) {
	sp.remove(w)
	w.subject.OnComplete()
	w.Close()
}

func (sp *splitter[T]) remove(w *Window[T]) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.open = slices.DeleteFunc(sp.open, func(cur *Window[T]) bool { return cur == w })
}

// drain stops the splitter and hands back the windows still open.
func (sp *splitter[T]) drain() []*Window[T] {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.stopped = true
	open := sp.open
	sp.open = nil
	return open
}

func (sp *splitter[T]) fail(err error) {
	if !sp.failed.CompareAndSwap(false, true) {
		return
	}
	open := sp.drain()
	for _, w := range open {
		w.subject.OnError(err)
	}
	sp.o.OnError(err)
	for _, w := range open {
		w.Close()
	}
	sp.outer.Dispose()
}

func (sp *splitter[T]) complete() {
	sp.mu.Lock()
	sp.stopped = true
	sp.mu.Unlock()
	sp.o.OnComplete()
}

func (sp *splitter[T]) dispose() {
	for _, w := range sp.drain() {
		w.Close()
	}
	sp.outer.Dispose()
}
