package triggerz

import (
	"time"
)

// Timed is a value due At after subscription.
type Timed[T any] struct {
	Value T
	At    time.Duration
}

// At pairs a value with its offset from subscription time.
func At[T any](at time.Duration, value T) Timed[T] {
	return Timed[T]{At: at, Value: value}
}

// Timeline is a cold Observable that replays a fixed schedule of values on a
// Scheduler, relative to each subscription.
//
//nolint:govet // fieldalignment: struct layout optimized for readability
type Timeline[T any] struct {
	sched      Scheduler
	events     []Timed[T]
	terminalAt time.Duration
	err        error
	terminal   bool
}

// NewTimeline creates a Timeline that emits events on sched. Without
// CompleteAt or ErrorAt it never terminates.
//
// Example:
//
//	sched := triggerz.NewVirtualScheduler(time.Time{})
//	clicks := triggerz.NewTimeline(sched,
//		triggerz.At(100*time.Millisecond, "down"),
//		triggerz.At(180*time.Millisecond, "up"),
//	).CompleteAt(time.Second)
func NewTimeline[T any](sched Scheduler, events ...Timed[T]) *Timeline[T] {
	return &Timeline[T]{sched: sched, events: events}
}

// CompleteAt completes the timeline at offset d.
func (t *Timeline[T]) CompleteAt(d time.Duration) *Timeline[T] {
	t.terminal = true
	t.terminalAt = d
	t.err = nil
	return t
}

// ErrorAt fails the timeline with err at offset d.
func (t *Timeline[T]) ErrorAt(d time.Duration, err error) *Timeline[T] {
	t.terminal = true
	t.terminalAt = d
	t.err = err
	return t
}

// Subscribe schedules every event relative to now.
func (t *Timeline[T]) Subscribe(o Observer[T]) Disposable {
	return Create(func(o Observer[T]) Disposable {
		scope := NewScope()
		for _, ev := range t.events {
			v := ev.Value
			scope.Add(t.sched.Schedule(ev.At, func() { o.OnNext(v) }))
		}
		if t.terminal {
			err := t.err
			scope.Add(t.sched.Schedule(t.terminalAt, func() {
				if err != nil {
					o.OnError(err)
					return
				}
				o.OnComplete()
			}))
		}
		return scope
	}).Subscribe(o)
}
