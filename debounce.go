package triggerz

import (
	"sync"
	"time"
)

// Debounce emits a value only once duration has passed without another value
// arriving. It is the quiescence (idle-timeout) operator: the last value of a
// burst is emitted after the burst goes quiet.
//
// When to use:
//   - Release a charged trigger once its events settle
//   - User input handling (e.g., search-as-you-type)
//   - File system change notifications
//   - Sensor readings that fluctuate rapidly
//
// Example:
//
//	// Emit the settled query 300ms after the last keystroke.
//	settled := triggerz.Debounce(queries, 300*time.Millisecond, triggerz.DefaultScheduler)
//
// On completion a pending value is flushed before the completion is forwarded.
// Errors drop the pending value.
func Debounce[T any](source Observable[T], duration time.Duration, sched Scheduler) Observable[T] {
	return Create(func(o Observer[T]) Disposable {
		var mu sync.Mutex
		var generation uint64
		var pending T
		var hasPending bool
		timer := &Serial{}

		sub := source.Subscribe(ObserverFuncs[T]{
			Next: func(v T) {
				mu.Lock()
				generation++
				gen := generation
				pending = v
				hasPending = true
				defer mu.Unlock()

				// Replaced under the lock so a stale generation never
				// overwrites a newer timer.
				timer.Set(sched.Schedule(duration, func() {
					mu.Lock()
					if gen != generation || !hasPending {
						mu.Unlock()
						return
					}
					value := pending
					hasPending = false
					mu.Unlock()

					o.OnNext(value)
				}))
			},
			Error: func(err error) {
				mu.Lock()
				hasPending = false
				generation++
				mu.Unlock()
				timer.Dispose()
				o.OnError(err)
			},
			Complete: func() {
				mu.Lock()
				value, flush := pending, hasPending
				hasPending = false
				generation++
				mu.Unlock()
				timer.Dispose()
				if flush {
					o.OnNext(value)
				}
				o.OnComplete()
			},
		})

		return NewDisposable(func() {
			timer.Dispose()
			sub.Dispose()
		})
	})
}
