package triggerz

import (
	"math"
	"sync"
	"time"
)

// Backoff maps a 1-based retry attempt to the delay before it runs.
type Backoff func(attempt int) time.Duration

// SquareBackoff waits attempt² seconds: 1s, 4s, 9s, 16s...
func SquareBackoff(attempt int) time.Duration {
	return time.Duration(attempt*attempt) * time.Second
}

// ConstantBackoff waits d before every attempt.
func ConstantBackoff(d time.Duration) Backoff {
	return func(int) time.Duration { return d }
}

// ExponentialBackoff waits base * 2^(attempt-1), capped at maxDelay.
// For example, with a 100ms base: 100ms, 200ms, 400ms, 800ms...
func ExponentialBackoff(base, maxDelay time.Duration) Backoff {
	return func(attempt int) time.Duration {
		if attempt < 1 {
			attempt = 1
		}
		delay := float64(base) * math.Pow(2, float64(attempt-1))
		if delay > float64(maxDelay) {
			return maxDelay
		}
		return time.Duration(delay)
	}
}

// RetryConfig configures Retry.
//
//nolint:govet // logical field grouping preferred over memory optimization
type RetryConfig struct {
	// MaxRetries is the number of resubscriptions allowed after the first
	// subscription fails. Zero forwards the first error.
	MaxRetries int
	// Backoff is the delay before each retry. Defaults to SquareBackoff.
	Backoff Backoff
	// RetryIf decides whether an error is retried. Defaults to every error.
	RetryIf func(err error) bool
}

// Retry resubscribes to source after an error, waiting Backoff(attempt) on
// sched first. Values already delivered are not replayed by Retry itself;
// a cold source produces them again. The error is forwarded once MaxRetries
// is exhausted or RetryIf rejects it.
//
// When to use:
//   - Reconnecting a watcher or network feed after a transient failure
//   - Smoothing over temporary resource constraints
//
// Example:
//
//	resilient := triggerz.Retry(feed, triggerz.DefaultScheduler, triggerz.RetryConfig{
//		MaxRetries: 5,
//		Backoff:    triggerz.ExponentialBackoff(100*time.Millisecond, 10*time.Second),
//		RetryIf:    func(err error) bool { return !errors.Is(err, context.Canceled) },
//	})
func Retry[T any](source Observable[T], sched Scheduler, cfg RetryConfig) Observable[T] {
	if cfg.Backoff == nil {
		cfg.Backoff = SquareBackoff
	}
	return Create(func(o Observer[T]) Disposable {
		r := &resubscriber[T]{source: source, sched: sched, o: o}
		r.onError = func(err error) {
			attempt := r.nextAttempt()
			if attempt > cfg.MaxRetries || (cfg.RetryIf != nil && !cfg.RetryIf(err)) {
				o.OnError(err)
				return
			}
			r.after(cfg.Backoff(attempt))
		}
		r.onComplete = o.OnComplete
		r.subscribe()
		return NewDisposable(r.dispose)
	})
}

// Repeat resubscribes to source every time it completes, waiting
// backoff(n) before the n-th resubscription. It never completes on its own;
// errors are forwarded.
func Repeat[T any](source Observable[T], backoff Backoff, sched Scheduler) Observable[T] {
	if backoff == nil {
		backoff = SquareBackoff
	}
	return Create(func(o Observer[T]) Disposable {
		r := &resubscriber[T]{source: source, sched: sched, o: o}
		r.onError = o.OnError
		r.onComplete = func() {
			r.after(backoff(r.nextAttempt()))
		}
		r.subscribe()
		return NewDisposable(r.dispose)
	})
}

type resubscriber[T any] struct {
	source     Observable[T]
	sched      Scheduler
	o          Observer[T]
	onError    func(error)
	onComplete func()
	current    Serial
	timer      Serial
	mu         sync.Mutex
	attempt    int
	disposed   bool
}

func (r *resubscriber[T]) nextAttempt() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempt++
	return r.attempt
}

func (r *resubscriber[T]) subscribe() {
	r.mu.Lock()
	if r.disposed {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	r.current.Set(r.source.Subscribe(ObserverFuncs[T]{
		Next:     r.o.OnNext,
		Error:    r.onError,
		Complete: r.onComplete,
	}))
}

func (r *resubscriber[T]) after(delay time.Duration) {
	r.timer.Set(r.sched.Schedule(delay, r.subscribe))
}

func (r *resubscriber[T]) dispose() {
	r.mu.Lock()
	r.disposed = true
	r.mu.Unlock()
	r.timer.Dispose()
	r.current.Dispose()
}
