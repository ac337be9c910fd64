package triggerz

import (
	"sync"
	"sync/atomic"
)

// safeObserver enforces the notification contract on an arbitrary observer:
// nothing is delivered after a terminal or after the subscription is stopped.
type safeObserver[T any] struct {
	dst  Observer[T]
	done atomic.Bool
}

func (s *safeObserver[T]) OnNext(v T) {
	if s.done.Load() {
		return
	}
	s.dst.OnNext(v)
}

func (s *safeObserver[T]) OnError(err error) {
	if s.done.Swap(true) {
		return
	}
	s.dst.OnError(err)
}

func (s *safeObserver[T]) OnComplete() {
	if s.done.Swap(true) {
		return
	}
	s.dst.OnComplete()
}

func (s *safeObserver[T]) stop() {
	s.done.Store(true)
}

// Create builds an Observable from a subscribe function. The observer handed to
// fn ignores everything after the first terminal and after disposal, so fn
// does not have to track either.
func Create[T any](fn func(o Observer[T]) Disposable) Observable[T] {
	return ObservableFunc[T](func(o Observer[T]) Disposable {
		so := &safeObserver[T]{dst: o}
		d := fn(so)
		return NewDisposable(func() {
			so.stop()
			if d != nil {
				d.Dispose()
			}
		})
	})
}

// Of emits the given values synchronously on subscribe and completes.
func Of[T any](values ...T) Observable[T] {
	return Create(func(o Observer[T]) Disposable {
		for _, v := range values {
			o.OnNext(v)
		}
		o.OnComplete()
		return Disposed
	})
}

// Empty completes immediately.
func Empty[T any]() Observable[T] {
	return Of[T]()
}

// Throw fails immediately with err.
func Throw[T any](err error) Observable[T] {
	return Create(func(o Observer[T]) Disposable {
		o.OnError(err)
		return Disposed
	})
}

// Never emits nothing and never terminates.
func Never[T any]() Observable[T] {
	return ObservableFunc[T](func(Observer[T]) Disposable {
		return Disposed
	})
}

// Filter passes through the values for which predicate returns true.
// A panicking predicate terminates the stream with a *StreamError.
func Filter[T any](source Observable[T], predicate func(T) bool) Observable[T] {
	return Create(func(o Observer[T]) Disposable {
		sub := &Serial{}
		sub.Set(source.Subscribe(ObserverFuncs[T]{
			Next: func(v T) {
				keep, err := test(predicate, v, "filter")
				if err != nil {
					o.OnError(err)
					sub.Dispose()
					return
				}
				if keep {
					o.OnNext(v)
				}
			},
			Error:    o.OnError,
			Complete: o.OnComplete,
		}))
		return sub
	})
}

// Map transforms every value with fn.
// A panicking fn terminates the stream with a *StreamError.
func Map[T, U any](source Observable[T], fn func(T) U) Observable[U] {
	return Create(func(o Observer[U]) Disposable {
		sub := &Serial{}
		sub.Set(source.Subscribe(ObserverFuncs[T]{
			Next: func(v T) {
				var out U
				if err := guard(func() { out = fn(v) }); err != nil {
					o.OnError(NewStreamError(v, err, "map"))
					sub.Dispose()
					return
				}
				o.OnNext(out)
			},
			Error:    o.OnError,
			Complete: o.OnComplete,
		}))
		return sub
	})
}

// AsAny widens the element type to any, the shape expected by Trigger selectors.
func AsAny[T any](source Observable[T]) Observable[any] {
	return Map(source, func(v T) any { return v })
}

// Skip discards the first n values.
func Skip[T any](source Observable[T], n int) Observable[T] {
	return Create(func(o Observer[T]) Disposable {
		var seen atomic.Int64
		return source.Subscribe(ObserverFuncs[T]{
			Next: func(v T) {
				if seen.Add(1) <= int64(n) {
					return
				}
				o.OnNext(v)
			},
			Error:    o.OnError,
			Complete: o.OnComplete,
		})
	})
}

// Take emits the first n values and completes.
func Take[T any](source Observable[T], n int) Observable[T] {
	if n <= 0 {
		return Empty[T]()
	}
	return Create(func(o Observer[T]) Disposable {
		sub := &Serial{}
		var taken atomic.Int64
		sub.Set(source.Subscribe(ObserverFuncs[T]{
			Next: func(v T) {
				c := taken.Add(1)
				if c > int64(n) {
					return
				}
				o.OnNext(v)
				if c == int64(n) {
					o.OnComplete()
					sub.Dispose()
				}
			},
			Error:    o.OnError,
			Complete: o.OnComplete,
		}))
		return sub
	})
}

// Merge interleaves the values of all sources. It completes when every source
// has completed and fails on the first error. Sources emitting from different
// goroutines never overlap downstream.
func Merge[T any](sources ...Observable[T]) Observable[T] {
	return Create(func(dst Observer[T]) Disposable {
		o := newSerialObserver(dst)
		scope := NewScope()
		var mu sync.Mutex
		remaining := len(sources)
		if remaining == 0 {
			o.OnComplete()
			return scope
		}
		for _, src := range sources {
			scope.Add(src.Subscribe(ObserverFuncs[T]{
				Next: o.OnNext,
				Error: func(err error) {
					o.OnError(err)
					scope.Dispose()
				},
				Complete: func() {
					mu.Lock()
					remaining--
					last := remaining == 0
					mu.Unlock()
					if last {
						o.OnComplete()
					}
				},
			}))
		}
		return scope
	})
}
