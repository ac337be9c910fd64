package triggerz

import "sync"

// Finally runs fn exactly once per subscription, after the source terminates
// or when the subscription is disposed, whichever comes first. On a terminal
// fn runs after the notification has been forwarded.
func Finally[T any](source Observable[T], fn func()) Observable[T] {
	return Create(func(o Observer[T]) Disposable {
		var once sync.Once
		run := func() { once.Do(fn) }

		sub := source.Subscribe(ObserverFuncs[T]{
			Next: o.OnNext,
			Error: func(err error) {
				o.OnError(err)
				run()
			},
			Complete: func() {
				o.OnComplete()
				run()
			},
		})
		return NewDisposable(func() {
			sub.Dispose()
			run()
		})
	})
}
