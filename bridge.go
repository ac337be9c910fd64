package triggerz

import (
	"context"
	"sync"
)

// FromChan adapts a channel of Results into an Observable. Each subscription
// starts a goroutine reading in until it closes, ctx is done or the
// subscription is disposed. A successful Result is emitted as a value; an
// error Result fails the stream with its *StreamError. Closing in completes
// the stream. A done ctx ends the stream with ctx.Err().
//
// A channel can only be drained once, so subscribe at most once or Share the
// result.
func FromChan[T any](ctx context.Context, in <-chan Result[T]) Observable[T] {
	return Create(func(o Observer[T]) Disposable {
		done := make(chan struct{})
		go func() {
			for {
				select {
				case <-done:
					return
				case <-ctx.Done():
					o.OnError(ctx.Err())
					return
				case r, ok := <-in:
					if !ok {
						o.OnComplete()
						return
					}
					if r.IsError() {
						o.OnError(r.Error())
						return
					}
					o.OnNext(r.Value())
				}
			}
		}()

		var once sync.Once
		return NewDisposable(func() { once.Do(func() { close(done) }) })
	})
}

// ToChan subscribes to source and forwards its values as successful Results
// on an unbuffered channel. An error is forwarded as one error Result. The
// channel closes when source terminates or ctx is done; a done ctx also
// disposes the subscription.
func ToChan[T any](ctx context.Context, source Observable[T]) <-chan Result[T] {
	return bridge(ctx, Map(source, NewSuccess[T]), "to-chan")
}

// bridge forwards already wrapped Results to a channel.
func bridge[T any](ctx context.Context, source Observable[Result[T]], name string) <-chan Result[T] {
	out := make(chan Result[T])
	b := &chanObserver[T]{ctx: ctx, out: out, done: make(chan struct{}), name: name}

	// Deliveries block on the consumer, so subscribe off the caller's
	// goroutine: a synchronous source would otherwise deadlock here.
	go func() {
		sub := source.Subscribe(b)
		select {
		case <-ctx.Done():
			sub.Dispose()
			b.close()
		case <-b.done:
			sub.Dispose()
		}
	}()
	return out
}

type chanObserver[T any] struct {
	ctx    context.Context
	out    chan Result[T]
	done   chan struct{}
	name   string
	mu     sync.Mutex
	closed bool
}

func (b *chanObserver[T]) OnNext(r Result[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	select {
	case b.out <- r:
	case <-b.ctx.Done():
	}
}

func (b *chanObserver[T]) OnError(err error) {
	var zero T
	b.OnNext(NewError(zero, err, b.name))
	b.close()
}

func (b *chanObserver[T]) OnComplete() {
	b.close()
}

func (b *chanObserver[T]) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.out)
	close(b.done)
}
