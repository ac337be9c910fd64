package triggerz

import (
	"sync"
	"sync/atomic"
)

// serialObserver serializes notifications that may arrive from several
// goroutines. Whoever finds the observer idle drains the queue; everyone else
// enqueues and returns, so no call ever blocks on another delivery. At most one
// terminal is delivered, and nothing is delivered once stopped.
type serialObserver[T any] struct {
	dst      Observer[T]
	queue    []Notification[T]
	mu       sync.Mutex
	emitting bool
	done     bool
	stopped  atomic.Bool
}

func newSerialObserver[T any](dst Observer[T]) *serialObserver[T] {
	return &serialObserver[T]{dst: dst}
}

func (s *serialObserver[T]) OnNext(v T)        { s.push(NextOf(v)) }
func (s *serialObserver[T]) OnError(err error) { s.push(ErrorOf[T](err)) }
func (s *serialObserver[T]) OnComplete()       { s.push(CompleteOf[T]()) }

func (s *serialObserver[T]) stop() {
	s.stopped.Store(true)
}

func (s *serialObserver[T]) push(n Notification[T]) {
	s.mu.Lock()
	if s.done || s.stopped.Load() {
		s.mu.Unlock()
		return
	}
	if n.IsTerminal() {
		s.done = true
	}
	s.queue = append(s.queue, n)
	if s.emitting {
		s.mu.Unlock()
		return
	}
	s.emitting = true

	for {
		batch := s.queue
		s.queue = nil
		if len(batch) == 0 {
			s.emitting = false
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		for _, item := range batch {
			if s.stopped.Load() {
				break
			}
			item.Accept(s.dst)
		}

		s.mu.Lock()
	}
}
