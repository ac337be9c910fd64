package triggerz

import (
	"sync"
	"sync/atomic"
)

type subscriber[T any] struct {
	o       Observer[T]
	removed atomic.Bool
}

// Subject is both an Observer and an Observable: every notification it receives
// is multicast to its current subscribers. A subscriber whose subscription has
// been disposed receives nothing more, even from a delivery already in flight.
// Subscribing after a terminal replays only the terminal.
type Subject[T any] struct {
	mu          sync.Mutex
	subscribers []*subscriber[T]
	err         error
	done        bool
}

// NewSubject creates a Subject with no subscribers.
func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{}
}

// Subscribe adds o to the subject.
func (s *Subject[T]) Subscribe(o Observer[T]) Disposable {
	s.mu.Lock()
	if s.done {
		err := s.err
		s.mu.Unlock()
		if err != nil {
			o.OnError(err)
		} else {
			o.OnComplete()
		}
		return Disposed
	}
	sub := &subscriber[T]{o: o}
	// Copy on write: deliveries iterate over a snapshot without the lock.
	next := make([]*subscriber[T], len(s.subscribers), len(s.subscribers)+1)
	copy(next, s.subscribers)
	s.subscribers = append(next, sub)
	s.mu.Unlock()

	return NewDisposable(func() { s.remove(sub) })
}

func (s *Subject[T]) remove(sub *subscriber[T]) {
	sub.removed.Store(true)

	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]*subscriber[T], 0, len(s.subscribers))
	for _, cur := range s.subscribers {
		if cur != sub {
			next = append(next, cur)
		}
	}
	s.subscribers = next
}

func (s *Subject[T]) snapshot() []*subscriber[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil
	}
	return s.subscribers
}

// OnNext delivers v to every current subscriber.
func (s *Subject[T]) OnNext(v T) {
	for _, sub := range s.snapshot() {
		if !sub.removed.Load() {
			sub.o.OnNext(v)
		}
	}
}

// OnError terminates the subject with err.
func (s *Subject[T]) OnError(err error) {
	for _, sub := range s.terminate(err) {
		if !sub.removed.Load() {
			sub.o.OnError(err)
		}
	}
}

// OnComplete terminates the subject successfully.
func (s *Subject[T]) OnComplete() {
	for _, sub := range s.terminate(nil) {
		if !sub.removed.Load() {
			sub.o.OnComplete()
		}
	}
}

func (s *Subject[T]) terminate(err error) []*subscriber[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil
	}
	s.done = true
	s.err = err
	subs := s.subscribers
	s.subscribers = nil
	return subs
}

// HasObservers reports whether the subject has any subscriber left.
func (s *Subject[T]) HasObservers() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers) > 0
}
