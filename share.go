package triggerz

import (
	"sync"
)

// shared implements publish + ref-count over a single source subscription.
type shared[T any] struct {
	source  Observable[T]
	mu      sync.Mutex
	subject *Subject[T]
	conn    Disposable
	count   int
}

// Share returns an Observable that multicasts one underlying subscription of
// source to all of its subscribers. The first subscriber connects to source,
// the last disposal disconnects. Once the underlying run has ended (every
// subscriber gone, or a terminal received), the next subscriber starts a fresh
// run.
//
// When to use:
//   - Several consumers must observe the same events exactly once
//   - The source has side effects that must not run per consumer
//   - Derived decisions must be consistent with what every consumer saw
//
// Example:
//
//	events := triggerz.Share(readSensor(device))
//	alarms := triggerz.Filter(events, isAlarm)
//	stats := triggerz.Map(events, toSample)
//	// Both subscriptions below share one read loop.
//	a := alarms.Subscribe(alarmObserver)
//	b := stats.Subscribe(statsObserver)
func Share[T any](source Observable[T]) Observable[T] {
	return &shared[T]{source: source}
}

func (s *shared[T]) Subscribe(o Observer[T]) Disposable {
	s.mu.Lock()
	subj := s.subject
	connect := false
	if subj == nil {
		subj = NewSubject[T]()
		s.subject = subj
		connect = true
	}
	s.count++
	s.mu.Unlock()

	sub := subj.Subscribe(o)

	if connect {
		conn := s.source.Subscribe(ObserverFuncs[T]{
			Next: subj.OnNext,
			Error: func(err error) {
				s.reset(subj)
				subj.OnError(err)
			},
			Complete: func() {
				s.reset(subj)
				subj.OnComplete()
			},
		})
		s.mu.Lock()
		if s.subject == subj {
			s.conn = conn
			s.mu.Unlock()
		} else {
			// The run ended while connecting.
			s.mu.Unlock()
			conn.Dispose()
		}
	}

	return NewDisposable(func() {
		sub.Dispose()
		s.release(subj)
	})
}

// reset forgets the run backed by subj so the next subscriber reconnects.
func (s *shared[T]) reset(subj *Subject[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subject == subj {
		s.subject = nil
		s.conn = nil
		s.count = 0
	}
}

func (s *shared[T]) release(subj *Subject[T]) {
	s.mu.Lock()
	if s.subject != subj {
		s.mu.Unlock()
		return
	}
	s.count--
	if s.count > 0 {
		s.mu.Unlock()
		return
	}
	conn := s.conn
	s.subject = nil
	s.conn = nil
	s.mu.Unlock()

	if conn != nil {
		conn.Dispose()
	}
}
