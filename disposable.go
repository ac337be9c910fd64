package triggerz

import (
	"sync"
)

// Disposable releases a resource. Dispose must be safe to call more than once.
type Disposable interface {
	Dispose()
}

type nopDisposable struct{}

func (nopDisposable) Dispose() {}

// Disposed is a Disposable that holds nothing.
var Disposed Disposable = nopDisposable{}

type onceDisposable struct {
	once sync.Once
	fn   func()
}

func (d *onceDisposable) Dispose() {
	d.once.Do(d.fn)
}

// NewDisposable returns a Disposable that runs fn on the first Dispose only.
func NewDisposable(fn func()) Disposable {
	if fn == nil {
		return Disposed
	}
	return &onceDisposable{fn: fn}
}

// Scope is a composite disposal scope. Everything added to it is disposed, in
// the order it was added, the first time the scope is disposed. Adding to a
// scope that is already disposed disposes the resource immediately.
type Scope struct {
	mu       sync.Mutex
	items    []Disposable
	disposed bool
}

// NewScope creates an empty, open scope.
func NewScope() *Scope {
	return &Scope{}
}

// Add registers d with the scope.
func (s *Scope) Add(d Disposable) {
	if d == nil {
		return
	}
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		d.Dispose()
		return
	}
	s.items = append(s.items, d)
	s.mu.Unlock()
}

// OnDispose registers fn to run when the scope is disposed.
func (s *Scope) OnDispose(fn func()) {
	s.Add(NewDisposable(fn))
}

// Dispose disposes every registered resource. Later calls do nothing.
func (s *Scope) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	items := s.items
	s.items = nil
	s.mu.Unlock()

	for _, d := range items {
		d.Dispose()
	}
}

// IsDisposed reports whether Dispose has been called.
func (s *Scope) IsDisposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

// Serial holds at most one resource at a time. Setting a new resource disposes
// the previous one; once the Serial is disposed, every resource set on it is
// disposed immediately.
type Serial struct {
	mu       sync.Mutex
	current  Disposable
	disposed bool
}

// Set replaces the held resource.
func (s *Serial) Set(d Disposable) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		if d != nil {
			d.Dispose()
		}
		return
	}
	prev := s.current
	s.current = d
	s.mu.Unlock()

	if prev != nil {
		prev.Dispose()
	}
}

// Dispose disposes the held resource.
func (s *Serial) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	cur := s.current
	s.current = nil
	s.mu.Unlock()

	if cur != nil {
		cur.Dispose()
	}
}
