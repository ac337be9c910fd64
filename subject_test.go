package triggerz

import (
	"errors"
	"fmt"
	"testing"
)

func TestSubject_Multicast(t *testing.T) {
	s := NewSubject[int]()
	a, b := newRecorder[int](nil), newRecorder[int](nil)
	s.Subscribe(a)
	s.OnNext(1)
	s.Subscribe(b)
	s.OnNext(2)
	s.OnComplete()
	s.OnNext(3)

	if got := fmt.Sprint(a.values()); got != "[1 2]" || !a.completed() {
		t.Errorf("first subscriber: got %v", a.all())
	}
	if got := fmt.Sprint(b.values()); got != "[2]" || !b.completed() {
		t.Errorf("second subscriber: got %v", b.all())
	}
}

func TestSubject_DisposeDuringDelivery(t *testing.T) {
	s := NewSubject[int]()
	second := newRecorder[int](nil)

	var secondSub Disposable
	s.Subscribe(ObserverFuncs[int]{Next: func(int) { secondSub.Dispose() }})
	secondSub = s.Subscribe(second)

	s.OnNext(1)
	if len(second.values()) != 0 {
		t.Errorf("disposed subscriber received %v", second.values())
	}
	if !s.HasObservers() {
		t.Error("expected the first subscriber to remain")
	}
}

func TestSubject_LateSubscriberGetsTerminal(t *testing.T) {
	errBoom := errors.New("boom")
	s := NewSubject[int]()
	s.OnError(errBoom)

	rec := newRecorder[int](nil)
	d := s.Subscribe(rec)
	d.Dispose()

	if !errors.Is(rec.err(), errBoom) {
		t.Errorf("expected replayed error, got %v", rec.err())
	}
	if s.HasObservers() {
		t.Error("terminated subject kept observers")
	}
}
