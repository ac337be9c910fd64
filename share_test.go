package triggerz

import (
	"fmt"
	"testing"
)

func countingSource(subscriptions *int, disposals *int) (Observable[int], *Subject[int]) {
	subject := NewSubject[int]()
	return ObservableFunc[int](func(o Observer[int]) Disposable {
		*subscriptions++
		sub := subject.Subscribe(o)
		return NewDisposable(func() {
			*disposals++
			sub.Dispose()
		})
	}), subject
}

func TestShare_SingleUpstreamSubscription(t *testing.T) {
	var subs, disposals int
	source, subject := countingSource(&subs, &disposals)
	shared := Share(source)

	a, b := newRecorder[int](nil), newRecorder[int](nil)
	da := shared.Subscribe(a)
	db := shared.Subscribe(b)
	subject.OnNext(1)

	if subs != 1 {
		t.Errorf("expected 1 upstream subscription, got %d", subs)
	}
	if fmt.Sprint(a.values()) != "[1]" || fmt.Sprint(b.values()) != "[1]" {
		t.Errorf("expected both to see 1, got %v and %v", a.values(), b.values())
	}

	da.Dispose()
	if disposals != 0 {
		t.Error("disconnected while a subscriber remained")
	}
	db.Dispose()
	if disposals != 1 {
		t.Errorf("expected disconnect on last disposal, got %d", disposals)
	}
}

func TestShare_ReconnectsAfterRunEnds(t *testing.T) {
	var subs, disposals int
	source, subject := countingSource(&subs, &disposals)
	shared := Share(source)

	shared.Subscribe(newRecorder[int](nil)).Dispose()
	rec := newRecorder[int](nil)
	shared.Subscribe(rec)
	subject.OnNext(2)

	if subs != 2 {
		t.Errorf("expected a fresh run, got %d subscriptions", subs)
	}
	if fmt.Sprint(rec.values()) != "[2]" {
		t.Errorf("expected [2], got %v", rec.values())
	}
}

func TestShare_SynchronousSource(t *testing.T) {
	shared := Share(Of(1, 2))

	first := newRecorder[int](nil)
	shared.Subscribe(first)
	second := newRecorder[int](nil)
	shared.Subscribe(second)

	for i, rec := range []*recorder[int]{first, second} {
		if fmt.Sprint(rec.values()) != "[1 2]" || !rec.completed() {
			t.Errorf("subscriber %d: got %v", i, rec.all())
		}
	}
}
