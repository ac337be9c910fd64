package triggerz

import (
	"fmt"
	"testing"
)

func TestEither(t *testing.T) {
	l := Left[string, int]("file")
	r := Right[string](3)

	if !l.IsLeft() || l.IsRight() || r.IsLeft() || !r.IsRight() {
		t.Fatal("sides misreported")
	}
	if v, ok := l.LeftValue(); !ok || v != "file" {
		t.Errorf("LeftValue: got %q, %v", v, ok)
	}
	if _, ok := l.RightValue(); ok {
		t.Error("RightValue reported a value on a left")
	}
	if l.String() != "Left(file)" || r.String() != "Right(3)" {
		t.Errorf("unexpected strings %q %q", l.String(), r.String())
	}
}

func TestSwitch(t *testing.T) {
	var got []string
	onLeft := func(s string) { got = append(got, "L:"+s) }
	onRight := func(i int) { got = append(got, fmt.Sprintf("R:%d", i)) }

	Switch(Left[string, int]("a"), onLeft, onRight)
	Switch(Right[string](1), onLeft, onRight)
	Switch(Right[string](2), onLeft, nil)

	if fmt.Sprint(got) != "[L:a R:1]" {
		t.Errorf("unexpected dispatch %v", got)
	}
}

func TestTakeLeftTakeRight(t *testing.T) {
	source := Of(Left[string, int]("a"), Right[string](1), Left[string, int]("b"))

	lefts := newRecorder[string](nil)
	TakeLeft(source).Subscribe(lefts)
	rights := newRecorder[int](nil)
	TakeRight(source).Subscribe(rights)

	if fmt.Sprint(lefts.values()) != "[a b]" || !lefts.completed() {
		t.Errorf("TakeLeft: %v", lefts.all())
	}
	if fmt.Sprint(rights.values()) != "[1]" || !rights.completed() {
		t.Errorf("TakeRight: %v", rights.all())
	}
}

func TestMergeEither(t *testing.T) {
	files := NewSubject[string]()
	ticks := NewSubject[int]()

	rec := newRecorder[Either[string, int]](nil)
	MergeEither[string, int](files, ticks).Subscribe(rec)
	files.OnNext("a.go")
	ticks.OnNext(1)
	files.OnComplete()
	ticks.OnComplete()

	if fmt.Sprint(rec.values()) != "[Left(a.go) Right(1)]" || !rec.completed() {
		t.Errorf("unexpected notifications %v", rec.all())
	}
}

func TestEitherObserver(t *testing.T) {
	var got []string
	completed := false
	o := EitherObserver(
		func(s string) { got = append(got, "L:"+s) },
		func(i int) { got = append(got, fmt.Sprintf("R:%d", i)) },
		nil,
		func() { completed = true },
	)

	OnNextLeft(o, "a.go")
	OnNextRight(o, 2)
	o.OnError(nil)
	o.OnComplete()

	if fmt.Sprint(got) != "[L:a.go R:2]" {
		t.Errorf("unexpected dispatch %v", got)
	}
	if !completed {
		t.Error("expected the completion handler to run")
	}
}

func TestEitherObserver_NilHandlers(t *testing.T) {
	var rights []int
	o := EitherObserver[string](nil, func(i int) { rights = append(rights, i) }, nil, nil)

	MergeEither(Of("skipped"), Of(1, 2)).Subscribe(o)

	if fmt.Sprint(rights) != "[1 2]" {
		t.Errorf("expected the right values only, got %v", rights)
	}
}
