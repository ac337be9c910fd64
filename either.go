package triggerz

import "fmt"

// Either holds exactly one of a left or a right value. It carries two kinds
// of notification through a single stream, e.g. file events and timer ticks
// merged into one trigger source.
type Either[L, R any] struct {
	left   L
	right  R
	isLeft bool
}

// Left wraps a left value.
func Left[L, R any](v L) Either[L, R] {
	return Either[L, R]{left: v, isLeft: true}
}

// Right wraps a right value.
func Right[L, R any](v R) Either[L, R] {
	return Either[L, R]{right: v}
}

// IsLeft reports whether e holds a left value.
func (e Either[L, R]) IsLeft() bool { return e.isLeft }

// IsRight reports whether e holds a right value.
func (e Either[L, R]) IsRight() bool { return !e.isLeft }

// LeftValue returns the left value and whether e holds one.
func (e Either[L, R]) LeftValue() (L, bool) { return e.left, e.isLeft }

// RightValue returns the right value and whether e holds one.
func (e Either[L, R]) RightValue() (R, bool) { return e.right, !e.isLeft }

func (e Either[L, R]) String() string {
	if e.isLeft {
		return fmt.Sprintf("Left(%v)", e.left)
	}
	return fmt.Sprintf("Right(%v)", e.right)
}

// Switch calls onLeft or onRight depending on which value e holds. Nil
// handlers are skipped.
func Switch[L, R any](e Either[L, R], onLeft func(L), onRight func(R)) {
	if e.isLeft {
		if onLeft != nil {
			onLeft(e.left)
		}
		return
	}
	if onRight != nil {
		onRight(e.right)
	}
}

// TakeLeft keeps only the left values of source.
func TakeLeft[L, R any](source Observable[Either[L, R]]) Observable[L] {
	return Map(Filter(source, Either[L, R].IsLeft), func(e Either[L, R]) L { return e.left })
}

// TakeRight keeps only the right values of source.
func TakeRight[L, R any](source Observable[Either[L, R]]) Observable[R] {
	return Map(Filter(source, Either[L, R].IsRight), func(e Either[L, R]) R { return e.right })
}

// MergeEither merges two streams of different types into one stream of
// Either values. It completes when both complete.
func MergeEither[L, R any](left Observable[L], right Observable[R]) Observable[Either[L, R]] {
	return Merge(
		Map(left, Left[L, R]),
		Map(right, Right[L, R]),
	)
}

// EitherObserver adapts separate left and right handlers to an observer of
// Either values. Nil handlers are skipped.
//
// Example:
//
//	sub := triggerz.MergeEither(files, ticks).Subscribe(triggerz.EitherObserver(
//		func(e FileEvent) { log.Println("changed", e.Path) },
//		func(t time.Time) { log.Println("tick", t) },
//		nil, nil,
//	))
func EitherObserver[L, R any](onLeft func(L), onRight func(R), onError func(error), onComplete func()) Observer[Either[L, R]] {
	return ObserverFuncs[Either[L, R]]{
		Next:     func(e Either[L, R]) { Switch(e, onLeft, onRight) },
		Error:    onError,
		Complete: onComplete,
	}
}

// OnNextLeft delivers v to o as a left value.
func OnNextLeft[L, R any](o Observer[Either[L, R]], v L) {
	o.OnNext(Left[L, R](v))
}

// OnNextRight delivers v to o as a right value.
func OnNextRight[L, R any](o Observer[Either[L, R]], v R) {
	o.OnNext(Right[L](v))
}
