package triggerz

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// TriggerState is the state of one trigger window.
type TriggerState int32

const (
	// TriggerOpen is a charging window that has not resolved yet.
	TriggerOpen TriggerState = iota
	// TriggerReleased is a window that emitted downstream.
	TriggerReleased
	// TriggerCancelled is a window that was discarded silently.
	TriggerCancelled
)

// String returns the state name.
func (s TriggerState) String() string {
	switch s {
	case TriggerOpen:
		return "open"
	case TriggerReleased:
		return "released"
	case TriggerCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Release describes a window that reached TriggerReleased.
type Release[T any] struct {
	OpenedAt   time.Time
	ReleasedAt time.Time
	Start      T
	ID         uuid.UUID
	Seq        int
}

// Selector derives a signal stream from the values of one window. Only the
// first emission of the signal matters.
type Selector[T any] func(w *Window[T]) Observable[any]

// Trigger charges a window whenever a start event arrives and resolves it to a
// single release notification or a silent cancel.
//
// For each admitted start event a Window is opened on a shared view of the
// source. Three signals race for that window and the first one wins:
//   - release: the release selector emits; the window emits downstream
//   - cancel: the cancel selector emits; the window is discarded
//   - preempt (CancelPreviousOnTriggerStart only): a later start event
//     arrives inside the window; the window is discarded and the new start
//     opens the next one
//
// Whichever way a window resolves, its scope is exited exactly once: every
// subscription made for it is disposed and it stops receiving events.
//
//nolint:govet // fieldalignment: struct layout optimized for readability
type Trigger[T any] struct {
	name         string
	isStart      func(T) bool
	cancelOf     Selector[T]
	releaseOf    Selector[T]
	releaseAfter func(attempt int) time.Duration
	scheduler    Scheduler
	logger       *slog.Logger
	policy       TriggerPolicy
	counters     *triggerCounters
}

// NewTrigger creates a Trigger that opens a window for every value matching
// isStart and discards the window on the first emission of cancelOf(window).
// A release condition must be set with ReleaseWhen or ReleaseAfter before the
// trigger is observed.
//
// When to use:
//   - Rebuild once a burst of file changes settles, unless a delete arrives
//   - Fire an alarm only if a fault persists without a recovery event
//   - Commit a transaction window unless an abort is seen first
//
// Example:
//
//	// Open on 1, cancel on 2 or 3, release after 2s of quiet.
//	trig := triggerz.NewTrigger(
//		func(v int) bool { return v == 1 },
//		func(w *triggerz.Window[int]) triggerz.Observable[any] {
//			return triggerz.AsAny(triggerz.Filter(w, func(v int) bool { return v > 1 && v < 4 }))
//		},
//		sched,
//	).ReleaseAfter(func(int) time.Duration { return 2 * time.Second })
//
//	launched, err := trig.Observe(events)
//
// Parameters:
//   - isStart: Flags candidate window-opening events
//   - cancelOf: Derives the cancel signal of a window from its values
//   - scheduler: Timeline for ReleaseAfter and release timestamps
func NewTrigger[T any](isStart func(T) bool, cancelOf Selector[T], scheduler Scheduler) *Trigger[T] {
	return &Trigger[T]{
		name:      "trigger",
		isStart:   isStart,
		cancelOf:  cancelOf,
		scheduler: scheduler,
		policy:    CancelPreviousOnTriggerStart,
		logger:    slog.New(slog.DiscardHandler),
		counters:  &triggerCounters{},
	}
}

// ReleaseWhen releases a window on the first emission of releaseOf(window).
// It replaces any ReleaseAfter setting.
func (t *Trigger[T]) ReleaseWhen(releaseOf Selector[T]) *Trigger[T] {
	t.releaseOf = releaseOf
	t.releaseAfter = nil
	return t
}

// ReleaseAfter releases a window once no value has arrived in it for
// releaseTime(seq), where seq is the window's 0-based index. The window's own
// start value begins the first quiet period. It replaces any ReleaseWhen
// setting.
func (t *Trigger[T]) ReleaseAfter(releaseTime func(attempt int) time.Duration) *Trigger[T] {
	t.releaseAfter = releaseTime
	t.releaseOf = nil
	return t
}

// WithPolicy sets the overlap policy. Defaults to CancelPreviousOnTriggerStart.
func (t *Trigger[T]) WithPolicy(policy TriggerPolicy) *Trigger[T] {
	t.policy = policy
	return t
}

// WithName sets a custom name for this trigger.
// If not set, defaults to "trigger".
func (t *Trigger[T]) WithName(name string) *Trigger[T] {
	t.name = name
	return t
}

// WithLogger sets the logger receiving window lifecycle events at debug
// level. If not set, nothing is logged.
func (t *Trigger[T]) WithLogger(logger *slog.Logger) *Trigger[T] {
	if logger != nil {
		t.logger = logger
	}
	return t
}

// Name returns the trigger name for debugging and monitoring.
func (t *Trigger[T]) Name() string {
	return t.name
}

// Policy returns the configured overlap policy.
func (t *Trigger[T]) Policy() TriggerPolicy {
	return t.policy
}

// Stats returns the outcome counters accumulated over every subscription.
func (t *Trigger[T]) Stats() TriggerStats {
	return t.counters.snapshot()
}

func (t *Trigger[T]) validate(source Observable[T]) error {
	switch {
	case source == nil:
		return missing("source")
	case t.isStart == nil:
		return missing("isStart")
	case t.cancelOf == nil:
		return missing("cancelOf")
	case t.releaseOf == nil && t.releaseAfter == nil:
		return missing("releaseOf")
	case t.scheduler == nil:
		return missing("scheduler")
	case !t.policy.Valid():
		return &ArgumentError{Param: "policy", Reason: "is not a trigger policy"}
	}
	return nil
}

// Observe applies the trigger to source. The result emits one Unit per
// released window. It fails with the first error of the source or of any
// selector, and completes once the source has completed with no window left
// open. Invalid arguments are reported before anything is subscribed.
func (t *Trigger[T]) Observe(source Observable[T]) (Observable[Unit], error) {
	releases, err := t.Releases(source)
	if err != nil {
		return nil, err
	}
	return Map(releases, func(Release[T]) Unit { return Unit{} }), nil
}

// Releases is Observe with a description of each released window.
func (t *Trigger[T]) Releases(source Observable[T]) (Observable[Release[T]], error) {
	if err := t.validate(source); err != nil {
		return nil, err
	}
	cfg := *t
	return ObservableFunc[Release[T]](func(o Observer[Release[T]]) Disposable {
		return cfg.subscribe(source, o)
	}), nil
}

// Process applies the trigger to a channel of Results, emitting one success
// per released window with the window described in its metadata. An error
// Result on the input fails the trigger: it is forwarded and the output
// closes.
func (t *Trigger[T]) Process(ctx context.Context, in <-chan Result[T]) <-chan Result[Unit] {
	releases, err := t.Releases(FromChan(ctx, in))
	if err != nil {
		out := make(chan Result[Unit], 1)
		out <- NewError(Unit{}, err, t.name)
		close(out)
		return out
	}
	name := t.name
	return bridge(ctx, Map(releases, func(r Release[T]) Result[Unit] {
		return NewSuccess(Unit{}).
			WithMetadata(MetadataProcessor, name).
			WithMetadata(MetadataWindowID, r.ID.String()).
			WithMetadata(MetadataWindowSeq, r.Seq).
			WithMetadata(MetadataWindowStart, r.OpenedAt).
			WithMetadata(MetadataReleasedAt, r.ReleasedAt)
	}), name)
}

// TriggerOn applies a trigger released by releaseOf to source.
func TriggerOn[T any](source Observable[T], isStart func(T) bool, cancelOf, releaseOf Selector[T], scheduler Scheduler, policy TriggerPolicy) (Observable[Unit], error) {
	if releaseOf == nil {
		return nil, missing("releaseOf")
	}
	return NewTrigger(isStart, cancelOf, scheduler).
		ReleaseWhen(releaseOf).
		WithPolicy(policy).
		Observe(source)
}

// TriggerAfter applies a trigger released after releaseTime(seq) of quiet to
// source.
func TriggerAfter[T any](source Observable[T], isStart func(T) bool, cancelOf Selector[T], releaseTime func(attempt int) time.Duration, scheduler Scheduler, policy TriggerPolicy) (Observable[Unit], error) {
	if releaseTime == nil {
		return nil, missing("releaseTime")
	}
	return NewTrigger(isStart, cancelOf, scheduler).
		ReleaseAfter(releaseTime).
		WithPolicy(policy).
		Observe(source)
}

// startGuard is set while a window is open under DiscardTriggerIfAlreadyStarted.
type startGuard struct {
	busy atomic.Bool
}

// tryAcquire moves the guard from clear to set, reporting whether it did.
func (g *startGuard) tryAcquire() bool {
	return g.busy.CompareAndSwap(false, true)
}

func (g *startGuard) clear() {
	g.busy.Store(false)
}

type triggerEntry[T any] struct {
	w     *Window[T]
	state atomic.Int32
}

// resolve moves the entry out of TriggerOpen; only the first caller succeeds.
func (e *triggerEntry[T]) resolve(to TriggerState) bool {
	return e.state.CompareAndSwap(int32(TriggerOpen), int32(to))
}

type triggerRun[T any] struct {
	cfg        *Trigger[T]
	out        *serialObserver[Release[T]]
	log        *slog.Logger
	scope      *Scope
	active     map[*Window[T]]*triggerEntry[T]
	guard      startGuard
	mu         sync.Mutex
	sourceDone bool
	stopped    bool
	terminated atomic.Bool
}

func (t *Trigger[T]) subscribe(source Observable[T], o Observer[Release[T]]) Disposable {
	r := &triggerRun[T]{
		cfg:    t,
		out:    newSerialObserver(o),
		log:    t.logger.With("trigger", t.name, "policy", t.policy.String()),
		scope:  NewScope(),
		active: make(map[*Window[T]]*triggerEntry[T]),
	}

	windows := SplitWindows(Share(source), r.admit, r.closing, t.scheduler)
	r.scope.Add(windows.Subscribe(ObserverFuncs[*Window[T]]{
		Next:     r.open,
		Error:    r.fail,
		Complete: r.sourceCompleted,
	}))

	return NewDisposable(r.dispose)
}

// admit decides whether v opens a window.
func (r *triggerRun[T]) admit(v T) bool {
	if !r.cfg.isStart(v) {
		return false
	}
	if r.cfg.policy == DiscardTriggerIfAlreadyStarted && !r.guard.tryAcquire() {
		r.cfg.counters.discarded.Add(1)
		r.log.Debug("trigger start discarded", "value", v)
		return false
	}
	return true
}

func (r *triggerRun[T]) closing(w *Window[T]) Observable[any] {
	if r.cfg.releaseAfter != nil {
		return AsAny(Debounce[T](w, r.cfg.releaseAfter(w.Seq()), r.cfg.scheduler))
	}
	return r.cfg.releaseOf(w)
}

func (r *triggerRun[T]) open(w *Window[T]) {
	e := &triggerEntry[T]{w: w}

	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		w.Close()
		return
	}
	r.active[w] = e
	r.mu.Unlock()

	r.cfg.counters.opened.Add(1)
	r.log.Debug("trigger window opened", "window", w.ID(), "seq", w.Seq())

	w.scope.Add(w.Subscribe(ObserverFuncs[T]{
		Complete: func() { r.release(e) },
		Error:    r.fail,
	}))

	var cancel Observable[any]
	if err := guard(func() { cancel = r.cfg.cancelOf(w) }); err != nil {
		r.fail(NewStreamError(w.Start(), err, r.cfg.name))
		return
	}
	if cancel != nil {
		w.scope.Add(cancel.Subscribe(ObserverFuncs[any]{
			Next:  func(any) { r.cancel(e, false) },
			Error: r.fail,
		}))
	}

	if r.cfg.policy == CancelPreviousOnTriggerStart {
		restarts := Skip(Filter[T](w, r.cfg.isStart), 1)
		w.scope.Add(restarts.Subscribe(ObserverFuncs[T]{
			Next:  func(T) { r.cancel(e, true) },
			Error: r.fail,
		}))
	}
}

func (r *triggerRun[T]) live() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.stopped
}

// settle removes a resolved entry from the active set. It reports whether the
// run is still live and whether the source has completed with nothing open.
func (r *triggerRun[T]) settle(e *triggerEntry[T]) (live, drained bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, e.w)
	return !r.stopped, r.sourceDone && len(r.active) == 0
}

func (r *triggerRun[T]) release(e *triggerEntry[T]) {
	if !e.resolve(TriggerReleased) {
		return
	}
	if !r.live() {
		r.settle(e)
		e.w.Close()
		return
	}
	if r.cfg.policy == DiscardTriggerIfAlreadyStarted {
		r.guard.clear()
	}

	now := r.cfg.scheduler.Now()
	r.cfg.counters.released.Add(1)
	r.cfg.counters.lastRelease.Store(&now)
	r.log.Debug("trigger window released", "window", e.w.ID(), "seq", e.w.Seq())

	// The entry leaves the active set only once its release is queued
	// downstream, so a concurrent source completion cannot finish ahead of it.
	r.out.OnNext(Release[T]{
		ID:         e.w.ID(),
		Seq:        e.w.Seq(),
		Start:      e.w.Start(),
		OpenedAt:   e.w.OpenedAt(),
		ReleasedAt: now,
	})
	_, drained := r.settle(e)
	e.w.Close()

	if drained {
		r.finish()
	}
}

func (r *triggerRun[T]) cancel(e *triggerEntry[T], preempted bool) {
	if !e.resolve(TriggerCancelled) {
		return
	}
	live, drained := r.settle(e)
	if !live {
		e.w.Close()
		return
	}
	if r.cfg.policy == DiscardTriggerIfAlreadyStarted {
		r.guard.clear()
	}

	if preempted {
		r.cfg.counters.preempted.Add(1)
		r.log.Debug("trigger window preempted", "window", e.w.ID(), "seq", e.w.Seq())
	} else {
		r.cfg.counters.cancelled.Add(1)
		r.log.Debug("trigger window cancelled", "window", e.w.ID(), "seq", e.w.Seq())
	}
	e.w.Close()

	if drained {
		r.finish()
	}
}

func (r *triggerRun[T]) sourceCompleted() {
	r.mu.Lock()
	r.sourceDone = true
	empty := len(r.active) == 0
	r.mu.Unlock()

	if empty {
		r.finish()
	}
}

// stop marks the run stopped and returns the windows that were still open.
func (r *triggerRun[T]) stop() []*Window[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	open := make([]*Window[T], 0, len(r.active))
	for w := range r.active {
		open = append(open, w)
	}
	clear(r.active)
	return open
}

func (r *triggerRun[T]) finish() {
	if !r.terminated.CompareAndSwap(false, true) {
		return
	}
	r.stop()
	r.log.Debug("trigger completed")
	r.out.OnComplete()
	r.scope.Dispose()
}

func (r *triggerRun[T]) fail(err error) {
	if !r.terminated.CompareAndSwap(false, true) {
		return
	}
	for _, w := range r.stop() {
		w.Close()
	}
	r.log.Debug("trigger failed", "error", err)
	r.out.OnError(err)
	r.scope.Dispose()
}

func (r *triggerRun[T]) dispose() {
	r.out.stop()
	r.terminated.Store(true)
	for _, w := range r.stop() {
		w.Close()
	}
	r.scope.Dispose()
}
