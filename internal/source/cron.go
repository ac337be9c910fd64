package source

import (
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/zoobzio/triggerz"
)

var parser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Cron emits a Tick on every activation of a six field cron expression
// (seconds first) or a descriptor such as "@every 5s". Ticks are scheduled
// on sched, so virtual schedulers drive them deterministically. The stream
// never completes.
func Cron(expr string, sched triggerz.Scheduler) (triggerz.Observable[Event], error) {
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parsing cron expression %q: %w", expr, err)
	}

	return triggerz.Create(func(o triggerz.Observer[Event]) triggerz.Disposable {
		t := &ticker{schedule: schedule, sched: sched, o: o}
		t.arm()
		return triggerz.NewDisposable(t.stop)
	}), nil
}

type ticker struct {
	schedule cron.Schedule
	sched    triggerz.Scheduler
	o        triggerz.Observer[Event]
	timer    triggerz.Disposable
	mu       sync.Mutex
	stopped  bool
}

func (t *ticker) arm() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	now := t.sched.Now()
	next := t.schedule.Next(now)
	if next.IsZero() {
		return
	}
	t.timer = t.sched.Schedule(next.Sub(now), func() {
		t.o.OnNext(Event{At: next, Kind: Tick})
		t.arm()
	})
}

func (t *ticker) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	if t.timer != nil {
		t.timer.Dispose()
	}
}
