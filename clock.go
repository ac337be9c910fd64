package triggerz

import (
	"time"

	"github.com/zoobzio/clockz"
)

// Clock provides time operations for deterministic testing.
type Clock = clockz.Clock

// Timer represents a single event timer.
type Timer = clockz.Timer

// RealClock is the default Clock using standard time.
var RealClock Clock = clockz.RealClock

// Scheduler runs actions after a delay on some logical timeline.
type Scheduler interface {
	// Now returns the scheduler's current time.
	Now() time.Time

	// Schedule runs action once delay has elapsed. Disposing the result before
	// then cancels it.
	Schedule(delay time.Duration, action func()) Disposable
}

// ClockScheduler schedules actions on a Clock. Actions run on the clock's
// timer goroutines, so they may run concurrently with source deliveries.
type ClockScheduler struct {
	clock Clock
}

// NewClockScheduler creates a Scheduler backed by clock.
func NewClockScheduler(clock Clock) *ClockScheduler {
	return &ClockScheduler{clock: clock}
}

// DefaultScheduler schedules on the real clock.
var DefaultScheduler Scheduler = NewClockScheduler(RealClock)

// Now returns the clock's current time.
func (s *ClockScheduler) Now() time.Time {
	return s.clock.Now()
}

// Schedule runs action on a clock timer.
func (s *ClockScheduler) Schedule(delay time.Duration, action func()) Disposable {
	if delay < 0 {
		delay = 0
	}
	timer := s.clock.AfterFunc(delay, action)
	return NewDisposable(func() { timer.Stop() })
}
