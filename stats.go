package triggerz

import (
	"sync/atomic"
	"time"
)

// TriggerStats is a snapshot of a Trigger's window outcomes, accumulated over
// every subscription of the Trigger.
type TriggerStats struct {
	// LastRelease is the scheduler time of the most recent release.
	LastRelease time.Time
	// Opened counts windows that were admitted and opened.
	Opened int64
	// Released counts windows that emitted downstream.
	Released int64
	// Cancelled counts windows discarded by their cancel condition.
	Cancelled int64
	// Preempted counts windows discarded by a newer start event.
	Preempted int64
	// Discarded counts start events ignored because a window was open.
	Discarded int64
}

// Pending returns the number of windows neither released nor cancelled.
func (s TriggerStats) Pending() int64 {
	return s.Opened - s.Released - s.Cancelled - s.Preempted
}

type triggerCounters struct {
	lastRelease atomic.Pointer[time.Time]
	opened      atomic.Int64
	released    atomic.Int64
	cancelled   atomic.Int64
	preempted   atomic.Int64
	discarded   atomic.Int64
}

func (c *triggerCounters) snapshot() TriggerStats {
	s := TriggerStats{
		Opened:    c.opened.Load(),
		Released:  c.released.Load(),
		Cancelled: c.cancelled.Load(),
		Preempted: c.preempted.Load(),
		Discarded: c.discarded.Load(),
	}
	if t := c.lastRelease.Load(); t != nil {
		s.LastRelease = *t
	}
	return s
}
