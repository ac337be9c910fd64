package triggerz

import (
	"container/heap"
	"sync"
	"time"
)

type virtualItem struct {
	at        time.Time
	action    func()
	seq       uint64
	index     int
	cancelled bool
}

type virtualQueue []*virtualItem

func (q virtualQueue) Len() int { return len(q) }

func (q virtualQueue) Less(i, j int) bool {
	if q[i].at.Equal(q[j].at) {
		return q[i].seq < q[j].seq
	}
	return q[i].at.Before(q[j].at)
}

func (q virtualQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *virtualQueue) Push(x any) {
	item := x.(*virtualItem)
	item.index = len(*q)
	*q = append(*q, item)
}

func (q *virtualQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[:n-1]
	return item
}

// VirtualScheduler is a deterministic Scheduler whose time only moves when
// AdvanceTo, AdvanceBy or Run is called. Due actions run on the calling
// goroutine in order of due time, then scheduling order, and observe Now()
// equal to their due time. Actions scheduled while advancing run in the same
// advance when they fall due before its target.
//
// Example:
//
//	sched := triggerz.NewVirtualScheduler(time.Time{})
//	sched.ScheduleAt(sched.Now().Add(time.Second), func() { fmt.Println("tick") })
//	sched.AdvanceBy(2 * time.Second) // prints "tick"
type VirtualScheduler struct {
	mu    sync.Mutex
	now   time.Time
	queue virtualQueue
	seq   uint64
}

// NewVirtualScheduler creates a scheduler whose clock starts at start.
func NewVirtualScheduler(start time.Time) *VirtualScheduler {
	return &VirtualScheduler{now: start}
}

// Now returns the virtual time.
func (s *VirtualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Schedule runs action delay after the current virtual time.
func (s *VirtualScheduler) Schedule(delay time.Duration, action func()) Disposable {
	if delay < 0 {
		delay = 0
	}
	s.mu.Lock()
	at := s.now.Add(delay)
	s.mu.Unlock()
	return s.ScheduleAt(at, action)
}

// ScheduleAt runs action at the absolute virtual time at. Times in the past
// run on the next advance.
func (s *VirtualScheduler) ScheduleAt(at time.Time, action func()) Disposable {
	s.mu.Lock()
	item := &virtualItem{at: at, action: action, seq: s.seq}
	s.seq++
	heap.Push(&s.queue, item)
	s.mu.Unlock()

	return NewDisposable(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if item.cancelled || item.index < 0 {
			return
		}
		item.cancelled = true
		heap.Remove(&s.queue, item.index)
	})
}

// AdvanceTo runs every action due at or before t, then sets the clock to t.
// Moving backwards only runs actions that are already overdue.
func (s *VirtualScheduler) AdvanceTo(t time.Time) {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 || s.queue[0].at.After(t) {
			if t.After(s.now) {
				s.now = t
			}
			s.mu.Unlock()
			return
		}
		item := heap.Pop(&s.queue).(*virtualItem)
		if item.at.After(s.now) {
			s.now = item.at
		}
		s.mu.Unlock()

		item.action()
	}
}

// AdvanceBy advances the clock by d.
func (s *VirtualScheduler) AdvanceBy(d time.Duration) {
	s.AdvanceTo(s.Now().Add(d))
}

// Run drains the queue, advancing to each action's due time in turn.
func (s *VirtualScheduler) Run() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		at := s.queue[0].at
		s.mu.Unlock()
		s.AdvanceTo(at)
	}
}

// Pending returns the number of scheduled actions that have not run.
func (s *VirtualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}
