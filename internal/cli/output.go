package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/zoobzio/triggerz"
)

// elapsedWriter prefixes every trace line with the scheduler time elapsed
// since start, e.g. "t=1.2s source OnNext(1)".
func elapsedWriter(w io.Writer, sched triggerz.Scheduler, start time.Time) triggerz.Writer {
	lines := triggerz.NewLineWriter(w)
	return triggerz.WriterFunc(func(tag, text string) {
		lines.WriteLine(fmt.Sprintf("t=%v %s", sched.Now().Sub(start), tag), text)
	})
}

func writeStats(w io.Writer, s triggerz.TriggerStats) {
	fmt.Fprintf(w, "windows opened=%d released=%d cancelled=%d preempted=%d discarded=%d\n",
		s.Opened, s.Released, s.Cancelled, s.Preempted, s.Discarded)
}

// member returns a predicate matching any of values.
func member(values []int) func(int) bool {
	set := make(map[int]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return func(v int) bool {
		_, ok := set[v]
		return ok
	}
}
