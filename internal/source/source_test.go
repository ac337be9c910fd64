package source

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoobzio/triggerz"
)

type collector struct {
	events chan Event
	errs   chan error
}

func newCollector() *collector {
	return &collector{events: make(chan Event, 64), errs: make(chan error, 1)}
}

func (c *collector) OnNext(e Event)    { c.events <- e }
func (c *collector) OnError(err error) { c.errs <- err }
func (c *collector) OnComplete()       {}

func (c *collector) next(t *testing.T, match func(Event) bool) Event {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case e := <-c.events:
			if match(e) {
				return e
			}
		case err := <-c.errs:
			t.Fatalf("unexpected error: %v", err)
		case <-timeout:
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestEvent_Classification(t *testing.T) {
	assert.True(t, Event{Kind: Create}.IsChange())
	assert.True(t, Event{Kind: Write}.IsChange())
	assert.False(t, Event{Kind: Tick}.IsChange())
	assert.True(t, Event{Kind: Remove}.IsRemoval())
	assert.True(t, Event{Kind: Rename}.IsRemoval())
	assert.Equal(t, "write a.go", Event{Kind: Write, Path: "a.go"}.String())
	assert.Equal(t, "tick", Event{Kind: Tick}.String())
}

func TestIgnored(t *testing.T) {
	assert.True(t, ignored("/src/.main.go.swp", []string{"*.swp"}))
	assert.False(t, ignored("/src/main.go", []string{"*.swp"}))
	assert.False(t, ignored("/src/main.go", nil))
}

func TestFSNotify_Events(t *testing.T) {
	dir := t.TempDir()
	c := newCollector()
	sub := FSNotify(triggerz.DefaultScheduler, []string{dir}, "*.tmp").Subscribe(c)
	defer sub.Dispose()

	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scratch.tmp"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("package main"), 0o644))

	e := c.next(t, func(e Event) bool { return e.IsChange() })
	assert.Equal(t, path, e.Path)

	require.NoError(t, os.Remove(path))
	e = c.next(t, func(e Event) bool { return e.Kind == Remove })
	assert.Equal(t, path, e.Path)
}

func TestFSNotify_MissingPath(t *testing.T) {
	c := newCollector()
	sub := FSNotify(triggerz.DefaultScheduler, []string{filepath.Join(t.TempDir(), "absent")}).Subscribe(c)
	defer sub.Dispose()

	select {
	case err := <-c.errs:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("expected an error for a missing path")
	}
}

func TestCron_Ticks(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	sched := triggerz.NewVirtualScheduler(start)

	ticks, err := Cron("*/10 * * * * *", sched)
	require.NoError(t, err)

	var got []Event
	sub := ticks.Subscribe(triggerz.ObserverFuncs[Event]{
		Next: func(e Event) { got = append(got, e) },
	})

	sched.AdvanceBy(35 * time.Second)
	require.Len(t, got, 3)
	for i, e := range got {
		assert.Equal(t, Tick, e.Kind)
		assert.Equal(t, start.Add(time.Duration(i+1)*10*time.Second), e.At)
	}

	sub.Dispose()
	sched.AdvanceBy(time.Minute)
	assert.Len(t, got, 3)
	assert.Equal(t, 0, sched.Pending())
}

func TestCron_Descriptor(t *testing.T) {
	sched := triggerz.NewVirtualScheduler(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	ticks, err := Cron("@every 1s", sched)
	require.NoError(t, err)

	count := 0
	sub := ticks.Subscribe(triggerz.ObserverFuncs[Event]{Next: func(Event) { count++ }})
	defer sub.Dispose()

	sched.AdvanceBy(5 * time.Second)
	assert.Equal(t, 5, count)
}

func TestCron_InvalidExpression(t *testing.T) {
	_, err := Cron("every tuesday", triggerz.DefaultScheduler)
	assert.Error(t, err)
}
