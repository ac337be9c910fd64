package source

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/zoobzio/triggerz"
)

// FSNotify emits an Event for every create, write, remove and rename under
// paths. Base names matching one of the ignore patterns are skipped. Each
// subscription owns its own watcher; disposing it closes the watcher. A
// watcher error fails the stream.
func FSNotify(sched triggerz.Scheduler, paths []string, ignore ...string) triggerz.Observable[Event] {
	return triggerz.Create(func(o triggerz.Observer[Event]) triggerz.Disposable {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			o.OnError(fmt.Errorf("creating watcher: %w", err))
			return triggerz.Disposed
		}
		for _, p := range paths {
			if err := watcher.Add(p); err != nil {
				_ = watcher.Close()
				o.OnError(fmt.Errorf("watching %s: %w", p, err))
				return triggerz.Disposed
			}
		}

		done := make(chan struct{})
		go func() {
			for {
				select {
				case <-done:
					return
				case ev, ok := <-watcher.Events:
					if !ok {
						return
					}
					if kind, ok := kindOf(ev.Op); ok && !ignored(ev.Name, ignore) {
						o.OnNext(Event{At: sched.Now(), Kind: kind, Path: ev.Name})
					}
				case err, ok := <-watcher.Errors:
					if !ok {
						return
					}
					o.OnError(fmt.Errorf("watcher: %w", err))
					return
				}
			}
		}()

		var once sync.Once
		return triggerz.NewDisposable(func() {
			once.Do(func() {
				close(done)
				_ = watcher.Close()
			})
		})
	})
}

func kindOf(op fsnotify.Op) (Kind, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return Create, true
	case op.Has(fsnotify.Write):
		return Write, true
	case op.Has(fsnotify.Remove):
		return Remove, true
	case op.Has(fsnotify.Rename):
		return Rename, true
	}
	return "", false
}
