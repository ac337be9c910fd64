// Package source adapts external event producers into triggerz observables.
package source

import (
	"fmt"
	"path/filepath"
	"time"
)

// Kind classifies an Event.
type Kind string

// Event kinds.
const (
	Create Kind = "create"
	Write  Kind = "write"
	Remove Kind = "remove"
	Rename Kind = "rename"
	Tick   Kind = "tick"
)

// Event is a file change or a schedule tick.
type Event struct {
	At   time.Time
	Kind Kind
	// Path is empty for ticks.
	Path string
}

func (e Event) String() string {
	if e.Path == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s %s", e.Kind, e.Path)
}

// IsChange reports whether e creates or modifies a file.
func (e Event) IsChange() bool {
	return e.Kind == Create || e.Kind == Write
}

// IsRemoval reports whether e makes a file disappear.
func (e Event) IsRemoval() bool {
	return e.Kind == Remove || e.Kind == Rename
}

func ignored(path string, patterns []string) bool {
	name := filepath.Base(path)
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}
