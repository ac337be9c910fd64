// Package config loads triggerz scenario and watch files.
package config

import "time"

// Scenario is a scripted event stream replayed on virtual time by the play
// command.
type Scenario struct {
	Name   string `yaml:"name"`
	Policy string `yaml:"policy"`
	// Start lists the values that open a window.
	Start []int `yaml:"start"`
	// Cancel lists the values that cancel an open window.
	Cancel []int `yaml:"cancel"`
	// ReleaseOn lists values that release an open window. When empty the
	// window is released after ReleaseAfter of quiet.
	ReleaseOn    []int         `yaml:"release_on"`
	ReleaseAfter time.Duration `yaml:"release_after"`
	Events       []Event       `yaml:"events"`
	// CompleteAt is the offset at which the source completes. Zero completes
	// right after the last event.
	CompleteAt time.Duration `yaml:"complete_at"`
}

// Event is one scripted source value.
type Event struct {
	At    time.Duration `yaml:"at"`
	Value int           `yaml:"value"`
}

// Watch configures the watch command.
type Watch struct {
	Name  string   `yaml:"name"`
	Paths []string `yaml:"paths"`
	// Ignore holds filepath.Match patterns applied to base names.
	Ignore      []string      `yaml:"ignore"`
	QuietPeriod time.Duration `yaml:"quiet_period"`
	// Cron optionally releases the open window on every tick (six fields,
	// seconds first).
	Cron   string `yaml:"cron"`
	Policy string `yaml:"policy"`
	// MaxRetries bounds how often a failed watcher is restarted.
	MaxRetries int `yaml:"max_retries"`
}
