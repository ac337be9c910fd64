package config

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zoobzio/triggerz"
)

// LoadScenario loads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates a YAML scenario.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}

	applyScenarioDefaults(&s)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadWatch loads a watch configuration from a YAML file.
func LoadWatch(path string) (*Watch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading watch file: %w", err)
	}

	var w Watch
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("parsing watch file: %w", err)
	}

	ApplyWatchDefaults(&w)
	return &w, nil
}

func applyScenarioDefaults(s *Scenario) {
	if s.Name == "" {
		s.Name = "scenario"
	}
	if len(s.Start) == 0 {
		s.Start = []int{1}
	}
	slices.SortStableFunc(s.Events, func(a, b Event) int {
		return cmp.Compare(a.At, b.At)
	})
	if s.CompleteAt == 0 && len(s.Events) > 0 {
		s.CompleteAt = s.Events[len(s.Events)-1].At
	}
}

// ApplyWatchDefaults fills unset watch fields.
func ApplyWatchDefaults(w *Watch) {
	if w.Name == "" {
		w.Name = "watch"
	}
	if w.QuietPeriod == 0 {
		w.QuietPeriod = 2 * time.Second
	}
	if w.MaxRetries == 0 {
		w.MaxRetries = 3
	}
}

// Validate reports the first inconsistency in the scenario.
func (s *Scenario) Validate() error {
	if _, err := triggerz.ParsePolicy(s.Policy); err != nil {
		return err
	}
	if len(s.ReleaseOn) == 0 && s.ReleaseAfter <= 0 {
		return errors.New("scenario needs release_on values or a positive release_after")
	}
	for i, e := range s.Events {
		if e.At < 0 {
			return fmt.Errorf("event %d: negative offset %v", i, e.At)
		}
	}
	if len(s.Events) > 0 && s.CompleteAt < s.Events[len(s.Events)-1].At {
		return fmt.Errorf("complete_at %v precedes the last event", s.CompleteAt)
	}
	return nil
}

// DefaultScenario returns the playground: starts on 1, cancels on 2 or 3 and
// releases after two seconds of quiet.
func DefaultScenario() *Scenario {
	ms := time.Millisecond
	values := []struct {
		at    time.Duration
		value int
	}{
		{200 * ms, 1}, {400 * ms, 1}, {600 * ms, 2}, {800 * ms, 3},
		{1000 * ms, 1}, {1200 * ms, 1}, {1400 * ms, 4}, {1600 * ms, 1},
		{1800 * ms, 4}, {2000 * ms, 2}, {2200 * ms, 1}, {2400 * ms, 3},
		{2600 * ms, 1}, {3000 * ms, 1}, {6000 * ms, 4},
	}

	s := &Scenario{
		Name:         "playground",
		Policy:       triggerz.CancelPreviousOnTriggerStart.String(),
		Start:        []int{1},
		Cancel:       []int{2, 3},
		ReleaseAfter: 2 * time.Second,
		CompleteAt:   6 * time.Second,
	}
	for _, v := range values {
		s.Events = append(s.Events, Event{At: v.at, Value: v.value})
	}
	return s
}
