package triggerz

import (
	"fmt"
	"strings"
)

// TriggerPolicy decides what happens when a start event arrives while a
// trigger window is already open.
type TriggerPolicy int

const (
	// CancelPreviousOnTriggerStart cancels the open window and opens a new
	// one. At most one window is open at any instant. This is the default.
	CancelPreviousOnTriggerStart TriggerPolicy = iota

	// IndependentTriggers opens a new window for every start event. Windows
	// resolve independently of each other.
	IndependentTriggers

	// DiscardTriggerIfAlreadyStarted ignores start events while a window is
	// open. At most one window is open at any instant.
	DiscardTriggerIfAlreadyStarted
)

var policyNames = map[TriggerPolicy]string{
	CancelPreviousOnTriggerStart:   "cancel-previous",
	IndependentTriggers:            "independent",
	DiscardTriggerIfAlreadyStarted: "discard-if-started",
}

// String returns the configuration name of the policy.
func (p TriggerPolicy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("TriggerPolicy(%d)", int(p))
}

// Valid reports whether p is one of the defined policies.
func (p TriggerPolicy) Valid() bool {
	_, ok := policyNames[p]
	return ok
}

// PolicyFromCancelPrevious maps the legacy boolean flag onto a policy:
// true selects CancelPreviousOnTriggerStart, false IndependentTriggers.
func PolicyFromCancelPrevious(cancelPrevious bool) TriggerPolicy {
	if cancelPrevious {
		return CancelPreviousOnTriggerStart
	}
	return IndependentTriggers
}

// ParsePolicy parses a policy from its configuration name or Go identifier.
// The empty string yields the default policy.
func ParsePolicy(s string) (TriggerPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cancel-previous", "cancelpreviousontriggerstart":
		return CancelPreviousOnTriggerStart, nil
	case "independent", "independenttriggers":
		return IndependentTriggers, nil
	case "discard-if-started", "discardtriggerifalreadystarted":
		return DiscardTriggerIfAlreadyStarted, nil
	}
	return CancelPreviousOnTriggerStart, &ArgumentError{Param: "policy", Reason: fmt.Sprintf("%q is not a trigger policy", s)}
}
