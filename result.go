package triggerz

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Result carries either a value or the error that replaced it through a
// channel pipeline, plus optional metadata describing where it came from.
type Result[T any] struct {
	value    T
	err      *StreamError[T]
	metadata map[string]any // nil until the first WithMetadata
}

// NewSuccess creates a Result containing a successful value.
func NewSuccess[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// NewError creates a Result containing an error.
func NewError[T any](item T, err error, processorName string) Result[T] {
	return Result[T]{err: NewStreamError(item, err, processorName)}
}

// IsError returns true if this Result contains an error.
func (r Result[T]) IsError() bool {
	return r.err != nil
}

// IsSuccess returns true if this Result contains a successful value.
func (r Result[T]) IsSuccess() bool {
	return r.err == nil
}

// Value returns the successful value.
// Panics if called on a Result containing an error - always check IsSuccess() first.
func (r Result[T]) Value() T {
	if r.err != nil {
		panic("called Value() on Result containing an error")
	}
	return r.value
}

// Error returns the StreamError, or nil for a successful Result.
func (r Result[T]) Error() *StreamError[T] {
	return r.err
}

// ValueOr returns the successful value if present, otherwise returns the fallback.
func (r Result[T]) ValueOr(fallback T) T {
	if r.err != nil {
		return fallback
	}
	return r.value
}

// Metadata keys set on the Results emitted by Trigger.Process.
const (
	MetadataProcessor   = "processor"    // string - trigger name
	MetadataWindowID    = "window_id"    // string - released window id
	MetadataWindowSeq   = "window_seq"   // int - 0-based window index
	MetadataWindowStart = "window_start" // time.Time - window open time
	MetadataReleasedAt  = "released_at"  // time.Time - release time
)

// WithMetadata returns a copy of the Result with key set to value.
// The original Result is unchanged. Empty keys are ignored.
func (r Result[T]) WithMetadata(key string, value any) Result[T] {
	if key == "" {
		return r
	}

	md := make(map[string]any, len(r.metadata)+1)
	maps.Copy(md, r.metadata)
	md[key] = value

	return Result[T]{
		value:    r.value,
		err:      r.err,
		metadata: md,
	}
}

// GetMetadata retrieves a metadata value by key.
// The caller must type-assert the returned value to the expected type.
func (r Result[T]) GetMetadata(key string) (any, bool) {
	value, exists := r.metadata[key]
	return value, exists
}

// HasMetadata returns true if this Result contains any metadata.
func (r Result[T]) HasMetadata() bool {
	return len(r.metadata) > 0
}

// MetadataKeys returns the metadata keys in sorted order.
func (r Result[T]) MetadataKeys() []string {
	if r.metadata == nil {
		return []string{}
	}
	return slices.Sorted(maps.Keys(r.metadata))
}

func typedMetadata[V any, T any](r Result[T], key string) (value V, found bool, err error) {
	raw, exists := r.GetMetadata(key)
	if !exists {
		return value, false, nil
	}
	v, ok := raw.(V)
	if !ok {
		return value, false, fmt.Errorf("metadata key %q has type %T, expected %T", key, raw, value)
	}
	return v, true, nil
}

// GetStringMetadata retrieves string metadata.
// Returns: (value, found, error)
// - found=false, error=nil: key not present
// - found=false, error!=nil: key present but wrong type
// - found=true, error=nil: successful retrieval.
func (r Result[T]) GetStringMetadata(key string) (string, bool, error) {
	return typedMetadata[string](r, key)
}

// GetTimeMetadata retrieves time.Time metadata.
func (r Result[T]) GetTimeMetadata(key string) (time.Time, bool, error) {
	return typedMetadata[time.Time](r, key)
}

// GetIntMetadata retrieves int metadata.
func (r Result[T]) GetIntMetadata(key string) (int, bool, error) {
	return typedMetadata[int](r, key)
}

// ReleaseInfo is the window description carried by a Trigger.Process Result.
//
//nolint:govet // Field ordering optimized for readability
type ReleaseInfo struct {
	Processor  string
	WindowID   uuid.UUID
	Seq        int
	OpenedAt   time.Time
	ReleasedAt time.Time
}

// GetReleaseInfo extracts the release description from a Result produced by
// Trigger.Process.
func GetReleaseInfo[T any](result Result[T]) (ReleaseInfo, error) {
	var info ReleaseInfo

	id, found, err := result.GetStringMetadata(MetadataWindowID)
	if err != nil {
		return info, err
	}
	if !found {
		return info, fmt.Errorf("result carries no %s metadata", MetadataWindowID)
	}
	if info.WindowID, err = uuid.Parse(id); err != nil {
		return info, fmt.Errorf("metadata key %q: %w", MetadataWindowID, err)
	}

	if info.Seq, _, err = result.GetIntMetadata(MetadataWindowSeq); err != nil {
		return info, err
	}
	if info.OpenedAt, _, err = result.GetTimeMetadata(MetadataWindowStart); err != nil {
		return info, err
	}
	if info.ReleasedAt, _, err = result.GetTimeMetadata(MetadataReleasedAt); err != nil {
		return info, err
	}
	if info.Processor, _, err = result.GetStringMetadata(MetadataProcessor); err != nil {
		return info, err
	}
	return info, nil
}
