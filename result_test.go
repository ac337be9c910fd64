package triggerz

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewSuccess(t *testing.T) {
	result := NewSuccess(42)

	if result.IsError() || !result.IsSuccess() {
		t.Error("Expected NewSuccess to create successful Result")
	}
	if result.Value() != 42 {
		t.Errorf("Expected Value() to return 42, got %d", result.Value())
	}
	if result.Error() != nil {
		t.Error("Expected Error() to return nil for successful Result")
	}
}

func TestNewError(t *testing.T) {
	err := errors.New("test error")
	result := NewError("failed-item", err, "test-processor")

	if !result.IsError() || result.IsSuccess() {
		t.Error("Expected NewError to create error Result")
	}

	streamErr := result.Error()
	if streamErr == nil {
		t.Fatal("Expected Error() to return StreamError")
	}
	if streamErr.Item != "failed-item" {
		t.Errorf("Expected Item to be %q, got %q", "failed-item", streamErr.Item)
	}
	if !errors.Is(streamErr, err) {
		t.Errorf("Expected Err to be %v, got %v", err, streamErr.Err)
	}
	if streamErr.ProcessorName != "test-processor" {
		t.Errorf("Expected ProcessorName to be %q, got %q", "test-processor", streamErr.ProcessorName)
	}
}

func TestResult_ValuePanic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected Value() to panic on error Result")
		}
	}()
	NewError(0, errors.New("x"), "p").Value()
}

func TestResult_ValueOr(t *testing.T) {
	if got := NewSuccess(5).ValueOr(9); got != 5 {
		t.Errorf("Expected 5, got %d", got)
	}
	if got := NewError(5, errors.New("x"), "p").ValueOr(9); got != 9 {
		t.Errorf("Expected fallback 9, got %d", got)
	}
}

func TestWithMetadata_Basic(t *testing.T) {
	original := NewSuccess("value")
	withMeta := original.WithMetadata(MetadataProcessor, "trigger")

	if original.HasMetadata() {
		t.Error("Expected original Result to remain unchanged")
	}
	value, ok := withMeta.GetMetadata(MetadataProcessor)
	if !ok || value != "trigger" {
		t.Errorf("Expected processor metadata, got %v (found=%v)", value, ok)
	}
	if withMeta.Value() != "value" {
		t.Errorf("Expected value to be preserved, got %q", withMeta.Value())
	}
}

func TestWithMetadata_EmptyKey(t *testing.T) {
	result := NewSuccess(1).WithMetadata("", "ignored")
	if result.HasMetadata() {
		t.Error("Expected empty key to be ignored")
	}
}

func TestWithMetadata_ErrorResult(t *testing.T) {
	result := NewError(1, errors.New("x"), "p").WithMetadata(MetadataWindowSeq, 3)
	if !result.IsError() {
		t.Error("Expected error to be preserved")
	}
	if seq, found, err := result.GetIntMetadata(MetadataWindowSeq); err != nil || !found || seq != 3 {
		t.Errorf("Expected seq 3, got %d (found=%v, err=%v)", seq, found, err)
	}
}

func TestMetadataKeys(t *testing.T) {
	if keys := NewSuccess(1).MetadataKeys(); len(keys) != 0 {
		t.Errorf("Expected no keys, got %v", keys)
	}

	result := NewSuccess(1).
		WithMetadata(MetadataWindowSeq, 1).
		WithMetadata(MetadataProcessor, "t").
		WithMetadata(MetadataReleasedAt, time.Now())

	keys := result.MetadataKeys()
	want := []string{MetadataProcessor, MetadataReleasedAt, MetadataWindowSeq}
	if fmt.Sprint(keys) != fmt.Sprint(want) {
		t.Errorf("Expected sorted keys %v, got %v", want, keys)
	}
}

func TestTypedAccessors(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	result := NewSuccess(1).
		WithMetadata("s", "text").
		WithMetadata("tm", now).
		WithMetadata("i", 7)

	if s, found, err := result.GetStringMetadata("s"); err != nil || !found || s != "text" {
		t.Errorf("string: got %q found=%v err=%v", s, found, err)
	}
	if tm, found, err := result.GetTimeMetadata("tm"); err != nil || !found || !tm.Equal(now) {
		t.Errorf("time: got %v found=%v err=%v", tm, found, err)
	}
	if i, found, err := result.GetIntMetadata("i"); err != nil || !found || i != 7 {
		t.Errorf("int: got %d found=%v err=%v", i, found, err)
	}

	if _, found, err := result.GetStringMetadata("missing"); found || err != nil {
		t.Errorf("missing key: found=%v err=%v", found, err)
	}
	if _, found, err := result.GetIntMetadata("s"); found || err == nil {
		t.Errorf("wrong type: expected error, found=%v err=%v", found, err)
	}
}

func TestGetReleaseInfo(t *testing.T) {
	id := uuid.New()
	opened := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	released := opened.Add(2 * time.Second)

	result := NewSuccess(Unit{}).
		WithMetadata(MetadataProcessor, "rebuild").
		WithMetadata(MetadataWindowID, id.String()).
		WithMetadata(MetadataWindowSeq, 4).
		WithMetadata(MetadataWindowStart, opened).
		WithMetadata(MetadataReleasedAt, released)

	info, err := GetReleaseInfo(result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := ReleaseInfo{Processor: "rebuild", WindowID: id, Seq: 4, OpenedAt: opened, ReleasedAt: released}
	if info != want {
		t.Errorf("Expected %+v, got %+v", want, info)
	}

	if _, err := GetReleaseInfo(NewSuccess(1)); err == nil {
		t.Error("Expected error without window metadata")
	}
	if _, err := GetReleaseInfo(NewSuccess(1).WithMetadata(MetadataWindowID, "not-a-uuid")); err == nil {
		t.Error("Expected error for a malformed window id")
	}
}

func TestWithMetadata_ConcurrentAccess(t *testing.T) {
	base := NewSuccess(0).WithMetadata("shared", 1)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := base.WithMetadata(fmt.Sprintf("k%d", i), i)
			if v, _, err := r.GetIntMetadata("shared"); err != nil || v != 1 {
				t.Errorf("shared metadata lost: %v %v", v, err)
			}
		}(i)
	}
	wg.Wait()

	if len(base.MetadataKeys()) != 1 {
		t.Errorf("Expected base Result untouched, got keys %v", base.MetadataKeys())
	}
}
