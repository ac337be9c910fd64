package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger("text", "info", &buf)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	logger.Debug("hidden")
	logger.Info("released", "window", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record written at info level: %q", out)
	}
	if !strings.Contains(out, "msg=released") || !strings.Contains(out, "window=3") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger("json", "debug", &buf)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	WithTrigger(logger, "rebuild").Debug("window opened")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not json: %v", err)
	}
	if record["msg"] != "window opened" || record["trigger"] != "rebuild" {
		t.Errorf("unexpected record %v", record)
	}
}

func TestNewLogger_Invalid(t *testing.T) {
	if _, err := NewLogger("xml", "info", nil); err == nil {
		t.Error("expected an error for an unknown format")
	}
	if _, err := NewLogger("text", "verbose", nil); err == nil {
		t.Error("expected an error for an unknown level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
}
