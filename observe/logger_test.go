package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLogger_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter("info", &buf)

	l.Info(context.Background(), "cache hit", Field{Key: "key", Value: "ai:detect:abc"})

	entries := logLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e["msg"] != "cache hit" {
		t.Errorf("msg = %v, want %q", e["msg"], "cache hit")
	}
	if e["level"] != "info" {
		t.Errorf("level = %v, want info", e["level"])
	}
	if e["key"] != "ai:detect:abc" {
		t.Errorf("key = %v, want ai:detect:abc", e["key"])
	}
	if _, ok := e["timestamp"]; !ok {
		t.Error("timestamp missing")
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter("warn", &buf)
	ctx := context.Background()

	l.Debug(ctx, "dropped")
	l.Info(ctx, "dropped")
	l.Warn(ctx, "kept")
	l.Error(ctx, "kept")

	if entries := logLines(t, &buf); len(entries) != 2 {
		t.Errorf("got %d entries, want 2", len(entries))
	}
}

func TestLogger_RedactsSensitiveFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter("info", &buf)

	l.Info(context.Background(), "downstream call",
		Field{Key: "payload", Value: []byte{0xff, 0xd8}},
		Field{Key: "filename", Value: "photo.jpg"},
	)

	e := logLines(t, &buf)[0]
	if e["payload"] != "[REDACTED]" {
		t.Errorf("payload = %v, want [REDACTED]", e["payload"])
	}
	if e["filename"] != "photo.jpg" {
		t.Errorf("filename = %v, want photo.jpg", e["filename"])
	}
}

func TestLogger_WithService(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter("info", &buf)

	scoped := l.WithService("ai-dispatch")
	scoped.Info(context.Background(), "ready")

	e := logLines(t, &buf)[0]
	if e["service"] != "ai-dispatch" {
		t.Errorf("service = %v, want ai-dispatch", e["service"])
	}

	// Parent logger is unaffected
	buf.Reset()
	l.Info(context.Background(), "plain")
	if e := logLines(t, &buf)[0]; e["service"] != nil {
		t.Errorf("parent logger service = %v, want absent", e["service"])
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
