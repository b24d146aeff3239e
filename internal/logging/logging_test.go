package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"error":   slog.LevelError,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWriterFormats(t *testing.T) {
	var buf bytes.Buffer
	NewWriter(&buf, "info", "json").Info("report built", "records", 3)
	if !strings.Contains(buf.String(), `"records":3`) {
		t.Fatalf("expected JSON output, got %q", buf.String())
	}

	buf.Reset()
	logger := NewWriter(&buf, "warn", "text")
	logger.Info("hidden")
	logger.Warn("shown", "cache", "miss")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "cache=miss") {
		t.Fatalf("unexpected text output %q", out)
	}
}

func TestOrDefault(t *testing.T) {
	if OrDefault(nil) != slog.Default() {
		t.Fatalf("nil should map to slog.Default")
	}
	l := Discard()
	if OrDefault(l) != l {
		t.Fatalf("non-nil logger should pass through")
	}
}
