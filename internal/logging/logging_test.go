package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestWriterFiltersBelowMinLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWriter(LevelWarn, &buf)

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("shown")

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Fatalf("expected low-severity entries to be dropped, got %q", output)
	}
	if !strings.Contains(output, "[WARN] shown") {
		t.Fatalf("expected warn entry, got %q", output)
	}
}

func TestWriterIncludesErrorAndFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWriter(LevelDebug, &buf)

	logger.Error("boom", errors.New("disk full"), F("path", "/tmp/x"))

	output := buf.String()
	if !strings.Contains(output, `error="disk full"`) {
		t.Fatalf("expected error detail, got %q", output)
	}
	if !strings.Contains(output, "path=/tmp/x") {
		t.Fatalf("expected field, got %q", output)
	}
}

func TestWithCarriesBoundFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWriter(LevelInfo, &buf).With(F("component", "server"))

	logger.Info("listening")

	if !strings.Contains(buf.String(), "component=server") {
		t.Fatalf("expected bound field, got %q", buf.String())
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	t.Parallel()

	if got := ParseLevel("nonsense"); got != LevelInfo {
		t.Fatalf("unexpected level: %s", got)
	}
	if got := ParseLevel("warning"); got != LevelWarn {
		t.Fatalf("unexpected level: %s", got)
	}
}
