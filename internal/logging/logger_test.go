package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, slog.LevelInfo, "json")
	logger.Debug("hidden")
	logger.Info("exported", "path", "merged_document.png")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected one line at info level, got %d", len(lines))
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("Expected JSON output: %v", err)
	}
	if rec["msg"] != "exported" || rec["path"] != "merged_document.png" {
		t.Errorf("Unexpected record %v", rec)
	}
}

func TestTextLogger(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerTo(&buf, slog.LevelDebug, "TEXT").Debug("drag state", "to", "dragging")
	if !strings.Contains(buf.String(), "msg=\"drag state\"") {
		t.Errorf("Expected text output, got %q", buf.String())
	}
}
