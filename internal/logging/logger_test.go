package logging

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"info", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"trace", LevelTrace},
		{"DEBUG", slog.LevelDebug},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger("info", &buf)

	log.Debug("hidden")
	log.Info("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug message should be filtered at info level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("info message should pass at info level")
	}
}

func TestNewLoggerTraceLabel(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger("trace", &buf)

	log.Log(context.Background(), LevelTrace, "deep detail")

	if !strings.Contains(buf.String(), "TRACE") {
		t.Errorf("expected TRACE label in output, got %q", buf.String())
	}
}

func TestAuditLoggerDisabledAtInfo(t *testing.T) {
	dir := t.TempDir()
	al := NewAuditLogger(dir, "info")
	if al != nil {
		t.Fatal("expected nil audit logger at info level")
	}

	// nil receiver is safe
	al.Log(map[string]any{"event": "x"})
	al.Close()

	if _, err := os.Stat(filepath.Join(dir, "audit.jsonl")); !os.IsNotExist(err) {
		t.Error("no audit file should exist at info level")
	}
}

func TestAuditLoggerWritesJSONL(t *testing.T) {
	dir := t.TempDir()
	al := NewAuditLogger(dir, "debug")
	if al == nil {
		t.Fatal("expected audit logger at debug level")
	}

	al.Log(map[string]any{"event": "save_levels", "operations": 3})
	al.Log(map[string]any{"event": "remove_save", "save": "save-1"})
	al.Close()

	f, err := os.Open(filepath.Join(dir, "audit.jsonl"))
	if err != nil {
		t.Fatalf("open audit file: %v", err)
	}
	defer f.Close()

	var lines []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("invalid JSONL line: %v", err)
		}
		lines = append(lines, entry)
	}

	if len(lines) != 2 {
		t.Fatalf("expected 2 audit lines, got %d", len(lines))
	}
	if lines[0]["event"] != "save_levels" {
		t.Errorf("unexpected first event: %v", lines[0]["event"])
	}
	if _, ok := lines[0]["time"]; !ok {
		t.Error("expected time field to be added")
	}
}

func TestLoggersBundle(t *testing.T) {
	var buf bytes.Buffer
	l := New("debug", &buf, t.TempDir())
	if l.Op == nil {
		t.Fatal("expected operational logger")
	}
	if l.Audit == nil {
		t.Fatal("expected audit logger at debug level")
	}
	l.Close()
}
