package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewWritesLogFile(t *testing.T) {
	baseDir := t.TempDir()

	logger := New(baseDir, false)
	logger.Info().Str("action", "test").Msg("hello")

	data, err := os.ReadFile(filepath.Join(baseDir, "logs", "app.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("log lines = %d, want 2 (init + event)", len(lines))
	}

	var event map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &event); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if event["action"] != "test" || event["message"] != "hello" {
		t.Errorf("event = %v", event)
	}
	if _, ok := event["time"]; !ok {
		t.Error("event missing timestamp")
	}
}

func TestNewVerboseLevel(t *testing.T) {
	baseDir := t.TempDir()

	logger := New(baseDir, true)
	logger.Debug().Msg("debug event")

	data, err := os.ReadFile(filepath.Join(baseDir, "logs", "app.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "debug event") {
		t.Error("verbose logger dropped debug event")
	}

	quiet := New(t.TempDir(), false)
	if quiet.GetLevel() != zerolog.InfoLevel {
		t.Errorf("quiet level = %v, want info", quiet.GetLevel())
	}
}
