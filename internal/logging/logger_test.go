package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"info":    slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"trace":   LevelTrace,
		"unknown": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equalf(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestNewLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("info", &buf)
	logger.Debug("should not appear")
	assert.Zero(t, buf.Len(), "expected debug message to be suppressed at info level")
	logger.Info("should appear")
	assert.NotZero(t, buf.Len(), "expected info message to be written")
}

func TestNewDecisionLogger_NilAtInfoLevel(t *testing.T) {
	dl := NewDecisionLogger(t.TempDir(), "info")
	assert.Nil(t, dl, "expected nil decision logger at info level")
	// Nil-safe no-ops must not panic.
	dl.Log(map[string]any{"x": 1})
	dl.Close()
}

func TestDecisionLogger_WritesJSONLAtDebugLevel(t *testing.T) {
	dir := t.TempDir()
	dl := NewDecisionLogger(dir, "debug")
	require.NotNil(t, dl, "expected non-nil decision logger at debug level")
	defer dl.Close()

	dl.Log(map[string]any{"event": "readiness", "ready": true})

	data, err := os.ReadFile(filepath.Join(dir, "decisions.jsonl"))
	require.NoError(t, err, "failed to read decisions.jsonl")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &decoded), "expected valid JSON line")
	assert.Equal(t, "readiness", decoded["event"])
	assert.Contains(t, decoded, "time", "expected a time field to be added automatically")
}
