package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()

	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		entries = append(entries, entry)
	}
	return entries
}

func TestStructuredLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger("dashboard-test", "1.2.3", InfoLevel)
	logger.SetOutput(&buf)

	ctx := WithRequestID(context.Background(), "req-42")
	logger.Info(ctx, "[TEST] hello", Fields{"rows": 12, "source": "indoor"})

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "[TEST] hello", entry["msg"])
	assert.Equal(t, "dashboard-test", entry["service"])
	assert.Equal(t, "1.2.3", entry["version"])
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "indoor", entry["source"])
	assert.EqualValues(t, 12, entry["rows"])
}

func TestStructuredLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger("dashboard-test", "1.0.0", WarnLevel)
	logger.SetOutput(&buf)

	logger.Debug(context.Background(), "dropped", Fields{})
	logger.Info(context.Background(), "dropped", Fields{})
	logger.Warn(context.Background(), "kept", Fields{})

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0]["msg"])

	logger.SetLevel(DebugLevel)
	logger.Debug(context.Background(), "now kept", nil)
	assert.Len(t, decodeLines(t, &buf), 2)
}

func TestStructuredLogger_ErrorCarriesCaller(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger("dashboard-test", "1.0.0", InfoLevel)
	logger.SetOutput(&buf)

	logger.Error(context.Background(), "[TEST_ERROR] failed", Fields{"step": "load"}, errors.New("boom"))

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "ERROR", entries[0]["level"])
	assert.Equal(t, "boom", entries[0]["error"])
	assert.Contains(t, entries[0]["file"], "logger_test.go")
}

func TestStructuredLogger_Fatal(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger("dashboard-test", "1.0.0", InfoLevel)
	logger.SetOutput(&buf)

	code := -1
	orig := exit
	exit = func(c int) { code = c }
	defer func() { exit = orig }()

	logger.Fatal(context.Background(), "[TEST_FATAL] giving up", Fields{}, errors.New("bad"))

	assert.Equal(t, 1, code)
	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "FATAL", entries[0]["level"])
	assert.NotEmpty(t, entries[0]["stack_trace"])
}

func TestStructuredLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger("dashboard-test", "1.0.0", InfoLevel)
	logger.SetOutput(&buf)
	logger.SetFormat(FormatConsole)

	logger.Info(context.Background(), "[TEST] console", Fields{"panel": "heatmap"})

	out := buf.String()
	assert.Contains(t, out, "[TEST] console")
	assert.Contains(t, out, "heatmap")
}

func TestContextLogger_MergeFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger("dashboard-test", "1.0.0", InfoLevel)
	logger.SetOutput(&buf)

	scoped := logger.WithFields(Fields{"source": "indoor", "stage": "LOAD"})
	scoped.Info(context.Background(), "scoped", Fields{"stage": "NORMALIZE"})

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "indoor", entries[0]["source"])
	assert.Equal(t, "NORMALIZE", entries[0]["stage"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{in: "debug", want: DebugLevel},
		{in: "INFO", want: InfoLevel},
		{in: "", want: InfoLevel},
		{in: "warning", want: WarnLevel},
		{in: " error ", want: ErrorLevel},
		{in: "verbose", want: InfoLevel, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
