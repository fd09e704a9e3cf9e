package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/0xalexb/hjarta-build/logging"

	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSONByDefault(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := logging.NewLogger(logging.LoggerConfig{}, &buf)

	logger.Info("build finished", slog.String("output", "/repo/docs"), slog.Int("assets", 2))

	var logEntry map[string]any

	err := json.Unmarshal(buf.Bytes(), &logEntry)
	require.NoError(t, err, "output should be valid JSON")
	require.Equal(t, "build finished", logEntry["msg"])
	require.Equal(t, "/repo/docs", logEntry["output"])
	require.InDelta(t, 2, logEntry["assets"], 0)
	require.Equal(t, "INFO", logEntry["level"], "default level should be INFO")
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		level     string
		format    string
		record    slog.Level
		shouldLog bool
	}{
		{level: "debug", format: "json", record: slog.LevelDebug, shouldLog: true},
		{level: "INFO", format: "json", record: slog.LevelDebug, shouldLog: false},
		{level: "warning", format: "text", record: slog.LevelWarn, shouldLog: true},
		{level: "error", format: "text", record: slog.LevelWarn, shouldLog: false},
		{level: "bogus", format: "json", record: slog.LevelInfo, shouldLog: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.level+"/"+testCase.format, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			logger := logging.NewLogger(logging.LoggerConfig{Level: testCase.level, Format: testCase.format}, &buf)

			logger.Log(context.Background(), testCase.record, "performance budget exceeded")

			if testCase.shouldLog {
				require.Contains(t, buf.String(), "performance budget exceeded")
			} else {
				require.Empty(t, buf.String(), "record below the configured level should be dropped")
			}
		})
	}
}

func TestNewLogger_TextFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := logging.NewLogger(logging.LoggerConfig{Level: "debug", Format: "TEXT"}, &buf)

	logger.Debug("asset emitted", slog.String("path", "docs/index.js"))

	line := buf.String()
	require.Contains(t, line, "level=DEBUG")
	require.Contains(t, line, `msg="asset emitted"`)
	require.Contains(t, line, "path=docs/index.js")

	var logEntry map[string]any
	require.Error(t, json.Unmarshal(buf.Bytes(), &logEntry), "text output should not be JSON")
}

func TestNewLogger_UnknownFormatFallsBackToJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := logging.NewLogger(logging.LoggerConfig{Format: "xml"}, &buf)
	logger.Info("plan resolved")

	var logEntry map[string]any

	err := json.Unmarshal(buf.Bytes(), &logEntry)
	require.NoError(t, err, "output should be valid JSON")
	require.Equal(t, "plan resolved", logEntry["msg"])
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	testCases := map[string]slog.Level{
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"Error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}

	for name, expected := range testCases {
		require.Equal(t, expected, logging.ParseLevel(name), name)
	}
}
