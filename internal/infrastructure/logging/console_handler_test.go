package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewConsoleHandler(&buf, nil))

	logger.Info("run complete", "matches", 42, "rate", 98.5)

	line := buf.String()
	assert.True(t, strings.HasPrefix(line, "[INFO]"), "got %q", line)
	assert.Contains(t, line, "run complete")
	assert.Contains(t, line, "matches=42")
	assert.Contains(t, line, "rate=98.5")
	// Non-terminal writer gets no ANSI codes.
	assert.NotContains(t, line, "\033[")
}

func TestConsoleHandlerSystemBracket(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewConsoleHandler(&buf, nil)).With("system", "recon")

	logger.Info("started")

	line := buf.String()
	assert.Contains(t, line, "[recon]")
	assert.NotContains(t, line, "system=")
}

func TestConsoleHandlerQuotesSpacedValues(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewConsoleHandler(&buf, nil))

	logger.Warn("skipped", "reason", "unknown strategy")

	assert.Contains(t, buf.String(), `reason="unknown strategy"`)
}

func TestConsoleHandlerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	opts := &slog.HandlerOptions{Level: slog.LevelWarn}
	logger := slog.New(NewConsoleHandler(&buf, opts))

	logger.Info("hidden")
	logger.Warn("visible")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "visible")
}
