package logging

import (
	"bytes"
	log "log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevel(t *testing.T) {
	require.Equal(t, log.LevelDebug, Level("debug"))
	require.Equal(t, log.LevelError, Level("error"))
	require.Equal(t, log.LevelInfo, Level("shouting"))
}

func TestNewFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn")

	logger.Info("hidden")
	logger.Warn("shown", "component", "test")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "shown")
	require.Contains(t, out, "component=test")
}
