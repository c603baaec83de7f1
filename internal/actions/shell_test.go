package actions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestShellRejectsCommandsOutsideAllowList(t *testing.T) {
	sh := NewShell(DefaultAllowed, time.Second, "")

	for _, cmd := range []string{"rm -rf /", "curl http://example.com", "", "   "} {
		_, err := sh.Run(context.Background(), cmd)
		require.ErrorIs(t, err, ErrCommandNotAllowed, cmd)
	}
}

func TestShellRunsAllowedCommand(t *testing.T) {
	sh := NewShell(DefaultAllowed, 5*time.Second, "")

	out, err := sh.Run(context.Background(), "echo hello world")
	require.NoError(t, err)
	require.Equal(t, "hello world", out)
}

func TestShellDoesNotInterpretMetacharacters(t *testing.T) {
	sh := NewShell(DefaultAllowed, 5*time.Second, "")

	out, err := sh.Run(context.Background(), "echo hi; rm -rf nothing")
	require.NoError(t, err)
	require.Equal(t, "hi; rm -rf nothing", out)
}

func TestShellNoOutput(t *testing.T) {
	sh := NewShell([]string{"true"}, 5*time.Second, "")

	out, err := sh.Run(context.Background(), "true")
	require.NoError(t, err)
	require.Equal(t, "(command executed)", out)
}

func TestShellNonZeroExit(t *testing.T) {
	sh := NewShell([]string{"ls"}, 5*time.Second, t.TempDir())

	out, err := sh.Run(context.Background(), "ls definitely-not-here")
	require.NoError(t, err)
	require.Contains(t, out, "Error: ")
}

func TestShellTimeoutKills(t *testing.T) {
	sh := NewShell([]string{"sleep"}, 100*time.Millisecond, "")

	start := time.Now()
	_, err := sh.Run(context.Background(), "sleep 30")
	require.ErrorIs(t, err, ErrTimeout)
	require.Less(t, time.Since(start), 5*time.Second)
}
