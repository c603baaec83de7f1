package ipc

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T, h Handler) (string, context.CancelFunc, chan error) {
	t.Helper()
	dir, err := os.MkdirTemp("", "ipc")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	path := filepath.Join(dir, "j.sock")

	srv, err := Listen(path, h, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	return path, cancel, done
}

func TestRoundTrip(t *testing.T) {
	got := make(chan ControlMessage, 1)
	path, cancel, done := startServer(t, func(_ context.Context, msg ControlMessage) Reply {
		got <- msg
		return Reply{OK: true, State: "recording"}
	})

	ctx, stop := context.WithTimeout(context.Background(), 2*time.Second)
	defer stop()

	reply, err := Send(ctx, path, ControlMessage{Cmd: CmdSay, Text: "jarvis type hi"})
	require.NoError(t, err)
	require.Equal(t, Reply{OK: true, State: "recording"}, reply)
	require.Equal(t, ControlMessage{Cmd: CmdSay, Text: "jarvis type hi"}, <-got)

	cancel()
	require.NoError(t, <-done)
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestErrorReply(t *testing.T) {
	path, cancel, done := startServer(t, func(context.Context, ControlMessage) Reply {
		return Reply{Error: "unknown command"}
	})
	defer func() { cancel(); <-done }()

	ctx, stop := context.WithTimeout(context.Background(), 2*time.Second)
	defer stop()

	_, err := Send(ctx, path, ControlMessage{Cmd: "dance"})
	require.EqualError(t, err, "unknown command")
}

func TestStaleSocketIsReplaced(t *testing.T) {
	dir, err := os.MkdirTemp("", "ipc")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "j.sock")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	srv, err := Listen(path, func(context.Context, ControlMessage) Reply { return Reply{OK: true} }, nil)
	require.NoError(t, err)
	srv.ln.Close()
}

func TestSendWithoutDaemon(t *testing.T) {
	_, err := Send(context.Background(), filepath.Join(t.TempDir(), "missing.sock"), ControlMessage{Cmd: CmdStatus})
	require.Error(t, err)
}
