package actions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWatchOpensTopVideo(t *testing.T) {
	var opened string
	v := NewVideo()
	v.lookup = func(context.Context, string) (string, error) { return "dQw4w9WgXcQ", nil }
	v.open = func(u string) error { opened = u; return nil }

	got, err := v.Watch(context.Background(), "never gonna")
	require.NoError(t, err)
	require.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", got)
	require.Equal(t, got, opened)
}

func TestWatchFallsBackToResults(t *testing.T) {
	var opened string
	v := NewVideo()
	v.lookup = func(context.Context, string) (string, error) { return "", errors.New("yt-dlp missing") }
	v.open = func(u string) error { opened = u; return nil }

	got, err := v.Watch(context.Background(), "lebron highlights")
	require.NoError(t, err)
	require.Equal(t, "https://www.youtube.com/results?search_query=lebron+highlights", opened)
	require.Equal(t, opened, got)
}

func TestOpenAppURLGoesToBrowser(t *testing.T) {
	var opened string
	a := NewApps(nil)
	a.openURL = func(u string) error { opened = u; return nil }
	a.start = func(string, ...string) error { t.Fatal("launcher used for URL"); return nil }

	msg, err := a.Open("https://go.dev")
	require.NoError(t, err)
	require.Equal(t, "Opened https://go.dev", msg)
	require.Equal(t, "https://go.dev", opened)
}

func TestOpenAppLaunches(t *testing.T) {
	var started []string
	a := NewApps([]string{"firefox", "Visual Studio Code"})
	a.start = func(name string, args ...string) error {
		started = append([]string{name}, args...)
		return nil
	}

	msg, err := a.Open("Firefox")
	require.NoError(t, err)
	require.Equal(t, "Opened Firefox", msg)
	require.NotEmpty(t, started)
	require.Contains(t, started[len(started)-1], "irefox")

	_, err = a.Open("visual  studio code")
	require.NoError(t, err)

	_, err = a.Open("  ")
	require.Error(t, err)
}

func TestOpenAppRejectsUnlistedPrograms(t *testing.T) {
	a := NewApps([]string{"firefox"})
	a.start = func(string, ...string) error { t.Fatal("unlisted program started"); return nil }

	for _, name := range []string{"shutdown", "firefox & calc", "../bin/firefox", "/usr/bin/firefox"} {
		_, err := a.Open(name)
		require.ErrorIs(t, err, ErrAppNotAllowed, name)
	}
}
