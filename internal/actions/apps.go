package actions

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/pkg/browser"
)

var ErrAppNotAllowed = errors.New("application is not in the allow-list")

var DefaultApps = []string{"firefox", "chromium", "code", "gnome-terminal", "nautilus", "spotify", "gnome-calculator"}

// Apps launches allow-listed desktop applications by name. Names that look
// like URLs go to the browser. Programs are started from a plain argv,
// never through a shell.
type Apps struct {
	allowed map[string]bool
	start   func(name string, args ...string) error
	openURL func(url string) error
}

func NewApps(allowed []string) *Apps {
	set := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		set[appKey(a)] = true
	}
	return &Apps{allowed: set, start: startDetached, openURL: browser.OpenURL}
}

func (a *Apps) Open(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("no application name")
	}
	if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
		if err := a.openURL(name); err != nil {
			return "", err
		}
		return "Opened " + name, nil
	}

	key := appKey(name)
	if !a.allowed[key] {
		return "", fmt.Errorf("%q: %w", name, ErrAppNotAllowed)
	}

	var err error
	switch runtime.GOOS {
	case "darwin":
		err = a.start("open", "-a", name)
	default:
		err = a.start(key)
	}
	if err != nil {
		return "", fmt.Errorf("open %s: %w", name, err)
	}
	return "Opened " + name, nil
}

// appKey is the launcher name: lowercased, spaces become hyphens.
func appKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "-"))
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait()
	return nil
}
