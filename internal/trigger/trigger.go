// Package trigger turns global input events into press/release calls.
package trigger

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strings"

	hook "github.com/robotn/gohook"
	"golang.design/x/hotkey"
)

const (
	KindMouse  = "mouse"
	KindHotkey = "hotkey"
	KindNone   = "none"
)

// MiddleButton is uiohook's button number for the wheel click.
const MiddleButton = 3

var ErrBadHotkey = errors.New("invalid hotkey")

// Source blocks until ctx is done, calling press and release as the user
// holds and lets go of the trigger. Callbacks must not block.
type Source interface {
	Run(ctx context.Context, press, release func()) error
}

func New(kind string, button uint16, combo string, logger *log.Logger) (Source, error) {
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.With("component", "trigger")

	switch kind {
	case KindMouse:
		return &MouseSource{Button: button, logger: logger}, nil
	case KindHotkey:
		mods, key, err := parseCombo(combo)
		if err != nil {
			return nil, err
		}
		return &HotkeySource{mods: mods, key: key, combo: combo, logger: logger}, nil
	case KindNone, "":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown trigger %q", kind)
}

type MouseSource struct {
	Button uint16
	logger *log.Logger
}

func (m *MouseSource) Run(ctx context.Context, press, release func()) error {
	events := hook.Start()
	defer hook.End()
	m.logger.Info("Listening for mouse button", "button", m.Button)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return errors.New("mouse hook stopped")
			}
			if ev.Button != m.Button {
				continue
			}
			// uiohook reports a physical press as MouseHold and the
			// release as MouseDown.
			switch ev.Kind {
			case hook.MouseHold:
				press()
			case hook.MouseDown:
				release()
			}
		}
	}
}

type HotkeySource struct {
	mods   []hotkey.Modifier
	key    hotkey.Key
	combo  string
	logger *log.Logger
}

func (h *HotkeySource) Run(ctx context.Context, press, release func()) error {
	hk := hotkey.New(h.mods, h.key)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("register hotkey %s: %w", h.combo, err)
	}
	defer hk.Unregister()
	h.logger.Info("Listening for hotkey", "combo", h.combo)

	down, up := hk.Keydown(), hk.Keyup()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-down:
			press()
		case <-up:
			release()
		}
	}
}

var keys = map[string]hotkey.Key{
	"space": hotkey.KeySpace,
	"a": hotkey.KeyA, "b": hotkey.KeyB, "c": hotkey.KeyC, "d": hotkey.KeyD,
	"e": hotkey.KeyE, "f": hotkey.KeyF, "g": hotkey.KeyG, "h": hotkey.KeyH,
	"i": hotkey.KeyI, "j": hotkey.KeyJ, "k": hotkey.KeyK, "l": hotkey.KeyL,
	"m": hotkey.KeyM, "n": hotkey.KeyN, "o": hotkey.KeyO, "p": hotkey.KeyP,
	"q": hotkey.KeyQ, "r": hotkey.KeyR, "s": hotkey.KeyS, "t": hotkey.KeyT,
	"u": hotkey.KeyU, "v": hotkey.KeyV, "w": hotkey.KeyW, "x": hotkey.KeyX,
	"y": hotkey.KeyY, "z": hotkey.KeyZ,
	"f1": hotkey.KeyF1, "f2": hotkey.KeyF2, "f3": hotkey.KeyF3, "f4": hotkey.KeyF4,
	"f5": hotkey.KeyF5, "f6": hotkey.KeyF6, "f7": hotkey.KeyF7, "f8": hotkey.KeyF8,
	"f9": hotkey.KeyF9, "f10": hotkey.KeyF10, "f11": hotkey.KeyF11, "f12": hotkey.KeyF12,
}

// parseCombo reads specs like "ctrl+shift+space".
func parseCombo(combo string) ([]hotkey.Modifier, hotkey.Key, error) {
	parts := strings.Split(strings.ToLower(strings.ReplaceAll(combo, " ", "")), "+")
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return nil, 0, fmt.Errorf("%w: %q", ErrBadHotkey, combo)
	}

	var mods []hotkey.Modifier
	for _, p := range parts[:len(parts)-1] {
		switch p {
		case "ctrl", "control":
			mods = append(mods, hotkey.ModCtrl)
		case "shift":
			mods = append(mods, hotkey.ModShift)
		default:
			return nil, 0, fmt.Errorf("%w: modifier %q", ErrBadHotkey, p)
		}
	}

	key, ok := keys[parts[len(parts)-1]]
	if !ok {
		return nil, 0, fmt.Errorf("%w: key %q", ErrBadHotkey, parts[len(parts)-1])
	}
	return mods, key, nil
}
