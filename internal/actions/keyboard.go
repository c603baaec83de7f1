package actions

import (
	"fmt"
	log "log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/micmonay/keybd_event"
)

// Keys sends one key chord.
type Keys interface {
	Press(ctrl, shift bool, keys ...int) error
}

type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

// SystemClipboard is the desktop clipboard.
type SystemClipboard struct{}

func (SystemClipboard) ReadAll() (string, error)   { return clipboard.ReadAll() }
func (SystemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

type keybdKeys struct {
	mu sync.Mutex
	kb keybd_event.KeyBonding
}

// NewKeys opens the virtual keyboard. On Linux the uinput device needs a
// moment before the desktop picks it up.
func NewKeys() (Keys, error) {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return nil, fmt.Errorf("virtual keyboard: %w", err)
	}
	if runtime.GOOS == "linux" {
		time.Sleep(2 * time.Second)
	}
	return &keybdKeys{kb: kb}, nil
}

func (k *keybdKeys) Press(ctrl, shift bool, keys ...int) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.kb.HasCTRL(ctrl)
	k.kb.HasSHIFT(shift)
	k.kb.SetKeys(keys...)
	return k.kb.Launching()
}

// Keyboard types by pasting through the clipboard, which keeps non-ASCII
// text intact, and restores the previous clipboard afterwards.
type Keyboard struct {
	keys   Keys
	clip   Clipboard
	settle time.Duration
	logger *log.Logger
}

func NewKeyboard(keys Keys, clip Clipboard) *Keyboard {
	if clip == nil {
		clip = SystemClipboard{}
	}
	return &Keyboard{
		keys:   keys,
		clip:   clip,
		settle: 100 * time.Millisecond,
		logger: log.Default().With("component", "keyboard"),
	}
}

func (k *Keyboard) Type(text string) error {
	orig, origErr := k.clip.ReadAll()
	if err := k.clip.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard write: %w", err)
	}
	time.Sleep(k.settle)

	if err := k.keys.Press(true, false, keybd_event.VK_V); err != nil {
		return fmt.Errorf("paste: %w", err)
	}

	time.Sleep(k.settle)
	if origErr == nil {
		// a failed restore does not fail the paste
		if err := k.clip.WriteAll(orig); err != nil {
			k.logger.Debug("Clipboard restore failed", "err", err)
		}
	}
	return nil
}

func (k *Keyboard) DeleteChars(n int) error {
	for range n {
		if err := k.keys.Press(false, false, keybd_event.VK_BACKSPACE); err != nil {
			return fmt.Errorf("backspace: %w", err)
		}
	}
	return nil
}

// DeleteWords selects each previous word with Ctrl+Shift+Left and deletes
// the selection.
func (k *Keyboard) DeleteWords(n int) error {
	for range n {
		if err := k.keys.Press(true, true, keybd_event.VK_LEFT); err != nil {
			return fmt.Errorf("select word: %w", err)
		}
		if err := k.keys.Press(false, false, keybd_event.VK_DELETE); err != nil {
			return fmt.Errorf("delete: %w", err)
		}
	}
	return nil
}
