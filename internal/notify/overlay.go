package notify

import (
	"context"
	log "log/slog"
	"strings"

	"github.com/gen2brain/beeep"
)

const (
	DefaultTitle = "Jarvis"

	maxOverlayText = 300
)

// Overlay shows answers as desktop notifications. Show returns at once and
// a worker delivers them one at a time.
type Overlay struct {
	title  string
	queue  chan string
	notify func(title, message, icon string) error
	logger *log.Logger
}

func NewOverlay(title string, logger *log.Logger) *Overlay {
	if title == "" {
		title = DefaultTitle
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Overlay{
		title:  title,
		queue:  make(chan string, 8),
		notify: func(t, m, icon string) error { return beeep.Notify(t, m, icon) },
		logger: logger.With("component", "overlay"),
	}
}

func (o *Overlay) Show(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if r := []rune(text); len(r) > maxOverlayText {
		text = string(r[:maxOverlayText]) + "…"
	}
	select {
	case o.queue <- text:
	default:
		o.logger.Debug("Overlay queue full, dropping", "text", text)
	}
}

func (o *Overlay) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case text := <-o.queue:
			if err := o.notify(o.title, text, ""); err != nil {
				o.logger.Warn("Notification failed", "err", err)
			}
		}
	}
}
