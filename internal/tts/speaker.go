// Package tts queues spoken feedback so callers never wait on audio
// playback.
package tts

import (
	"context"
	log "log/slog"
)

const DefaultQueueSize = 8

// Engine speaks one line synchronously.
type Engine interface {
	Speak(text string) error
}

type Speaker struct {
	engine Engine
	queue  chan string
	logger *log.Logger
}

func NewSpeaker(engine Engine, size int, logger *log.Logger) *Speaker {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Speaker{
		engine: engine,
		queue:  make(chan string, size),
		logger: logger.With("component", "tts"),
	}
}

// Say enqueues text. When the queue is full the line is dropped.
func (s *Speaker) Say(text string) {
	if text == "" {
		return
	}
	select {
	case s.queue <- text:
	default:
		s.logger.Debug("Speech queue full, dropping", "text", text)
	}
}

// Run speaks queued lines until ctx is done.
func (s *Speaker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case text := <-s.queue:
			if err := s.engine.Speak(text); err != nil {
				s.logger.Warn("Failed to voice out", "err", err)
			}
		}
	}
}
