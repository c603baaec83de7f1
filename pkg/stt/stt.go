// Package stt turns captured speech into lowercase text.
package stt

import (
	"context"
	"errors"
	log "log/slog"
	"strings"
	"sync"

	"jarvis/pkg/audioconv"
)

// Buffers shorter than 1/minFraction of a second are skipped.
const minFraction = 10

// Engine runs inference over mono 16 kHz samples.
type Engine interface {
	Process(ctx context.Context, pcm16k []float32) (string, error)
	Close() error
}

// Loader builds an Engine; it is called at most once per Transcriber.
type Loader func() (Engine, error)

// Transcriber loads the model on first use and keeps it for the life of
// the process. Calls into the engine are serialized.
type Transcriber struct {
	load   Loader
	logger *log.Logger

	once    sync.Once
	engine  Engine
	loadErr error

	mu sync.Mutex
}

func New(load Loader, logger *log.Logger) *Transcriber {
	if logger == nil {
		logger = log.Default()
	}
	return &Transcriber{load: load, logger: logger.With("component", "stt")}
}

// Transcribe never fails: any problem yields an empty string.
func (t *Transcriber) Transcribe(ctx context.Context, samples []float32, sampleRate int) string {
	if sampleRate <= 0 {
		sampleRate = audioconv.TargetRate
	}
	if len(samples) < sampleRate/minFraction {
		t.logger.Debug("Audio too short", "samples", len(samples), "rate", sampleRate)
		return ""
	}

	engine, err := t.Engine()
	if err != nil {
		return ""
	}

	pcm := audioconv.Resample(samples, sampleRate, audioconv.TargetRate)

	t.mu.Lock()
	text, err := engine.Process(ctx, pcm)
	t.mu.Unlock()
	if err != nil {
		t.logger.Warn("Transcription failed", "err", err)
		return ""
	}

	return strings.ToLower(strings.TrimSpace(text))
}

// Engine returns the cached engine, loading it on the first call.
func (t *Transcriber) Engine() (Engine, error) {
	t.once.Do(func() {
		if t.load == nil {
			t.loadErr = errors.New("no model loader")
		} else {
			t.engine, t.loadErr = t.load()
		}
		if t.loadErr != nil {
			t.logger.Error("Failed to load speech model", "err", t.loadErr)
			return
		}
		t.logger.Info("Speech model loaded")
	})
	return t.engine, t.loadErr
}

func (t *Transcriber) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.engine == nil {
		return nil
	}
	return t.engine.Close()
}
