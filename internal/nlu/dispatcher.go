// Package nlu asks a chat model to turn a free-form command into an action,
// trying each configured backend in order.
package nlu

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"time"

	"jarvis/internal/action"
)

const DefaultTimeout = 8 * time.Second

var ErrNoBackends = errors.New("all AI backends failed")

// Fallback is returned when no backend produced a reply.
var Fallback = action.Result{
	Action: action.Respond,
	Params: map[string]any{},
	Answer: "I encountered an error. Please try again.",
}

type Dispatcher struct {
	backends []Backend
	timeout  time.Duration
	logger   *log.Logger
}

func NewDispatcher(backends []Backend, timeout time.Duration, logger *log.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{backends: backends, timeout: timeout, logger: logger.With("component", "nlu")}
}

// Order moves the backend named primary to the front, keeping the rest in
// their given order.
func Order(primary string, backends ...Backend) []Backend {
	out := make([]Backend, 0, len(backends))
	for _, b := range backends {
		if b.Name() == primary {
			out = append(out, b)
		}
	}
	for _, b := range backends {
		if b.Name() != primary {
			out = append(out, b)
		}
	}
	return out
}

// Dispatch never fails; exhausting every backend yields Fallback.
func (d *Dispatcher) Dispatch(ctx context.Context, command string) (res action.Result) {
	defer func() {
		if p := recover(); p != nil {
			d.logger.Error("Dispatcher panic", "panic", p)
			res = fallback()
		}
	}()

	res, err := d.Ask(ctx, command)
	if err != nil {
		d.logger.Warn("AI unavailable", "err", err)
		return fallback()
	}
	return res
}

// Ask returns the first backend's parsed reply, or ErrNoBackends joined
// with every backend's error.
func (d *Dispatcher) Ask(ctx context.Context, command string) (action.Result, error) {
	var errs []error
	for _, b := range d.backends {
		raw, err := d.complete(ctx, b, command)
		if err != nil {
			d.logger.Warn("Backend failed", "backend", b.Name(), "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", b.Name(), err))
			if ctx.Err() != nil {
				break
			}
			continue
		}

		d.logger.Debug("Raw reply", "backend", b.Name(), "reply", truncateRunes(raw, maxRawAnswer))
		return Parse(raw, command), nil
	}
	return action.Result{}, errors.Join(append([]error{ErrNoBackends}, errs...)...)
}

func (d *Dispatcher) complete(ctx context.Context, b Backend, command string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	raw, err := b.Complete(ctx, SystemPrompt, command)
	d.logger.Debug("Backend call", "backend", b.Name(), "took", time.Since(start))
	if err != nil {
		return "", err
	}
	if raw == "" {
		return "", ErrEmptyReply
	}
	return raw, nil
}

func fallback() action.Result {
	return action.Result{Action: Fallback.Action, Params: map[string]any{}, Answer: Fallback.Answer}
}
