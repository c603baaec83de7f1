// Package pipeline carries one utterance from captured audio to the
// surfaced result: transcribe, wake gate, route, execute, surface.
package pipeline

import (
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"

	"jarvis/internal/action"
	"jarvis/internal/audio"
	"jarvis/internal/bus"
)

type Transcriber interface {
	Transcribe(ctx context.Context, samples []float32, sampleRate int) string
}

type Gate interface {
	Extract(transcript string) (string, bool)
}

type Router interface {
	Route(ctx context.Context, command string) action.Result
}

type Executor interface {
	Execute(ctx context.Context, res action.Result) string
}

type Display interface {
	Show(text string)
}

type Voice interface {
	Say(text string)
}

type Publisher interface {
	Publish(ev bus.Event)
}

// Pipeline is shared by every utterance goroutine; it holds no per-utterance
// state. Display, Voice and Publisher are optional.
type Pipeline struct {
	Transcriber Transcriber
	Gate        Gate
	Router      Router
	Executor    Executor
	Display     Display
	Voice       Voice
	Publisher   Publisher

	// SpeakAnswers also reads the surfaced text aloud.
	SpeakAnswers bool
	// Timeout bounds one utterance after transcription.
	Timeout time.Duration

	Logger *log.Logger
}

func (p *Pipeline) logger() *log.Logger {
	if p.Logger == nil {
		return log.Default()
	}
	return p.Logger
}

// HandleRecording is the capture hand-off.
func (p *Pipeline) HandleRecording(ctx context.Context, rec audio.Recording) {
	l := p.logger().With("session", rec.ID)
	start := time.Now()

	text := p.Transcriber.Transcribe(ctx, rec.Samples, rec.SampleRate)
	l.Info("Transcribed", "text", text, "audio", rec.Duration(), "took", time.Since(start))
	if text == "" {
		return
	}
	p.HandleTranscript(ctx, rec.ID, text)
}

// HandleTranscript runs everything after transcription and returns the
// surfaced text, or "" when the transcript was discarded.
func (p *Pipeline) HandleTranscript(ctx context.Context, session, transcript string) (surfaced string) {
	if session == "" {
		session = uuid.NewString()
	}
	l := p.logger().With("session", session)
	defer func() {
		if r := recover(); r != nil {
			l.Error("Utterance panicked", "panic", r)
			surfaced = ""
		}
	}()

	p.publish(bus.Event{Session: session, Kind: bus.KindTranscript, Content: transcript})

	command, ok := p.Gate.Extract(transcript)
	if !ok {
		l.Debug("No wake phrase, discarding", "text", transcript)
		return ""
	}
	l.Info("Command", "text", command)

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	res := p.Router.Route(ctx, command)
	l.Info("Action", "action", res.Action, "params", res.Params, "handled", res.Handled)
	p.publish(bus.Event{Session: session, Kind: bus.KindAction, Content: res.Action, Params: res.Params})

	surfaced = p.Executor.Execute(ctx, res)
	if surfaced == "" {
		return ""
	}
	l.Info("Answer", "text", surfaced)

	if p.Display != nil {
		p.Display.Show(surfaced)
	}
	if p.Voice != nil && p.SpeakAnswers {
		p.Voice.Say(surfaced)
	}
	p.publish(bus.Event{Session: session, Kind: bus.KindAnswer, Content: surfaced})
	return surfaced
}

func (p *Pipeline) publish(ev bus.Event) {
	if p.Publisher != nil {
		p.Publisher.Publish(ev)
	}
}
