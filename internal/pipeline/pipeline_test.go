package pipeline

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"jarvis/internal/action"
	"jarvis/internal/audio"
	"jarvis/internal/bus"
	"jarvis/internal/wake"
)

type fakeTranscriber struct{ text string }

func (f fakeTranscriber) Transcribe(context.Context, []float32, int) string { return f.text }

type fakeRouter struct {
	mu    sync.Mutex
	calls []string
	res   action.Result
	panic bool
}

func (r *fakeRouter) Route(_ context.Context, cmd string) action.Result {
	r.mu.Lock()
	r.calls = append(r.calls, cmd)
	r.mu.Unlock()
	if r.panic {
		panic("boom")
	}
	return r.res
}

type fakeExecutor struct{ out string }

func (e fakeExecutor) Execute(_ context.Context, res action.Result) string {
	if e.out != "" {
		return e.out
	}
	return res.Answer
}

type sink struct {
	mu    sync.Mutex
	items []string
}

func (s *sink) Show(text string) { s.add(text) }
func (s *sink) Say(text string)  { s.add(text) }

func (s *sink) add(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, text)
}

type events struct{ got []bus.Event }

func (e *events) Publish(ev bus.Event) { e.got = append(e.got, ev) }

func newPipeline(t *testing.T, text string, r *fakeRouter) (*Pipeline, *sink, *sink, *events) {
	t.Helper()
	gate, err := wake.New("jarvis")
	require.NoError(t, err)
	display, voice, ev := &sink{}, &sink{}, &events{}
	return &Pipeline{
		Transcriber:  fakeTranscriber{text: text},
		Gate:         gate,
		Router:       r,
		Executor:     fakeExecutor{},
		Display:      display,
		Voice:        voice,
		Publisher:    ev,
		SpeakAnswers: true,
	}, display, voice, ev
}

func TestRecordingFlowsToSurface(t *testing.T) {
	r := &fakeRouter{res: action.Result{Action: action.Type, Params: map[string]any{"text": "hello"}, Answer: "Typed: hello", Handled: true}}
	p, display, voice, ev := newPipeline(t, "jarvis, type hello", r)

	p.HandleRecording(context.Background(), audio.Recording{ID: "s1", Samples: make([]float32, 16000), SampleRate: 16000})

	require.Equal(t, []string{"type hello"}, r.calls)
	require.Equal(t, []string{"Typed: hello"}, display.items)
	require.Equal(t, []string{"Typed: hello"}, voice.items)
	require.Len(t, ev.got, 3)
	require.Equal(t, bus.KindTranscript, ev.got[0].Kind)
	require.Equal(t, "s1", ev.got[2].Session)
	require.Equal(t, bus.KindAnswer, ev.got[2].Kind)
}

func TestWithoutWakePhraseRouterIsNeverInvoked(t *testing.T) {
	r := &fakeRouter{}
	p, display, _, _ := newPipeline(t, "type hello", r)

	require.Empty(t, p.HandleTranscript(context.Background(), "", "type hello"))
	require.Empty(t, p.HandleTranscript(context.Background(), "", "jarvis"))
	require.Empty(t, p.HandleTranscript(context.Background(), "", "hey jarvis type hello"))
	require.Empty(t, r.calls)
	require.Empty(t, display.items)
}

func TestEmptyTranscriptStopsEarly(t *testing.T) {
	r := &fakeRouter{}
	p, _, _, ev := newPipeline(t, "", r)

	p.HandleRecording(context.Background(), audio.Recording{ID: "s1", Samples: make([]float32, 10), SampleRate: 16000})
	require.Empty(t, r.calls)
	require.Empty(t, ev.got)
}

func TestAnswersSpokenOnlyWhenEnabled(t *testing.T) {
	r := &fakeRouter{res: action.Result{Action: action.Respond, Answer: "Hello"}}
	p, display, voice, _ := newPipeline(t, "", r)
	p.SpeakAnswers = false

	require.Equal(t, "Hello", p.HandleTranscript(context.Background(), "", "Jarvis: say hi"))
	require.Equal(t, []string{"Hello"}, display.items)
	require.Empty(t, voice.items)
}

func TestOptionalSurfacesMayBeNil(t *testing.T) {
	gate, err := wake.New("jarvis")
	require.NoError(t, err)
	p := &Pipeline{
		Gate:     gate,
		Router:   &fakeRouter{res: action.Result{Action: action.SystemInfo}},
		Executor: fakeExecutor{out: "12:00:00"},
	}
	require.Equal(t, "12:00:00", p.HandleTranscript(context.Background(), "", "jarvis what time is it"))
}

func TestRouterPanicIsContained(t *testing.T) {
	r := &fakeRouter{panic: true}
	p, display, _, _ := newPipeline(t, "", r)

	require.NotPanics(t, func() {
		require.Empty(t, p.HandleTranscript(context.Background(), "", "jarvis explode"))
	})
	require.Empty(t, display.items)
}
