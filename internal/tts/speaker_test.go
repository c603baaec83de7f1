package tts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingEngine struct {
	spoken chan string
	gate   chan struct{}
	err    error
}

func (e *recordingEngine) Speak(text string) error {
	if e.gate != nil {
		<-e.gate
	}
	e.spoken <- text
	return e.err
}

func TestSpeakerSpeaksInOrder(t *testing.T) {
	eng := &recordingEngine{spoken: make(chan string, 4)}
	s := NewSpeaker(eng, 4, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	s.Say("one")
	s.Say("")
	s.Say("two")

	require.Equal(t, "one", <-eng.spoken)
	require.Equal(t, "two", <-eng.spoken)
}

func TestSayNeverBlocks(t *testing.T) {
	eng := &recordingEngine{spoken: make(chan string, 16), gate: make(chan struct{})}
	s := NewSpeaker(eng, 1, nil)

	done := make(chan struct{})
	go func() {
		for range 10 {
			s.Say("hello")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Say blocked")
	}
	close(eng.gate)
}

func TestSpeakerSurvivesEngineErrors(t *testing.T) {
	eng := &recordingEngine{spoken: make(chan string, 4), err: errors.New("no audio device")}
	s := NewSpeaker(eng, 4, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	s.Say("a")
	s.Say("b")
	require.Equal(t, "a", <-eng.spoken)
	require.Equal(t, "b", <-eng.spoken)
}
