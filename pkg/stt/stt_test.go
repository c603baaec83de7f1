package stt

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	text   string
	err    error
	calls  atomic.Int32
	active atomic.Int32
	peak   atomic.Int32
	gotLen atomic.Int32
}

func (f *fakeEngine) Process(_ context.Context, pcm []float32) (string, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	f.calls.Add(1)
	f.gotLen.Store(int32(len(pcm)))
	return f.text, f.err
}

func (f *fakeEngine) Close() error { return nil }

func loaderFor(e Engine, loads *atomic.Int32) Loader {
	return func() (Engine, error) {
		loads.Add(1)
		return e, nil
	}
}

func TestTranscribeLowercasesAndTrims(t *testing.T) {
	var loads atomic.Int32
	eng := &fakeEngine{text: "  Jarvis, Type Hello  "}
	tr := New(loaderFor(eng, &loads), nil)

	got := tr.Transcribe(context.Background(), make([]float32, 16000), 16000)
	require.Equal(t, "jarvis, type hello", got)
}

func TestTranscribeSkipsShortBuffers(t *testing.T) {
	var loads atomic.Int32
	eng := &fakeEngine{text: "hello"}
	tr := New(loaderFor(eng, &loads), nil)

	require.Empty(t, tr.Transcribe(context.Background(), make([]float32, 1599), 16000))
	require.Empty(t, tr.Transcribe(context.Background(), make([]float32, 4799), 48000))
	require.Zero(t, eng.calls.Load())
	require.Zero(t, loads.Load())
}

func TestTranscribeResamplesTo16k(t *testing.T) {
	var loads atomic.Int32
	eng := &fakeEngine{text: "ok"}
	tr := New(loaderFor(eng, &loads), nil)

	require.Equal(t, "ok", tr.Transcribe(context.Background(), make([]float32, 48000), 48000))
	require.EqualValues(t, 16000, eng.gotLen.Load())
}

func TestTranscribeLoadFailureYieldsEmpty(t *testing.T) {
	var loads atomic.Int32
	tr := New(func() (Engine, error) {
		loads.Add(1)
		return nil, errors.New("model file missing")
	}, nil)

	require.NotPanics(t, func() {
		require.Empty(t, tr.Transcribe(context.Background(), make([]float32, 16000), 16000))
		require.Empty(t, tr.Transcribe(context.Background(), make([]float32, 16000), 16000))
	})
	require.EqualValues(t, 1, loads.Load())
}

func TestTranscribeEngineErrorYieldsEmpty(t *testing.T) {
	var loads atomic.Int32
	eng := &fakeEngine{text: "partial", err: errors.New("decoder exploded")}
	tr := New(loaderFor(eng, &loads), nil)

	require.Empty(t, tr.Transcribe(context.Background(), make([]float32, 16000), 16000))
}

func TestModelLoadsOnceAndCallsSerialize(t *testing.T) {
	var loads atomic.Int32
	eng := &fakeEngine{text: "hi"}
	tr := New(loaderFor(eng, &loads), nil)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Transcribe(context.Background(), make([]float32, 1600), 16000)
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, loads.Load())
	require.EqualValues(t, 16, eng.calls.Load())
	require.EqualValues(t, 1, eng.peak.Load())
}
