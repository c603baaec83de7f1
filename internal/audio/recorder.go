package audio

import "math"

const (
	DefaultSampleRate = 16000
	DefaultFrameSize  = 1024
)

// Stream yields fixed-size blocks of mono float32 samples.
type Stream interface {
	Read() ([]float32, error)
	Close() error
}

// Microphone opens capture streams.
type Microphone interface {
	Open(sampleRate, frameSize int) (Stream, error)
}

// RecordFor captures a fixed duration; used by the debug recorder.
func RecordFor(mic Microphone, sampleRate int, seconds float64) ([]float32, error) {
	stream, err := mic.Open(sampleRate, DefaultFrameSize)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	want := int(float64(sampleRate) * seconds)
	out := make([]float32, 0, want)
	for len(out) < want {
		frame, err := stream.Read()
		if err != nil {
			return nil, err
		}
		out = append(out, frame...)
	}
	if len(out) == 0 {
		return nil, ErrNoAudio
	}
	return out[:want], nil
}

func FrameRMS(f []float32) float64 {
	if len(f) == 0 {
		return 0
	}
	var s float64
	for _, x := range f {
		s += float64(x * x)
	}
	return math.Sqrt(s / float64(len(f)))
}
