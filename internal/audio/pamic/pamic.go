// Package pamic captures microphone input through PortAudio.
package pamic

import (
	"errors"
	"fmt"

	"github.com/gordonklaus/portaudio"

	"jarvis/internal/audio"
)

// PortAudioMic opens the named input device, or the default one when the
// name is empty or "default".
type PortAudioMic struct {
	device string
}

func New(device string) *PortAudioMic { return &PortAudioMic{device: device} }

func (m *PortAudioMic) Init() error {
	return portaudio.Initialize()
}

func (m *PortAudioMic) Close() {
	portaudio.Terminate()
}

func (m *PortAudioMic) Open(sampleRate, frameSize int) (audio.Stream, error) {
	buf := make([]float32, frameSize)

	var (
		stream *portaudio.Stream
		err    error
	)
	if m.device != "" && m.device != "default" {
		dev, ferr := findInputDevice(m.device)
		if ferr != nil {
			return nil, ferr
		}
		params := portaudio.LowLatencyParameters(dev, nil)
		params.Input.Channels = 1
		params.SampleRate = float64(sampleRate)
		params.FramesPerBuffer = frameSize
		stream, err = portaudio.OpenStream(params, buf)
	} else {
		stream, err = portaudio.OpenDefaultStream(1, 0, float64(sampleRate), len(buf), buf)
	}
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("start stream: %w", err)
	}

	return &paStream{stream: stream, buf: buf}, nil
}

func findInputDevice(name string) (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	for _, d := range devices {
		if d.Name == name && d.MaxInputChannels > 0 {
			return d, nil
		}
	}
	return nil, fmt.Errorf("input device not found: %s", name)
}

type paStream struct {
	stream *portaudio.Stream
	buf    []float32
}

// Read copies the block out of the shared portaudio buffer so callers may
// keep it after the next read.
func (s *paStream) Read() ([]float32, error) {
	if err := s.stream.Read(); err != nil {
		if errors.Is(err, portaudio.InputOverflowed) {
			return append([]float32(nil), s.buf...), nil
		}
		return nil, err
	}
	return append([]float32(nil), s.buf...), nil
}

func (s *paStream) Close() error {
	stopErr := s.stream.Stop()
	closeErr := s.stream.Close()
	return errors.Join(stopErr, closeErr)
}
