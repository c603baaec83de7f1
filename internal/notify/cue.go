// Package notify tells the user what the assistant is doing: an audible
// cue when recording starts and a desktop notification with the answer.
package notify

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

// Cue plays a short mp3 clip without blocking the caller.
type Cue struct {
	buf *beep.Buffer
}

var speakerOnce sync.Once

// LoadCue decodes the clip once and opens the speaker at its sample rate.
func LoadCue(path string) (*Cue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cue: %w", err)
	}
	streamer, format, err := mp3.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode cue: %w", err)
	}
	defer streamer.Close()

	buf := beep.NewBuffer(format)
	buf.Append(streamer)

	var initErr error
	speakerOnce.Do(func() {
		initErr = speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10))
	})
	if initErr != nil {
		return nil, fmt.Errorf("init speaker: %w", initErr)
	}

	return &Cue{buf: buf}, nil
}

func (c *Cue) Play() {
	if c == nil || c.buf == nil {
		return
	}
	speaker.Play(c.buf.Streamer(0, c.buf.Len()))
}
