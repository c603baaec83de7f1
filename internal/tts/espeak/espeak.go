// Package espeak speaks text through libespeak-ng.
package espeak

/*
#cgo LDFLAGS: -lespeak-ng
#include <stdlib.h>
#include <string.h>
#include <espeak-ng/speak_lib.h>

static int
jarvis_espeak_init(void)
{
	return espeak_Initialize(AUDIO_OUTPUT_SYNCH_PLAYBACK, 500, NULL, 0);
}

static int
jarvis_espeak_say(const char *text, const char *voice, int rate)
{
	if (!text)
	{ return -1; }

	if (voice && voice[0])
	{
		if (espeak_SetVoiceByName(voice) != EE_OK)
		{ return -2; }
	}
	if (rate > 0)
	{ espeak_SetParameter(espeakRATE, rate, 0); }

	if (espeak_Synth(text, strlen(text) + 1, 0, POS_CHARACTER, 0, espeakCHARS_AUTO, NULL, NULL) != EE_OK)
	{ return -3; }
	espeak_Synchronize();

	return 0;
}
*/
import "C"

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"
)

const DefaultRate = 140

// Engine holds the voice settings. libespeak-ng is process-global, so the
// library is initialized once and every call is serialized.
type Engine struct {
	voice string
	rate  int
}

var (
	initOnce sync.Once
	initErr  error
	mu       sync.Mutex
)

func New(voice string, rate int) *Engine {
	if rate <= 0 {
		rate = DefaultRate
	}
	return &Engine{voice: voice, rate: rate}
}

func (e *Engine) Speak(text string) error {
	if text == "" {
		return nil
	}

	initOnce.Do(func() {
		if C.jarvis_espeak_init() < 0 {
			initErr = errors.New("espeak_Initialize failed")
		}
	})
	if initErr != nil {
		return initErr
	}

	ctext := C.CString(text)
	defer C.free(unsafe.Pointer(ctext))
	cvoice := C.CString(e.voice)
	defer C.free(unsafe.Pointer(cvoice))

	mu.Lock()
	rc := C.jarvis_espeak_say(ctext, cvoice, C.int(e.rate))
	mu.Unlock()
	if rc != 0 {
		return fmt.Errorf("espeak_say failed: %d", int(rc))
	}
	return nil
}
