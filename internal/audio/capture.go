package audio

import (
	"errors"
	log "log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"jarvis/internal/fsm"
)

var ErrNoAudio = errors.New("no audio captured")

// Recording is the flattened audio of one finished session.
type Recording struct {
	ID         string
	Samples    []float32
	SampleRate int
}

func (r Recording) Duration() time.Duration {
	if r.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(r.Samples)) / float64(r.SampleRate) * float64(time.Second))
}

type CaptureConfig struct {
	SampleRate  int
	FrameSize   int
	MaxDuration time.Duration
}

// Hooks run in order on one goroutine owned by the Capture, never on the
// caller of Press or Release.
type Hooks struct {
	OnStart func()
	OnStop  func()
}

type session struct {
	id      string
	stop    chan struct{}
	once    sync.Once
	discard atomic.Bool

	// frames is only touched by the session's capture loop.
	frames [][]float32
}

func (s *session) halt() {
	s.once.Do(func() { close(s.stop) })
}

// Capture owns the recording state and the active session. Press and
// Release never block on audio I/O.
type Capture struct {
	cfg     CaptureConfig
	mic     Microphone
	handoff func(Recording)
	hooks   Hooks
	hookq   chan func()
	logger  *log.Logger

	closing   chan struct{}
	closeOnce sync.Once
	hooksDone chan struct{}

	mu      sync.Mutex
	state   fsm.State
	current *session
	wg      sync.WaitGroup
}

func NewCapture(cfg CaptureConfig, mic Microphone, handoff func(Recording), hooks Hooks, logger *log.Logger) *Capture {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.FrameSize <= 0 {
		cfg.FrameSize = DefaultFrameSize
	}
	if logger == nil {
		logger = log.Default()
	}
	c := &Capture{
		cfg:     cfg,
		mic:     mic,
		handoff: handoff,
		hooks:   hooks,
		logger:  logger.With("component", "capture"),
		state:   fsm.StateIdle,

		closing:   make(chan struct{}),
		hooksDone: make(chan struct{}),
	}
	if hooks.OnStart != nil || hooks.OnStop != nil {
		c.hookq = make(chan func(), 16)
		go c.hookLoop()
	} else {
		close(c.hooksDone)
	}
	return c
}

// hookLoop runs queued hooks until Shutdown, then drains what is left.
func (c *Capture) hookLoop() {
	defer close(c.hooksDone)
	for {
		select {
		case h := <-c.hookq:
			h()
		case <-c.closing:
			for {
				select {
				case h := <-c.hookq:
					h()
				default:
					return
				}
			}
		}
	}
}

func (c *Capture) State() fsm.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Press starts a session. Pressing while recording is a no-op.
func (c *Capture) Press() {
	c.mu.Lock()
	cur := c.state
	next, err := fsm.Transition(cur, fsm.EventPress)
	if err != nil {
		c.mu.Unlock()
		c.logger.Debug("Press ignored", "state", cur)
		return
	}
	sess := &session{id: uuid.NewString(), stop: make(chan struct{})}
	c.state = next
	c.current = sess
	c.wg.Add(1)
	c.mu.Unlock()

	c.logger.Info("Recording", "session", sess.id)
	c.runHook(c.hooks.OnStart)

	go c.captureLoop(sess)
}

// Release ends the active session; the capture loop finalizes it.
func (c *Capture) Release() {
	c.mu.Lock()
	sess := c.current
	c.mu.Unlock()
	if sess == nil {
		return
	}
	c.release(sess)
}

func (c *Capture) release(sess *session) bool {
	c.mu.Lock()
	if c.current != sess {
		c.mu.Unlock()
		return false
	}
	next, err := fsm.Transition(c.state, fsm.EventRelease)
	if err != nil {
		c.mu.Unlock()
		return false
	}
	c.state = next
	c.current = nil
	c.mu.Unlock()

	c.logger.Info("Recording stopped", "session", sess.id)
	c.runHook(c.hooks.OnStop)
	sess.halt()
	return true
}

// Wait blocks until every capture loop has exited.
func (c *Capture) Wait() {
	c.wg.Wait()
}

// Shutdown aborts any active session without handing it off and stops the
// hook goroutine. Later presses still record but run no hooks.
func (c *Capture) Shutdown() {
	c.mu.Lock()
	sess := c.current
	if sess != nil {
		c.state, _ = fsm.Transition(c.state, fsm.EventFail)
		c.current = nil
	}
	c.mu.Unlock()
	if sess != nil {
		sess.discard.Store(true)
		sess.halt()
	}
	c.wg.Wait()
	c.closeOnce.Do(func() { close(c.closing) })
	<-c.hooksDone
}

func (c *Capture) captureLoop(sess *session) {
	defer c.wg.Done()

	stream, err := c.mic.Open(c.cfg.SampleRate, c.cfg.FrameSize)
	if err != nil {
		c.abort(sess, err)
		return
	}
	defer func() {
		if err := stream.Close(); err != nil {
			c.logger.Debug("Close stream", "err", err)
		}
	}()

	maxSamples := 0
	if c.cfg.MaxDuration > 0 {
		maxSamples = int(c.cfg.MaxDuration.Seconds() * float64(c.cfg.SampleRate))
	}

	var captured int
	for {
		select {
		case <-sess.stop:
			c.finalize(sess)
			return
		default:
		}

		frame, err := stream.Read()
		if err != nil {
			c.abort(sess, err)
			return
		}
		if len(frame) > 0 {
			sess.frames = append(sess.frames, frame)
			captured += len(frame)
		}

		if maxSamples > 0 && captured >= maxSamples {
			c.logger.Warn("Max recording length reached", "session", sess.id, "max", c.cfg.MaxDuration)
			c.release(sess)
			c.finalize(sess)
			return
		}
	}
}

// abort drops the session after a microphone error.
func (c *Capture) abort(sess *session, err error) {
	c.mu.Lock()
	active := c.current == sess
	if active {
		c.state, _ = fsm.Transition(c.state, fsm.EventFail)
		c.current = nil
	}
	c.mu.Unlock()

	c.logger.Warn("Microphone error, session aborted", "session", sess.id, "err", err)
	sess.discard.Store(true)
	sess.frames = nil
	if active {
		c.runHook(c.hooks.OnStop)
	}
}

func (c *Capture) finalize(sess *session) {
	if sess.discard.Load() {
		return
	}

	var n int
	for _, f := range sess.frames {
		n += len(f)
	}
	if n == 0 {
		c.logger.Info("No audio captured", "session", sess.id)
		return
	}

	samples := make([]float32, 0, n)
	for _, f := range sess.frames {
		samples = append(samples, f...)
	}
	sess.frames = nil

	rec := Recording{ID: sess.id, Samples: samples, SampleRate: c.cfg.SampleRate}
	c.logger.Debug("Handing off", "session", sess.id, "samples", n, "duration", rec.Duration())

	if c.handoff != nil {
		go c.handoff(rec)
	}
}

func (c *Capture) runHook(h func()) {
	if h == nil || c.hookq == nil {
		return
	}
	select {
	case <-c.closing:
		return
	default:
	}
	select {
	case c.hookq <- h:
	default:
		c.logger.Warn("Hook queue full, skipping hook")
	}
}
