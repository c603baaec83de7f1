// Package bus publishes utterance events to a websocket hub.
package bus

import (
	"context"
	"encoding/json"
	"errors"
	log "log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
)

const (
	KindTranscript = "transcript"
	KindAction     = "action"
	KindAnswer     = "answer"
)

const (
	DefaultReconnect = 2 * time.Second
	defaultQueue     = 64
	writeTimeout     = 5 * time.Second
)

var ErrInvalidURL = errors.New("bus url must be ws:// or wss://")

type Event struct {
	ID        string         `json:"id"`
	Session   string         `json:"session,omitempty"`
	From      string         `json:"from"`
	Kind      string         `json:"kind"`
	Content   string         `json:"content"`
	Params    map[string]any `json:"params,omitempty"`
	Timestamp time.Time      `json:"ts"`
}

// Publisher keeps one connection to the hub and redials it when it drops.
// Events published while disconnected are dropped once the queue fills.
type Publisher struct {
	url       string
	reconnect time.Duration
	dialer    *ws.Dialer
	queue     chan Event
	logger    *log.Logger
}

func NewPublisher(rawURL string, reconnect time.Duration, logger *log.Logger) (*Publisher, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, ErrInvalidURL
	}
	if reconnect <= 0 {
		reconnect = DefaultReconnect
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Publisher{
		url:       u.String(),
		reconnect: reconnect,
		dialer:    ws.DefaultDialer,
		queue:     make(chan Event, defaultQueue),
		logger:    logger.With("component", "bus"),
	}, nil
}

// Publish stamps and queues ev without blocking.
func (p *Publisher) Publish(ev Event) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.From == "" {
		ev.From = "jarvis"
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	select {
	case p.queue <- ev:
	default:
		p.logger.Warn("Bus queue full, dropping event", "kind", ev.Kind)
	}
}

// Run delivers queued events until ctx is done.
func (p *Publisher) Run(ctx context.Context) {
	var conn *ws.Conn
	defer func() {
		if conn != nil {
			_ = conn.WriteControl(ws.CloseMessage,
				ws.FormatCloseMessage(ws.CloseNormalClosure, ""), time.Now().Add(time.Second))
			conn.Close()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-p.queue:
			payload, err := json.Marshal(ev)
			if err != nil {
				p.logger.Error("Failed to encode event", "err", err)
				continue
			}
			for conn == nil {
				if conn = p.dial(ctx); conn == nil && ctx.Err() != nil {
					return
				}
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(ws.TextMessage, payload); err != nil {
				p.logger.Warn("Bus write failed, reconnecting", "err", err)
				conn.Close()
				conn = nil
				continue
			}
			p.logger.Debug("Published", "kind", ev.Kind, "id", ev.ID)
		}
	}
}

func (p *Publisher) dial(ctx context.Context) *ws.Conn {
	conn, _, err := p.dialer.DialContext(ctx, p.url, nil)
	if err == nil {
		p.logger.Info("Connected to bus", "url", p.url)
		return conn
	}
	p.logger.Debug("Bus dial failed", "url", p.url, "err", err)

	select {
	case <-ctx.Done():
	case <-time.After(p.reconnect):
	}
	return nil
}
