package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

// envelope is the wire framing of a push event: a type tag plus the raw
// type-specific payload.
type envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Subscriber maintains a websocket connection to the engine's event
// endpoint and feeds decoded events into a Dispatcher. The engine keeps
// computing whether or not anyone is listening, so the subscriber
// reconnects with backoff after any drop; missed stream events are
// recovered by the coordinator's poll loop, not replayed here.
type Subscriber struct {
	url        string
	dispatcher *Dispatcher
}

func NewSubscriber(url string, dispatcher *Dispatcher) *Subscriber {
	return &Subscriber{url: url, dispatcher: dispatcher}
}

// Run connects and pumps events until ctx is cancelled. It only returns
// the context's error; individual connection failures are logged and
// retried.
func (s *Subscriber) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if err := s.pump(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("Event subscription dropped, reconnecting", "error", err, "backoff", backoff)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

// pump dials the endpoint and reads envelopes until the connection or
// context dies.
func (s *Subscriber) pump(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("could not connect to event endpoint: %w", err)
	}
	defer conn.Close()
	slog.Info("Subscribed to engine events", "url", s.url)

	// Unblock ReadMessage when the context is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read failed: %w", err)
		}
		s.handle(data)
	}
}

func (s *Subscriber) handle(data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		slog.Warn("Discarding malformed event envelope", "error", err)
		return
	}

	event, err := decode(env)
	if err != nil {
		slog.Warn("Discarding undecodable event", "type", env.Type, "error", err)
		return
	}
	s.dispatcher.Publish(event)
}

// decode maps an envelope to its concrete event type. Unknown types are
// an error so newer engine versions fail loudly in logs instead of
// silently dropping state.
func decode(env envelope) (Event, error) {
	switch env.Type {
	case TypeMessageStream:
		var e MessageStreamEvent
		if err := json.Unmarshal(env.Payload, &e); err != nil {
			return nil, err
		}
		return e, nil
	case TypeMessageComplete:
		var e MessageCompleteEvent
		if err := json.Unmarshal(env.Payload, &e); err != nil {
			return nil, err
		}
		return e, nil
	case TypeJobProgress:
		var e JobProgressEvent
		if err := json.Unmarshal(env.Payload, &e); err != nil {
			return nil, err
		}
		return e, nil
	case TypeJobComplete:
		var e JobCompleteEvent
		if err := json.Unmarshal(env.Payload, &e); err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}
}
