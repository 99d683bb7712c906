package chat

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"scribe-ai/core/internal/engine"
	app_errors "scribe-ai/core/internal/errors"
	"scribe-ai/core/internal/events"
	"scribe-ai/core/internal/model"
)

// Coordinator owns the lifecycle of message exchanges for one session.
// It reconciles two independent update channels into a single view: push
// events from the engine's event stream and a poll loop that runs only
// while an exchange is in flight. Both channels feed the same Merge
// rules, so whichever arrives first wins the content race and neither
// can roll a terminal status back.
//
// All mutable fields are guarded by mu; the coordinator is the single
// writer of its processing flag and streaming message ID.
type Coordinator struct {
	sessionID    string
	engine       engine.Engine
	pollInterval time.Duration

	mu          sync.Mutex
	messages    []model.ChatMessage
	processing  bool
	streamingID string
	lastError   string
	pollCancel  context.CancelFunc

	unsubs []func()
}

func newCoordinator(sessionID string, eng engine.Engine, pollInterval time.Duration) *Coordinator {
	return &Coordinator{
		sessionID:    sessionID,
		engine:       eng,
		pollInterval: pollInterval,
	}
}

// Load replaces the local mirror with the engine's stored message list.
func (c *Coordinator) Load(ctx context.Context) error {
	messages, err := c.engine.GetMessages(ctx, c.sessionID)
	if err != nil {
		return fmt.Errorf("could not load messages: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = messages
	return nil
}

// Messages returns a copy of the current view, ordered by sequence ID.
func (c *Coordinator) Messages() []model.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// State reports the coordinator-level flags the UI renders from.
func (c *Coordinator) State() (processing bool, streamingID string, lastError string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.processing, c.streamingID, c.lastError
}

// Send dispatches one user message. The user and assistant messages are
// appended optimistically under locally generated placeholder IDs; the
// engine's response supplies the authoritative IDs and sequence numbers,
// which replace the placeholders. Only one exchange may be in flight per
// session.
func (c *Coordinator) Send(ctx context.Context, content string, provider, modelID string, toolIDs []string) error {
	now := time.Now().UTC()

	c.mu.Lock()
	if c.processing {
		c.mu.Unlock()
		return fmt.Errorf("%w: an exchange is already in flight", app_errors.ErrConflict)
	}
	lastSeq := int64(0)
	if n := len(c.messages); n > 0 {
		lastSeq = c.messages[n-1].SequenceID
	}
	userMsg := model.ChatMessage{
		ID:          uuid.NewString(),
		SessionID:   c.sessionID,
		Role:        model.RoleUser,
		Content:     content,
		SequenceID:  lastSeq + 1,
		Status:      model.StatusComplete,
		CreatedAt:   now,
		Placeholder: true,
	}
	assistantMsg := model.ChatMessage{
		ID:          uuid.NewString(),
		SessionID:   c.sessionID,
		Role:        model.RoleAssistant,
		SequenceID:  lastSeq + 2,
		Status:      model.StatusPending,
		Provider:    provider,
		Model:       modelID,
		CreatedAt:   now,
		Placeholder: true,
	}
	c.messages = append(c.messages, userMsg, assistantMsg)
	c.processing = true
	c.streamingID = assistantMsg.ID
	c.lastError = ""
	c.mu.Unlock()

	result, err := c.engine.SendMessage(ctx, &engine.SendMessageRequest{
		SessionID: c.sessionID,
		Content:   content,
		Provider:  provider,
		Model:     modelID,
		ToolIDs:   toolIDs,
	})
	if err != nil {
		// Compensating reversal: take the optimistic pair back out so no
		// phantom exchange lingers in the view.
		c.mu.Lock()
		c.removeLocked(userMsg.ID)
		c.removeLocked(assistantMsg.ID)
		c.processing = false
		c.streamingID = ""
		c.lastError = err.Error()
		c.mu.Unlock()
		return fmt.Errorf("could not send message: %w", err)
	}

	c.mu.Lock()
	if m := c.findLocked(userMsg.ID); m != nil {
		m.ID = result.UserMessageID
		m.SequenceID = result.UserSequenceID
		m.Placeholder = false
	}
	if m := c.findLocked(assistantMsg.ID); m != nil {
		m.ID = result.AssistantMessageID
		m.SequenceID = result.AssistantSequenceID
		m.Placeholder = false
	}
	c.streamingID = result.AssistantMessageID
	c.mu.Unlock()

	c.startPolling(result.AssistantMessageID)
	return nil
}

// Cancel asks the engine to stop the given message, defaulting to the
// one currently streaming. With no resolvable target it is a silent
// no-op. Cancellation is optimistic: local state flips to cancelled
// without waiting for a confirming event, and the Merge rules drop any
// late push or poll update for the message afterwards.
func (c *Coordinator) Cancel(ctx context.Context, messageID string) error {
	c.mu.Lock()
	if messageID == "" {
		messageID = c.streamingID
	}
	c.mu.Unlock()
	if messageID == "" {
		return nil
	}

	if err := c.engine.CancelMessage(ctx, messageID); err != nil {
		// Local state stays whatever it was; the exchange is still live
		// as far as we know.
		return fmt.Errorf("could not cancel message: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if m := c.findLocked(messageID); m != nil {
		*m = Merge(*m, Update{Status: model.StatusCancelled, Error: "cancelled by user"}, SourcePush)
	}
	if c.streamingID == messageID {
		c.finishLocked()
	}
	return nil
}

// ClearHistory wipes the session's messages in the engine and resets
// every local tracker. This is the only operation besides release that
// fully resets the coordinator.
func (c *Coordinator) ClearHistory(ctx context.Context) error {
	if err := c.engine.ClearSession(ctx, c.sessionID); err != nil {
		return fmt.Errorf("could not clear session: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
	c.lastError = ""
	c.finishLocked()
	return nil
}

// handleStream applies a push content update to the tracked streaming
// message. Events for other sessions or other messages are ignored.
func (c *Coordinator) handleStream(e events.MessageStreamEvent) {
	if e.SessionID != c.sessionID {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e.MessageID != c.streamingID {
		return
	}
	if m := c.findLocked(e.MessageID); m != nil {
		*m = Merge(*m, Update{Content: &e.Content, Status: model.StatusStreaming}, SourcePush)
	}
}

// handleComplete applies a push terminal update, then reloads the stored
// message list. The event's implied content is not trusted as final;
// only the engine-confirmed record is, since the backend may have
// appended trailing content after the last stream event.
func (c *Coordinator) handleComplete(e events.MessageCompleteEvent) {
	if e.SessionID != c.sessionID {
		return
	}

	status := model.StatusComplete
	if e.Status != model.StatusComplete {
		status = model.StatusError
	}
	if e.Status == model.StatusCancelled {
		status = model.StatusCancelled
	}

	c.mu.Lock()
	if m := c.findLocked(e.MessageID); m != nil {
		*m = Merge(*m, Update{Status: status, Error: e.Error}, SourcePush)
	}
	if c.streamingID == e.MessageID {
		c.finishLocked()
	}
	c.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.Load(ctx); err != nil {
			slog.Warn("Could not reload messages after completion", "session_id", c.sessionID, "error", err)
		}
	}()
}

// startPolling runs the pull channel for one in-flight message. The loop
// stops as soon as the message reaches a terminal state, whether it got
// there via a poll result or a push event.
func (c *Coordinator) startPolling(messageID string) {
	ctx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.pollCancel = cancel
	c.mu.Unlock()

	go func() {
		ticker := time.NewTicker(c.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			status, err := c.engine.GetMessageStatus(ctx, messageID)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Debug("Message status poll failed", "message_id", messageID, "error", err)
				continue
			}
			if status == nil {
				continue
			}

			c.mu.Lock()
			if m := c.findLocked(messageID); m != nil {
				*m = Merge(*m, Update{
					Content: &status.Content,
					Status:  status.Status,
					Error:   status.Error,
				}, SourcePoll)
			}
			terminal := status.Status.Terminal()
			if terminal && c.streamingID == messageID {
				c.finishLocked()
			}
			c.mu.Unlock()

			if terminal {
				return
			}
		}
	}()
}

// finishLocked clears the in-flight trackers and stops the poll loop.
// Callers must hold mu.
func (c *Coordinator) finishLocked() {
	c.processing = false
	c.streamingID = ""
	if c.pollCancel != nil {
		c.pollCancel()
		c.pollCancel = nil
	}
}

// release tears the coordinator down: unhooks its event subscriptions
// and stops any poll loop so no stale closure outlives the session.
func (c *Coordinator) release() {
	c.mu.Lock()
	c.finishLocked()
	unsubs := c.unsubs
	c.unsubs = nil
	c.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}

func (c *Coordinator) findLocked(messageID string) *model.ChatMessage {
	for i := range c.messages {
		if c.messages[i].ID == messageID {
			return &c.messages[i]
		}
	}
	return nil
}

func (c *Coordinator) removeLocked(messageID string) {
	for i := range c.messages {
		if c.messages[i].ID == messageID {
			c.messages = append(c.messages[:i:i], c.messages[i+1:]...)
			return
		}
	}
}
