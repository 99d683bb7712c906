package chat_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"scribe-ai/core/internal/chat"
	"scribe-ai/core/internal/engine"
	app_errors "scribe-ai/core/internal/errors"
	"scribe-ai/core/internal/engine/mocks"
	"scribe-ai/core/internal/events"
	"scribe-ai/core/internal/model"
)

const (
	sessionID = "session-1"
	// Long enough that the poll loop never ticks unless a test wants it to.
	idlePoll = time.Hour
)

func setupCoordinator(t *testing.T, pollInterval time.Duration) (*chat.Coordinator, *mocks.MockEngine, *events.Dispatcher) {
	eng := mocks.NewMockEngine(t)
	dispatcher := events.NewDispatcher()
	manager := chat.NewManager(eng, dispatcher, pollInterval)
	t.Cleanup(func() { manager.Release(sessionID) })
	return manager.Get(sessionID), eng, dispatcher
}

func sendResult() *engine.SendMessageResult {
	return &engine.SendMessageResult{
		UserMessageID:       "user-1",
		AssistantMessageID:  "assistant-1",
		UserSequenceID:      11,
		AssistantSequenceID: 12,
	}
}

func TestCoordinator_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - placeholders replaced by engine identities", func(t *testing.T) {
		c, eng, _ := setupCoordinator(t, idlePoll)

		eng.On("SendMessage", ctx, mock.MatchedBy(func(req *engine.SendMessageRequest) bool {
			return req.SessionID == sessionID && req.Content == "hello" && req.Model == "llama3"
		})).Return(sendResult(), nil).Once()

		err := c.Send(ctx, "hello", "ollama", "llama3", []string{"search_transcript"})
		require.NoError(t, err)

		msgs := c.Messages()
		require.Len(t, msgs, 2)
		assert.Equal(t, "user-1", msgs[0].ID)
		assert.Equal(t, model.RoleUser, msgs[0].Role)
		assert.Equal(t, model.StatusComplete, msgs[0].Status)
		assert.Equal(t, int64(11), msgs[0].SequenceID)
		assert.False(t, msgs[0].Placeholder)

		assert.Equal(t, "assistant-1", msgs[1].ID)
		assert.Equal(t, model.RoleAssistant, msgs[1].Role)
		assert.Equal(t, model.StatusPending, msgs[1].Status)
		assert.Equal(t, int64(12), msgs[1].SequenceID)

		processing, streamingID, lastError := c.State()
		assert.True(t, processing)
		assert.Equal(t, "assistant-1", streamingID)
		assert.Empty(t, lastError)
	})

	t.Run("Failure - optimistic pair removed on engine error", func(t *testing.T) {
		c, eng, _ := setupCoordinator(t, idlePoll)

		eng.On("SendMessage", ctx, mock.Anything).
			Return(nil, errors.New("engine down")).Once()

		err := c.Send(ctx, "hello", "ollama", "llama3", nil)
		require.Error(t, err)

		assert.Empty(t, c.Messages())
		processing, streamingID, lastError := c.State()
		assert.False(t, processing)
		assert.Empty(t, streamingID)
		assert.Contains(t, lastError, "engine down")
	})

	t.Run("Failure - second send while in flight is a conflict", func(t *testing.T) {
		c, eng, _ := setupCoordinator(t, idlePoll)

		eng.On("SendMessage", ctx, mock.Anything).Return(sendResult(), nil).Once()
		require.NoError(t, c.Send(ctx, "first", "ollama", "llama3", nil))

		err := c.Send(ctx, "second", "ollama", "llama3", nil)
		assert.ErrorIs(t, err, app_errors.ErrConflict)
		assert.Len(t, c.Messages(), 2)
	})
}

func TestCoordinator_StreamEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - cumulative content applied to streaming message", func(t *testing.T) {
		c, eng, dispatcher := setupCoordinator(t, idlePoll)

		eng.On("SendMessage", ctx, mock.Anything).Return(sendResult(), nil).Once()
		require.NoError(t, c.Send(ctx, "hello", "ollama", "llama3", nil))

		dispatcher.Publish(events.MessageStreamEvent{SessionID: sessionID, MessageID: "assistant-1", Content: "Hel"})
		dispatcher.Publish(events.MessageStreamEvent{SessionID: sessionID, MessageID: "assistant-1", Content: "Hello"})

		msgs := c.Messages()
		require.Len(t, msgs, 2)
		assert.Equal(t, "Hello", msgs[1].Content)
		assert.Equal(t, model.StatusStreaming, msgs[1].Status)
	})

	t.Run("Events for other sessions or messages are ignored", func(t *testing.T) {
		c, eng, dispatcher := setupCoordinator(t, idlePoll)

		eng.On("SendMessage", ctx, mock.Anything).Return(sendResult(), nil).Once()
		require.NoError(t, c.Send(ctx, "hello", "ollama", "llama3", nil))

		dispatcher.Publish(events.MessageStreamEvent{SessionID: "other-session", MessageID: "assistant-1", Content: "nope"})
		dispatcher.Publish(events.MessageStreamEvent{SessionID: sessionID, MessageID: "other-message", Content: "nope"})

		msgs := c.Messages()
		assert.Empty(t, msgs[1].Content)
		assert.Equal(t, model.StatusPending, msgs[1].Status)
	})
}

func TestCoordinator_Complete(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - terminal event finishes the exchange and reloads", func(t *testing.T) {
		c, eng, dispatcher := setupCoordinator(t, idlePoll)

		stored := []model.ChatMessage{
			{ID: "user-1", SessionID: sessionID, Role: model.RoleUser, Content: "hello", SequenceID: 11, Status: model.StatusComplete},
			{ID: "assistant-1", SessionID: sessionID, Role: model.RoleAssistant, Content: "Hello there.", SequenceID: 12, Status: model.StatusComplete},
		}
		eng.On("SendMessage", ctx, mock.Anything).Return(sendResult(), nil).Once()
		eng.On("GetMessages", mock.Anything, sessionID).Return(stored, nil).Maybe()

		require.NoError(t, c.Send(ctx, "hello", "ollama", "llama3", nil))
		dispatcher.Publish(events.MessageCompleteEvent{SessionID: sessionID, MessageID: "assistant-1", Status: model.StatusComplete})

		processing, streamingID, _ := c.State()
		assert.False(t, processing)
		assert.Empty(t, streamingID)

		// The reload is asynchronous; wait for the stored record to land.
		assert.Eventually(t, func() bool {
			msgs := c.Messages()
			return len(msgs) == 2 && msgs[1].Content == "Hello there."
		}, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("Failure status carries the error onto the message", func(t *testing.T) {
		c, eng, dispatcher := setupCoordinator(t, idlePoll)

		eng.On("SendMessage", ctx, mock.Anything).Return(sendResult(), nil).Once()
		eng.On("GetMessages", mock.Anything, sessionID).Return(nil, errors.New("still down")).Maybe()

		require.NoError(t, c.Send(ctx, "hello", "ollama", "llama3", nil))
		dispatcher.Publish(events.MessageCompleteEvent{SessionID: sessionID, MessageID: "assistant-1", Status: model.StatusError, Error: "model crashed"})

		msgs := c.Messages()
		assert.Equal(t, model.StatusError, msgs[1].Status)
		assert.Equal(t, "model crashed", msgs[1].Error)
	})
}

func TestCoordinator_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - defaults to the streaming message and drops late pushes", func(t *testing.T) {
		c, eng, dispatcher := setupCoordinator(t, idlePoll)

		eng.On("SendMessage", ctx, mock.Anything).Return(sendResult(), nil).Once()
		eng.On("CancelMessage", ctx, "assistant-1").Return(nil).Once()

		require.NoError(t, c.Send(ctx, "hello", "ollama", "llama3", nil))
		dispatcher.Publish(events.MessageStreamEvent{SessionID: sessionID, MessageID: "assistant-1", Content: "partial"})

		require.NoError(t, c.Cancel(ctx, ""))

		msgs := c.Messages()
		assert.Equal(t, model.StatusCancelled, msgs[1].Status)
		assert.Equal(t, "partial", msgs[1].Content)

		processing, _, _ := c.State()
		assert.False(t, processing)

		// A stream event racing with the cancel must not resurrect it.
		dispatcher.Publish(events.MessageStreamEvent{SessionID: sessionID, MessageID: "assistant-1", Content: "partial plus more"})
		msgs = c.Messages()
		assert.Equal(t, model.StatusCancelled, msgs[1].Status)
		assert.Equal(t, "partial", msgs[1].Content)
	})

	t.Run("No-op without a resolvable target", func(t *testing.T) {
		c, _, _ := setupCoordinator(t, idlePoll)
		assert.NoError(t, c.Cancel(ctx, ""))
	})

	t.Run("Failure - engine error leaves local state untouched", func(t *testing.T) {
		c, eng, _ := setupCoordinator(t, idlePoll)

		eng.On("SendMessage", ctx, mock.Anything).Return(sendResult(), nil).Once()
		eng.On("CancelMessage", ctx, "assistant-1").Return(errors.New("too late")).Once()

		require.NoError(t, c.Send(ctx, "hello", "ollama", "llama3", nil))
		err := c.Cancel(ctx, "")
		require.Error(t, err)

		msgs := c.Messages()
		assert.Equal(t, model.StatusPending, msgs[1].Status)
		processing, _, _ := c.State()
		assert.True(t, processing)
	})
}

func TestCoordinator_Polling(t *testing.T) {
	ctx := context.Background()

	t.Run("Poll catches a completion the push channel missed", func(t *testing.T) {
		c, eng, _ := setupCoordinator(t, 10*time.Millisecond)

		eng.On("SendMessage", ctx, mock.Anything).Return(sendResult(), nil).Once()
		eng.On("GetMessageStatus", mock.Anything, "assistant-1").Return(&engine.MessageStatusResult{
			Content: "Full reply.",
			Status:  model.StatusComplete,
		}, nil)

		require.NoError(t, c.Send(ctx, "hello", "ollama", "llama3", nil))

		assert.Eventually(t, func() bool {
			processing, _, _ := c.State()
			return !processing
		}, 2*time.Second, 5*time.Millisecond)

		msgs := c.Messages()
		assert.Equal(t, model.StatusComplete, msgs[1].Status)
		assert.Equal(t, "Full reply.", msgs[1].Content)
	})

	t.Run("Poll errors are tolerated and the loop keeps going", func(t *testing.T) {
		c, eng, _ := setupCoordinator(t, 10*time.Millisecond)

		eng.On("SendMessage", ctx, mock.Anything).Return(sendResult(), nil).Once()
		eng.On("GetMessageStatus", mock.Anything, "assistant-1").Return(nil, errors.New("blip")).Once()
		eng.On("GetMessageStatus", mock.Anything, "assistant-1").Return(&engine.MessageStatusResult{
			Content: "Recovered.",
			Status:  model.StatusComplete,
		}, nil)

		require.NoError(t, c.Send(ctx, "hello", "ollama", "llama3", nil))

		assert.Eventually(t, func() bool {
			processing, _, _ := c.State()
			return !processing
		}, 2*time.Second, 5*time.Millisecond)

		msgs := c.Messages()
		assert.Equal(t, "Recovered.", msgs[1].Content)
	})
}

func TestCoordinator_ClearHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		c, eng, _ := setupCoordinator(t, idlePoll)

		eng.On("SendMessage", ctx, mock.Anything).Return(sendResult(), nil).Once()
		eng.On("ClearSession", ctx, sessionID).Return(nil).Once()

		require.NoError(t, c.Send(ctx, "hello", "ollama", "llama3", nil))
		require.NoError(t, c.ClearHistory(ctx))

		assert.Empty(t, c.Messages())
		processing, streamingID, lastError := c.State()
		assert.False(t, processing)
		assert.Empty(t, streamingID)
		assert.Empty(t, lastError)
	})

	t.Run("Failure - engine error keeps the mirror", func(t *testing.T) {
		c, eng, _ := setupCoordinator(t, idlePoll)

		eng.On("GetMessages", ctx, sessionID).Return([]model.ChatMessage{{ID: "m1"}}, nil).Once()
		eng.On("ClearSession", ctx, sessionID).Return(errors.New("locked")).Once()

		require.NoError(t, c.Load(ctx))
		require.Error(t, c.ClearHistory(ctx))
		assert.Len(t, c.Messages(), 1)
	})
}

func TestManager_Release(t *testing.T) {
	ctx := context.Background()
	eng := mocks.NewMockEngine(t)
	dispatcher := events.NewDispatcher()
	manager := chat.NewManager(eng, dispatcher, idlePoll)

	c := manager.Get(sessionID)
	eng.On("SendMessage", ctx, mock.Anything).Return(sendResult(), nil).Once()
	require.NoError(t, c.Send(ctx, "hello", "ollama", "llama3", nil))

	manager.Release(sessionID)

	// Handlers are unhooked; a post-release event must not touch the
	// old coordinator.
	dispatcher.Publish(events.MessageStreamEvent{SessionID: sessionID, MessageID: "assistant-1", Content: "stale"})
	msgs := c.Messages()
	assert.Empty(t, msgs[1].Content)

	// Get after release hands out a fresh coordinator.
	fresh := manager.Get(sessionID)
	assert.NotSame(t, c, fresh)
}
