package engine

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app_errors "scribe-ai/core/internal/errors"
	"scribe-ai/core/internal/model"
)

func TestClient(t *testing.T) {
	var capturedMethod, capturedPath string
	var capturedBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedMethod = r.Method
		capturedPath = r.URL.Path
		capturedBody, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/recordings/rec-1/sessions":
			_, _ = w.Write([]byte(`[{"id":"s1","recording_id":"rec-1","title":"Chat"}]`))
		case "/api/v1/sessions/s1/messages":
			if r.Method == http.MethodPost {
				_, _ = w.Write([]byte(`{"user_message_id":"u1","assistant_message_id":"a1","user_sequence_id":1,"assistant_sequence_id":2}`))
			} else {
				_, _ = w.Write([]byte(`[{"id":"u1","role":"user","content":"hi","status":"complete"}]`))
			}
		case "/api/v1/messages/a1/status":
			_, _ = w.Write([]byte(`{"content":"Hello","status":"streaming"}`))
		case "/api/v1/messages/gone/status":
			w.WriteHeader(http.StatusNotFound)
		case "/api/v1/settings/default-model":
			if r.Method == http.MethodGet {
				w.WriteHeader(http.StatusNotFound)
			} else {
				w.WriteHeader(http.StatusOK)
			}
		case "/api/v1/sessions/s1/tools":
			if r.Method == http.MethodGet {
				_, _ = w.Write([]byte(`{"tool_ids":["search_transcript"]}`))
			} else {
				w.WriteHeader(http.StatusOK)
			}
		case "/api/v1/recordings/rec-1/retranscribe":
			w.WriteHeader(http.StatusAccepted)
		case "/api/v1/boom":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`engine exploded`))
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	t.Run("ListSessions", func(t *testing.T) {
		sessions, err := client.ListSessions(ctx, "rec-1")
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, "s1", sessions[0].ID)
		assert.Equal(t, http.MethodGet, capturedMethod)
		assert.Equal(t, "/api/v1/recordings/rec-1/sessions", capturedPath)
	})

	t.Run("SendMessage", func(t *testing.T) {
		result, err := client.SendMessage(ctx, &SendMessageRequest{SessionID: "s1", Content: "hi", Provider: "ollama", Model: "llama3"})
		require.NoError(t, err)
		assert.Equal(t, "u1", result.UserMessageID)
		assert.Equal(t, "a1", result.AssistantMessageID)
		assert.Equal(t, int64(2), result.AssistantSequenceID)
		assert.Equal(t, http.MethodPost, capturedMethod)

		var sent SendMessageRequest
		require.NoError(t, json.Unmarshal(capturedBody, &sent))
		assert.Equal(t, "hi", sent.Content)
		assert.Equal(t, "llama3", sent.Model)
	})

	t.Run("GetMessageStatus", func(t *testing.T) {
		status, err := client.GetMessageStatus(ctx, "a1")
		require.NoError(t, err)
		require.NotNil(t, status)
		assert.Equal(t, "Hello", status.Content)
		assert.Equal(t, model.StatusStreaming, status.Status)
	})

	t.Run("GetMessageStatus - unknown message resolves to nil", func(t *testing.T) {
		status, err := client.GetMessageStatus(ctx, "gone")
		require.NoError(t, err)
		assert.Nil(t, status)
	})

	t.Run("GetDefaultModel - unset resolves to nil", func(t *testing.T) {
		cfg, err := client.GetDefaultModel(ctx)
		require.NoError(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("GetSessionToolIDs", func(t *testing.T) {
		ids, err := client.GetSessionToolIDs(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, []string{"search_transcript"}, ids)
	})

	t.Run("SetSessionToolIDs wraps the IDs", func(t *testing.T) {
		require.NoError(t, client.SetSessionToolIDs(ctx, "s1", []string{"a", "b"}))
		assert.Equal(t, http.MethodPut, capturedMethod)
		assert.JSONEq(t, `{"tool_ids":["a","b"]}`, string(capturedBody))
	})

	t.Run("StartRetranscription", func(t *testing.T) {
		err := client.StartRetranscription(ctx, &RetranscriptionRequest{RecordingID: "rec-1", AudioRef: "audio.wav", ModelID: "whisper-large"})
		require.NoError(t, err)
		assert.Equal(t, "/api/v1/recordings/rec-1/retranscribe", capturedPath)
	})

	t.Run("UpdateRecordingMetadata keeps nil and empty distinct", func(t *testing.T) {
		empty := ""
		used := "whisper-large"
		err := client.UpdateRecordingMetadata(ctx, "rec-1", &RecordingMetadataUpdate{
			ModelUsed:           &used,
			DiarizationProvider: &empty,
		})
		require.NoError(t, err)
		assert.Equal(t, http.MethodPatch, capturedMethod)
		assert.JSONEq(t, `{"model_used":"whisper-large","diarization_provider":""}`, string(capturedBody))
	})

	t.Run("Non-2xx surfaces the engine's message", func(t *testing.T) {
		err := client.do(ctx, http.MethodGet, "/api/v1/boom", nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "engine exploded")
	})

	t.Run("404 maps to the not-found sentinel", func(t *testing.T) {
		err := client.do(ctx, http.MethodGet, "/api/v1/messages/gone/status", nil, nil)
		assert.ErrorIs(t, err, app_errors.ErrNotFound)
	})
}
