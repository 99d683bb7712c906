package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"scribe-ai/core/internal/chat"
	"scribe-ai/core/internal/engine"
	app_errors "scribe-ai/core/internal/errors"
	"scribe-ai/core/internal/model"
	"scribe-ai/core/internal/modelconf"
	"scribe-ai/core/internal/session"
	"scribe-ai/core/internal/tools"
)

// ChatHandler exposes the session store, tool binding and message
// coordination to UI surfaces.
type ChatHandler struct {
	sessions  *session.Store
	manager   *chat.Manager
	binding   *tools.Binding
	registry  *tools.Registry
	modelconf *modelconf.Service
}

func NewChatHandler(sessions *session.Store, manager *chat.Manager, binding *tools.Binding, registry *tools.Registry, mc *modelconf.Service) *ChatHandler {
	return &ChatHandler{
		sessions:  sessions,
		manager:   manager,
		binding:   binding,
		registry:  registry,
		modelconf: mc,
	}
}

// CreateSessionRequest is the DTO for explicit session creation.
type CreateSessionRequest struct {
	Title    string `json:"title" validate:"max=200"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// UpdateTitleRequest is the DTO for the title update endpoint.
type UpdateTitleRequest struct {
	Title string `json:"title" validate:"required,min=1,max=200"`
}

// UpdateConfigRequest is the DTO for the session config endpoint.
type UpdateConfigRequest struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// SendMessageRequest is the DTO for dispatching a user message.
type SendMessageRequest struct {
	Content string `json:"content" validate:"required,min=1"`
}

// CancelMessageRequest optionally names the message to cancel; empty
// targets whatever is currently streaming.
type CancelMessageRequest struct {
	MessageID string `json:"message_id"`
}

// SetToolsRequest replaces a session's tool selection.
type SetToolsRequest struct {
	ToolIDs []string `json:"tool_ids"`
}

// MessagesResponse bundles the message list with the coordinator flags
// the UI renders from.
type MessagesResponse struct {
	Messages           []model.ChatMessage `json:"messages"`
	IsProcessing       bool                `json:"is_processing"`
	StreamingMessageID string              `json:"streaming_message_id,omitempty"`
	Error              string              `json:"error,omitempty"`
}

// ListSessions handles GET /recordings/{recordingID}/sessions. Loading a
// recording with no sessions creates its first one, so the chat surface
// always has a session to write into.
func (h *ChatHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	recordingID := chi.URLParam(r, "recordingID")
	sessions, err := h.sessions.Load(r.Context(), recordingID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sessions)
}

// CreateSession handles POST /recordings/{recordingID}/sessions.
func (h *ChatHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	recordingID := chi.URLParam(r, "recordingID")

	var req CreateSessionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, fmt.Errorf("%w: invalid request body", app_errors.ErrValidation))
			return
		}
	}
	if err := validateRequest(req); err != nil {
		respondWithError(w, err)
		return
	}

	sess, err := h.sessions.Create(r.Context(), recordingID, engine.CreateSessionOptions{
		Title:    req.Title,
		Provider: req.Provider,
		Model:    req.Model,
	})
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, sess)
}

// EnsureSession handles POST /recordings/{recordingID}/sessions/ensure.
// Safe to call redundantly; an existing session is simply returned.
func (h *ChatHandler) EnsureSession(w http.ResponseWriter, r *http.Request) {
	recordingID := chi.URLParam(r, "recordingID")
	sess, err := h.sessions.GetOrCreate(r.Context(), recordingID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sess)
}

// CurrentSession handles GET /recordings/{recordingID}/sessions/current.
func (h *ChatHandler) CurrentSession(w http.ResponseWriter, r *http.Request) {
	recordingID := chi.URLParam(r, "recordingID")
	sess, ok := h.sessions.Current(recordingID)
	if !ok {
		respondWithError(w, app_errors.ErrNotFound)
		return
	}
	respondWithJSON(w, http.StatusOK, sess)
}

// SelectSession handles POST /sessions/{sessionID}/select. Selecting an
// unknown session is deliberately not an error.
func (h *ChatHandler) SelectSession(w http.ResponseWriter, r *http.Request) {
	h.sessions.Select(chi.URLParam(r, "sessionID"))
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// DeleteSession handles DELETE /sessions/{sessionID}. The engine
// cascades message deletion; local coordinator and tool state die with
// the session.
func (h *ChatHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.sessions.Delete(r.Context(), sessionID); err != nil {
		respondWithError(w, err)
		return
	}
	h.manager.Release(sessionID)
	h.binding.Release(sessionID)
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// UpdateSessionConfig handles PUT /sessions/{sessionID}/config.
func (h *ChatHandler) UpdateSessionConfig(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req UpdateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request body", app_errors.ErrValidation))
		return
	}

	if err := h.sessions.UpdateConfig(r.Context(), sessionID, req.Provider, req.Model); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// UpdateSessionTitle handles PUT /sessions/{sessionID}/title.
func (h *ChatHandler) UpdateSessionTitle(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req UpdateTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request body", app_errors.ErrValidation))
		return
	}
	if err := validateRequest(req); err != nil {
		respondWithError(w, err)
		return
	}

	if err := h.sessions.UpdateTitle(r.Context(), sessionID, req.Title); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// GetMessages handles GET /sessions/{sessionID}/messages, refreshing the
// mirror from the engine first.
func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if _, ok := h.sessions.Get(sessionID); !ok {
		respondWithError(w, app_errors.ErrNotFound)
		return
	}

	coordinator := h.manager.Get(sessionID)
	processing, streamingID, _ := coordinator.State()
	// While an exchange is in flight the local mirror is fresher than
	// storage; only reload when idle.
	if !processing {
		if err := coordinator.Load(r.Context()); err != nil {
			respondWithError(w, err)
			return
		}
	}

	processing, streamingID, lastError := coordinator.State()
	respondWithJSON(w, http.StatusOK, MessagesResponse{
		Messages:           coordinator.Messages(),
		IsProcessing:       processing,
		StreamingMessageID: streamingID,
		Error:              lastError,
	})
}

// SendMessage handles POST /sessions/{sessionID}/messages. The session
// must exist, its effective model must be ready, and only one exchange
// may be in flight at a time.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	sess, ok := h.sessions.Get(sessionID)
	if !ok {
		respondWithError(w, app_errors.ErrNotFound)
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request body", app_errors.ErrValidation))
		return
	}
	if err := validateRequest(req); err != nil {
		respondWithError(w, err)
		return
	}

	provider, modelID := h.modelconf.Resolve(sess)
	if modelID == "" {
		respondWithError(w, fmt.Errorf("%w: no model configured for this session", app_errors.ErrValidation))
		return
	}
	if !h.modelconf.Ready(modelID) {
		respondWithError(w, fmt.Errorf("%w: model %q is not initialized", app_errors.ErrUnavailable, modelID))
		return
	}

	selection, err := h.binding.Tools(r.Context(), sessionID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	toolIDs := make([]string, len(selection))
	for i, t := range selection {
		toolIDs[i] = t.ID
	}

	coordinator := h.manager.Get(sessionID)
	if err := coordinator.Send(r.Context(), req.Content, provider, modelID, toolIDs); err != nil {
		respondWithError(w, err)
		return
	}

	processing, streamingID, lastError := coordinator.State()
	respondWithJSON(w, http.StatusAccepted, MessagesResponse{
		Messages:           coordinator.Messages(),
		IsProcessing:       processing,
		StreamingMessageID: streamingID,
		Error:              lastError,
	})
}

// CancelMessage handles POST /sessions/{sessionID}/messages/cancel.
func (h *ChatHandler) CancelMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req CancelMessageRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, fmt.Errorf("%w: invalid request body", app_errors.ErrValidation))
			return
		}
	}

	coordinator := h.manager.Get(sessionID)
	if err := coordinator.Cancel(r.Context(), req.MessageID); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// ClearHistory handles DELETE /sessions/{sessionID}/messages.
func (h *ChatHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	coordinator := h.manager.Get(sessionID)
	if err := coordinator.ClearHistory(r.Context()); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// ListAllTools handles GET /tools.
func (h *ChatHandler) ListAllTools(w http.ResponseWriter, r *http.Request) {
	all, err := h.registry.Resolve(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, all)
}

// GetSessionTools handles GET /sessions/{sessionID}/tools.
func (h *ChatHandler) GetSessionTools(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	selection, err := h.binding.Tools(r.Context(), sessionID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, selection)
}

// SetSessionTools handles PUT /sessions/{sessionID}/tools. An empty
// tool_ids list is an explicit clear and stays cleared.
func (h *ChatHandler) SetSessionTools(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req SetToolsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request body", app_errors.ErrValidation))
		return
	}

	all, err := h.registry.Resolve(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	if err := h.binding.SetToolIDs(r.Context(), sessionID, req.ToolIDs, all); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}
