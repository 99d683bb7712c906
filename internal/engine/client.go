package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	app_errors "scribe-ai/core/internal/errors"
	"scribe-ai/core/internal/model"
)

// Client is the HTTP implementation of the Engine interface. Every call
// is a plain JSON request/response against the engine's API; streaming
// state arrives separately over the event subscription.
type Client struct {
	client *http.Client
	url    string
}

func NewClient(url string) *Client {
	return &Client{
		client: &http.Client{Timeout: 30 * time.Second},
		url:    url,
	}
}

// do issues a JSON request and decodes the response body into out when
// out is non-nil. A 404 is translated to the application-level not-found
// sentinel so callers can use errors.Is.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("could not marshal request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url+path, reader)
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("engine request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return app_errors.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("engine returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("could not decode engine response: %w", err)
		}
	}
	return nil
}

func (c *Client) ListSessions(ctx context.Context, recordingID string) ([]model.ChatSession, error) {
	var sessions []model.ChatSession
	err := c.do(ctx, http.MethodGet, "/api/v1/recordings/"+recordingID+"/sessions", nil, &sessions)
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (c *Client) GetOrCreateSession(ctx context.Context, recordingID string) (*model.ChatSession, error) {
	var session model.ChatSession
	err := c.do(ctx, http.MethodPost, "/api/v1/recordings/"+recordingID+"/sessions/ensure", nil, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) CreateSession(ctx context.Context, recordingID string, opts CreateSessionOptions) (*model.ChatSession, error) {
	var session model.ChatSession
	err := c.do(ctx, http.MethodPost, "/api/v1/recordings/"+recordingID+"/sessions", opts, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) UpdateSessionConfig(ctx context.Context, sessionID, provider, modelID string) error {
	payload := map[string]string{"provider": provider, "model": modelID}
	return c.do(ctx, http.MethodPut, "/api/v1/sessions/"+sessionID+"/config", payload, nil)
}

func (c *Client) UpdateSessionTitle(ctx context.Context, sessionID, title string) error {
	payload := map[string]string{"title": title}
	return c.do(ctx, http.MethodPut, "/api/v1/sessions/"+sessionID+"/title", payload, nil)
}

func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/sessions/"+sessionID, nil, nil)
}

func (c *Client) GetMessages(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage
	err := c.do(ctx, http.MethodGet, "/api/v1/sessions/"+sessionID+"/messages", nil, &messages)
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (c *Client) SendMessage(ctx context.Context, req *SendMessageRequest) (*SendMessageResult, error) {
	var result SendMessageResult
	err := c.do(ctx, http.MethodPost, "/api/v1/sessions/"+req.SessionID+"/messages", req, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetMessageStatus returns nil without error when the engine no longer
// knows the message. Callers treat that as "nothing to reconcile".
func (c *Client) GetMessageStatus(ctx context.Context, messageID string) (*MessageStatusResult, error) {
	var status MessageStatusResult
	err := c.do(ctx, http.MethodGet, "/api/v1/messages/"+messageID+"/status", nil, &status)
	if err != nil {
		if errors.Is(err, app_errors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &status, nil
}

func (c *Client) CancelMessage(ctx context.Context, messageID string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/messages/"+messageID+"/cancel", nil, nil)
}

func (c *Client) ClearSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/sessions/"+sessionID+"/messages", nil, nil)
}

func (c *Client) GetDefaultModel(ctx context.Context) (*model.DefaultModelConfig, error) {
	var cfg model.DefaultModelConfig
	err := c.do(ctx, http.MethodGet, "/api/v1/settings/default-model", nil, &cfg)
	if err != nil {
		if errors.Is(err, app_errors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

func (c *Client) SetDefaultModel(ctx context.Context, cfg *model.DefaultModelConfig) error {
	return c.do(ctx, http.MethodPut, "/api/v1/settings/default-model", cfg, nil)
}

func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	var models []ModelInfo
	err := c.do(ctx, http.MethodGet, "/api/v1/models", nil, &models)
	if err != nil {
		return nil, err
	}
	return models, nil
}

func (c *Client) InitializeModel(ctx context.Context, modelID string) error {
	payload := map[string]string{"model": modelID}
	return c.do(ctx, http.MethodPost, "/api/v1/models/initialize", payload, nil)
}

func (c *Client) GetRecommendations(ctx context.Context) (*Recommendations, error) {
	var rec Recommendations
	err := c.do(ctx, http.MethodGet, "/api/v1/models/recommendations", nil, &rec)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) ListUserTools(ctx context.Context) ([]model.Tool, error) {
	var tools []model.Tool
	err := c.do(ctx, http.MethodGet, "/api/v1/tools", nil, &tools)
	if err != nil {
		return nil, err
	}
	return tools, nil
}

func (c *Client) GetSessionToolIDs(ctx context.Context, sessionID string) ([]string, error) {
	var result struct {
		ToolIDs []string `json:"tool_ids"`
	}
	err := c.do(ctx, http.MethodGet, "/api/v1/sessions/"+sessionID+"/tools", nil, &result)
	if err != nil {
		return nil, err
	}
	return result.ToolIDs, nil
}

func (c *Client) SetSessionToolIDs(ctx context.Context, sessionID string, toolIDs []string) error {
	payload := map[string][]string{"tool_ids": toolIDs}
	return c.do(ctx, http.MethodPut, "/api/v1/sessions/"+sessionID+"/tools", payload, nil)
}

func (c *Client) StartRetranscription(ctx context.Context, req *RetranscriptionRequest) error {
	return c.do(ctx, http.MethodPost, "/api/v1/recordings/"+req.RecordingID+"/retranscribe", req, nil)
}

func (c *Client) CancelRetranscription(ctx context.Context, recordingID string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/recordings/"+recordingID+"/retranscribe/cancel", nil, nil)
}

func (c *Client) ReplaceTranscriptSegments(ctx context.Context, recordingID string, segments []model.TranscriptSegment) error {
	payload := map[string]interface{}{"segments": segments}
	return c.do(ctx, http.MethodPut, "/api/v1/recordings/"+recordingID+"/segments", payload, nil)
}

func (c *Client) UpdateRecordingMetadata(ctx context.Context, recordingID string, update *RecordingMetadataUpdate) error {
	return c.do(ctx, http.MethodPatch, "/api/v1/recordings/"+recordingID+"/metadata", update, nil)
}
