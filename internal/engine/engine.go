package engine

import (
	"context"

	"scribe-ai/core/internal/model"
)

// Engine is the RPC boundary to the recording/transcription engine. The
// engine owns model inference and persistent storage; this core consumes
// both as opaque services and never assumes anything about how records
// are stored.
type Engine interface {
	// Sessions.
	ListSessions(ctx context.Context, recordingID string) ([]model.ChatSession, error)
	GetOrCreateSession(ctx context.Context, recordingID string) (*model.ChatSession, error)
	CreateSession(ctx context.Context, recordingID string, opts CreateSessionOptions) (*model.ChatSession, error)
	UpdateSessionConfig(ctx context.Context, sessionID, provider, modelID string) error
	UpdateSessionTitle(ctx context.Context, sessionID, title string) error
	DeleteSession(ctx context.Context, sessionID string) error

	// Messages.
	GetMessages(ctx context.Context, sessionID string) ([]model.ChatMessage, error)
	SendMessage(ctx context.Context, req *SendMessageRequest) (*SendMessageResult, error)
	GetMessageStatus(ctx context.Context, messageID string) (*MessageStatusResult, error)
	CancelMessage(ctx context.Context, messageID string) error
	ClearSession(ctx context.Context, sessionID string) error

	// Models and process-wide configuration.
	GetDefaultModel(ctx context.Context) (*model.DefaultModelConfig, error)
	SetDefaultModel(ctx context.Context, cfg *model.DefaultModelConfig) error
	ListModels(ctx context.Context) ([]ModelInfo, error)
	InitializeModel(ctx context.Context, modelID string) error
	GetRecommendations(ctx context.Context) (*Recommendations, error)

	// Tools.
	ListUserTools(ctx context.Context) ([]model.Tool, error)
	GetSessionToolIDs(ctx context.Context, sessionID string) ([]string, error)
	SetSessionToolIDs(ctx context.Context, sessionID string, toolIDs []string) error

	// Retranscription.
	StartRetranscription(ctx context.Context, req *RetranscriptionRequest) error
	CancelRetranscription(ctx context.Context, recordingID string) error
	ReplaceTranscriptSegments(ctx context.Context, recordingID string, segments []model.TranscriptSegment) error
	UpdateRecordingMetadata(ctx context.Context, recordingID string, update *RecordingMetadataUpdate) error
}

// CreateSessionOptions carries the optional fields of an explicit
// session creation.
type CreateSessionOptions struct {
	Title    string `json:"title,omitempty"`
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
}

// SendMessageRequest dispatches one user message for processing.
type SendMessageRequest struct {
	SessionID string   `json:"session_id"`
	Content   string   `json:"content"`
	Provider  string   `json:"provider,omitempty"`
	Model     string   `json:"model,omitempty"`
	ToolIDs   []string `json:"tool_ids,omitempty"`
}

// SendMessageResult carries the authoritative IDs the engine assigned to
// the exchange. They supersede any locally generated placeholder IDs.
type SendMessageResult struct {
	UserMessageID       string `json:"user_message_id"`
	AssistantMessageID  string `json:"assistant_message_id"`
	UserSequenceID      int64  `json:"user_sequence_id"`
	AssistantSequenceID int64  `json:"assistant_sequence_id"`
}

// MessageStatusResult is the poll channel's authoritative view of an
// in-flight message.
type MessageStatusResult struct {
	Content string              `json:"content"`
	Status  model.MessageStatus `json:"status"`
	Error   string              `json:"error,omitempty"`
}

// ModelInfo describes one inference model known to the engine.
type ModelInfo struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`
	Name     string `json:"name"`
	// Ready is false for models that need an initialize call before use.
	Ready bool `json:"ready"`
}

// Recommendations is the engine's hardware-derived model guidance. It is
// fetched once per process and cached by the model configuration service.
type Recommendations struct {
	RecommendedModel    string   `json:"recommended_model"`
	RecommendedProvider string   `json:"recommended_provider"`
	AvailableMemoryMB   int64    `json:"available_memory_mb"`
	SupportedProviders  []string `json:"supported_providers"`
}

// RetranscriptionRequest starts a background re-transcription job.
type RetranscriptionRequest struct {
	RecordingID string `json:"recording_id"`
	AudioRef    string `json:"audio_ref"`
	ModelID     string `json:"model_id"`
	Language    string `json:"language,omitempty"`
	// DiarizationProvider selects the diarization backend for the run.
	// Empty means diarization is disabled.
	DiarizationProvider string `json:"diarization_provider,omitempty"`
}

// RecordingMetadataUpdate patches derived recording metadata after a job
// completes. Nil pointer fields are left untouched by the engine; a
// pointer to the empty string explicitly clears the field. The two cases
// are deliberately distinct on the wire.
type RecordingMetadataUpdate struct {
	ModelUsed           *string `json:"model_used,omitempty"`
	DiarizationProvider *string `json:"diarization_provider,omitempty"`
	Language            *string `json:"language,omitempty"`
}
