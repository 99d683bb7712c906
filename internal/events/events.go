package events

import "scribe-ai/core/internal/model"

// EventType discriminates the push notifications the engine emits.
type EventType string

const (
	TypeMessageStream   EventType = "message.stream"
	TypeMessageComplete EventType = "message.complete"
	TypeJobProgress     EventType = "job.progress"
	TypeJobComplete     EventType = "job.complete"
)

// Event is one push notification from the engine.
type Event interface {
	Type() EventType
}

// MessageStreamEvent carries the cumulative content streamed so far for
// one in-flight assistant message.
type MessageStreamEvent struct {
	SessionID string `json:"session_id"`
	MessageID string `json:"message_id"`
	Content   string `json:"content"`
}

func (MessageStreamEvent) Type() EventType { return TypeMessageStream }

// MessageCompleteEvent is the terminal notification for one message.
// The content it implies is not trusted as final; the coordinator
// reloads the stored record instead.
type MessageCompleteEvent struct {
	SessionID string              `json:"session_id"`
	MessageID string              `json:"message_id"`
	Status    model.MessageStatus `json:"status"`
	Error     string              `json:"error,omitempty"`
}

func (MessageCompleteEvent) Type() EventType { return TypeMessageComplete }

// JobProgressEvent reports incremental progress of a retranscription job.
type JobProgressEvent struct {
	RecordingID  string          `json:"recording_id"`
	Status       model.JobStatus `json:"status"`
	Progress     int             `json:"progress"`
	CurrentChunk int             `json:"current_chunk"`
	TotalChunks  int             `json:"total_chunks"`
	Message      string          `json:"message"`
}

func (JobProgressEvent) Type() EventType { return TypeJobProgress }

// JobCompleteEvent is the single terminal notification for a
// retranscription job. DiarizationProvider is nil when the run had no
// diarization configured.
type JobCompleteEvent struct {
	RecordingID         string                    `json:"recording_id"`
	Success             bool                      `json:"success"`
	Segments            []model.TranscriptSegment `json:"segments,omitempty"`
	Error               string                    `json:"error,omitempty"`
	ModelUsed           string                    `json:"model_used,omitempty"`
	DiarizationProvider *string                   `json:"diarization_provider,omitempty"`
	Language            string                    `json:"language,omitempty"`
}

func (JobCompleteEvent) Type() EventType { return TypeJobComplete }
