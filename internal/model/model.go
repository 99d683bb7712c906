package model

import "time"

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MessageStatus is the lifecycle state of a single message.
// A message moves forward through pending -> streaming -> one of the
// terminal states and never back.
type MessageStatus string

const (
	StatusPending   MessageStatus = "pending"
	StatusStreaming MessageStatus = "streaming"
	StatusComplete  MessageStatus = "complete"
	StatusError     MessageStatus = "error"
	StatusCancelled MessageStatus = "cancelled"
)

// Terminal reports whether no further transitions are permitted.
func (s MessageStatus) Terminal() bool {
	switch s {
	case StatusComplete, StatusError, StatusCancelled:
		return true
	}
	return false
}

// Rank orders statuses along the forward direction of the lifecycle.
// Used by the merge rules: a status may only be replaced by one of
// equal or higher rank.
func (s MessageStatus) Rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusStreaming:
		return 1
	case StatusComplete, StatusError, StatusCancelled:
		return 2
	}
	return -1
}

// ChatSession is one conversation thread attached to a recording.
type ChatSession struct {
	ID          string    `json:"id"`
	RecordingID string    `json:"recording_id"`
	Title       string    `json:"title"`
	Provider    string    `json:"provider,omitempty"`
	Model       string    `json:"model,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ChatMessage is one turn in a session. The in-memory copy held by the
// coordinator is a mirror; the engine's stored record wins on conflict.
//
// Placeholder marks a message whose ID was assigned locally before the
// engine confirmed the send. Placeholder identity is an explicit flag,
// not an ID prefix convention.
type ChatMessage struct {
	ID          string        `json:"id"`
	SessionID   string        `json:"session_id"`
	Role        Role          `json:"role"`
	Content     string        `json:"content"`
	SequenceID  int64         `json:"sequence_id"`
	Status      MessageStatus `json:"status"`
	Error       string        `json:"error,omitempty"`
	Provider    string        `json:"provider,omitempty"`
	Model       string        `json:"model,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	Placeholder bool          `json:"-"`
}

// ToolSource says where a tool definition came from.
type ToolSource string

const (
	ToolSourceBuiltin ToolSource = "builtin"
	ToolSourceUser    ToolSource = "user"
	ToolSourceMCP     ToolSource = "mcp"
)

// Tool is one callable capability that can be exposed to the model
// during an exchange.
type Tool struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Source      ToolSource `json:"source"`
	// Server is the MCP server the tool was discovered from, empty for
	// builtin and user tools.
	Server string `json:"server,omitempty"`
	// Default marks tools that seed a fresh session's selection.
	Default bool `json:"default"`
}

// DefaultModelConfig is the process-wide provider/model pair used to
// seed sessions that carry no configuration of their own.
type DefaultModelConfig struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// JobStatus is the lifecycle state of a retranscription job.
type JobStatus string

const (
	JobIdle       JobStatus = "idle"
	JobLoading    JobStatus = "loading"
	JobProcessing JobStatus = "processing"
	JobDiarizing  JobStatus = "diarizing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Active reports whether the job is in a non-terminal, non-idle state.
func (s JobStatus) Active() bool {
	switch s {
	case JobLoading, JobProcessing, JobDiarizing:
		return true
	}
	return false
}

// Terminal reports whether the job has finished, one way or the other.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// RetranscriptionJob tracks one background re-transcription run. Jobs
// are keyed by recording ID and exist only in memory; at most one job
// is tracked per recording.
type RetranscriptionJob struct {
	RecordingID  string    `json:"recording_id"`
	Status       JobStatus `json:"status"`
	Progress     int       `json:"progress"`
	CurrentChunk int       `json:"current_chunk"`
	TotalChunks  int       `json:"total_chunks"`
	Message      string    `json:"message"`
	Error        string    `json:"error,omitempty"`
	ModelUsed    string    `json:"model_used,omitempty"`
}

// TranscriptSegment is one diarized span of a recording's transcript.
type TranscriptSegment struct {
	ID      string  `json:"id"`
	Speaker string  `json:"speaker,omitempty"`
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}
