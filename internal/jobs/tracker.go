package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"scribe-ai/core/internal/engine"
	"scribe-ai/core/internal/events"
	"scribe-ai/core/internal/model"
)

// Observer is notified when a job reaches a terminal state. Observers
// form an explicit ordered list; every registered observer is called, in
// registration order, so two interested consumers never shadow each
// other.
type Observer func(job model.RetranscriptionJob)

// Tracker follows background re-transcription jobs, one per recording.
// Progress arrives purely over the push channel; there is no poll
// fallback here because the engine delivers exactly one terminal event
// per job. Starting a new job for a recording resets whatever terminal
// state the previous one left behind.
type Tracker struct {
	engine engine.Engine

	mu        sync.Mutex
	jobs      map[string]model.RetranscriptionJob
	observers []observerEntry
	nextID    int

	unsubs []func()
}

type observerEntry struct {
	id int
	fn Observer
}

func NewTracker(eng engine.Engine, dispatcher *events.Dispatcher) *Tracker {
	t := &Tracker{
		engine: eng,
		jobs:   make(map[string]model.RetranscriptionJob),
	}
	t.unsubs = append(t.unsubs,
		dispatcher.Subscribe(events.TypeJobProgress, func(e events.Event) {
			if ev, ok := e.(events.JobProgressEvent); ok {
				t.handleProgress(ev)
			}
		}),
		dispatcher.Subscribe(events.TypeJobComplete, func(e events.Event) {
			if ev, ok := e.(events.JobCompleteEvent); ok {
				t.handleComplete(ev)
			}
		}),
	)
	return t
}

// Start resets the tracked state for a recording and dispatches the job.
// A dispatch failure is recorded as an immediately failed job.
func (t *Tracker) Start(ctx context.Context, req *engine.RetranscriptionRequest) error {
	t.mu.Lock()
	t.jobs[req.RecordingID] = model.RetranscriptionJob{
		RecordingID: req.RecordingID,
		Status:      model.JobLoading,
		Message:     "Loading audio",
	}
	t.mu.Unlock()

	if err := t.engine.StartRetranscription(ctx, req); err != nil {
		t.mu.Lock()
		job := t.jobs[req.RecordingID]
		job.Status = model.JobFailed
		job.Error = err.Error()
		t.jobs[req.RecordingID] = job
		t.mu.Unlock()
		return fmt.Errorf("could not start retranscription: %w", err)
	}
	return nil
}

// Cancel asks the engine to stop the job, then optimistically marks it
// failed locally without waiting for a confirming event.
func (t *Tracker) Cancel(ctx context.Context, recordingID string) error {
	if err := t.engine.CancelRetranscription(ctx, recordingID); err != nil {
		return fmt.Errorf("could not cancel retranscription: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	job := t.jobs[recordingID]
	job.RecordingID = recordingID
	job.Status = model.JobFailed
	job.Error = "cancelled by user"
	t.jobs[recordingID] = job
	return nil
}

// Job returns the tracked state for a recording.
func (t *Tracker) Job(recordingID string) (model.RetranscriptionJob, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	job, ok := t.jobs[recordingID]
	return job, ok
}

// IsActive reports whether any tracked job is still running.
func (t *Tracker) IsActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, job := range t.jobs {
		if job.Status.Active() {
			return true
		}
	}
	return false
}

// AddObserver registers a terminal-state observer and returns its
// removal function.
func (t *Tracker) AddObserver(o Observer) (remove func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	t.observers = append(t.observers, observerEntry{id: id, fn: o})

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		for i, entry := range t.observers {
			if entry.id == id {
				t.observers = append(t.observers[:i:i], t.observers[i+1:]...)
				return
			}
		}
	}
}

// Close unhooks the tracker from the event dispatcher.
func (t *Tracker) Close() {
	for _, unsub := range t.unsubs {
		unsub()
	}
	t.unsubs = nil
}

func (t *Tracker) handleProgress(e events.JobProgressEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	job, ok := t.jobs[e.RecordingID]
	if !ok {
		// Progress for a job started by another frontend instance; track
		// it anyway so the UI can render it.
		job = model.RetranscriptionJob{RecordingID: e.RecordingID}
	}
	if job.Status.Terminal() {
		return
	}
	job.Status = e.Status
	job.Progress = e.Progress
	job.CurrentChunk = e.CurrentChunk
	job.TotalChunks = e.TotalChunks
	job.Message = e.Message
	t.jobs[e.RecordingID] = job
}

// handleComplete persists the job's results, marks the terminal state
// and notifies observers. On success the new segments replace any prior
// ones and derived recording metadata is updated; the diarization
// provider field is explicitly cleared when the run had none, never left
// at a stale value.
func (t *Tracker) handleComplete(e events.JobCompleteEvent) {
	t.mu.Lock()
	job, ok := t.jobs[e.RecordingID]
	if ok && job.Status.Terminal() {
		t.mu.Unlock()
		return
	}
	job.RecordingID = e.RecordingID
	t.mu.Unlock()

	if e.Success {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := t.engine.ReplaceTranscriptSegments(ctx, e.RecordingID, e.Segments); err != nil {
			slog.Error("Could not persist transcript segments", "recording_id", e.RecordingID, "error", err)
			t.finish(job, model.JobFailed, fmt.Sprintf("could not persist transcript: %v", err), "")
			return
		}

		diarization := ""
		if e.DiarizationProvider != nil {
			diarization = *e.DiarizationProvider
		}
		update := &engine.RecordingMetadataUpdate{
			ModelUsed:           &e.ModelUsed,
			DiarizationProvider: &diarization,
		}
		if e.Language != "" {
			update.Language = &e.Language
		}
		if err := t.engine.UpdateRecordingMetadata(ctx, e.RecordingID, update); err != nil {
			slog.Warn("Could not update recording metadata", "recording_id", e.RecordingID, "error", err)
		}

		job.ModelUsed = e.ModelUsed
		t.finish(job, model.JobCompleted, "", "Retranscription complete")
		return
	}

	t.finish(job, model.JobFailed, e.Error, "")
}

func (t *Tracker) finish(job model.RetranscriptionJob, status model.JobStatus, errMsg, message string) {
	job.Status = status
	job.Error = errMsg
	if message != "" {
		job.Message = message
	}
	if status == model.JobCompleted {
		job.Progress = 100
	}

	t.mu.Lock()
	t.jobs[job.RecordingID] = job
	observers := make([]observerEntry, len(t.observers))
	copy(observers, t.observers)
	t.mu.Unlock()

	for _, entry := range observers {
		entry.fn(job)
	}
}
