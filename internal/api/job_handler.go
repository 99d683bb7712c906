package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"scribe-ai/core/internal/engine"
	app_errors "scribe-ai/core/internal/errors"
	"scribe-ai/core/internal/jobs"
	"scribe-ai/core/internal/model"
)

// JobHandler exposes the retranscription job tracker.
type JobHandler struct {
	tracker *jobs.Tracker
}

func NewJobHandler(tracker *jobs.Tracker) *JobHandler {
	return &JobHandler{tracker: tracker}
}

// RetranscribeRequest is the DTO for starting a retranscription job.
type RetranscribeRequest struct {
	AudioRef            string `json:"audio_ref" validate:"required"`
	ModelID             string `json:"model_id" validate:"required"`
	Language            string `json:"language"`
	DiarizationProvider string `json:"diarization_provider"`
}

// ActiveResponse reports whether any tracked job is still running.
type ActiveResponse struct {
	Active bool `json:"active"`
}

// Start handles POST /recordings/{recordingID}/retranscribe.
func (h *JobHandler) Start(w http.ResponseWriter, r *http.Request) {
	recordingID := chi.URLParam(r, "recordingID")

	var req RetranscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request body", app_errors.ErrValidation))
		return
	}
	if err := validateRequest(req); err != nil {
		respondWithError(w, err)
		return
	}

	err := h.tracker.Start(r.Context(), &engine.RetranscriptionRequest{
		RecordingID:         recordingID,
		AudioRef:            req.AudioRef,
		ModelID:             req.ModelID,
		Language:            req.Language,
		DiarizationProvider: req.DiarizationProvider,
	})
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusAccepted, StatusResponse{Status: "started"})
}

// Cancel handles POST /recordings/{recordingID}/retranscribe/cancel.
func (h *JobHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	recordingID := chi.URLParam(r, "recordingID")
	if err := h.tracker.Cancel(r.Context(), recordingID); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// Status handles GET /recordings/{recordingID}/retranscribe. A recording
// with no tracked job reports idle.
func (h *JobHandler) Status(w http.ResponseWriter, r *http.Request) {
	recordingID := chi.URLParam(r, "recordingID")
	job, ok := h.tracker.Job(recordingID)
	if !ok {
		job = model.RetranscriptionJob{RecordingID: recordingID, Status: model.JobIdle}
	}
	respondWithJSON(w, http.StatusOK, job)
}

// Active handles GET /jobs/active.
func (h *JobHandler) Active(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, ActiveResponse{Active: h.tracker.IsActive()})
}
