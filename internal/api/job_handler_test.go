package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"scribe-ai/core/internal/api"
	"scribe-ai/core/internal/engine"
	"scribe-ai/core/internal/events"
	"scribe-ai/core/internal/model"
)

func TestJobEndpoints(t *testing.T) {
	startBody := api.RetranscribeRequest{AudioRef: "audio/rec-1.wav", ModelID: "whisper-large", Language: "en"}

	t.Run("Start - 202 and the job turns active", func(t *testing.T) {
		env := setupRouter(t)
		env.eng.On("StartRetranscription", mock.Anything, mock.MatchedBy(func(req *engine.RetranscriptionRequest) bool {
			return req.RecordingID == "rec-1" && req.ModelID == "whisper-large" && req.Language == "en"
		})).Return(nil).Once()

		rec := env.request(t, http.MethodPost, "/api/v1/recordings/rec-1/retranscribe", startBody)
		require.Equal(t, http.StatusAccepted, rec.Code)

		rec = env.request(t, http.MethodGet, "/api/v1/jobs/active", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"active":true}`, rec.Body.String())
	})

	t.Run("Start - missing model is 400", func(t *testing.T) {
		env := setupRouter(t)
		rec := env.request(t, http.MethodPost, "/api/v1/recordings/rec-1/retranscribe", api.RetranscribeRequest{AudioRef: "audio/rec-1.wav"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Status - untracked recording reports idle", func(t *testing.T) {
		env := setupRouter(t)
		rec := env.request(t, http.MethodGet, "/api/v1/recordings/rec-9/retranscribe", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var job model.RetranscriptionJob
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
		assert.Equal(t, model.JobIdle, job.Status)
	})

	t.Run("Status reflects pushed progress", func(t *testing.T) {
		env := setupRouter(t)
		env.dispatcher.Publish(events.JobProgressEvent{RecordingID: "rec-1", Status: model.JobProcessing, Progress: 40})

		rec := env.request(t, http.MethodGet, "/api/v1/recordings/rec-1/retranscribe", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var job model.RetranscriptionJob
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
		assert.Equal(t, model.JobProcessing, job.Status)
		assert.Equal(t, 40, job.Progress)
	})

	t.Run("Cancel", func(t *testing.T) {
		env := setupRouter(t)
		env.eng.On("StartRetranscription", mock.Anything, mock.Anything).Return(nil).Once()
		env.eng.On("CancelRetranscription", mock.Anything, "rec-1").Return(nil).Once()

		rec := env.request(t, http.MethodPost, "/api/v1/recordings/rec-1/retranscribe", startBody)
		require.Equal(t, http.StatusAccepted, rec.Code)

		rec = env.request(t, http.MethodPost, "/api/v1/recordings/rec-1/retranscribe/cancel", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.request(t, http.MethodGet, "/api/v1/jobs/active", nil)
		assert.JSONEq(t, `{"active":false}`, rec.Body.String())
	})
}
