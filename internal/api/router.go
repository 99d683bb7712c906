package api

import (
	"net/http"
	"time"

	// This blank import is required by swaggo to find the API definitions.
	_ "scribe-ai/core/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter creates and configures the chi router with all routes.
func NewRouter(chatHandler *ChatHandler, modelHandler *ModelHandler, jobHandler *JobHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/swagger/*", httpSwagger.WrapHandler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		// Sessions, scoped by recording.
		r.Get("/recordings/{recordingID}/sessions", chatHandler.ListSessions)
		r.Post("/recordings/{recordingID}/sessions", chatHandler.CreateSession)
		r.Post("/recordings/{recordingID}/sessions/ensure", chatHandler.EnsureSession)
		r.Get("/recordings/{recordingID}/sessions/current", chatHandler.CurrentSession)

		// Session operations.
		r.Post("/sessions/{sessionID}/select", chatHandler.SelectSession)
		r.Delete("/sessions/{sessionID}", chatHandler.DeleteSession)
		r.Put("/sessions/{sessionID}/config", chatHandler.UpdateSessionConfig)
		r.Put("/sessions/{sessionID}/title", chatHandler.UpdateSessionTitle)

		// Messages.
		r.Get("/sessions/{sessionID}/messages", chatHandler.GetMessages)
		r.Post("/sessions/{sessionID}/messages", chatHandler.SendMessage)
		r.Post("/sessions/{sessionID}/messages/cancel", chatHandler.CancelMessage)
		r.Delete("/sessions/{sessionID}/messages", chatHandler.ClearHistory)

		// Tools.
		r.Get("/tools", chatHandler.ListAllTools)
		r.Get("/sessions/{sessionID}/tools", chatHandler.GetSessionTools)
		r.Put("/sessions/{sessionID}/tools", chatHandler.SetSessionTools)

		// Models.
		r.Get("/models", modelHandler.ListModels)
		r.Get("/models/recommendations", modelHandler.GetRecommendations)
		r.Post("/models/{modelID}/initialize", modelHandler.InitializeModel)
		r.Get("/settings/default-model", modelHandler.GetDefaultModel)
		r.Put("/settings/default-model", modelHandler.SetDefaultModel)

		// Retranscription jobs.
		r.Post("/recordings/{recordingID}/retranscribe", jobHandler.Start)
		r.Post("/recordings/{recordingID}/retranscribe/cancel", jobHandler.Cancel)
		r.Get("/recordings/{recordingID}/retranscribe", jobHandler.Status)
		r.Get("/jobs/active", jobHandler.Active)
	})

	return r
}
