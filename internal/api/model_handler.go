package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	app_errors "scribe-ai/core/internal/errors"
	"scribe-ai/core/internal/model"
	"scribe-ai/core/internal/modelconf"
)

// ModelHandler exposes model management and the process-wide default
// model configuration.
type ModelHandler struct {
	modelconf *modelconf.Service
}

func NewModelHandler(mc *modelconf.Service) *ModelHandler {
	return &ModelHandler{modelconf: mc}
}

// DefaultModelRequest is the DTO for updating the process-wide default.
type DefaultModelRequest struct {
	Provider string `json:"provider" validate:"required"`
	Model    string `json:"model" validate:"required"`
}

// ListModels handles GET /models.
func (h *ModelHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.modelconf.ListModels(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, models)
}

// GetDefaultModel handles GET /settings/default-model.
func (h *ModelHandler) GetDefaultModel(w http.ResponseWriter, r *http.Request) {
	cfg, ok := h.modelconf.Default()
	if !ok {
		respondWithError(w, app_errors.ErrNotFound)
		return
	}
	respondWithJSON(w, http.StatusOK, cfg)
}

// SetDefaultModel handles PUT /settings/default-model.
func (h *ModelHandler) SetDefaultModel(w http.ResponseWriter, r *http.Request) {
	var req DefaultModelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request body", app_errors.ErrValidation))
		return
	}
	if err := validateRequest(req); err != nil {
		respondWithError(w, err)
		return
	}

	cfg := model.DefaultModelConfig{Provider: req.Provider, Model: req.Model}
	if err := h.modelconf.SetDefault(r.Context(), cfg); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// InitializeModel handles POST /models/{modelID}/initialize. A model
// that needs loading becomes usable only after this succeeds.
func (h *ModelHandler) InitializeModel(w http.ResponseWriter, r *http.Request) {
	modelID := chi.URLParam(r, "modelID")
	if err := h.modelconf.EnsureReady(r.Context(), modelID); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// GetRecommendations handles GET /models/recommendations.
func (h *ModelHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	rec, err := h.modelconf.Recommendations(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, rec)
}
