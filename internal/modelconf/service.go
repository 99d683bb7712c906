package modelconf

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"scribe-ai/core/internal/engine"
	app_errors "scribe-ai/core/internal/errors"
	"scribe-ai/core/internal/model"
)

// Service tracks the active inference configuration at two scopes: the
// per-session provider/model pair lives on the session record, and the
// process-wide default seeds sessions that carry none. It also gates
// sends on model readiness: a model that needs loading must be
// initialized before a send is allowed through.
type Service struct {
	engine engine.Engine

	mu        sync.Mutex
	def       *model.DefaultModelConfig
	ready     map[string]bool
	lastError string

	// rec is fetched from the engine once and then held for the life of
	// the process; the only invalidation trigger is a restart. Failed
	// fetches are not cached.
	rec *engine.Recommendations
}

func NewService(eng engine.Engine) *Service {
	return &Service{
		engine: eng,
		ready:  make(map[string]bool),
	}
}

// Init loads the persisted default model and seeds the readiness map
// from the engine's model list. Called once at startup; failures are
// logged, not fatal, since the user can still pick a model explicitly.
func (s *Service) Init(ctx context.Context) {
	def, err := s.engine.GetDefaultModel(ctx)
	if err != nil {
		slog.Warn("Could not load default model config", "error", err)
	}

	models, err := s.engine.ListModels(ctx)
	if err != nil {
		slog.Warn("Could not list models", "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.def = def
	for _, m := range models {
		s.ready[m.ID] = m.Ready
	}
}

// Default returns the process-wide default config, if set.
func (s *Service) Default() (model.DefaultModelConfig, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.def == nil {
		return model.DefaultModelConfig{}, false
	}
	return *s.def, true
}

// SetDefault persists a new process-wide default and mirrors it.
func (s *Service) SetDefault(ctx context.Context, cfg model.DefaultModelConfig) error {
	if err := s.engine.SetDefaultModel(ctx, &cfg); err != nil {
		return fmt.Errorf("could not persist default model: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.def = &cfg
	return nil
}

// Resolve picks the effective provider/model for a session: the
// session's own config first, then the process default, then unset. An
// unset result means the user has to choose explicitly before sending.
func (s *Service) Resolve(sess *model.ChatSession) (provider, modelID string) {
	if sess != nil && sess.Provider != "" {
		return sess.Provider, sess.Model
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.def != nil {
		return s.def.Provider, s.def.Model
	}
	return "", ""
}

// Ready reports whether a model can serve a send right now.
func (s *Service) Ready(modelID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready[modelID]
}

// EnsureReady initializes a model that is not ready yet. On failure the
// model stays unusable and the error is both surfaced to the caller and
// retained for the UI.
func (s *Service) EnsureReady(ctx context.Context, modelID string) error {
	if modelID == "" {
		return fmt.Errorf("%w: no model selected", app_errors.ErrValidation)
	}

	s.mu.Lock()
	if s.ready[modelID] {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if err := s.engine.InitializeModel(ctx, modelID); err != nil {
		s.mu.Lock()
		s.ready[modelID] = false
		s.lastError = err.Error()
		s.mu.Unlock()
		return fmt.Errorf("%w: model initialization failed: %v", app_errors.ErrUnavailable, err)
	}

	s.mu.Lock()
	s.ready[modelID] = true
	s.lastError = ""
	s.mu.Unlock()
	return nil
}

// LastError returns the most recent initialization failure, if any.
func (s *Service) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// ListModels passes the engine's model catalog through so UI pickers can
// populate, refreshing the readiness map as a side effect.
func (s *Service) ListModels(ctx context.Context) ([]engine.ModelInfo, error) {
	models, err := s.engine.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list models: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range models {
		s.ready[m.ID] = m.Ready
	}
	return models, nil
}

// Recommendations returns the engine's hardware-derived model guidance.
// The expensive probe behind it runs once; subsequent calls serve the
// cached result.
func (s *Service) Recommendations(ctx context.Context) (*engine.Recommendations, error) {
	s.mu.Lock()
	if s.rec != nil {
		rec := s.rec
		s.mu.Unlock()
		return rec, nil
	}
	s.mu.Unlock()

	rec, err := s.engine.GetRecommendations(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not fetch recommendations: %w", err)
	}

	s.mu.Lock()
	s.rec = rec
	s.mu.Unlock()
	return rec, nil
}
