package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"scribe-ai/core/internal/engine"
	app_errors "scribe-ai/core/internal/errors"
	"scribe-ai/core/internal/model"
)

// Store owns the chat sessions of every open recording and tracks which
// session is current per recording. The engine's records are the source
// of truth; the store keeps a mirror ordered newest first and is the
// single writer of the "current session" property.
type Store struct {
	mu     sync.Mutex
	engine engine.Engine

	sessions map[string][]model.ChatSession // keyed by recording ID, newest first
	current  map[string]string              // recording ID -> current session ID
	loaded   map[string]bool                // auto-create ran for this recording

	group singleflight.Group
}

func NewStore(eng engine.Engine) *Store {
	return &Store{
		engine:   eng,
		sessions: make(map[string][]model.ChatSession),
		current:  make(map[string]string),
		loaded:   make(map[string]bool),
	}
}

// Load fetches a recording's sessions from the engine and refreshes the
// mirror. On the first load of a recording with no sessions it creates
// one, exactly once, so a chat surface always has a session to write
// into.
func (s *Store) Load(ctx context.Context, recordingID string) ([]model.ChatSession, error) {
	sessions, err := s.engine.ListSessions(ctx, recordingID)
	if err != nil {
		return nil, fmt.Errorf("could not list sessions: %w", err)
	}

	s.mu.Lock()
	firstLoad := !s.loaded[recordingID]
	s.loaded[recordingID] = true
	s.sessions[recordingID] = sessions
	if _, ok := s.current[recordingID]; !ok && len(sessions) > 0 {
		s.current[recordingID] = sessions[0].ID
	}
	s.mu.Unlock()

	if len(sessions) == 0 && firstLoad {
		created, err := s.GetOrCreate(ctx, recordingID)
		if err != nil {
			return nil, err
		}
		return []model.ChatSession{*created}, nil
	}
	return sessions, nil
}

// Sessions returns the mirrored list for a recording, newest first.
func (s *Store) Sessions(recordingID string) []model.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ChatSession, len(s.sessions[recordingID]))
	copy(out, s.sessions[recordingID])
	return out
}

// GetOrCreate returns the recording's existing session or creates one.
// Concurrent calls for the same recording collapse into a single engine
// request, so redundant callers all resolve to the same session.
func (s *Store) GetOrCreate(ctx context.Context, recordingID string) (*model.ChatSession, error) {
	v, err, _ := s.group.Do(recordingID, func() (interface{}, error) {
		return s.engine.GetOrCreateSession(ctx, recordingID)
	})
	if err != nil {
		return nil, fmt.Errorf("could not get or create session: %w", err)
	}
	sess := v.(*model.ChatSession)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.has(recordingID, sess.ID) {
		s.sessions[recordingID] = append([]model.ChatSession{*sess}, s.sessions[recordingID]...)
	}
	if _, ok := s.current[recordingID]; !ok {
		s.current[recordingID] = sess.ID
	}
	return sess, nil
}

// Create always makes a new session, prepends it and makes it current.
func (s *Store) Create(ctx context.Context, recordingID string, opts engine.CreateSessionOptions) (*model.ChatSession, error) {
	sess, err := s.engine.CreateSession(ctx, recordingID, opts)
	if err != nil {
		return nil, fmt.Errorf("could not create session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[recordingID] = append([]model.ChatSession{*sess}, s.sessions[recordingID]...)
	s.current[recordingID] = sess.ID
	return sess, nil
}

// Select changes the current session of its recording. Unknown IDs are a
// silent no-op so stale references from the UI never fault.
func (s *Store) Select(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for recordingID, list := range s.sessions {
		for _, sess := range list {
			if sess.ID == sessionID {
				s.current[recordingID] = sessionID
				return
			}
		}
	}
	slog.Debug("Ignoring select of unknown session", "session_id", sessionID)
}

// Current returns the current session for a recording, if any.
func (s *Store) Current(recordingID string) (*model.ChatSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.current[recordingID]
	if !ok {
		return nil, false
	}
	for _, sess := range s.sessions[recordingID] {
		if sess.ID == id {
			out := sess
			return &out, true
		}
	}
	return nil, false
}

// Get looks a session up by ID across all loaded recordings.
func (s *Store) Get(sessionID string) (*model.ChatSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, list := range s.sessions {
		for _, sess := range list {
			if sess.ID == sessionID {
				out := sess
				return &out, true
			}
		}
	}
	return nil, false
}

// Delete removes a session; the engine cascades the message deletion. If
// the deleted session was current, the next-newest remaining session is
// promoted, or no session if none remain.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.engine.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("could not delete session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for recordingID, list := range s.sessions {
		for i, sess := range list {
			if sess.ID != sessionID {
				continue
			}
			s.sessions[recordingID] = append(list[:i:i], list[i+1:]...)
			if s.current[recordingID] == sessionID {
				if remaining := s.sessions[recordingID]; len(remaining) > 0 {
					s.current[recordingID] = remaining[0].ID
				} else {
					delete(s.current, recordingID)
				}
			}
			return nil
		}
	}
	return nil
}

// UpdateConfig persists a provider/model change and mirrors it locally.
// A provider change discards the previous model selection; a model ID is
// not assumed valid across providers.
func (s *Store) UpdateConfig(ctx context.Context, sessionID, provider, modelID string) error {
	s.mu.Lock()
	sess, ok := s.find(sessionID)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: unknown session %s", app_errors.ErrNotFound, sessionID)
	}
	newProvider := sess.Provider
	newModel := sess.Model
	if provider != "" && provider != sess.Provider {
		newProvider = provider
		newModel = ""
	}
	if modelID != "" {
		newModel = modelID
	}
	s.mu.Unlock()

	if err := s.engine.UpdateSessionConfig(ctx, sessionID, newProvider, newModel); err != nil {
		return fmt.Errorf("could not update session config: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.find(sessionID); ok {
		sess.Provider = newProvider
		sess.Model = newModel
	}
	return nil
}

// UpdateTitle persists a title change and mirrors it locally.
func (s *Store) UpdateTitle(ctx context.Context, sessionID, title string) error {
	if err := s.engine.UpdateSessionTitle(ctx, sessionID, title); err != nil {
		return fmt.Errorf("could not update session title: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.find(sessionID); ok {
		sess.Title = title
	}
	return nil
}

// find returns a pointer into the mirrored slice. Callers must hold mu.
func (s *Store) find(sessionID string) (*model.ChatSession, bool) {
	for recordingID := range s.sessions {
		list := s.sessions[recordingID]
		for i := range list {
			if list[i].ID == sessionID {
				return &list[i], true
			}
		}
	}
	return nil, false
}

func (s *Store) has(recordingID, sessionID string) bool {
	for _, sess := range s.sessions[recordingID] {
		if sess.ID == sessionID {
			return true
		}
	}
	return false
}
