package tools

import (
	"context"
	"fmt"
	"sync"

	"scribe-ai/core/internal/engine"
	"scribe-ai/core/internal/model"
)

// Binding holds the per-session tool selection. Selections are persisted
// through the engine and mirrored here optimistically; a failed persist
// reverts the mirror so the two never drift apart silently.
//
// An explicit clear is sticky: once the user empties a session's
// selection, default tools are not re-applied for that session until its
// identity changes (release or deletion).
type Binding struct {
	mu       sync.Mutex
	engine   engine.Engine
	registry *Registry

	selections map[string][]model.Tool
	loaded     map[string]bool
	cleared    map[string]bool
}

func NewBinding(eng engine.Engine, registry *Registry) *Binding {
	return &Binding{
		engine:     eng,
		registry:   registry,
		selections: make(map[string][]model.Tool),
		loaded:     make(map[string]bool),
		cleared:    make(map[string]bool),
	}
}

// Tools returns the resolved selection for a session, loading it from
// the engine on first access. A session that has no persisted selection
// and was never explicitly cleared is seeded from the default tool set.
func (b *Binding) Tools(ctx context.Context, sessionID string) ([]model.Tool, error) {
	b.mu.Lock()
	if b.loaded[sessionID] {
		selection := b.copySelection(sessionID)
		cleared := b.cleared[sessionID]
		b.mu.Unlock()
		if len(selection) == 0 && !cleared {
			return b.initDefaults(ctx, sessionID)
		}
		return selection, nil
	}
	b.mu.Unlock()

	ids, err := b.engine.GetSessionToolIDs(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("could not load session tools: %w", err)
	}
	all, err := b.registry.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	selection := filterByIDs(all, ids)

	b.mu.Lock()
	b.loaded[sessionID] = true
	b.selections[sessionID] = selection
	cleared := b.cleared[sessionID]
	b.mu.Unlock()

	if len(selection) == 0 && !cleared {
		return b.initDefaults(ctx, sessionID)
	}
	return b.copyOf(selection), nil
}

// SetToolIDs persists a new selection and mirrors it by filtering the
// caller-supplied tool universe, avoiding an extra resolve round trip.
// An empty selection records the user's explicit clear intent.
func (b *Binding) SetToolIDs(ctx context.Context, sessionID string, ids []string, allKnown []model.Tool) error {
	selection := filterByIDs(allKnown, ids)

	b.mu.Lock()
	previous := b.copySelection(sessionID)
	previousCleared := b.cleared[sessionID]
	b.selections[sessionID] = selection
	b.loaded[sessionID] = true
	b.cleared[sessionID] = len(ids) == 0
	b.mu.Unlock()

	if err := b.engine.SetSessionToolIDs(ctx, sessionID, ids); err != nil {
		// Compensating reversal: drop the optimistic state again.
		b.mu.Lock()
		b.selections[sessionID] = previous
		b.cleared[sessionID] = previousCleared
		b.mu.Unlock()
		return fmt.Errorf("could not persist tool selection: %w", err)
	}
	return nil
}

// ClearAll empties the session's selection and pins the sticky clear
// flag so defaults are not re-applied behind the user's back.
func (b *Binding) ClearAll(ctx context.Context, sessionID string) error {
	return b.SetToolIDs(ctx, sessionID, nil, nil)
}

// Release forgets a session's local selection state. The sticky clear
// flag is scoped to a session identity and dies with it.
func (b *Binding) Release(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.selections, sessionID)
	delete(b.loaded, sessionID)
	delete(b.cleared, sessionID)
}

// initDefaults seeds a session's selection from the registry's default
// set. It re-checks the sticky clear flag under the lock because an
// explicit clear may have raced the load.
func (b *Binding) initDefaults(ctx context.Context, sessionID string) ([]model.Tool, error) {
	defaults, err := b.registry.Defaults(ctx)
	if err != nil {
		return nil, err
	}
	if len(defaults) == 0 {
		return nil, nil
	}

	b.mu.Lock()
	if b.cleared[sessionID] || len(b.selections[sessionID]) > 0 {
		selection := b.copySelection(sessionID)
		b.mu.Unlock()
		return selection, nil
	}
	b.mu.Unlock()

	ids := make([]string, len(defaults))
	for i, t := range defaults {
		ids[i] = t.ID
	}
	if err := b.SetToolIDs(ctx, sessionID, ids, defaults); err != nil {
		return nil, err
	}
	return defaults, nil
}

// copySelection returns a copy of the stored selection. Callers must
// hold mu.
func (b *Binding) copySelection(sessionID string) []model.Tool {
	return b.copyOf(b.selections[sessionID])
}

func (b *Binding) copyOf(selection []model.Tool) []model.Tool {
	out := make([]model.Tool, len(selection))
	copy(out, selection)
	return out
}

func filterByIDs(tools []model.Tool, ids []string) []model.Tool {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	selection := make([]model.Tool, 0, len(ids))
	for _, t := range tools {
		if want[t.ID] {
			selection = append(selection, t)
		}
	}
	return selection
}
