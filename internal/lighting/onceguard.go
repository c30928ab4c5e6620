package lighting

import "sync"

// OnceGuard tracks which lights have already been adjusted during their
// current on-session, for only_once mode. The guard is set after a
// successful apply and reset when the light starts a new session.
type OnceGuard struct {
	mu      sync.Mutex
	applied map[string]bool
}

// NewOnceGuard creates a new once guard
func NewOnceGuard() *OnceGuard {
	return &OnceGuard{
		applied: make(map[string]bool),
	}
}

// ShouldApply reports whether the entity still awaits its per-session apply
func (g *OnceGuard) ShouldApply(entityID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.applied[entityID]
}

// MarkApplied records a successful apply for the entity's current session
func (g *OnceGuard) MarkApplied(entityID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.applied[entityID] = true
}

// Reset clears the guard for an entity, starting a new session
func (g *OnceGuard) Reset(entityID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.applied, entityID)
}
