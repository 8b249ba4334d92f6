package realtime

import "sync"

// Guard enforces at most one in-flight pipeline run per session. A losing
// caller drops its event; nothing is queued.
type Guard struct {
	mu   sync.Mutex
	busy map[string]bool
}

func NewGuard() *Guard {
	return &Guard{busy: make(map[string]bool)}
}

// TryAcquire returns false if a run is already in flight for the session.
func (g *Guard) TryAcquire(sessionID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy[sessionID] {
		return false
	}
	g.busy[sessionID] = true
	return true
}

func (g *Guard) Release(sessionID string) {
	g.mu.Lock()
	delete(g.busy, sessionID)
	g.mu.Unlock()
}

// Forget drops the latch entirely on session teardown.
func (g *Guard) Forget(sessionID string) {
	g.Release(sessionID)
}
