package realtime

import (
	"sync"
	"time"
)

// ActivityTracker records the last-activity timestamp per session id. It is
// mutated on every inbound event and scanned only by the idle reaper.
type ActivityTracker struct {
	mu   sync.RWMutex
	seen map[string]time.Time
	now  func() time.Time
}

func NewActivityTracker() *ActivityTracker {
	return &ActivityTracker{
		seen: make(map[string]time.Time),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (t *ActivityTracker) Touch(sessionID string) {
	t.mu.Lock()
	t.seen[sessionID] = t.now()
	t.mu.Unlock()
}

func (t *ActivityTracker) Forget(sessionID string) {
	t.mu.Lock()
	delete(t.seen, sessionID)
	t.mu.Unlock()
}

func (t *ActivityTracker) Last(sessionID string) (time.Time, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	at, ok := t.seen[sessionID]
	return at, ok
}

// StaleIDs returns every session whose last activity is older than timeout.
func (t *ActivityTracker) StaleIDs(timeout time.Duration) []string {
	cutoff := t.now().Add(-timeout)

	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []string
	for id, at := range t.seen {
		if at.Before(cutoff) {
			out = append(out, id)
		}
	}
	return out
}

func (t *ActivityTracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.seen)
}
