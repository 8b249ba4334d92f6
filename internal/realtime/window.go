package realtime

import "sync"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Turn struct {
	Role Role
	Text string
}

// WindowStore keeps the bounded per-session conversation window fed to the
// response generator. Turns are appended as (user, assistant) exchanges and
// trimmed from the front in the same pairs, so role alternation stays intact.
type WindowStore struct {
	mu       sync.Mutex
	maxTurns int
	turns    map[string][]Turn
}

func NewWindowStore(maxTurns int) *WindowStore {
	if maxTurns <= 0 {
		maxTurns = 20
	}
	// keep pair trimming well defined
	if maxTurns%2 != 0 {
		maxTurns++
	}
	return &WindowStore{maxTurns: maxTurns, turns: make(map[string][]Turn)}
}

// AppendExchange records one completed round.
func (w *WindowStore) AppendExchange(sessionID, userText, assistantText string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	turns := append(w.turns[sessionID],
		Turn{Role: RoleUser, Text: userText},
		Turn{Role: RoleAssistant, Text: assistantText},
	)
	for len(turns) > w.maxTurns {
		turns = turns[2:]
	}
	w.turns[sessionID] = turns
}

// History returns a copy of the session's window, oldest first.
func (w *WindowStore) History(sessionID string) []Turn {
	w.mu.Lock()
	defer w.mu.Unlock()

	turns := w.turns[sessionID]
	if len(turns) == 0 {
		return nil
	}
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

func (w *WindowStore) Clear(sessionID string) {
	w.mu.Lock()
	delete(w.turns, sessionID)
	w.mu.Unlock()
}

func (w *WindowStore) Len(sessionID string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.turns[sessionID])
}
