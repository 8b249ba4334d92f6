package realtime

import (
	"sync"
	"time"
)

// Session is one live assistant call. Conns are the room participants keyed
// by peer id; the peer resource is created lazily on first negotiation.
type Session struct {
	ID             string
	ExternalCallID string
	UserID         string
	CreatedAt      time.Time

	mu         sync.Mutex
	conns      map[string]Conn
	peer       Peer
	greeted    bool
	greetTimer *time.Timer
	closed     bool
}

// attach binds a connection for peerID, superseding (and closing) any prior
// connection for the same peer.
func (s *Session) attach(peerID string, conn Conn) {
	s.mu.Lock()
	old := s.conns[peerID]
	s.conns[peerID] = conn
	s.mu.Unlock()

	if old != nil && old != conn {
		_ = old.Close()
	}
}

// EnsurePeer creates the peer resource on first use. Repeated calls return
// the existing one.
func (s *Session) EnsurePeer(factory PeerFactory) (Peer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.peer != nil {
		return s.peer, nil
	}
	peer, err := factory.NewPeer(s.ID)
	if err != nil {
		return nil, err
	}
	s.peer = peer
	return peer, nil
}

func (s *Session) PeerResource() Peer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peer
}

// Broadcast sends to every participant.
func (s *Session) Broadcast(event string, data any) {
	for _, conn := range s.connsSnapshot() {
		_ = conn.Send(event, data)
	}
}

// Relay sends to every participant except the originating peer.
func (s *Session) Relay(fromPeerID, event string, data any) {
	s.mu.Lock()
	targets := make([]Conn, 0, len(s.conns))
	for id, conn := range s.conns {
		if id != fromPeerID {
			targets = append(targets, conn)
		}
	}
	s.mu.Unlock()

	for _, conn := range targets {
		_ = conn.Send(event, data)
	}
}

func (s *Session) connsSnapshot() []Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Conn, 0, len(s.conns))
	for _, conn := range s.conns {
		out = append(out, conn)
	}
	return out
}

// ScheduleGreeting arms the one-shot greeting timer. It fires at most once
// per session and is cancelled by Close, so it can never fire into a
// destroyed session.
func (s *Session) ScheduleGreeting(delay time.Duration, fire func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.greeted || s.closed {
		return
	}
	s.greeted = true
	s.greetTimer = time.AfterFunc(delay, fire)
}

// Close tears down the peer resource, the greeting timer, and every
// connection. Idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	timer := s.greetTimer
	peer := s.peer
	conns := make([]Conn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.conns = map[string]Conn{}
	s.peer = nil
	s.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	if peer != nil {
		_ = peer.Close()
	}
	for _, c := range conns {
		_ = c.Close()
	}
}

// Registry is the authoritative map of live sessions. Only map mutations are
// serialized; unrelated sessions never block each other beyond that.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Register returns the session for sessionID, creating it if absent, and
// binds conn for peerID. existed reports whether the session already lived.
func (r *Registry) Register(sessionID, peerID string, conn Conn) (s *Session, existed bool) {
	r.mu.Lock()
	s, existed = r.sessions[sessionID]
	if !existed {
		s = &Session{
			ID:        sessionID,
			CreatedAt: time.Now().UTC(),
			conns:     make(map[string]Conn),
		}
		r.sessions[sessionID] = s
	}
	r.mu.Unlock()

	if conn != nil {
		s.attach(peerID, conn)
	}
	return s, existed
}

func (r *Registry) Lookup(sessionID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sessionID]
	return s, ok
}

// Unregister removes and returns the session, or nil if absent. Removing an
// absent id is a no-op, not an error.
func (r *Registry) Unregister(sessionID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.sessions[sessionID]
	delete(r.sessions, sessionID)
	return s
}

// FindByConn resolves a transport disconnect back to its session, matched by
// connection handle rather than session id.
func (r *Registry) FindByConn(conn Conn) (sessionID, peerID string, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		s.mu.Lock()
		for pid, c := range s.conns {
			if c == conn {
				s.mu.Unlock()
				return s.ID, pid, true
			}
		}
		s.mu.Unlock()
	}
	return "", "", false
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
