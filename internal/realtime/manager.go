package realtime

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Manager terminates the client-facing signaling protocol. It owns the
// mapping from transport connection to session and drives the pipeline.
type Manager struct {
	cfg Config
	log *logrus.Logger

	registry *Registry
	activity *ActivityTracker
	guard    *Guard
	windows  *WindowStore
	pipeline *Orchestrator
	peers    PeerFactory
	calls    CallStore // optional
}

func NewManager(cfg Config, log *logrus.Logger, windows *WindowStore, pipeline *Orchestrator, peers PeerFactory, calls CallStore) *Manager {
	return &Manager{
		cfg:      cfg.withDefaults(),
		log:      log,
		registry: NewRegistry(),
		activity: NewActivityTracker(),
		guard:    NewGuard(),
		windows:  windows,
		pipeline: pipeline,
		peers:    peers,
		calls:    calls,
	}
}

func (m *Manager) Activity() *ActivityTracker { return m.activity }
func (m *Manager) Sessions() int              { return m.registry.Len() }

// Join registers (or reconnects) a session and binds the connection. On
// reconnect the connection handle is replaced and history is kept. Returns
// the effective session id.
func (m *Manager) Join(ctx context.Context, conn Conn, sessionID, peerID, externalCallID, userID string) string {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	s, existed := m.registry.Register(sessionID, peerID, conn)
	if externalCallID != "" {
		s.ExternalCallID = externalCallID
	}
	if userID != "" {
		s.UserID = userID
	}
	m.activity.Touch(sessionID)

	if !existed {
		m.startCallRecord(ctx, s)
	}

	_ = conn.Send(EventJoined, map[string]any{
		"session_id": sessionID,
		"peer_id":    peerID,
	})
	s.Relay(peerID, EventPeerJoined, map[string]any{
		"session_id": sessionID,
		"peer_id":    peerID,
	})

	m.log.WithFields(logrus.Fields{
		"session_id": sessionID,
		"peer_id":    peerID,
		"reconnect":  existed,
	}).Info("peer joined")
	return sessionID
}

// HandleOffer creates the peer resource if needed and answers the offer. An
// offer may legitimately arrive before an explicit join; in that degraded
// path a session is synthesized with the session id doubling as the external
// call id.
func (m *Manager) HandleOffer(ctx context.Context, conn Conn, sessionID, peerID, offerSDP string) {
	m.activity.Touch(sessionID)

	s, ok := m.registry.Lookup(sessionID)
	if !ok {
		m.log.WithField("session_id", sessionID).Warn("offer before join, synthesizing session")
		s, _ = m.registry.Register(sessionID, peerID, conn)
		s.ExternalCallID = sessionID
		m.startCallRecord(ctx, s)
	} else {
		s.attach(peerID, conn)
	}

	peer, err := s.EnsurePeer(m.peers)
	if err == nil {
		var answer string
		answer, err = peer.Answer(ctx, offerSDP)
		if err == nil {
			_ = conn.Send(EventAnswer, map[string]any{
				"session_id": sessionID,
				"sdp":        answer,
			})
			m.scheduleGreeting(s)
			return
		}
	}

	// non-fatal: the session stays intact for a retry
	m.log.WithError(err).WithField("session_id", sessionID).Error("negotiation failed")
	_ = conn.Send(EventError, map[string]any{"message": "negotiation failed"})
}

// HandleAnswer relays a remote answer to the other room participants.
func (m *Manager) HandleAnswer(sessionID, peerID, answerSDP string) {
	m.activity.Touch(sessionID)
	if s, ok := m.registry.Lookup(sessionID); ok {
		s.Relay(peerID, EventAnswer, map[string]any{
			"session_id": sessionID,
			"peer_id":    peerID,
			"sdp":        answerSDP,
		})
	}
}

// HandleCandidate feeds the peer resource if one exists and always relays,
// to support pure-relay topologies.
func (m *Manager) HandleCandidate(sessionID, peerID, candidate string) {
	m.activity.Touch(sessionID)

	s, ok := m.registry.Lookup(sessionID)
	if !ok {
		return
	}
	if peer := s.PeerResource(); peer != nil {
		if err := peer.AddCandidate(candidate); err != nil {
			m.log.WithError(err).WithField("session_id", sessionID).Warn("ice candidate rejected")
		}
	}
	s.Relay(peerID, EventCandidate, map[string]any{
		"session_id": sessionID,
		"peer_id":    peerID,
		"candidate":  candidate,
	})
}

// HandleAudio drives the audio pipeline under the processing guard. An
// overlapping event for the same session is dropped, not queued.
func (m *Manager) HandleAudio(ctx context.Context, conn Conn, sessionID, peerID string, audio []byte, mimeType string) {
	m.activity.Touch(sessionID)

	if !m.guard.TryAcquire(sessionID) {
		m.log.WithField("session_id", sessionID).Debug("pipeline busy, audio dropped")
		return
	}
	defer m.guard.Release(sessionID)

	res, err := m.pipeline.ProcessAudio(ctx, sessionID, audio, mimeType)
	if err != nil {
		m.log.WithError(err).WithField("session_id", sessionID).Error("audio pipeline failed")
		_ = conn.Send(EventError, map[string]any{"message": "assistant is unavailable, please try again"})
		return
	}
	if res == nil {
		return
	}
	m.emitResponse(sessionID, conn, res, true)
}

// HandleText drives the typed pipeline under the same guard.
func (m *Manager) HandleText(ctx context.Context, conn Conn, sessionID, peerID, text string) {
	m.activity.Touch(sessionID)

	if !m.guard.TryAcquire(sessionID) {
		m.log.WithField("session_id", sessionID).Debug("pipeline busy, text dropped")
		return
	}
	defer m.guard.Release(sessionID)

	res, err := m.pipeline.ProcessText(ctx, sessionID, text)
	if err != nil {
		m.log.WithError(err).WithField("session_id", sessionID).Error("text pipeline failed")
		_ = conn.Send(EventError, map[string]any{"message": "assistant is unavailable, please try again"})
		return
	}
	if res == nil {
		return
	}
	m.emitResponse(sessionID, conn, res, false)
}

// HandleTyping relays the indicator only; no state changes.
func (m *Manager) HandleTyping(sessionID, peerID string, isTyping bool) {
	if s, ok := m.registry.Lookup(sessionID); ok {
		s.Relay(peerID, EventTyping, map[string]any{
			"peer_id":   peerID,
			"is_typing": isTyping,
		})
	}
}

// Leave tears the session down. Idempotent.
func (m *Manager) Leave(ctx context.Context, sessionID, peerID string) {
	m.teardown(ctx, sessionID, peerID, EventPeerLeft)
}

// Disconnect handles a transport drop without an explicit leave, matched by
// connection handle.
func (m *Manager) Disconnect(ctx context.Context, conn Conn) {
	sessionID, peerID, ok := m.registry.FindByConn(conn)
	if !ok {
		return
	}
	m.teardown(ctx, sessionID, peerID, EventPeerDisconnected)
}

// Expire is the idle-reaper entry: the only path allowed to destroy a
// session its client did not ask to destroy.
func (m *Manager) Expire(ctx context.Context, sessionID string) {
	m.teardown(ctx, sessionID, "", EventPeerDisconnected)
}

func (m *Manager) teardown(ctx context.Context, sessionID, byPeerID, event string) {
	s := m.registry.Unregister(sessionID)

	m.guard.Forget(sessionID)
	m.windows.Clear(sessionID)
	m.activity.Forget(sessionID)

	if s == nil {
		return
	}
	s.Relay(byPeerID, event, map[string]any{
		"session_id": sessionID,
		"peer_id":    byPeerID,
	})
	s.Close()

	if m.calls != nil {
		if err := m.calls.EndCall(ctx, sessionID); err != nil {
			m.log.WithError(err).WithField("session_id", sessionID).Warn("failed to close call record")
		}
	}
	m.log.WithFields(logrus.Fields{
		"session_id": sessionID,
		"event":      event,
	}).Info("session torn down")
}

func (m *Manager) startCallRecord(ctx context.Context, s *Session) {
	if m.calls == nil {
		return
	}
	if err := m.calls.StartCall(ctx, s.ID, s.UserID); err != nil {
		m.log.WithError(err).WithField("session_id", s.ID).Warn("failed to open call record")
	}
}

func (m *Manager) scheduleGreeting(s *Session) {
	sessionID := s.ID
	s.ScheduleGreeting(m.cfg.GreetingDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		res, err := m.pipeline.Greeting(ctx)
		if err != nil {
			m.log.WithError(err).WithField("session_id", sessionID).Warn("greeting synthesis failed")
			return
		}
		target, ok := m.registry.Lookup(sessionID)
		if !ok {
			return
		}
		target.Broadcast(EventAIAudio, audioPayload(sessionID, res))
	})
}

func (m *Manager) emitResponse(sessionID string, caller Conn, res *Result, voice bool) {
	s, ok := m.registry.Lookup(sessionID)

	if voice {
		payload := audioPayload(sessionID, res)
		if ok {
			s.Broadcast(EventAIAudio, payload)
		} else {
			_ = caller.Send(EventAIAudio, payload)
		}
		return
	}

	payload := map[string]any{
		"session_id": sessionID,
		"text":       res.Text,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}
	if ok {
		s.Broadcast(EventAIMessage, payload)
	} else {
		_ = caller.Send(EventAIMessage, payload)
	}
}

func audioPayload(sessionID string, res *Result) map[string]any {
	return map[string]any{
		"session_id": sessionID,
		"audio":      res.Audio,
		"text":       res.Text,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}
}
