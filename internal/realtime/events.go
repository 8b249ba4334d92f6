package realtime

import "context"

// Outbound event names emitted over the signaling connection.
const (
	EventJoined           = "joined"
	EventPeerJoined       = "peer-joined"
	EventPeerLeft         = "peer-left"
	EventPeerDisconnected = "peer-disconnected"
	EventAnswer           = "answer"
	EventCandidate        = "ice-candidate"
	EventTyping           = "typing"
	EventAIAudio          = "ai-audio-response"
	EventAIMessage        = "ai-message"
	EventError            = "error"
)

// Conn is one client signaling connection. Send must be safe for concurrent
// use; Close must be idempotent.
type Conn interface {
	Send(event string, data any) error
	Close() error
}

// CallStore persists durable call-session records. Implementations are owned
// by the CRUD layer; the realtime core only starts and ends records.
type CallStore interface {
	StartCall(ctx context.Context, sessionID, userID string) error
	EndCall(ctx context.Context, sessionID string) error
}

// HistorySink receives durable copies of conversation turns, append-only.
// audio may be nil for text turns.
type HistorySink interface {
	AppendMessage(ctx context.Context, sessionID, role, msgType, content string, audio []byte) error
}
