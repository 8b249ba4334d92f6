package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/dasom-care/dasom-backend/internal/realtime"
)

// WSHandler terminates the signaling websocket and translates wire envelopes
// into realtime.Manager calls.
type WSHandler struct {
	manager  *realtime.Manager
	log      *logrus.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(manager *realtime.Manager, log *logrus.Logger) *WSHandler {
	return &WSHandler{
		manager: manager,
		log:     log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin in prod
		},
	}
}

type wsClientMsg struct {
	Event     string `json:"event"`
	SessionID string `json:"session_id"`
	PeerID    string `json:"peer_id"`
	CallID    string `json:"call_id,omitempty"` // external correlation id

	SDP       string `json:"sdp,omitempty"`
	Candidate string `json:"candidate,omitempty"`

	AudioBase64 string `json:"audio_base64,omitempty"`
	MimeType    string `json:"mime_type,omitempty"`
	Text        string `json:"text,omitempty"`
	IsTyping    bool   `json:"is_typing,omitempty"`
}

type wsServerMsg struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// wsConn serializes writes; gorilla allows one concurrent writer only.
type wsConn struct {
	c      *websocket.Conn
	mu     sync.Mutex
	closed bool
}

func (w *wsConn) Send(event string, data any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return websocket.ErrCloseSent
	}
	_ = w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteJSON(wsServerMsg{Event: event, Data: data})
}

func (w *wsConn) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.c.Close()
}

func (h *WSHandler) CallWS(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote the response in most cases
		return
	}

	wc := &wsConn{c: conn}
	ctx := context.Background()

	defer func() {
		h.manager.Disconnect(ctx, wc)
		_ = wc.Close()
	}()

	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, data, rerr := conn.ReadMessage()
		if rerr != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var msg wsClientMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = wc.Send(realtime.EventError, map[string]any{"message": "invalid json"})
			continue
		}
		if msg.SessionID == "" && msg.Event != "join" {
			_ = wc.Send(realtime.EventError, map[string]any{"message": "session_id is required"})
			continue
		}

		switch msg.Event {
		case "join":
			h.manager.Join(ctx, wc, msg.SessionID, msg.PeerID, msg.CallID, userID)

		case "negotiate-offer":
			h.manager.HandleOffer(ctx, wc, msg.SessionID, msg.PeerID, msg.SDP)

		case "negotiate-answer":
			h.manager.HandleAnswer(msg.SessionID, msg.PeerID, msg.SDP)

		case "ice-candidate":
			h.manager.HandleCandidate(msg.SessionID, msg.PeerID, msg.Candidate)

		case "inbound-audio":
			audio, err := decodeAudio(msg.AudioBase64)
			if err != nil {
				_ = wc.Send(realtime.EventError, map[string]any{"message": "invalid audio_base64"})
				continue
			}
			// pipeline runs take seconds; keep the read loop responsive so
			// overlapping events reach the guard instead of queueing here
			go h.manager.HandleAudio(ctx, wc, msg.SessionID, msg.PeerID, audio, msg.MimeType)

		case "inbound-text":
			go h.manager.HandleText(ctx, wc, msg.SessionID, msg.PeerID, msg.Text)

		case "typing":
			h.manager.HandleTyping(msg.SessionID, msg.PeerID, msg.IsTyping)

		case "leave":
			h.manager.Leave(ctx, msg.SessionID, msg.PeerID)
			return

		default:
			_ = wc.Send(realtime.EventError, map[string]any{"message": "unknown event"})
		}
	}
}

// decodeAudio accepts both bare base64 and data-URI payloads.
func decodeAudio(b64 string) ([]byte, error) {
	if i := strings.Index(b64, ","); i >= 0 {
		b64 = b64[i+1:]
	}
	return base64.StdEncoding.DecodeString(b64)
}
