package realtime

import (
	"context"

	"github.com/pion/webrtc/v4"
)

// Peer is the per-session media negotiation handle. Implementations own the
// underlying negotiation state machine; the manager only feeds it offers and
// candidates and accepts repeated negotiation as idempotent.
type Peer interface {
	Answer(ctx context.Context, offerSDP string) (answerSDP string, err error)
	AddCandidate(candidate string) error
	Close() error
}

type PeerFactory interface {
	NewPeer(sessionID string) (Peer, error)
}

type pionFactory struct {
	cfg webrtc.Configuration
}

// NewPionFactory builds peers backed by pion PeerConnections.
func NewPionFactory(stunURLs []string) PeerFactory {
	cfg := webrtc.Configuration{}
	if len(stunURLs) > 0 {
		cfg.ICEServers = []webrtc.ICEServer{{URLs: stunURLs}}
	}
	return &pionFactory{cfg: cfg}
}

func (f *pionFactory) NewPeer(sessionID string) (Peer, error) {
	pc, err := webrtc.NewPeerConnection(f.cfg)
	if err != nil {
		return nil, err
	}
	return &pionPeer{pc: pc}, nil
}

type pionPeer struct {
	pc *webrtc.PeerConnection
}

func (p *pionPeer) Answer(ctx context.Context, offerSDP string) (string, error) {
	offer := webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: offerSDP}
	if err := p.pc.SetRemoteDescription(offer); err != nil {
		return "", err
	}
	answer, err := p.pc.CreateAnswer(nil)
	if err != nil {
		return "", err
	}
	if err := p.pc.SetLocalDescription(answer); err != nil {
		return "", err
	}
	// trickle ICE: the answer goes out immediately, candidates follow over
	// the signaling channel
	return answer.SDP, nil
}

func (p *pionPeer) AddCandidate(candidate string) error {
	return p.pc.AddICECandidate(webrtc.ICECandidateInit{Candidate: candidate})
}

func (p *pionPeer) Close() error { return p.pc.Close() }
