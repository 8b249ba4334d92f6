package stt

import "context"

// Provider transcribes one utterance. An empty text with a nil error is a
// valid outcome (nothing recognizable in the audio).
type Provider interface {
	Transcribe(ctx context.Context, audio []byte, mimeType, language string) (text string, confidence float64, err error)
	Close() error
}
