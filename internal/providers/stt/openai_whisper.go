package stt

import (
	"bytes"
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAIWhisper struct {
	client *openai.Client
	model  string
}

func NewOpenAIWhisper(apiKey string) *OpenAIWhisper {
	return &OpenAIWhisper{
		client: openai.NewClient(apiKey),
		model:  openai.Whisper1,
	}
}

func (w *OpenAIWhisper) Close() error { return nil }

func (w *OpenAIWhisper) Transcribe(ctx context.Context, audio []byte, mimeType, language string) (string, float64, error) {
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		Reader:   bytes.NewReader(audio),
		FilePath: "audio" + extFor(mimeType),
		Language: shortLanguage(language),
	})
	if err != nil {
		return "", 0, err
	}
	// whisper reports no per-utterance confidence
	return resp.Text, 0, nil
}

func extFor(mimeType string) string {
	switch {
	case strings.Contains(mimeType, "webm"):
		return ".webm"
	case strings.Contains(mimeType, "ogg"):
		return ".ogg"
	case strings.Contains(mimeType, "mp4"):
		return ".mp4"
	case strings.Contains(mimeType, "mpeg"), strings.Contains(mimeType, "mp3"):
		return ".mp3"
	default:
		return ".wav"
	}
}

// shortLanguage maps BCP-47 hints ("ko-KR") to whisper's ISO-639-1 codes.
func shortLanguage(language string) string {
	if i := strings.Index(language, "-"); i > 0 {
		return language[:i]
	}
	return language
}
