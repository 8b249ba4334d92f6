package tts

import (
	"context"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAISpeech struct {
	client *openai.Client
	model  openai.SpeechModel
}

func NewOpenAISpeech(apiKey string) *OpenAISpeech {
	return &OpenAISpeech{client: openai.NewClient(apiKey), model: openai.TTSModel1}
}

func (s *OpenAISpeech) Close() error { return nil }

func (s *OpenAISpeech) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	if voiceID == "" {
		voiceID = string(openai.VoiceShimmer)
	}
	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: s.model,
		Input: text,
		Voice: openai.SpeechVoice(voiceID),
	})
	if err != nil {
		return nil, err
	}
	defer resp.Close()
	return io.ReadAll(resp)
}
