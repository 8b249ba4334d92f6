package realtime

import "time"

type Config struct {
	// MinAudioBytes is the hard size floor: inbound audio below it is ignored
	// outright, with no feedback to the caller.
	MinAudioBytes int

	// MaxWindowTurns caps the in-memory conversation window per session.
	MaxWindowTurns int

	IdleTimeout  time.Duration // session reclaimed after this much inactivity
	ReapInterval time.Duration // reaper tick

	GreetingDelay time.Duration // delay after first successful negotiation

	Language string // STT language hint
	VoiceID  string // TTS voice

	SystemPrompt  string
	Greeting      string
	RetryFeedback string // spoken when the transcript is unusable
}

func (c Config) withDefaults() Config {
	if c.MinAudioBytes <= 0 {
		c.MinAudioBytes = 20 << 10
	}
	if c.MaxWindowTurns <= 0 {
		c.MaxWindowTurns = 20
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 30 * time.Minute
	}
	if c.ReapInterval <= 0 {
		c.ReapInterval = 5 * time.Minute
	}
	if c.GreetingDelay <= 0 {
		c.GreetingDelay = 3 * time.Second
	}
	if c.Language == "" {
		c.Language = "ko-KR"
	}
	if c.VoiceID == "" {
		c.VoiceID = "shimmer"
	}
	if c.SystemPrompt == "" {
		c.SystemPrompt = defaultSystemPrompt
	}
	if c.Greeting == "" {
		c.Greeting = "안녕하세요, 다솜이에요. 오늘 하루는 어떻게 보내고 계세요?"
	}
	if c.RetryFeedback == "" {
		c.RetryFeedback = "죄송해요, 잘 못 들었어요. 다시 한 번 말씀해 주시겠어요?"
	}
	return c
}

const defaultSystemPrompt = "당신은 어르신을 돕는 따뜻한 말동무 '다솜'입니다. " +
	"존댓말로 짧고 또박또박 대답하세요. 복지 서비스에 대한 질문을 받으면 " +
	"search_welfare_services 기능으로 검색한 결과를 바탕으로 안내하세요."
