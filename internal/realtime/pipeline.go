package realtime

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dasom-care/dasom-backend/internal/providers/llm"
	"github.com/dasom-care/dasom-backend/internal/providers/stt"
	"github.com/dasom-care/dasom-backend/internal/providers/tts"
)

// Result is one outbound assistant response. A nil Result with a nil error
// means the stimulus was silently ignored (below the audio size floor).
type Result struct {
	Text     string
	Audio    []byte // nil on the pure-text path
	Feedback bool   // true for the "didn't catch that" reply
}

// Orchestrator turns one inbound stimulus into one outbound response or a
// user-facing feedback message. It never retries; retry is the caller
// re-speaking. Serialization per session is the caller's job (see Guard).
type Orchestrator struct {
	cfg Config
	log *logrus.Logger

	stt stt.Provider
	llm llm.Provider
	tts tts.Provider

	windows *WindowStore
	lookup  llm.LookupFunc
	history HistorySink // optional
}

func NewOrchestrator(cfg Config, log *logrus.Logger, sttP stt.Provider, llmP llm.Provider, ttsP tts.Provider, windows *WindowStore, lookup llm.LookupFunc, history HistorySink) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg.withDefaults(),
		log:     log,
		stt:     sttP,
		llm:     llmP,
		tts:     ttsP,
		windows: windows,
		lookup:  lookup,
		history: history,
	}
}

// ProcessAudio runs the audio path: size floor, transcription, noise gating,
// generation, synthesis.
func (o *Orchestrator) ProcessAudio(ctx context.Context, sessionID string, audio []byte, mimeType string) (*Result, error) {
	if len(audio) < o.cfg.MinAudioBytes {
		o.log.WithFields(logrus.Fields{
			"session_id": sessionID,
			"bytes":      len(audio),
		}).Debug("audio below size floor, ignored")
		return nil, nil
	}

	text, conf, err := o.stt.Transcribe(ctx, audio, mimeType, o.cfg.Language)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(text) == "" {
		return o.feedback(ctx, sessionID)
	}
	if v := Classify(text); v != VerdictUsable {
		o.log.WithFields(logrus.Fields{
			"session_id": sessionID,
			"verdict":    v,
			"transcript": text,
		}).Debug("transcript rejected by noise filter")
		return o.feedback(ctx, sessionID)
	}

	o.log.WithFields(logrus.Fields{
		"session_id": sessionID,
		"confidence": conf,
	}).Info("transcript accepted")

	return o.respond(ctx, sessionID, strings.TrimSpace(text), true)
}

// ProcessText runs the typed path: no quality gating, no synthesis.
func (o *Orchestrator) ProcessText(ctx context.Context, sessionID, text string) (*Result, error) {
	return o.respond(ctx, sessionID, text, false)
}

func (o *Orchestrator) respond(ctx context.Context, sessionID, userText string, withAudio bool) (*Result, error) {
	history := o.windows.History(sessionID)

	reply, err := o.llm.Generate(ctx, llm.Request{
		System:   o.cfg.SystemPrompt,
		History:  toLLMTurns(history),
		UserText: userText,
		Lookup:   o.lookup,
	})
	if err != nil {
		return nil, err
	}

	o.windows.AppendExchange(sessionID, userText, reply)

	res := &Result{Text: reply}
	if withAudio {
		audio, err := o.tts.Synthesize(ctx, reply, o.cfg.VoiceID)
		if err != nil {
			return nil, err
		}
		res.Audio = audio
	}

	o.persist(ctx, sessionID, string(RoleUser), userText, nil, withAudio)
	o.persist(ctx, sessionID, string(RoleAssistant), reply, res.Audio, withAudio)
	return res, nil
}

// feedback synthesizes the fixed "didn't catch that" reply.
func (o *Orchestrator) feedback(ctx context.Context, sessionID string) (*Result, error) {
	audio, err := o.tts.Synthesize(ctx, o.cfg.RetryFeedback, o.cfg.VoiceID)
	if err != nil {
		return nil, err
	}
	return &Result{Text: o.cfg.RetryFeedback, Audio: audio, Feedback: true}, nil
}

// Greeting synthesizes the one-shot welcome utterance.
func (o *Orchestrator) Greeting(ctx context.Context) (*Result, error) {
	audio, err := o.tts.Synthesize(ctx, o.cfg.Greeting, o.cfg.VoiceID)
	if err != nil {
		return nil, err
	}
	return &Result{Text: o.cfg.Greeting, Audio: audio}, nil
}

func (o *Orchestrator) persist(ctx context.Context, sessionID, role, content string, audio []byte, voice bool) {
	if o.history == nil {
		return
	}
	msgType := "text"
	if voice {
		msgType = "audio"
	}
	if err := o.history.AppendMessage(ctx, sessionID, role, msgType, content, audio); err != nil {
		o.log.WithError(err).WithField("session_id", sessionID).Warn("failed to persist message")
	}
}

func toLLMTurns(turns []Turn) []llm.Turn {
	if len(turns) == 0 {
		return nil
	}
	out := make([]llm.Turn, len(turns))
	for i, t := range turns {
		out[i] = llm.Turn{Role: string(t.Role), Content: t.Text}
	}
	return out
}
