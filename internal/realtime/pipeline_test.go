package realtime

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dasom-care/dasom-backend/internal/providers/llm"
)

type pipelineFixture struct {
	orch    *Orchestrator
	windows *WindowStore
	stt     *fakeSTT
	llm     *fakeLLM
	tts     *fakeTTS
	history *fakeHistory
}

func newPipelineFixture(cfg Config, lookup llm.LookupFunc) *pipelineFixture {
	f := &pipelineFixture{
		windows: NewWindowStore(cfg.MaxWindowTurns),
		stt:     &fakeSTT{text: "무릎이 아파요", conf: 0.92},
		llm:     &fakeLLM{},
		tts:     &fakeTTS{audio: []byte("synthesized")},
		history: &fakeHistory{},
	}
	f.orch = NewOrchestrator(cfg, newTestLogger(), f.stt, f.llm, f.tts, f.windows, lookup, f.history)
	return f
}

func TestPipelineAudioBelowFloor(t *testing.T) {
	f := newPipelineFixture(Config{}, nil) // default 20KB floor
	ctx := context.Background()

	res, err := f.orch.ProcessAudio(ctx, "s1", make([]byte, 19<<10), "audio/webm")

	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Zero(t, f.stt.callCount())
	assert.Zero(t, f.windows.Len("s1"))
}

func TestPipelineAudioHappyPath(t *testing.T) {
	f := newPipelineFixture(Config{MinAudioBytes: 1}, nil)
	ctx := context.Background()

	res, err := f.orch.ProcessAudio(ctx, "s1", []byte("opus"), "audio/webm")

	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "re: 무릎이 아파요", res.Text)
	assert.Equal(t, []byte("synthesized"), res.Audio)
	assert.False(t, res.Feedback)

	h := f.windows.History("s1")
	require.Len(t, h, 2)
	assert.Equal(t, "무릎이 아파요", h[0].Text)

	entries := f.history.all()
	require.Len(t, entries, 2)
	assert.Equal(t, "user", entries[0].role)
	assert.Equal(t, "audio", entries[0].msgType)
	assert.Nil(t, entries[0].audio)
	assert.Equal(t, "assistant", entries[1].role)
	assert.Equal(t, []byte("synthesized"), entries[1].audio)
}

func TestPipelineEmptyTranscriptFeedback(t *testing.T) {
	f := newPipelineFixture(Config{MinAudioBytes: 1}, nil)
	f.stt.text = "   "
	ctx := context.Background()

	res, err := f.orch.ProcessAudio(ctx, "s1", []byte("opus"), "audio/webm")

	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.Feedback)
	assert.NotEmpty(t, res.Text)
	assert.NotEmpty(t, res.Audio)

	// the unusable turn never enters the window or the durable log
	assert.Empty(t, f.llm.requests())
	assert.Zero(t, f.windows.Len("s1"))
	assert.Empty(t, f.history.all())
}

func TestPipelineNoiseTranscriptFeedback(t *testing.T) {
	f := newPipelineFixture(Config{MinAudioBytes: 1}, nil)
	f.stt.text = "시청해 주셔서 감사합니다"
	ctx := context.Background()

	res, err := f.orch.ProcessAudio(ctx, "s1", []byte("opus"), "audio/webm")

	require.NoError(t, err)
	require.True(t, res.Feedback)
	assert.Empty(t, f.llm.requests())
	assert.Zero(t, f.windows.Len("s1"))
}

func TestPipelineTextPath(t *testing.T) {
	f := newPipelineFixture(Config{}, nil)
	ctx := context.Background()

	res, err := f.orch.ProcessText(ctx, "s1", "안녕하세요")

	require.NoError(t, err)
	assert.Equal(t, "re: 안녕하세요", res.Text)
	assert.Nil(t, res.Audio)

	entries := f.history.all()
	require.Len(t, entries, 2)
	assert.Equal(t, "text", entries[0].msgType)
	assert.Equal(t, "text", entries[1].msgType)
}

func TestPipelineWindowFlowsIntoPrompt(t *testing.T) {
	f := newPipelineFixture(Config{}, nil)
	ctx := context.Background()

	_, err := f.orch.ProcessText(ctx, "s1", "첫 번째")
	require.NoError(t, err)
	_, err = f.orch.ProcessText(ctx, "s1", "두 번째")
	require.NoError(t, err)

	reqs := f.llm.requests()
	require.Len(t, reqs, 2)
	assert.Empty(t, reqs[0].History)
	require.Len(t, reqs[1].History, 2)
	assert.Equal(t, "user", reqs[1].History[0].Role)
	assert.Equal(t, "첫 번째", reqs[1].History[0].Content)
	assert.Equal(t, "assistant", reqs[1].History[1].Role)
	assert.NotEmpty(t, reqs[0].System)
}

func TestPipelineLookupReachesProvider(t *testing.T) {
	lookup := func(context.Context, string, map[string]any) (string, error) { return "[]", nil }
	f := newPipelineFixture(Config{}, lookup)
	f.llm.fn = func(req llm.Request) (string, error) {
		require.NotNil(t, req.Lookup)
		out, err := req.Lookup(context.Background(), llm.SearchWelfareTool, map[string]any{"query": "돌봄"})
		require.NoError(t, err)
		return "검색 결과: " + out, nil
	}
	ctx := context.Background()

	res, err := f.orch.ProcessText(ctx, "s1", "돌봄 서비스 있나요")
	require.NoError(t, err)
	assert.Equal(t, "검색 결과: []", res.Text)
}

func TestPipelineTranscribeError(t *testing.T) {
	f := newPipelineFixture(Config{MinAudioBytes: 1}, nil)
	f.stt.err = errors.New("upstream 500")
	ctx := context.Background()

	res, err := f.orch.ProcessAudio(ctx, "s1", []byte("opus"), "audio/webm")
	assert.Error(t, err)
	assert.Nil(t, res)
}

func TestPipelineGenerateError(t *testing.T) {
	f := newPipelineFixture(Config{}, nil)
	f.llm.fn = func(llm.Request) (string, error) { return "", errors.New("model overloaded") }
	ctx := context.Background()

	res, err := f.orch.ProcessText(ctx, "s1", "안녕하세요")
	assert.Error(t, err)
	assert.Nil(t, res)

	// a failed turn leaves no trace in the window
	assert.Zero(t, f.windows.Len("s1"))
	assert.Empty(t, f.history.all())
}

func TestPipelineSynthesizeError(t *testing.T) {
	f := newPipelineFixture(Config{MinAudioBytes: 1}, nil)
	f.tts.err = errors.New("voice unavailable")
	ctx := context.Background()

	res, err := f.orch.ProcessAudio(ctx, "s1", []byte("opus"), "audio/webm")
	assert.Error(t, err)
	assert.Nil(t, res)
}

func TestPipelinePersistFailureIsNonFatal(t *testing.T) {
	f := newPipelineFixture(Config{}, nil)
	f.history.err = errors.New("postgres down")
	ctx := context.Background()

	res, err := f.orch.ProcessText(ctx, "s1", "안녕하세요")
	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.Equal(t, 2, f.windows.Len("s1"))
}

func TestPipelineGreeting(t *testing.T) {
	f := newPipelineFixture(Config{Greeting: "어서 오세요"}, nil)

	res, err := f.orch.Greeting(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "어서 오세요", res.Text)
	assert.Equal(t, []byte("synthesized"), res.Audio)
	assert.False(t, res.Feedback)
}
