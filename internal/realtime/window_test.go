package realtime

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowStoreAppendAndHistory(t *testing.T) {
	w := NewWindowStore(20)

	assert.Nil(t, w.History("s1"))

	w.AppendExchange("s1", "안녕하세요", "네, 안녕하세요!")
	h := w.History("s1")
	require.Len(t, h, 2)
	assert.Equal(t, RoleUser, h[0].Role)
	assert.Equal(t, "안녕하세요", h[0].Text)
	assert.Equal(t, RoleAssistant, h[1].Role)

	// sessions are isolated
	assert.Nil(t, w.History("s2"))
}

func TestWindowStoreCapTrimsOldestPair(t *testing.T) {
	w := NewWindowStore(20)

	for i := 0; i < 15; i++ {
		w.AppendExchange("s1", fmt.Sprintf("u%d", i), fmt.Sprintf("a%d", i))
	}

	h := w.History("s1")
	require.Len(t, h, 20)

	// oldest five exchanges were trimmed, oldest-first order preserved
	assert.Equal(t, "u5", h[0].Text)
	assert.Equal(t, "a5", h[1].Text)
	assert.Equal(t, "u14", h[18].Text)
	assert.Equal(t, "a14", h[19].Text)

	// alternation holds across the trimmed window
	for i, turn := range h {
		if i%2 == 0 {
			assert.Equal(t, RoleUser, turn.Role)
		} else {
			assert.Equal(t, RoleAssistant, turn.Role)
		}
	}
}

func TestWindowStoreOddCapRoundsUp(t *testing.T) {
	w := NewWindowStore(5)

	for i := 0; i < 4; i++ {
		w.AppendExchange("s1", fmt.Sprintf("u%d", i), fmt.Sprintf("a%d", i))
	}
	// cap of 5 behaves as 6, never splitting an exchange
	assert.Equal(t, 6, w.Len("s1"))
	assert.Equal(t, RoleUser, w.History("s1")[0].Role)
}

func TestWindowStoreHistoryReturnsCopy(t *testing.T) {
	w := NewWindowStore(20)
	w.AppendExchange("s1", "hello", "world")

	h := w.History("s1")
	h[0].Text = "mutated"

	assert.Equal(t, "hello", w.History("s1")[0].Text)
}

func TestWindowStoreClear(t *testing.T) {
	w := NewWindowStore(20)
	w.AppendExchange("s1", "u", "a")
	w.Clear("s1")

	assert.Zero(t, w.Len("s1"))
	assert.Nil(t, w.History("s1"))

	// clearing an absent session is a no-op
	w.Clear("missing")
}
