package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityTrackerTouchAndForget(t *testing.T) {
	tr := NewActivityTracker()

	_, ok := tr.Last("s1")
	assert.False(t, ok)

	tr.Touch("s1")
	at, ok := tr.Last("s1")
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().UTC(), at, time.Second)
	assert.Equal(t, 1, tr.Len())

	tr.Forget("s1")
	_, ok = tr.Last("s1")
	assert.False(t, ok)
	assert.Zero(t, tr.Len())
}

func TestActivityTrackerStaleIDs(t *testing.T) {
	tr := NewActivityTracker()

	clock := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return clock }

	tr.Touch("old")
	clock = clock.Add(31 * time.Minute)
	tr.Touch("fresh")

	stale := tr.StaleIDs(30 * time.Minute)
	require.Len(t, stale, 1)
	assert.Equal(t, "old", stale[0])

	// touching resets staleness
	tr.Touch("old")
	assert.Empty(t, tr.StaleIDs(30*time.Minute))
}
