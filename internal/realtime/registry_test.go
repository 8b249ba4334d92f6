package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry()

	c1 := newFakeConn()
	s, existed := r.Register("s1", "p1", c1)
	require.NotNil(t, s)
	assert.False(t, existed)
	assert.Equal(t, "s1", s.ID)
	assert.Equal(t, 1, r.Len())

	again, existed := r.Register("s1", "p2", newFakeConn())
	assert.True(t, existed)
	assert.Same(t, s, again)
	assert.Equal(t, 1, r.Len())

	got, ok := r.Lookup("s1")
	require.True(t, ok)
	assert.Same(t, s, got)

	_, ok = r.Lookup("missing")
	assert.False(t, ok)
}

func TestRegistryReattachSupersedesConn(t *testing.T) {
	r := NewRegistry()

	old := newFakeConn()
	r.Register("s1", "p1", old)

	replacement := newFakeConn()
	r.Register("s1", "p1", replacement)

	assert.True(t, old.isClosed())
	assert.False(t, replacement.isClosed())

	// events now reach only the replacement
	s, _ := r.Lookup("s1")
	s.Broadcast(EventAIMessage, nil)
	assert.Empty(t, old.events())
	assert.Len(t, replacement.events(), 1)
}

func TestRegistryUnregisterIdempotent(t *testing.T) {
	r := NewRegistry()
	r.Register("s1", "p1", newFakeConn())

	s := r.Unregister("s1")
	assert.NotNil(t, s)
	assert.Zero(t, r.Len())

	assert.Nil(t, r.Unregister("s1"))
	assert.Nil(t, r.Unregister("never-existed"))
}

func TestRegistryFindByConn(t *testing.T) {
	r := NewRegistry()

	c1 := newFakeConn()
	c2 := newFakeConn()
	r.Register("s1", "p1", c1)
	r.Register("s2", "p2", c2)

	sessionID, peerID, ok := r.FindByConn(c2)
	require.True(t, ok)
	assert.Equal(t, "s2", sessionID)
	assert.Equal(t, "p2", peerID)

	_, _, ok = r.FindByConn(newFakeConn())
	assert.False(t, ok)
}

func TestSessionRelaySkipsSender(t *testing.T) {
	r := NewRegistry()

	c1 := newFakeConn()
	c2 := newFakeConn()
	s, _ := r.Register("s1", "p1", c1)
	r.Register("s1", "p2", c2)

	s.Relay("p1", EventTyping, map[string]any{"is_typing": true})

	assert.Empty(t, c1.events())
	require.Len(t, c2.events(), 1)
	assert.Equal(t, EventTyping, c2.events()[0].event)
}

func TestSessionCloseIdempotent(t *testing.T) {
	r := NewRegistry()

	conn := newFakeConn()
	s, _ := r.Register("s1", "p1", conn)

	peer := &fakePeer{}
	s.mu.Lock()
	s.peer = peer
	s.mu.Unlock()

	s.Close()
	s.Close()

	assert.True(t, conn.isClosed())
	assert.Equal(t, 1, peer.closeCalls())
}

func TestSessionGreetingFiresOnce(t *testing.T) {
	s := &Session{ID: "s1", conns: map[string]Conn{}}

	fired := make(chan struct{}, 2)
	s.ScheduleGreeting(time.Millisecond, func() { fired <- struct{}{} })
	s.ScheduleGreeting(time.Millisecond, func() { fired <- struct{}{} })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("greeting never fired")
	}
	select {
	case <-fired:
		t.Fatal("greeting fired twice")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSessionGreetingCancelledByClose(t *testing.T) {
	s := &Session{ID: "s1", conns: map[string]Conn{}}

	fired := make(chan struct{}, 1)
	s.ScheduleGreeting(30*time.Millisecond, func() { fired <- struct{}{} })
	s.Close()

	select {
	case <-fired:
		t.Fatal("greeting fired after close")
	case <-time.After(100 * time.Millisecond):
	}

	// and never armed on an already-closed session
	s.ScheduleGreeting(time.Millisecond, func() { fired <- struct{}{} })
	select {
	case <-fired:
		t.Fatal("greeting armed on closed session")
	case <-time.After(50 * time.Millisecond):
	}
}
