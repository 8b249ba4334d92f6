package realtime

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuardSingleFlight(t *testing.T) {
	g := NewGuard()

	assert.True(t, g.TryAcquire("s1"))
	assert.False(t, g.TryAcquire("s1"))

	// independent sessions do not contend
	assert.True(t, g.TryAcquire("s2"))

	g.Release("s1")
	assert.True(t, g.TryAcquire("s1"))
}

func TestGuardConcurrentAcquire(t *testing.T) {
	g := NewGuard()

	const n = 64
	var won int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if g.TryAcquire("s1") {
				atomic.AddInt32(&won, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), won)
}

func TestGuardForget(t *testing.T) {
	g := NewGuard()
	assert.True(t, g.TryAcquire("s1"))

	g.Forget("s1")
	assert.True(t, g.TryAcquire("s1"))

	// forgetting an unknown session is harmless
	g.Forget("missing")
}
