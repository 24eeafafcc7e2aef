package eventgroup

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdaptivePauser_UnpauseWakesPause(t *testing.T) {
	p := newAdaptivePauser(10, 10, time.Millisecond, 50*time.Millisecond)

	var wg sync.WaitGroup
	wg.Add(1)
	done := make(chan struct{})
	go func() {
		defer wg.Done()
		p.Pause()
		close(done)
	}()

	p.Unpause()
	wg.Wait()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Pause did not return after Unpause")
	}

	stats := p.Stats()
	assert.Equal(t, uint64(1), stats.PauseCount)
	assert.Equal(t, uint64(1), stats.UnpauseCount)
}

func TestAdaptivePauser_UnpauseIdempotentWhenNoPauseBlocked(t *testing.T) {
	p := newAdaptivePauser(0, 0, time.Millisecond, 2*time.Millisecond)
	p.Unpause()
	p.Unpause()
	p.Unpause()
	assert.Equal(t, uint64(3), p.Stats().UnpauseCount)

	// a Pause call afterward should return promptly, consuming the primed
	// wake without blocking on the channel (capacity 1, buffered send).
	start := time.Now()
	p.Pause()
	require.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestAdaptivePauser_BackoffRampCappedAtMax(t *testing.T) {
	p := newAdaptivePauser(0, 0, time.Millisecond, 4*time.Millisecond)
	for i := 0; i < 10; i++ {
		p.Pause()
	}
	assert.LessOrEqual(t, p.Stats().CurrentBackNs, int64(4*time.Millisecond))
}

func TestCorePauser_DebugExtendsMax(t *testing.T) {
	normal := corePauser(false)
	debug := corePauser(true)
	assert.Equal(t, int64(20*time.Millisecond), normal.Stats().MaxBackoffNs)
	assert.Equal(t, int64(200*time.Millisecond), debug.Stats().MaxBackoffNs)
}

func TestReplicationPauser_ScalesWithPauseTime(t *testing.T) {
	p := replicationPauser(5)
	assert.Equal(t, int64(100*time.Millisecond), p.Stats().MaxBackoffNs)
}

func TestMonitorPauser_FixedTight(t *testing.T) {
	p := monitorPauser()
	assert.Equal(t, int64(100*time.Millisecond), p.Stats().MaxBackoffNs)
	assert.Equal(t, int64(100*time.Millisecond), p.Stats().CurrentBackNs)
}

func TestDefaultConcPauserSupplier(t *testing.T) {
	supplier := defaultConcPauserSupplier(2)
	p := supplier()
	require.NotNil(t, p)
	assert.Equal(t, int64(40*time.Millisecond), p.Stats().MaxBackoffNs)
}
