package eventgroup

import (
	"runtime"
	"sync/atomic"
	"time"
)

// Pauser is the adaptive back-off collaborator an idle EventLoop uses
// between empty polls (spec §4.6). Implementations must make Unpause safe
// to call from any goroutine, idempotently, even when no Pause call is
// currently blocked.
type Pauser interface {
	// Pause may sleep or park the calling goroutine. It returns when work
	// is signaled via Unpause, or when the adaptive back-off elapses,
	// whichever comes first.
	Pause()

	// Unpause wakes a goroutine currently blocked in Pause, or primes the
	// next Pause call to return immediately if none is blocked yet. Safe
	// to call from any goroutine, any number of times.
	Unpause()

	// Stats returns a snapshot of the rolling counters a PauserMonitor
	// reports.
	Stats() PauserStats
}

// PauserStats is a point-in-time snapshot of a Pauser's rolling counters,
// as read by a PauserMonitor (spec §4.5).
type PauserStats struct {
	PauseCount    uint64
	UnpauseCount  uint64
	ParkedNanos   int64
	MaxBackoffNs  int64
	CurrentBackNs int64
}

// adaptivePauser is the default Pauser: a fixed number of busy spins,
// followed by a fixed number of runtime.Gosched yields, followed by an
// exponential sleep ramp bounded by max. This mirrors spec §4.6's two
// canonical configurations.
type adaptivePauser struct {
	busySpins   int
	yieldSpins  int
	minBackoff  time.Duration
	maxBackoff  time.Duration
	wake        chan struct{}
	primed      atomic.Bool
	pauseCount  atomic.Uint64
	unpauseCnt  atomic.Uint64
	parkedNanos atomic.Int64
	curBackoff  atomic.Int64
}

// newAdaptivePauser constructs a Pauser with the given spin counts and
// back-off ramp. Both spin counts and both durations must be non-negative;
// callers within this package always supply the two canonical
// configurations from spec §4.6.
func newAdaptivePauser(busySpins, yieldSpins int, minBackoff, maxBackoff time.Duration) *adaptivePauser {
	p := &adaptivePauser{
		busySpins:  busySpins,
		yieldSpins: yieldSpins,
		minBackoff: minBackoff,
		maxBackoff: maxBackoff,
		wake:       make(chan struct{}, 1),
	}
	p.curBackoff.Store(int64(minBackoff))
	return p
}

// corePauser builds the "moderate" configuration spec §4.6 assigns to the
// core loop: 1000 busy spins, 200 yield spins, ramp 250µs to 20ms (200ms in
// debug mode).
func corePauser(debug bool) *adaptivePauser {
	max := 20 * time.Millisecond
	if debug {
		max = 200 * time.Millisecond
	}
	return newAdaptivePauser(1000, 200, 250*time.Microsecond, max)
}

// monitorPauser builds the fixed-tight configuration spec §4.4 assigns to
// the monitor loop: no busy or yield spins, a flat 100ms poll interval.
func monitorPauser() *adaptivePauser {
	return newAdaptivePauser(0, 0, 100*time.Millisecond, 100*time.Millisecond)
}

// replicationPauser builds the replication/concurrent configuration spec
// §4.6 assigns: 500 busy spins, 100 yield spins, ramp 250µs to
// 20ms*replicationEventPauseTime (in non-debug units, pauseTimeMS is the
// configured replicationEventPauseTime upper-bound multiplier expressed in
// milliseconds).
func replicationPauser(pauseTimeMS int64) *adaptivePauser {
	max := 20 * time.Millisecond * time.Duration(pauseTimeMS)
	return newAdaptivePauser(500, 100, 250*time.Microsecond, max)
}

// Pause implements Pauser.
func (p *adaptivePauser) Pause() {
	p.pauseCount.Add(1)
	start := time.Now()
	defer func() { p.parkedNanos.Add(int64(time.Since(start))) }()

	for i := 0; i < p.busySpins; i++ {
		if p.tryConsumeWake() {
			return
		}
	}
	for i := 0; i < p.yieldSpins; i++ {
		if p.tryConsumeWake() {
			return
		}
		runtime.Gosched()
	}

	backoff := time.Duration(p.curBackoff.Load())
	timer := time.NewTimer(backoff)
	defer timer.Stop()
	select {
	case <-p.wake:
	case <-timer.C:
		next := backoff * 2
		if next > p.maxBackoff {
			next = p.maxBackoff
		}
		p.curBackoff.Store(int64(next))
		return
	}
	p.curBackoff.Store(int64(p.minBackoff))
}

// tryConsumeWake drains a pending wake signal without blocking.
func (p *adaptivePauser) tryConsumeWake() bool {
	select {
	case <-p.wake:
		p.curBackoff.Store(int64(p.minBackoff))
		return true
	default:
		return false
	}
}

// Unpause implements Pauser. Idempotent: if a wake is already pending, this
// is a no-op rather than blocking or growing the channel.
func (p *adaptivePauser) Unpause() {
	p.unpauseCnt.Add(1)
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Stats implements Pauser.
func (p *adaptivePauser) Stats() PauserStats {
	return PauserStats{
		PauseCount:    p.pauseCount.Load(),
		UnpauseCount:  p.unpauseCnt.Load(),
		ParkedNanos:   p.parkedNanos.Load(),
		MaxBackoffNs:  int64(p.maxBackoff),
		CurrentBackNs: p.curBackoff.Load(),
	}
}

// PauserSupplier builds a Pauser for a newly-created concurrent loop slot.
// EventGroup.SetConcThreadPauserSupplier replaces the default instance.
type PauserSupplier func() Pauser

// defaultConcPauserSupplier is the built-in PauserSupplier used until
// SetConcThreadPauserSupplier is called: spec §4.6's replication/concurrent
// configuration, using the configured pause-time upper bound.
func defaultConcPauserSupplier(pauseTimeMS int64) PauserSupplier {
	return func() Pauser { return replicationPauser(pauseTimeMS) }
}
