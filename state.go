package eventgroup

import "sync/atomic"

// workerState is the lifecycle of an EventLoop, stored as a single atomic
// word so isAlive/isClosed reads never race with Start/Stop/Close.
//
// State machine:
//
//	stateIdle -> stateRunning       [Start]
//	stateRunning -> stateStopped    [Stop]
//	any state -> stateClosed        [Close]
//
// Transitions into stateRunning and stateStopped use compare-and-swap so a
// concurrent Start/Stop race resolves to exactly one winner; the move to
// stateClosed is an unconditional store. Reads (IsAlive, IsClosed) are
// plain atomic loads.
type workerState uint32

const (
	stateIdle workerState = iota
	stateRunning
	stateStopped
	stateClosed
)

// loopState is a cache-line-padded holder for workerState, the way the
// teacher's FastState pads its atomic state word to avoid false sharing
// with neighbouring data. It is allocated separately from its EventLoop,
// so it does not share a cache line with the loopStartMS hot field.
type loopState struct {
	_ [64]byte
	v atomic.Uint32
	_ [60]byte
}

func newLoopState() *loopState {
	s := &loopState{}
	s.v.Store(uint32(stateIdle))
	return s
}

func (s *loopState) load() workerState { return workerState(s.v.Load()) }

// tryStart transitions stateIdle -> stateRunning. Returns false if the
// loop was already started (or is stopped/closed), making Start idempotent.
func (s *loopState) tryStart() bool {
	return s.v.CompareAndSwap(uint32(stateIdle), uint32(stateRunning))
}

// tryStop transitions stateRunning -> stateStopped. Returns false if the
// loop was never started or is already stopped/closed.
func (s *loopState) tryStop() bool {
	return s.v.CompareAndSwap(uint32(stateRunning), uint32(stateStopped))
}

// markClosed transitions unconditionally to stateClosed: close() always
// succeeds regardless of prior state, per spec's "close() is idempotent".
func (s *loopState) markClosed() {
	s.v.Store(uint32(stateClosed))
}

// isAlive reports whether the loop's goroutine is currently running, i.e.
// Start has completed and neither Stop nor Close has.
func (s *loopState) isAlive() bool {
	return s.load() == stateRunning
}

// isClosed reports whether Close has completed.
func (s *loopState) isClosed() bool {
	return s.load() == stateClosed
}
