package eventgroup

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// Sentinel values for EventLoop.loopStartMS (spec §3/§4.2).
const (
	// sentinelQuiet is the value loopStartMS holds from construction until
	// the loop's first pass. LoopBlockMonitor treats it as quiet; between
	// bursts the loop itself writes sentinelIdle, never 0.
	sentinelQuiet int64 = 0

	// sentinelIdle marks the loop parked/idle (no handlers to run, or
	// paused between polls).
	sentinelIdle int64 = 1<<63 - 1 // MAX

	// sentinelTerminated marks the loop as having exited its run loop.
	sentinelTerminated int64 = sentinelIdle - 1 // MAX - 1
)

// clockNowMS is the steady monotonic-ish millisecond clock used for
// loopStartMS. Replaced in tests for deterministic stall scenarios.
var clockNowMS = func() int64 { return time.Now().UnixMilli() }

// EventLoop is a single-threaded cooperative worker: it owns one goroutine
// and drives its registered EventHandler instances round-robin (spec §4.2).
type EventLoop struct {
	// loopStartMS is written only by the loop's own goroutine and read by
	// LoopBlockMonitor probes from the monitor goroutine; coherent atomic
	// access is sufficient (spec §4.2, §9).
	_           [64]byte
	loopStartMS atomic.Int64
	_           [56]byte

	name    string
	pauser  Pauser
	binding bool
	daemon  bool

	registry *handlerRegistry
	state    *loopState
	started  atomic.Bool // true once Start has actually spawned the goroutine
	stopCh   chan struct{}
	doneCh   chan struct{}

	affinity Affinity
}

// newEventLoop constructs an EventLoop in the idle state. It is not
// started until Start is called.
func newEventLoop(name string, pauser Pauser, daemon, binding bool, affinity Affinity) *EventLoop {
	l := &EventLoop{
		name:     name,
		pauser:   pauser,
		binding:  binding,
		daemon:   daemon,
		registry: newHandlerRegistry(),
		state:    newLoopState(),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		affinity: affinity,
	}
	l.loopStartMS.Store(sentinelQuiet)
	return l
}

// Name returns the worker's configured name.
func (l *EventLoop) Name() string { return l.name }

// AddHandler registers h with this worker. Safe to call from any goroutine,
// before or after Start.
func (l *EventLoop) AddHandler(h EventHandler) {
	l.registry.add(h)
}

// Start spawns the worker goroutine. Idempotent: calling Start on an
// already-started (or stopped/closed) loop is a no-op.
func (l *EventLoop) Start() {
	if !l.state.tryStart() {
		return
	}
	l.started.Store(true)
	go l.run()
}

// IsAlive reports whether the worker's goroutine is currently running.
func (l *EventLoop) IsAlive() bool { return l.state.isAlive() }

// IsClosed reports whether Close has completed for this worker.
func (l *EventLoop) IsClosed() bool { return l.state.isClosed() }

// Unpause forwards to the worker's Pauser, waking it if parked.
func (l *EventLoop) Unpause() {
	if l.pauser != nil {
		l.pauser.Unpause()
	}
}

// Stop requests the worker cease picking new handlers and exit after its
// in-flight Action (if any) returns. It returns promptly without waiting
// for the goroutine to actually exit; use Close to wait.
func (l *EventLoop) Stop() error {
	if l.state.tryStop() {
		close(l.stopCh)
	}
	l.Unpause()
	return nil
}

// Close stops (if not already stopped) and waits for the worker goroutine
// to exit, if it was ever started. Idempotent; closing a loop that was
// never started is a cheap no-op rather than a deadlock waiting on a
// goroutine that was never spawned.
func (l *EventLoop) Close() error {
	wasAlreadyClosed := l.state.isClosed()
	_ = l.Stop()
	if !wasAlreadyClosed && l.started.Load() {
		<-l.doneCh
	}
	l.state.markClosed()
	return nil
}

// run is the worker's goroutine body: the loop described by spec §4.2.
func (l *EventLoop) run() {
	defer close(l.doneCh)
	defer l.loopStartMS.Store(sentinelTerminated)

	if l.binding && l.affinity != nil {
		// Runs on the worker's own goroutine, not the caller of Start: Bind's
		// LockOSThread/SchedSetaffinity only pin the thread this goroutine
		// actually executes on (spec §5).
		// Advisory: failures are swallowed.
		_ = l.affinity.Bind(l.name)
	}

	for {
		select {
		case <-l.stopCh:
			return
		default:
		}

		h, idx, ok := l.registry.next()
		if !ok {
			l.loopStartMS.Store(sentinelIdle)
			l.pauser.Pause()
			continue
		}

		l.loopStartMS.Store(clockNowMS())
		if err := l.invoke(h); err != nil {
			if errors.Is(err, ErrInvalidEventHandler) {
				l.registry.removeAt(idx)
			} else {
				logEntry(Entry{
					Level:    LevelWarn,
					Category: "dispatch",
					Loop:     l.name,
					Message:  "handler action failed",
					Err:      err,
				})
			}
		}
	}
}

// invoke runs a single handler's Action, converting a panic into an error
// so the worker's goroutine never dies because of one misbehaving handler
// (spec §7: "No error from a handler aborts the worker's thread").
func (l *EventLoop) invoke(h EventHandler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("eventgroup: handler panic: %v", r)
		}
	}()
	_, err = h.Action()
	return err
}

// dumpRunningState logs a diagnostic dump of this worker's current state,
// for use by LoopBlockMonitor when a stall escalates (spec §4.3). reason
// describes why the dump was requested; stillInSameInvocation is invoked
// after gathering the dump to report whether the worker is still inside
// the same blocked invocation observed by the caller.
func (l *EventLoop) dumpRunningState(reason string, stillInSameInvocation func() bool) {
	handlers := l.registry.snapshot()
	still := stillInSameInvocation != nil && stillInSameInvocation()

	// Dumps go straight to the logger, bypassing logEntry's log-storm
	// limiter: LoopBlockMonitor alone decides dump cadence.
	logger := currentLogger()
	if !logger.Enabled(LevelWarn) {
		return
	}
	logger.Log(Entry{
		Level:    LevelWarn,
		Category: "monitor",
		Loop:     l.name,
		Message:  formatDump(l.name, reason, still, handlers),
		Fields: map[string]any{
			"reason":              reason,
			"handlerCount":        len(handlers),
			"stillSameInvocation": still,
		},
	})
}
