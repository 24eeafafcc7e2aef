package eventgroup

import (
	"fmt"
	"sync"
	"time"
)

// EventGroup is the dispatcher spec §4.1 describes: a fixed core, blocking,
// and monitor loop, constructed with the group and started together by
// Start, plus a replication loop and a pool of concurrent loops created
// lazily, the first time a handler is routed to them.
type EventGroup struct {
	cfg Config
	opt *groupOptions

	core     *EventLoop
	blocking *EventLoop
	monitor  *EventLoop

	// lazyMu guards the lazy-creation protocol for replication and
	// concurrent loops (spec §4.1): test-if-populated, build, register
	// probes, start, publish, all under one lock so two concurrent
	// AddHandler calls never both construct the same slot.
	lazyMu      sync.Mutex
	replication *EventLoop
	concurrent  []*EventLoop // length cfg.ConcThreads; nil entries are not yet created

	closed bool
	mu     sync.Mutex // guards closed
}

// New constructs an EventGroup from cfg. The core, blocking, and monitor
// loops are built but not started until Start is called (spec §3
// Lifecycle); replication and concurrent loops are deferred further still,
// until the first handler that routes to them.
func New(cfg Config, opts ...GroupOption) *EventGroup {
	o := resolveGroupOptions(cfg, opts)

	g := &EventGroup{
		cfg:        cfg,
		opt:        o,
		concurrent: make([]*EventLoop, cfg.ConcThreads),
	}

	g.core = newEventLoop(o.namePrefix+"-core-event-loop", corePauser(cfg.Debug), o.daemon, o.binding, o.affinity)
	g.blocking = newEventLoop(o.namePrefix+"-blocking-event-loop", corePauser(cfg.Debug), o.daemon, o.binding, o.affinity)
	g.monitor = newEventLoop(o.namePrefix+"-monitor-event-loop", monitorPauser(), o.daemon, o.binding, o.affinity)

	return g
}

// Start starts the core, blocking, and monitor loops, then registers the
// core's stall probe with the monitor. Idempotent: if the core loop is
// already alive, Start is a no-op (spec §4.1, §8 "Idempotent start").
//
// Registering the core's probe only after both loops are running is
// deliberate: the sentinel 0 loopStartMS starts with is treated as "quiet"
// by the probe, so a pre-start observation is harmless, but there is no
// reason to pay for it.
func (g *EventGroup) Start() {
	if g.core.IsAlive() {
		return
	}

	g.core.Start()
	g.blocking.Start()
	g.monitor.Start()

	// Only the core loop gets a stall probe at construction (spec §4.1):
	// the blocking loop exists precisely to run handlers that may block for
	// a while, so "stalled" isn't a meaningful signal for it.
	g.monitor.AddHandler(NewLoopBlockMonitor(g.core, g.cfg.MonitorIntervalMS, g.cfg.Debug))
}

// AddHandler routes h to the appropriate worker per spec §4.1's priority
// table, lazily creating the replication loop or the relevant concurrent
// slot if this is the first handler it has seen for that class.
func (g *EventGroup) AddHandler(h EventHandler) error {
	if h == nil {
		return newInvalidArgument("eventgroup: nil handler", ErrInvalidEventHandler)
	}

	g.mu.Lock()
	closed := g.closed
	g.mu.Unlock()
	if closed {
		return ErrClosedResource
	}

	switch p := h.Priority(); p {
	case HIGH, MEDIUM, TIMER, DAEMON:
		g.core.AddHandler(h)
		return nil
	case MONITOR:
		g.monitor.AddHandler(h)
		return nil
	case BLOCKING:
		g.blocking.AddHandler(h)
		return nil
	case REPLICATION:
		g.replicationLoop().AddHandler(h)
		return nil
	case CONCURRENT:
		slot := concurrentSlot(h.Identity(), len(g.concurrent))
		g.concurrentLoop(slot).AddHandler(h)
		return nil
	default:
		return newInvalidArgument(fmt.Sprintf("eventgroup: priority %s", p), ErrUnknownPriority)
	}
}

// AddHandlerHint is the supplementary registration form spec §9 documents:
// it accepts a caller hint requesting the handler not be run immediately,
// but the hint is ignored, since every worker here only ever picks handlers
// up on its own next round-robin turn regardless of when AddHandler returns.
func (g *EventGroup) AddHandlerHint(h EventHandler, runImmediately bool) error {
	return g.AddHandler(h)
}

// concurrentSlot implements spec §4.1's hash formula exactly:
// n' = (n >>> 23) XOR (n >>> 9) XOR n; slot = (n' AND 0x7FFFFFFF) mod CONC_THREADS.
func concurrentSlot(id Identity, concThreads int) int {
	n := uint64(id)
	mixed := (n >> 23) ^ (n >> 9) ^ n
	return int((mixed & 0x7FFFFFFF) % uint64(concThreads))
}

// replicationLoop returns the replication loop, creating and starting it on
// first use. The replication loop is always daemon=true regardless of the
// group's own daemon option (spec §9 Open Question, preserved verbatim).
func (g *EventGroup) replicationLoop() *EventLoop {
	g.lazyMu.Lock()
	defer g.lazyMu.Unlock()

	if g.replication != nil {
		return g.replication
	}

	pauser := replicationPauser(g.cfg.ReplicationEventPauseTimeMS)
	l := newEventLoop(g.opt.namePrefix+"-replication-event-loop", pauser, true, g.opt.binding, g.opt.affinity)
	g.monitor.AddHandler(NewLoopBlockMonitor(l, g.cfg.ReplicationMonitorIntervalMS, g.cfg.Debug))
	l.Start()
	g.monitor.AddHandler(NewPauserMonitor(pauser, l.Name(), 60*time.Second))

	g.replication = l
	return l
}

// concurrentLoop returns the concurrent loop at slot, creating and starting
// it on first use.
func (g *EventGroup) concurrentLoop(slot int) *EventLoop {
	g.lazyMu.Lock()
	defer g.lazyMu.Unlock()

	if l := g.concurrent[slot]; l != nil {
		return l
	}

	pauser := g.opt.concPauserSupplier()
	name := fmt.Sprintf("%s-concurrent-event-loop-%d", g.opt.namePrefix, slot)
	l := newEventLoop(name, pauser, g.opt.daemon, g.opt.binding, g.opt.affinity)
	g.monitor.AddHandler(NewLoopBlockMonitor(l, g.cfg.ReplicationMonitorIntervalMS, g.cfg.Debug))
	l.Start()
	g.monitor.AddHandler(NewPauserMonitor(pauser, name, 60*time.Second))

	g.concurrent[slot] = l
	return l
}

// SetConcThreadPauserSupplier replaces the factory used to build Pausers for
// concurrent loops not yet created. It has no effect on slots already
// populated.
func (g *EventGroup) SetConcThreadPauserSupplier(s PauserSupplier) {
	g.lazyMu.Lock()
	defer g.lazyMu.Unlock()
	g.opt.concPauserSupplier = s
}

// IsAlive reports whether the group's core loop is currently running.
func (g *EventGroup) IsAlive() bool { return g.core.IsAlive() }

// IsClosed reports whether Close has been called for this group; it reads
// true as soon as Close begins, before the loops have finished closing.
func (g *EventGroup) IsClosed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}

// Unpause wakes the core loop's Pauser, for callers that want to shorten an
// in-flight back-off after enqueueing new work.
func (g *EventGroup) Unpause() { g.core.Unpause() }

// Stop requests every owned loop stop picking up new handlers, in the order
// spec §4.1 requires: monitor, then replication (if created), then each
// created concurrent slot, then core, then blocking. Stop is best-effort and
// does not wait for any loop's goroutine to exit; use Close for that.
func (g *EventGroup) Stop() {
	g.monitor.Stop()

	g.lazyMu.Lock()
	replication := g.replication
	concurrent := append([]*EventLoop(nil), g.concurrent...)
	g.lazyMu.Unlock()

	if replication != nil {
		replication.Stop()
	}
	for _, l := range concurrent {
		if l != nil {
			l.Stop()
		}
	}

	g.core.Stop()
	g.blocking.Stop()
}

// Close stops the group (if not already stopped) and waits for every owned
// loop to exit, in the order: monitor, blocking, core, replication (if
// created), each created concurrent slot. Errors from individual loops are
// logged as they occur and aggregated into a CloseError; Close keeps closing
// the remaining loops even after one fails. Idempotent.
func (g *EventGroup) Close() error {
	g.mu.Lock()
	alreadyClosed := g.closed
	g.closed = true
	g.mu.Unlock()
	if alreadyClosed {
		return nil
	}

	g.Stop()

	var errs []error

	errs = appendCloseError(errs, g.closeOne(g.monitor))
	errs = appendCloseError(errs, g.closeOne(g.blocking))
	errs = appendCloseError(errs, g.closeOne(g.core))

	g.lazyMu.Lock()
	replication := g.replication
	concurrent := append([]*EventLoop(nil), g.concurrent...)
	g.lazyMu.Unlock()

	if replication != nil {
		errs = appendCloseError(errs, g.closeOne(replication))
	}
	for _, l := range concurrent {
		if l != nil {
			errs = appendCloseError(errs, g.closeOne(l))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return &CloseError{Errors: errs}
}

// closeOne closes l, logging and returning any error rather than letting it
// abort the rest of the close sequence (spec §7 CloseOrStopOfOne).
func (g *EventGroup) closeOne(l *EventLoop) error {
	if err := l.Close(); err != nil {
		logEntry(Entry{
			Level:    LevelWarn,
			Category: "lifecycle",
			Loop:     l.Name(),
			Message:  "loop failed to close",
			Err:      err,
		})
		return fmt.Errorf("loop %q: %w", l.Name(), err)
	}
	return nil
}
