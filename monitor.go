package eventgroup

import (
	"fmt"
	"time"
)

// LoopBlockMonitor is a probe hosted by the monitor loop, one per observed
// worker (spec §4.3). It implements EventHandler itself — "Monitor probes
// as handlers" (spec §9) — so the monitor loop can drive it through the
// same round-robin/self-removal machinery as any other handler.
type LoopBlockMonitor struct {
	observed          *EventLoop
	observationWindow int64 // milliseconds
	debug             bool

	// lastInterval is touched only by this probe's own Action, which is
	// only ever invoked from the single monitor-loop goroutine, so it
	// needs no synchronization.
	lastInterval int64
}

// NewLoopBlockMonitor constructs a probe observing loop, with the given
// observation window in milliseconds (spec §6:
// REPLICATION_MONITOR_INTERVAL_MS or MONITOR_INTERVAL_MS depending on
// which class of worker is observed).
func NewLoopBlockMonitor(observed *EventLoop, observationWindowMS int64, debug bool) *LoopBlockMonitor {
	return &LoopBlockMonitor{observed: observed, observationWindow: observationWindowMS, debug: debug}
}

// Priority implements EventHandler: probes always run on the monitor loop.
func (m *LoopBlockMonitor) Priority() Priority { return MONITOR }

// Identity implements EventHandler; probes are never CONCURRENT-routed.
func (m *LoopBlockMonitor) Identity() Identity { return 0 }

// Action implements EventHandler, performing one tick of spec §4.3's
// stall-detection protocol.
func (m *LoopBlockMonitor) Action() (bool, error) {
	t := m.observed.loopStartMS.Load()

	if t <= sentinelQuiet || t == sentinelIdle {
		// Quiet: no progress, and lastInterval is deliberately left
		// untouched (spec §9 Open Question: never reset on a quiet tick).
		return false, nil
	}

	if t == sentinelTerminated {
		logEntry(Entry{
			Level:    LevelWarn,
			Category: "monitor",
			Loop:     m.observed.Name(),
			Message:  "observed worker has terminated; removing probe",
		})
		return false, fmt.Errorf("eventgroup: observed worker terminated: %w", ErrInvalidEventHandler)
	}

	now := clockNowMS()
	blocked := now - t
	halfWindow := (m.observationWindow + 1) / 2
	if halfWindow <= 0 {
		halfWindow = 1
	}
	intervals := blocked / halfWindow

	if intervals > m.lastInterval && !m.debug && m.observed.IsAlive() {
		m.observed.dumpRunningState("stall detected", func() bool {
			return m.observed.loopStartMS.Load() == t
		})
	}
	if v := max(1, intervals); v > m.lastInterval {
		m.lastInterval = v
	}

	return false, nil
}

// PauserMonitor is a probe hosted by the monitor loop that periodically
// logs a Pauser's rolling statistics (spec §4.5). It never blocks the
// monitor loop: each Action call is a cheap time comparison plus, at most
// once per period, a single log call.
type PauserMonitor struct {
	pauser Pauser
	label  string
	period time.Duration

	lastReport time.Time
}

// NewPauserMonitor constructs a probe reporting pauser's stats under label
// every period.
func NewPauserMonitor(pauser Pauser, label string, period time.Duration) *PauserMonitor {
	return &PauserMonitor{pauser: pauser, label: label, period: period}
}

// Priority implements EventHandler.
func (m *PauserMonitor) Priority() Priority { return MONITOR }

// Identity implements EventHandler.
func (m *PauserMonitor) Identity() Identity { return 0 }

// Action implements EventHandler.
func (m *PauserMonitor) Action() (bool, error) {
	now := time.Now()
	if !m.lastReport.IsZero() && now.Sub(m.lastReport) < m.period {
		return false, nil
	}
	m.lastReport = now

	stats := m.pauser.Stats()
	logEntry(Entry{
		Level:    LevelInfo,
		Category: "pauser",
		Message:  m.label,
		Fields: map[string]any{
			"pauseCount":    stats.PauseCount,
			"unpauseCount":  stats.UnpauseCount,
			"parkedNanos":   stats.ParkedNanos,
			"maxBackoffNs":  stats.MaxBackoffNs,
			"currentBackNs": stats.CurrentBackNs,
		},
	})
	return true, nil
}
