package eventgroup

import (
	"io"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config holds the process-wide, read-once-at-construction options from
// spec §6. An EventGroup never re-reads a Config after construction.
type Config struct {
	// ReplicationMonitorIntervalMS is the observation window, in
	// milliseconds, for replication and concurrent-loop stall detection.
	// Default 15000.
	ReplicationMonitorIntervalMS int64 `yaml:"replicationMonitorIntervalMs"`

	// MonitorIntervalMS is the observation window, in milliseconds, for
	// core-loop stall detection. Default 200.
	MonitorIntervalMS int64 `yaml:"monitorIntervalMs"`

	// ConcThreads is the size of the concurrent-loop pool. Default
	// ceil((NumCPU()+2)/2).
	ConcThreads int `yaml:"concThreads"`

	// ReplicationEventPauseTimeMS is the upper back-off multiplier for the
	// replication/concurrent pauser in non-debug mode. Default 20.
	ReplicationEventPauseTimeMS int64 `yaml:"replicationEventPauseTimeMs"`

	// Debug extends the core pauser's back-off ramp (spec §4.6) and
	// suppresses LoopBlockMonitor's escalation dumps, which fire only when
	// not in debug mode (spec §4.3).
	Debug bool `yaml:"debug"`
}

// DefaultConfig returns the spec §6 defaults, with ConcThreads computed
// from the current NumCPU.
func DefaultConfig() Config {
	return Config{
		ReplicationMonitorIntervalMS: 15000,
		MonitorIntervalMS:            200,
		ConcThreads:                  defaultConcThreads(),
		ReplicationEventPauseTimeMS:  20,
		Debug:                        false,
	}
}

func defaultConcThreads() int {
	n := runtime.NumCPU()
	return (n + 2 + 1) / 2 // ceil((n+2)/2)
}

// LoadConfig parses a YAML document into a Config, starting from
// DefaultConfig so a partial document only overrides the fields it names.
// Configuration parsing is an external-collaborator concern (spec §1);
// this is a standalone convenience, not something EventGroup itself calls.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, err
	}
	return cfg, nil
}
