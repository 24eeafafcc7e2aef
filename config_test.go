package eventgroup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, int64(15000), cfg.ReplicationMonitorIntervalMS)
	assert.Equal(t, int64(200), cfg.MonitorIntervalMS)
	assert.Equal(t, int64(20), cfg.ReplicationEventPauseTimeMS)
	assert.False(t, cfg.Debug)
	assert.Greater(t, cfg.ConcThreads, 0)
}

func TestLoadConfig_PartialOverridesOnlyNamedFields(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader("monitorIntervalMs: 50\ndebug: true\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(50), cfg.MonitorIntervalMS)
	assert.True(t, cfg.Debug)
	// untouched fields keep their DefaultConfig value.
	assert.Equal(t, int64(15000), cfg.ReplicationMonitorIntervalMS)
}

func TestLoadConfig_EmptyDocumentYieldsDefaults(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	_, err := LoadConfig(strings.NewReader("concThreads: [this is not a number"))
	assert.Error(t, err)
}
