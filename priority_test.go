package eventgroup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriority_String(t *testing.T) {
	cases := []struct {
		p    Priority
		want string
	}{
		{HIGH, "HIGH"},
		{MEDIUM, "MEDIUM"},
		{TIMER, "TIMER"},
		{DAEMON, "DAEMON"},
		{MONITOR, "MONITOR"},
		{BLOCKING, "BLOCKING"},
		{REPLICATION, "REPLICATION"},
		{CONCURRENT, "CONCURRENT"},
		{Priority(99), "Priority(99)"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.p.String())
	}
}

func TestPriority_valid(t *testing.T) {
	assert.True(t, HIGH.valid())
	assert.True(t, CONCURRENT.valid())
	assert.False(t, Priority(-1).valid())
	assert.False(t, Priority(8).valid())
}
