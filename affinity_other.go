//go:build !linux

package eventgroup

// NewAffinity returns the default Affinity for this platform. Outside
// Linux there is no portable sched_setaffinity equivalent wired here, so
// binding is an advisory no-op, consistent with spec §5's "advisory and
// may fail silently".
func NewAffinity() Affinity {
	return NoAffinity{}
}
