//go:build linux

package eventgroup

import (
	"fmt"
	"hash/fnv"
	"runtime"

	"golang.org/x/sys/unix"
)

// linuxAffinity pins the calling OS thread to a single CPU chosen
// deterministically from the bind name, spread across the available CPU
// set via sched_setaffinity(2).
type linuxAffinity struct {
	cpus []int
}

// NewAffinity returns the default Affinity for this platform: on Linux, a
// real sched_setaffinity-backed binder; elsewhere, NoAffinity.
func NewAffinity() Affinity {
	n := runtime.NumCPU()
	cpus := make([]int, n)
	for i := range cpus {
		cpus[i] = i
	}
	return &linuxAffinity{cpus: cpus}
}

// Bind implements Affinity. It locks the calling goroutine to its current
// OS thread (required for sched_setaffinity to apply to the right thread)
// and pins that thread to one CPU, chosen by hashing name over the
// available CPU set so repeated calls with the same worker name are
// deterministic.
func (a *linuxAffinity) Bind(name string) error {
	if len(a.cpus) == 0 {
		return nil
	}
	runtime.LockOSThread()

	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	cpu := a.cpus[int(h.Sum32())%len(a.cpus)]

	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)

	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("eventgroup: affinity: sched_setaffinity cpu %d: %w", cpu, err)
	}
	return nil
}
