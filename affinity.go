package eventgroup

// Affinity requests that the calling goroutine's underlying OS thread be
// pinned to a CPU. It is explicitly an external collaborator (spec §1,
// §5): advisory, best-effort, and may fail silently. EventLoop.run calls
// Bind, on the worker's own goroutine, only when its EventGroup's binding
// flag is set.
type Affinity interface {
	// Bind attempts to pin the current OS thread, tagging the request
	// with name for diagnostics. Implementations should not block for
	// long or panic; a failure is simply swallowed by the caller.
	Bind(name string) error
}

// NoAffinity is an Affinity that never binds, for platforms or
// environments with no native pinning mechanism.
type NoAffinity struct{}

// Bind implements Affinity as a no-op.
func (NoAffinity) Bind(string) error { return nil }
