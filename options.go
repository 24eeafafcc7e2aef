package eventgroup

// groupOptions holds the configuration GroupOption values apply, following
// the same functional-option pattern used elsewhere in this codebase.
type groupOptions struct {
	daemon             bool
	binding            bool
	namePrefix         string
	affinity           Affinity
	concPauserSupplier PauserSupplier
}

// GroupOption configures an EventGroup at construction.
type GroupOption interface {
	applyGroup(*groupOptions)
}

type groupOptionFunc func(*groupOptions)

func (f groupOptionFunc) applyGroup(o *groupOptions) { f(o) }

// WithDaemon sets the daemon flag propagated to the core, blocking, and
// concurrent loops (the replication loop always uses daemon=true
// regardless, per spec §9's documented asymmetry).
func WithDaemon(daemon bool) GroupOption {
	return groupOptionFunc(func(o *groupOptions) { o.daemon = daemon })
}

// WithBinding enables CPU-affinity binding requests for every loop this
// group creates (spec §5).
func WithBinding(binding bool) GroupOption {
	return groupOptionFunc(func(o *groupOptions) { o.binding = binding })
}

// WithNamePrefix sets the prefix used to build each loop's name
// ("<prefix>-<role>-event-loop[-n]", spec §4.1 lazy-loop creation
// protocol).
func WithNamePrefix(prefix string) GroupOption {
	return groupOptionFunc(func(o *groupOptions) { o.namePrefix = prefix })
}

// WithAffinity overrides the default platform Affinity binder.
func WithAffinity(a Affinity) GroupOption {
	return groupOptionFunc(func(o *groupOptions) { o.affinity = a })
}

// WithConcThreadPauserSupplier sets the initial factory used to build
// pausers for concurrent loops, equivalent to calling
// EventGroup.SetConcThreadPauserSupplier before any concurrent loop has
// been created.
func WithConcThreadPauserSupplier(s PauserSupplier) GroupOption {
	return groupOptionFunc(func(o *groupOptions) { o.concPauserSupplier = s })
}

func resolveGroupOptions(cfg Config, opts []GroupOption) *groupOptions {
	o := &groupOptions{
		namePrefix:         "eventgroup",
		affinity:           NewAffinity(),
		concPauserSupplier: defaultConcPauserSupplier(cfg.ReplicationEventPauseTimeMS),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyGroup(o)
	}
	return o
}
