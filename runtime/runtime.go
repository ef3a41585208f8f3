// Package runtime implements the event-driven executor of spec.md
// §4.D: it loads the binary assembly the graph package writes, runs
// one or more independent instances against it, and drives power
// propagation, slot evaluation, and variable-write fan-out through a
// single FIFO event queue per instance.
package runtime

// Runtime binds a RuntimeHost to the instances it creates. It holds
// no per-graph state itself; every piece of running state lives on
// the Instance.
type Runtime struct {
	host RuntimeHost
}

// New returns a Runtime that resolves node behavior and host
// functions through host.
func New(host RuntimeHost) *Runtime {
	return &Runtime{host: host}
}

// NewInstance creates a fresh instance over ref, retaining a
// reference to it for the instance's lifetime. Call Destroy on the
// returned instance when done with it.
func (rt *Runtime) NewInstance(ref *RefAssembly) *Instance {
	return newInstance(rt, ref.Retain())
}
