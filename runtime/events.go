package runtime

// EventKind tags the four ways a node can be re-entered while an
// instance is running (spec.md §4.D "Events").
type EventKind uint8

const (
	// EventActivate enters a node through one of its input plugs, the
	// way power first reaches a node from a wire or an explicit call.
	EventActivate EventKind = iota
	// EventDeactivate drops a node out of the active-node bitset, runs
	// its handler's HandleDeactivate, then depowers its output plugs.
	EventDeactivate
	// EventDependency re-enters a node because a variable one of its
	// input slots reads was just written.
	EventDependency
	// EventCustomInput re-enters a node through a specific declared
	// custom input plug, distinct from the implicit begin plug.
	EventCustomInput
)

// Event is a single queued unit of work. The queue is strictly FIFO
// and append-only while draining (spec.md §5 "Event queue").
type Event struct {
	Kind      EventKind
	Node      uint32
	Plug      uint8
	Variable  uint32 // for EventDependency: the variable that changed
	InputSlot uint32 // for EventDependency: the dependent input slot, informational
}
