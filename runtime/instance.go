package runtime

import (
	"encoding/binary"

	"github.com/wireflow/wireflow/assembly"
	"github.com/wireflow/wireflow/expr"
	"github.com/wireflow/wireflow/value"
)

// beginPlugValue mirrors assembly.BeginPlug under a package-local name
// so runtime code reads as runtime concepts rather than assembly ones.
const beginPlugValue uint8 = assembly.BeginPlug

// Instance is one running copy of a compiled assembly: its variable
// storage, active-state bitsets, emitter subscriptions, and event
// queue (spec.md §3 "Instance", §5 "Resource model").
type Instance struct {
	rt  *Runtime
	ref *RefAssembly
	asm *assembly.Assembly

	variables []value.Value

	activeNodes      bitset
	activeInputPlugs []bitset // one per node, width 256
	activeOutputPlug bitset   // width = assembly.OutputPlugCount(), dense-indexed

	emitters *bus
	queue    []Event
}

func newInstance(rt *Runtime, ref *RefAssembly) *Instance {
	a := ref.asm
	inst := &Instance{
		rt:               rt,
		ref:              ref,
		asm:              a,
		variables:        make([]value.Value, a.VariableCount()),
		activeNodes:      newBitset(int(a.NodeCount())),
		activeInputPlugs: make([]bitset, a.NodeCount()),
		activeOutputPlug: newBitset(int(a.OutputPlugCount())),
		emitters:         newBus(),
	}
	for i := range inst.activeInputPlugs {
		inst.activeInputPlugs[i] = newBitset(256)
	}
	for i := range inst.variables {
		inst.variables[i] = value.Nil()
	}
	// Every entry node starts running the moment the instance exists;
	// nothing outside the runtime activates an entry by hand (spec.md
	// §4.D "Create instance").
	for i := uint32(0); i < a.EntryNodeCount(); i++ {
		inst.enqueue(Event{Kind: EventActivate, Node: a.EntryNode(i), Plug: beginPlugValue})
	}
	return inst
}

// Destroy releases the instance's hold on its assembly and drops its
// pending events and emitter subscriptions. The instance must not be
// used afterward.
func (inst *Instance) Destroy() {
	inst.queue = nil
	inst.emitters = newBus()
	inst.ref.Release()
}

// ReadVariable returns the current value of variable idx, or
// ok=false if idx is out of range. Hosts use this to inspect state
// between pumps, e.g. for serialization or debugging.
func (inst *Instance) ReadVariable(idx uint32) (value.Value, bool) {
	if idx >= uint32(len(inst.variables)) {
		return value.Value{}, false
	}
	return inst.variables[idx], true
}

// WriteVariable sets variable idx's value and fans the write out to
// every active dependent input slot, as a node's own output-slot write
// does, except that no node is skipped. Hosts use this to seed or externally drive
// instance state from outside any node's handler.
func (inst *Instance) WriteVariable(idx uint32, v value.Value) {
	inst.writeVariableExcept(idx, v, assembly.InvalidIndex)
}

// NotifyChange re-enters every input slot currently listening on
// emitter id, the way a host-driven external event (a timer firing, a
// network packet arriving) wakes up the expressions that called
// Listen on it during their last evaluation (spec.md §4.D "Emitter
// bus").
func (inst *Instance) NotifyChange(id EmitterID) {
	for _, key := range inst.emitters.notify(id) {
		inst.enqueue(Event{Kind: EventDependency, Node: key.node, Plug: beginPlugValue, InputSlot: key.slot})
	}
}

// Activate enqueues entry into node through its implicit begin plug,
// the way an entry node starts running (spec.md §4.D "Activate").
func (inst *Instance) Activate(node uint32) {
	inst.enqueue(Event{Kind: EventActivate, Node: node, Plug: beginPlugValue})
}

// Deactivate enqueues node's removal from the active-node set.
func (inst *Instance) Deactivate(node uint32) {
	inst.enqueue(Event{Kind: EventDeactivate, Node: node})
}

// CustomInput enqueues entry into node through one of its declared
// custom input plugs.
func (inst *Instance) CustomInput(node uint32, plug uint8) {
	inst.enqueue(Event{Kind: EventCustomInput, Node: node, Plug: plug})
}

func (inst *Instance) enqueue(e Event) {
	inst.queue = append(inst.queue, e)
}

// Pump drains the event queue to completion. A handler that enqueues
// more events (directly, through SetPlugPower, or indirectly through
// a variable write) extends the queue the same pump keeps draining, so
// a single external stimulus can cascade through the whole graph in
// one Pump call (spec.md §4.D "event loop"). Power-change idempotence
// is what keeps this loop finite even across a wiring cycle: a plug
// whose level doesn't change stops propagating right there.
func (inst *Instance) Pump() {
	for len(inst.queue) > 0 {
		e := inst.queue[0]
		inst.queue = inst.queue[1:]
		inst.dispatch(e)
	}
}

func (inst *Instance) dispatch(e Event) {
	if e.Node >= inst.asm.NodeCount() {
		return
	}
	switch e.Kind {
	case EventActivate:
		inst.handleActivate(e.Node, e.Plug)
	case EventDeactivate:
		inst.handleDeactivate(e.Node)
	case EventDependency, EventCustomInput:
		// Dependency and custom-input events only matter to a node
		// that's currently watching: an inactive node re-reads fresh
		// state the next time it's really activated, so a stale event
		// addressed to it is simply dropped (spec.md §4.D "Dependency
		// delivery").
		if !inst.activeNodes.Test(int(e.Node)) {
			return
		}
		inst.invokeHandler(e.Node, e.Plug)
	}
}

// handleActivate brings node into the active set and runs its
// handler. Activating an already-active node is a no-op: the node is
// already running and re-running its handler would duplicate whatever
// side effect it had the first time (spec.md §4.D "Activate").
func (inst *Instance) handleActivate(node uint32, plug uint8) {
	if inst.activeNodes.Test(int(node)) {
		return
	}
	inst.activeNodes.Set(int(node))
	inst.invokeHandler(node, plug)
	inst.setPlugPower(node, assembly.DefaultOutputPlug, true)
}

// handleDeactivate clears node's active bit, runs its deactivation
// handler, then depowers its default output and every custom output —
// the depower can itself cascade further Deactivate events along any
// wire that led out of those plugs (spec.md §4.D "Deactivate").
// Deactivating an already-inactive node is a no-op.
func (inst *Instance) handleDeactivate(node uint32) {
	if !inst.activeNodes.Test(int(node)) {
		return
	}
	inst.activeNodes.Clear(int(node))

	typeID := NodeTypeID(inst.asm.Node(node).TypeID)
	if handler, ok := inst.rt.host.LookupNodeHandler(typeID); ok {
		handler.HandleDeactivate(&NodeContext{inst: inst, node: node})
	}

	n := inst.asm.Node(node)
	inst.setPlugPower(node, assembly.DefaultOutputPlug, false)
	for i := uint32(0); i < n.CustomOutputCount; i++ {
		p := inst.asm.OutputPlug(n.CustomOutputStart + i)
		inst.setPlugPower(node, uint8(p.PlugIndex), false)
	}
}

func (inst *Instance) invokeHandler(node uint32, plug uint8) {
	inst.activeInputPlugs[node].Set(int(plug))

	typeID := NodeTypeID(inst.asm.Node(node).TypeID)
	handler, ok := inst.rt.host.LookupNodeHandler(typeID)
	if !ok {
		return
	}
	handler.HandleInput(&NodeContext{inst: inst, node: node}, plug)
}

// setPlugPower sets one of node's output plugs to the boolean level
// on. A call that doesn't change the plug's current level is a no-op;
// otherwise every wire leaving the plug is followed: a wire into
// another node's begin plug turns into an Activate or Deactivate,
// while a wire into a custom input plug turns into a CustomInput only
// when powering on — there is no "custom deactivate" event (spec.md
// §4.D "Power propagation").
func (inst *Instance) setPlugPower(node uint32, plug uint8, on bool) {
	outIdx, found := inst.findOutputPlug(node, plug)
	if !found {
		return
	}
	if inst.activeOutputPlug.Test(int(outIdx)) == on {
		return
	}
	if on {
		inst.activeOutputPlug.Set(int(outIdx))
	} else {
		inst.activeOutputPlug.Clear(int(outIdx))
	}

	p := inst.asm.OutputPlug(outIdx)
	for i := uint32(0); i < p.WireCount; i++ {
		w := inst.asm.Wire(p.WireStart + i)
		if uint8(w.TargetInputPlug) == beginPlugValue {
			if on {
				inst.enqueue(Event{Kind: EventActivate, Node: w.TargetNode, Plug: beginPlugValue})
			} else {
				inst.enqueue(Event{Kind: EventDeactivate, Node: w.TargetNode})
			}
		} else if on {
			inst.enqueue(Event{Kind: EventCustomInput, Node: w.TargetNode, Plug: uint8(w.TargetInputPlug)})
		}
	}
}

func (inst *Instance) findOutputPlug(node uint32, plug uint8) (uint32, bool) {
	n := inst.asm.Node(node)
	if plug == assembly.DefaultOutputPlug {
		if n.DefaultOutputPlugIdx == assembly.InvalidIndex {
			return 0, false
		}
		return n.DefaultOutputPlugIdx, true
	}
	for i := uint32(0); i < n.CustomOutputCount; i++ {
		candidate := n.CustomOutputStart + i
		if inst.asm.OutputPlug(candidate).PlugIndex == uint32(plug) {
			return candidate, true
		}
	}
	return 0, false
}

// readInputSlot evaluates the binding of node's localSlot-th declared
// input slot: a direct variable read, a decoded constant, a compiled
// expression, or nothing at all if the slot is unbound. Evaluating an
// expression slot first drops whatever it listened to on its previous
// evaluation, so a Listen call an expression no longer makes doesn't
// leave a stale subscription behind (spec.md §4.D "Emitter bus").
func (inst *Instance) readInputSlot(node uint32, localSlot uint8) (value.Value, bool) {
	n := inst.asm.Node(node)
	if uint32(localSlot) >= n.InputSlotCount {
		return value.Value{}, false
	}
	slotGlobal := n.InputSlotStart + uint32(localSlot)
	slot := inst.asm.InputSlot(slotGlobal)

	switch {
	case slot.VariableIdx != assembly.InvalidIndex:
		return inst.variables[slot.VariableIdx], true
	case slot.ConstantIdx != assembly.InvalidIndex:
		return decodeConstant(inst.asm.Constant(slot.ConstantIdx)), true
	case slot.ExpressionIdx != assembly.InvalidIndex:
		inst.emitters.clearSlot(slotKey{node: node, slot: slotGlobal})
		e := inst.asm.Expression(slot.ExpressionIdx)
		code := inst.asm.ByteCode(e)
		return expr.Evaluate(&evalHost{inst: inst, node: node, slot: slotGlobal}, code)
	default:
		return value.Value{}, false
	}
}

// writeOutputSlot writes v to node's localSlot-th declared output
// slot's bound variable, if any, fanning the write out to every
// dependent input slot except node's own: a handler already saw the
// fresh value it just wrote, so re-entering it from its own write
// would only spin forever on any node whose expression both reads and
// writes the same variable (spec.md §4.D "skip if node == source_node").
func (inst *Instance) writeOutputSlot(node uint32, localSlot uint8, v value.Value) {
	n := inst.asm.Node(node)
	if uint32(localSlot) >= n.OutputSlotCount {
		return
	}
	slot := inst.asm.OutputSlot(n.OutputSlotStart + uint32(localSlot))
	if slot.VariableIdx == assembly.InvalidIndex {
		return
	}
	inst.writeVariableExcept(slot.VariableIdx, v, node)
}

// writeVariableExcept stores v and enqueues a Dependency event for
// every dependency record of this variable whose node is active
// (spec.md §4.D "Variable write fan-out"); emitter subscriptions are
// not consulted. Writing the value the variable already holds is a
// no-op — no store, no dependency events — and skipNode is excluded
// from the fan-out so a node can never re-trigger itself off its own
// write.
func (inst *Instance) writeVariableExcept(idx uint32, v value.Value, skipNode uint32) {
	if idx >= uint32(len(inst.variables)) {
		return
	}
	if inst.variables[idx].Equal(v) {
		return
	}
	inst.variables[idx] = v
	variable := inst.asm.Variable(idx)
	for i := uint32(0); i < variable.DependencyCount; i++ {
		dep := inst.asm.Dependency(variable.DependencyStart + i)
		if dep.Node == skipNode {
			continue
		}
		if !inst.activeNodes.Test(int(dep.Node)) {
			continue
		}
		inst.enqueue(Event{
			Kind:      EventDependency,
			Node:      dep.Node,
			Plug:      beginPlugValue,
			Variable:  idx,
			InputSlot: dep.InputSlot,
		})
	}
}

func decodeConstant(c assembly.Constant) value.Value {
	var payload [16]byte
	binary.LittleEndian.PutUint64(payload[:8], c.Serialized)
	return value.FromPayload(value.TypeID(c.TypeID), payload)
}
