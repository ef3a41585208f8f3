package runtime

import "github.com/wireflow/wireflow/value"

// NodeContext is handed to a NodeHandler for the duration of one
// HandleInput call: a view onto exactly one node of one running
// instance, scoped so a handler can't reach any other node directly.
type NodeContext struct {
	inst *Instance
	node uint32
}

// ReadInputSlot evaluates the node's slot-th declared input slot
// (0-indexed in declaration order), returning ok=false if the slot
// doesn't exist or is unbound.
func (c *NodeContext) ReadInputSlot(slot uint8) (value.Value, bool) {
	return c.inst.readInputSlot(c.node, slot)
}

// WriteOutputSlot writes v through the node's slot-th declared output
// slot to whatever variable it's bound to, if any.
func (c *NodeContext) WriteOutputSlot(slot uint8, v value.Value) {
	c.inst.writeOutputSlot(c.node, slot, v)
}

// SetPlugPower sets one of the node's output plugs to on or off. A
// call that doesn't change the plug's current level is a no-op — this
// idempotence is what lets a runtime graph contain wiring cycles
// without the event drain looping forever.
func (c *NodeContext) SetPlugPower(plug uint8, on bool) {
	c.inst.setPlugPower(c.node, plug, on)
}

// NodeID returns the dense node index this context is scoped to, for
// handlers that log or key external state by node.
func (c *NodeContext) NodeID() uint32 { return c.node }
