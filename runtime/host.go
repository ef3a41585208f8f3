package runtime

import (
	"github.com/wireflow/wireflow/expr"
	"github.com/wireflow/wireflow/value"
)

// NodeTypeID identifies a node's behavior at runtime, the same
// interned id the graph compiler recorded into assembly.Node.TypeID.
type NodeTypeID uint32

// NodeHandler implements the behavior of one node type. Node types
// live entirely on the host side — this package only drives when a
// handler runs and gives it a way to read/write the node's slots and
// set the power level of its output plugs.
type NodeHandler interface {
	// HandleInput runs whenever power reaches the node: on Activate
	// (plug is the implicit begin plug), on CustomInput (plug is the
	// declared custom input plug that received power), and on
	// Dependency (plug is again the begin plug — a variable or
	// emitter the node's last evaluation depended on changed, and the
	// node re-enters exactly as if freshly activated).
	HandleInput(ctx *NodeContext, plug uint8)
	// HandleDeactivate runs once when the node's active bit is
	// cleared, before its output plugs are depowered, so a handler
	// can release anything it acquired on activation.
	HandleDeactivate(ctx *NodeContext)
}

// RuntimeHost resolves node behavior and host functions for a running
// instance (spec.md §6 "RuntimeHost").
type RuntimeHost interface {
	LookupNodeHandler(typeID NodeTypeID) (NodeHandler, bool)
	InvokeFunction(id uint32, ctx *expr.FunctionContext) (value.Value, bool)
}
