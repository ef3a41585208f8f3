package graph

import (
	"github.com/wireflow/wireflow/internal/growslice"
	"github.com/wireflow/wireflow/value"
)

// BuildStatus tracks whether a Builder is open for authoring mutation
// or has already run compile() (spec.md §4.C "All mutation is
// rejected unless status is Reset").
type BuildStatus uint8

const (
	StatusReset BuildStatus = iota
	StatusCompiled
	StatusError
)

// Builder is the stateful authoring API (spec.md §4.C "Builder API"):
// a single current open node and open slot, mutated by one call at a
// time until Compile is run.
type Builder struct {
	status BuildStatus

	nodes     []*Node
	nodeIndex map[uint64]int
	wires     []Wire
	variables []Variable

	curNode     *Node
	curSlotKind curSlotKind // which of InputSlots/OutputSlots the last add_*_slot touched
	curSlotIdx  int         // index within that slice
}

type curSlotKind uint8

const (
	slotNone curSlotKind = iota
	slotInput
	slotOutput
)

// NewBuilder returns a fresh, open Builder.
func NewBuilder() *Builder {
	b := &Builder{}
	b.Reset()
	return b
}

// Reset discards all authored state and returns the builder to
// StatusReset, ready for a new graph.
func (b *Builder) Reset() {
	b.status = StatusReset
	b.nodes = nil
	b.nodeIndex = map[uint64]int{}
	b.wires = nil
	b.variables = nil
	b.curNode = nil
	b.curSlotKind = slotNone
	b.curSlotIdx = 0
}

func (b *Builder) mutable() bool { return b.status == StatusReset }

// BeginNode opens nodeID for authoring, creating it if new or
// reopening it if already seen (spec.md §4.C "Repeating begin_node
// with an already-seen id reopens it").
func (b *Builder) BeginNode(nodeID uint64, typeID NodeTypeID) bool {
	if !b.mutable() {
		return false
	}
	if i, ok := b.nodeIndex[nodeID]; ok {
		b.curNode = b.nodes[i]
		b.curNode.TypeID = typeID
	} else {
		n := &Node{ID: nodeID, TypeID: typeID}
		b.nodeIndex[nodeID] = len(b.nodes)
		b.nodes = growslice.Append(b.nodes, n)
		b.curNode = n
	}
	b.curSlotKind = slotNone
	return true
}

// AddInputSlot declares an input slot on the currently open node.
func (b *Builder) AddInputSlot(slotIdx uint8, typeID value.TypeID) bool {
	if !b.mutable() || b.curNode == nil {
		return false
	}
	b.curNode.InputSlots = growslice.Append(b.curNode.InputSlots, InputSlot{Index: slotIdx, Type: typeID})
	b.curSlotKind = slotInput
	b.curSlotIdx = len(b.curNode.InputSlots) - 1
	return true
}

// AddOutputSlot declares an output slot on the currently open node.
func (b *Builder) AddOutputSlot(slotIdx uint8, typeID value.TypeID) bool {
	if !b.mutable() || b.curNode == nil {
		return false
	}
	b.curNode.OutputSlots = growslice.Append(b.curNode.OutputSlots, OutputSlot{Index: slotIdx, Type: typeID})
	b.curSlotKind = slotOutput
	b.curSlotIdx = len(b.curNode.OutputSlots) - 1
	return true
}

// AddInputPlug declares an input plug on the currently open node.
func (b *Builder) AddInputPlug(idx uint8) bool {
	if !b.mutable() || b.curNode == nil {
		return false
	}
	b.curNode.InputPlugs = growslice.Append(b.curNode.InputPlugs, InputPlug{Index: idx})
	return true
}

// AddOutputPlug declares an output plug on the currently open node.
func (b *Builder) AddOutputPlug(idx uint8) bool {
	if !b.mutable() || b.curNode == nil {
		return false
	}
	b.curNode.OutputPlugs = growslice.Append(b.curNode.OutputPlugs, OutputPlugDecl{Index: idx})
	return true
}

// AddWire authors a directed edge between two (node, plug) pairs.
func (b *Builder) AddWire(fromNode uint64, fromPlug uint8, toNode uint64, toPlug uint8) bool {
	if !b.mutable() {
		return false
	}
	b.wires = growslice.Append(b.wires, Wire{FromNode: fromNode, FromPlug: fromPlug, ToNode: toNode, ToPlug: toPlug})
	return true
}

// AddVariable declares a shared variable available to slot bindings.
func (b *Builder) AddVariable(name string, typeID value.TypeID) bool {
	if !b.mutable() {
		return false
	}
	b.variables = growslice.Append(b.variables, Variable{Name: name, Type: typeID})
	return true
}

// BindSlotVariable binds the most recently added input slot to a
// variable by name.
func (b *Builder) BindSlotVariable(name string) bool {
	slot := b.curInputSlot()
	if slot == nil || slot.Binding.Kind != BindingNone {
		return false
	}
	slot.Binding = InputBinding{Kind: BindingVariable, VariableName: name}
	return true
}

// BindSlotExpression binds the most recently added input slot to an
// expression.
func (b *Builder) BindSlotExpression(text string) bool {
	slot := b.curInputSlot()
	if slot == nil || slot.Binding.Kind != BindingNone {
		return false
	}
	slot.Binding = InputBinding{Kind: BindingExpression, ExpressionText: text}
	return true
}

// BindSlotConstant binds the most recently added input slot to a
// literal constant.
func (b *Builder) BindSlotConstant(v value.Value) bool {
	slot := b.curInputSlot()
	if slot == nil || slot.Binding.Kind != BindingNone {
		return false
	}
	slot.Binding = InputBinding{Kind: BindingConstant, Constant: v}
	return true
}

// BindOutputSlotVariable binds the most recently added output slot to
// a variable by name.
func (b *Builder) BindOutputSlotVariable(name string) bool {
	slot := b.curOutputSlot()
	if slot == nil || slot.Binding.Bound {
		return false
	}
	slot.Binding = OutputBinding{Bound: true, VariableName: name}
	return true
}

func (b *Builder) curInputSlot() *InputSlot {
	if !b.mutable() || b.curNode == nil || b.curSlotKind != slotInput {
		return nil
	}
	if b.curSlotIdx < 0 || b.curSlotIdx >= len(b.curNode.InputSlots) {
		return nil
	}
	return &b.curNode.InputSlots[b.curSlotIdx]
}

func (b *Builder) curOutputSlot() *OutputSlot {
	if !b.mutable() || b.curNode == nil || b.curSlotKind != slotOutput {
		return nil
	}
	if b.curSlotIdx < 0 || b.curSlotIdx >= len(b.curNode.OutputSlots) {
		return nil
	}
	return &b.curNode.OutputSlots[b.curSlotIdx]
}
