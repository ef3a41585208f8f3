// Package graph implements the graph compiler and assembly writer of
// spec.md §4.C: a stateful builder API for authoring a graph, a
// multi-pass compiler (resolve → link → liveness → index → bind →
// serialize), and the error taxonomy those passes report through.
package graph

import "github.com/wireflow/wireflow/value"

// NodeTypeID identifies a node type, resolved by the host the same
// way a value.TypeID identifies a value type.
type NodeTypeID uint32

// NodeKind is the authored/resolved kind of a node (spec.md §3).
type NodeKind uint8

const (
	KindState NodeKind = iota
	KindEntry
	KindAction
)

// PlugIndex addresses an input or output plug on a node. 254 is
// reserved on both polarities (spec.md §3, §6); every other value is a
// custom plug.
type PlugIndex = uint8

const (
	BeginPlug         PlugIndex = 254
	DefaultOutputPlug PlugIndex = 254
)

// BindingKind tags which of the three mutually-exclusive input
// bindings is set (spec.md §3 "InputBinding").
type BindingKind uint8

const (
	BindingNone BindingKind = iota
	BindingVariable
	BindingExpression
	BindingConstant
)

// InputBinding is exactly one of {variable name, expression text,
// constant value}.
type InputBinding struct {
	Kind           BindingKind
	VariableName   string
	ExpressionText string
	Constant       value.Value
}

// OutputBinding is always a variable name (or unset/unbound).
type OutputBinding struct {
	Bound        bool
	VariableName string
}

// InputPlug and OutputPlug are authored plug declarations.
type InputPlug struct{ Index PlugIndex }
type OutputPlugDecl struct{ Index PlugIndex }

// InputSlot and OutputSlot are authored slot declarations.
type InputSlot struct {
	Index   uint8
	Type    value.TypeID
	Binding InputBinding
}

type OutputSlot struct {
	Index   uint8
	Type    value.TypeID
	Binding OutputBinding
}

// Wire is a directed edge from an output plug to an input plug,
// addressed by author-chosen node ids (spec.md §3).
type Wire struct {
	FromNode  uint64
	FromPlug  PlugIndex
	ToNode    uint64
	ToPlug    PlugIndex
}

// Variable is an authored shared variable declaration.
type Variable struct {
	Name string
	Type value.TypeID
}

// Node is an authored node: its declared type, and every plug/slot
// attached to it. Kind is filled in during the resolve pass.
type Node struct {
	ID     uint64
	TypeID NodeTypeID
	Kind   NodeKind

	InputPlugs  []InputPlug
	OutputPlugs []OutputPlugDecl
	InputSlots  []InputSlot
	OutputSlots []OutputSlot
}
