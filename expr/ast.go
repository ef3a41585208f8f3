package expr

import "github.com/wireflow/wireflow/value"

// nodeKind tags an AST node's shape (spec.md §4.B design note:
// "prefer tagged enums over polymorphic dispatch").
type nodeKind uint8

const (
	nodeLiteral nodeKind = iota
	nodeIdentifier
	nodeUnary
	nodeBinary
	nodeGroup
	nodeCall
)

// unaryOp and binaryOp tag the operator of a Unary/Binary node.
type unaryOp uint8

const (
	unaryNeg unaryOp = iota
)

type binaryOp uint8

const (
	binaryAdd binaryOp = iota
	binarySub
	binaryMul
	binaryDiv
)

// node is an AST node. Only the fields relevant to kind are
// meaningful; Args is the call-argument linked list's Go stand-in (a
// plain slice, since Go has no reason to intrude a list into the node
// the way the C++ source's arena-allocated AST does).
type node struct {
	kind nodeKind
	pos  int

	literal value.Value // nodeLiteral

	name string // nodeIdentifier, nodeCall

	unaryOp  unaryOp // nodeUnary
	binaryOp binaryOp // nodeBinary

	lhs, rhs *node // nodeUnary (rhs only), nodeBinary, nodeGroup (lhs only)

	args []*node // nodeCall

	// resolved during type-check
	resultType  value.TypeID
	varIndex    int // unused: codegen resolves variables by name through Builder.VariableIndex
	funcIndex   int // unused: codegen resolves functions by name through Builder.FunctionIndex
	funcID      FunctionID
}
