package graph

import (
	"github.com/wireflow/wireflow/expr"
)

// NodeTypeMeta is what Host.LookupNodeType reports about a node type
// (spec.md §6 "GraphCompilerHost").
type NodeTypeMeta struct {
	Kind NodeKind
}

// Host resolves node types and functions during compilation. Node
// resolution and function resolution are the graph compiler's two
// points of contact with the host-supplied type/node/function
// registry spec.md §1 treats as an external collaborator.
type Host interface {
	LookupNodeType(typeID NodeTypeID) (NodeTypeMeta, bool)
	LookupFunction(name string) (expr.FunctionSignature, bool)
}
