package graph

import (
	"github.com/wireflow/wireflow/expr"
	"github.com/wireflow/wireflow/value"
)

// exprHost adapts the compiler's declared-variable table and the
// graph host's function registry to expr.Host, the interface
// expr.Compile type-checks an expression's identifiers against.
type exprHost struct {
	c *compiler
}

func (h exprHost) LookupVariable(name string) (value.TypeID, bool) {
	v, ok := h.c.variableByName[name]
	if !ok {
		return 0, false
	}
	return v.Type, true
}

func (h exprHost) LookupFunction(name string) (expr.FunctionSignature, bool) {
	return h.c.host.LookupFunction(name)
}

// exprBuilder adapts the compiler's dense constant/variable/function
// tables to expr.Builder for a single input-slot expression binding,
// recording a dependency from that slot to every variable the
// expression reads (spec.md §4.B "Builder contract").
type exprBuilder struct {
	c          *compiler
	owningNode uint32
	owningSlot uint32
}

func (b *exprBuilder) ConstantIndex(v value.Value) uint16 {
	return uint16(b.c.internConstant(v))
}

func (b *exprBuilder) VariableIndex(name string) uint16 {
	idx := b.c.variableIndex[name] // present: typecheck already resolved it via exprHost
	b.c.addDependency(idx, b.owningNode, b.owningSlot)
	return uint16(idx)
}

func (b *exprBuilder) FunctionIndex(name string) uint16 {
	return uint16(b.c.internFunction(name))
}
