package expr

import "github.com/wireflow/wireflow/value"

// Builder is the contract the code generator emits through (spec.md
// §4.B "Builder contract"): it returns dense indices into the
// enclosing assembly's constants[]/functions[]/variables[] tables,
// de-duplicating repeated requests, and records a dependency from the
// slot currently being compiled to every variable index it hands out.
// The graph compiler supplies the concrete implementation, scoped to
// one input-slot binding at a time.
type Builder interface {
	ConstantIndex(v value.Value) uint16
	VariableIndex(name string) uint16
	FunctionIndex(name string) uint16
}
