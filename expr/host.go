package expr

import "github.com/wireflow/wireflow/value"

// FunctionID is a stable identifier for a host function, resolved by
// name the same way node types and variables are (spec.md §4.B).
type FunctionID uint32

// FunctionSignature describes a callable host function as reported by
// Host.LookupFunction: its id, return type, and parameter types (used
// to validate call arity and, where known, argument types).
type FunctionSignature struct {
	ID         FunctionID
	ReturnType value.TypeID
	ParamTypes []value.TypeID
}

// Host resolves identifiers during type-checking: variables by name to
// their declared type, and functions by name to their signature. This
// is the ExpressionCompilerHost of spec.md §6.
type Host interface {
	LookupVariable(name string) (typeID value.TypeID, ok bool)
	LookupFunction(name string) (sig FunctionSignature, ok bool)
}
