package expr

import (
	"github.com/wireflow/wireflow/value"
)

// typecheck annotates every node in the tree with its result type,
// resolving identifiers and calls through host (spec.md §4.B
// Type-check). It returns the first error encountered, if any.
func typecheck(n *node, host Host) error {
	switch n.kind {
	case nodeLiteral:
		n.resultType = n.literal.Type()
		return nil

	case nodeIdentifier:
		typeID, ok := host.LookupVariable(n.name)
		if !ok {
			return newErr(ErrUnknownIdentifier, n.pos, "unknown variable %q", n.name)
		}
		n.resultType = typeID
		return nil

	case nodeGroup:
		if err := typecheck(n.lhs, host); err != nil {
			return err
		}
		n.resultType = n.lhs.resultType
		return nil

	case nodeUnary:
		if err := typecheck(n.rhs, host); err != nil {
			return err
		}
		if n.rhs.resultType == value.TypeBool.ID {
			return newErr(ErrIllegalUnary, n.pos, "unary '-' is not legal on bool")
		}
		n.resultType = n.rhs.resultType
		return nil

	case nodeBinary:
		if err := typecheck(n.lhs, host); err != nil {
			return err
		}
		if err := typecheck(n.rhs, host); err != nil {
			return err
		}
		if n.lhs.resultType != n.rhs.resultType {
			return newErr(ErrTypeMismatch, n.pos, "operand type mismatch")
		}
		if n.lhs.resultType != value.TypeInt32.ID && n.lhs.resultType != value.TypeFloat32.ID {
			return newErr(ErrTypeMismatch, n.pos, "arithmetic requires numeric operands")
		}
		n.resultType = n.lhs.resultType
		return nil

	case nodeCall:
		sig, ok := host.LookupFunction(n.name)
		if !ok {
			return newErr(ErrUnknownFunction, n.pos, "unknown function %q", n.name)
		}
		if len(n.args) != len(sig.ParamTypes) {
			return newErr(ErrArityMismatch, n.pos, "%q expects %d arguments, got %d", n.name, len(sig.ParamTypes), len(n.args))
		}
		for i, arg := range n.args {
			if err := typecheck(arg, host); err != nil {
				return err
			}
			if sig.ParamTypes[i] != 0 && arg.resultType != sig.ParamTypes[i] {
				return newErr(ErrTypeMismatch, arg.pos, "argument %d of %q has wrong type", i, n.name)
			}
		}
		n.funcID = sig.ID
		n.resultType = sig.ReturnType
		return nil
	}
	return newErr(ErrUnknown, n.pos, "unreachable node kind")
}
