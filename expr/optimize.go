package expr

import "github.com/wireflow/wireflow/value"

// optimize folds any subtree whose inputs are all literals (spec.md
// §4.B "Optional constant folding"). It returns a possibly-new tree;
// the input tree is not mutated in place so callers that want the
// pre-optimization AST (e.g. for error reporting) can keep it.
func optimize(n *node) *node {
	switch n.kind {
	case nodeLiteral, nodeIdentifier:
		return n

	case nodeGroup:
		inner := optimize(n.lhs)
		if inner.kind == nodeLiteral {
			return &node{kind: nodeLiteral, pos: n.pos, literal: inner.literal, resultType: inner.resultType}
		}
		return &node{kind: nodeGroup, pos: n.pos, lhs: inner, resultType: n.resultType}

	case nodeUnary:
		operand := optimize(n.rhs)
		if operand.kind == nodeLiteral {
			if folded, ok := foldUnary(n.unaryOp, operand.literal); ok {
				return &node{kind: nodeLiteral, pos: n.pos, literal: folded, resultType: folded.Type()}
			}
		}
		return &node{kind: nodeUnary, pos: n.pos, unaryOp: n.unaryOp, rhs: operand, resultType: n.resultType}

	case nodeBinary:
		lhs := optimize(n.lhs)
		rhs := optimize(n.rhs)
		if lhs.kind == nodeLiteral && rhs.kind == nodeLiteral {
			if folded, ok := foldBinary(n.binaryOp, lhs.literal, rhs.literal); ok {
				return &node{kind: nodeLiteral, pos: n.pos, literal: folded, resultType: folded.Type()}
			}
		}
		return &node{kind: nodeBinary, pos: n.pos, binaryOp: n.binaryOp, lhs: lhs, rhs: rhs, resultType: n.resultType}

	case nodeCall:
		args := make([]*node, len(n.args))
		for i, a := range n.args {
			args[i] = optimize(a)
		}
		// Calls are never folded: they may have host side effects
		// (spec.md §4.B "the host may mark a slot as subscribed to an
		// emitter during the call"), so evaluating one at compile time
		// would silently drop that subscription.
		return &node{kind: nodeCall, pos: n.pos, name: n.name, args: args, funcID: n.funcID, resultType: n.resultType}
	}
	return n
}

// asConstant reports whether the fully-optimized expression n is a
// single literal, and if so returns it (spec.md §4.B "as_constant").
func asConstant(n *node) (value.Value, bool) {
	if n.kind == nodeLiteral {
		return n.literal, true
	}
	return value.Value{}, false
}

func foldUnary(op unaryOp, v value.Value) (value.Value, bool) {
	switch op {
	case unaryNeg:
		if i, ok := v.AsInt32(); ok {
			return value.Int32(-i), true
		}
		if f, ok := v.AsFloat32(); ok {
			return value.Float32(-f), true
		}
	}
	return value.Value{}, false
}

func foldBinary(op binaryOp, a, b value.Value) (value.Value, bool) {
	if ai, aok := a.AsInt32(); aok {
		bi, bok := b.AsInt32()
		if !bok {
			return value.Value{}, false
		}
		return value.Int32(applyIntOp(op, ai, bi)), true
	}
	if af, aok := a.AsFloat32(); aok {
		bf, bok := b.AsFloat32()
		if !bok {
			return value.Value{}, false
		}
		return value.Float32(applyFloatOp(op, af, bf)), true
	}
	return value.Value{}, false
}

// applyIntOp preserves int32 wrap semantics: Go's int32 arithmetic
// already wraps on overflow, so ordinary operators are sufficient.
func applyIntOp(op binaryOp, a, b int32) int32 {
	switch op {
	case binaryAdd:
		return a + b
	case binarySub:
		return a - b
	case binaryMul:
		return a * b
	case binaryDiv:
		if b == 0 {
			return 0 // spec.md §4.B: division by zero yields zero, not an error
		}
		return a / b
	}
	return 0
}

func applyFloatOp(op binaryOp, a, b float32) float32 {
	switch op {
	case binaryAdd:
		return a + b
	case binarySub:
		return a - b
	case binaryMul:
		return a * b
	case binaryDiv:
		if b == 0 {
			return 0
		}
		return a / b
	}
	return 0
}
