package expr

import "github.com/wireflow/wireflow/value"

// codegen emits stack-machine bytecode for n into b, using builder to
// resolve constants/variables/functions to assembly-wide indices
// (spec.md §4.B "Code generator").
type codegen struct {
	builder Builder
	code    []byte
}

func generate(n *node, builder Builder) []byte {
	g := &codegen{builder: builder}
	g.emit(n)
	return g.code
}

func (g *codegen) byte(b byte) { g.code = append(g.code, b) }

func (g *codegen) u16(v uint16) {
	g.code = append(g.code, byte(v>>8), byte(v))
}

func (g *codegen) op(o Opcode) { g.byte(byte(o)) }

func (g *codegen) emit(n *node) {
	switch n.kind {
	case nodeLiteral:
		g.emitLiteral(n.literal)
	case nodeIdentifier:
		g.op(OpRead)
		g.u16(g.builder.VariableIndex(n.name))
	case nodeGroup:
		g.emit(n.lhs)
	case nodeUnary:
		g.emit(n.rhs)
		switch n.unaryOp {
		case unaryNeg:
			g.op(OpNeg)
		}
	case nodeBinary:
		g.emit(n.lhs)
		g.emit(n.rhs)
		switch n.binaryOp {
		case binaryAdd:
			g.op(OpAdd)
		case binarySub:
			g.op(OpSub)
		case binaryMul:
			g.op(OpMul)
		case binaryDiv:
			g.op(OpDiv)
		}
	case nodeCall:
		for _, a := range n.args {
			g.emit(a)
		}
		g.op(OpCall)
		g.u16(g.builder.FunctionIndex(n.name))
		g.byte(byte(len(n.args)))
	}
}

// emitLiteral picks the narrowest push opcode that can represent v
// before falling back to PushConstant (spec.md §4.B "The generator
// tries narrow push opcodes first").
func (g *codegen) emitLiteral(v value.Value) {
	switch v.Type() {
	case value.TypeNil.ID:
		g.op(OpPushNil)
		return
	case value.TypeBool.ID:
		b, _ := v.AsBool()
		if b {
			g.op(OpPushTrue)
		} else {
			g.op(OpPushFalse)
		}
		return
	case value.TypeInt32.ID:
		i, _ := v.AsInt32()
		switch i {
		case 0:
			g.op(OpPush0)
			return
		case 1:
			g.op(OpPush1)
			return
		case 2:
			g.op(OpPush2)
			return
		case -1:
			g.op(OpPushNeg1)
			return
		}
		if i >= -128 && i <= 127 {
			g.op(OpPushS8)
			g.byte(byte(int8(i)))
			return
		}
		if i >= 0 && i <= 255 {
			g.op(OpPushU8)
			g.byte(byte(i))
			return
		}
		if i >= -32768 && i <= 32767 {
			g.op(OpPushS16)
			g.u16(uint16(int16(i)))
			return
		}
		if i >= 0 && i <= 65535 {
			g.op(OpPushU16)
			g.u16(uint16(i))
			return
		}
	}
	g.op(OpPushConstant)
	g.u16(g.builder.ConstantIndex(v))
}
