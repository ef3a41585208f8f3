package expr

import "github.com/wireflow/wireflow/value"

// stackDepth is the fixed value-stack size the evaluator uses; no
// heap allocation backs it (spec.md §5 "fixed 32-entry value stack").
const stackDepth = 32

// EmitterID identifies a pub-sub emitter a host function can mark the
// current evaluation as dependent on via FunctionContext.Listen.
type EmitterID uint32

// FunctionContext is presented to a host function invoked by OpCall:
// its arguments, and a way to subscribe the evaluating slot to an
// emitter (spec.md §6 "FunctionContext").
type FunctionContext struct {
	Args   []value.Value
	Listen func(EmitterID)
}

// EvaluateHost supplies the constant/variable/function data an
// evaluation reads (spec.md §4.B "Evaluator").
type EvaluateHost interface {
	ReadConstant(index uint16) (value.Value, bool)
	ReadVariable(index uint16) (value.Value, bool)
	InvokeFunction(index uint16, ctx *FunctionContext) (value.Value, bool)
	Listen(id EmitterID)
}

// Evaluate runs code against host and returns the single resulting
// value. Evaluation fails — returning ok=false — on stack
// overflow/underflow, a truncated immediate, an unknown opcode, an
// operand type mismatch, or a host lookup failure (spec.md §4.B, §7).
// It is single-threaded and re-entrant per call: no state survives
// between calls.
func Evaluate(host EvaluateHost, code []byte) (value.Value, bool) {
	var stack [stackDepth]value.Value
	sp := 0

	push := func(v value.Value) bool {
		if sp >= stackDepth {
			return false
		}
		stack[sp] = v
		sp++
		return true
	}
	pop := func() (value.Value, bool) {
		if sp == 0 {
			return value.Value{}, false
		}
		sp--
		return stack[sp], true
	}

	pc := 0
	for pc < len(code) {
		op := Opcode(code[pc])
		pc++

		switch op {
		case OpNop:

		case OpPushTrue:
			if !push(value.Bool(true)) {
				return value.Value{}, false
			}
		case OpPushFalse:
			if !push(value.Bool(false)) {
				return value.Value{}, false
			}
		case OpPushNil:
			if !push(value.Nil()) {
				return value.Value{}, false
			}
		case OpPush0:
			if !push(value.Int32(0)) {
				return value.Value{}, false
			}
		case OpPush1:
			if !push(value.Int32(1)) {
				return value.Value{}, false
			}
		case OpPush2:
			if !push(value.Int32(2)) {
				return value.Value{}, false
			}
		case OpPushNeg1:
			if !push(value.Int32(-1)) {
				return value.Value{}, false
			}

		case OpPushS8:
			if pc+1 > len(code) {
				return value.Value{}, false
			}
			v := int32(int8(code[pc]))
			pc++
			if !push(value.Int32(v)) {
				return value.Value{}, false
			}
		case OpPushU8:
			if pc+1 > len(code) {
				return value.Value{}, false
			}
			v := int32(code[pc])
			pc++
			if !push(value.Int32(v)) {
				return value.Value{}, false
			}
		case OpPushS16:
			u, ok := readU16(code, pc)
			if !ok {
				return value.Value{}, false
			}
			pc += 2
			if !push(value.Int32(int32(int16(u)))) {
				return value.Value{}, false
			}
		case OpPushU16:
			u, ok := readU16(code, pc)
			if !ok {
				return value.Value{}, false
			}
			pc += 2
			if !push(value.Int32(int32(u))) {
				return value.Value{}, false
			}
		case OpPushConstant:
			u, ok := readU16(code, pc)
			if !ok {
				return value.Value{}, false
			}
			pc += 2
			v, ok := host.ReadConstant(u)
			if !ok {
				return value.Value{}, false
			}
			if !push(v) {
				return value.Value{}, false
			}

		case OpRead:
			u, ok := readU16(code, pc)
			if !ok {
				return value.Value{}, false
			}
			pc += 2
			v, ok := host.ReadVariable(u)
			if !ok {
				return value.Value{}, false
			}
			if !push(v) {
				return value.Value{}, false
			}

		case OpCall:
			fnIdx, ok := readU16(code, pc)
			if !ok {
				return value.Value{}, false
			}
			pc += 2
			if pc+1 > len(code) {
				return value.Value{}, false
			}
			argc := int(code[pc])
			pc++
			if argc > sp {
				return value.Value{}, false
			}
			args := make([]value.Value, argc)
			copy(args, stack[sp-argc:sp])
			sp -= argc
			ctx := &FunctionContext{Args: args, Listen: host.Listen}
			result, ok := host.InvokeFunction(fnIdx, ctx)
			if !ok {
				return value.Value{}, false
			}
			if !push(result) {
				return value.Value{}, false
			}

		case OpNeg:
			a, ok := pop()
			if !ok {
				return value.Value{}, false
			}
			r, ok := negValue(a)
			if !ok {
				return value.Value{}, false
			}
			if !push(r) {
				return value.Value{}, false
			}

		case OpNot:
			a, ok := pop()
			if !ok {
				return value.Value{}, false
			}
			b, ok := a.AsBool()
			if !ok {
				return value.Value{}, false
			}
			if !push(value.Bool(!b)) {
				return value.Value{}, false
			}

		case OpAdd, OpSub, OpMul, OpDiv:
			b, ok := pop()
			if !ok {
				return value.Value{}, false
			}
			a, ok := pop()
			if !ok {
				return value.Value{}, false
			}
			r, ok := arithValue(op, a, b)
			if !ok {
				return value.Value{}, false
			}
			if !push(r) {
				return value.Value{}, false
			}

		case OpAnd, OpOr, OpXor:
			b, ok := pop()
			if !ok {
				return value.Value{}, false
			}
			a, ok := pop()
			if !ok {
				return value.Value{}, false
			}
			ab, aok := a.AsBool()
			bb, bok := b.AsBool()
			if !aok || !bok {
				return value.Value{}, false
			}
			var r bool
			switch op {
			case OpAnd:
				r = ab && bb
			case OpOr:
				r = ab || bb
			case OpXor:
				r = ab != bb
			}
			if !push(value.Bool(r)) {
				return value.Value{}, false
			}

		default:
			return value.Value{}, false
		}
	}

	if sp != 1 {
		return value.Value{}, false
	}
	return stack[0], true
}

func readU16(code []byte, pc int) (uint16, bool) {
	if pc+2 > len(code) {
		return 0, false
	}
	return uint16(code[pc])<<8 | uint16(code[pc+1]), true
}

func negValue(v value.Value) (value.Value, bool) {
	if i, ok := v.AsInt32(); ok {
		return value.Int32(-i), true
	}
	if f, ok := v.AsFloat32(); ok {
		return value.Float32(-f), true
	}
	return value.Value{}, false
}

// arithValue requires matching operand types (spec.md §4.B "Arithmetic
// binops require matching operand types"); division by zero yields
// zero rather than failing, for both integer and float operands.
func arithValue(op Opcode, a, b value.Value) (value.Value, bool) {
	if ai, aok := a.AsInt32(); aok {
		bi, bok := b.AsInt32()
		if !bok {
			return value.Value{}, false
		}
		switch op {
		case OpAdd:
			return value.Int32(ai + bi), true
		case OpSub:
			return value.Int32(ai - bi), true
		case OpMul:
			return value.Int32(ai * bi), true
		case OpDiv:
			if bi == 0 {
				return value.Int32(0), true
			}
			return value.Int32(ai / bi), true
		}
	}
	if af, aok := a.AsFloat32(); aok {
		bf, bok := b.AsFloat32()
		if !bok {
			return value.Value{}, false
		}
		switch op {
		case OpAdd:
			return value.Float32(af + bf), true
		case OpSub:
			return value.Float32(af - bf), true
		case OpMul:
			return value.Float32(af * bf), true
		case OpDiv:
			if bf == 0 {
				return value.Float32(0), true
			}
			return value.Float32(af / bf), true
		}
	}
	return value.Value{}, false
}
