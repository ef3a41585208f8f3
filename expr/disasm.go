package expr

import "fmt"

// Disassemble renders code as one human-readable instruction per
// line, the way cmd/wfdump inspects expression bytecode embedded in
// an assembly. Unlike a real-ISA disassembler it never needs a
// hardware decode table: the whole instruction set is Opcode.
func Disassemble(code []byte) []string {
	var lines []string
	pc := 0
	for pc < len(code) {
		op := Opcode(code[pc])
		start := pc
		pc++
		n := operandBytes(op)
		if pc+n > len(code) {
			lines = append(lines, fmt.Sprintf("%04d  %-14s <truncated>", start, op))
			break
		}
		operand := code[pc : pc+n]
		pc += n
		lines = append(lines, fmt.Sprintf("%04d  %-14s %s", start, op, formatOperand(op, operand)))
	}
	return lines
}

func formatOperand(op Opcode, b []byte) string {
	switch op {
	case OpPushS8:
		return fmt.Sprintf("%d", int8(b[0]))
	case OpPushU8:
		return fmt.Sprintf("%d", b[0])
	case OpPushS16:
		return fmt.Sprintf("%d", int16(uint16(b[0])<<8|uint16(b[1])))
	case OpPushU16, OpPushConstant, OpRead:
		return fmt.Sprintf("%d", uint16(b[0])<<8|uint16(b[1]))
	case OpCall:
		return fmt.Sprintf("func=%d argc=%d", uint16(b[0])<<8|uint16(b[1]), b[2])
	default:
		return ""
	}
}
