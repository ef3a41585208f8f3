package assembly

import "encoding/binary"

// arrayRef is the decoded {rel_offset, count} pair for one of the
// header's relative arrays. target(fieldPos) resolves it to an
// absolute byte position within the blob.
type arrayRef struct {
	relOffset uint32
	count     uint32
}

func getArrayRef(buf []byte, fieldPos uint32) arrayRef {
	return arrayRef{
		relOffset: binary.LittleEndian.Uint32(buf[fieldPos:]),
		count:     binary.LittleEndian.Uint32(buf[fieldPos+4:]),
	}
}

func putArrayRef(buf []byte, fieldPos uint32, target uint32, count uint32) {
	rel := target - fieldPos
	binary.LittleEndian.PutUint32(buf[fieldPos:], rel)
	binary.LittleEndian.PutUint32(buf[fieldPos+4:], count)
}

// target resolves this arrayRef, anchored at fieldPos, to an absolute
// byte position — the self-relative-offset resolution step (spec.md
// §6 "self-relative: offset = target - &field").
func (a arrayRef) target(fieldPos uint32) uint32 { return fieldPos + a.relOffset }

func getU32(buf []byte, pos uint32) uint32 { return binary.LittleEndian.Uint32(buf[pos:]) }
func putU32(buf []byte, pos uint32, v uint32) { binary.LittleEndian.PutUint32(buf[pos:], v) }
func getU64(buf []byte, pos uint32) uint64 { return binary.LittleEndian.Uint64(buf[pos:]) }
func putU64(buf []byte, pos uint32, v uint64) { binary.LittleEndian.PutUint64(buf[pos:], v) }

func getNode(buf []byte, pos uint32) Node {
	return Node{
		TypeID:               getU32(buf, pos+0),
		DefaultOutputPlugIdx: getU32(buf, pos+4),
		CustomOutputStart:    getU32(buf, pos+8),
		CustomOutputCount:    getU32(buf, pos+12),
		CustomInputCount:     getU32(buf, pos+16),
		InputSlotStart:       getU32(buf, pos+20),
		InputSlotCount:       getU32(buf, pos+24),
		OutputSlotStart:      getU32(buf, pos+28),
		OutputSlotCount:      getU32(buf, pos+32),
	}
}

func putNode(buf []byte, pos uint32, n Node) {
	putU32(buf, pos+0, n.TypeID)
	putU32(buf, pos+4, n.DefaultOutputPlugIdx)
	putU32(buf, pos+8, n.CustomOutputStart)
	putU32(buf, pos+12, n.CustomOutputCount)
	putU32(buf, pos+16, n.CustomInputCount)
	putU32(buf, pos+20, n.InputSlotStart)
	putU32(buf, pos+24, n.InputSlotCount)
	putU32(buf, pos+28, n.OutputSlotStart)
	putU32(buf, pos+32, n.OutputSlotCount)
}

func getOutputPlug(buf []byte, pos uint32) OutputPlug {
	return OutputPlug{
		PlugIndex: getU32(buf, pos),
		WireStart: getU32(buf, pos+4),
		WireCount: getU32(buf, pos+8),
	}
}

func putOutputPlug(buf []byte, pos uint32, p OutputPlug) {
	putU32(buf, pos, p.PlugIndex)
	putU32(buf, pos+4, p.WireStart)
	putU32(buf, pos+8, p.WireCount)
}

func getWire(buf []byte, pos uint32) Wire {
	return Wire{TargetNode: getU32(buf, pos), TargetInputPlug: getU32(buf, pos+4)}
}

func putWire(buf []byte, pos uint32, w Wire) {
	putU32(buf, pos, w.TargetNode)
	putU32(buf, pos+4, w.TargetInputPlug)
}

func getInputSlot(buf []byte, pos uint32) InputSlot {
	return InputSlot{
		VariableIdx:   getU32(buf, pos),
		ExpressionIdx: getU32(buf, pos+4),
		ConstantIdx:   getU32(buf, pos+8),
		OwningNode:    getU32(buf, pos+12),
	}
}

func putInputSlot(buf []byte, pos uint32, s InputSlot) {
	putU32(buf, pos, s.VariableIdx)
	putU32(buf, pos+4, s.ExpressionIdx)
	putU32(buf, pos+8, s.ConstantIdx)
	putU32(buf, pos+12, s.OwningNode)
}

func getOutputSlot(buf []byte, pos uint32) OutputSlot {
	return OutputSlot{VariableIdx: getU32(buf, pos)}
}

func putOutputSlot(buf []byte, pos uint32, s OutputSlot) {
	putU32(buf, pos, s.VariableIdx)
}

func getVariable(buf []byte, pos uint32) Variable {
	return Variable{
		NameHash:        getU64(buf, pos),
		DependencyStart: getU32(buf, pos+8),
		DependencyCount: getU32(buf, pos+12),
	}
}

func putVariable(buf []byte, pos uint32, v Variable) {
	putU64(buf, pos, v.NameHash)
	putU32(buf, pos+8, v.DependencyStart)
	putU32(buf, pos+12, v.DependencyCount)
}

func getDependency(buf []byte, pos uint32) Dependency {
	return Dependency{Node: getU32(buf, pos), InputSlot: getU32(buf, pos+4)}
}

func putDependency(buf []byte, pos uint32, d Dependency) {
	putU32(buf, pos, d.Node)
	putU32(buf, pos+4, d.InputSlot)
}

func getExpression(buf []byte, pos uint32) Expression {
	return Expression{CodeStart: getU32(buf, pos), CodeCount: getU32(buf, pos+4)}
}

func putExpression(buf []byte, pos uint32, e Expression) {
	putU32(buf, pos, e.CodeStart)
	putU32(buf, pos+4, e.CodeCount)
}

func getConstant(buf []byte, pos uint32) Constant {
	return Constant{TypeID: getU32(buf, pos), Serialized: getU64(buf, pos+8)}
}

func putConstant(buf []byte, pos uint32, c Constant) {
	putU32(buf, pos, c.TypeID)
	putU64(buf, pos+8, c.Serialized)
}
