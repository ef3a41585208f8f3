package assembly

// Sections holds everything the graph compiler wants to serialize
// into one assembly blob, already reduced to live, densely-indexed
// records (spec.md §4.C "Allocate indices" / "build()").
type Sections struct {
	InputPlugCount uint32
	Nodes          []Node
	EntryNodes     []uint32
	OutputPlugs    []OutputPlug
	Wires          []Wire
	InputSlots     []InputSlot
	OutputSlots    []OutputSlot
	Variables      []Variable
	Dependencies   []Dependency
	Expressions    []Expression
	Functions      []uint32
	Constants      []Constant
	ByteCode       []byte
}

// Build serializes s into a position-independent assembly blob:
// header first, then each array aligned and packed densely, every
// cross-reference expressed as a self-relative offset, all padding
// zeroed, and the header's hash computed last (spec.md §4.C "build()").
func Build(s Sections) []byte {
	size := uint32(HeaderSize)

	nodesStart := Align(size, nodeRecordAlign)
	size = nodesStart + uint32(len(s.Nodes))*nodeRecordSize

	entryStart := Align(size, entryNodeAlign)
	size = entryStart + uint32(len(s.EntryNodes))*entryNodeSize

	outputPlugsStart := Align(size, plugRecordAlign)
	size = outputPlugsStart + uint32(len(s.OutputPlugs))*plugRecordSize

	wiresStart := Align(size, wireRecordAlign)
	size = wiresStart + uint32(len(s.Wires))*wireRecordSize

	inputSlotsStart := Align(size, inputSlotAlign)
	size = inputSlotsStart + uint32(len(s.InputSlots))*inputSlotSize

	outputSlotsStart := Align(size, outputSlotAlign)
	size = outputSlotsStart + uint32(len(s.OutputSlots))*outputSlotSize

	variablesStart := Align(size, variableAlign)
	size = variablesStart + uint32(len(s.Variables))*variableSize

	dependenciesStart := Align(size, dependencyAlign)
	size = dependenciesStart + uint32(len(s.Dependencies))*dependencySize

	expressionsStart := Align(size, expressionAlign)
	size = expressionsStart + uint32(len(s.Expressions))*expressionSize

	functionsStart := Align(size, functionAlign)
	size = functionsStart + uint32(len(s.Functions))*functionSize

	constantsStart := Align(size, constantAlign)
	size = constantsStart + uint32(len(s.Constants))*constantSize

	byteCodeStart := Align(size, byteCodeAlign)
	size = byteCodeStart + uint32(len(s.ByteCode))

	buf := make([]byte, size) // zero-valued: padding is zero for free

	putU32(buf, offVersion, Version)
	putU32(buf, offSize, size)
	putU32(buf, offInputPlugCount, s.InputPlugCount)

	putArrayRef(buf, offNodes, nodesStart, uint32(len(s.Nodes)))
	for i, n := range s.Nodes {
		putNode(buf, nodesStart+uint32(i)*nodeRecordSize, n)
	}

	putArrayRef(buf, offEntryNodes, entryStart, uint32(len(s.EntryNodes)))
	for i, idx := range s.EntryNodes {
		putU32(buf, entryStart+uint32(i)*entryNodeSize, idx)
	}

	putArrayRef(buf, offOutputPlugs, outputPlugsStart, uint32(len(s.OutputPlugs)))
	for i, p := range s.OutputPlugs {
		putOutputPlug(buf, outputPlugsStart+uint32(i)*plugRecordSize, p)
	}

	putArrayRef(buf, offWires, wiresStart, uint32(len(s.Wires)))
	for i, w := range s.Wires {
		putWire(buf, wiresStart+uint32(i)*wireRecordSize, w)
	}

	putArrayRef(buf, offInputSlots, inputSlotsStart, uint32(len(s.InputSlots)))
	for i, sl := range s.InputSlots {
		putInputSlot(buf, inputSlotsStart+uint32(i)*inputSlotSize, sl)
	}

	putArrayRef(buf, offOutputSlots, outputSlotsStart, uint32(len(s.OutputSlots)))
	for i, sl := range s.OutputSlots {
		putOutputSlot(buf, outputSlotsStart+uint32(i)*outputSlotSize, sl)
	}

	putArrayRef(buf, offVariables, variablesStart, uint32(len(s.Variables)))
	for i, v := range s.Variables {
		putVariable(buf, variablesStart+uint32(i)*variableSize, v)
	}

	putArrayRef(buf, offDependencies, dependenciesStart, uint32(len(s.Dependencies)))
	for i, d := range s.Dependencies {
		putDependency(buf, dependenciesStart+uint32(i)*dependencySize, d)
	}

	putArrayRef(buf, offExpressions, expressionsStart, uint32(len(s.Expressions)))
	for i, e := range s.Expressions {
		putExpression(buf, expressionsStart+uint32(i)*expressionSize, e)
	}

	putArrayRef(buf, offFunctions, functionsStart, uint32(len(s.Functions)))
	for i, f := range s.Functions {
		putU32(buf, functionsStart+uint32(i)*functionSize, f)
	}

	putArrayRef(buf, offConstants, constantsStart, uint32(len(s.Constants)))
	for i, c := range s.Constants {
		putConstant(buf, constantsStart+uint32(i)*constantSize, c)
	}

	putArrayRef(buf, offByteCode, byteCodeStart, uint32(len(s.ByteCode)))
	copy(buf[byteCodeStart:], s.ByteCode)

	putU64(buf, offHash, Hash(buf))

	return buf
}
