package assembly

import "fmt"

// Assembly is a validated, decoded view over a serialized blob. It
// does not copy the backing bytes; callers that need the blob to
// outlive its source slice should copy before calling Load.
type Assembly struct {
	buf []byte

	nodes        arrayRef
	entryNodes   arrayRef
	outputPlugs  arrayRef
	wires        arrayRef
	inputSlots   arrayRef
	outputSlots  arrayRef
	variables    arrayRef
	dependencies arrayRef
	expressions  arrayRef
	functions    arrayRef
	constants    arrayRef
	byteCode     arrayRef

	inputPlugCount uint32
}

// Load validates buf as an assembly and returns a decoded view, or an
// error describing the first validation failure (spec.md §4.D
// "Load"). A malformed assembly never panics; every failure mode is
// reported through the error.
func Load(buf []byte) (*Assembly, error) {
	if len(buf) < HeaderSize {
		return nil, fmt.Errorf("assembly: buffer shorter than header (%d < %d)", len(buf), HeaderSize)
	}
	version := getU32(buf, offVersion)
	if version != Version {
		return nil, fmt.Errorf("assembly: unsupported version %d (want %d)", version, Version)
	}
	size := getU32(buf, offSize)
	if size < HeaderSize {
		return nil, fmt.Errorf("assembly: declared size %d shorter than header (%d)", size, HeaderSize)
	}
	if uint64(size) > uint64(len(buf)) {
		return nil, fmt.Errorf("assembly: declared size %d exceeds buffer length %d", size, len(buf))
	}
	storedHash := getU64(buf, offHash)
	if computed := Hash(buf[:size]); computed != storedHash {
		return nil, fmt.Errorf("assembly: hash mismatch (stored %x, computed %x)", storedHash, computed)
	}

	a := &Assembly{
		buf:            buf[:size],
		inputPlugCount: getU32(buf, offInputPlugCount),
		nodes:          getArrayRef(buf, offNodes),
		entryNodes:     getArrayRef(buf, offEntryNodes),
		outputPlugs:    getArrayRef(buf, offOutputPlugs),
		wires:          getArrayRef(buf, offWires),
		inputSlots:     getArrayRef(buf, offInputSlots),
		outputSlots:    getArrayRef(buf, offOutputSlots),
		variables:      getArrayRef(buf, offVariables),
		dependencies:   getArrayRef(buf, offDependencies),
		expressions:    getArrayRef(buf, offExpressions),
		functions:      getArrayRef(buf, offFunctions),
		constants:      getArrayRef(buf, offConstants),
		byteCode:       getArrayRef(buf, offByteCode),
	}

	if err := a.validateRanges(); err != nil {
		return nil, err
	}
	if err := a.validateCrossReferences(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Assembly) boundsCheck(name string, ref arrayRef, fieldPos uint32, recordSize uint32) error {
	if ref.count == 0 {
		return nil
	}
	start := uint64(fieldPos) + uint64(ref.relOffset)
	end := start + uint64(ref.count)*uint64(recordSize)
	if end > uint64(len(a.buf)) {
		return fmt.Errorf("assembly: %s array [%d,%d) out of bounds (size %d)", name, start, end, len(a.buf))
	}
	return nil
}

func (a *Assembly) validateRanges() error {
	checks := []struct {
		name      string
		ref       arrayRef
		fieldPos  uint32
		recordLen uint32
	}{
		{"nodes", a.nodes, offNodes, nodeRecordSize},
		{"entryNodes", a.entryNodes, offEntryNodes, entryNodeSize},
		{"outputPlugs", a.outputPlugs, offOutputPlugs, plugRecordSize},
		{"wires", a.wires, offWires, wireRecordSize},
		{"inputSlots", a.inputSlots, offInputSlots, inputSlotSize},
		{"outputSlots", a.outputSlots, offOutputSlots, outputSlotSize},
		{"variables", a.variables, offVariables, variableSize},
		{"dependencies", a.dependencies, offDependencies, dependencySize},
		{"expressions", a.expressions, offExpressions, expressionSize},
		{"functions", a.functions, offFunctions, functionSize},
		{"constants", a.constants, offConstants, constantSize},
		{"byteCode", a.byteCode, offByteCode, byteCodeAlign},
	}
	for _, c := range checks {
		if err := a.boundsCheck(c.name, c.ref, c.fieldPos, c.recordLen); err != nil {
			return err
		}
	}
	return nil
}

func (a *Assembly) validateCrossReferences() error {
	nodeCount := uint32(a.nodes.count)
	outputPlugCount := uint32(a.outputPlugs.count)
	wireCount := uint32(a.wires.count)
	inputSlotCount := uint32(a.inputSlots.count)
	outputSlotCount := uint32(a.outputSlots.count)
	variableCount := uint32(a.variables.count)
	expressionCount := uint32(a.expressions.count)
	constantCount := uint32(a.constants.count)
	dependencyCount := uint32(a.dependencies.count)

	for i := uint32(0); i < nodeCount; i++ {
		n := a.Node(i)
		if n.DefaultOutputPlugIdx != InvalidIndex && n.DefaultOutputPlugIdx >= outputPlugCount {
			return fmt.Errorf("assembly: node %d default output plug %d out of range", i, n.DefaultOutputPlugIdx)
		}
		if n.CustomOutputStart+n.CustomOutputCount > outputPlugCount && n.CustomOutputCount > 0 {
			return fmt.Errorf("assembly: node %d custom output plugs out of range", i)
		}
		if n.InputSlotStart+n.InputSlotCount > inputSlotCount && n.InputSlotCount > 0 {
			return fmt.Errorf("assembly: node %d input slots out of range", i)
		}
		if n.OutputSlotStart+n.OutputSlotCount > outputSlotCount && n.OutputSlotCount > 0 {
			return fmt.Errorf("assembly: node %d output slots out of range", i)
		}
	}
	for i := uint32(0); i < uint32(a.entryNodes.count); i++ {
		idx := getU32(a.buf, a.entryNodes.target(offEntryNodes)+i*entryNodeSize)
		if idx >= nodeCount {
			return fmt.Errorf("assembly: entry node %d out of range", i)
		}
	}
	for i := uint32(0); i < wireCount; i++ {
		w := a.Wire(i)
		if w.TargetNode >= nodeCount {
			return fmt.Errorf("assembly: wire %d target node %d out of range", i, w.TargetNode)
		}
	}
	for i := uint32(0); i < inputSlotCount; i++ {
		s := a.InputSlot(i)
		set := 0
		if s.VariableIdx != InvalidIndex {
			set++
			if s.VariableIdx >= variableCount {
				return fmt.Errorf("assembly: input slot %d variable %d out of range", i, s.VariableIdx)
			}
		}
		if s.ExpressionIdx != InvalidIndex {
			set++
			if s.ExpressionIdx >= expressionCount {
				return fmt.Errorf("assembly: input slot %d expression %d out of range", i, s.ExpressionIdx)
			}
		}
		if s.ConstantIdx != InvalidIndex {
			set++
			if s.ConstantIdx >= constantCount {
				return fmt.Errorf("assembly: input slot %d constant %d out of range", i, s.ConstantIdx)
			}
		}
		if set > 1 {
			return fmt.Errorf("assembly: input slot %d has more than one binding", i)
		}
		if s.OwningNode >= nodeCount {
			return fmt.Errorf("assembly: input slot %d owning node %d out of range", i, s.OwningNode)
		}
	}
	for i := uint32(0); i < uint32(a.outputSlots.count); i++ {
		s := a.OutputSlot(i)
		if s.VariableIdx != InvalidIndex && s.VariableIdx >= variableCount {
			return fmt.Errorf("assembly: output slot %d variable %d out of range", i, s.VariableIdx)
		}
	}
	for i := uint32(0); i < variableCount; i++ {
		v := a.Variable(i)
		if v.DependencyStart+v.DependencyCount > dependencyCount && v.DependencyCount > 0 {
			return fmt.Errorf("assembly: variable %d dependencies out of range", i)
		}
	}
	for i := uint32(0); i < dependencyCount; i++ {
		d := a.Dependency(i)
		if d.Node >= nodeCount {
			return fmt.Errorf("assembly: dependency %d node %d out of range", i, d.Node)
		}
		if d.InputSlot >= inputSlotCount {
			return fmt.Errorf("assembly: dependency %d input slot %d out of range", i, d.InputSlot)
		}
	}
	byteCodeCount := uint32(a.byteCode.count)
	for i := uint32(0); i < expressionCount; i++ {
		e := a.Expression(i)
		if e.CodeStart+e.CodeCount > byteCodeCount && e.CodeCount > 0 {
			return fmt.Errorf("assembly: expression %d bytecode out of range", i)
		}
	}
	return nil
}

// InputPlugCount returns the total number of distinct input plug
// indices addressable across the assembly's nodes.
func (a *Assembly) InputPlugCount() uint32 { return a.inputPlugCount }

func (a *Assembly) NodeCount() uint32         { return uint32(a.nodes.count) }
func (a *Assembly) EntryNodeCount() uint32    { return uint32(a.entryNodes.count) }
func (a *Assembly) OutputPlugCount() uint32   { return uint32(a.outputPlugs.count) }
func (a *Assembly) WireCount() uint32         { return uint32(a.wires.count) }
func (a *Assembly) InputSlotCount() uint32    { return uint32(a.inputSlots.count) }
func (a *Assembly) OutputSlotCount() uint32   { return uint32(a.outputSlots.count) }
func (a *Assembly) VariableCount() uint32     { return uint32(a.variables.count) }
func (a *Assembly) DependencyCount() uint32   { return uint32(a.dependencies.count) }
func (a *Assembly) ExpressionCount() uint32   { return uint32(a.expressions.count) }
func (a *Assembly) FunctionCount() uint32     { return uint32(a.functions.count) }
func (a *Assembly) ConstantCount() uint32     { return uint32(a.constants.count) }

func (a *Assembly) Node(i uint32) Node {
	return getNode(a.buf, a.nodes.target(offNodes)+i*nodeRecordSize)
}

func (a *Assembly) EntryNode(i uint32) uint32 {
	return getU32(a.buf, a.entryNodes.target(offEntryNodes)+i*entryNodeSize)
}

func (a *Assembly) OutputPlug(i uint32) OutputPlug {
	return getOutputPlug(a.buf, a.outputPlugs.target(offOutputPlugs)+i*plugRecordSize)
}

func (a *Assembly) Wire(i uint32) Wire {
	return getWire(a.buf, a.wires.target(offWires)+i*wireRecordSize)
}

func (a *Assembly) InputSlot(i uint32) InputSlot {
	return getInputSlot(a.buf, a.inputSlots.target(offInputSlots)+i*inputSlotSize)
}

func (a *Assembly) OutputSlot(i uint32) OutputSlot {
	return getOutputSlot(a.buf, a.outputSlots.target(offOutputSlots)+i*outputSlotSize)
}

func (a *Assembly) Variable(i uint32) Variable {
	return getVariable(a.buf, a.variables.target(offVariables)+i*variableSize)
}

func (a *Assembly) Dependency(i uint32) Dependency {
	return getDependency(a.buf, a.dependencies.target(offDependencies)+i*dependencySize)
}

func (a *Assembly) Expression(i uint32) Expression {
	return getExpression(a.buf, a.expressions.target(offExpressions)+i*expressionSize)
}

func (a *Assembly) Function(i uint32) uint32 {
	return getU32(a.buf, a.functions.target(offFunctions)+i*functionSize)
}

func (a *Assembly) Constant(i uint32) Constant {
	return getConstant(a.buf, a.constants.target(offConstants)+i*constantSize)
}

// ByteCode returns the raw bytecode slice for an expression record.
func (a *Assembly) ByteCode(e Expression) []byte {
	start := a.byteCode.target(offByteCode) + e.CodeStart
	return a.buf[start : start+e.CodeCount]
}

// Bytes returns the validated blob, sized to its declared length
// (trailing bytes beyond header.size, if any, are not included).
func (a *Assembly) Bytes() []byte { return a.buf }
