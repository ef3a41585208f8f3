package graph

import (
	"github.com/wireflow/wireflow/assembly"
	"github.com/wireflow/wireflow/expr"
	"github.com/wireflow/wireflow/internal/namehash"
	"github.com/wireflow/wireflow/value"
)

// Compile runs every pass of spec.md §4.C over the nodes, wires, and
// variables currently authored in b against host: resolve node types,
// validate plugs, link wires, find entries, compute liveness, allocate
// dense indices, compile slot bindings, and serialize. It returns the
// serialized assembly, or every accumulated error if any pass failed.
// b is left at StatusCompiled (success) or StatusError (failure); no
// further authoring calls succeed until Reset.
func (b *Builder) Compile(host Host) ([]byte, []*CompileError) {
	if !b.mutable() {
		return nil, []*CompileError{newError(ErrUnknown, 0, "builder is not open for compilation")}
	}
	c := &compiler{
		b:             b,
		host:          host,
		nodeOf:        map[uint64]uint32{},
		wiresByPlug:   map[wireKey][]Wire{},
		adjacency:     map[uint32][]uint32{},
		functionIndex: map[string]uint32{},
		constantIndex: map[value.Value]uint32{},
		depsByVar:     map[uint32][]assembly.Dependency{},
	}

	c.resolveNodes()
	c.processPlugs()
	c.linkWires()
	c.findEntries()
	if len(c.errs) > 0 {
		b.status = StatusError
		return nil, c.errs
	}

	c.liveness()
	c.allocateIndices()
	c.compileBindings()
	if len(c.errs) > 0 {
		b.status = StatusError
		return nil, c.errs
	}

	b.status = StatusCompiled
	return c.serialize(), nil
}

type wireKey struct {
	node uint32
	plug PlugIndex
}

// compiler holds the scratch state of a single Compile run: the
// resolved node graph, the live subset reachable from entries, the
// dense index tables, and the growing array accumulators that become
// assembly.Sections.
type compiler struct {
	b    *Builder
	host Host
	errs []*CompileError

	nodeOf      map[uint64]uint32    // authored node id -> index into b.nodes
	wiresByPlug map[wireKey][]Wire   // (node, output plug) -> outgoing wires
	adjacency   map[uint32][]uint32  // node index -> node indices reachable by one wire

	entryOrig []uint32 // original indices of entry nodes
	live      []bool   // by original node index
	liveOrder []uint32 // original indices of live nodes, in dense order
	denseNode map[uint32]uint32

	variableByName map[string]Variable
	variableIndex  map[string]uint32

	nodes        []assembly.Node
	entryNodes   []uint32
	outputPlugs  []assembly.OutputPlug
	wires        []assembly.Wire
	inputSlots   []assembly.InputSlot
	outputSlots  []assembly.OutputSlot
	variables    []assembly.Variable
	dependencies []assembly.Dependency
	expressions  []assembly.Expression
	functions    []uint32
	constants    []assembly.Constant
	byteCode     []byte

	functionIndex map[string]uint32
	constantIndex map[value.Value]uint32
	depsByVar     map[uint32][]assembly.Dependency
}

func (c *compiler) resolveNodes() {
	for i, n := range c.b.nodes {
		c.nodeOf[n.ID] = uint32(i)
		meta, ok := c.host.LookupNodeType(n.TypeID)
		if !ok {
			c.errs = append(c.errs, newError(ErrUnknownNodeType, n.ID, "type %d not registered", n.TypeID))
			continue
		}
		n.Kind = meta.Kind
	}
}

func (c *compiler) processPlugs() {
	for _, n := range c.b.nodes {
		seenOut := map[PlugIndex]bool{}
		for _, p := range n.OutputPlugs {
			if p.Index == DefaultOutputPlug {
				c.errs = append(c.errs, newError(ErrDuplicateBuiltinPlug, n.ID, "output plug %d collides with the implicit default output", p.Index))
				continue
			}
			if seenOut[p.Index] {
				c.errs = append(c.errs, newError(ErrIllegalPlugCustomID, n.ID, "duplicate custom output plug %d", p.Index))
				continue
			}
			seenOut[p.Index] = true
		}
		seenIn := map[PlugIndex]bool{}
		for _, p := range n.InputPlugs {
			if p.Index == BeginPlug {
				c.errs = append(c.errs, newError(ErrDuplicateBuiltinPlug, n.ID, "input plug %d collides with the implicit begin plug", p.Index))
				continue
			}
			if seenIn[p.Index] {
				c.errs = append(c.errs, newError(ErrIllegalPlugCustomID, n.ID, "duplicate custom input plug %d", p.Index))
				continue
			}
			seenIn[p.Index] = true
		}
	}
}

func (c *compiler) linkWires() {
	for _, w := range c.b.wires {
		fromIdx, ok := c.nodeOf[w.FromNode]
		if !ok {
			c.errs = append(c.errs, newError(ErrNodeNotFound, w.FromNode, "wire source node not found"))
			continue
		}
		toIdx, ok := c.nodeOf[w.ToNode]
		if !ok {
			c.errs = append(c.errs, newError(ErrNodeNotFound, w.ToNode, "wire target node not found"))
			continue
		}
		fromNode, toNode := c.b.nodes[fromIdx], c.b.nodes[toIdx]
		if !hasOutputPlug(fromNode, w.FromPlug) {
			c.errs = append(c.errs, newError(ErrPlugNotFound, w.FromNode, "output plug %d not declared", w.FromPlug))
			continue
		}
		if !hasInputPlug(toNode, w.ToPlug) {
			c.errs = append(c.errs, newError(ErrPlugNotFound, w.ToNode, "input plug %d not declared", w.ToPlug))
			continue
		}
		if toNode.Kind == KindEntry {
			c.errs = append(c.errs, newError(ErrIncompatiblePowerWire, w.ToNode, "entry nodes cannot receive incoming power"))
			continue
		}
		key := wireKey{node: fromIdx, plug: w.FromPlug}
		c.wiresByPlug[key] = append(c.wiresByPlug[key], w)
		c.adjacency[fromIdx] = append(c.adjacency[fromIdx], toIdx)
	}
}

func hasOutputPlug(n *Node, idx PlugIndex) bool {
	if idx == DefaultOutputPlug {
		return true
	}
	for _, p := range n.OutputPlugs {
		if p.Index == idx {
			return true
		}
	}
	return false
}

func hasInputPlug(n *Node, idx PlugIndex) bool {
	if idx == BeginPlug {
		return true
	}
	for _, p := range n.InputPlugs {
		if p.Index == idx {
			return true
		}
	}
	return false
}

func (c *compiler) findEntries() {
	for i, n := range c.b.nodes {
		if n.Kind == KindEntry {
			c.entryOrig = append(c.entryOrig, uint32(i))
		}
	}
	if len(c.entryOrig) == 0 {
		c.errs = append(c.errs, newError(ErrNoEntries, 0, "graph has no entry nodes"))
	}
}

// liveness marks every node reachable from an entry by a chain of
// wires. Unreachable nodes are dropped from the serialized assembly
// entirely (spec.md §4.C "Liveness").
func (c *compiler) liveness() {
	c.live = make([]bool, len(c.b.nodes))
	stack := make([]uint32, 0, len(c.entryOrig))
	for _, e := range c.entryOrig {
		if !c.live[e] {
			c.live[e] = true
			stack = append(stack, e)
		}
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range c.adjacency[n] {
			if !c.live[next] {
				c.live[next] = true
				stack = append(stack, next)
			}
		}
	}
}

func (c *compiler) allocateIndices() {
	c.denseNode = map[uint32]uint32{}
	for orig := range c.b.nodes {
		if !c.live[orig] {
			continue
		}
		c.denseNode[uint32(orig)] = uint32(len(c.liveOrder))
		c.liveOrder = append(c.liveOrder, uint32(orig))
	}

	// Variables are graph-wide declarations, not node-local, so every
	// authored variable keeps its index regardless of node liveness.
	c.variableByName = map[string]Variable{}
	c.variableIndex = map[string]uint32{}
	c.variables = make([]assembly.Variable, len(c.b.variables))
	for i, v := range c.b.variables {
		c.variableByName[v.Name] = v
		c.variableIndex[v.Name] = uint32(i)
		c.variables[i] = assembly.Variable{
			NameHash:        namehash.Hash64(v.Name),
			DependencyStart: assembly.InvalidIndex,
			DependencyCount: 0,
		}
	}
}

func (c *compiler) compileBindings() {
	for denseIdx, orig := range c.liveOrder {
		n := c.b.nodes[orig]
		rec := assembly.Node{
			TypeID:               uint32(n.TypeID),
			DefaultOutputPlugIdx: assembly.InvalidIndex,
			InputSlotStart:       assembly.InvalidIndex,
			OutputSlotStart:      assembly.InvalidIndex,
			CustomInputCount:     uint32(len(n.InputPlugs)),
		}

		if ws, ok := c.wiresByPlug[wireKey{node: orig, plug: DefaultOutputPlug}]; ok && len(ws) > 0 {
			rec.DefaultOutputPlugIdx = c.appendOutputPlug(DefaultOutputPlug, ws)
		}

		if len(n.OutputPlugs) > 0 {
			rec.CustomOutputStart = uint32(len(c.outputPlugs))
			rec.CustomOutputCount = uint32(len(n.OutputPlugs))
			for _, p := range n.OutputPlugs {
				c.appendOutputPlug(p.Index, c.wiresByPlug[wireKey{node: orig, plug: p.Index}])
			}
		}

		if len(n.InputSlots) > 0 {
			rec.InputSlotStart = uint32(len(c.inputSlots))
			rec.InputSlotCount = uint32(len(n.InputSlots))
			for _, slot := range n.InputSlots {
				c.compileInputSlot(uint32(denseIdx), n.ID, slot)
			}
		}

		if len(n.OutputSlots) > 0 {
			rec.OutputSlotStart = uint32(len(c.outputSlots))
			rec.OutputSlotCount = uint32(len(n.OutputSlots))
			for _, slot := range n.OutputSlots {
				c.compileOutputSlot(n.ID, slot)
			}
		}

		c.nodes = append(c.nodes, rec)
	}

	for _, orig := range c.entryOrig {
		if dense, ok := c.denseNode[orig]; ok {
			c.entryNodes = append(c.entryNodes, dense)
		}
	}

	c.finalizeDependencies()
}

func (c *compiler) appendOutputPlug(plugIndex PlugIndex, ws []Wire) uint32 {
	idx := uint32(len(c.outputPlugs))
	start := uint32(len(c.wires))
	for _, w := range ws {
		toDense := c.denseNode[c.nodeOf[w.ToNode]]
		c.wires = append(c.wires, assembly.Wire{TargetNode: toDense, TargetInputPlug: uint32(w.ToPlug)})
	}
	c.outputPlugs = append(c.outputPlugs, assembly.OutputPlug{
		PlugIndex: uint32(plugIndex),
		WireStart: start,
		WireCount: uint32(len(ws)),
	})
	return idx
}

func (c *compiler) compileInputSlot(denseNode uint32, nodeID uint64, slot InputSlot) {
	slotGlobal := uint32(len(c.inputSlots))
	rec := assembly.InputSlot{
		VariableIdx:   assembly.InvalidIndex,
		ExpressionIdx: assembly.InvalidIndex,
		ConstantIdx:   assembly.InvalidIndex,
		OwningNode:    denseNode,
	}

	switch slot.Binding.Kind {
	case BindingNone:
		// unbound: reading the slot at runtime reports ok=false.

	case BindingVariable:
		// A direct variable binding reads the current value fresh on
		// every entry, so it needs no recorded dependency: unlike an
		// expression, there is nothing cached that could go stale.
		// Recording one here would also self-trigger any node whose
		// output writes back to a variable its own input reads.
		varIdx, ok := c.variableIndex[slot.Binding.VariableName]
		if !ok {
			c.errs = append(c.errs, newError(ErrVariableNotFound, nodeID, "variable %q not declared", slot.Binding.VariableName))
			break
		}
		if c.b.variables[varIdx].Type != slot.Type {
			c.errs = append(c.errs, newError(ErrIncompatibleType, nodeID, "variable %q is type %d, slot wants %d", slot.Binding.VariableName, c.b.variables[varIdx].Type, slot.Type))
		}
		rec.VariableIdx = varIdx

	case BindingExpression:
		eb := &exprBuilder{c: c, owningNode: denseNode, owningSlot: slotGlobal}
		compiled, err := expr.Compile(slot.Binding.ExpressionText, exprHost{c: c}, eb)
		if err != nil {
			c.errs = append(c.errs, newError(ErrExpressionCompileError, nodeID, "%v", err))
			break
		}
		if compiled.ResultType != 0 && compiled.ResultType != slot.Type {
			c.errs = append(c.errs, newError(ErrIncompatibleType, nodeID, "expression result type %d does not match slot type %d", compiled.ResultType, slot.Type))
		}
		if compiled.IsConstant {
			rec.ConstantIdx = c.internConstant(compiled.Constant)
		} else {
			rec.ExpressionIdx = c.internExpression(compiled.Code)
		}

	case BindingConstant:
		if slot.Binding.Constant.Type() != slot.Type {
			c.errs = append(c.errs, newError(ErrIncompatibleType, nodeID, "constant is type %d, slot wants %d", slot.Binding.Constant.Type(), slot.Type))
		}
		rec.ConstantIdx = c.internConstant(slot.Binding.Constant)
	}

	c.inputSlots = append(c.inputSlots, rec)
}

func (c *compiler) compileOutputSlot(nodeID uint64, slot OutputSlot) {
	rec := assembly.OutputSlot{VariableIdx: assembly.InvalidIndex}
	if slot.Binding.Bound {
		varIdx, ok := c.variableIndex[slot.Binding.VariableName]
		if !ok {
			c.errs = append(c.errs, newError(ErrVariableNotFound, nodeID, "variable %q not declared", slot.Binding.VariableName))
		} else {
			if c.b.variables[varIdx].Type != slot.Type {
				c.errs = append(c.errs, newError(ErrIncompatibleType, nodeID, "variable %q is type %d, slot wants %d", slot.Binding.VariableName, c.b.variables[varIdx].Type, slot.Type))
			}
			rec.VariableIdx = varIdx
		}
	}
	c.outputSlots = append(c.outputSlots, rec)
}

func (c *compiler) addDependency(varIdx, node, slot uint32) {
	c.depsByVar[varIdx] = append(c.depsByVar[varIdx], assembly.Dependency{Node: node, InputSlot: slot})
}

func (c *compiler) finalizeDependencies() {
	for i := range c.variables {
		deps := c.depsByVar[uint32(i)]
		if len(deps) == 0 {
			continue
		}
		start := uint32(len(c.dependencies))
		c.dependencies = append(c.dependencies, deps...)
		c.variables[i].DependencyStart = start
		c.variables[i].DependencyCount = uint32(len(deps))
	}
}

func (c *compiler) internConstant(v value.Value) uint32 {
	if idx, ok := c.constantIndex[v]; ok {
		return idx
	}
	idx := uint32(len(c.constants))
	c.constants = append(c.constants, encodeConstant(v))
	c.constantIndex[v] = idx
	return idx
}

func (c *compiler) internExpression(code []byte) uint32 {
	idx := uint32(len(c.expressions))
	start := uint32(len(c.byteCode))
	c.byteCode = append(c.byteCode, code...)
	c.expressions = append(c.expressions, assembly.Expression{CodeStart: start, CodeCount: uint32(len(code))})
	return idx
}

func (c *compiler) internFunction(name string) uint32 {
	if idx, ok := c.functionIndex[name]; ok {
		return idx
	}
	var id uint32
	if sig, ok := c.host.LookupFunction(name); ok {
		id = uint32(sig.ID)
	}
	idx := uint32(len(c.functions))
	c.functions = append(c.functions, id)
	c.functionIndex[name] = idx
	return idx
}
