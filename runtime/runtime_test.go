package runtime

import (
	"testing"

	"github.com/wireflow/wireflow/assembly"
	"github.com/wireflow/wireflow/expr"
	"github.com/wireflow/wireflow/value"
)

type call struct {
	node uint32
	plug uint8
}

type recordingHandler struct {
	calls  []call
	onCall func(ctx *NodeContext)
}

func (h *recordingHandler) HandleInput(ctx *NodeContext, plug uint8) {
	h.calls = append(h.calls, call{node: ctx.NodeID(), plug: plug})
	if h.onCall != nil {
		h.onCall(ctx)
	}
}

func (h *recordingHandler) HandleDeactivate(ctx *NodeContext) {}

type fakeHost struct {
	handlers map[NodeTypeID]NodeHandler
}

func newFakeHost() *fakeHost { return &fakeHost{handlers: map[NodeTypeID]NodeHandler{}} }

func (h *fakeHost) LookupNodeHandler(t NodeTypeID) (NodeHandler, bool) {
	v, ok := h.handlers[t]
	return v, ok
}

func (h *fakeHost) InvokeFunction(uint32, *expr.FunctionContext) (value.Value, bool) {
	return value.Value{}, false
}

func buildAndLoad(t *testing.T, s assembly.Sections) *RefAssembly {
	t.Helper()
	ref, err := LoadAssembly(assembly.Build(s))
	if err != nil {
		t.Fatalf("LoadAssembly: %v", err)
	}
	return ref
}

func TestActivateInvokesHandler(t *testing.T) {
	s := assembly.Sections{
		Nodes: []assembly.Node{
			{DefaultOutputPlugIdx: assembly.InvalidIndex, InputSlotStart: assembly.InvalidIndex, OutputSlotStart: assembly.InvalidIndex},
		},
	}
	ref := buildAndLoad(t, s)

	rec := &recordingHandler{}
	host := newFakeHost()
	host.handlers[0] = rec

	rt := New(host)
	inst := rt.NewInstance(ref)
	defer inst.Destroy()

	inst.Activate(0)
	inst.Pump()

	if len(rec.calls) != 1 || rec.calls[0] != (call{node: 0, plug: assembly.BeginPlug}) {
		t.Fatalf("unexpected calls: %v", rec.calls)
	}
	if !inst.activeNodes.Test(0) {
		t.Errorf("expected node 0 to be marked active")
	}
}

func TestPowerPropagatesAlongWire(t *testing.T) {
	s := assembly.Sections{
		Nodes: []assembly.Node{
			{TypeID: 1, DefaultOutputPlugIdx: 0, InputSlotStart: assembly.InvalidIndex, OutputSlotStart: assembly.InvalidIndex},
			{TypeID: 2, DefaultOutputPlugIdx: assembly.InvalidIndex, InputSlotStart: assembly.InvalidIndex, OutputSlotStart: assembly.InvalidIndex},
		},
		OutputPlugs: []assembly.OutputPlug{
			{PlugIndex: uint32(assembly.DefaultOutputPlug), WireStart: 0, WireCount: 1},
		},
		Wires: []assembly.Wire{
			{TargetNode: 1, TargetInputPlug: uint32(assembly.BeginPlug)},
		},
	}
	ref := buildAndLoad(t, s)

	// Activating source powers its default output automatically once
	// its handler returns; no explicit SetPlugPower call is needed.
	source := &recordingHandler{}
	sink := &recordingHandler{}

	host := newFakeHost()
	host.handlers[1] = source
	host.handlers[2] = sink

	rt := New(host)
	inst := rt.NewInstance(ref)
	defer inst.Destroy()

	inst.Activate(0)
	inst.Pump()

	if len(source.calls) != 1 {
		t.Fatalf("source calls = %v, want 1", source.calls)
	}
	if len(sink.calls) != 1 || sink.calls[0].node != 1 {
		t.Fatalf("expected propagation to reach node 1, got %v", sink.calls)
	}
}

func TestVariableWriteFansOutToDependents(t *testing.T) {
	s := assembly.Sections{
		Nodes: []assembly.Node{
			{ // writer: one output slot bound to variable 0
				TypeID: 1, DefaultOutputPlugIdx: assembly.InvalidIndex,
				InputSlotStart: assembly.InvalidIndex,
				OutputSlotStart: 0, OutputSlotCount: 1,
			},
			{ // reader: one input slot bound to variable 0
				TypeID: 2, DefaultOutputPlugIdx: assembly.InvalidIndex,
				InputSlotStart: 0, InputSlotCount: 1,
				OutputSlotStart: assembly.InvalidIndex,
			},
		},
		OutputSlots: []assembly.OutputSlot{
			{VariableIdx: 0},
		},
		InputSlots: []assembly.InputSlot{
			{VariableIdx: 0, ExpressionIdx: assembly.InvalidIndex, ConstantIdx: assembly.InvalidIndex, OwningNode: 1},
		},
		Variables: []assembly.Variable{
			{NameHash: 1, DependencyStart: 0, DependencyCount: 1},
		},
		Dependencies: []assembly.Dependency{
			{Node: 1, InputSlot: 0},
		},
	}
	ref := buildAndLoad(t, s)

	var readBack value.Value
	writer := &recordingHandler{}
	reader := &recordingHandler{}
	reader.onCall = func(ctx *NodeContext) {
		v, ok := ctx.ReadInputSlot(0)
		if ok {
			readBack = v
		}
	}

	host := newFakeHost()
	host.handlers[1] = writer
	host.handlers[2] = reader

	rt := New(host)
	inst := rt.NewInstance(ref)
	defer inst.Destroy()

	// Reader has to be active before a write can reach it: a
	// dependency event addressed to an inactive node is dropped, since
	// that node will read fresh state the next time it's really
	// activated anyway.
	inst.Activate(1)
	inst.Pump()
	if len(reader.calls) != 1 {
		t.Fatalf("expected initial activation to enter node 1, got %v", reader.calls)
	}

	inst.WriteVariable(0, value.Int32(42))
	inst.Pump()

	if len(reader.calls) != 2 {
		t.Fatalf("expected variable write to re-enter node 1, got %v", reader.calls)
	}
	i, ok := readBack.AsInt32()
	if !ok || i != 42 {
		t.Errorf("readBack = %v, want 42", readBack)
	}
}

func TestDestroyReleasesReference(t *testing.T) {
	s := assembly.Sections{
		Nodes: []assembly.Node{
			{DefaultOutputPlugIdx: assembly.InvalidIndex, InputSlotStart: assembly.InvalidIndex, OutputSlotStart: assembly.InvalidIndex},
		},
	}
	ref := buildAndLoad(t, s)
	rt := New(newFakeHost())
	inst := rt.NewInstance(ref)
	if ref.refCount() != 2 {
		t.Fatalf("refCount = %d, want 2 (caller + instance)", ref.refCount())
	}
	inst.Destroy()
	if ref.refCount() != 1 {
		t.Errorf("refCount after Destroy = %d, want 1", ref.refCount())
	}
}

func TestUnknownNodeTypeIsANoOp(t *testing.T) {
	s := assembly.Sections{
		Nodes: []assembly.Node{
			{TypeID: 999, DefaultOutputPlugIdx: assembly.InvalidIndex, InputSlotStart: assembly.InvalidIndex, OutputSlotStart: assembly.InvalidIndex},
		},
	}
	ref := buildAndLoad(t, s)
	rt := New(newFakeHost()) // no handlers registered
	inst := rt.NewInstance(ref)
	defer inst.Destroy()

	inst.Activate(0)
	inst.Pump() // must not panic
}
