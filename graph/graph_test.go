package graph

import (
	"testing"

	"github.com/wireflow/wireflow/assembly"
	"github.com/wireflow/wireflow/expr"
	"github.com/wireflow/wireflow/value"
)

const (
	typeEntry NodeTypeID = 1
	typeState NodeTypeID = 2
	typeIncr  NodeTypeID = 3
)

type fakeHost struct {
	kinds     map[NodeTypeID]NodeKind
	functions map[string]expr.FunctionSignature
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		kinds: map[NodeTypeID]NodeKind{
			typeEntry: KindEntry,
			typeState: KindState,
			typeIncr:  KindAction,
		},
		functions: map[string]expr.FunctionSignature{},
	}
}

func (h *fakeHost) LookupNodeType(id NodeTypeID) (NodeTypeMeta, bool) {
	k, ok := h.kinds[id]
	return NodeTypeMeta{Kind: k}, ok
}

func (h *fakeHost) LookupFunction(name string) (expr.FunctionSignature, bool) {
	sig, ok := h.functions[name]
	return sig, ok
}

func mustCodeError(t *testing.T, errs []*CompileError, code ErrorCode) {
	t.Helper()
	for _, e := range errs {
		if e.Code == code {
			return
		}
	}
	t.Fatalf("expected error code %s, got %v", code, errs)
}

func TestCompileEntryOnlyGraph(t *testing.T) {
	b := NewBuilder()
	b.BeginNode(1, typeEntry)

	buf, errs := b.Compile(newFakeHost())
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	a, err := assembly.Load(buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if a.NodeCount() != 1 {
		t.Errorf("NodeCount = %d, want 1", a.NodeCount())
	}
	if a.EntryNodeCount() != 1 {
		t.Errorf("EntryNodeCount = %d, want 1", a.EntryNodeCount())
	}
}

func TestCompileEntryToState(t *testing.T) {
	b := NewBuilder()
	b.BeginNode(1, typeEntry)
	b.BeginNode(2, typeState)
	b.AddInputSlot(0, value.TypeInt32.ID)
	b.BindSlotConstant(value.Int32(7))

	b.AddWire(1, DefaultOutputPlug, 2, BeginPlug)

	buf, errs := b.Compile(newFakeHost())
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	a, err := assembly.Load(buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if a.NodeCount() != 2 {
		t.Errorf("NodeCount = %d, want 2", a.NodeCount())
	}
	if a.WireCount() != 1 {
		t.Errorf("WireCount = %d, want 1", a.WireCount())
	}
	if a.InputSlotCount() != 1 {
		t.Errorf("InputSlotCount = %d, want 1", a.InputSlotCount())
	}
	slot := a.InputSlot(0)
	if slot.ConstantIdx == assembly.InvalidIndex {
		t.Errorf("expected slot to carry a constant binding")
	}
}

func TestCompileDropsUnreachableNodes(t *testing.T) {
	b := NewBuilder()
	b.BeginNode(1, typeEntry)
	b.BeginNode(2, typeState) // never wired to anything live

	buf, errs := b.Compile(newFakeHost())
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	a, err := assembly.Load(buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if a.NodeCount() != 1 {
		t.Errorf("NodeCount = %d, want 1 (unreachable node should be dropped)", a.NodeCount())
	}
}

func TestCompileNoEntriesFails(t *testing.T) {
	b := NewBuilder()
	b.BeginNode(1, typeState)

	_, errs := b.Compile(newFakeHost())
	mustCodeError(t, errs, ErrNoEntries)
}

func TestCompileUnknownNodeType(t *testing.T) {
	b := NewBuilder()
	b.BeginNode(1, NodeTypeID(999))

	_, errs := b.Compile(newFakeHost())
	mustCodeError(t, errs, ErrUnknownNodeType)
}

func TestCompileDuplicateBuiltinPlugRejected(t *testing.T) {
	b := NewBuilder()
	b.BeginNode(1, typeEntry)
	b.AddOutputPlug(DefaultOutputPlug) // collides with the implicit default output

	_, errs := b.Compile(newFakeHost())
	mustCodeError(t, errs, ErrDuplicateBuiltinPlug)
}

func TestCompileWireToUnknownPlugFails(t *testing.T) {
	b := NewBuilder()
	b.BeginNode(1, typeEntry)
	b.BeginNode(2, typeState)
	b.AddWire(1, DefaultOutputPlug, 2, 5) // plug 5 never declared on node 2

	_, errs := b.Compile(newFakeHost())
	mustCodeError(t, errs, ErrPlugNotFound)
}

func TestCompileEntryCannotReceivePower(t *testing.T) {
	b := NewBuilder()
	b.BeginNode(1, typeEntry)
	b.BeginNode(2, typeEntry)
	b.AddWire(1, DefaultOutputPlug, 2, BeginPlug)

	_, errs := b.Compile(newFakeHost())
	mustCodeError(t, errs, ErrIncompatiblePowerWire)
}

func TestCompileVariableNotFound(t *testing.T) {
	b := NewBuilder()
	b.BeginNode(1, typeEntry)
	b.AddInputSlot(0, value.TypeInt32.ID)
	b.BindSlotVariable("missing")

	_, errs := b.Compile(newFakeHost())
	mustCodeError(t, errs, ErrVariableNotFound)
}

func TestCompileIncompatibleType(t *testing.T) {
	b := NewBuilder()
	b.AddVariable("count", value.TypeInt32.ID)
	b.BeginNode(1, typeEntry)
	b.AddInputSlot(0, value.TypeBool.ID)
	b.BindSlotVariable("count")

	_, errs := b.Compile(newFakeHost())
	mustCodeError(t, errs, ErrIncompatibleType)
}

// TestCompileCounterGraph models a small counter: an entry node wires
// into an increment action whose input slot is bound to the
// expression "count + step", reading two shared variables, and whose
// output slot writes the result back to "count".
func TestCompileCounterGraph(t *testing.T) {
	b := NewBuilder()
	b.AddVariable("count", value.TypeInt32.ID)
	b.AddVariable("step", value.TypeInt32.ID)

	b.BeginNode(1, typeEntry)

	b.BeginNode(2, typeIncr)
	b.AddInputSlot(0, value.TypeInt32.ID)
	b.BindSlotExpression("count + step")
	b.AddOutputSlot(0, value.TypeInt32.ID)
	b.BindOutputSlotVariable("count")

	b.AddWire(1, DefaultOutputPlug, 2, BeginPlug)

	buf, errs := b.Compile(newFakeHost())
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	a, err := assembly.Load(buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if a.VariableCount() != 2 {
		t.Fatalf("VariableCount = %d, want 2", a.VariableCount())
	}
	slot := a.InputSlot(0)
	if slot.ExpressionIdx == assembly.InvalidIndex {
		t.Fatalf("expected input slot to carry an expression binding")
	}
	expression := a.Expression(slot.ExpressionIdx)
	if expression.CodeCount == 0 {
		t.Errorf("expected non-empty compiled expression bytecode")
	}
	outSlot := a.OutputSlot(0)
	if outSlot.VariableIdx == assembly.InvalidIndex {
		t.Errorf("expected output slot to be bound to a variable")
	}
	// Both "count" and "step" should have recorded the slot as a
	// dependent so the runtime re-evaluates it on either write.
	for i := uint32(0); i < a.VariableCount(); i++ {
		v := a.Variable(i)
		if v.DependencyCount == 0 {
			t.Errorf("expected variable %d to record the expression's slot as a dependency", i)
		}
	}
}

func TestBuilderResetAllowsRecompile(t *testing.T) {
	b := NewBuilder()
	b.BeginNode(1, typeState)
	if _, errs := b.Compile(newFakeHost()); len(errs) == 0 {
		t.Fatalf("expected NoEntries failure")
	}
	b.Reset()
	b.BeginNode(1, typeEntry)
	if _, errs := b.Compile(newFakeHost()); len(errs) != 0 {
		t.Fatalf("unexpected errors after reset: %v", errs)
	}
}

func TestBuilderRejectsMutationAfterCompile(t *testing.T) {
	b := NewBuilder()
	b.BeginNode(1, typeEntry)
	if _, errs := b.Compile(newFakeHost()); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if b.BeginNode(2, typeState) {
		t.Errorf("expected BeginNode to fail once compiled")
	}
}
