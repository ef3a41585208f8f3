package testhost

import (
	"testing"

	"github.com/wireflow/wireflow/graph"
	"github.com/wireflow/wireflow/runtime"
	"github.com/wireflow/wireflow/value"
)

const (
	typeEntry     = 1
	typeIncrement = 2
)

// incrementHandler reads its single input slot, adds one, writes it
// back through its single output slot, and fires its default output
// — a minimal version of the counter node the increment example walks
// through compiling and running end to end.
type incrementHandler struct{}

func (incrementHandler) HandleInput(ctx *runtime.NodeContext, plug uint8) {
	var i int32
	if v, ok := ctx.ReadInputSlot(0); ok {
		i, _ = v.AsInt32() // still zero if count hasn't been written yet
	}
	ctx.WriteOutputSlot(0, value.Int32(i+1))
	ctx.SetPlugPower(graph.DefaultOutputPlug, true)
}

func (incrementHandler) HandleDeactivate(ctx *runtime.NodeContext) {}

func TestCompileAndRunCounterGraph(t *testing.T) {
	host := New()
	// typeEntry has no handler of its own: an entry node is activated
	// automatically when its instance is created, and activation
	// already powers the default output plug, so there's nothing left
	// for a handler to do.
	host.RegisterNodeType(typeEntry, graph.KindEntry, nil)
	host.RegisterNodeType(typeIncrement, graph.KindAction, incrementHandler{})

	b := graph.NewBuilder()
	b.AddVariable("count", value.TypeInt32.ID)

	b.BeginNode(1, typeEntry)

	b.BeginNode(2, typeIncrement)
	b.AddInputSlot(0, value.TypeInt32.ID)
	b.BindSlotVariable("count")
	b.AddOutputSlot(0, value.TypeInt32.ID)
	b.BindOutputSlotVariable("count")

	b.AddWire(1, graph.DefaultOutputPlug, 2, graph.BeginPlug)

	buf, errs := b.Compile(host)
	if len(errs) != 0 {
		t.Fatalf("compile failed: %v", errs)
	}

	ref, err := runtime.LoadAssembly(buf)
	if err != nil {
		t.Fatalf("LoadAssembly: %v", err)
	}

	rt := runtime.New(host)
	inst := rt.NewInstance(ref)
	defer inst.Destroy()

	// NewInstance already queued an Activate for the entry node; no
	// manual kickoff needed.
	inst.Pump()

	v, ok := inst.ReadVariable(0)
	if !ok {
		t.Fatalf("expected variable 0 to be readable")
	}
	i, ok := v.AsInt32()
	if !ok || i != 1 {
		t.Errorf("count = %v, want 1", v)
	}
}
