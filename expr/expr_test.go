package expr

import (
	"testing"

	"github.com/wireflow/wireflow/value"
)

// testHost implements Host over a fixed set of variables/functions for
// the expression examples in spec.md §8.4; evalHost below adapts it to
// EvaluateHost.
type testHost struct {
	vars    map[string]value.Value
	funcs   map[string]FunctionSignature
	fnImpls map[FunctionID]func(args []value.Value) value.Value
	listens []EmitterID
}

func newTestHost() *testHost {
	return &testHost{
		vars:    map[string]value.Value{},
		funcs:   map[string]FunctionSignature{},
		fnImpls: map[FunctionID]func(args []value.Value) value.Value{},
	}
}

func (h *testHost) setVar(name string, v value.Value) { h.vars[name] = v }

func (h *testHost) addFunc(name string, id FunctionID, ret value.TypeID, params []value.TypeID, impl func([]value.Value) value.Value) {
	h.funcs[name] = FunctionSignature{ID: id, ReturnType: ret, ParamTypes: params}
	h.fnImpls[id] = impl
}

func (h *testHost) LookupVariable(name string) (value.TypeID, bool) {
	v, ok := h.vars[name]
	if !ok {
		return 0, false
	}
	return v.Type(), true
}

func (h *testHost) LookupFunction(name string) (FunctionSignature, bool) {
	sig, ok := h.funcs[name]
	return sig, ok
}

// testBuilder implements Builder with flat dedup tables, standing in
// for the graph compiler's real implementation in these unit tests.
type testBuilder struct {
	consts []value.Value
	vars   []string
	funcs  []string
}

func (b *testBuilder) ConstantIndex(v value.Value) uint16 {
	for i, c := range b.consts {
		if c.Equal(v) {
			return uint16(i)
		}
	}
	b.consts = append(b.consts, v)
	return uint16(len(b.consts) - 1)
}

func (b *testBuilder) VariableIndex(name string) uint16 {
	for i, v := range b.vars {
		if v == name {
			return uint16(i)
		}
	}
	b.vars = append(b.vars, name)
	return uint16(len(b.vars) - 1)
}

func (b *testBuilder) FunctionIndex(name string) uint16 {
	for i, f := range b.funcs {
		if f == name {
			return uint16(i)
		}
	}
	b.funcs = append(b.funcs, name)
	return uint16(len(b.funcs) - 1)
}

// evalHost adapts a testHost + testBuilder's tables into an
// EvaluateHost for running the compiled bytecode in-process.
type evalHost struct {
	host    *testHost
	builder *testBuilder
}

func (e *evalHost) ReadConstant(idx uint16) (value.Value, bool) {
	if int(idx) >= len(e.builder.consts) {
		return value.Value{}, false
	}
	return e.builder.consts[idx], true
}

func (e *evalHost) ReadVariable(idx uint16) (value.Value, bool) {
	if int(idx) >= len(e.builder.vars) {
		return value.Value{}, false
	}
	v, ok := e.host.vars[e.builder.vars[idx]]
	return v, ok
}

func (e *evalHost) InvokeFunction(idx uint16, ctx *FunctionContext) (value.Value, bool) {
	if int(idx) >= len(e.builder.funcs) {
		return value.Value{}, false
	}
	name := e.builder.funcs[idx]
	sig, ok := e.host.funcs[name]
	if !ok {
		return value.Value{}, false
	}
	impl, ok := e.host.fnImpls[sig.ID]
	if !ok {
		return value.Value{}, false
	}
	return impl(ctx.Args), true
}

func (e *evalHost) Listen(id EmitterID) { e.host.listens = append(e.host.listens, id) }

func evalExpr(t *testing.T, src string, host *testHost) value.Value {
	t.Helper()
	b := &testBuilder{}
	compiled, err := Compile(src, host, b)
	if err != nil {
		t.Fatalf("Compile(%q) failed: %v", src, err)
	}
	result, ok := Evaluate(&evalHost{host: host, builder: b}, compiled.Code)
	if !ok {
		t.Fatalf("Evaluate(%q) failed", src)
	}
	return result
}

func TestEndToEndExpressions(t *testing.T) {
	cases := []struct {
		src  string
		want int32
	}{
		{"1", 1},
		{"-42", -42},
		{"1 + 17", 18},
		{"10 + 2 * -3 - (1 + 1)", 2},
	}
	host := newTestHost()
	for _, c := range cases {
		got := evalExpr(t, c.src, host)
		i, ok := got.AsInt32()
		if !ok || i != c.want {
			t.Errorf("eval(%q) = %v, want %d", c.src, got, c.want)
		}
	}
}

func TestVariableExpression(t *testing.T) {
	host := newTestHost()
	host.setVar("var", value.Int32(7))
	got := evalExpr(t, "-var * 3", host)
	i, ok := got.AsInt32()
	if !ok || i != -21 {
		t.Errorf("eval(-var*3) = %v, want -21", got)
	}
}

func TestFunctionCallExpression(t *testing.T) {
	host := newTestHost()
	host.addFunc("Add", 1, value.TypeInt32.ID, []value.TypeID{value.TypeInt32.ID, value.TypeInt32.ID}, func(args []value.Value) value.Value {
		a, _ := args[0].AsInt32()
		b, _ := args[1].AsInt32()
		return value.Int32(a + b)
	})
	got := evalExpr(t, "Add(17, 99 - 50) + -42", host)
	i, ok := got.AsInt32()
	if !ok || i != 24 {
		t.Errorf("eval(Add(...)) = %v, want 24", got)
	}
}

func TestDivisionByZeroYieldsZero(t *testing.T) {
	host := newTestHost()
	got := evalExpr(t, "1 / 0", host)
	i, ok := got.AsInt32()
	if !ok || i != 0 {
		t.Errorf("eval(1/0) = %v, want 0", got)
	}
}

func TestEmptyInputFails(t *testing.T) {
	host := newTestHost()
	if _, err := Compile("", host, &testBuilder{}); err == nil {
		t.Errorf("expected error for empty expression")
	}
}

func TestUnbalancedParenFails(t *testing.T) {
	host := newTestHost()
	if _, err := Compile("(1 + 2", host, &testBuilder{}); err == nil {
		t.Errorf("expected error for unbalanced paren")
	}
}

func TestTrailingGarbageFails(t *testing.T) {
	host := newTestHost()
	if _, err := Compile("1 + 2 3", host, &testBuilder{}); err == nil {
		t.Errorf("expected error for trailing garbage")
	}
}

func TestUnaryMinusOnBoolIllegal(t *testing.T) {
	host := newTestHost()
	host.setVar("flag", value.Bool(true))
	if _, err := Compile("-flag", host, &testBuilder{}); err == nil {
		t.Errorf("expected error for unary minus on bool")
	}
}

func TestUnknownIdentifierFails(t *testing.T) {
	host := newTestHost()
	if _, err := Compile("missing + 1", host, &testBuilder{}); err == nil {
		t.Errorf("expected error for unknown identifier")
	}
}

func TestArityMismatchFails(t *testing.T) {
	host := newTestHost()
	host.addFunc("f", 1, value.TypeInt32.ID, []value.TypeID{value.TypeInt32.ID}, func(args []value.Value) value.Value { return args[0] })
	if _, err := Compile("f(1, 2)", host, &testBuilder{}); err == nil {
		t.Errorf("expected arity mismatch error")
	}
}

func TestConstantFoldingProducesConstant(t *testing.T) {
	host := newTestHost()
	compiled, err := Compile("1 + 17", host, &testBuilder{})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if !compiled.IsConstant {
		t.Fatalf("expected fully-folded expression to be constant")
	}
	i, ok := compiled.Constant.AsInt32()
	if !ok || i != 18 {
		t.Errorf("constant = %v, want 18", compiled.Constant)
	}
}

func TestOptimizeIsIdempotentOnConstants(t *testing.T) {
	ast1, err := parse("2 * (3 + 4)")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	host := newTestHost()
	if err := typecheck(ast1, host); err != nil {
		t.Fatalf("typecheck failed: %v", err)
	}
	once := optimize(ast1)
	twice := optimize(once)
	b1, b2 := &testBuilder{}, &testBuilder{}
	code1 := generate(once, b1)
	code2 := generate(twice, b2)
	if string(code1) != string(code2) {
		t.Errorf("optimize is not idempotent: %v vs %v", code1, code2)
	}
}

func TestStackOverflowOnDeepPush(t *testing.T) {
	host := &fakeOverflowHost{}
	code := make([]byte, 0, 33)
	for i := 0; i < 33; i++ {
		code = append(code, byte(OpPush1))
	}
	if _, ok := Evaluate(host, code); ok {
		t.Errorf("expected stack overflow to fail evaluation")
	}
}

type fakeOverflowHost struct{}

func (fakeOverflowHost) ReadConstant(uint16) (value.Value, bool)                 { return value.Value{}, false }
func (fakeOverflowHost) ReadVariable(uint16) (value.Value, bool)                 { return value.Value{}, false }
func (fakeOverflowHost) InvokeFunction(uint16, *FunctionContext) (value.Value, bool) {
	return value.Value{}, false
}
func (fakeOverflowHost) Listen(EmitterID) {}

func TestStackUnderflowFails(t *testing.T) {
	host := &fakeOverflowHost{}
	code := []byte{byte(OpAdd)}
	if _, ok := Evaluate(host, code); ok {
		t.Errorf("expected underflow to fail evaluation")
	}
}

func TestUnknownOpcodeFails(t *testing.T) {
	host := &fakeOverflowHost{}
	code := []byte{0xFF}
	if _, ok := Evaluate(host, code); ok {
		t.Errorf("expected unknown opcode to fail evaluation")
	}
}

func TestListenForwardedToHost(t *testing.T) {
	host := newTestHost()
	host.addFunc("subscribe", 2, value.TypeInt32.ID, nil, func(args []value.Value) value.Value {
		return value.Int32(1)
	})
	b := &testBuilder{}
	compiled, err := Compile("subscribe()", host, b)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	eh := &evalHost{host: host, builder: b}
	// Wrap InvokeFunction indirectly: the fn impl itself doesn't call
	// Listen, so call it manually through a host that does, proving
	// the plumbing from FunctionContext.Listen to EvaluateHost.Listen.
	ctx := &FunctionContext{Listen: eh.Listen}
	ctx.Listen(EmitterID(42))
	if len(host.listens) != 1 || host.listens[0] != 42 {
		t.Errorf("Listen not forwarded to host: %v", host.listens)
	}
	if _, ok := Evaluate(eh, compiled.Code); !ok {
		t.Errorf("Evaluate(subscribe()) failed")
	}
}
