// Package testhost is a convenience, in-memory implementation of the
// graph and runtime host interfaces, grounded the way the original
// project's sample database host backs its example graphs: one small
// registry a caller populates, instead of separate ad hoc fakes per
// test file.
package testhost

import (
	"github.com/wireflow/wireflow/expr"
	"github.com/wireflow/wireflow/graph"
	"github.com/wireflow/wireflow/runtime"
	"github.com/wireflow/wireflow/value"
)

// Host implements graph.Host (compiling) and runtime.RuntimeHost
// (running) over one shared in-memory registry of node types and
// functions. It has no variable registry, so it does not implement
// expr.Host. Production
// hosts are expected to back these lookups with a real asset
// database; Host exists so tests and small examples don't need one.
type Host struct {
	nodeKinds    map[uint32]graph.NodeKind
	nodeHandlers map[uint32]runtime.NodeHandler
	functions    map[string]expr.FunctionSignature
	functionImpl map[uint32]func(args []value.Value) value.Value
}

// New returns an empty Host ready for registration.
func New() *Host {
	return &Host{
		nodeKinds:    map[uint32]graph.NodeKind{},
		nodeHandlers: map[uint32]runtime.NodeHandler{},
		functions:    map[string]expr.FunctionSignature{},
		functionImpl: map[uint32]func(args []value.Value) value.Value{},
	}
}

// RegisterNodeType declares a node type's structural kind for graph
// compilation and, if handler is non-nil, its runtime behavior.
func (h *Host) RegisterNodeType(id uint32, kind graph.NodeKind, handler runtime.NodeHandler) {
	h.nodeKinds[id] = kind
	if handler != nil {
		h.nodeHandlers[id] = handler
	}
}

// RegisterFunction declares a callable host function available to
// expression bindings, along with its implementation.
func (h *Host) RegisterFunction(name string, id expr.FunctionID, ret value.TypeID, params []value.TypeID, impl func(args []value.Value) value.Value) {
	h.functions[name] = expr.FunctionSignature{ID: id, ReturnType: ret, ParamTypes: params}
	h.functionImpl[uint32(id)] = impl
}

func (h *Host) LookupNodeType(id graph.NodeTypeID) (graph.NodeTypeMeta, bool) {
	k, ok := h.nodeKinds[uint32(id)]
	return graph.NodeTypeMeta{Kind: k}, ok
}

func (h *Host) LookupFunction(name string) (expr.FunctionSignature, bool) {
	sig, ok := h.functions[name]
	return sig, ok
}

func (h *Host) LookupNodeHandler(id runtime.NodeTypeID) (runtime.NodeHandler, bool) {
	handler, ok := h.nodeHandlers[uint32(id)]
	return handler, ok
}

func (h *Host) InvokeFunction(id uint32, ctx *expr.FunctionContext) (value.Value, bool) {
	impl, ok := h.functionImpl[id]
	if !ok {
		return value.Value{}, false
	}
	return impl(ctx.Args), true
}
