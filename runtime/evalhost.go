package runtime

import (
	"github.com/wireflow/wireflow/expr"
	"github.com/wireflow/wireflow/value"
)

// evalHost adapts one instance, scoped to the node currently being
// entered, to expr.EvaluateHost: constant/variable reads resolve
// through the assembly and instance state directly, function calls
// delegate to the RuntimeHost, and Listen subscribes the input slot
// being read to an emitter so a later NotifyChange re-enters its node (spec.md §4.B
// "EvaluateHost", §6 "Emitter bus").
type evalHost struct {
	inst *Instance
	node uint32
	slot uint32
}

func (e *evalHost) ReadConstant(idx uint16) (value.Value, bool) {
	if uint32(idx) >= e.inst.asm.ConstantCount() {
		return value.Value{}, false
	}
	return decodeConstant(e.inst.asm.Constant(uint32(idx))), true
}

func (e *evalHost) ReadVariable(idx uint16) (value.Value, bool) {
	if uint32(idx) >= uint32(len(e.inst.variables)) {
		return value.Value{}, false
	}
	return e.inst.variables[idx], true
}

func (e *evalHost) InvokeFunction(idx uint16, ctx *expr.FunctionContext) (value.Value, bool) {
	if uint32(idx) >= e.inst.asm.FunctionCount() {
		return value.Value{}, false
	}
	fnID := e.inst.asm.Function(uint32(idx))
	return e.inst.rt.host.InvokeFunction(fnID, ctx)
}

func (e *evalHost) Listen(id expr.EmitterID) {
	e.inst.emitters.listen(EmitterID(id), slotKey{node: e.node, slot: e.slot})
}
