package graph

import (
	"encoding/binary"

	"github.com/wireflow/wireflow/assembly"
	"github.com/wireflow/wireflow/value"
)

// inputPlugBitsetWidth is the fixed width of the per-node input-plug
// bitset the runtime allocates: PlugIndex is a uint8, so every index
// from 0 through the reserved value 254 must fit regardless of which
// plugs a given node actually declares.
const inputPlugBitsetWidth = 256

func (c *compiler) serialize() []byte {
	return assembly.Build(assembly.Sections{
		InputPlugCount: inputPlugBitsetWidth,
		Nodes:          c.nodes,
		EntryNodes:     c.entryNodes,
		OutputPlugs:    c.outputPlugs,
		Wires:          c.wires,
		InputSlots:     c.inputSlots,
		OutputSlots:    c.outputSlots,
		Variables:      c.variables,
		Dependencies:   c.dependencies,
		Expressions:    c.expressions,
		Functions:      c.functions,
		Constants:      c.constants,
		ByteCode:       c.byteCode,
	})
}

// encodeConstant packs a value.Value's type id and payload into the
// fixed-width record the assembly format stores constants as (spec.md
// §9 open question: every built-in scalar fits in 64 bits).
func encodeConstant(v value.Value) assembly.Constant {
	p := v.Payload()
	return assembly.Constant{
		TypeID:     uint32(v.Type()),
		Serialized: binary.LittleEndian.Uint64(p[:8]),
	}
}
