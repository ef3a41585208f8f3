package assembly

// Node is the decoded form of a serialized node record (spec.md §3).
type Node struct {
	TypeID                uint32
	DefaultOutputPlugIdx  uint32 // InvalidIndex if the node has no default output
	CustomOutputStart     uint32
	CustomOutputCount     uint32
	CustomInputCount      uint32
	InputSlotStart        uint32
	InputSlotCount        uint32
	OutputSlotStart       uint32
	OutputSlotCount       uint32
}

// OutputPlug is the decoded form of a serialized output-plug record.
// PlugIndex is the authored plug index this record was compiled from
// (DefaultOutputPlug for a node's implicit default output, otherwise
// one of its declared custom output plugs); the runtime scans a
// node's custom output-plug range for a matching PlugIndex to resolve
// which wires to propagate power through.
type OutputPlug struct {
	PlugIndex uint32
	WireStart uint32
	WireCount uint32
}

// Wire is the decoded form of a serialized wire record.
type Wire struct {
	TargetNode      uint32
	TargetInputPlug uint32
}

// InputSlot is the decoded form of a serialized input-slot record. At
// most one of VariableIdx/ExpressionIdx/ConstantIdx is not
// InvalidIndex.
type InputSlot struct {
	VariableIdx   uint32
	ExpressionIdx uint32
	ConstantIdx   uint32
	OwningNode    uint32
}

// OutputSlot is the decoded form of a serialized output-slot record.
type OutputSlot struct {
	VariableIdx uint32 // InvalidIndex if unbound
}

// Variable is the decoded form of a serialized variable record.
type Variable struct {
	NameHash        uint64
	DependencyStart uint32
	DependencyCount uint32
}

// Dependency is the decoded form of a serialized dependency record.
type Dependency struct {
	Node      uint32
	InputSlot uint32
}

// Expression is the decoded form of a serialized expression record.
type Expression struct {
	CodeStart uint32
	CodeCount uint32
}

// Constant is the decoded form of a serialized constant record: a
// type id and its value serialized into a single u64, sufficient for
// any scalar up to 64 bits (spec.md §9 open question).
type Constant struct {
	TypeID     uint32
	Serialized uint64
}
