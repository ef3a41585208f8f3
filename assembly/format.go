// Package assembly defines the on-disk binary layout of a compiled
// graph (spec.md §3 "Assembly", §6 "Assembly binary format") and the
// loader/validator the runtime uses to accept one. The graph compiler
// package writes this format; the runtime package reads it.
//
// Every cross-reference in the format is a dense index into one of
// the flat arrays below, and every array location is a "self-relative
// offset" the way the source project's dsRelativeArray works: the
// stored offset is relative to the byte position of the offset field
// itself, so the whole blob is memcpy-safe and needs no base-address
// fixup on load. This package decodes those offsets with
// encoding/binary against byte positions rather than reinterpreting
// raw pointers, which is the idiomatic Go equivalent of the same
// self-relative-offset design (see DESIGN.md).
package assembly

// InvalidIndex is the sentinel for an absent dense index (spec.md §3,
// §6 "INVALID_INDEX = 0xFFFFFFFF").
const InvalidIndex uint32 = 0xFFFFFFFF

// BeginPlug and DefaultOutputPlug are the two reserved plug indices
// (spec.md §6). Any other index below them is a custom plug.
const (
	BeginPlug         uint8 = 254
	DefaultOutputPlug uint8 = 254
)

// Version is the binary format version this package reads and
// writes. Loading an assembly of a different version fails outright
// (spec.md §9 open question: "extending... requires a new table and a
// format-version bump" — until then, version must match exactly).
const Version uint32 = 1

// Header field byte offsets and total size, used by both the writer
// (write.go) and the reader (load.go) to locate each
// relative array without needing a Go struct with matching memory
// layout on both ends.
const (
	offVersion        = 0
	offSize           = 4
	offHash           = 8
	offInputPlugCount = 16
	offNodes          = 20
	offEntryNodes     = 28
	offOutputPlugs    = 36
	offWires          = 44
	offInputSlots     = 52
	offOutputSlots    = 60
	offVariables      = 68
	offDependencies   = 76
	offExpressions    = 84
	offFunctions      = 92
	offConstants      = 100
	offByteCode       = 108

	HeaderSize = 116
)

// Record sizes (bytes) and alignments for each dense array. Sizes
// match the field layouts of the get/put helpers in codec.go; alignments follow
// the widest field in the record (8 for anything holding a uint64).
const (
	nodeRecordSize   = 36
	nodeRecordAlign  = 4
	plugRecordSize   = 12
	plugRecordAlign  = 4
	wireRecordSize   = 8
	wireRecordAlign  = 4
	inputSlotSize    = 16
	inputSlotAlign   = 4
	outputSlotSize   = 4
	outputSlotAlign  = 4
	variableSize     = 16
	variableAlign    = 8
	dependencySize   = 8
	dependencyAlign  = 4
	expressionSize   = 8
	expressionAlign  = 4
	constantSize     = 16
	constantAlign    = 8
	functionSize     = 4
	functionAlign    = 4
	entryNodeSize    = 4
	entryNodeAlign   = 4
	byteCodeAlign    = 1
)

// Align rounds offset up to the next multiple of align (align must be
// a power of two), matching the source's dsAlign helper.
func Align(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}
