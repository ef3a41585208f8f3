// Package value implements the tagged Value type and the process-wide
// type registry every other wireflow package builds on (spec.md
// §4.A). A Value carries at most 16 bytes of inline payload and a
// TypeID; equality and copying are dispatched through the owning
// TypeMeta so the set of representable types stays open to host
// extension without this package knowing about them.
package value

import (
	"math"

	"github.com/wireflow/wireflow/internal/namehash"
)

// TypeID is a stable, interned identifier for a registered type,
// derived from the type's name with FNV-1a/32.
type TypeID uint32

// payloadSize bounds inline storage the way the source's dsValue caps
// payloads at 16 bytes, pointer-aligned.
const payloadSize = 16

// TypeMeta describes a registered type: its stable id and the
// function pointers needed to compare and copy values of that type.
// Equal and Copy operate on the raw 16-byte payload; RegisterType
// rejects a type whose size exceeds 16 bytes or whose alignment is
// not a power of two no greater than 16. Alignments wider than a
// pointer (up to 16) are accepted.
type TypeMeta struct {
	Name  string
	ID    TypeID
	Size  uint32
	Align uint32
	Equal func(a, b [payloadSize]byte) bool
	Copy  func(dst *[payloadSize]byte, src [payloadSize]byte)
}

var registry = map[TypeID]*TypeMeta{}
var registryByName = map[string]*TypeMeta{}

func register(name string, size, align uint32, eq func(a, b [payloadSize]byte) bool) *TypeMeta {
	id := TypeID(namehash.Hash32(name))
	m := &TypeMeta{
		Name:  name,
		ID:    id,
		Size:  size,
		Align: align,
		Equal: eq,
		Copy: func(dst *[payloadSize]byte, src [payloadSize]byte) {
			*dst = src
		},
	}
	registry[id] = m
	registryByName[name] = m
	return m
}

func bytesEqual(n int) func(a, b [payloadSize]byte) bool {
	return func(a, b [payloadSize]byte) bool {
		for i := 0; i < n; i++ {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	}
}

// Built-in types, registered at package init the way the source
// registers void/int32/float32/bool/nil before any host type.
var (
	TypeVoid    = register("void", 0, 1, bytesEqual(0))
	TypeNil     = register("nil", 0, 1, bytesEqual(0))
	TypeBool    = register("bool", 1, 1, bytesEqual(1))
	TypeInt32   = register("int32", 4, 4, bytesEqual(4))
	TypeFloat32 = register("float32", 4, 4, bytesEqual(4))
)

// LookupType resolves a TypeID to its TypeMeta, including host types
// registered with RegisterType.
func LookupType(id TypeID) (*TypeMeta, bool) {
	m, ok := registry[id]
	return m, ok
}

// LookupTypeByName resolves a type by its registered name.
func LookupTypeByName(name string) (*TypeMeta, bool) {
	m, ok := registryByName[name]
	return m, ok
}

// RegisterType adds a host-defined type to the process-wide registry.
// It rejects types whose payload doesn't fit inline, mirroring the
// source's compile-time rejection of over-wide dsValue payloads.
func RegisterType(name string, size, align uint32, eq func(a, b [16]byte) bool) (*TypeMeta, error) {
	if size > payloadSize {
		return nil, errTooLarge(name, size)
	}
	if align > payloadSize || (align&(align-1)) != 0 {
		return nil, errBadAlign(name, align)
	}
	if _, exists := registryByName[name]; exists {
		return nil, errDuplicate(name)
	}
	return register(name, size, align, eq), nil
}

// Value is a small tagged value: a type id plus up to 16 bytes of
// inline payload. The zero Value carries TypeID 0, which no built-in
// type uses: it is not nil (IsNil reports false) and Equal reports
// false for it, even against another zero Value. Nil() builds the nil
// value.
type Value struct {
	typeID  TypeID
	payload [payloadSize]byte
}

// Nil returns the nil value.
func Nil() Value { return Value{typeID: TypeNil.ID} }

// Bool constructs a bool value.
func Bool(b bool) Value {
	v := Value{typeID: TypeBool.ID}
	if b {
		v.payload[0] = 1
	}
	return v
}

// Int32 constructs an int32 value.
func Int32(i int32) Value {
	v := Value{typeID: TypeInt32.ID}
	putU32(&v.payload, uint32(i))
	return v
}

// Float32 constructs a float32 value.
func Float32(f float32) Value {
	v := Value{typeID: TypeFloat32.ID}
	putU32(&v.payload, float32bits(f))
	return v
}

// Type returns the value's type id.
func (v Value) Type() TypeID { return v.typeID }

// IsNil reports whether v holds the nil type.
func (v Value) IsNil() bool { return v.typeID == TypeNil.ID }

// AsBool returns v's bool payload; ok is false if v is not a bool.
func (v Value) AsBool() (b, ok bool) {
	if v.typeID != TypeBool.ID {
		return false, false
	}
	return v.payload[0] != 0, true
}

// AsInt32 returns v's int32 payload; ok is false if v is not an int32.
func (v Value) AsInt32() (i int32, ok bool) {
	if v.typeID != TypeInt32.ID {
		return 0, false
	}
	return int32(getU32(v.payload)), true
}

// AsFloat32 returns v's float32 payload; ok is false if v is not a float32.
func (v Value) AsFloat32() (f float32, ok bool) {
	if v.typeID != TypeFloat32.ID {
		return 0, false
	}
	return float32frombits(getU32(v.payload)), true
}

// Payload exposes the raw inline bytes, for host types built with
// RegisterType that need to decode their own representation.
func (v Value) Payload() [16]byte { return v.payload }

// FromPayload constructs a Value of the given type from raw bytes,
// for host code implementing a registered type.
func FromPayload(id TypeID, payload [16]byte) Value {
	return Value{typeID: id, payload: payload}
}

// Equal compares two values. Equality is only defined between values
// of identical type; nil equals nil; an unregistered type always
// compares false.
func (v Value) Equal(other Value) bool {
	if v.typeID != other.typeID {
		return false
	}
	if v.typeID == TypeNil.ID {
		return true
	}
	m, ok := LookupType(v.typeID)
	if !ok {
		return false
	}
	return m.Equal(v.payload, other.payload)
}

func putU32(p *[payloadSize]byte, u uint32) {
	p[0] = byte(u)
	p[1] = byte(u >> 8)
	p[2] = byte(u >> 16)
	p[3] = byte(u >> 24)
}

func getU32(p [payloadSize]byte) uint32 {
	return uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16 | uint32(p[3])<<24
}

func float32bits(f float32) uint32    { return math.Float32bits(f) }
func float32frombits(u uint32) float32 { return math.Float32frombits(u) }
