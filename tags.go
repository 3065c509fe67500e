// Package jaguar defines the wire vocabulary of the Jaguar binary stream
// format: type tags, the value header record, structured-type layouts, and
// the Index tree produced by a structural decode. It performs no I/O; see
// jreader, jwriter and jdecode for the codec and decoder.
package jaguar

import "fmt"

// TypeTag is the single-byte discriminator that precedes every value in a
// Jaguar stream. Its upper nibble groups families (scalar, signed integer,
// unsigned integer, object/list/declaration/scope-boundary,
// vector/matrix); the lower nibble is always >= 0xA.
type TypeTag byte

const (
	String    TypeTag = 0x0A
	ByteBuffer TypeTag = 0x0B
	Substream TypeTag = 0x0C
	Boolean   TypeTag = 0x0D
	Float32   TypeTag = 0x0E
	Float64   TypeTag = 0x0F

	SInt8  TypeTag = 0x1A
	SInt16 TypeTag = 0x1B
	SInt32 TypeTag = 0x1C
	SInt64 TypeTag = 0x1D

	UInt8  TypeTag = 0x2A
	UInt16 TypeTag = 0x2B
	UInt32 TypeTag = 0x2C
	UInt64 TypeTag = 0x2D

	List                   TypeTag = 0x3A
	UnstructuredObj        TypeTag = 0x3B
	StructuredObj          TypeTag = 0x3C
	StructuredObjTypeDecl  TypeTag = 0x3D
	ScopeBoundary          TypeTag = 0x3E

	Vector TypeTag = 0x4A
	Matrix TypeTag = 0x4B
)

// String returns the tag's name, or a placeholder for an invalid byte.
func (t TypeTag) String() string {
	switch t {
	case String:
		return "String"
	case ByteBuffer:
		return "ByteBuffer"
	case Substream:
		return "Substream"
	case Boolean:
		return "Boolean"
	case Float32:
		return "Float32"
	case Float64:
		return "Float64"
	case SInt8:
		return "SInt8"
	case SInt16:
		return "SInt16"
	case SInt32:
		return "SInt32"
	case SInt64:
		return "SInt64"
	case UInt8:
		return "UInt8"
	case UInt16:
		return "UInt16"
	case UInt32:
		return "UInt32"
	case UInt64:
		return "UInt64"
	case List:
		return "List"
	case UnstructuredObj:
		return "UnstructuredObj"
	case StructuredObj:
		return "StructuredObj"
	case StructuredObjTypeDecl:
		return "StructuredObjTypeDecl"
	case ScopeBoundary:
		return "ScopeBoundary"
	case Vector:
		return "Vector"
	case Matrix:
		return "Matrix"
	default:
		return fmt.Sprintf("TypeTag(0x%02X)", byte(t))
	}
}

// ValidTag reports whether b is one of the enumerated type-tag byte values:
// 0x0A <= b <= 0x4B, lower nibble >= 0xA, upper nibble 1 or 2 permits only
// lower nibble <= 0xD, upper nibble 4 permits only lower nibble <= 0xB, and
// 0x3F is explicitly forbidden.
func ValidTag(b byte) bool {
	if b < 0x0A || b > 0x4B {
		return false
	}
	if b&0x0F < 0x0A {
		return false
	}
	upper := b >> 4
	lower := b & 0x0F
	switch upper {
	case 0x1, 0x2:
		return lower <= 0xD
	case 0x4:
		return lower <= 0xB
	case 0x3:
		return b != 0x3F
	case 0x0:
		return true
	default:
		return false
	}
}

// IsValid reports whether t is a well-formed type tag.
func (t TypeTag) IsValid() bool {
	return ValidTag(byte(t))
}

// IsScalar reports whether t is in the upper-nibble-0 scalar family.
func (t TypeTag) IsScalar() bool {
	return t>>4 == 0x0
}

// IsSignedInt reports whether t is one of the SIntN tags.
func (t TypeTag) IsSignedInt() bool {
	return t>>4 == 0x1
}

// IsUnsignedInt reports whether t is one of the UIntN tags.
func (t TypeTag) IsUnsignedInt() bool {
	return t>>4 == 0x2
}

// IsValueType reports whether t can legally appear as the type of a value
// (as opposed to a structural/declaration-only tag like ScopeBoundary or
// StructuredObjTypeDecl). Used by StructuredTypeLayout.Validate.
func (t TypeTag) IsValueType() bool {
	if !t.IsValid() {
		return false
	}
	switch t {
	case ScopeBoundary, StructuredObjTypeDecl:
		return false
	default:
		return true
	}
}

// Width returns the byte width of the scalar payload for integer, float
// and boolean tags, or 0 for tags whose payload width is not fixed
// (strings, buffers, sub-streams, objects, lists, vectors, matrices).
func (t TypeTag) Width() int {
	switch t {
	case SInt8, UInt8:
		return 1
	case SInt16, UInt16:
		return 2
	case SInt32, UInt32, Float32:
		return 4
	case SInt64, UInt64, Float64:
		return 8
	case Boolean:
		return 1
	default:
		return 0
	}
}
