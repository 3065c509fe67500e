package jaguar

import "fmt"

// Header is the metadata that precedes every value in a Jaguar stream.
// Only the fields relevant to Type are meaningful; callers that build a
// Header by hand must zero the rest.
type Header struct {
	// Type is always set, except that a ScopeBoundary header has no other
	// fields populated.
	Type TypeTag

	// Name is the field name, 1..255 UTF-8 bytes. Absent (empty) on a
	// ScopeBoundary header, and on headerless values (list elements,
	// structured-object fields).
	Name string

	// ElementType is the element tag for List, Vector and Matrix headers.
	ElementType TypeTag

	// Size is a 32-bit count whose meaning depends on Type: number of
	// elements for List, byte length for String (bounded by 2^24-1), or
	// byte length of payload for ByteBuffer/Substream.
	Size uint32

	// Width and Height are 2..4 for Vector (Width only) and Matrix (both).
	Width  uint8
	Height uint8

	// FieldCount is the declared child count of an UnstructuredObj or a
	// StructuredObjTypeDecl.
	FieldCount uint16

	// TypeID is the UTF-8 record-type name, 1..255 bytes, for
	// StructuredObj, StructuredObjTypeDecl, and a List whose ElementType is
	// StructuredObj (see DESIGN.md: a conditional typeID trailer on List
	// headers is the minimum extension that makes such lists decodable).
	TypeID string
}

// String renders the header for diagnostics.
func (h Header) String() string {
	switch h.Type {
	case ScopeBoundary:
		return "ScopeBoundary"
	case List:
		if h.ElementType == StructuredObj {
			return fmt.Sprintf("List(%q, elem=%s<%s>, n=%d)", h.Name, h.ElementType, h.TypeID, h.Size)
		}
		return fmt.Sprintf("List(%q, elem=%s, n=%d)", h.Name, h.ElementType, h.Size)
	case Vector:
		return fmt.Sprintf("Vector(%q, elem=%s, w=%d)", h.Name, h.ElementType, h.Width)
	case Matrix:
		return fmt.Sprintf("Matrix(%q, elem=%s, w=%d, h=%d)", h.Name, h.ElementType, h.Width, h.Height)
	case StructuredObj:
		return fmt.Sprintf("StructuredObj(%q, type=%q)", h.Name, h.TypeID)
	case StructuredObjTypeDecl:
		return fmt.Sprintf("StructuredObjTypeDecl(type=%q, fields=%d)", h.TypeID, h.FieldCount)
	case UnstructuredObj:
		return fmt.Sprintf("UnstructuredObj(%q, fields=%d)", h.Name, h.FieldCount)
	case String, ByteBuffer, Substream:
		return fmt.Sprintf("%s(%q, size=%d)", h.Type, h.Name, h.Size)
	default:
		return fmt.Sprintf("%s(%q)", h.Type, h.Name)
	}
}
