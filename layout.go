package jaguar

import "github.com/RobotLeopard86/Jaguar/jerr"

// Field is the per-field subset of a value header used inside a
// StructuredTypeLayout. It mirrors Header's type-specific metadata
// without Size or FieldCount, since a declared field's payload size is
// fixed by its type, not declared per-instance.
type Field struct {
	Type TypeTag
	Name string

	// ElementType is set when Type is List, Vector or Matrix.
	ElementType TypeTag
	// ElementTypeID is set when Type is List and ElementType is
	// StructuredObj.
	ElementTypeID string

	// Width and Height are set when Type is Vector (Width only) or Matrix
	// (both).
	Width  uint8
	Height uint8

	// TypeID is set when Type is StructuredObj.
	TypeID string
}

// StructuredTypeLayout is a named record schema: a typeID plus an ordered
// list of fields.
type StructuredTypeLayout struct {
	TypeID string
	Fields []Field
}

// Validate reports whether the layout is well-formed: the layout has a
// non-empty typeID, every field has a non-empty name and a legal value
// type (not a scope boundary and not a declaration), every vector/matrix
// field has width/height in range [2,4] and a fixed-width element type,
// every structured-object field has a non-empty typeID, and no field is a
// List, String, ByteBuffer or Substream.
func (l *StructuredTypeLayout) Validate() error {
	if l.TypeID == "" {
		return jerr.Structural("structured type layout has an empty typeID")
	}

	for _, f := range l.Fields {
		if f.Name == "" {
			return jerr.Structural("structured type %q: field has an empty name", l.TypeID)
		}
		if !f.Type.IsValueType() {
			return jerr.Structural("structured type %q: field %q has non-value type %s", l.TypeID, f.Name, f.Type)
		}

		switch f.Type {
		case Vector:
			if f.Width < 2 || f.Width > 4 {
				return jerr.Structural("structured type %q: field %q has out-of-range vector width %d", l.TypeID, f.Name, f.Width)
			}
			if f.ElementType.Width() == 0 {
				return jerr.Structural("structured type %q: field %q is a vector of non-fixed-width element type %s", l.TypeID, f.Name, f.ElementType)
			}
		case Matrix:
			if f.Width < 2 || f.Width > 4 || f.Height < 2 || f.Height > 4 {
				return jerr.Structural("structured type %q: field %q has out-of-range matrix dimensions %dx%d", l.TypeID, f.Name, f.Width, f.Height)
			}
			if f.ElementType.Width() == 0 {
				return jerr.Structural("structured type %q: field %q is a matrix of non-fixed-width element type %s", l.TypeID, f.Name, f.ElementType)
			}
		case StructuredObj:
			if f.TypeID == "" {
				return jerr.Structural("structured type %q: field %q is a structured object with no typeID", l.TypeID, f.Name)
			}
		default:
			// A field's raw payload carries no length prefix of its own; only
			// types whose byte size is pinned by the declaration itself
			// (scalars, fixed-width vectors/matrices, nested structured
			// objects) can be headerless fields. List, String, ByteBuffer
			// and Substream have a per-instance size that only a header
			// can carry, so they cannot appear here.
			if f.Type == List || f.Type == String || f.Type == ByteBuffer || f.Type == Substream {
				return jerr.Structural("structured type %q: field %q has variable-length type %s, which cannot be a headerless field", l.TypeID, f.Name, f.Type)
			}
		}
	}

	return nil
}

// FieldByName returns the field with the given name, or false if none
// exists. Declared field order is otherwise significant (a
// structured-object entry's subvalue layout matches its declared type in
// the same field order) and is not disturbed by this lookup.
func (l *StructuredTypeLayout) FieldByName(name string) (Field, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
