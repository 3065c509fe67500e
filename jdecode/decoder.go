// Package jdecode implements the structural decoder: the recursive
// descent over a Jaguar stream's headers that builds the Index tree.
//
// Derived from document/encoding/custom/codec.go's EncodedDocument.Iterate
// / DecodeArray and Format.Decode's header-then-body split, generalized
// here from a flat field-header list plus a fixed body into a recursive
// scope tree with recorded stream positions.
package jdecode

import (
	"errors"
	"io"
	"math"

	"github.com/RobotLeopard86/Jaguar"
	"github.com/RobotLeopard86/Jaguar/jerr"
	"github.com/RobotLeopard86/Jaguar/jreader"
)

// rootSentinel marks the root scope's expected field count: a value above
// the 16-bit domain of a real header's fieldCount, so the root can never
// be mistaken for a scope awaiting a declared number of children. The
// root is instead terminated by end-of-stream.
const rootSentinel = 1 << 16

// Decoder owns a Reader and performs a one-shot structural decode,
// publishing an Index on success.
type Decoder struct {
	r        *jreader.Reader
	idx      *jaguar.Index
	parsed   bool
	failed   bool
	released bool
}

// New creates a Decoder over r, taking ownership of it.
func New(r *jreader.Reader) *Decoder {
	return &Decoder{r: r, idx: jaguar.NewIndex()}
}

// Failed reports whether Parse has run and failed.
func (d *Decoder) Failed() bool {
	return d.failed
}

// Parse runs the structural decode exactly once. A second call, whether
// the first succeeded or failed, fails with ErrAlreadyParsed.
func (d *Decoder) Parse() error {
	if d.released {
		return jerr.ErrReleased
	}
	if d.parsed {
		return jerr.ErrAlreadyParsed
	}
	d.parsed = true

	if err := d.parseScope(d.idx.Root, rootSentinel, ""); err != nil {
		d.failed = true
		return err
	}
	return nil
}

// GetIndex returns the Index built by a successful Parse. It fails with
// ErrParseFailed if Parse failed, or a Lifecycle error if Parse has not
// run yet.
func (d *Decoder) GetIndex() (*jaguar.Index, error) {
	if d.released {
		return nil, jerr.ErrReleased
	}
	if !d.parsed {
		return nil, jerr.Lifecycle("jaguar: GetIndex called before Parse")
	}
	if d.failed {
		return nil, jerr.ErrParseFailed
	}
	return d.idx, nil
}

// ReleaseReader returns the underlying Reader and renders the Decoder
// inert; every subsequent Decoder call fails with ErrReleased. The
// returned Reader remains Alive and usable, so a caller can seek it and
// call a Reader primitive directly, e.g. to read a value the Index only
// recorded the position of.
func (d *Decoder) ReleaseReader() (*jreader.Reader, error) {
	if d.released {
		return nil, jerr.ErrReleased
	}
	d.released = true
	r := d.r
	d.r = nil
	return r, nil
}

// parseScope recurses over one scope's headers, recording a child
// ScopeEntry or ValueEntry for each and verifying the scope closes at the
// declared field count.
func (d *Decoder) parseScope(scope *jaguar.ScopeEntry, expectedFieldCount uint32, path string) error {
	for {
		h, err := d.r.ReadHeader()
		if err != nil {
			if expectedFieldCount == rootSentinel && errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if h.Type == jaguar.ScopeBoundary {
			if expectedFieldCount == rootSentinel {
				return jerr.ErrUnexpectedScopeBoundary
			}
			count := uint32(scope.ChildCount())
			switch {
			case count == expectedFieldCount:
				return nil
			case count < expectedFieldCount:
				return jerr.Structural("jaguar: early scope boundary in %q: got %d of %d field(s)", path, count, expectedFieldCount)
			default:
				return jerr.Structural("jaguar: late scope boundary in %q: got %d of %d field(s)", path, count, expectedFieldCount)
			}
		}

		if expectedFieldCount != rootSentinel && uint32(scope.ChildCount()) >= expectedFieldCount {
			return jerr.Structural("jaguar: excess fields in %q: expected %d", path, expectedFieldCount)
		}

		switch h.Type {
		case jaguar.UnstructuredObj:
			childPath := jaguar.JoinPath(path, h.Name)
			child := &jaguar.ScopeEntry{
				Name:                h.Name,
				ID:                  jaguar.DeriveID(childPath),
				StreamBeginPosition: d.r.Position(),
			}
			scope.Subscopes = append(scope.Subscopes, child)
			if err := d.parseScope(child, uint32(h.FieldCount), childPath); err != nil {
				return err
			}

		case jaguar.StructuredObj:
			layout, ok := d.idx.Types[h.TypeID]
			if !ok {
				return jerr.Structural("jaguar: unknown structured typeID %q in %q", h.TypeID, path)
			}
			childPath := jaguar.JoinPath(path, h.Name)
			child := &jaguar.ScopeEntry{
				Name:                h.Name,
				TypeID:              h.TypeID,
				ID:                  jaguar.DeriveID(childPath),
				StreamBeginPosition: d.r.Position(),
			}
			scope.Subscopes = append(scope.Subscopes, child)

			if err := d.parseStructuredBody(child, layout, childPath, map[string]bool{}); err != nil {
				return err
			}
			closeH, err := d.r.ReadHeader()
			if err != nil {
				return err
			}
			if closeH.Type != jaguar.ScopeBoundary {
				return jerr.Structural("jaguar: structured object %q in %q not terminated by a scope boundary", h.TypeID, path)
			}

		case jaguar.StructuredObjTypeDecl:
			layout, err := d.parseTypeDecl(h)
			if err != nil {
				return err
			}
			if _, exists := d.idx.Types[layout.TypeID]; exists {
				return jerr.Structural("jaguar: duplicate structured type declaration %q", layout.TypeID)
			}
			d.idx.Types[layout.TypeID] = layout

		default:
			ve, err := d.decodeValueEntry(h, path)
			if err != nil {
				return err
			}
			scope.Subvalues = append(scope.Subvalues, ve)
		}
	}
}

// decodeValueEntry records a ValueEntry for any scalar/string/buffer/
// sub-stream/list/vector/matrix header and skips past its payload so the
// next header lands at the next sibling.
func (d *Decoder) decodeValueEntry(h jaguar.Header, path string) (*jaguar.ValueEntry, error) {
	pos := d.r.Position()
	ve := &jaguar.ValueEntry{
		Name:                h.Name,
		ID:                  jaguar.DeriveID(jaguar.JoinPath(path, h.Name)),
		StreamBeginPosition: pos,
		Type:                h.Type,
		ElementType:         h.ElementType,
		Size:                h.Size,
		Width:               h.Width,
		Height:              h.Height,
		TypeID:              h.TypeID,
	}

	switch h.Type {
	case jaguar.String, jaguar.ByteBuffer, jaguar.Substream:
		if err := d.skipBytes(int64(h.Size)); err != nil {
			return nil, err
		}

	case jaguar.Vector:
		w := h.ElementType.Width()
		if w == 0 {
			return nil, jerr.Structural("jaguar: vector %q in %q has non-fixed-width element type %s", h.Name, path, h.ElementType)
		}
		if err := d.skipBytes(int64(h.Width) * int64(w)); err != nil {
			return nil, err
		}

	case jaguar.Matrix:
		w := h.ElementType.Width()
		if w == 0 {
			return nil, jerr.Structural("jaguar: matrix %q in %q has non-fixed-width element type %s", h.Name, path, h.ElementType)
		}
		if err := d.skipBytes(int64(h.Width) * int64(h.Height) * int64(w)); err != nil {
			return nil, err
		}

	case jaguar.List:
		if h.ElementType == jaguar.StructuredObj {
			ve.ElementTypeID = h.TypeID
			layout, ok := d.idx.Types[h.TypeID]
			if !ok {
				return nil, jerr.Structural("jaguar: list %q in %q has unknown element typeID %q", h.Name, path, h.TypeID)
			}
			recSize, err := d.recordSize(layout, map[string]bool{})
			if err != nil {
				return nil, err
			}
			if err := d.skipBytes(int64(h.Size) * recSize); err != nil {
				return nil, err
			}
		} else {
			w := h.ElementType.Width()
			if w == 0 {
				return nil, jerr.Structural("jaguar: list %q in %q has non-fixed-width element type %s", h.Name, path, h.ElementType)
			}
			if err := d.skipBytes(int64(h.Size) * int64(w)); err != nil {
				return nil, err
			}
		}

	default:
		// Boolean, every SInt/UIntN, Float32, Float64: fixed width, no
		// further fields to read.
		if err := d.skipBytes(int64(h.Type.Width())); err != nil {
			return nil, err
		}
	}

	return ve, nil
}

// parseStructuredBody reads layout's declared fields as headerless raw
// payloads, recording a ValueEntry or nested ScopeEntry for each. It does
// not consume the closing scope boundary; the caller that dispatched into
// a header-bearing StructuredObj owns that. seen guards against a
// self-referential type declaration recursing forever, the same hazard
// recordSize guards against for the List-of-StructuredObj sizing path; the
// caller passes a fresh map per top-level StructuredObj value, and this
// method marks layout.TypeID in it before recursing into any field and
// clears the mark on return, so only types on the current nesting path
// are marked.
func (d *Decoder) parseStructuredBody(scope *jaguar.ScopeEntry, layout *jaguar.StructuredTypeLayout, path string, seen map[string]bool) error {
	if seen[layout.TypeID] {
		return jerr.Structural("jaguar: structured type %q is self-referential", layout.TypeID)
	}
	seen[layout.TypeID] = true
	defer delete(seen, layout.TypeID)

	for _, f := range layout.Fields {
		pos := d.r.Position()
		childPath := jaguar.JoinPath(path, f.Name)

		switch f.Type {
		case jaguar.StructuredObj:
			nested, ok := d.idx.Types[f.TypeID]
			if !ok {
				return jerr.Structural("jaguar: field %q in %q has unknown structured typeID %q", f.Name, path, f.TypeID)
			}
			child := &jaguar.ScopeEntry{
				Name:                f.Name,
				TypeID:              f.TypeID,
				ID:                  jaguar.DeriveID(childPath),
				StreamBeginPosition: pos,
			}
			scope.Subscopes = append(scope.Subscopes, child)
			if err := d.parseStructuredBody(child, nested, childPath, seen); err != nil {
				return err
			}

		case jaguar.Vector:
			w := f.ElementType.Width()
			if err := d.skipBytes(int64(f.Width) * int64(w)); err != nil {
				return err
			}
			scope.Subvalues = append(scope.Subvalues, &jaguar.ValueEntry{
				Name: f.Name, ID: jaguar.DeriveID(childPath), StreamBeginPosition: pos,
				Type: f.Type, ElementType: f.ElementType, Width: f.Width,
			})

		case jaguar.Matrix:
			w := f.ElementType.Width()
			if err := d.skipBytes(int64(f.Width) * int64(f.Height) * int64(w)); err != nil {
				return err
			}
			scope.Subvalues = append(scope.Subvalues, &jaguar.ValueEntry{
				Name: f.Name, ID: jaguar.DeriveID(childPath), StreamBeginPosition: pos,
				Type: f.Type, ElementType: f.ElementType, Width: f.Width, Height: f.Height,
			})

		default:
			if err := d.skipBytes(int64(f.Type.Width())); err != nil {
				return err
			}
			scope.Subvalues = append(scope.Subvalues, &jaguar.ValueEntry{
				Name: f.Name, ID: jaguar.DeriveID(childPath), StreamBeginPosition: pos,
				Type: f.Type,
			})
		}
	}
	return nil
}

// parseTypeDecl reads h.FieldCount full value headers, restricted to
// value-kind types, and assembles the resulting layout.
func (d *Decoder) parseTypeDecl(h jaguar.Header) (*jaguar.StructuredTypeLayout, error) {
	layout := &jaguar.StructuredTypeLayout{TypeID: h.TypeID}

	for i := uint16(0); i < h.FieldCount; i++ {
		fh, err := d.r.ReadHeader()
		if err != nil {
			return nil, err
		}
		if !fh.Type.IsValueType() {
			return nil, jerr.Structural("jaguar: field %d in type %q has non-value type %s", i, h.TypeID, fh.Type)
		}

		f := jaguar.Field{
			Type:        fh.Type,
			Name:        fh.Name,
			ElementType: fh.ElementType,
			Width:       fh.Width,
			Height:      fh.Height,
		}
		switch fh.Type {
		case jaguar.StructuredObj:
			f.TypeID = fh.TypeID
		case jaguar.List:
			if fh.ElementType == jaguar.StructuredObj {
				f.ElementTypeID = fh.TypeID
			}
		}
		layout.Fields = append(layout.Fields, f)
	}

	if err := layout.Validate(); err != nil {
		return nil, err
	}
	return layout, nil
}

// recordSize computes the fixed byte size of one instance of layout,
// recursing into nested structured-object fields. seen guards against a
// self-referential type declaration looping forever; it holds only the
// types on the current nesting path.
func (d *Decoder) recordSize(layout *jaguar.StructuredTypeLayout, seen map[string]bool) (int64, error) {
	if seen[layout.TypeID] {
		return 0, jerr.Structural("jaguar: structured type %q is self-referential", layout.TypeID)
	}
	seen[layout.TypeID] = true
	defer delete(seen, layout.TypeID)

	var size int64
	for _, f := range layout.Fields {
		switch f.Type {
		case jaguar.Vector:
			size += int64(f.Width) * int64(f.ElementType.Width())
		case jaguar.Matrix:
			size += int64(f.Width) * int64(f.Height) * int64(f.ElementType.Width())
		case jaguar.StructuredObj:
			nested, ok := d.idx.Types[f.TypeID]
			if !ok {
				return 0, jerr.Structural("jaguar: structured type %q field %q has unknown typeID %q", layout.TypeID, f.Name, f.TypeID)
			}
			nestedSize, err := d.recordSize(nested, seen)
			if err != nil {
				return 0, err
			}
			size += nestedSize
		default:
			size += int64(f.Type.Width())
		}
	}
	return size, nil
}

// skipBytes advances the Reader by n bytes via a scoped view, chunked to
// fit ReadBuffer's 32-bit length.
func (d *Decoder) skipBytes(n int64) error {
	for n > 0 {
		chunk := n
		if chunk > math.MaxUint32 {
			chunk = math.MaxUint32
		}
		vh, err := d.r.ReadBuffer(uint32(chunk))
		if err != nil {
			return err
		}
		if err := vh.DiscardAll(); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}
