// Package jreader implements the Reader half of the Jaguar codec layer:
// the byte-level reader that decodes typed primitives and headers from an
// owned seekable byte source, plus the scoped view used to consume byte
// buffers and sub-streams without copying.
//
// Derived from document/encoding/custom/format.go's Header.Decode /
// FieldHeader.Decode (read-a-length-then-read-the-bytes style,
// generalized here from base-128 varints to the fixed-width
// little-endian fields Jaguar's wire format pins) and
// document/encoding/custom/codec.go's EncodedDocument, a validity-gated
// lazy wrapper over a byte range that the scoped view's
// handle-checks-a-shared-flag protocol is built on.
package jreader

import (
	"io"
	"math"

	"github.com/RobotLeopard86/Jaguar"
	"github.com/RobotLeopard86/Jaguar/internal/leb"
	"github.com/RobotLeopard86/Jaguar/internal/utf8x"
	"github.com/RobotLeopard86/Jaguar/jerr"
)

// maxStringLen is the exclusive upper bound on a String payload's byte
// length.
const maxStringLen = 1 << 24

// Reader owns a seekable byte source and decodes Jaguar primitives and
// headers from it. A Reader is in one of two states, Free or ViewBound:
// ReadBuffer transitions Free to ViewBound; the transition back to Free
// is observed lazily, at the start of the next Reader operation, once the
// outstanding view is exhausted or has been DiscardAll-ed.
//
// A Reader is not safe for concurrent use; it is meant to be owned by one
// goroutine at a time.
type Reader struct {
	src      io.ReadSeeker
	pos      int64
	active   *view
	released bool
}

// New creates a Reader that takes exclusive ownership of src.
func New(src io.ReadSeeker) *Reader {
	return &Reader{src: src}
}

// Position returns the current byte offset into the underlying source.
// Decoders use this to capture a value's streamBeginPosition immediately
// after reading its header.
func (r *Reader) Position() int64 {
	return r.pos
}

// Seek repositions the underlying source, invalidating any active scoped
// view (a view never survives a seek that might move the source outside
// its declared range).
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	if r.released {
		return 0, jerr.ErrReleased
	}
	r.invalidateActive()

	n, err := r.src.Seek(offset, whence)
	if err != nil {
		return 0, jerr.IO(err, "jaguar: seek failed")
	}
	r.pos = n
	return n, nil
}

// Close marks the Reader Invalid, a move-only ownership model expressed
// in Go as an explicit monotonic state flag rather than a language-level
// move. Every subsequent operation fails with a Lifecycle error. It does
// not close the underlying source.
func (r *Reader) Close() error {
	if r.released {
		return jerr.ErrReleased
	}
	r.invalidateActive()
	r.released = true
	return nil
}

func (r *Reader) checkFree() error {
	if r.released {
		return jerr.ErrReleased
	}
	if r.active != nil {
		if r.active.remaining == 0 {
			r.invalidateActive()
		} else {
			return jerr.ErrViewActive
		}
	}
	return nil
}

func (r *Reader) invalidateActive() {
	if r.active != nil {
		r.active.flag.ok = false
		r.active = nil
	}
}

func (r *Reader) readN(n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := io.ReadFull(r.src, buf)
	r.pos += int64(read)
	if err != nil {
		return nil, jerr.IO(err, "jaguar: unexpected end of stream reading %d byte(s)", n)
	}
	return buf, nil
}

func (r *Reader) readByte() (byte, error) {
	b, err := r.readN(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) readUint16() (uint16, error) {
	b, err := r.readN(2)
	if err != nil {
		return 0, err
	}
	return leb.Uint[uint16](b), nil
}

func (r *Reader) readUint32() (uint32, error) {
	b, err := r.readN(4)
	if err != nil {
		return 0, err
	}
	return leb.Uint[uint32](b), nil
}

// readLengthPrefixedName reads a 1-byte length (rejecting zero) followed
// by that many UTF-8 bytes. It implements the shared shape of a Header's
// name and typeID fields.
func (r *Reader) readLengthPrefixedName(what string) (string, error) {
	n, err := r.readByte()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", jerr.Codec("jaguar: %s has zero length", what)
	}
	b, err := r.readN(int(n))
	if err != nil {
		return "", err
	}
	if !utf8x.Valid(b) {
		return "", jerr.Codec("jaguar: %s is not valid UTF-8", what)
	}
	return string(b), nil
}

func (r *Reader) readTypeTagByte() (jaguar.TypeTag, error) {
	b, err := r.readByte()
	if err != nil {
		return 0, err
	}
	if !jaguar.ValidTag(b) {
		return 0, jerr.Codec("jaguar: invalid type tag 0x%02X", b)
	}
	return jaguar.TypeTag(b), nil
}

// ReadHeader decodes the next value header from the stream. If the tag is
// ScopeBoundary, the returned header has only Type set. A codec error
// leaves the source positioned mid-header; callers must treat the source
// as untrusted afterwards.
func (r *Reader) ReadHeader() (jaguar.Header, error) {
	if err := r.checkFree(); err != nil {
		return jaguar.Header{}, err
	}

	tag, err := r.readTypeTagByte()
	if err != nil {
		return jaguar.Header{}, err
	}
	if tag == jaguar.ScopeBoundary {
		return jaguar.Header{Type: tag}, nil
	}

	name, err := r.readLengthPrefixedName("header name")
	if err != nil {
		return jaguar.Header{}, err
	}

	h := jaguar.Header{Type: tag, Name: name}

	switch {
	case tag.IsSignedInt(), tag.IsUnsignedInt(), tag == jaguar.Float32, tag == jaguar.Float64, tag == jaguar.Boolean:
		return h, nil

	case tag == jaguar.List:
		et, err := r.readTypeTagByte()
		if err != nil {
			return jaguar.Header{}, err
		}
		h.ElementType = et

		size, err := r.readUint32()
		if err != nil {
			return jaguar.Header{}, err
		}
		h.Size = size

		if et == jaguar.StructuredObj {
			typeID, err := r.readLengthPrefixedName("list element typeID")
			if err != nil {
				return jaguar.Header{}, err
			}
			h.TypeID = typeID
		}
		return h, nil

	case tag == jaguar.Vector:
		et, err := r.readTypeTagByte()
		if err != nil {
			return jaguar.Header{}, err
		}
		h.ElementType = et

		w, err := r.readByte()
		if err != nil {
			return jaguar.Header{}, err
		}
		h.Width = w
		return h, nil

	case tag == jaguar.Matrix:
		et, err := r.readTypeTagByte()
		if err != nil {
			return jaguar.Header{}, err
		}
		h.ElementType = et

		w, err := r.readByte()
		if err != nil {
			return jaguar.Header{}, err
		}
		h.Width = w

		ht, err := r.readByte()
		if err != nil {
			return jaguar.Header{}, err
		}
		h.Height = ht
		return h, nil

	case tag == jaguar.StructuredObj:
		typeID, err := r.readLengthPrefixedName("typeID")
		if err != nil {
			return jaguar.Header{}, err
		}
		h.TypeID = typeID
		return h, nil

	case tag == jaguar.StructuredObjTypeDecl:
		typeID, err := r.readLengthPrefixedName("typeID")
		if err != nil {
			return jaguar.Header{}, err
		}
		h.TypeID = typeID

		fc, err := r.readUint16()
		if err != nil {
			return jaguar.Header{}, err
		}
		h.FieldCount = fc
		return h, nil

	case tag == jaguar.UnstructuredObj:
		fc, err := r.readUint16()
		if err != nil {
			return jaguar.Header{}, err
		}
		h.FieldCount = fc
		return h, nil

	case tag == jaguar.String, tag == jaguar.ByteBuffer, tag == jaguar.Substream:
		size, err := r.readUint32()
		if err != nil {
			return jaguar.Header{}, err
		}
		h.Size = size
		return h, nil

	default:
		return jaguar.Header{}, jerr.Codec("jaguar: unreachable: valid tag %s has no header dispatch", tag)
	}
}

// ReadBool decodes a single boolean byte; only 0 and 1 are legal.
func (r *Reader) ReadBool() (bool, error) {
	if err := r.checkFree(); err != nil {
		return false, err
	}
	b, err := r.readByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, jerr.Codec("jaguar: invalid boolean byte 0x%02X", b)
	}
}

// ReadSInt8 decodes a signed 8-bit integer.
func (r *Reader) ReadSInt8() (int8, error) {
	if err := r.checkFree(); err != nil {
		return 0, err
	}
	b, err := r.readByte()
	if err != nil {
		return 0, err
	}
	return int8(b), nil
}

// ReadSInt16 decodes a little-endian signed 16-bit integer.
func (r *Reader) ReadSInt16() (int16, error) {
	if err := r.checkFree(); err != nil {
		return 0, err
	}
	b, err := r.readN(2)
	if err != nil {
		return 0, err
	}
	return int16(leb.Uint[uint16](b)), nil
}

// ReadSInt32 decodes a little-endian signed 32-bit integer.
func (r *Reader) ReadSInt32() (int32, error) {
	if err := r.checkFree(); err != nil {
		return 0, err
	}
	b, err := r.readN(4)
	if err != nil {
		return 0, err
	}
	return int32(leb.Uint[uint32](b)), nil
}

// ReadSInt64 decodes a little-endian signed 64-bit integer.
func (r *Reader) ReadSInt64() (int64, error) {
	if err := r.checkFree(); err != nil {
		return 0, err
	}
	b, err := r.readN(8)
	if err != nil {
		return 0, err
	}
	return int64(leb.Uint[uint64](b)), nil
}

// ReadUInt8 decodes an unsigned 8-bit integer.
func (r *Reader) ReadUInt8() (uint8, error) {
	if err := r.checkFree(); err != nil {
		return 0, err
	}
	return r.readByte()
}

// ReadUInt16 decodes a little-endian unsigned 16-bit integer.
func (r *Reader) ReadUInt16() (uint16, error) {
	if err := r.checkFree(); err != nil {
		return 0, err
	}
	return r.readUint16()
}

// ReadUInt32 decodes a little-endian unsigned 32-bit integer.
func (r *Reader) ReadUInt32() (uint32, error) {
	if err := r.checkFree(); err != nil {
		return 0, err
	}
	return r.readUint32()
}

// ReadUInt64 decodes a little-endian unsigned 64-bit integer.
func (r *Reader) ReadUInt64() (uint64, error) {
	if err := r.checkFree(); err != nil {
		return 0, err
	}
	b, err := r.readN(8)
	if err != nil {
		return 0, err
	}
	return leb.Uint[uint64](b), nil
}

// ReadFloat32 decodes a little-endian IEEE-754 single.
func (r *Reader) ReadFloat32() (float32, error) {
	if err := r.checkFree(); err != nil {
		return 0, err
	}
	b, err := r.readN(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(leb.Uint[uint32](b)), nil
}

// ReadFloat64 decodes a little-endian IEEE-754 double.
func (r *Reader) ReadFloat64() (float64, error) {
	if err := r.checkFree(); err != nil {
		return 0, err
	}
	b, err := r.readN(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(leb.Uint[uint64](b)), nil
}

// ReadString decodes a UTF-8 string of exactly size bytes, as named by a
// preceding header's Size field.
func (r *Reader) ReadString(size uint32) (string, error) {
	if err := r.checkFree(); err != nil {
		return "", err
	}
	if size >= maxStringLen {
		return "", jerr.Codec("jaguar: string length %d exceeds %d-1", size, maxStringLen)
	}
	b, err := r.readN(int(size))
	if err != nil {
		return "", err
	}
	if !utf8x.Valid(b) {
		return "", jerr.Codec("jaguar: invalid utf-8 string payload")
	}
	return string(b), nil
}

// ReadBuffer creates a scoped view of exactly length bytes starting at the
// current source position and transitions the Reader to ViewBound. Every
// other Reader operation fails with ErrViewActive until the view is
// exhausted or DiscardAll-ed.
func (r *Reader) ReadBuffer(length uint32) (*ViewHandle, error) {
	if err := r.checkFree(); err != nil {
		return nil, err
	}

	v := &view{
		owner:     r,
		remaining: int64(length),
		flag:      &validity{ok: true},
	}
	r.active = v
	return &ViewHandle{v: v}, nil
}
