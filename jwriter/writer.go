// Package jwriter implements the write side of the Jaguar codec layer:
// encoding type-tagged headers and scalar payloads to an owned byte sink.
//
// Derived from document/encoding/custom/format.go's Header.WriteTo /
// FieldHeader.WriteTo pair (length-then-bytes, field-by-field),
// generalized here from base-128 varints to Jaguar's fixed-width
// little-endian fields via internal/leb.
package jwriter

import (
	"io"
	"math"

	"github.com/RobotLeopard86/Jaguar"
	"github.com/RobotLeopard86/Jaguar/internal/leb"
	"github.com/RobotLeopard86/Jaguar/internal/utf8x"
	"github.com/RobotLeopard86/Jaguar/jerr"
)

// Writer owns a byte sink and encodes Jaguar primitives and headers to
// it. A Writer has no Free/ViewBound distinction; it is simply Alive or
// released.
type Writer struct {
	dst      io.Writer
	released bool
}

// New creates a Writer that takes exclusive ownership of dst.
func New(dst io.Writer) *Writer {
	return &Writer{dst: dst}
}

// Close marks the Writer Invalid; every subsequent operation fails with a
// Lifecycle error. It does not close the underlying sink.
func (w *Writer) Close() error {
	if w.released {
		return jerr.ErrReleased
	}
	w.released = true
	return nil
}

func (w *Writer) checkReady() error {
	if w.released {
		return jerr.ErrReleased
	}
	return nil
}

func (w *Writer) writeBytes(b []byte) error {
	if _, err := w.dst.Write(b); err != nil {
		return jerr.IO(err, "jaguar: write failed")
	}
	return nil
}

func (w *Writer) writeByte(b byte) error {
	return w.writeBytes([]byte{b})
}

func (w *Writer) writeUint16(v uint16) error {
	b := make([]byte, 2)
	leb.PutUint(b, v)
	return w.writeBytes(b)
}

func (w *Writer) writeUint32(v uint32) error {
	b := make([]byte, 4)
	leb.PutUint(b, v)
	return w.writeBytes(b)
}

func (w *Writer) writeUint64(v uint64) error {
	b := make([]byte, 8)
	leb.PutUint(b, v)
	return w.writeBytes(b)
}

// writeLengthPrefixed writes a 1-byte length followed by s's bytes. It is
// the caller's responsibility to ensure 1 <= len(s) <= 255 and that s is
// valid UTF-8; WriteHeader validates both before calling this.
func (w *Writer) writeLengthPrefixed(s string) error {
	if err := w.writeByte(byte(len(s))); err != nil {
		return err
	}
	return w.writeBytes([]byte(s))
}

// WriteHeader encodes h. It validates the fields that the wire format
// requires to be non-empty, valid UTF-8 or in-range for h.Type, and
// returns a Codec error if they are not. Fields are validated as they are
// written, so a header rejected after its type tag byte has gone out
// leaves the bytes written so far in the sink.
func (w *Writer) WriteHeader(h jaguar.Header) error {
	if err := w.checkReady(); err != nil {
		return err
	}
	if !h.Type.IsValid() {
		return jerr.Codec("jaguar: cannot write header with invalid type tag 0x%02X", byte(h.Type))
	}

	if err := w.writeByte(byte(h.Type)); err != nil {
		return err
	}
	if h.Type == jaguar.ScopeBoundary {
		return nil
	}

	if err := w.writeName(h.Name, "header name"); err != nil {
		return err
	}

	switch {
	case h.Type.IsSignedInt(), h.Type.IsUnsignedInt(), h.Type == jaguar.Float32, h.Type == jaguar.Float64, h.Type == jaguar.Boolean:
		return nil

	case h.Type == jaguar.List:
		if !h.ElementType.IsValid() {
			return jerr.Codec("jaguar: list header has invalid element type 0x%02X", byte(h.ElementType))
		}
		if err := w.writeByte(byte(h.ElementType)); err != nil {
			return err
		}
		if err := w.writeUint32(h.Size); err != nil {
			return err
		}
		if h.ElementType == jaguar.StructuredObj {
			return w.writeName(h.TypeID, "list element typeID")
		}
		return nil

	case h.Type == jaguar.Vector:
		if !h.ElementType.IsValid() {
			return jerr.Codec("jaguar: vector header has invalid element type 0x%02X", byte(h.ElementType))
		}
		if h.Width < 2 || h.Width > 4 {
			return jerr.Codec("jaguar: vector width %d out of range [2,4]", h.Width)
		}
		if err := w.writeByte(byte(h.ElementType)); err != nil {
			return err
		}
		return w.writeByte(h.Width)

	case h.Type == jaguar.Matrix:
		if !h.ElementType.IsValid() {
			return jerr.Codec("jaguar: matrix header has invalid element type 0x%02X", byte(h.ElementType))
		}
		if h.Width < 2 || h.Width > 4 || h.Height < 2 || h.Height > 4 {
			return jerr.Codec("jaguar: matrix dimensions %dx%d out of range [2,4]", h.Width, h.Height)
		}
		if err := w.writeByte(byte(h.ElementType)); err != nil {
			return err
		}
		if err := w.writeByte(h.Width); err != nil {
			return err
		}
		return w.writeByte(h.Height)

	case h.Type == jaguar.StructuredObj:
		return w.writeName(h.TypeID, "typeID")

	case h.Type == jaguar.StructuredObjTypeDecl:
		if err := w.writeName(h.TypeID, "typeID"); err != nil {
			return err
		}
		return w.writeUint16(h.FieldCount)

	case h.Type == jaguar.UnstructuredObj:
		return w.writeUint16(h.FieldCount)

	case h.Type == jaguar.String, h.Type == jaguar.ByteBuffer, h.Type == jaguar.Substream:
		return w.writeUint32(h.Size)

	default:
		return jerr.Codec("jaguar: unreachable: valid tag %s has no header encoding", h.Type)
	}
}

func (w *Writer) writeName(s, what string) error {
	if len(s) == 0 {
		return jerr.Codec("jaguar: %s has zero length", what)
	}
	if len(s) > 255 {
		return jerr.Codec("jaguar: %s exceeds 255 bytes", what)
	}
	if !utf8x.Valid([]byte(s)) {
		return jerr.Codec("jaguar: %s is not valid UTF-8", what)
	}
	return w.writeLengthPrefixed(s)
}

// WriteBool encodes a single boolean byte.
func (w *Writer) WriteBool(v bool) error {
	if err := w.checkReady(); err != nil {
		return err
	}
	if v {
		return w.writeByte(1)
	}
	return w.writeByte(0)
}

// WriteSInt8 encodes a signed 8-bit integer by bit-casting it to its
// unsigned byte pattern.
func (w *Writer) WriteSInt8(v int8) error {
	if err := w.checkReady(); err != nil {
		return err
	}
	return w.writeByte(byte(v))
}

// WriteSInt16 encodes a little-endian signed 16-bit integer.
func (w *Writer) WriteSInt16(v int16) error {
	if err := w.checkReady(); err != nil {
		return err
	}
	return w.writeUint16(uint16(v))
}

// WriteSInt32 encodes a little-endian signed 32-bit integer.
func (w *Writer) WriteSInt32(v int32) error {
	if err := w.checkReady(); err != nil {
		return err
	}
	return w.writeUint32(uint32(v))
}

// WriteSInt64 encodes a little-endian signed 64-bit integer.
func (w *Writer) WriteSInt64(v int64) error {
	if err := w.checkReady(); err != nil {
		return err
	}
	return w.writeUint64(uint64(v))
}

// WriteUInt8 encodes an unsigned 8-bit integer.
func (w *Writer) WriteUInt8(v uint8) error {
	if err := w.checkReady(); err != nil {
		return err
	}
	return w.writeByte(v)
}

// WriteUInt16 encodes a little-endian unsigned 16-bit integer.
func (w *Writer) WriteUInt16(v uint16) error {
	if err := w.checkReady(); err != nil {
		return err
	}
	return w.writeUint16(v)
}

// WriteUInt32 encodes a little-endian unsigned 32-bit integer.
func (w *Writer) WriteUInt32(v uint32) error {
	if err := w.checkReady(); err != nil {
		return err
	}
	return w.writeUint32(v)
}

// WriteUInt64 encodes a little-endian unsigned 64-bit integer.
func (w *Writer) WriteUInt64(v uint64) error {
	if err := w.checkReady(); err != nil {
		return err
	}
	return w.writeUint64(v)
}

// WriteFloat32 encodes a little-endian IEEE-754 single.
func (w *Writer) WriteFloat32(v float32) error {
	if err := w.checkReady(); err != nil {
		return err
	}
	return w.writeUint32(math.Float32bits(v))
}

// WriteFloat64 encodes a little-endian IEEE-754 double.
func (w *Writer) WriteFloat64(v float64) error {
	if err := w.checkReady(); err != nil {
		return err
	}
	return w.writeUint64(math.Float64bits(v))
}

// WriteString encodes the raw bytes of s. Callers are expected to have
// already written a header whose Size equals len(s); WriteString itself
// enforces the same 2^24-1 upper bound and UTF-8 check ReadString enforces.
func (w *Writer) WriteString(s string) error {
	if err := w.checkReady(); err != nil {
		return err
	}
	if len(s) >= 1<<24 {
		return jerr.Codec("jaguar: string length %d exceeds %d-1", len(s), 1<<24)
	}
	if !utf8x.Valid([]byte(s)) {
		return jerr.Codec("jaguar: invalid utf-8 string payload")
	}
	return w.writeBytes([]byte(s))
}

// copyChunkSize is the fixed intermediate buffer size for WriteBuffer's
// stream-to-stream copy, bounding its memory use independent of length.
const copyChunkSize = 64 * 1024

// WriteBuffer copies exactly length bytes from src to the sink, for
// encoding a ByteBuffer or Substream payload whose header already
// declared that length. The copy proceeds through a fixed 64 KiB
// intermediate buffer rather than delegating to io.Copy, so that a
// source exhausted before length bytes are produced is reported as
// ErrSourceExhausted rather than a generic IO error.
func (w *Writer) WriteBuffer(src io.Reader, length int64) error {
	if err := w.checkReady(); err != nil {
		return err
	}

	var buf [copyChunkSize]byte
	var copied int64
	for copied < length {
		want := int64(len(buf))
		if remaining := length - copied; remaining < want {
			want = remaining
		}
		n, err := src.Read(buf[:want])
		if n == 0 {
			if err == nil || err == io.EOF {
				return jerr.ErrSourceExhausted
			}
			return jerr.IO(err, "jaguar: buffer copy stopped after %d of %d byte(s)", copied, length)
		}
		if _, err := w.dst.Write(buf[:n]); err != nil {
			return jerr.IO(err, "jaguar: buffer copy stopped after %d of %d byte(s)", copied+int64(n), length)
		}
		copied += int64(n)
		if err != nil && err != io.EOF {
			return jerr.IO(err, "jaguar: buffer copy stopped after %d of %d byte(s)", copied, length)
		}
	}
	return nil
}
