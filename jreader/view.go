package jreader

import (
	"io"

	"github.com/RobotLeopard86/Jaguar/jerr"
)

// validity is the shared flag a ViewHandle consults before every
// dereference: a heap-allocated view node with a stable address, plus a
// shared validity cell that every handle reads on each call. It is
// invalidated by the owning Reader the moment a new operation makes the
// view stale, independent of whatever the last-issued ViewHandle happens
// to still be holding.
type validity struct {
	ok bool
}

// view is the scoped-view node itself. It is never exported; callers only
// ever see it through a ViewHandle.
type view struct {
	owner     *Reader
	remaining int64
	flag      *validity
}

// ViewHandle is a caller-held reference to a scoped view over a Reader's
// byte buffer or sub-stream payload. Every method checks the shared
// validity flag before touching the underlying Reader, returning a
// ViewLifetime error if the view has already been invalidated: by
// DiscardAll, by a failed read or seek, by the owning Reader being closed
// or seeked, or by the next Reader operation after the view is exhausted.
// An exhausted view stays valid until that next Reader operation.
type ViewHandle struct {
	v *view
}

func (h *ViewHandle) checkValid() error {
	if h.v == nil || !h.v.flag.ok {
		return jerr.ErrViewInvalidated
	}
	return nil
}

// IsValid reports whether the view is still live, without raising an
// error.
func (h *ViewHandle) IsValid() bool {
	return h.v != nil && h.v.flag.ok
}

// GetBytesRemaining returns the number of unconsumed bytes in the view.
func (h *ViewHandle) GetBytesRemaining() (int64, error) {
	if err := h.checkValid(); err != nil {
		return 0, err
	}
	return h.v.remaining, nil
}

// Read fills out[:n] from the view, advancing it by n bytes. It fails if n
// exceeds either len(out) or the view's remaining byte count.
func (h *ViewHandle) Read(out []byte, n int) error {
	if err := h.checkValid(); err != nil {
		return err
	}
	if n < 0 || n > len(out) {
		return jerr.Codec("jaguar: view read of %d byte(s) does not fit destination of length %d", n, len(out))
	}
	if int64(n) > h.v.remaining {
		return jerr.Codec("jaguar: view read of %d byte(s) exceeds %d remaining", n, h.v.remaining)
	}

	read, err := io.ReadFull(h.v.owner.src, out[:n])
	h.v.owner.pos += int64(read)
	if err != nil {
		h.v.flag.ok = false
		return jerr.IO(err, "jaguar: unexpected end of stream reading view")
	}
	h.v.remaining -= int64(n)
	return nil
}

// Discard advances the view by n bytes without copying them out.
func (h *ViewHandle) Discard(n int64) error {
	if err := h.checkValid(); err != nil {
		return err
	}
	if n < 0 || n > h.v.remaining {
		return jerr.Codec("jaguar: view discard of %d byte(s) exceeds %d remaining", n, h.v.remaining)
	}

	pos, err := h.v.owner.src.Seek(n, io.SeekCurrent)
	if err != nil {
		h.v.flag.ok = false
		return jerr.IO(err, "jaguar: view discard seek failed")
	}
	h.v.owner.pos = pos
	h.v.remaining -= n
	return nil
}

// DiscardAll advances the view to its end and releases the owning Reader
// back to the Free state immediately, rather than waiting for the lazy
// check at the next Reader operation.
func (h *ViewHandle) DiscardAll() error {
	if err := h.checkValid(); err != nil {
		return err
	}
	if err := h.Discard(h.v.remaining); err != nil {
		return err
	}
	owner := h.v.owner
	h.v.flag.ok = false
	if owner.active == h.v {
		owner.active = nil
	}
	return nil
}
