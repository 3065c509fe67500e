package jreader

import (
	"io"
)

// viewReaderChunk is the adapter's internal refill size: a bounded
// internal buffer, refilled from the view in chunks rather than
// byte-at-a-time.
const viewReaderChunk = 64 * 1024

// ViewReader adapts a ViewHandle to io.Reader, for callers that want to
// hand a byte buffer or sub-stream payload to ordinary streaming code
// (e.g. compress/flate, or another Reader wrapping a Substream) without
// pulling the whole payload into memory first.
type ViewReader struct {
	h   *ViewHandle
	buf []byte
	off int
}

// NewViewReader wraps h. It does not take ownership beyond the lifetime
// rules ViewHandle already enforces: once h is invalidated, reads fail.
func NewViewReader(h *ViewHandle) *ViewReader {
	return &ViewReader{h: h}
}

// Read implements io.Reader, refilling from the view in viewReaderChunk
// chunks as needed.
func (vr *ViewReader) Read(p []byte) (int, error) {
	if vr.off >= len(vr.buf) {
		if err := vr.refill(); err != nil {
			return 0, err
		}
		if len(vr.buf) == 0 {
			return 0, io.EOF
		}
	}

	n := copy(p, vr.buf[vr.off:])
	vr.off += n
	return n, nil
}

func (vr *ViewReader) refill() error {
	remaining, err := vr.h.GetBytesRemaining()
	if err != nil {
		return err
	}
	if remaining == 0 {
		vr.buf = nil
		vr.off = 0
		return nil
	}

	n := int64(viewReaderChunk)
	if remaining < n {
		n = remaining
	}

	buf := make([]byte, n)
	if err := vr.h.Read(buf, int(n)); err != nil {
		return err
	}
	vr.buf = buf
	vr.off = 0
	return nil
}
