// Package jerr defines the error taxonomy shared by the Jaguar codec
// packages: jreader, jwriter and jdecode.
package jerr

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Kind classifies a Jaguar error.
type Kind uint8

const (
	// KindCodec covers invalid type tags, invalid UTF-8, empty names,
	// out-of-range lengths, and malformed scalar payloads.
	KindCodec Kind = iota
	// KindIO covers failures reported by the underlying byte source or sink,
	// including unexpected end-of-stream.
	KindIO
	// KindViewLifetime covers attempts to use a Reader while a scoped view
	// is active, or to use a view after it has been invalidated.
	KindViewLifetime
	// KindStructural covers decoder-only structural errors: scope-balance
	// violations, unknown or duplicate type declarations, layout mismatches.
	KindStructural
	// KindLifecycle covers operations on a released Reader/Writer/Decoder,
	// a second call to Parse, or GetIndex before a successful parse.
	KindLifecycle
)

func (k Kind) String() string {
	switch k {
	case KindCodec:
		return "codec"
	case KindIO:
		return "io"
	case KindViewLifetime:
		return "view-lifetime"
	case KindStructural:
		return "structural"
	case KindLifecycle:
		return "lifecycle"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Error is the concrete error type returned by every Jaguar package.
// It carries a Kind so callers can distinguish classes of failure with
// errors.Is against the sentinels below, and wraps a cockroachdb/errors
// value so a stack trace is captured at the point of construction.
type Error struct {
	Kind Kind
	err  error
}

func (e *Error) Error() string {
	return e.err.Error()
}

func (e *Error) Unwrap() error {
	return e.err
}

// Is reports whether target is an *Error with the same Kind, or matches the
// wrapped error via the standard errors.Is chain.
func (e *Error) Is(target error) bool {
	if o, ok := target.(*Error); ok {
		return e.Kind == o.Kind && errors.Is(e.err, o.err)
	}
	return errors.Is(e.err, target)
}

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, err: errors.WithStack(errors.Newf(format, args...))}
}

func wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, err: errors.Wrapf(err, format, args...)}
}

// Codec reports a codec-level error: invalid type tag, invalid UTF-8, empty
// name/typeID, an out-of-range length, or a malformed boolean byte.
func Codec(format string, args ...interface{}) *Error {
	return newf(KindCodec, format, args...)
}

// IO reports a failure propagated from the underlying byte source or sink.
func IO(err error, format string, args ...interface{}) *Error {
	return wrap(KindIO, err, format, args...)
}

// ViewLifetime reports an attempt to use a Reader while a scoped view is
// active, or to use an invalidated scoped view.
func ViewLifetime(format string, args ...interface{}) *Error {
	return newf(KindViewLifetime, format, args...)
}

// Structural reports a decoder-only structural error.
func Structural(format string, args ...interface{}) *Error {
	return newf(KindStructural, format, args...)
}

// Lifecycle reports use of a released handle, a repeated Parse, or
// GetIndex before a successful parse.
func Lifecycle(format string, args ...interface{}) *Error {
	return newf(KindLifecycle, format, args...)
}

// Is reports whether err is a Jaguar *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// Sentinel errors usable with errors.Is for exact-condition checks that
// callers may want to branch on directly, independent of message text.
var (
	// ErrViewActive is returned by any Reader operation attempted while a
	// scoped view is active.
	ErrViewActive = ViewLifetime("jaguar: view active, reader is bound")
	// ErrViewInvalidated is returned by a scoped view operation after its
	// owning Reader has invalidated it.
	ErrViewInvalidated = ViewLifetime("jaguar: view invalidated")
	// ErrReleased is returned by any operation on a Reader, Writer or
	// Decoder after it has been released (moved-from).
	ErrReleased = Lifecycle("jaguar: handle released")
	// ErrAlreadyParsed is returned by a second call to Decoder.Parse.
	ErrAlreadyParsed = Lifecycle("jaguar: already parsed")
	// ErrParseFailed is returned by Decoder.GetIndex after a failed parse.
	ErrParseFailed = Lifecycle("jaguar: parse failed")
	// ErrSourceExhausted is returned by a chunked stream-to-stream copy
	// when a read returns zero bytes before the requested length is
	// reached.
	ErrSourceExhausted = IO(errors.New("source exhausted"), "jaguar: source exhausted before length reached")
	// ErrUnexpectedScopeBoundary is returned when a ScopeBoundary tag is
	// seen at the root scope, which terminates only at end-of-stream.
	ErrUnexpectedScopeBoundary = Structural("jaguar: unexpected scope boundary at root scope")
)
