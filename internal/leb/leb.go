// Package leb implements the little-endian, unaligned primitive encoding
// the Jaguar wire format uses for every multibyte integer, width-tagged
// by the caller rather than self-describing. It is shared by jreader and
// jwriter so the bit-twiddling for each width lives in exactly one place,
// generalizing internal/encoding/numbers.go's per-width Encode/Decode
// family with golang.org/x/exp/constraints instead of repeating the
// pattern once per width and signedness.
package leb

import "golang.org/x/exp/constraints"

// PutUint writes the low len(dst) bytes of x into dst, little-endian. dst
// should be exactly as long as T; bytes beyond T's width are written as 0.
func PutUint[T constraints.Unsigned](dst []byte, x T) {
	for i := range dst {
		dst[i] = byte(x)
		x >>= 8
	}
}

// Uint reads a little-endian unsigned integer of width len(b) from b.
func Uint[T constraints.Unsigned](b []byte) T {
	var x T
	for i := len(b) - 1; i >= 0; i-- {
		x = x<<8 | T(b[i])
	}
	return x
}

// Width returns the number of bytes a type of the given bit width occupies.
func Width(bits int) int {
	return bits / 8
}
