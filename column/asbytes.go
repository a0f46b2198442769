// Package column implements the typed column storage used across the
// engine. A column is a type-erased container with a runtime element type,
// an optional validity bitmap, and one of eight storage variants covering
// owned, borrowed, constant, and variable-length (binary) layouts.
package column

import "unsafe"

// AsBytes constrains the element types that binary storage can hold. A
// binary element is stored as a contiguous byte run inside a shared buffer.
type AsBytes interface {
	~string
}

// ByteView returns a read-only byte view of v without copying. The result
// aliases the string data and must not be written to.
func ByteView[T AsBytes](v T) []byte {
	s := string(v)
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

// FromBytes reconstructs an element from its byte image. The bytes are
// copied, so the result does not alias b.
func FromBytes[T AsBytes](b []byte) T {
	return T(b)
}

func itemBytes[T AsBytes](v T) []byte {
	return ByteView(v)
}
