package column

import "reflect"

// HashMapBuffer reuses grouping maps across operations, keyed by element
// type. Parallel paths must allocate one buffer per worker; the buffer
// itself is not safe for concurrent use.
type HashMapBuffer struct {
	stored []pooledMap
}

type pooledMap struct {
	typ reflect.Type
	m   any
}

// NewHashMapBuffer creates an empty buffer.
func NewHashMapBuffer() *HashMapBuffer {
	return &HashMapBuffer{}
}

// PopGroupMap takes a grouping map for T out of the buffer, allocating a
// fresh one when none is pooled. Popped maps are always empty.
func PopGroupMap[T comparable](b *HashMapBuffer) map[GroupKey[T]]int {
	want := typeOf[T]()
	for i, p := range b.stored {
		if p.typ == want {
			b.stored[i] = b.stored[len(b.stored)-1]
			b.stored = b.stored[:len(b.stored)-1]
			return p.m.(map[GroupKey[T]]int)
		}
	}
	return make(map[GroupKey[T]]int, 128)
}

// PushGroupMap clears m and returns it to the buffer for reuse.
func PushGroupMap[T comparable](b *HashMapBuffer, m map[GroupKey[T]]int) {
	clear(m)
	b.stored = append(b.stored, pooledMap{typ: typeOf[T](), m: m})
}
