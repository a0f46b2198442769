package column

// NullableValue is a value with a validity flag. Two invalid values
// compare equal regardless of their payload; MakeNullable enforces that by
// zeroing the payload of invalid values, so plain Go equality on the
// struct implements the null-equality rule grouping relies on.
type NullableValue[T comparable] struct {
	Value T
	Valid bool
}

// MakeNullable builds a NullableValue, collapsing invalid payloads to the
// zero value.
func MakeNullable[T comparable](v T, valid bool) NullableValue[T] {
	if !valid {
		var zero T
		return NullableValue[T]{Value: zero}
	}
	return NullableValue[T]{Value: v, Valid: true}
}

// GroupKey is the map key used by dense grouping: the row's current group
// id prefixed to its nullable value.
type GroupKey[T comparable] struct {
	Group int
	Value NullableValue[T]
}

// BinaryGroupKey is the grouping key for variable-length elements. The
// byte run is copied into a string, so pooled maps never alias column
// storage.
type BinaryGroupKey struct {
	Group int
	Value string
	Valid bool
}

// MakeBinaryGroupKey builds a BinaryGroupKey from a byte run, collapsing
// invalid payloads to the empty string.
func MakeBinaryGroupKey(group int, b []byte, valid bool) BinaryGroupKey {
	if !valid {
		return BinaryGroupKey{Group: group}
	}
	return BinaryGroupKey{Group: group, Value: string(b), Valid: true}
}

// BinaryGroupMap is the grouping scratch map for binary columns. It must
// be cleared before and after every grouping run so a pooled map never
// retains copied keys between uses.
type BinaryGroupMap map[BinaryGroupKey]int

// NewBinaryGroupMap allocates a grouping map with a small starting
// capacity.
func NewBinaryGroupMap() BinaryGroupMap {
	return make(BinaryGroupMap, 128)
}

// Clear drops all entries.
func (m BinaryGroupMap) Clear() {
	clear(m)
}
