package column

import "errors"

// optState is the storage state of an Optional.
type optState uint8

const (
	optNone optState = iota
	optOwned
	optSlice
	optSliceMut
)

// Optional is a four-state auxiliary array: absent, owned, borrowed
// read-only, or borrowed writable. It backs validity bitmaps and other
// per-row side vectors that a column may or may not carry.
type Optional[T any] struct {
	state optState
	data  []T
}

// NewOptional creates an owned Optional from data.
func NewOptional[T any](data []T) Optional[T] {
	return Optional[T]{state: optOwned, data: data}
}

// OptionalFromSlice creates a borrowed read-only Optional.
func OptionalFromSlice[T any](data []T) Optional[T] {
	return Optional[T]{state: optSlice, data: data}
}

// OptionalFromSliceMut creates a borrowed writable Optional.
func OptionalFromSliceMut[T any](data []T) Optional[T] {
	return Optional[T]{state: optSliceMut, data: data}
}

// None returns the absent Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// IsSome reports whether a value is present.
func (o *Optional[T]) IsSome() bool {
	return o.state != optNone
}

// IsOwned reports whether the Optional owns its storage.
func (o *Optional[T]) IsOwned() bool {
	return o.state == optOwned
}

// Len returns the length and whether a value is present at all.
func (o *Optional[T]) Len() (int, bool) {
	if o.state == optNone {
		return 0, false
	}
	return len(o.data), true
}

// Ref returns a read-only view of the contents.
func (o *Optional[T]) Ref() ([]T, error) {
	if o.state == optNone {
		return nil, errors.New("optional array is absent and cannot be read")
	}
	return o.data, nil
}

// Mut returns a writable view of the contents. Borrowed read-only storage
// is rejected.
func (o *Optional[T]) Mut() ([]T, error) {
	switch o.state {
	case optOwned, optSliceMut:
		return o.data, nil
	case optSlice:
		return nil, errors.New("optional array is a read-only borrow and cannot be written")
	default:
		return nil, errors.New("optional array is absent and cannot be written")
	}
}

// Vec returns the growable backing slice of an owned Optional.
func (o *Optional[T]) Vec() (*[]T, error) {
	if o.state != optOwned {
		return nil, errors.New("optional array is not owned and cannot grow")
	}
	return &o.data, nil
}

// Truncate empties an owned Optional, retaining capacity. Absent values
// are left untouched.
func (o *Optional[T]) Truncate() error {
	switch o.state {
	case optNone:
		return nil
	case optOwned:
		o.data = o.data[:0]
		return nil
	default:
		return errors.New("only owned optional arrays can be truncated")
	}
}
