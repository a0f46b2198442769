package ops

import (
	"fmt"

	"radix/column"
)

type updateShape uint8

const (
	upDense updateShape = iota
	upBitmap
	upIndex
	upBitmapIndex
)

// UpdateColumn is the writable view over a sized destination of fixed
// length. It has four shapes, bitmap presence crossed with index
// presence. Kernels write through it either one-to-one with a source view
// (assign) or by mutating cells in place (update).
type UpdateColumn[T any] struct {
	shape  updateShape
	data   []T
	bitmap []bool
	index  []int
}

// NewUpdateColumn lowers a destination column and its optional index into
// an update view. Option-valued indexes are not writable destinations.
func NewUpdateColumn[T any](c *column.Wrapper, index *column.Index) (UpdateColumn[T], error) {
	var u UpdateColumn[T]
	data, err := column.SizedMut[T](c.Data())
	if err != nil {
		return u, err
	}
	u.data = data
	if index.IsSome() {
		if index.IsOption() {
			return u, fmt.Errorf("an Option-valued index cannot address an update destination")
		}
		if u.index, err = index.Ref(); err != nil {
			return u, err
		}
	}
	if c.Bitmap().IsSome() {
		if u.bitmap, err = c.Bitmap().Mut(); err != nil {
			return u, err
		}
	}
	switch {
	case u.bitmap != nil && u.index != nil:
		u.shape = upBitmapIndex
	case u.bitmap != nil:
		u.shape = upBitmap
	case u.index != nil:
		u.shape = upIndex
	default:
		u.shape = upDense
	}
	return u, nil
}

// Len returns the number of destination cells the view addresses.
func (u *UpdateColumn[T]) Len() int {
	if u.index != nil {
		return len(u.index)
	}
	return len(u.data)
}

// set writes value and validity at logical position i.
func (u *UpdateColumn[T]) set(i int, v T, valid bool) {
	switch u.shape {
	case upDense:
		u.data[i] = v
	case upBitmap:
		u.data[i] = v
		u.bitmap[i] = valid
	case upIndex:
		u.data[u.index[i]] = v
	case upBitmapIndex:
		j := u.index[i]
		u.data[j] = v
		u.bitmap[j] = valid
	}
}

// mutate calls f with pointers to the cell and its validity at logical
// position i. Destinations without a bitmap expose a scratch flag whose
// final value is discarded.
func (u *UpdateColumn[T]) mutate(i int, f func(v *T, valid *bool)) {
	scratch := true
	switch u.shape {
	case upDense:
		f(&u.data[i], &scratch)
	case upBitmap:
		f(&u.data[i], &u.bitmap[i])
	case upIndex:
		f(&u.data[u.index[i]], &scratch)
	case upBitmapIndex:
		j := u.index[i]
		f(&u.data[j], &u.bitmap[j])
	}
}
