package ops

import (
	"fmt"

	"radix/column"
)

type readShape uint8

const (
	readDense readShape = iota
	readBitmap
	readIndex
	readBitmapIndex
	readIndexOption
	readBitmapIndexOption
	readConst
)

// ReadColumn is the read view over a sized column. Construction resolves
// the (storage, bitmap, index, constancy) tuple into one of seven shapes;
// every iteration method matches the shape once and then runs a
// monomorphic loop, so the hot path is branch-free per element.
//
// For the Option-indexed shapes an absent reference yields the element at
// position zero with a false validity flag; the value is arbitrary and
// must not be consumed.
type ReadColumn[T any] struct {
	shape     readShape
	data      []T
	bitmap    []bool
	index     []int
	optIndex  []column.OptionIndex
	constVal  T
	constOK   bool
	targetLen int
}

// NewReadColumn lowers a column, its bitmap, and an optional index into a
// read view. Constant columns are given targetLen, which the caller may
// stretch later with UpdateLenIfConst.
func NewReadColumn[T any](c *column.Wrapper, index *column.Index, targetLen int) (ReadColumn[T], error) {
	var r ReadColumn[T]
	data, err := column.SizedRef[T](c.Data())
	if err != nil {
		return r, err
	}
	if c.Data().IsConst() {
		r.shape = readConst
		r.constVal = data[0]
		r.constOK = true
		r.targetLen = targetLen
		if c.Bitmap().IsSome() {
			bm, err := c.Bitmap().Ref()
			if err != nil {
				return r, err
			}
			r.constOK = bm[0]
		}
		return r, nil
	}

	r.data = data
	hasBitmap := c.Bitmap().IsSome()
	if hasBitmap {
		if r.bitmap, err = c.Bitmap().Ref(); err != nil {
			return r, err
		}
	}
	switch {
	case index.IsSome() && index.IsOption():
		if r.optIndex, err = index.OptionRef(); err != nil {
			return r, err
		}
		if hasBitmap {
			r.shape = readBitmapIndexOption
		} else {
			r.shape = readIndexOption
		}
	case index.IsSome():
		if r.index, err = index.Ref(); err != nil {
			return r, err
		}
		if hasBitmap {
			r.shape = readBitmapIndex
		} else {
			r.shape = readIndex
		}
	default:
		if hasBitmap {
			r.shape = readBitmap
		} else {
			r.shape = readDense
		}
	}
	return r, nil
}

// ReadFromInput builds a read view over an operand, with a constant target
// length of one.
func ReadFromInput[T any](in *InputColumn) (ReadColumn[T], error) {
	return NewReadColumn[T](in.Col, in.Index, 1)
}

// Len returns the logical length of the view.
func (r *ReadColumn[T]) Len() int {
	switch r.shape {
	case readIndex, readBitmapIndex:
		return len(r.index)
	case readIndexOption, readBitmapIndexOption:
		return len(r.optIndex)
	case readConst:
		return r.targetLen
	default:
		return len(r.data)
	}
}

// IsConst reports whether the view broadcasts a single value.
func (r *ReadColumn[T]) IsConst() bool {
	return r.shape == readConst
}

// UpdateLenIfConst stretches a constant view to n elements. Non-constant
// views are left untouched.
func (r *ReadColumn[T]) UpdateLenIfConst(n int) {
	if r.shape == readConst {
		r.targetLen = n
	}
}

// At returns the element and validity at logical position i.
func (r *ReadColumn[T]) At(i int) (T, bool) {
	switch r.shape {
	case readDense:
		return r.data[i], true
	case readBitmap:
		return r.data[i], r.bitmap[i]
	case readIndex:
		return r.data[r.index[i]], true
	case readBitmapIndex:
		j := r.index[i]
		return r.data[j], r.bitmap[j]
	case readIndexOption:
		oi := r.optIndex[i]
		if !oi.Valid {
			return r.data[0], false
		}
		return r.data[oi.Pos], true
	case readBitmapIndexOption:
		oi := r.optIndex[i]
		if !oi.Valid {
			return r.data[0], false
		}
		return r.data[oi.Pos], r.bitmap[oi.Pos]
	default:
		return r.constVal, r.constOK
	}
}

// ForEach calls f for every element in logical order.
func (r *ReadColumn[T]) ForEach(f func(v T, valid bool)) {
	switch r.shape {
	case readDense:
		for _, v := range r.data {
			f(v, true)
		}
	case readBitmap:
		for i, v := range r.data {
			f(v, r.bitmap[i])
		}
	case readIndex:
		for _, j := range r.index {
			f(r.data[j], true)
		}
	case readBitmapIndex:
		for _, j := range r.index {
			f(r.data[j], r.bitmap[j])
		}
	case readIndexOption:
		for _, oi := range r.optIndex {
			if oi.Valid {
				f(r.data[oi.Pos], true)
			} else {
				f(r.data[0], false)
			}
		}
	case readBitmapIndexOption:
		for _, oi := range r.optIndex {
			if oi.Valid {
				f(r.data[oi.Pos], r.bitmap[oi.Pos])
			} else {
				f(r.data[0], false)
			}
		}
	case readConst:
		for i := 0; i < r.targetLen; i++ {
			f(r.constVal, r.constOK)
		}
	}
}

// ForEachIndexed is ForEach with the logical position passed along.
func (r *ReadColumn[T]) ForEachIndexed(f func(i int, v T, valid bool)) {
	pos := 0
	r.ForEach(func(v T, valid bool) {
		f(pos, v, valid)
		pos++
	})
}

// checkLen asserts that the view has the expected logical length. A
// mismatch is a programming error in the calling kernel.
func (r *ReadColumn[T]) checkLen(want int) {
	if got := r.Len(); got != want {
		panic(fmt.Sprintf("read view length %d does not match kernel length %d", got, want))
	}
}
