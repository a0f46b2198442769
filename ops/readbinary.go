package ops

import (
	"radix/column"
)

type readBinShape uint8

const (
	rbDense readBinShape = iota
	rbBitmap
	rbIndex
	rbBitmapIndex
	rbIndexOption
	rbBitmapIndexOption
	rbConst
	// The Orig shapes mirror the flat shapes but read a sized column of T
	// through its byte view instead of a flattened layout.
	rbDenseOrig
	rbBitmapOrig
	rbIndexOrig
	rbBitmapIndexOrig
	rbIndexOptionOrig
	rbBitmapIndexOptionOrig
	rbConstOrig
)

// ReadBinaryColumn is the read view over variable-length elements. It
// accepts both the flat binary layout and a sized column whose element
// type exposes a byte view, and lowers the tuple into one of fourteen
// shapes matched once per kernel invocation.
type ReadBinaryColumn[T column.AsBytes] struct {
	shape readBinShape

	data   []byte
	start  []int
	lens   []int
	offset int

	items []T

	bitmap   []bool
	index    []int
	optIndex []column.OptionIndex

	constVal  []byte
	constOK   bool
	targetLen int
}

// NewReadBinaryColumn lowers a column, its bitmap, and an optional index
// into a binary read view.
func NewReadBinaryColumn[T column.AsBytes](c *column.Wrapper, index *column.Index, targetLen int) (ReadBinaryColumn[T], error) {
	var r ReadBinaryColumn[T]
	orig := c.Data().IsSized()

	if orig {
		items, err := column.SizedRef[T](c.Data())
		if err != nil {
			return r, err
		}
		r.items = items
	} else {
		bin, err := column.BinaryRef[T](c.Data())
		if err != nil {
			return r, err
		}
		r.data, r.start, r.lens, r.offset = bin.Data, bin.StartPos, bin.Lens, bin.Offset
	}

	hasBitmap := c.Bitmap().IsSome()
	var bm []bool
	if hasBitmap {
		var err error
		if bm, err = c.Bitmap().Ref(); err != nil {
			return r, err
		}
	}

	if c.Data().IsConst() {
		r.targetLen = targetLen
		r.constOK = true
		if hasBitmap {
			r.constOK = bm[0]
		}
		if orig {
			r.shape = rbConstOrig
		} else {
			r.shape = rbConst
			r.constVal = r.binBytes(0)
		}
		return r, nil
	}

	r.bitmap = bm
	var err error
	switch {
	case index.IsSome() && index.IsOption():
		if r.optIndex, err = index.OptionRef(); err != nil {
			return r, err
		}
		r.shape = pickBinShape(orig, hasBitmap, rbIndexOption, rbBitmapIndexOption)
	case index.IsSome():
		if r.index, err = index.Ref(); err != nil {
			return r, err
		}
		r.shape = pickBinShape(orig, hasBitmap, rbIndex, rbBitmapIndex)
	default:
		r.shape = pickBinShape(orig, hasBitmap, rbDense, rbBitmap)
	}
	return r, nil
}

func pickBinShape(orig, hasBitmap bool, plain, withBitmap readBinShape) readBinShape {
	s := plain
	if hasBitmap {
		s = withBitmap
	}
	if orig {
		s += rbDenseOrig - rbDense
	}
	return s
}

// ReadBinaryFromInput builds a binary read view over an operand, with a
// constant target length of one.
func ReadBinaryFromInput[T column.AsBytes](in *InputColumn) (ReadBinaryColumn[T], error) {
	return NewReadBinaryColumn[T](in.Col, in.Index, 1)
}

func (r *ReadBinaryColumn[T]) binBytes(k int) []byte {
	s := r.start[k] - r.offset
	return r.data[s : s+r.lens[k]]
}

func (r *ReadBinaryColumn[T]) origBytes(k int) []byte {
	return column.ByteView(r.items[k])
}

func (r *ReadBinaryColumn[T]) isOrig() bool {
	return r.shape >= rbDenseOrig
}

// Len returns the logical length of the view.
func (r *ReadBinaryColumn[T]) Len() int {
	switch r.shape {
	case rbIndex, rbBitmapIndex, rbIndexOrig, rbBitmapIndexOrig:
		return len(r.index)
	case rbIndexOption, rbBitmapIndexOption, rbIndexOptionOrig, rbBitmapIndexOptionOrig:
		return len(r.optIndex)
	case rbConst, rbConstOrig:
		return r.targetLen
	case rbDenseOrig, rbBitmapOrig:
		return len(r.items)
	default:
		return len(r.lens)
	}
}

// IsConst reports whether the view broadcasts a single value.
func (r *ReadBinaryColumn[T]) IsConst() bool {
	return r.shape == rbConst || r.shape == rbConstOrig
}

// UpdateLenIfConst stretches a constant view to n elements.
func (r *ReadBinaryColumn[T]) UpdateLenIfConst(n int) {
	if r.IsConst() {
		r.targetLen = n
	}
}

// AtBytes returns the byte run and validity at logical position i.
func (r *ReadBinaryColumn[T]) AtBytes(i int) ([]byte, bool) {
	at := r.binBytes
	if r.isOrig() {
		at = r.origBytes
	}
	switch r.shape {
	case rbDense, rbDenseOrig:
		return at(i), true
	case rbBitmap, rbBitmapOrig:
		return at(i), r.bitmap[i]
	case rbIndex, rbIndexOrig:
		return at(r.index[i]), true
	case rbBitmapIndex, rbBitmapIndexOrig:
		j := r.index[i]
		return at(j), r.bitmap[j]
	case rbIndexOption, rbIndexOptionOrig:
		oi := r.optIndex[i]
		if !oi.Valid {
			return at(0), false
		}
		return at(oi.Pos), true
	case rbBitmapIndexOption, rbBitmapIndexOptionOrig:
		oi := r.optIndex[i]
		if !oi.Valid {
			return at(0), false
		}
		return at(oi.Pos), r.bitmap[oi.Pos]
	case rbConstOrig:
		return r.origBytes(0), r.constOK
	default:
		return r.constVal, r.constOK
	}
}

// ForEachBytes calls f with the byte run and validity of every element in
// logical order. The byte slice aliases the column and must not be
// retained across calls.
func (r *ReadBinaryColumn[T]) ForEachBytes(f func(b []byte, valid bool)) {
	at := r.binBytes
	if r.isOrig() {
		at = r.origBytes
	}
	switch r.shape {
	case rbDense, rbDenseOrig:
		for i := 0; i < r.Len(); i++ {
			f(at(i), true)
		}
	case rbBitmap, rbBitmapOrig:
		for i := 0; i < r.Len(); i++ {
			f(at(i), r.bitmap[i])
		}
	case rbIndex, rbIndexOrig:
		for _, j := range r.index {
			f(at(j), true)
		}
	case rbBitmapIndex, rbBitmapIndexOrig:
		for _, j := range r.index {
			f(at(j), r.bitmap[j])
		}
	case rbIndexOption, rbIndexOptionOrig:
		for _, oi := range r.optIndex {
			if oi.Valid {
				f(at(oi.Pos), true)
			} else {
				f(at(0), false)
			}
		}
	case rbBitmapIndexOption, rbBitmapIndexOptionOrig:
		for _, oi := range r.optIndex {
			if oi.Valid {
				f(at(oi.Pos), r.bitmap[oi.Pos])
			} else {
				f(at(0), false)
			}
		}
	case rbConst:
		for i := 0; i < r.targetLen; i++ {
			f(r.constVal, r.constOK)
		}
	case rbConstOrig:
		b := r.origBytes(0)
		for i := 0; i < r.targetLen; i++ {
			f(b, r.constOK)
		}
	}
}
