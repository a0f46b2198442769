package ops

import (
	"radix/column"
)

// InsertColumn is the appending view over an owned, growing sized
// destination. It has two shapes, with and without a bitmap. Capacity is
// reserved up front from the source length.
type InsertColumn[T any] struct {
	data   *[]T
	bitmap *[]bool
}

// NewInsertColumn lowers an owned destination into an insert view.
// bitmapRequired controls whether the destination ends up with a bitmap:
// a missing one is created, an unwanted one is detached.
func NewInsertColumn[T any](c *column.Wrapper, bitmapRequired bool, targetLen int) (InsertColumn[T], error) {
	var ic InsertColumn[T]
	vec, err := column.SizedVec[T](c.Data())
	if err != nil {
		return ic, err
	}
	if cap(*vec)-len(*vec) < targetLen {
		grown := make([]T, len(*vec), len(*vec)+targetLen)
		copy(grown, *vec)
		*vec = grown
	}
	ic.data = vec

	switch {
	case bitmapRequired && c.Bitmap().IsSome():
		bm, err := c.Bitmap().Vec()
		if err != nil {
			return ic, err
		}
		ic.bitmap = bm
	case bitmapRequired:
		c.SetBitmap(column.NewOptional(make([]bool, 0, targetLen)))
		bm, err := c.Bitmap().Vec()
		if err != nil {
			return ic, err
		}
		ic.bitmap = bm
	case c.Bitmap().IsSome():
		c.SetBitmap(column.None[bool]())
	}
	return ic, nil
}

// append adds one element.
func (ic *InsertColumn[T]) append(v T, valid bool) {
	*ic.data = append(*ic.data, v)
	if ic.bitmap != nil {
		*ic.bitmap = append(*ic.bitmap, valid)
	}
}

// InsertBinaryColumn is the appending view over an owned, growing binary
// destination. The byte buffer is extended alongside the start and length
// tables; the offset base is preserved.
type InsertBinaryColumn[T column.AsBytes] struct {
	bin    *column.BinaryData
	bitmap *[]bool
}

// NewInsertBinaryColumn lowers an owned binary destination into an insert
// view.
func NewInsertBinaryColumn[T column.AsBytes](c *column.Wrapper, bitmapRequired bool, targetLen, targetBytes int) (InsertBinaryColumn[T], error) {
	var ic InsertBinaryColumn[T]
	bin, err := column.BinaryVec[T](c.Data())
	if err != nil {
		return ic, err
	}
	if cap(bin.Lens)-len(bin.Lens) < targetLen {
		bin.StartPos = growSlice(bin.StartPos, targetLen)
		bin.Lens = growSlice(bin.Lens, targetLen)
	}
	if cap(bin.Data)-len(bin.Data) < targetBytes {
		bin.Data = growSlice(bin.Data, targetBytes)
	}
	ic.bin = bin

	switch {
	case bitmapRequired && c.Bitmap().IsSome():
		bm, err := c.Bitmap().Vec()
		if err != nil {
			return ic, err
		}
		ic.bitmap = bm
	case bitmapRequired:
		c.SetBitmap(column.NewOptional(make([]bool, 0, targetLen)))
		bm, err := c.Bitmap().Vec()
		if err != nil {
			return ic, err
		}
		ic.bitmap = bm
	case c.Bitmap().IsSome():
		c.SetBitmap(column.None[bool]())
	}
	return ic, nil
}

func growSlice[T any](s []T, extra int) []T {
	grown := make([]T, len(s), len(s)+extra)
	copy(grown, s)
	return grown
}

// appendBytes adds one element from its byte image.
func (ic *InsertBinaryColumn[T]) appendBytes(b []byte, valid bool) {
	ic.bin.StartPos = append(ic.bin.StartPos, ic.bin.Offset+len(ic.bin.Data))
	ic.bin.Lens = append(ic.bin.Lens, len(b))
	ic.bin.Data = append(ic.bin.Data, b...)
	if ic.bitmap != nil {
		*ic.bitmap = append(*ic.bitmap, valid)
	}
}
