package ops

import (
	"errors"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"

	"radix/column"
)

// sizedOps is the InternalOps implementation for a fixed-width element
// type. enc writes the element's byte image into an 8-byte scratch buffer
// and returns the image width; it feeds the deterministic per-row hash.
type sizedOps[T comparable] struct {
	enc func(v T, b []byte) int
}

func newSizedOps[T comparable](enc func(v T, b []byte) int) sizedOps[T] {
	return sizedOps[T]{enc: enc}
}

func (o sizedOps[T]) Len(c *column.Wrapper) (int, error) {
	s, err := column.SizedRef[T](c.Data())
	if err != nil {
		return 0, err
	}
	return len(s), nil
}

func (o sizedOps[T]) Truncate(c *column.Wrapper) error {
	if c.Data().Variant() != column.Owned {
		return errors.New("only owned columns can be truncated")
	}
	vec, err := column.SizedVec[T](c.Data())
	if err != nil {
		return err
	}
	*vec = (*vec)[:0]
	return nil
}

func (o sizedOps[T]) New(data any) (*column.Data, error) {
	s, ok := data.([]T)
	if !ok {
		return nil, fmt.Errorf("construction failed: got %T, want []%s", data, TypeOf[T]())
	}
	return column.NewSized(s), nil
}

func (o sizedOps[T]) NewRef(data any) (*column.Data, error) {
	s, ok := data.([]T)
	if !ok {
		return nil, fmt.Errorf("construction failed: got %T, want []%s", data, TypeOf[T]())
	}
	return column.NewSizedSlice(s), nil
}

func (o sizedOps[T]) NewMut(data any) (*column.Data, error) {
	s, ok := data.([]T)
	if !ok {
		return nil, fmt.Errorf("construction failed: got %T, want []%s", data, TypeOf[T]())
	}
	return column.NewSizedSliceMut(s), nil
}

func (o sizedOps[T]) NewConst(data any) (*column.Data, error) {
	v, ok := data.(T)
	if !ok {
		return nil, fmt.Errorf("construction failed: got %T, want %s", data, TypeOf[T]())
	}
	return column.NewSizedConst(v), nil
}

func (o sizedOps[T]) NewOwnedWithCapacity(capacity, _ int, withBitmap bool) *column.Wrapper {
	c := column.NewWrapper(column.NewSized(make([]T, 0, capacity)))
	if withBitmap {
		c.SetBitmap(column.NewOptional(make([]bool, 0, capacity)))
	}
	return c
}

func (o sizedOps[T]) NewUninit(n, _ int, withBitmap bool) *column.Wrapper {
	c := column.NewWrapper(column.NewSizedUninit[T](n))
	if withBitmap {
		c.SetBitmap(column.NewOptional(make([]bool, n)))
	}
	return c
}

func (o sizedOps[T]) AssumeInit(c *column.Wrapper) error {
	return column.AssumeInit[T](c.Data())
}

func (o sizedOps[T]) CopyTo(src, dst *column.Wrapper, srcIndex *column.Index) error {
	bitmapRequired := src.Bitmap().IsSome()
	input := []InputColumn{Ref(src, srcIndex)}
	return Assign2SizedSized(dst, input, bitmapRequired, func(v T, valid bool) (T, bool) {
		return v, valid
	})
}

func (o sizedOps[T]) AsString(src *column.Wrapper, srcIndex *column.Index, targetLen int) ([]string, []bool, error) {
	r, err := NewReadColumn[T](src, srcIndex, targetLen)
	if err != nil {
		return nil, nil, err
	}
	out := make([]string, 0, r.Len())
	valid := make([]bool, 0, r.Len())
	r.ForEach(func(v T, ok bool) {
		out = append(out, fmt.Sprint(v))
		valid = append(valid, ok)
	})
	return out, valid, nil
}

func (o sizedOps[T]) hashOne(v T, valid bool) uint64 {
	if !valid {
		return math.MaxUint64
	}
	var scratch [8]byte
	n := o.enc(v, scratch[:])
	return xxhash.Sum64(scratch[:n])
}

func (o sizedOps[T]) HashIn(src *column.Wrapper, srcIndex *column.Index, dst *[]uint64) error {
	r, err := NewReadColumn[T](src, srcIndex, 1)
	if err != nil {
		return err
	}
	if len(*dst) == 0 {
		if r.IsConst() {
			return errors.New("hashing a constant column requires a non-empty hash destination")
		}
		r.ForEach(func(v T, valid bool) {
			*dst = append(*dst, o.hashOne(v, valid))
		})
		return nil
	}
	if r.IsConst() {
		h := o.hashOne(r.At(0))
		for i := range *dst {
			(*dst)[i] += h
		}
		return nil
	}
	if r.Len() != len(*dst) {
		return fmt.Errorf("hash source has %d rows, hash destination has %d", r.Len(), len(*dst))
	}
	i := 0
	r.ForEach(func(v T, valid bool) {
		(*dst)[i] += o.hashOne(v, valid)
		i++
	})
	return nil
}

func (o sizedOps[T]) GroupIn(src *column.Wrapper, srcIndex *column.Index, dst *[]int, buf *column.HashMapBuffer, _ column.BinaryGroupMap) error {
	r, err := NewReadColumn[T](src, srcIndex, 1)
	if err != nil {
		return err
	}
	h := column.PopGroupMap[T](buf)
	defer column.PushGroupMap(buf, h)

	if len(*dst) == 0 {
		i := 0
		r.ForEach(func(v T, valid bool) {
			key := column.GroupKey[T]{Group: 0, Value: column.MakeNullable(v, valid)}
			id, seen := h[key]
			if !seen {
				id = i
				h[key] = id
			}
			*dst = append(*dst, id)
			i++
		})
		return nil
	}
	// Grouping is idempotent under a constant source.
	if r.IsConst() {
		return nil
	}
	if r.Len() != len(*dst) {
		return fmt.Errorf("group source has %d rows, group destination has %d", r.Len(), len(*dst))
	}
	r.ForEachIndexed(func(i int, v T, valid bool) {
		key := column.GroupKey[T]{Group: (*dst)[i], Value: column.MakeNullable(v, valid)}
		id, seen := h[key]
		if !seen {
			id = i
			h[key] = id
		}
		(*dst)[i] = id
	})
	return nil
}

func (o sizedOps[T]) CopyToBucketsPart1(hash [][]uint64, bucketMask uint64, srcColumns [][]*column.Wrapper, srcIndexes [][]column.Index, colID, indexSlot int, haveSlot bool, offsets []int, dst []*column.Wrapper, nullable bool) (int, error) {
	dstData := make([][]T, len(dst))
	for i, c := range dst {
		d, err := column.SizedMut[T](c.Data())
		if err != nil {
			return 0, err
		}
		dstData[i] = d
	}
	written := 0
	dataOffsets := append([]int(nil), offsets...)
	for p := range srcColumns {
		src, err := column.SizedRef[T](srcColumns[p][colID].Data())
		if err != nil {
			return 0, err
		}
		idx := resolveSlot(srcIndexes[p], indexSlot, haveSlot)
		n, err := copyToBucketsSized(hash[p], bucketMask, src, idx, dataOffsets, dstData)
		if err != nil {
			return 0, err
		}
		written += n
	}
	if nullable {
		dstBitmap := make([][]bool, len(dst))
		for i, c := range dst {
			bm, err := c.Bitmap().Mut()
			if err != nil {
				return 0, err
			}
			dstBitmap[i] = bm
		}
		bitmapOffsets := append([]int(nil), offsets...)
		for p := range srcColumns {
			bm, err := bucketSourceBitmap(srcColumns[p][colID])
			if err != nil {
				return 0, err
			}
			idx := resolveSlot(srcIndexes[p], indexSlot, haveSlot)
			n, err := copyToBucketsSized(hash[p], bucketMask, bm, idx, bitmapOffsets, dstBitmap)
			if err != nil {
				return 0, err
			}
			written += n
		}
	}
	return written, nil
}

func (o sizedOps[T]) CopyToBucketsPart2(_ *column.Wrapper) (int, error) {
	return 0, errors.New("bucket layout pass is only defined for variable-length types")
}

func (o sizedOps[T]) CopyToBucketsPart3(_ [][]uint64, _ uint64, _ [][]*column.Wrapper, _ [][]column.Index, _, _ int, _ bool, _ []int, _ []*column.Wrapper) (int, error) {
	return 0, errors.New("bucket byte pass is only defined for variable-length types")
}

// bucketSourceBitmap returns the partition's bitmap, or an all-true one
// when a nullable column is missing its bitmap in this partition.
func bucketSourceBitmap(c *column.Wrapper) ([]bool, error) {
	if c.Bitmap().IsSome() {
		return c.Bitmap().Ref()
	}
	bm := make([]bool, c.Data().Len())
	for i := range bm {
		bm[i] = true
	}
	return bm, nil
}
