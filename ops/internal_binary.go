package ops

import (
	"errors"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"

	"radix/column"
)

// binaryOps is the InternalOps implementation for a variable-length
// element type.
type binaryOps[T column.AsBytes] struct{}

func newBinaryOps[T column.AsBytes]() binaryOps[T] {
	return binaryOps[T]{}
}

func (o binaryOps[T]) Len(c *column.Wrapper) (int, error) {
	b, err := column.BinaryRef[T](c.Data())
	if err != nil {
		// A sized column of T is still addressable by length.
		if s, serr := column.SizedRef[T](c.Data()); serr == nil {
			return len(s), nil
		}
		return 0, err
	}
	return b.Len(), nil
}

func (o binaryOps[T]) Truncate(c *column.Wrapper) error {
	if c.Data().Variant() != column.BinaryOwned {
		return errors.New("only owned binary columns can be truncated")
	}
	b, err := column.BinaryVec[T](c.Data())
	if err != nil {
		return err
	}
	b.Data = b.Data[:0]
	b.StartPos = b.StartPos[:0]
	b.Lens = b.Lens[:0]
	b.Offset = 0
	return nil
}

func (o binaryOps[T]) New(data any) (*column.Data, error) {
	s, ok := data.([]T)
	if !ok {
		return nil, fmt.Errorf("construction failed: got %T, want []%s", data, TypeOf[T]())
	}
	return column.NewBinary(s), nil
}

func (o binaryOps[T]) NewRef(data any) (*column.Data, error) {
	// Borrowed variable-length input is flattened into an owned layout;
	// the flat form is what every downstream kernel iterates.
	return o.New(data)
}

func (o binaryOps[T]) NewMut(data any) (*column.Data, error) {
	return o.New(data)
}

func (o binaryOps[T]) NewConst(data any) (*column.Data, error) {
	v, ok := data.(T)
	if !ok {
		return nil, fmt.Errorf("construction failed: got %T, want %s", data, TypeOf[T]())
	}
	return column.NewBinaryConst(v), nil
}

func (o binaryOps[T]) NewOwnedWithCapacity(capacity, binaryCapacity int, withBitmap bool) *column.Wrapper {
	c := column.NewWrapper(column.NewBinaryWithCapacity([]T{}, capacity, binaryCapacity))
	if withBitmap {
		c.SetBitmap(column.NewOptional(make([]bool, 0, capacity)))
	}
	return c
}

func (o binaryOps[T]) NewUninit(n, binaryBytes int, withBitmap bool) *column.Wrapper {
	c := column.NewWrapper(column.NewBinaryUninit[T](n, binaryBytes))
	if withBitmap {
		c.SetBitmap(column.NewOptional(make([]bool, n)))
	}
	return c
}

func (o binaryOps[T]) AssumeInit(c *column.Wrapper) error {
	return column.AssumeInit[T](c.Data())
}

func (o binaryOps[T]) CopyTo(src, dst *column.Wrapper, srcIndex *column.Index) error {
	bitmapRequired := src.Bitmap().IsSome()
	input := []InputColumn{Ref(src, srcIndex)}
	if dst.IsBinary() {
		return Insert2BinaryBinary[T, T](dst, input, bitmapRequired, func(b []byte, valid bool) ([]byte, bool) {
			return b, valid
		})
	}
	return Assign2SizedBinary[T, T](dst, input, bitmapRequired, func(b []byte, valid bool) (T, bool) {
		return column.FromBytes[T](b), valid
	})
}

func (o binaryOps[T]) AsString(src *column.Wrapper, srcIndex *column.Index, targetLen int) ([]string, []bool, error) {
	r, err := NewReadBinaryColumn[T](src, srcIndex, targetLen)
	if err != nil {
		return nil, nil, err
	}
	out := make([]string, 0, r.Len())
	valid := make([]bool, 0, r.Len())
	r.ForEachBytes(func(b []byte, ok bool) {
		out = append(out, string(b))
		valid = append(valid, ok)
	})
	return out, valid, nil
}

func binaryHashOne(b []byte, valid bool) uint64 {
	if !valid {
		return math.MaxUint64
	}
	return xxhash.Sum64(b)
}

func (o binaryOps[T]) HashIn(src *column.Wrapper, srcIndex *column.Index, dst *[]uint64) error {
	r, err := NewReadBinaryColumn[T](src, srcIndex, 1)
	if err != nil {
		return err
	}
	if len(*dst) == 0 {
		if r.IsConst() {
			return errors.New("hashing a constant column requires a non-empty hash destination")
		}
		r.ForEachBytes(func(b []byte, valid bool) {
			*dst = append(*dst, binaryHashOne(b, valid))
		})
		return nil
	}
	if r.IsConst() {
		h := binaryHashOne(r.AtBytes(0))
		for i := range *dst {
			(*dst)[i] += h
		}
		return nil
	}
	if r.Len() != len(*dst) {
		return fmt.Errorf("hash source has %d rows, hash destination has %d", r.Len(), len(*dst))
	}
	i := 0
	r.ForEachBytes(func(b []byte, valid bool) {
		(*dst)[i] += binaryHashOne(b, valid)
		i++
	})
	return nil
}

func (o binaryOps[T]) GroupIn(src *column.Wrapper, srcIndex *column.Index, dst *[]int, _ *column.HashMapBuffer, binMap column.BinaryGroupMap) error {
	r, err := NewReadBinaryColumn[T](src, srcIndex, 1)
	if err != nil {
		return err
	}
	binMap.Clear()
	defer binMap.Clear()

	if len(*dst) == 0 {
		i := 0
		r.ForEachBytes(func(b []byte, valid bool) {
			key := column.MakeBinaryGroupKey(0, b, valid)
			id, seen := binMap[key]
			if !seen {
				id = i
				binMap[key] = id
			}
			*dst = append(*dst, id)
			i++
		})
		return nil
	}
	if r.IsConst() {
		return nil
	}
	if r.Len() != len(*dst) {
		return fmt.Errorf("group source has %d rows, group destination has %d", r.Len(), len(*dst))
	}
	i := 0
	r.ForEachBytes(func(b []byte, valid bool) {
		key := column.MakeBinaryGroupKey((*dst)[i], b, valid)
		id, seen := binMap[key]
		if !seen {
			id = i
			binMap[key] = id
		}
		(*dst)[i] = id
		i++
	})
	return nil
}

func (o binaryOps[T]) CopyToBucketsPart1(hash [][]uint64, bucketMask uint64, srcColumns [][]*column.Wrapper, srcIndexes [][]column.Index, colID, indexSlot int, haveSlot bool, offsets []int, dst []*column.Wrapper, nullable bool) (int, error) {
	// Phase one transports element lengths only; bytes wait for the
	// layout produced by part 2.
	dstLens := make([][]int, len(dst))
	for i, c := range dst {
		b, err := column.BinaryMut[T](c.Data())
		if err != nil {
			return 0, err
		}
		dstLens[i] = b.Lens
	}
	written := 0
	lenOffsets := append([]int(nil), offsets...)
	for p := range srcColumns {
		b, err := column.BinaryRef[T](srcColumns[p][colID].Data())
		if err != nil {
			return 0, err
		}
		idx := resolveSlot(srcIndexes[p], indexSlot, haveSlot)
		n, err := copyToBucketsSized(hash[p], bucketMask, b.Lens, idx, lenOffsets, dstLens)
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

func (o binaryOps[T]) CopyToBucketsPart2(dst *column.Wrapper) (int, error) {
	b, err := column.BinaryVec[T](dst.Data())
	if err != nil {
		return 0, err
	}
	total := 0
	for i, l := range b.Lens {
		b.StartPos[i] = total
		total += l
	}
	b.Data = make([]byte, total)
	b.Offset = 0
	return total, nil
}

func (o binaryOps[T]) CopyToBucketsPart3(hash [][]uint64, bucketMask uint64, srcColumns [][]*column.Wrapper, srcIndexes [][]column.Index, colID, indexSlot int, haveSlot bool, offsets []int, dst []*column.Wrapper) (int, error) {
	dstBin := make([]*column.BinaryData, len(dst))
	for i, c := range dst {
		b, err := column.BinaryMut[T](c.Data())
		if err != nil {
			return 0, err
		}
		dstBin[i] = b
	}
	written := 0
	byteOffsets := append([]int(nil), offsets...)
	for p := range srcColumns {
		b, err := column.BinaryRef[T](srcColumns[p][colID].Data())
		if err != nil {
			return 0, err
		}
		idx := resolveSlot(srcIndexes[p], indexSlot, haveSlot)
		n, err := copyToBucketsBinary(hash[p], bucketMask, b, idx, byteOffsets, dstBin)
		if err != nil {
			return 0, err
		}
		written += n
	}
	return written, nil
}
