package ops

import (
	"radix/column"
)

// InternalOps is the per-element-type service table. Every supported type
// registers one implementation under the empty operation name; the
// dictionary dispatches on the element type alone. These services cover
// construction, lifecycle, stringification, hashing, grouping, and the
// bucket phases of hash repartitioning.
type InternalOps interface {
	Len(c *column.Wrapper) (int, error)
	// Truncate empties an owned column, retaining capacity.
	Truncate(c *column.Wrapper) error

	// New takes ownership of a []T passed as any.
	New(data any) (*column.Data, error)
	// NewRef borrows a []T passed as any.
	NewRef(data any) (*column.Data, error)
	// NewMut borrows a writable []T passed as any.
	NewMut(data any) (*column.Data, error)
	// NewConst builds a constant column from a single T passed as any.
	NewConst(data any) (*column.Data, error)

	NewOwnedWithCapacity(capacity, binaryCapacity int, withBitmap bool) *column.Wrapper
	// NewUninit reserves storage for n elements (and binaryBytes buffer
	// bytes for variable-length types) that the caller promises to fill.
	NewUninit(n, binaryBytes int, withBitmap bool) *column.Wrapper
	AssumeInit(c *column.Wrapper) error

	// CopyTo writes src through srcIndex into dst. A sized dst is inserted
	// into when it is owned and empty and assigned one-to-one otherwise. A
	// variable-length dst must be owned and is always appended to; it is
	// never assigned one-to-one.
	CopyTo(src, dst *column.Wrapper, srcIndex *column.Index) error
	// AsString renders targetLen rows with srcIndex applied, returning
	// values and validity.
	AsString(src *column.Wrapper, srcIndex *column.Index, targetLen int) ([]string, []bool, error)

	// HashIn folds per-row hashes into dst. An empty dst is filled with
	// fresh hashes; a non-empty dst receives each row's hash by wrapping
	// addition. A null row contributes the maximum hash value; a constant
	// source adds its single hash to every existing element.
	HashIn(src *column.Wrapper, srcIndex *column.Index, dst *[]uint64) error

	// GroupIn dense-groups src into dst. An empty dst is appended with
	// one id per row; a non-empty dst is refined in place using each
	// row's current id as the key prefix. Ids are first-occurrence row
	// positions until densified by the caller.
	GroupIn(src *column.Wrapper, srcIndex *column.Index, dst *[]int, buf *column.HashMapBuffer, binMap column.BinaryGroupMap) error

	// CopyToBucketsPart1 distributes one worker chunk's rows (values and,
	// when nullable, bitmap bits) into the destination buckets chosen by
	// hash & bucketMask. For variable-length types only the element
	// lengths are transported. Returns the number of items written.
	CopyToBucketsPart1(hash [][]uint64, bucketMask uint64, srcColumns [][]*column.Wrapper, srcIndexes [][]column.Index, colID, indexSlot int, haveSlot bool, offsets []int, dst []*column.Wrapper, nullable bool) (int, error)
	// CopyToBucketsPart2 converts a bucket's length table into a prefix
	// sum of start positions and sizes the byte buffer. Variable-length
	// types only.
	CopyToBucketsPart2(dst *column.Wrapper) (int, error)
	// CopyToBucketsPart3 copies the byte runs laid out by part 2.
	// Variable-length types only.
	CopyToBucketsPart3(hash [][]uint64, bucketMask uint64, srcColumns [][]*column.Wrapper, srcIndexes [][]column.Index, colID, indexSlot int, haveSlot bool, offsets []int, dst []*column.Wrapper) (int, error)
}

// copyToBucketsSized distributes one partition's values into per-bucket
// destination slices, advancing the per-bucket write offsets.
func copyToBucketsSized[T any](hash []uint64, bucketMask uint64, src []T, srcIndex *column.Index, offsets []int, dst [][]T) (int, error) {
	written := 0
	if srcIndex.IsSome() {
		idx, err := srcIndex.Ref()
		if err != nil {
			return 0, err
		}
		for k, i := range idx {
			b := int(hash[k] & bucketMask)
			dst[b][offsets[b]] = src[i]
			offsets[b]++
			written++
		}
		return written, nil
	}
	for k, v := range src {
		b := int(hash[k] & bucketMask)
		dst[b][offsets[b]] = v
		offsets[b]++
		written++
	}
	return written, nil
}

// copyToBucketsBinary copies one partition's byte runs into per-bucket
// destination layouts already sized by the prefix pass.
func copyToBucketsBinary(hash []uint64, bucketMask uint64, src *column.BinaryData, srcIndex *column.Index, offsets []int, dst []*column.BinaryData) (int, error) {
	written := 0
	copyRow := func(row, bucket int) {
		d := dst[bucket]
		o := offsets[bucket]
		start := src.StartPos[row] - src.Offset
		run := src.Data[start : start+src.Lens[row]]
		ds := d.StartPos[o]
		copy(d.Data[ds:ds+d.Lens[o]], run)
		offsets[bucket]++
		written += len(run)
	}
	if srcIndex.IsSome() {
		idx, err := srcIndex.Ref()
		if err != nil {
			return 0, err
		}
		for k, i := range idx {
			copyRow(i, int(hash[k]&bucketMask))
		}
		return written, nil
	}
	for k := range src.Lens {
		copyRow(k, int(hash[k]&bucketMask))
	}
	return written, nil
}

// resolveSlot picks the index of srcIndexes addressed by the column's
// slot, or the absent index when the column is read positionally.
func resolveSlot(indexes []column.Index, indexSlot int, haveSlot bool) *column.Index {
	if !haveSlot {
		none := column.NoIndex()
		return &none
	}
	return &indexes[indexSlot]
}
