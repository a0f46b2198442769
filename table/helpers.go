package table

import (
	"fmt"

	"radix/column"
	"radix/ops"
)

// partitionSlices splits a caller slice (and optional bitmap) across the
// table's partitions, producing one column per partition. Sized data and
// bitmaps are borrowed without copying. Variable-length elements are
// copied into an owned flat layout per partition, so those columns do not
// alias the caller's slice.
func partitionSlices[T any](d *ops.Dictionary, data []T, bitmap []bool, sizes []int, mutable bool) ([]*column.Wrapper, error) {
	total := 0
	for _, s := range sizes {
		total += s
	}
	if len(data) != total {
		return nil, fmt.Errorf("pushed %d rows into a table with %d rows", len(data), total)
	}
	if len(bitmap) != 0 && len(bitmap) != total {
		return nil, fmt.Errorf("pushed a bitmap of %d rows into a table with %d rows", len(bitmap), total)
	}

	out := make([]*column.Wrapper, 0, len(sizes))
	pos := 0
	for _, s := range sizes {
		part := data[pos : pos+s]
		var c *column.Wrapper
		var err error
		if mutable {
			c, err = ops.NewFromSliceMut(d, part)
		} else {
			c, err = ops.NewFromSlice(d, part)
		}
		if err != nil {
			return nil, err
		}
		if len(bitmap) != 0 {
			bm := bitmap[pos : pos+s]
			if mutable {
				c.SetBitmap(column.OptionalFromSliceMut(bm))
			} else {
				c.SetBitmap(column.OptionalFromSlice(bm))
			}
		}
		out = append(out, c)
		pos += s
	}
	return out, nil
}

// filterIndex rewrites one index slot so it addresses only the surviving
// rows. keep and bitmap are aligned with the slot's logical length;
// survivors satisfy keep[i] && bitmap[i]. An absent index turns into a
// fresh owned index over the surviving positions. Returns the survivor
// count.
func filterIndex(ix *column.Index, keep []bool, bitmap []bool, sizeHint int) (int, error) {
	if sizeHint <= 0 {
		sizeHint = len(keep) / 2
	}
	survives := func(i int) bool {
		if bitmap != nil && !bitmap[i] {
			return false
		}
		return keep[i]
	}

	if !ix.IsSome() {
		fresh := make([]int, 0, sizeHint)
		for i := range keep {
			if survives(i) {
				fresh = append(fresh, i)
			}
		}
		*ix = column.NewIndex(fresh)
		return len(fresh), nil
	}

	n, _ := ix.Len()
	if n != len(keep) {
		return 0, fmt.Errorf("filter predicate has %d rows, index has %d", len(keep), n)
	}

	if ix.IsOwned() && !ix.IsOption() {
		// In-place compaction: swap survivors forward past the deleted
		// prefix, then truncate.
		vec, err := ix.Vec()
		if err != nil {
			return 0, err
		}
		idx := *vec
		del := 0
		for i := range keep {
			if survives(i) {
				idx[i-del] = idx[i]
			} else {
				del++
			}
		}
		*vec = idx[:len(idx)-del]
		return len(idx) - del, nil
	}

	// Shared storage is never mutated; survivors are materialized into a
	// fresh owned index.
	src, err := ix.Ref()
	if err != nil {
		return 0, err
	}
	fresh := make([]int, 0, sizeHint)
	for i, p := range src {
		if survives(i) {
			fresh = append(fresh, p)
		}
	}
	*ix = column.NewIndex(fresh)
	return len(fresh), nil
}
