// Package table composes columns into a partition-parallel table and
// evaluates expressions, filters, hashes, groupings, and hash
// repartitions over it. Rows are split across partitions; every operation
// runs per partition over disjoint data, so the degree of parallelism
// never changes results.
package table

import (
	"reflect"

	"radix/column"
	"radix/ops"
)

// ColumnBuffer pools scratch columns by element type so expression
// pipelines do not reallocate intermediates. Pushed columns are truncated
// (and their owned bitmaps cleared) before reuse; columns that cannot be
// truncated are dropped.
type ColumnBuffer struct {
	stored []*column.Wrapper
}

// NewColumnBuffer creates an empty buffer.
func NewColumnBuffer() *ColumnBuffer {
	return &ColumnBuffer{}
}

// Push returns a scratch column to the pool.
func (b *ColumnBuffer) Push(d *ops.Dictionary, c *column.Wrapper) {
	if err := ops.Truncate(d, c); err != nil {
		return
	}
	if c.Bitmap().IsSome() {
		if err := c.Bitmap().Truncate(); err != nil {
			return
		}
	}
	b.stored = append(b.stored, c)
}

// Pop takes a scratch column of the given element type out of the pool,
// creating an empty owned one when nothing matches.
func (b *ColumnBuffer) Pop(d *ops.Dictionary, itemType reflect.Type) (*column.Wrapper, error) {
	for i, c := range b.stored {
		if c.Data().ItemType() == itemType {
			b.stored[i] = b.stored[len(b.stored)-1]
			b.stored = b.stored[:len(b.stored)-1]
			return c, nil
		}
	}
	return ops.NewOwnedWithCapacity(d, itemType, false, 0, 0)
}
