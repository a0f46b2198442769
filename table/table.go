package table

import (
	"fmt"
	"runtime"
	"sync"

	"radix/column"
	"radix/ops"
	"radix/par"
)

// Table holds columns split across row partitions, together with the
// shared row-index slots that remap them at read time. Multiple columns
// may point at one slot; a column with no slot is read positionally.
type Table struct {
	partitionSizes []int
	columns        [][]*column.Wrapper // [partition][column]
	nullable       []bool
	indexes        [][]column.Index // [partition][slot]
	colIndexMap    map[int]int
	workers        int

	mu sync.Mutex
}

// New creates a table whose rows are split into the given partition
// sizes.
func New(partitionSizes ...int) *Table {
	t := &Table{
		partitionSizes: append([]int(nil), partitionSizes...),
		columns:        make([][]*column.Wrapper, len(partitionSizes)),
		indexes:        make([][]column.Index, len(partitionSizes)),
		colIndexMap:    make(map[int]int),
		workers:        runtime.NumCPU(),
	}
	return t
}

// SetWorkers bounds the number of parallel workers table operations use.
func (t *Table) SetWorkers(n int) {
	if n > 0 {
		t.workers = n
	}
}

// Rows returns the current logical row count.
func (t *Table) Rows() int {
	total := 0
	for _, s := range t.partitionSizes {
		total += s
	}
	return total
}

// NumberOfColumns returns the column count.
func (t *Table) NumberOfColumns() (int, error) {
	if len(t.columns) == 0 {
		return 0, fmt.Errorf("the table has no partitions, so the column count is undefined")
	}
	return len(t.columns[0]), nil
}

// Push adds a column borrowing data read-only across all partitions.
// Variable-length elements are copied instead (see partitionSlices).
func Push[T any](t *Table, d *ops.Dictionary, data []T) error {
	return pushSplit(t, d, data, nil, false, false)
}

// PushWithBitmap adds a nullable column borrowing data and bitmap
// read-only.
func PushWithBitmap[T any](t *Table, d *ops.Dictionary, data []T, bitmap []bool) error {
	return pushSplit(t, d, data, bitmap, false, true)
}

// PushMut adds a column borrowing data writable, so in-place operations
// can target it. Variable-length elements are copied into an owned
// layout, so writes to such a column do not reach data.
func PushMut[T any](t *Table, d *ops.Dictionary, data []T) error {
	return pushSplit(t, d, data, nil, true, false)
}

// PushMutWithBitmap adds a nullable column borrowing data and bitmap
// writable.
func PushMutWithBitmap[T any](t *Table, d *ops.Dictionary, data []T, bitmap []bool) error {
	return pushSplit(t, d, data, bitmap, true, true)
}

func pushSplit[T any](t *Table, d *ops.Dictionary, data []T, bitmap []bool, mutable, nullable bool) error {
	parts, err := partitionSlices(d, data, bitmap, t.partitionSizes, mutable)
	if err != nil {
		return err
	}
	for p := range t.columns {
		t.columns[p] = append(t.columns[p], parts[p])
	}
	t.nullable = append(t.nullable, nullable)
	return nil
}

// PushIndex adds a shared index slot, one index per partition, and points
// the listed columns at it. An absent partition index means that
// partition stays positional; a present one must match the partition
// length.
func (t *Table) PushIndex(pIndex []column.Index, appliesTo []int) error {
	if len(pIndex) != len(t.partitionSizes) {
		return fmt.Errorf("index has %d partitions, the table has %d", len(pIndex), len(t.partitionSizes))
	}
	for p, ix := range pIndex {
		if n, ok := ix.Len(); ok && n != t.partitionSizes[p] {
			return fmt.Errorf("index partition %d has length %d, the table partition has length %d", p, n, t.partitionSizes[p])
		}
	}
	cols, err := t.NumberOfColumns()
	if err != nil {
		return err
	}
	for _, c := range appliesTo {
		if c >= cols {
			return fmt.Errorf("index applies to column %d, the table has only %d columns", c, cols)
		}
	}

	slot := len(t.indexes[0])
	for p := range t.indexes {
		t.indexes[p] = append(t.indexes[p], pIndex[p])
	}
	for _, c := range appliesTo {
		t.colIndexMap[c] = slot
	}
	return nil
}

// partCol returns the per-partition handles of one column.
func (t *Table) partCol(colID int) ([]*column.Wrapper, error) {
	cols, err := t.NumberOfColumns()
	if err != nil {
		return nil, err
	}
	if colID >= cols {
		return nil, fmt.Errorf("column %d requested, the table has only %d columns", colID, cols)
	}
	out := make([]*column.Wrapper, len(t.columns))
	for p := range t.columns {
		out[p] = t.columns[p][colID]
	}
	return out, nil
}

// isConst reports whether a column is constant in every partition.
func (t *Table) isConst(colID int) (bool, error) {
	parts, err := t.partCol(colID)
	if err != nil {
		return false, err
	}
	for _, c := range parts {
		if !c.Data().IsConst() {
			return false, nil
		}
	}
	return true, nil
}

// partIndex resolves the index applied to colID in partition p.
func (t *Table) partIndex(colID, p int) *column.Index {
	if slot, ok := t.colIndexMap[colID]; ok {
		return &t.indexes[p][slot]
	}
	none := column.NoIndex()
	return &none
}

// partitionOffsets returns the running start row of each partition.
func (t *Table) partitionOffsets() []int {
	offsets := make([]int, len(t.partitionSizes))
	pos := 0
	for p, s := range t.partitionSizes {
		offsets[p] = pos
		pos += s
	}
	return offsets
}

// Materialize gathers a column into a dense slice with its optional
// bitmap, applying the column's index. Constant columns broadcast their
// single value.
func Materialize[T any](t *Table, d *ops.Dictionary, colID int) ([]T, column.Optional[bool], error) {
	isConst, err := t.isConst(colID)
	if err != nil {
		return nil, column.None[bool](), err
	}
	if isConst {
		return materializeConst[T](t, d, colID)
	}

	parts, err := t.partCol(colID)
	if err != nil {
		return nil, column.None[bool](), err
	}
	for _, c := range parts {
		if !column.Is[T](c.Data()) {
			return nil, column.None[bool](), fmt.Errorf("materialize of type %s requested, column holds %s", ops.TypeOf[T](), c.Data().ItemType())
		}
	}

	total := t.Rows()
	out := make([]T, total)
	hasBitmap := false
	for _, c := range parts {
		if c.Bitmap().IsSome() {
			hasBitmap = true
			break
		}
	}
	var outBitmap []bool
	if hasBitmap {
		outBitmap = make([]bool, total)
		for i := range outBitmap {
			outBitmap[i] = true
		}
	}

	offsets := t.partitionOffsets()
	err = par.Ranges(len(t.partitionSizes), t.workers, func(start, end int) error {
		for p := start; p < end; p++ {
			seg := out[offsets[p] : offsets[p]+t.partitionSizes[p]]
			dst := column.NewWrapper(column.NewSizedSliceMut(seg))
			if parts[p].Bitmap().IsSome() {
				dst.SetBitmap(column.OptionalFromSliceMut(outBitmap[offsets[p] : offsets[p]+t.partitionSizes[p]]))
			}
			if err := ops.CopyTo(d, parts[p], dst, t.partIndex(colID, p)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, column.None[bool](), err
	}
	if hasBitmap {
		return out, column.NewOptional(outBitmap), nil
	}
	return out, column.None[bool](), nil
}

func materializeConst[T any](t *Table, d *ops.Dictionary, colID int) ([]T, column.Optional[bool], error) {
	c := t.columns[0][colID]
	v, err := ops.ToConst[T](d, c)
	if err != nil {
		return nil, column.None[bool](), err
	}
	total := t.Rows()
	out := make([]T, total)
	for i := range out {
		out[i] = v
	}
	if c.Bitmap().IsSome() {
		bm, err := c.Bitmap().Ref()
		if err != nil {
			return nil, column.None[bool](), err
		}
		outBitmap := make([]bool, total)
		for i := range outBitmap {
			outBitmap[i] = bm[0]
		}
		return out, column.NewOptional(outBitmap), nil
	}
	return out, column.None[bool](), nil
}

// MaterializeAsString renders a column through the per-type string
// service, writing "(null)" for invalid rows.
func (t *Table) MaterializeAsString(d *ops.Dictionary, colID int) ([]string, error) {
	parts, err := t.partCol(colID)
	if err != nil {
		return nil, err
	}
	total := t.Rows()
	out := make([]string, total)
	offsets := t.partitionOffsets()

	err = par.Ranges(len(t.partitionSizes), t.workers, func(start, end int) error {
		for p := start; p < end; p++ {
			s, valid, err := ops.AsString(d, parts[p], t.partIndex(colID, p), t.partitionSizes[p])
			if err != nil {
				return err
			}
			if len(s) != t.partitionSizes[p] {
				return fmt.Errorf("string rendering produced %d rows for a partition of %d", len(s), t.partitionSizes[p])
			}
			seg := out[offsets[p] : offsets[p]+t.partitionSizes[p]]
			for i := range s {
				if valid[i] {
					seg[i] = s[i]
				} else {
					seg[i] = "(null)"
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Op runs the named kernel in place on column c1ID, reading the listed
// input columns, per partition in parallel. The destination cannot also
// be an input.
func (t *Table) Op(d *ops.Dictionary, name string, c1ID int, inputIDs []int) error {
	for _, id := range inputIDs {
		if id == c1ID {
			return fmt.Errorf("the output column %d of a write operation cannot also be one of the inputs %v", c1ID, inputIDs)
		}
	}
	cols, err := t.NumberOfColumns()
	if err != nil {
		return err
	}
	if c1ID >= cols {
		return fmt.Errorf("column index out of bounds: write column %d, the table has %d columns", c1ID, cols)
	}
	for _, id := range inputIDs {
		if id >= cols {
			return fmt.Errorf("column index out of bounds: input column %d, the table has %d columns", id, cols)
		}
	}

	return par.Ranges(len(t.partitionSizes), t.workers, func(start, end int) error {
		for p := start; p < end; p++ {
			c1 := t.columns[p][c1ID]
			input := make([]ops.InputColumn, 0, len(inputIDs))
			for _, id := range inputIDs {
				input = append(input, ops.Ref(t.columns[p][id], t.partIndex(id, p)))
			}
			if err := ops.Op(d, name, c1, t.partIndex(c1ID, p), input); err != nil {
				return err
			}
		}
		return nil
	})
}

// Filter evaluates a boolean expression and keeps only the rows where the
// result is true and valid. Every index slot is rewritten to the survivor
// set; columns without a slot are pointed at a fresh one.
func (t *Table) Filter(d *ops.Dictionary, expr *TableExpression) error {
	cols, err := t.NumberOfColumns()
	if err != nil {
		return err
	}
	var withoutIndex []int
	for c := 0; c < cols; c++ {
		if _, ok := t.colIndexMap[c]; !ok {
			withoutIndex = append(withoutIndex, c)
		}
	}

	err = par.Ranges(len(t.partitionSizes), t.workers, func(start, end int) error {
		buf := NewColumnBuffer()
		for p := start; p < end; p++ {
			result, _, err := expr.eval(d, buf, t.columns[p], t.indexes[p], t.colIndexMap, t.partitionSizes[p])
			if err != nil {
				return err
			}
			keep, err := column.SizedRef[bool](result.Data())
			if err != nil {
				return fmt.Errorf("filter expression must produce a boolean column: %w", err)
			}
			var bitmap []bool
			if result.Bitmap().IsSome() {
				if bitmap, err = result.Bitmap().Ref(); err != nil {
					return err
				}
			}

			survivors := -1
			for slot := range t.indexes[p] {
				n, err := filterIndex(&t.indexes[p][slot], keep, bitmap, survivors)
				if err != nil {
					return err
				}
				if survivors < 0 {
					survivors = n
					t.partitionSizes[p] = n
				}
			}
			if len(withoutIndex) > 0 {
				fresh := column.NoIndex()
				n, err := filterIndex(&fresh, keep, bitmap, survivors)
				if err != nil {
					return err
				}
				if survivors < 0 {
					t.partitionSizes[p] = n
				}
				t.indexes[p] = append(t.indexes[p], fresh)
			}
			buf.Push(d, result)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(withoutIndex) > 0 {
		slot := len(t.indexes[0]) - 1
		for _, c := range withoutIndex {
			t.colIndexMap[c] = slot
		}
	}
	return nil
}

// AddExpressionAsNewColumn evaluates an expression per partition and
// appends the result as a new column. A grouped expression also installs
// its dense group-id index and points the new column at it.
func (t *Table) AddExpressionAsNewColumn(d *ops.Dictionary, expr *TableExpression) error {
	outIndexes := make([]column.Index, len(t.partitionSizes))
	producedIndex := false
	nullable := false

	err := par.Ranges(len(t.partitionSizes), t.workers, func(start, end int) error {
		buf := NewColumnBuffer()
		for p := start; p < end; p++ {
			res, outIdx, err := expr.eval(d, buf, t.columns[p], t.indexes[p], t.colIndexMap, t.partitionSizes[p])
			if err != nil {
				return err
			}
			t.mu.Lock()
			t.columns[p] = append(t.columns[p], res)
			if outIdx != nil {
				outIndexes[p] = *outIdx
				producedIndex = true
			}
			if res.Bitmap().IsSome() {
				nullable = true
			}
			t.mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return err
	}

	t.nullable = append(t.nullable, nullable)
	newColID := len(t.columns[0]) - 1
	if producedIndex {
		slot := len(t.indexes[0])
		for p := range t.indexes {
			t.indexes[p] = append(t.indexes[p], outIndexes[p])
		}
		t.colIndexMap[newColID] = slot
	}
	return nil
}

// BuildHash folds the listed columns into one hash vector per partition,
// chaining columns by wrapping addition.
func (t *Table) BuildHash(d *ops.Dictionary, colIDs []int) ([][]uint64, error) {
	output := make([][]uint64, len(t.partitionSizes))
	for p, s := range t.partitionSizes {
		output[p] = make([]uint64, 0, s)
	}
	for _, colID := range colIDs {
		if _, err := t.partCol(colID); err != nil {
			return nil, err
		}
		err := par.Ranges(len(t.partitionSizes), t.workers, func(start, end int) error {
			for p := start; p < end; p++ {
				if err := ops.HashIn(d, t.columns[p][colID], t.partIndex(colID, p), &output[p]); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return output, nil
}

// BuildGroups dense-groups the listed columns, returning per-partition
// group ids renumbered to 0..G and the per-partition group counts.
func (t *Table) BuildGroups(d *ops.Dictionary, colIDs []int) ([][]int, []int, error) {
	output := make([][]int, len(t.partitionSizes))
	for p, s := range t.partitionSizes {
		output[p] = make([]int, s)
	}
	for _, colID := range colIDs {
		if _, err := t.partCol(colID); err != nil {
			return nil, nil, err
		}
		err := par.Ranges(len(t.partitionSizes), t.workers, func(start, end int) error {
			hashBuf := column.NewHashMapBuffer()
			binMap := column.NewBinaryGroupMap()
			for p := start; p < end; p++ {
				if err := ops.GroupIn(d, t.columns[p][colID], t.partIndex(colID, p), &output[p], hashBuf, binMap); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, nil, err
		}
	}
	counts := make([]int, len(output))
	for p := range output {
		counts[p] = densifyGroups(output[p])
	}
	return output, counts, nil
}
