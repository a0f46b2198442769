package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radix/column"
	"radix/ops"
)

// fivePartitionIndex builds the shared index shape used across these
// tests: every partition of sizes [2,2,2,2,1] reads its first row twice.
func fivePartitionIndex() []column.Index {
	return []column.Index{
		column.NewIndex([]int{0, 0}),
		column.NewIndex([]int{0, 0}),
		column.NewIndex([]int{0, 0}),
		column.NewIndex([]int{0, 0}),
		column.NewIndex([]int{0}),
	}
}

func TestMaterializeAcrossPartitions(t *testing.T) {
	d := ops.NewDictionary()
	values := []uint32{1, 2, 3, 4, 5, 6, 7, 8, 9}

	tb := New(2, 2, 2, 2, 1)
	tb.SetWorkers(2)
	require.NoError(t, Push(tb, d, values))

	got, bitmap, err := Materialize[uint32](tb, d, 0)
	require.NoError(t, err)
	assert.Equal(t, values, got)
	assert.False(t, bitmap.IsSome())
}

func TestMaterializeWithBitmap(t *testing.T) {
	d := ops.NewDictionary()
	values := []uint32{1, 2, 3, 4, 5, 6, 7, 8, 9}
	valid := []bool{true, false, true, true, true, true, true, true, true}

	tb := New(2, 2, 2, 2, 1)
	require.NoError(t, PushWithBitmap(tb, d, values, valid))

	got, bitmap, err := Materialize[uint32](tb, d, 0)
	require.NoError(t, err)
	assert.Equal(t, values, got)
	bm, err := bitmap.Ref()
	require.NoError(t, err)
	assert.Equal(t, valid, bm)
}

func TestMaterializeBinary(t *testing.T) {
	d := ops.NewDictionary()
	names := []string{"Jane", "Merry", "", "Christopher", "Peter"}

	tb := New(2, 2, 1)
	require.NoError(t, Push(tb, d, names))

	got, _, err := Materialize[string](tb, d, 0)
	require.NoError(t, err)
	assert.Equal(t, names, got)
}

func TestMaterializeTypeMismatch(t *testing.T) {
	d := ops.NewDictionary()
	tb := New(3)
	require.NoError(t, Push(tb, d, []uint32{1, 2, 3}))

	_, _, err := Materialize[uint64](tb, d, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uint32")
}

func TestPushLengthMismatch(t *testing.T) {
	d := ops.NewDictionary()
	tb := New(2, 2)
	require.Error(t, Push(tb, d, []uint32{1, 2, 3}))
	require.Error(t, PushWithBitmap(tb, d, []uint32{1, 2, 3, 4}, []bool{true}))
}

func TestPushIndexValidation(t *testing.T) {
	d := ops.NewDictionary()
	tb := New(2, 2, 2, 2, 1)
	require.NoError(t, Push(tb, d, []uint32{1, 2, 3, 4, 5, 6, 7, 8, 9}))

	require.Error(t, tb.PushIndex([]column.Index{column.NewIndex([]int{0})}, []int{0}),
		"partition count mismatch")

	bad := fivePartitionIndex()
	bad[1] = column.NewIndex([]int{0, 0, 0})
	require.Error(t, tb.PushIndex(bad, []int{0}), "partition length mismatch")

	require.Error(t, tb.PushIndex(fivePartitionIndex(), []int{5}), "column out of range")

	require.NoError(t, tb.PushIndex(fivePartitionIndex(), []int{0}))
}

func TestTableAddAssign(t *testing.T) {
	d := ops.NewDictionary()
	a := []uint32{1, 2, 3, 4, 5, 6, 7, 8, 9}
	aValid := []bool{true, false, true, true, true, true, true, true, true}
	b := []uint32{1, 2, 3, 4, 5, 6, 7, 8, 9}
	bValid := []bool{true, true, true, true, true, true, true, true, false}

	tb := New(2, 2, 2, 2, 1)
	require.NoError(t, PushMutWithBitmap(tb, d, a, aValid))
	require.NoError(t, PushWithBitmap(tb, d, b, bValid))

	require.NoError(t, tb.Op(d, "+=", 0, []int{1}))

	got, err := tb.MaterializeAsString(d, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "(null)", "6", "8", "10", "12", "14", "16", "(null)"}, got)
}

func TestTableOpRejectsDestinationAsInput(t *testing.T) {
	d := ops.NewDictionary()
	tb := New(3)
	require.NoError(t, PushMut(tb, d, []uint32{1, 2, 3}))
	require.NoError(t, Push(tb, d, []uint32{4, 5, 6}))

	require.Error(t, tb.Op(d, "+=", 0, []int{0}))
	require.Error(t, tb.Op(d, "+=", 5, []int{1}))
	require.Error(t, tb.Op(d, "+=", 0, []int{7}))
}

func TestEqualityOverIndexedColumns(t *testing.T) {
	d := ops.NewDictionary()

	left := []uint32{1, 2, 3, 4, 5, 7, 7, 8, 9}
	leftValid := []bool{true, true, true, true, true, true, true, true, false}
	right := []uint32{1, 2, 3, 4, 5, 6, 7, 8, 9}
	rightValid := []bool{true, false, true, true, true, true, true, true, true}
	out := make([]bool, 9)
	outValid := []bool{true, true, true, true, false, true, true, true, true}

	tb := New(2, 2, 2, 2, 1)
	require.NoError(t, PushWithBitmap(tb, d, left, leftValid))     // column 0
	require.NoError(t, PushWithBitmap(tb, d, right, rightValid))   // column 1
	require.NoError(t, PushMutWithBitmap(tb, d, out, outValid))    // column 2
	require.NoError(t, tb.PushIndex(fivePartitionIndex(), []int{0})) // left reads its first row per partition

	require.NoError(t, tb.Op(d, "==", 2, []int{1, 0}))

	got, err := tb.MaterializeAsString(d, 2)
	require.NoError(t, err)
	want := []string{"true", "(null)", "true", "false", "true", "false", "true", "false", "(null)"}
	assert.Equal(t, want, got)
}

func TestEqualityOverIndexedBinaryColumns(t *testing.T) {
	d := ops.NewDictionary()

	left := []string{"1A", "2A", "3A", "4A", "5A", "6A", "7A", "8A", "9A"}
	leftValid := []bool{true, false, true, true, true, true, true, true, true}
	right := []string{"1A", "2A", "3A", "4A", "5A", "6A", "7A", "8A", "9A"}
	rightValid := []bool{true, true, true, true, true, true, true, true, false}
	out := make([]bool, 9)
	outValid := []bool{true, true, true, true, false, true, true, true, true}

	tb := New(2, 2, 2, 2, 1)
	require.NoError(t, PushWithBitmap(tb, d, left, leftValid))   // column 0
	require.NoError(t, PushWithBitmap(tb, d, right, rightValid)) // column 1
	require.NoError(t, PushMutWithBitmap(tb, d, out, outValid))  // column 2
	require.NoError(t, tb.PushIndex(fivePartitionIndex(), []int{1}))

	require.NoError(t, tb.Op(d, "==", 2, []int{1, 0}))

	got, err := tb.MaterializeAsString(d, 2)
	require.NoError(t, err)
	want := []string{"true", "(null)", "true", "false", "true", "false", "true", "false", "(null)"}
	assert.Equal(t, want, got)
}

func TestFilterOverStrings(t *testing.T) {
	d := ops.NewDictionary()

	c0 := []string{"1A", "2A", "3A", "4A", "5A", "6A", "7A", "8A", "9A"}
	c0Valid := []bool{true, false, true, true, true, true, true, true, true}
	c1 := []string{"1A", "2A", "3A", "4A", "5A", "6A", "7A", "8A", "9A"}
	c1Valid := []bool{true, true, true, true, true, true, true, true, false}

	tb := New(2, 2, 2, 2, 1)
	require.NoError(t, PushWithBitmap(tb, d, c0, c0Valid))
	require.NoError(t, PushWithBitmap(tb, d, c1, c1Valid))
	require.NoError(t, tb.PushIndex(fivePartitionIndex(), []int{1}))

	require.NoError(t, tb.Filter(d, NewExpression("==", 0, 1)))

	got, err := tb.MaterializeAsString(d, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"1A", "3A", "5A", "7A"}, got)

	got, err = tb.MaterializeAsString(d, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"1A", "3A", "5A", "7A"}, got)
	assert.Equal(t, 4, tb.Rows())
}

func TestFilterAllTrueIsIdentity(t *testing.T) {
	d := ops.NewDictionary()
	values := []uint32{4, 5, 6, 7}

	tb := New(2, 2)
	require.NoError(t, Push(tb, d, values))

	require.NoError(t, tb.Filter(d, NewExpression("==", 0, 0)))
	got, _, err := Materialize[uint32](tb, d, 0)
	require.NoError(t, err)
	assert.Equal(t, values, got)
	assert.Equal(t, 4, tb.Rows())

	// Filtering again through the now-existing indexes changes nothing.
	require.NoError(t, tb.Filter(d, NewExpression("==", 0, 0)))
	got, _, err = Materialize[uint32](tb, d, 0)
	require.NoError(t, err)
	assert.Equal(t, values, got)
}

func TestExpressionWithConstant(t *testing.T) {
	d := ops.NewDictionary()

	c0 := []uint32{1, 2, 3, 4, 5, 7, 7, 8, 9}
	c0Valid := []bool{true, true, true, true, true, true, true, true, false}
	c1 := []uint32{1, 2, 3, 4, 5, 6, 7, 8, 9}
	c1Valid := []bool{true, false, true, true, true, true, true, true, true}
	c2 := []uint32{1, 2, 3, 4, 5, 6, 7, 8, 9}
	c2Valid := []bool{true, true, true, true, false, true, true, true, true}

	tb := New(2, 2, 2, 2, 1)
	require.NoError(t, PushWithBitmap(tb, d, c0, c0Valid))
	require.NoError(t, PushWithBitmap(tb, d, c1, c1Valid))
	require.NoError(t, PushMutWithBitmap(tb, d, c2, c2Valid))
	require.NoError(t, tb.PushIndex(fivePartitionIndex(), []int{0}))

	e := NewExpression("<", 500, 1000)
	require.NoError(t, e.ExpandNode(500, "+", 0, 500))
	require.NoError(t, e.ExpandNode(500, "+", 1, 2))
	threshold, err := ops.NewConst(d, uint32(16))
	require.NoError(t, err)
	require.NoError(t, e.ExpandNodeAsConst(1000, threshold))

	require.NoError(t, tb.AddExpressionAsNewColumn(d, e))

	got, err := tb.MaterializeAsString(d, 3)
	require.NoError(t, err)
	want := []string{"true", "(null)", "true", "true", "(null)", "false", "false", "false", "(null)"}
	assert.Equal(t, want, got)
}

func TestExpandNodeMissingColumn(t *testing.T) {
	e := NewExpression("+", 0, 1)
	require.Error(t, e.ExpandNode(7, "+", 0, 1))

	d := ops.NewDictionary()
	k, err := ops.NewConst(d, uint32(1))
	require.NoError(t, err)
	require.Error(t, e.ExpandNodeAsConst(7, k))
}

func TestEvalRejectsAssignOp(t *testing.T) {
	d := ops.NewDictionary()
	tb := New(2)
	require.NoError(t, Push(tb, d, []uint32{1, 2}))

	err := tb.Filter(d, NewExpression("+=", 0, 0))
	require.Error(t, err)
}
