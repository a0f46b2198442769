package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radix/column"
)

func collect[T any](r *ReadColumn[T]) ([]T, []bool) {
	var vs []T
	var oks []bool
	r.ForEach(func(v T, ok bool) {
		vs = append(vs, v)
		oks = append(oks, ok)
	})
	return vs, oks
}

func TestReadColumnShapes(t *testing.T) {
	data := []uint32{10, 20, 30}
	bitmap := []bool{true, false, true}
	index := []int{2, 0, 2}

	t.Run("dense", func(t *testing.T) {
		c := column.NewWrapper(column.NewSizedSlice(data))
		none := column.NoIndex()
		r, err := NewReadColumn[uint32](c, &none, 1)
		require.NoError(t, err)
		vs, oks := collect(&r)
		assert.Equal(t, []uint32{10, 20, 30}, vs)
		assert.Equal(t, []bool{true, true, true}, oks)
		assert.Equal(t, 3, r.Len())
	})

	t.Run("bitmap", func(t *testing.T) {
		c := column.NewWrapper(column.NewSizedSlice(data))
		c.SetBitmap(column.OptionalFromSlice(bitmap))
		none := column.NoIndex()
		r, err := NewReadColumn[uint32](c, &none, 1)
		require.NoError(t, err)
		_, oks := collect(&r)
		assert.Equal(t, []bool{true, false, true}, oks)
	})

	t.Run("index", func(t *testing.T) {
		c := column.NewWrapper(column.NewSizedSlice(data))
		ix := column.IndexFromSlice(index)
		r, err := NewReadColumn[uint32](c, &ix, 1)
		require.NoError(t, err)
		vs, _ := collect(&r)
		assert.Equal(t, []uint32{30, 10, 30}, vs)
	})

	t.Run("bitmap and index", func(t *testing.T) {
		c := column.NewWrapper(column.NewSizedSlice(data))
		c.SetBitmap(column.OptionalFromSlice(bitmap))
		ix := column.IndexFromSlice([]int{1, 0, 1})
		r, err := NewReadColumn[uint32](c, &ix, 1)
		require.NoError(t, err)
		vs, oks := collect(&r)
		assert.Equal(t, []uint32{20, 10, 20}, vs)
		assert.Equal(t, []bool{false, true, false}, oks)
	})

	t.Run("option index reads absent as null", func(t *testing.T) {
		c := column.NewWrapper(column.NewSizedSlice(data))
		ix := column.NewIndexOption([]column.OptionIndex{
			{Pos: 2, Valid: true},
			{},
			{Pos: 1, Valid: true},
		})
		r, err := NewReadColumn[uint32](c, &ix, 1)
		require.NoError(t, err)
		vs, oks := collect(&r)
		assert.Equal(t, []bool{true, false, true}, oks)
		assert.Equal(t, uint32(30), vs[0])
		assert.Equal(t, uint32(20), vs[2])
	})

	t.Run("const stretches to target", func(t *testing.T) {
		c := column.NewWrapper(column.NewSizedConst(uint32(7)))
		none := column.NoIndex()
		r, err := NewReadColumn[uint32](c, &none, 1)
		require.NoError(t, err)
		assert.True(t, r.IsConst())
		r.UpdateLenIfConst(4)
		vs, oks := collect(&r)
		assert.Equal(t, []uint32{7, 7, 7, 7}, vs)
		assert.Equal(t, []bool{true, true, true, true}, oks)
	})

	t.Run("type mismatch", func(t *testing.T) {
		c := column.NewWrapper(column.NewSizedSlice(data))
		none := column.NoIndex()
		_, err := NewReadColumn[uint64](c, &none, 1)
		require.Error(t, err)
	})
}

func collectBytes[T column.AsBytes](r *ReadBinaryColumn[T]) ([]string, []bool) {
	var vs []string
	var oks []bool
	r.ForEachBytes(func(b []byte, ok bool) {
		vs = append(vs, string(b))
		oks = append(oks, ok)
	})
	return vs, oks
}

func TestReadBinaryColumnShapes(t *testing.T) {
	names := []string{"ash", "birch", "cedar"}
	bitmap := []bool{true, false, true}

	t.Run("flat dense", func(t *testing.T) {
		c := column.NewWrapper(column.NewBinary(names))
		none := column.NoIndex()
		r, err := NewReadBinaryColumn[string](c, &none, 1)
		require.NoError(t, err)
		vs, oks := collectBytes(&r)
		assert.Equal(t, names, vs)
		assert.Equal(t, []bool{true, true, true}, oks)
	})

	t.Run("flat bitmap and index", func(t *testing.T) {
		c := column.NewWrapper(column.NewBinary(names))
		c.SetBitmap(column.OptionalFromSlice(bitmap))
		ix := column.IndexFromSlice([]int{1, 2, 1})
		r, err := NewReadBinaryColumn[string](c, &ix, 1)
		require.NoError(t, err)
		vs, oks := collectBytes(&r)
		assert.Equal(t, []string{"birch", "cedar", "birch"}, vs)
		assert.Equal(t, []bool{false, true, false}, oks)
	})

	t.Run("sized storage through byte view", func(t *testing.T) {
		c := column.NewWrapper(column.NewSizedSlice(names))
		c.SetBitmap(column.OptionalFromSlice(bitmap))
		none := column.NoIndex()
		r, err := NewReadBinaryColumn[string](c, &none, 1)
		require.NoError(t, err)
		vs, oks := collectBytes(&r)
		assert.Equal(t, names, vs)
		assert.Equal(t, []bool{true, false, true}, oks)
	})

	t.Run("binary const", func(t *testing.T) {
		c := column.NewWrapper(column.NewBinaryConst("oak"))
		none := column.NoIndex()
		r, err := NewReadBinaryColumn[string](c, &none, 1)
		require.NoError(t, err)
		r.UpdateLenIfConst(3)
		vs, _ := collectBytes(&r)
		assert.Equal(t, []string{"oak", "oak", "oak"}, vs)
	})

	t.Run("option index", func(t *testing.T) {
		c := column.NewWrapper(column.NewBinary(names))
		ix := column.NewIndexOption([]column.OptionIndex{{Pos: 2, Valid: true}, {}})
		r, err := NewReadBinaryColumn[string](c, &ix, 1)
		require.NoError(t, err)
		vs, oks := collectBytes(&r)
		assert.Equal(t, []bool{true, false}, oks)
		assert.Equal(t, "cedar", vs[0])
	})
}

func TestUpdateColumnShapes(t *testing.T) {
	t.Run("assign through index writes underlying rows", func(t *testing.T) {
		data := []uint32{0, 0, 0, 0}
		bitmap := []bool{false, false, false, false}
		c := column.NewWrapper(column.NewSizedSliceMut(data))
		c.SetBitmap(column.OptionalFromSliceMut(bitmap))
		ix := column.IndexFromSlice([]int{3, 1})
		u, err := NewUpdateColumn[uint32](c, &ix)
		require.NoError(t, err)
		require.Equal(t, 2, u.Len())

		u.set(0, 7, true)
		u.set(1, 8, true)
		assert.Equal(t, []uint32{0, 8, 0, 7}, data)
		assert.Equal(t, []bool{false, true, false, true}, bitmap)
	})

	t.Run("option index is rejected", func(t *testing.T) {
		c := column.NewWrapper(column.NewSizedSliceMut([]uint32{0}))
		ix := column.NewIndexOption([]column.OptionIndex{{}})
		_, err := NewUpdateColumn[uint32](c, &ix)
		require.Error(t, err)
	})

	t.Run("read-only storage is rejected", func(t *testing.T) {
		c := column.NewWrapper(column.NewSizedSlice([]uint32{0}))
		none := column.NoIndex()
		_, err := NewUpdateColumn[uint32](c, &none)
		require.Error(t, err)
	})
}

func TestInsertBinaryColumnKeepsLayout(t *testing.T) {
	c := column.NewWrapper(column.NewBinary([]string{}))
	ic, err := NewInsertBinaryColumn[string](c, true, 3, 16)
	require.NoError(t, err)

	ic.appendBytes([]byte("ash"), true)
	ic.appendBytes(nil, false)
	ic.appendBytes([]byte("oak"), true)

	bin, err := column.BinaryRef[string](c.Data())
	require.NoError(t, err)
	require.Equal(t, 3, bin.Len())
	assert.Equal(t, "ash", string(bin.Bytes(0)))
	assert.Equal(t, "", string(bin.Bytes(1)))
	assert.Equal(t, "oak", string(bin.Bytes(2)))

	bm, err := c.Bitmap().Ref()
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, bm)
}
