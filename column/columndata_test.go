package column

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinaryColumnInit(t *testing.T) {
	names := []string{"Jane", "Merry", "", "Christopher"}
	d := NewBinary(names)

	require.True(t, d.IsBinary())
	require.True(t, d.IsOwned())
	bin, err := BinaryRef[string](d)
	require.NoError(t, err)

	var wantBytes []byte
	wantLens := make([]int, 0, len(names))
	for _, s := range names {
		wantBytes = append(wantBytes, s...)
		wantLens = append(wantLens, len(s))
	}
	assert.Equal(t, wantBytes, bin.Data)
	assert.Equal(t, wantLens, bin.Lens)
	assert.Equal(t, len(names), d.Len())
}

func TestBinaryColumnWrongTypeDowncast(t *testing.T) {
	d := NewBinary([]string{"Jane", "Merry"})

	_, err := BinaryRef[int](d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "string")
	assert.Contains(t, err.Error(), "int")

	_, err = BinaryMut[uint64](d)
	require.Error(t, err)
}

func TestSizedDowncasts(t *testing.T) {
	d := NewSized([]uint32{1, 2, 3})

	s, err := SizedRef[uint32](d)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 3}, s)

	_, err = SizedRef[uint64](d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uint32")
	assert.Contains(t, err.Error(), "uint64")

	m, err := SizedMut[uint32](d)
	require.NoError(t, err)
	m[0] = 9
	s, err = SizedRef[uint32](d)
	require.NoError(t, err)
	assert.Equal(t, uint32(9), s[0])

	vec, err := SizedVec[uint32](d)
	require.NoError(t, err)
	*vec = append(*vec, 4)
	assert.Equal(t, 4, d.Len())
}

func TestSizedSliceIsReadOnlyShape(t *testing.T) {
	backing := []uint32{1, 2, 3}
	d := NewSizedSlice(backing)

	_, err := SizedMut[uint32](d)
	require.Error(t, err)
	_, err = SizedVec[uint32](d)
	require.Error(t, err)

	dm := NewSizedSliceMut(backing)
	m, err := SizedMut[uint32](dm)
	require.NoError(t, err)
	m[2] = 7
	assert.Equal(t, uint32(7), backing[2])
	_, err = SizedVec[uint32](dm)
	require.Error(t, err)
}

func TestUninitLifecycle(t *testing.T) {
	d := NewSizedUninit[uint64](4)
	require.True(t, d.IsUninit())

	_, err := SizedRef[uint64](d)
	require.Error(t, err)

	m, err := SizedMut[uint64](d)
	require.NoError(t, err)
	for i := range m {
		m[i] = uint64(i)
	}

	require.Error(t, AssumeInit[uint32](d))
	require.NoError(t, AssumeInit[uint64](d))
	s, err := SizedRef[uint64](d)
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 1, 2, 3}, s)
}

func TestAssumeInitRejectsReadOnlyVariants(t *testing.T) {
	d := NewSizedSlice([]uint32{1})
	require.Error(t, AssumeInit[uint32](d))

	c := NewSizedConst(uint32(1))
	require.Error(t, AssumeInit[uint32](c))
}

func TestSplitOffLeftSized(t *testing.T) {
	backing := []uint32{1, 2, 3, 4, 5}
	d := NewSizedSlice(backing)

	left, err := SplitOffLeft[uint32](d, 2)
	require.NoError(t, err)

	l, err := SizedRef[uint32](left)
	require.NoError(t, err)
	r, err := SizedRef[uint32](d)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2}, l)
	assert.Equal(t, []uint32{3, 4, 5}, r)
	assert.Equal(t, backing, append(append([]uint32{}, l...), r...))

	_, err = SplitOffLeft[uint32](d, 10)
	require.Error(t, err)
	_, err = SplitOffLeft[uint64](d, 1)
	require.Error(t, err)
}

func TestSplitOffLeftBinary(t *testing.T) {
	names := []string{"ash", "birch", "cedar", "oak"}
	owned := NewBinary(names)
	bin, err := BinaryRef[string](owned)
	require.NoError(t, err)

	d, err := NewBinarySlice[string](0, bin.Data, bin.StartPos, bin.Lens)
	require.NoError(t, err)

	left, err := SplitOffLeft[string](d, 2)
	require.NoError(t, err)

	lbin, err := BinaryRef[string](left)
	require.NoError(t, err)
	rbin, err := BinaryRef[string](d)
	require.NoError(t, err)

	assert.Equal(t, 2, lbin.Len())
	assert.Equal(t, 2, rbin.Len())
	assert.Equal(t, len("ashbirch"), rbin.Offset)

	for k, want := range []string{"ash", "birch"} {
		assert.Equal(t, want, string(lbin.Bytes(k)))
	}
	for k, want := range []string{"cedar", "oak"} {
		assert.Equal(t, want, string(rbin.Bytes(k)))
	}
}

func TestBinaryLayoutInvariant(t *testing.T) {
	names := []string{"a", "bc", "", "defg"}
	d := NewBinary(names)
	bin, err := BinaryRef[string](d)
	require.NoError(t, err)

	require.Equal(t, len(bin.StartPos), len(bin.Lens))
	for k := range bin.Lens {
		start := bin.StartPos[k] - bin.Offset
		assert.GreaterOrEqual(t, start, 0)
		assert.LessOrEqual(t, start+bin.Lens[k], len(bin.Data))
	}

	_, err = NewBinarySlice[string](0, []byte("ab"), []int{0, 1}, []int{1, 5})
	require.Error(t, err)
	_, err = NewBinarySlice[string](0, []byte("ab"), []int{0}, []int{1, 1})
	require.Error(t, err)
}

func TestBinaryToConst(t *testing.T) {
	multi := NewBinary([]string{"a", "b"})
	require.Error(t, multi.BinaryToConst())

	single := NewBinary([]string{"only"})
	require.NoError(t, single.BinaryToConst())
	assert.Equal(t, BinaryConst, single.Variant())
	assert.True(t, single.IsConst())

	sized := NewSized([]uint32{1})
	require.Error(t, sized.BinaryToConst())
}

func TestVariantPredicates(t *testing.T) {
	cases := []struct {
		name    string
		data    *Data
		binary  bool
		isConst bool
		owned   bool
	}{
		{"owned", NewSized([]uint8{1}), false, false, true},
		{"slice", NewSizedSlice([]uint8{1}), false, false, false},
		{"const", NewSizedConst(uint8(1)), false, true, false},
		{"binary owned", NewBinary([]string{"x"}), true, false, true},
		{"binary const", NewBinaryConst("x"), true, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.binary, tc.data.IsBinary())
			assert.Equal(t, !tc.binary, tc.data.IsSized())
			assert.Equal(t, tc.isConst, tc.data.IsConst())
			assert.Equal(t, tc.owned, tc.data.IsOwned())
		})
	}
}
