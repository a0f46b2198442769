package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radix/column"
)

func TestSignatureString(t *testing.T) {
	s := Sig("+", TypeOf[uint32](), TypeOf[uint32]())
	assert.Equal(t, "+(uint32, uint32)", s.String())
	assert.Equal(t, "+", s.OpName())
	assert.Equal(t, 2, s.NumOperands())

	internal := Sig("", TypeOf[string]())
	assert.Equal(t, "<internal>(string)", internal.String())
}

func TestLookupFailureReportsFullSignature(t *testing.T) {
	d := NewDictionary()
	_, err := d.Lookup(Sig("%", TypeOf[uint32](), TypeOf[uint32]()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "%(uint32, uint32)")
}

func TestInternalLookupFailure(t *testing.T) {
	d := NewDictionary()
	_, err := d.Internal(TypeOf[float64]())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "float64")
}

func TestRegisterRejectsInconsistentAssignFlag(t *testing.T) {
	d := NewDictionary()
	err := d.Register(Sig("+=", TypeOf[uint8](), TypeOf[uint16]()), Operation{
		F:          func(*column.Wrapper, *column.Index, []InputColumn) error { return nil },
		OutputType: TypeOf[uint8](),
		IsAssign:   false,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "+=")
}

func TestRegisterRejectsDuplicateSignature(t *testing.T) {
	d := NewDictionary()
	err := d.Register(Sig("+", TypeOf[uint32](), TypeOf[uint32]()), Operation{
		F:          func(*column.Wrapper, *column.Index, []InputColumn) error { return nil },
		OutputType: TypeOf[uint32](),
	})
	require.Error(t, err)
}

func TestIsAssign(t *testing.T) {
	d := NewDictionary()

	isAssign, err := d.IsAssign("+=")
	require.NoError(t, err)
	assert.True(t, isAssign)

	isAssign, err = d.IsAssign("==")
	require.NoError(t, err)
	assert.False(t, isAssign)

	_, err = d.IsAssign("nonexistent")
	require.Error(t, err)
}

func TestConstructionThroughDictionary(t *testing.T) {
	d := NewDictionary()

	c, err := NewFromVec(d, []uint32{1, 2, 3})
	require.NoError(t, err)
	assert.True(t, c.Data().IsOwned())
	n, err := Len(d, c)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	s, err := NewFromSlice(d, []string{"ash", "oak"})
	require.NoError(t, err)
	assert.True(t, s.IsBinary(), "string input goes to the variable-length layout")
	n, err = Len(d, s)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	k, err := NewConst(d, uint64(5))
	require.NoError(t, err)
	assert.True(t, k.Data().IsConst())

	v, err := ToConst[uint64](d, k)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), v)

	sk, err := NewConst(d, "pine")
	require.NoError(t, err)
	sv, err := ToConst[string](d, sk)
	require.NoError(t, err)
	assert.Equal(t, "pine", sv)

	_, err = ToConst[uint64](d, c)
	require.Error(t, err)
}

func TestTruncateKeepsOwnedOnly(t *testing.T) {
	d := NewDictionary()

	c, err := NewFromVec(d, []uint32{1, 2, 3})
	require.NoError(t, err)
	require.NoError(t, Truncate(d, c))
	n, err := Len(d, c)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	borrowed, err := NewFromSlice(d, []uint32{1})
	require.NoError(t, err)
	require.Error(t, Truncate(d, borrowed))
}
