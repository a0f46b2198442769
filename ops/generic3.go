package ops

import (
	"radix/column"
)

// Assign3SizedSizedSized writes f over two sized sources into a sized
// destination. Insert semantics apply when the destination is owned and
// empty; the output length is then the longest source.
func Assign3SizedSizedSized[T1, T2, T3 any](c1 *column.Wrapper, input []InputColumn, bitmapRequired bool, f func(v2 T2, ok2 bool, v3 T3, ok3 bool) (T1, bool)) error {
	src2, err := ReadFromInput[T2](&input[0])
	if err != nil {
		return err
	}
	src3, err := ReadFromInput[T3](&input[1])
	if err != nil {
		return err
	}

	if c1.Data().IsOwned() && c1.Data().Len() == 0 {
		length := max(src2.Len(), src3.Len())
		src2.UpdateLenIfConst(length)
		src3.UpdateLenIfConst(length)
		src2.checkLen(length)
		src3.checkLen(length)
		dst, err := NewInsertColumn[T1](c1, bitmapRequired, length)
		if err != nil {
			return err
		}
		i := 0
		src2.ForEach(func(v2 T2, ok2 bool) {
			v3, ok3 := src3.At(i)
			nv, nok := f(v2, ok2, v3, ok3)
			dst.append(nv, nok)
			i++
		})
		return nil
	}

	length := c1.Data().Len()
	if err := prepareAssignBitmap(c1, bitmapRequired, length); err != nil {
		return err
	}
	noIndex := column.NoIndex()
	dst, err := NewUpdateColumn[T1](c1, &noIndex)
	if err != nil {
		return err
	}
	src2.UpdateLenIfConst(dst.Len())
	src3.UpdateLenIfConst(dst.Len())
	src2.checkLen(dst.Len())
	src3.checkLen(dst.Len())
	i := 0
	src2.ForEach(func(v2 T2, ok2 bool) {
		v3, ok3 := src3.At(i)
		nv, nok := f(v2, ok2, v3, ok3)
		dst.set(i, nv, nok)
		i++
	})
	return nil
}

// Update3SizedSizedSized mutates a sized destination in lockstep with two
// sized sources.
func Update3SizedSizedSized[T1, T2, T3 any](c1 *column.Wrapper, c1Index *column.Index, input []InputColumn, f func(v *T1, valid *bool, v2 T2, ok2 bool, v3 T3, ok3 bool)) error {
	src2, err := ReadFromInput[T2](&input[0])
	if err != nil {
		return err
	}
	src3, err := ReadFromInput[T3](&input[1])
	if err != nil {
		return err
	}
	dst, err := NewUpdateColumn[T1](c1, c1Index)
	if err != nil {
		return err
	}
	src2.UpdateLenIfConst(dst.Len())
	src3.UpdateLenIfConst(dst.Len())
	src2.checkLen(dst.Len())
	src3.checkLen(dst.Len())
	i := 0
	src2.ForEach(func(v2 T2, ok2 bool) {
		v3, ok3 := src3.At(i)
		dst.mutate(i, func(dv *T1, dok *bool) {
			f(dv, dok, v2, ok2, v3, ok3)
		})
		i++
	})
	return nil
}

// Assign3SizedBinaryBinary writes f over two binary sources, read through
// their byte views, into a sized destination. Insert semantics apply when
// the destination is owned and empty.
func Assign3SizedBinaryBinary[T1 any, T2, T3 column.AsBytes](c1 *column.Wrapper, input []InputColumn, bitmapRequired bool, f func(b2 []byte, ok2 bool, b3 []byte, ok3 bool) (T1, bool)) error {
	src2, err := ReadBinaryFromInput[T2](&input[0])
	if err != nil {
		return err
	}
	src3, err := ReadBinaryFromInput[T3](&input[1])
	if err != nil {
		return err
	}

	if c1.Data().IsOwned() && c1.Data().Len() == 0 {
		length := max(src2.Len(), src3.Len())
		src2.UpdateLenIfConst(length)
		src3.UpdateLenIfConst(length)
		checkKernelLen(src2.Len(), length)
		checkKernelLen(src3.Len(), length)
		dst, err := NewInsertColumn[T1](c1, bitmapRequired, length)
		if err != nil {
			return err
		}
		i := 0
		src2.ForEachBytes(func(b2 []byte, ok2 bool) {
			b3, ok3 := src3.AtBytes(i)
			nv, nok := f(b2, ok2, b3, ok3)
			dst.append(nv, nok)
			i++
		})
		return nil
	}

	length := c1.Data().Len()
	if err := prepareAssignBitmap(c1, bitmapRequired, length); err != nil {
		return err
	}
	noIndex := column.NoIndex()
	dst, err := NewUpdateColumn[T1](c1, &noIndex)
	if err != nil {
		return err
	}
	src2.UpdateLenIfConst(dst.Len())
	src3.UpdateLenIfConst(dst.Len())
	checkKernelLen(src2.Len(), dst.Len())
	checkKernelLen(src3.Len(), dst.Len())
	i := 0
	src2.ForEachBytes(func(b2 []byte, ok2 bool) {
		b3, ok3 := src3.AtBytes(i)
		nv, nok := f(b2, ok2, b3, ok3)
		dst.set(i, nv, nok)
		i++
	})
	return nil
}
