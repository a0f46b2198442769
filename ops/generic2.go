package ops

import (
	"errors"
	"fmt"

	"radix/column"
)

// The combinators in this file and in generic3.go lift a per-element
// function over one or two source operands into insert, assign, or update
// execution against a destination column. Names count the total columns
// involved, destination included, matching the kernel naming convention.
//
// Length and bitmap policy:
//   - Constant operands stretch to the longest non-constant operand. If
//     every operand is constant, the destination length wins; for an
//     insert the stretched length is one.
//   - An assign against an owned, zero-length destination turns into an
//     insert whose length is the longest source.
//   - bitmapRequired decides whether the destination carries a bitmap
//     afterwards. Owned destinations grow or drop one as needed; borrowed
//     destinations must already match, otherwise the call fails.
//
// Length mismatches past these rules are programming errors in the
// calling kernel and panic.

// prepareAssignBitmap reconciles the destination bitmap with the
// requested bitmap policy before an assign.
func prepareAssignBitmap(c1 *column.Wrapper, bitmapRequired bool, length int) error {
	hasBitmap := c1.Bitmap().IsSome()
	switch {
	case bitmapRequired && !hasBitmap:
		if !c1.Data().IsOwned() {
			return errors.New("bitmap update required, but the destination is a borrowed view without a bitmap")
		}
		c1.SetBitmap(column.NewOptional(make([]bool, length)))
	case !bitmapRequired && hasBitmap:
		if !c1.Data().IsOwned() {
			return errors.New("destination must not carry a bitmap, but the borrowed view has one")
		}
		c1.SetBitmap(column.None[bool]())
	}
	return nil
}

func checkKernelLen(got, want int) {
	if got != want {
		panic(fmt.Sprintf("kernel operand length %d does not match destination length %d", got, want))
	}
}

// Assign2SizedSized writes f over one sized source into a sized
// destination, switching to insert semantics when the destination is
// owned and empty.
func Assign2SizedSized[T1, T2 any](c1 *column.Wrapper, input []InputColumn, bitmapRequired bool, f func(v T2, valid bool) (T1, bool)) error {
	src, err := ReadFromInput[T2](&input[0])
	if err != nil {
		return err
	}
	if c1.Data().IsOwned() && c1.Data().Len() == 0 {
		return insert2SizedSized(c1, &src, bitmapRequired, f)
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
	src.UpdateLenIfConst(dst.Len())
	src.checkLen(dst.Len())
	assignLoop2(&dst, &src, f)
	return nil
}

// Insert2SizedSized appends f over one sized source to an owned sized
// destination.
func Insert2SizedSized[T1, T2 any](c1 *column.Wrapper, input []InputColumn, bitmapRequired bool, f func(v T2, valid bool) (T1, bool)) error {
	src, err := ReadFromInput[T2](&input[0])
	if err != nil {
		return err
	}
	return insert2SizedSized(c1, &src, bitmapRequired, f)
}

func insert2SizedSized[T1, T2 any](c1 *column.Wrapper, src *ReadColumn[T2], bitmapRequired bool, f func(v T2, valid bool) (T1, bool)) error {
	length := src.Len()
	dst, err := NewInsertColumn[T1](c1, bitmapRequired, length)
	if err != nil {
		return err
	}
	src.ForEach(func(v T2, valid bool) {
		nv, nok := f(v, valid)
		dst.append(nv, nok)
	})
	return nil
}

// Update2SizedSized mutates a sized destination in lockstep with one
// sized source. The destination length, through its index when present,
// must equal the source length; constant sources stretch.
func Update2SizedSized[T1, T2 any](c1 *column.Wrapper, c1Index *column.Index, input []InputColumn, f func(v *T1, valid *bool, s T2, svalid bool)) error {
	src, err := ReadFromInput[T2](&input[0])
	if err != nil {
		return err
	}
	dst, err := NewUpdateColumn[T1](c1, c1Index)
	if err != nil {
		return err
	}
	src.UpdateLenIfConst(dst.Len())
	src.checkLen(dst.Len())
	i := 0
	src.ForEach(func(v T2, valid bool) {
		dst.mutate(i, func(dv *T1, dok *bool) {
			f(dv, dok, v, valid)
		})
		i++
	})
	return nil
}

// Assign2SizedBinary writes f over one binary source, read through its
// byte view, into a sized destination. Insert semantics apply when the
// destination is owned and empty.
func Assign2SizedBinary[T1 any, T2 column.AsBytes](c1 *column.Wrapper, input []InputColumn, bitmapRequired bool, f func(b []byte, valid bool) (T1, bool)) error {
	src, err := ReadBinaryFromInput[T2](&input[0])
	if err != nil {
		return err
	}
	if c1.Data().IsOwned() && c1.Data().Len() == 0 {
		length := src.Len()
		dst, err := NewInsertColumn[T1](c1, bitmapRequired, length)
		if err != nil {
			return err
		}
		src.ForEachBytes(func(b []byte, valid bool) {
			nv, nok := f(b, valid)
			dst.append(nv, nok)
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
	src.UpdateLenIfConst(dst.Len())
	checkKernelLen(src.Len(), dst.Len())
	i := 0
	src.ForEachBytes(func(b []byte, valid bool) {
		nv, nok := f(b, valid)
		dst.set(i, nv, nok)
		i++
	})
	return nil
}

// Insert2BinaryBinary appends one binary source to an owned binary
// destination, carrying the byte runs across unchanged through f.
func Insert2BinaryBinary[T1, T2 column.AsBytes](c1 *column.Wrapper, input []InputColumn, bitmapRequired bool, f func(b []byte, valid bool) ([]byte, bool)) error {
	src, err := ReadBinaryFromInput[T2](&input[0])
	if err != nil {
		return err
	}
	length := src.Len()
	totalBytes := 0
	src.ForEachBytes(func(b []byte, _ bool) {
		totalBytes += len(b)
	})
	dst, err := NewInsertBinaryColumn[T1](c1, bitmapRequired, length, totalBytes)
	if err != nil {
		return err
	}
	src.ForEachBytes(func(b []byte, valid bool) {
		nb, nok := f(b, valid)
		dst.appendBytes(nb, nok)
	})
	return nil
}

func assignLoop2[T1, T2 any](dst *UpdateColumn[T1], src *ReadColumn[T2], f func(T2, bool) (T1, bool)) {
	switch dst.shape {
	case upDense:
		i := 0
		src.ForEach(func(v T2, valid bool) {
			nv, _ := f(v, valid)
			dst.data[i] = nv
			i++
		})
	case upBitmap:
		i := 0
		src.ForEach(func(v T2, valid bool) {
			nv, nok := f(v, valid)
			dst.data[i] = nv
			dst.bitmap[i] = nok
			i++
		})
	case upIndex:
		i := 0
		src.ForEach(func(v T2, valid bool) {
			nv, _ := f(v, valid)
			dst.data[dst.index[i]] = nv
			i++
		})
	case upBitmapIndex:
		i := 0
		src.ForEach(func(v T2, valid bool) {
			nv, nok := f(v, valid)
			j := dst.index[i]
			dst.data[j] = nv
			dst.bitmap[j] = nok
			i++
		})
	}
}
