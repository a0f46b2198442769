package ops

import (
	"errors"
	"fmt"
	"reflect"

	"radix/column"
)

// The helpers in this file are the wrapper-level entry points external
// layers use: data-driven construction through the dictionary, the
// by-name kernel dispatch, and the internal services routed by element
// type.

// NewFromVec builds an owned column from data, taking over the slice.
func NewFromVec[T any](d *Dictionary, data []T) (*column.Wrapper, error) {
	iop, err := d.Internal(TypeOf[T]())
	if err != nil {
		return nil, err
	}
	cd, err := iop.New(data)
	if err != nil {
		return nil, err
	}
	return column.NewWrapper(cd), nil
}

// NewFromSlice builds a column borrowing data read-only.
func NewFromSlice[T any](d *Dictionary, data []T) (*column.Wrapper, error) {
	iop, err := d.Internal(TypeOf[T]())
	if err != nil {
		return nil, err
	}
	cd, err := iop.NewRef(data)
	if err != nil {
		return nil, err
	}
	return column.NewWrapper(cd), nil
}

// NewFromSliceMut builds a column borrowing data writable.
func NewFromSliceMut[T any](d *Dictionary, data []T) (*column.Wrapper, error) {
	iop, err := d.Internal(TypeOf[T]())
	if err != nil {
		return nil, err
	}
	cd, err := iop.NewMut(data)
	if err != nil {
		return nil, err
	}
	return column.NewWrapper(cd), nil
}

// NewConst builds a constant column from a single value.
func NewConst[T any](d *Dictionary, v T) (*column.Wrapper, error) {
	iop, err := d.Internal(TypeOf[T]())
	if err != nil {
		return nil, err
	}
	cd, err := iop.NewConst(v)
	if err != nil {
		return nil, err
	}
	return column.NewWrapper(cd), nil
}

// NewOwnedWithCapacity builds an empty owned column of the given element
// type through its service table.
func NewOwnedWithCapacity(d *Dictionary, itemType reflect.Type, withBitmap bool, capacity, binaryCapacity int) (*column.Wrapper, error) {
	iop, err := d.Internal(itemType)
	if err != nil {
		return nil, err
	}
	return iop.NewOwnedWithCapacity(capacity, binaryCapacity, withBitmap), nil
}

// Len returns the element count of c through its service table.
func Len(d *Dictionary, c *column.Wrapper) (int, error) {
	iop, err := d.Internal(c.Data().ItemType())
	if err != nil {
		return 0, err
	}
	return iop.Len(c)
}

// Truncate empties an owned column through its service table.
func Truncate(d *Dictionary, c *column.Wrapper) error {
	iop, err := d.Internal(c.Data().ItemType())
	if err != nil {
		return err
	}
	return iop.Truncate(c)
}

// CopyTo writes src through srcIndex into dst.
func CopyTo(d *Dictionary, src, dst *column.Wrapper, srcIndex *column.Index) error {
	iop, err := d.Internal(src.Data().ItemType())
	if err != nil {
		return err
	}
	return iop.CopyTo(src, dst, srcIndex)
}

// AsString renders targetLen rows of src with srcIndex applied.
func AsString(d *Dictionary, src *column.Wrapper, srcIndex *column.Index, targetLen int) ([]string, []bool, error) {
	iop, err := d.Internal(src.Data().ItemType())
	if err != nil {
		return nil, nil, err
	}
	return iop.AsString(src, srcIndex, targetLen)
}

// HashIn folds per-row hashes of src into dst.
func HashIn(d *Dictionary, src *column.Wrapper, srcIndex *column.Index, dst *[]uint64) error {
	iop, err := d.Internal(src.Data().ItemType())
	if err != nil {
		return err
	}
	return iop.HashIn(src, srcIndex, dst)
}

// GroupIn dense-groups src into dst.
func GroupIn(d *Dictionary, src *column.Wrapper, srcIndex *column.Index, dst *[]int, buf *column.HashMapBuffer, binMap column.BinaryGroupMap) error {
	iop, err := d.Internal(src.Data().ItemType())
	if err != nil {
		return err
	}
	return iop.GroupIn(src, srcIndex, dst, buf, binMap)
}

// ToConst extracts the single value of a constant column.
func ToConst[T any](d *Dictionary, c *column.Wrapper) (T, error) {
	var zero T
	if !c.Data().IsConst() {
		return zero, errors.New("cannot read a non-constant column as a constant value")
	}
	if c.Data().IsSized() {
		s, err := column.SizedRef[T](c.Data())
		if err != nil {
			return zero, err
		}
		return s[0], nil
	}
	out := make([]T, 1)
	dst := column.NewWrapper(column.NewSizedSliceMut(out))
	// The copy reads the payload only; the constant's bitmap is the
	// caller's concern.
	bare := column.NewWrapper(c.Data())
	noIndex := column.NoIndex()
	if err := CopyTo(d, bare, dst, &noIndex); err != nil {
		return zero, err
	}
	return out[0], nil
}

// Op runs the named kernel in place on c1 using the given inputs. For an
// assign operation the destination element type leads the signature.
func Op(d *Dictionary, name string, c1 *column.Wrapper, c1Index *column.Index, input []InputColumn) error {
	isAssign, err := d.IsAssign(name)
	if err != nil {
		return err
	}
	types := make([]reflect.Type, 0, len(input)+1)
	if isAssign {
		types = append(types, c1.Data().ItemType())
	}
	for i := range input {
		types = append(types, input[i].Col.Data().ItemType())
	}
	sig := Sig(name, types...)
	op, err := d.Lookup(sig)
	if err != nil {
		return fmt.Errorf("kernel dispatch failed: %w", err)
	}
	return op.F(c1, c1Index, input)
}
