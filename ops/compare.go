package ops

import (
	"bytes"

	"radix/column"
)

func registerComparisons(d *Dictionary) {
	comparisonsFor[uint8](d)
	comparisonsFor[uint16](d)
	comparisonsFor[uint32](d)
	comparisonsFor[uint64](d)
	comparisonsFor[uint](d)
	binaryComparisons[string](d)
}

// comparisonsFor registers the six comparison kernels for a sized type.
// Each carries the operation its inputs can be swapped into.
func comparisonsFor[T unsigned](d *Dictionary) {
	registerCompare[T](d, "==", "==", func(a, b T) bool { return a == b })
	registerCompare[T](d, "<", ">", func(a, b T) bool { return a < b })
	registerCompare[T](d, "<=", ">=", func(a, b T) bool { return a <= b })
	registerCompare[T](d, ">", "<", func(a, b T) bool { return a > b })
	registerCompare[T](d, ">=", "<=", func(a, b T) bool { return a >= b })
}

func registerCompare[T unsigned](d *Dictionary, name, switched string, cmp func(a, b T) bool) {
	sig := Sig(name, TypeOf[T](), TypeOf[T]())
	d.mustRegister(sig, Operation{
		F: func(c1 *column.Wrapper, _ *column.Index, input []InputColumn) error {
			bitmapRequired := input[0].Col.Bitmap().IsSome() || input[1].Col.Bitmap().IsSome()
			return Assign3SizedSizedSized[bool, T, T](c1, input, bitmapRequired, func(v2 T, ok2 bool, v3 T, ok3 bool) (bool, bool) {
				return cmp(v2, v3), ok2 && ok3
			})
		},
		OutputType:              TypeOf[bool](),
		AssociatedInputSwitchOp: switched,
	})
}

// binaryComparisons registers comparison kernels over byte views for a
// variable-length type. Ordering is lexicographic on bytes.
func binaryComparisons[T column.AsBytes](d *Dictionary) {
	registerBinaryCompare[T](d, "==", "==", func(a, b []byte) bool { return bytes.Equal(a, b) })
	registerBinaryCompare[T](d, "<", ">", func(a, b []byte) bool { return bytes.Compare(a, b) < 0 })
	registerBinaryCompare[T](d, "<=", ">=", func(a, b []byte) bool { return bytes.Compare(a, b) <= 0 })
	registerBinaryCompare[T](d, ">", "<", func(a, b []byte) bool { return bytes.Compare(a, b) > 0 })
	registerBinaryCompare[T](d, ">=", "<=", func(a, b []byte) bool { return bytes.Compare(a, b) >= 0 })
}

func registerBinaryCompare[T column.AsBytes](d *Dictionary, name, switched string, cmp func(a, b []byte) bool) {
	sig := Sig(name, TypeOf[T](), TypeOf[T]())
	d.mustRegister(sig, Operation{
		F: func(c1 *column.Wrapper, _ *column.Index, input []InputColumn) error {
			bitmapRequired := input[0].Col.Bitmap().IsSome() || input[1].Col.Bitmap().IsSome()
			return Assign3SizedBinaryBinary[bool, T, T](c1, input, bitmapRequired, func(b2 []byte, ok2 bool, b3 []byte, ok3 bool) (bool, bool) {
				return cmp(b2, b3), ok2 && ok3
			})
		},
		OutputType:              TypeOf[bool](),
		AssociatedInputSwitchOp: switched,
	})
}
