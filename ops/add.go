package ops

import (
	"radix/column"
)

func registerAdd(d *Dictionary) {
	addFor[uint8](d)
	addFor[uint16](d)
	addFor[uint32](d)
	addFor[uint64](d)
	addFor[uint](d)
}

func addFor[T unsigned](d *Dictionary) {
	sig := Sig("+", TypeOf[T](), TypeOf[T]())
	d.mustRegister(sig, Operation{
		F: func(c1 *column.Wrapper, _ *column.Index, input []InputColumn) error {
			bitmapRequired := input[0].Col.Bitmap().IsSome() || input[1].Col.Bitmap().IsSome()
			return Assign3SizedSizedSized[T, T, T](c1, input, bitmapRequired, func(v2 T, ok2 bool, v3 T, ok3 bool) (T, bool) {
				return v2 + v3, ok2 && ok3
			})
		},
		OutputType:         TypeOf[T](),
		AssociatedAssignOp: "+=",
	})
}
