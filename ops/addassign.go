package ops

import (
	"radix/column"
)

// unsigned covers the fixed-width integer element types arithmetic
// kernels are registered for. Arithmetic wraps on overflow.
type unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint
}

func registerAddAssign(d *Dictionary) {
	addAssignFor[uint8](d)
	addAssignFor[uint16](d)
	addAssignFor[uint32](d)
	addAssignFor[uint64](d)
	addAssignFor[uint](d)
}

func addAssignFor[T unsigned](d *Dictionary) {
	sig := Sig("+=", TypeOf[T](), TypeOf[T]())
	d.mustRegister(sig, Operation{
		F: func(c1 *column.Wrapper, c1Index *column.Index, input []InputColumn) error {
			return Update2SizedSized[T, T](c1, c1Index, input, func(v *T, valid *bool, s T, sok bool) {
				if *valid {
					*v += s
				} else {
					*v = 0
				}
				*valid = *valid && sok
			})
		},
		OutputType:              TypeOf[T](),
		IsAssign:                true,
		AssociatedInputSwitchOp: "+=",
	})
}
