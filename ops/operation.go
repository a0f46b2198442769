package ops

import (
	"reflect"

	"radix/column"
)

// InputColumn is one operand of a kernel invocation: a column together
// with the row index to apply at read time. Owned marks intermediates
// produced during expression evaluation; the evaluator returns those to
// the scratch pool after the kernel runs.
type InputColumn struct {
	Col   *column.Wrapper
	Index *column.Index
	Owned bool
}

// Ref builds a borrowed operand.
func Ref(c *column.Wrapper, ix *column.Index) InputColumn {
	return InputColumn{Col: c, Index: ix}
}

// OwnedInput builds an operand that transfers ownership of an
// intermediate column.
func OwnedInput(c *column.Wrapper) InputColumn {
	ix := column.NoIndex()
	return InputColumn{Col: c, Index: &ix, Owned: true}
}

// OpFunc is a kernel: it reads the inputs and writes the destination,
// honoring the destination index when the operation assigns in place.
type OpFunc func(c1 *column.Wrapper, c1Index *column.Index, input []InputColumn) error

// Operation pairs a kernel with its dispatch metadata.
type Operation struct {
	F OpFunc
	// OutputType is the element type the kernel produces.
	OutputType reflect.Type
	// IsAssign marks operations that mutate their first column in place.
	// The flag must agree across every signature of the same name.
	IsAssign bool
	// AssociatedAssignOp names the in-place form of this operation, if one
	// exists ("+" carries "+=").
	AssociatedAssignOp string
	// AssociatedInputSwitchOp names the operation equivalent to this one
	// with the two inputs swapped ("<" carries ">").
	AssociatedInputSwitchOp string
}
