// Package ops implements the operation runtime over typed columns: the
// read, update, and insert views that collapse indexing, bitmap presence,
// and constancy into a handful of iteration shapes, the generic kernel
// combinators built on them, the per-type internal operation tables, and
// the dictionary that dispatches (operation name, operand types) pairs to
// concrete kernels.
package ops

import (
	"fmt"
	"reflect"
	"strings"
)

// maxOperands bounds the operand count a signature can carry.
const maxOperands = 4

// Signature is the dispatch key of the dictionary: an operation name plus
// the ordered element types of its operands. The empty name is reserved
// for the per-type internal service family.
type Signature struct {
	op string
	n  uint8
	in [maxOperands]reflect.Type
}

// Sig builds a signature from an operation name and operand element types.
func Sig(op string, in ...reflect.Type) Signature {
	if len(in) > maxOperands {
		panic(fmt.Sprintf("signature of %q has %d operands, the dictionary supports at most %d", op, len(in), maxOperands))
	}
	s := Signature{op: op, n: uint8(len(in))}
	copy(s.in[:], in)
	return s
}

// TypeOf returns the reflect type of T, for building signatures.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// OpName returns the operation name.
func (s Signature) OpName() string {
	return s.op
}

// NumOperands returns the operand count.
func (s Signature) NumOperands() int {
	return int(s.n)
}

func (s Signature) String() string {
	var b strings.Builder
	if s.op == "" {
		b.WriteString("<internal>")
	} else {
		b.WriteString(s.op)
	}
	b.WriteByte('(')
	for i := 0; i < int(s.n); i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(s.in[i].String())
	}
	b.WriteByte(')')
	return b.String()
}
