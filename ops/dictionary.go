package ops

import (
	"encoding/binary"
	"fmt"
	"reflect"
)

// Dictionary is the immutable operation registry. It maps signatures to
// kernels, holds the per-type internal service tables, and caches the
// assign flag per operation name. Construction wires the default
// operation set; Register extends it before first use.
type Dictionary struct {
	internal   map[Signature]InternalOps
	ops        map[Signature]Operation
	opIsAssign map[string]bool
}

// NewDictionary builds a dictionary with the default operation set:
// arithmetic, comparisons, and grouped aggregates over the supported
// element types, plus the internal service family for each type.
func NewDictionary() *Dictionary {
	d := &Dictionary{
		internal:   make(map[Signature]InternalOps),
		ops:        make(map[Signature]Operation),
		opIsAssign: make(map[string]bool),
	}
	registerInternalOps(d)
	registerAddAssign(d)
	registerAdd(d)
	registerComparisons(d)
	registerAggregates(d)
	return d
}

func registerInternalOps(d *Dictionary) {
	d.registerInternal(TypeOf[uint8](), newSizedOps(func(v uint8, b []byte) int {
		b[0] = v
		return 1
	}))
	d.registerInternal(TypeOf[uint16](), newSizedOps(func(v uint16, b []byte) int {
		binary.LittleEndian.PutUint16(b, v)
		return 2
	}))
	d.registerInternal(TypeOf[uint32](), newSizedOps(func(v uint32, b []byte) int {
		binary.LittleEndian.PutUint32(b, v)
		return 4
	}))
	d.registerInternal(TypeOf[uint64](), newSizedOps(func(v uint64, b []byte) int {
		binary.LittleEndian.PutUint64(b, v)
		return 8
	}))
	d.registerInternal(TypeOf[uint](), newSizedOps(func(v uint, b []byte) int {
		binary.LittleEndian.PutUint64(b, uint64(v))
		return 8
	}))
	d.registerInternal(TypeOf[int](), newSizedOps(func(v int, b []byte) int {
		binary.LittleEndian.PutUint64(b, uint64(v))
		return 8
	}))
	d.registerInternal(TypeOf[bool](), newSizedOps(func(v bool, b []byte) int {
		b[0] = 0
		if v {
			b[0] = 1
		}
		return 1
	}))
	d.registerInternal(TypeOf[string](), newBinaryOps[string]())
}

func (d *Dictionary) registerInternal(t reflect.Type, iop InternalOps) {
	d.internal[Sig("", t)] = iop
}

// Internal looks up the service table for an element type.
func (d *Dictionary) Internal(t reflect.Type) (InternalOps, error) {
	iop, ok := d.internal[Sig("", t)]
	if !ok {
		return nil, fmt.Errorf("no internal operations registered for signature %s", Sig("", t))
	}
	return iop, nil
}

// Register adds an operation under sig. The assign flag must agree with
// every previously registered signature of the same name.
func (d *Dictionary) Register(sig Signature, op Operation) error {
	if prev, ok := d.opIsAssign[sig.OpName()]; ok && prev != op.IsAssign {
		return fmt.Errorf("inconsistent assign kinds for operation %q", sig.OpName())
	}
	if _, dup := d.ops[sig]; dup {
		return fmt.Errorf("operation already registered for signature %s", sig)
	}
	d.ops[sig] = op
	d.opIsAssign[sig.OpName()] = op.IsAssign
	return nil
}

// mustRegister is Register for the built-in set, where a conflict is a
// programming error.
func (d *Dictionary) mustRegister(sig Signature, op Operation) {
	if err := d.Register(sig, op); err != nil {
		panic(err)
	}
}

// Lookup resolves a signature to its operation.
func (d *Dictionary) Lookup(sig Signature) (Operation, error) {
	op, ok := d.ops[sig]
	if !ok {
		return Operation{}, fmt.Errorf("operation not found in dictionary: %s", sig)
	}
	return op, nil
}

// IsAssign reports whether the named operation assigns in place.
func (d *Dictionary) IsAssign(name string) (bool, error) {
	v, ok := d.opIsAssign[name]
	if !ok {
		return false, fmt.Errorf("operation %q missing from the dictionary", name)
	}
	return v, nil
}
