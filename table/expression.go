package table

import (
	"fmt"
	"reflect"

	"radix/column"
	"radix/ops"
)

type exprInputKind uint8

const (
	inputColumn exprInputKind = iota
	inputConst
	inputExpr
)

// ExpressionInput is one operand of an expression node: a table column, a
// borrowed constant column, or a sub-expression evaluated to an owned
// intermediate.
type ExpressionInput struct {
	kind     exprInputKind
	colID    int
	constCol *column.Wrapper
	expr     *TableExpression
}

// Col references table column id.
func Col(id int) ExpressionInput {
	return ExpressionInput{kind: inputColumn, colID: id}
}

// ConstInput references a borrowed single-element column.
func ConstInput(c *column.Wrapper) ExpressionInput {
	return ExpressionInput{kind: inputConst, constCol: c}
}

// Subexpr wraps a subtree as an operand.
func Subexpr(e *TableExpression) ExpressionInput {
	return ExpressionInput{kind: inputExpr, expr: e}
}

// TableExpression is a tree of operands under an operation name. A
// non-empty PartitionBy list turns the operation into a grouped
// aggregate: the partition-by operands are dense-grouped first and the
// kernel receives the group ids and group count as trailing inputs.
type TableExpression struct {
	Op          string
	Inputs      []ExpressionInput
	PartitionBy []ExpressionInput
}

// NewExpression builds a flat expression over table columns.
func NewExpression(op string, colIDs ...int) *TableExpression {
	e := &TableExpression{Op: op}
	for _, id := range colIDs {
		e.Inputs = append(e.Inputs, Col(id))
	}
	return e
}

// ExpandNode replaces the first occurrence of column oldColID in the tree
// with a new sub-expression over newColIDs.
func (e *TableExpression) ExpandNode(oldColID int, newOp string, newColIDs ...int) error {
	for i := range e.Inputs {
		switch e.Inputs[i].kind {
		case inputColumn:
			if e.Inputs[i].colID == oldColID {
				e.Inputs[i] = Subexpr(NewExpression(newOp, newColIDs...))
				return nil
			}
		case inputExpr:
			if e.Inputs[i].expr.ExpandNode(oldColID, newOp, newColIDs...) == nil {
				return nil
			}
		}
	}
	return fmt.Errorf("column %d not found in expression tree", oldColID)
}

// ExpandNodeAsConst replaces the first occurrence of column oldColID with
// a borrowed constant column.
func (e *TableExpression) ExpandNodeAsConst(oldColID int, constCol *column.Wrapper) error {
	for i := range e.Inputs {
		switch e.Inputs[i].kind {
		case inputColumn:
			if e.Inputs[i].colID == oldColID {
				e.Inputs[i] = ConstInput(constCol)
				return nil
			}
		case inputExpr:
			if e.Inputs[i].expr.ExpandNodeAsConst(oldColID, constCol) == nil {
				return nil
			}
		}
	}
	return fmt.Errorf("column %d not found in expression tree", oldColID)
}

// resolveOperand turns one expression input into a kernel operand for a
// single partition.
func (e *TableExpression) resolveOperand(in *ExpressionInput, d *ops.Dictionary, buf *ColumnBuffer, columns []*column.Wrapper, indexes []column.Index, colIndexMap map[int]int, rows int) (ops.InputColumn, error) {
	switch in.kind {
	case inputColumn:
		if in.colID >= len(columns) {
			return ops.InputColumn{}, fmt.Errorf("expression references column %d, the table has %d columns", in.colID, len(columns))
		}
		if slot, ok := colIndexMap[in.colID]; ok {
			return ops.Ref(columns[in.colID], &indexes[slot]), nil
		}
		none := column.NoIndex()
		return ops.Ref(columns[in.colID], &none), nil
	case inputConst:
		none := column.NoIndex()
		return ops.Ref(in.constCol, &none), nil
	default:
		sub, _, err := in.expr.eval(d, buf, columns, indexes, colIndexMap, rows)
		if err != nil {
			return ops.InputColumn{}, err
		}
		return ops.OwnedInput(sub), nil
	}
}

// eval evaluates the tree for one partition of rows rows, returning the
// output column and, when PartitionBy applied, the dense group-id index
// addressing it.
func (e *TableExpression) eval(d *ops.Dictionary, buf *ColumnBuffer, columns []*column.Wrapper, indexes []column.Index, colIndexMap map[int]int, rows int) (*column.Wrapper, *column.Index, error) {
	isAssign, err := d.IsAssign(e.Op)
	if err != nil {
		return nil, nil, err
	}
	if isAssign {
		return nil, nil, fmt.Errorf("assign operation %q cannot be evaluated as an expression", e.Op)
	}

	inputs := make([]ops.InputColumn, 0, len(e.Inputs)+2)
	for i := range e.Inputs {
		in, err := e.resolveOperand(&e.Inputs[i], d, buf, columns, indexes, colIndexMap, rows)
		if err != nil {
			return nil, nil, err
		}
		inputs = append(inputs, in)
	}

	// The signature is resolved from the declared operands; grouping
	// inputs are appended afterwards.
	types := make([]reflect.Type, len(inputs))
	for i := range inputs {
		types[i] = inputs[i].Col.Data().ItemType()
	}
	sig := ops.Sig(e.Op, types...)
	op, err := d.Lookup(sig)
	if err != nil {
		return nil, nil, err
	}

	var outIndex *column.Index
	if len(e.PartitionBy) > 0 {
		groupIDs := make([]int, rows)
		hashBuf := column.NewHashMapBuffer()
		binMap := column.NewBinaryGroupMap()
		for i := range e.PartitionBy {
			in, err := e.resolveOperand(&e.PartitionBy[i], d, buf, columns, indexes, colIndexMap, rows)
			if err != nil {
				return nil, nil, err
			}
			if err := ops.GroupIn(d, in.Col, in.Index, &groupIDs, hashBuf, binMap); err != nil {
				return nil, nil, err
			}
			if in.Owned {
				buf.Push(d, in.Col)
			}
		}
		groups := densifyGroups(groupIDs)

		ix := column.NewIndex(groupIDs)
		outIndex = &ix

		gidCol := column.NewWrapper(column.NewSizedSlice(groupIDs))
		countCol, err := ops.NewConst(d, groups)
		if err != nil {
			return nil, nil, err
		}
		none := column.NoIndex()
		inputs = append(inputs, ops.Ref(gidCol, &none), ops.Ref(countCol, &none))
	}

	output, err := buf.Pop(d, op.OutputType)
	if err != nil {
		return nil, nil, err
	}
	noIndex := column.NoIndex()
	if err := op.F(output, &noIndex, inputs); err != nil {
		return nil, nil, err
	}
	for i := range inputs {
		if inputs[i].Owned {
			buf.Push(d, inputs[i].Col)
		}
	}
	return output, outIndex, nil
}

// densifyGroups renumbers first-occurrence group ids to a dense 0..G and
// returns G. A cell equal to its own position marks the first row of a
// new group; every other cell points at an earlier, already renumbered
// row.
func densifyGroups(ids []int) int {
	count := 0
	for i, id := range ids {
		if id == i {
			ids[i] = count
			count++
		} else {
			ids[i] = ids[id]
		}
	}
	return count
}
