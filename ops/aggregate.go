package ops

import (
	"errors"
	"fmt"

	"radix/column"
)

// Aggregate kernels take three inputs: the value column, the dense group
// ids, and a constant holding the group count. The destination must be an
// owned, empty column; it ends up with one cell per group.

func registerAggregates(d *Dictionary) {
	sumFor[uint8](d)
	sumFor[uint16](d)
	sumFor[uint32](d)
	sumFor[uint64](d)
	sumFor[uint](d)
	maxFor[uint8](d)
	maxFor[uint16](d)
	maxFor[uint32](d)
	maxFor[uint64](d)
	maxFor[uint](d)
	countSizedFor[uint8](d)
	countSizedFor[uint16](d)
	countSizedFor[uint32](d)
	countSizedFor[uint64](d)
	countSizedFor[uint](d)
	countBinaryFor[string](d)
}

// groupingInputs unpacks the group-id vector and group count from an
// aggregate's trailing inputs.
func groupingInputs(input []InputColumn) ([]int, int, error) {
	if len(input) != 3 {
		return nil, 0, fmt.Errorf("aggregate kernels take 3 inputs, got %d", len(input))
	}
	groupIDs, err := column.SizedRef[int](input[1].Col.Data())
	if err != nil {
		return nil, 0, err
	}
	if !input[2].Col.Data().IsConst() {
		return nil, 0, errors.New("the group count input of an aggregate must be a constant column")
	}
	counts, err := column.SizedRef[int](input[2].Col.Data())
	if err != nil {
		return nil, 0, err
	}
	return groupIDs, counts[0], nil
}

// aggregateDest verifies the destination and grows it to one zero cell
// per group.
func aggregateDest[T any](c1 *column.Wrapper, groups int) ([]T, error) {
	if !c1.Data().IsOwned() {
		return nil, errors.New("the destination of an aggregate must be an owned column")
	}
	vec, err := column.SizedVec[T](c1.Data())
	if err != nil {
		return nil, err
	}
	if len(*vec) != 0 {
		return nil, errors.New("the destination of an aggregate must be empty")
	}
	*vec = append(*vec, make([]T, groups)...)
	return *vec, nil
}

func sumFor[T unsigned](d *Dictionary) {
	sig := Sig("SUM", TypeOf[T]())
	d.mustRegister(sig, Operation{
		F: func(c1 *column.Wrapper, c1Index *column.Index, input []InputColumn) error {
			if c1Index.IsSome() {
				return errors.New("an aggregate destination cannot carry an index")
			}
			groupIDs, groups, err := groupingInputs(input)
			if err != nil {
				return err
			}
			out, err := aggregateDest[T](c1, groups)
			if err != nil {
				return err
			}
			r, err := ReadFromInput[T](&input[0])
			if err != nil {
				return err
			}
			if r.Len() != len(groupIDs) {
				return fmt.Errorf("aggregate input has %d rows, group ids have %d", r.Len(), len(groupIDs))
			}
			// Null elements count as zero; the group output stays valid.
			i := 0
			r.ForEach(func(v T, valid bool) {
				if valid {
					out[groupIDs[i]] += v
				}
				i++
			})
			return nil
		},
		OutputType: TypeOf[T](),
	})
}

func maxFor[T unsigned](d *Dictionary) {
	sig := Sig("MAX", TypeOf[T]())
	d.mustRegister(sig, Operation{
		F: func(c1 *column.Wrapper, c1Index *column.Index, input []InputColumn) error {
			if c1Index.IsSome() {
				return errors.New("an aggregate destination cannot carry an index")
			}
			groupIDs, groups, err := groupingInputs(input)
			if err != nil {
				return err
			}
			out, err := aggregateDest[T](c1, groups)
			if err != nil {
				return err
			}
			// A group becomes valid on its first valid element; null
			// elements are absent from the maximum.
			c1.SetBitmap(column.NewOptional(make([]bool, groups)))
			seen, err := c1.Bitmap().Mut()
			if err != nil {
				return err
			}
			r, err := ReadFromInput[T](&input[0])
			if err != nil {
				return err
			}
			if r.Len() != len(groupIDs) {
				return fmt.Errorf("aggregate input has %d rows, group ids have %d", r.Len(), len(groupIDs))
			}
			i := 0
			r.ForEach(func(v T, valid bool) {
				if valid {
					g := groupIDs[i]
					if !seen[g] || v > out[g] {
						out[g] = v
						seen[g] = true
					}
				}
				i++
			})
			return nil
		},
		OutputType: TypeOf[T](),
	})
}

func countSizedFor[T comparable](d *Dictionary) {
	sig := Sig("COUNT", TypeOf[T]())
	d.mustRegister(sig, Operation{
		F: func(c1 *column.Wrapper, c1Index *column.Index, input []InputColumn) error {
			if c1Index.IsSome() {
				return errors.New("an aggregate destination cannot carry an index")
			}
			groupIDs, groups, err := groupingInputs(input)
			if err != nil {
				return err
			}
			out, err := aggregateDest[uint64](c1, groups)
			if err != nil {
				return err
			}
			r, err := ReadFromInput[T](&input[0])
			if err != nil {
				return err
			}
			if r.Len() != len(groupIDs) {
				return fmt.Errorf("aggregate input has %d rows, group ids have %d", r.Len(), len(groupIDs))
			}
			i := 0
			r.ForEach(func(_ T, valid bool) {
				if valid {
					out[groupIDs[i]]++
				}
				i++
			})
			return nil
		},
		OutputType: TypeOf[uint64](),
	})
}

func countBinaryFor[T column.AsBytes](d *Dictionary) {
	sig := Sig("COUNT", TypeOf[T]())
	d.mustRegister(sig, Operation{
		F: func(c1 *column.Wrapper, c1Index *column.Index, input []InputColumn) error {
			if c1Index.IsSome() {
				return errors.New("an aggregate destination cannot carry an index")
			}
			groupIDs, groups, err := groupingInputs(input)
			if err != nil {
				return err
			}
			out, err := aggregateDest[uint64](c1, groups)
			if err != nil {
				return err
			}
			r, err := ReadBinaryFromInput[T](&input[0])
			if err != nil {
				return err
			}
			if r.Len() != len(groupIDs) {
				return fmt.Errorf("aggregate input has %d rows, group ids have %d", r.Len(), len(groupIDs))
			}
			i := 0
			r.ForEachBytes(func(_ []byte, valid bool) {
				if valid {
					out[groupIDs[i]]++
				}
				i++
			})
			return nil
		},
		OutputType: TypeOf[uint64](),
	})
}
