package column

import "errors"

// OptionIndex is a row reference that may be absent. An absent reference
// reads as null regardless of the column's bitmap; outer joins use it to
// mark rows with no source row.
type OptionIndex struct {
	Pos   int
	Valid bool
}

type indexState uint8

const (
	indexNone indexState = iota
	indexOwned
	indexSlice
	indexOwnedOption
	indexSliceOption
)

// Index is a row-remapping vector applied to a column at read time. It is
// absent, owned, or borrowed read-only, and the owned and borrowed states
// also come in the Option-valued shapes used by outer joins. Unlike
// Optional it has no writable borrowed state.
type Index struct {
	state indexState
	plain []int
	opt   []OptionIndex
}

// NewIndex creates an owned index from positions.
func NewIndex(positions []int) Index {
	return Index{state: indexOwned, plain: positions}
}

// IndexFromSlice creates a borrowed index over positions.
func IndexFromSlice(positions []int) Index {
	return Index{state: indexSlice, plain: positions}
}

// NewIndexOption creates an owned Option-valued index.
func NewIndexOption(positions []OptionIndex) Index {
	return Index{state: indexOwnedOption, opt: positions}
}

// IndexOptionFromSlice creates a borrowed Option-valued index.
func IndexOptionFromSlice(positions []OptionIndex) Index {
	return Index{state: indexSliceOption, opt: positions}
}

// NoIndex returns the absent index; columns without one are read
// positionally.
func NoIndex() Index {
	return Index{}
}

// IsSome reports whether an index is present.
func (ix *Index) IsSome() bool {
	return ix.state != indexNone
}

// IsOption reports whether the index is Option-valued.
func (ix *Index) IsOption() bool {
	return ix.state == indexOwnedOption || ix.state == indexSliceOption
}

// IsOwned reports whether the index owns its storage.
func (ix *Index) IsOwned() bool {
	return ix.state == indexOwned || ix.state == indexOwnedOption
}

// Len returns the index length and whether an index is present.
func (ix *Index) Len() (int, bool) {
	switch ix.state {
	case indexOwned, indexSlice:
		return len(ix.plain), true
	case indexOwnedOption, indexSliceOption:
		return len(ix.opt), true
	default:
		return 0, false
	}
}

// Ref returns the plain positions of a non-Option index.
func (ix *Index) Ref() ([]int, error) {
	switch ix.state {
	case indexOwned, indexSlice:
		return ix.plain, nil
	case indexOwnedOption, indexSliceOption:
		return nil, errors.New("index is Option-valued and has no plain positions")
	default:
		return nil, errors.New("index is absent")
	}
}

// OptionRef returns the positions of an Option-valued index.
func (ix *Index) OptionRef() ([]OptionIndex, error) {
	switch ix.state {
	case indexOwnedOption, indexSliceOption:
		return ix.opt, nil
	case indexOwned, indexSlice:
		return nil, errors.New("index holds plain positions, not Option values")
	default:
		return nil, errors.New("index is absent")
	}
}

// Vec returns the growable backing slice of an owned plain index.
func (ix *Index) Vec() (*[]int, error) {
	if ix.state != indexOwned {
		return nil, errors.New("index is not an owned plain index and cannot grow")
	}
	return &ix.plain, nil
}
