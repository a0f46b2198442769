package column

import (
	"fmt"
	"reflect"
)

// Variant identifies the storage layout of a column.
type Variant uint8

const (
	// Owned is a dense, growable sequence of T held by the column.
	Owned Variant = iota
	// Slice is a borrowed read-only view of T.
	Slice
	// SliceMut is a borrowed writable view of T.
	SliceMut
	// Const is a single owned element broadcast to any requested length.
	Const
	// BinaryOwned is an owned variable-length layout (bytes plus start and
	// length tables).
	BinaryOwned
	// BinarySlice is a borrowed read-only variable-length layout.
	BinarySlice
	// BinarySliceMut is a borrowed writable variable-length layout.
	BinarySliceMut
	// BinaryConst is a single owned variable-length element broadcast to
	// any requested length.
	BinaryConst
)

func (v Variant) String() string {
	switch v {
	case Owned:
		return "Owned"
	case Slice:
		return "Slice"
	case SliceMut:
		return "SliceMut"
	case Const:
		return "Const"
	case BinaryOwned:
		return "BinaryOwned"
	case BinarySlice:
		return "BinarySlice"
	case BinarySliceMut:
		return "BinarySliceMut"
	case BinaryConst:
		return "BinaryConst"
	}
	return fmt.Sprintf("Variant(%d)", uint8(v))
}

// BinaryData is the variable-length layout shared by all binary variants.
// Element k occupies Data[StartPos[k]-Offset : StartPos[k]-Offset+Lens[k]].
// Offset records how many bytes have been split off the front, so absolute
// start positions stay valid while the byte buffer shrinks.
type BinaryData struct {
	Data     []byte
	StartPos []int
	Lens     []int
	Offset   int
}

// Len returns the number of elements.
func (b *BinaryData) Len() int {
	return len(b.Lens)
}

// Bytes returns the byte run of element k.
func (b *BinaryData) Bytes(k int) []byte {
	s := b.StartPos[k] - b.Offset
	return b.Data[s : s+b.Lens[k]]
}

// Data is the type-erased storage of a single column. It carries the
// runtime element type; all typed access goes through the generic downcast
// functions, which verify the type and report mismatches.
type Data struct {
	variant  Variant
	itemType reflect.Type
	sized    any         // *[]T for Owned/Const, []T for Slice/SliceMut
	bin      *BinaryData // binary variants only
	uninit   bool
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// NewSized creates an owned sized column from data. The column takes over
// the slice.
func NewSized[T any](data []T) *Data {
	return &Data{variant: Owned, itemType: typeOf[T](), sized: &data}
}

// NewSizedSlice creates a read-only borrowed sized column.
func NewSizedSlice[T any](data []T) *Data {
	return &Data{variant: Slice, itemType: typeOf[T](), sized: data}
}

// NewSizedSliceMut creates a writable borrowed sized column.
func NewSizedSliceMut[T any](data []T) *Data {
	return &Data{variant: SliceMut, itemType: typeOf[T](), sized: data}
}

// NewSizedConst creates a constant sized column holding a single value.
func NewSizedConst[T any](v T) *Data {
	data := []T{v}
	return &Data{variant: Const, itemType: typeOf[T](), sized: &data}
}

// NewSizedUninit creates an owned sized column with n reserved cells. The
// column rejects reads until AssumeInit is called; the caller must write
// every cell first.
func NewSizedUninit[T any](n int) *Data {
	data := make([]T, n)
	return &Data{variant: Owned, itemType: typeOf[T](), sized: &data, uninit: true}
}

// NewBinary creates an owned binary column by flattening items into a byte
// buffer with start and length tables.
func NewBinary[T AsBytes](items []T) *Data {
	return NewBinaryWithCapacity(items, 0, 0)
}

// NewBinaryWithCapacity is NewBinary with pre-reserved table and byte
// buffer capacities.
func NewBinaryWithCapacity[T AsBytes](items []T, capacity, binaryCapacity int) *Data {
	n := len(items)
	if capacity < n {
		capacity = n
	}
	b := &BinaryData{
		Data:     make([]byte, 0, binaryCapacity),
		StartPos: make([]int, 0, capacity),
		Lens:     make([]int, 0, capacity),
	}
	for _, it := range items {
		raw := itemBytes(it)
		b.StartPos = append(b.StartPos, len(b.Data))
		b.Lens = append(b.Lens, len(raw))
		b.Data = append(b.Data, raw...)
	}
	return &Data{variant: BinaryOwned, itemType: typeOf[T](), bin: b}
}

// NewBinarySlice creates a read-only borrowed binary column over an
// existing layout.
func NewBinarySlice[T AsBytes](offset int, data []byte, startPos, lens []int) (*Data, error) {
	if err := checkBinaryLayout(offset, data, startPos, lens); err != nil {
		return nil, err
	}
	b := &BinaryData{Data: data, StartPos: startPos, Lens: lens, Offset: offset}
	return &Data{variant: BinarySlice, itemType: typeOf[T](), bin: b}, nil
}

// NewBinarySliceMut creates a writable borrowed binary column over an
// existing layout.
func NewBinarySliceMut[T AsBytes](offset int, data []byte, startPos, lens []int) (*Data, error) {
	if err := checkBinaryLayout(offset, data, startPos, lens); err != nil {
		return nil, err
	}
	b := &BinaryData{Data: data, StartPos: startPos, Lens: lens, Offset: offset}
	return &Data{variant: BinarySliceMut, itemType: typeOf[T](), bin: b}, nil
}

func checkBinaryLayout(offset int, data []byte, startPos, lens []int) error {
	if len(startPos) != len(lens) {
		return fmt.Errorf("binary layout mismatch: %d start positions, %d lengths", len(startPos), len(lens))
	}
	if n := len(startPos); n > 0 {
		end := startPos[n-1] + lens[n-1] - offset
		if end > len(data) {
			return fmt.Errorf("binary layout mismatch: last element ends at byte %d, buffer has %d bytes", end, len(data))
		}
	}
	return nil
}

// NewBinaryConst creates a constant binary column holding a single value.
func NewBinaryConst[T AsBytes](v T) *Data {
	d := NewBinary([]T{v})
	d.variant = BinaryConst
	return d
}

// NewBinaryUninit creates an owned binary column with n zeroed table
// entries and binaryBytes reserved buffer bytes. The column rejects reads
// until AssumeInit is called.
func NewBinaryUninit[T AsBytes](n, binaryBytes int) *Data {
	b := &BinaryData{
		Data:     make([]byte, 0, binaryBytes),
		StartPos: make([]int, n),
		Lens:     make([]int, n),
	}
	return &Data{variant: BinaryOwned, itemType: typeOf[T](), bin: b, uninit: true}
}

// ItemType returns the runtime element type.
func (d *Data) ItemType() reflect.Type {
	return d.itemType
}

// Variant returns the storage variant.
func (d *Data) Variant() Variant {
	return d.variant
}

// IsConst reports whether the column broadcasts a single value.
func (d *Data) IsConst() bool {
	return d.variant == Const || d.variant == BinaryConst
}

// IsOwned reports whether the column owns its storage.
func (d *Data) IsOwned() bool {
	return d.variant == Owned || d.variant == BinaryOwned
}

// IsBinary reports whether the column uses the variable-length layout.
func (d *Data) IsBinary() bool {
	switch d.variant {
	case BinaryOwned, BinarySlice, BinarySliceMut, BinaryConst:
		return true
	}
	return false
}

// IsSized reports whether the column uses the fixed-width layout.
func (d *Data) IsSized() bool {
	return !d.IsBinary()
}

// IsUninit reports whether the column still awaits AssumeInit.
func (d *Data) IsUninit() bool {
	return d.uninit
}

// Is reports whether the element type of d is T.
func Is[T any](d *Data) bool {
	return d.itemType == typeOf[T]()
}

// Len returns the number of stored elements. For constant columns this is
// 1; broadcasting happens at read time.
func (d *Data) Len() int {
	if d.IsBinary() {
		return d.bin.Len()
	}
	v := reflect.ValueOf(d.sized)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	return v.Len()
}

func mismatch[T any](d *Data, op string) error {
	return fmt.Errorf("downcast failed in %s: column holds %s, requested %s", op, d.itemType, typeOf[T]())
}

func variantErr(d *Data, op string) error {
	return fmt.Errorf("%s not possible for a %s column", op, d.variant)
}

func (d *Data) checkInit(op string) error {
	if d.uninit {
		return fmt.Errorf("%s called on an uninitialized column", op)
	}
	return nil
}

// SizedRef returns a read-only typed view of a sized column.
func SizedRef[T any](d *Data) ([]T, error) {
	if d.IsBinary() {
		return nil, variantErr(d, "SizedRef")
	}
	if err := d.checkInit("SizedRef"); err != nil {
		return nil, err
	}
	return sizedAny[T](d, "SizedRef")
}

// SizedMut returns a writable typed view of a sized column. Writing into
// an uninitialized column is allowed; that is how kernels fill fresh
// storage before AssumeInit.
func SizedMut[T any](d *Data) ([]T, error) {
	switch d.variant {
	case Owned, SliceMut, Const:
		return sizedAny[T](d, "SizedMut")
	default:
		return nil, variantErr(d, "SizedMut")
	}
}

// SizedVec returns the growable backing slice of an owned sized column.
func SizedVec[T any](d *Data) (*[]T, error) {
	switch d.variant {
	case Owned, Const:
		p, ok := d.sized.(*[]T)
		if !ok {
			return nil, mismatch[T](d, "SizedVec")
		}
		return p, nil
	default:
		return nil, variantErr(d, "SizedVec")
	}
}

// SizedOwned consumes an owned sized column and returns its backing slice.
func SizedOwned[T any](d *Data) ([]T, error) {
	p, err := SizedVec[T](d)
	if err != nil {
		return nil, err
	}
	if err := d.checkInit("SizedOwned"); err != nil {
		return nil, err
	}
	out := *p
	*p = nil
	return out, nil
}

func sizedAny[T any](d *Data, op string) ([]T, error) {
	switch s := d.sized.(type) {
	case *[]T:
		return *s, nil
	case []T:
		return s, nil
	default:
		return nil, mismatch[T](d, op)
	}
}

// BinaryRef returns the read-only layout of a binary column.
func BinaryRef[T any](d *Data) (*BinaryData, error) {
	if !d.IsBinary() {
		return nil, variantErr(d, "BinaryRef")
	}
	if !Is[T](d) {
		return nil, mismatch[T](d, "BinaryRef")
	}
	if err := d.checkInit("BinaryRef"); err != nil {
		return nil, err
	}
	return d.bin, nil
}

// BinaryMut returns the writable layout of a binary column. Uninitialized
// columns are writable so kernels can lay them out before AssumeInit.
func BinaryMut[T any](d *Data) (*BinaryData, error) {
	switch d.variant {
	case BinaryOwned, BinarySliceMut, BinaryConst:
		if !Is[T](d) {
			return nil, mismatch[T](d, "BinaryMut")
		}
		return d.bin, nil
	default:
		return nil, variantErr(d, "BinaryMut")
	}
}

// BinaryVec returns the growable layout of an owned binary column.
func BinaryVec[T any](d *Data) (*BinaryData, error) {
	switch d.variant {
	case BinaryOwned, BinaryConst:
		if !Is[T](d) {
			return nil, mismatch[T](d, "BinaryVec")
		}
		return d.bin, nil
	default:
		return nil, variantErr(d, "BinaryVec")
	}
}

// BinaryOffset returns the left-split byte offset of a binary column.
func (d *Data) BinaryOffset() (int, error) {
	if !d.IsBinary() {
		return 0, variantErr(d, "BinaryOffset")
	}
	return d.bin.Offset, nil
}

// BinaryToConst promotes an owned binary column of length one to a
// constant column.
func (d *Data) BinaryToConst() error {
	if d.variant != BinaryOwned {
		return variantErr(d, "BinaryToConst")
	}
	if d.bin.Len() != 1 {
		return fmt.Errorf("BinaryToConst requires exactly one element, column has %d", d.bin.Len())
	}
	d.variant = BinaryConst
	return nil
}

// AssumeInit marks a column created by NewSizedUninit or NewBinaryUninit
// as fully written. The caller is responsible for having written every
// cell; nothing is verified beyond the type and variant.
func AssumeInit[T any](d *Data) error {
	if !Is[T](d) {
		return mismatch[T](d, "AssumeInit")
	}
	switch d.variant {
	case Owned, SliceMut, BinaryOwned, BinarySliceMut:
		d.uninit = false
		return nil
	default:
		return variantErr(d, "AssumeInit")
	}
}

// SplitOffLeft cuts the first pos elements off a borrowed column and
// returns them as a new column of the same variant. The receiver keeps the
// remainder. For binary columns the byte window is advanced and Offset
// grows by the split byte count, so the operation is constant time.
func SplitOffLeft[T any](d *Data, pos int) (*Data, error) {
	if !Is[T](d) {
		return nil, mismatch[T](d, "SplitOffLeft")
	}
	switch d.variant {
	case Slice, SliceMut:
		s, err := sizedAny[T](d, "SplitOffLeft")
		if err != nil {
			return nil, err
		}
		if pos > len(s) {
			return nil, fmt.Errorf("split at position %d past column length %d", pos, len(s))
		}
		left := &Data{variant: d.variant, itemType: d.itemType, sized: s[:pos:pos]}
		d.sized = s[pos:]
		return left, nil
	case BinarySlice, BinarySliceMut:
		b := d.bin
		if pos > b.Len() {
			return nil, fmt.Errorf("split at position %d past column length %d", pos, b.Len())
		}
		splitBytes := 0
		if pos > 0 {
			splitBytes = b.StartPos[pos-1] + b.Lens[pos-1] - b.Offset
		}
		left := &Data{
			variant:  d.variant,
			itemType: d.itemType,
			bin: &BinaryData{
				Data:     b.Data[:splitBytes:splitBytes],
				StartPos: b.StartPos[:pos:pos],
				Lens:     b.Lens[:pos:pos],
				Offset:   b.Offset,
			},
		}
		d.bin = &BinaryData{
			Data:     b.Data[splitBytes:],
			StartPos: b.StartPos[pos:],
			Lens:     b.Lens[pos:],
			Offset:   b.Offset + splitBytes,
		}
		return left, nil
	default:
		return nil, variantErr(d, "SplitOffLeft")
	}
}
