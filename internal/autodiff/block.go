package autodiff

// Block is a contiguous group of independent variables. It owns a buffer
// of raw float64 values; indexing it builds a fresh Value each time.
//
// With offset < width the block is differentiable and element i is the
// independent variable offset+i. With offset >= width the block is fixed
// and every element is a constant of the given width.
type Block struct {
	vals   []float64
	width  int
	offset int
}

// NewBlock returns a block of length elements set to initial, owning the
// derivative slots starting at offset out of width.
func NewBlock(offset, width, length int, initial float64) *Block {
	vals := make([]float64, length)
	for i := range vals {
		vals[i] = initial
	}
	return &Block{vals: vals, width: width, offset: offset}
}

// NewFullBlock returns a block covering the whole width.
func NewFullBlock(width int, initial float64) *Block {
	return NewBlock(0, width, width, initial)
}

func (b *Block) Len() int    { return len(b.vals) }
func (b *Block) Width() int  { return b.width }
func (b *Block) Offset() int { return b.offset }

// Differentiable reports whether the block seeds derivatives.
func (b *Block) Differentiable() bool { return b.offset < b.width }

// Values returns the owned buffer. Writes through it change later Index
// results but never which slots the block owns.
func (b *Block) Values() []float64 { return b.vals }

// Assign replaces the buffer contents with a copy of vals. The length may
// change; width and offset never do.
func (b *Block) Assign(vals []float64) {
	if cap(b.vals) >= len(vals) {
		b.vals = b.vals[:len(vals)]
	} else {
		b.vals = make([]float64, len(vals))
	}
	copy(b.vals, vals)
}

// Index returns element i without an explicit bounds check.
func (b *Block) Index(i int) Value {
	if b.offset < b.width {
		return Seed(b.offset+i, b.width, b.vals[i])
	}
	return Constant(b.width, b.vals[i])
}

// At is Index with bounds checking.
func (b *Block) At(i int) (Value, error) {
	if i < 0 || i >= len(b.vals) {
		return Value{}, &IndexError{Index: i, Length: len(b.vals)}
	}
	return b.Index(i), nil
}

// Duals returns every element as a Value.
func (b *Block) Duals() []Value {
	out := make([]Value, len(b.vals))
	for i := range b.vals {
		out[i] = b.Index(i)
	}
	return out
}
