package autodiff

import "fmt"

// Space records the global derivative width N of one computation and
// builds every seed, constant and block from it, so all values of an
// expression agree on N by construction.
//
// A strict space additionally verifies each construction and panics on a
// mismatch. Use it in tests and while developing a model; the plain space
// adds no checks.
type Space struct {
	width  int
	next   int
	strict bool
}

// NewSpace returns a space of the given width.
func NewSpace(width int) *Space {
	return &Space{width: width}
}

// NewStrictSpace returns a space that validates every construction.
func NewStrictSpace(width int) *Space {
	return &Space{width: width, strict: true}
}

func (s *Space) Width() int { return s.width }

// Seed returns the independent variable i with value v.
func (s *Space) Seed(i int, v float64) Value {
	if s.strict && (i < 0 || i >= s.width) {
		panic(&IndexError{Index: i, Length: s.width})
	}
	return Seed(i, s.width, v)
}

// Constant returns v as a constant of the space's width.
func (s *Space) Constant(v float64) Value {
	return Constant(s.width, v)
}

// NewBlock returns a differentiable block at offset.
func (s *Space) NewBlock(offset, length int, initial float64) *Block {
	if s.strict && offset < 0 {
		panic(&IndexError{Index: offset, Length: s.width})
	}
	if s.strict && offset < s.width && offset+length > s.width {
		panic(fmt.Errorf("%w: offset %d length %d width %d", ErrWidthExhausted, offset, length, s.width))
	}
	return NewBlock(offset, s.width, length, initial)
}

// NewFixedBlock returns a block of constants.
func (s *Space) NewFixedBlock(length int, initial float64) *Block {
	return NewBlock(s.width, s.width, length, initial)
}

// Allocate returns a differentiable block at the next free offset.
func (s *Space) Allocate(length int, initial float64) (*Block, error) {
	if s.next+length > s.width {
		return nil, fmt.Errorf("%w: need %d slots at offset %d, width %d", ErrWidthExhausted, length, s.next, s.width)
	}
	b := NewBlock(s.next, s.width, length, initial)
	s.next += length
	return b, nil
}

// Free returns the number of slots not yet handed out by Allocate.
func (s *Space) Free() int { return s.width - s.next }

// Check reports the first value whose width is not the space's width.
func (s *Space) Check(values ...Value) error {
	for i, v := range values {
		if len(v.dev) != s.width {
			return &WidthError{Position: i, Want: s.width, Got: len(v.dev)}
		}
	}
	return nil
}

// MustCheck is Check for strict spaces: it panics on a mismatch and is a
// no-op on plain ones.
func (s *Space) MustCheck(values ...Value) {
	if !s.strict {
		return
	}
	if err := s.Check(values...); err != nil {
		panic(err)
	}
}
