package autodiff

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexOutOfRange indicates checked access past the end of a block.
	ErrIndexOutOfRange = errors.New("autodiff: index out of range")

	// ErrWidthMismatch indicates a value whose derivative width differs from
	// the width agreed by its space.
	ErrWidthMismatch = errors.New("autodiff: derivative width mismatch")

	// ErrWidthExhausted indicates a block allocation past the global width.
	ErrWidthExhausted = errors.New("autodiff: block does not fit in global width")
)

// IndexError wraps ErrIndexOutOfRange with the offending access.
type IndexError struct {
	Index  int
	Length int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%v: index %d, length %d", ErrIndexOutOfRange, e.Index, e.Length)
}

func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfRange
}

// WidthError wraps ErrWidthMismatch with the position of the offending value.
type WidthError struct {
	Position int
	Want     int
	Got      int
}

func (e *WidthError) Error() string {
	return fmt.Sprintf("%v: value %d has width %d, want %d", ErrWidthMismatch, e.Position, e.Got, e.Want)
}

func (e *WidthError) Unwrap() error {
	return ErrWidthMismatch
}
