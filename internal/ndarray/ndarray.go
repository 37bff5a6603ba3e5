// Package ndarray provides a dense, fixed-rank, row-major array usable for
// raw numbers or autodiff values alike.
package ndarray

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds = errors.New("ndarray: index out of bounds")
	ErrRank        = errors.New("ndarray: wrong number of indices")
	ErrShape       = errors.New("ndarray: data length does not match dims")
)

type Array[T any] struct {
	dims []int
	data []T
}

// New returns an array of the given dims with every element set to initial.
func New[T any](initial T, dims ...int) *Array[T] {
	n := size(dims)
	data := make([]T, n)
	for i := range data {
		data[i] = initial
	}
	return &Array[T]{dims: append([]int(nil), dims...), data: data}
}

// FromSlice wraps data without copying.
func FromSlice[T any](data []T, dims ...int) (*Array[T], error) {
	if n := size(dims); n != len(data) {
		return nil, fmt.Errorf("%w: %d elements for dims %v (%d)", ErrShape, len(data), dims, n)
	}
	return &Array[T]{dims: append([]int(nil), dims...), data: data}, nil
}

func size(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}

func (a *Array[T]) Dims() []int { return append([]int(nil), a.dims...) }
func (a *Array[T]) Rank() int   { return len(a.dims) }
func (a *Array[T]) Len() int    { return len(a.data) }

// Raw returns the backing slice in row-major order.
func (a *Array[T]) Raw() []T { return a.data }

func (a *Array[T]) flat(idx []int) int {
	k := 0
	for c, i := range idx {
		k = k*a.dims[c] + i
	}
	return k
}

// Get returns the element at idx. Only the flat offset is bounds checked
// (by the runtime); per-axis overflow wraps into the next row.
func (a *Array[T]) Get(idx ...int) T { return a.data[a.flat(idx)] }

// Set stores v at idx with the same checking as Get.
func (a *Array[T]) Set(v T, idx ...int) { a.data[a.flat(idx)] = v }

func (a *Array[T]) check(idx []int) error {
	if len(idx) != len(a.dims) {
		return fmt.Errorf("%w: got %d, rank %d", ErrRank, len(idx), len(a.dims))
	}
	for c, i := range idx {
		if i < 0 || i >= a.dims[c] {
			return fmt.Errorf("%w: axis %d index %d, dim %d", ErrOutOfBounds, c, i, a.dims[c])
		}
	}
	return nil
}

// At returns the element at idx, checking rank and every axis.
func (a *Array[T]) At(idx ...int) (T, error) {
	if err := a.check(idx); err != nil {
		var zero T
		return zero, err
	}
	return a.data[a.flat(idx)], nil
}

// SetAt is the checked form of Set.
func (a *Array[T]) SetAt(v T, idx ...int) error {
	if err := a.check(idx); err != nil {
		return err
	}
	a.data[a.flat(idx)] = v
	return nil
}

// Convert maps every element of a into a new array of the same dims.
func Convert[T, U any](a *Array[T], fn func(T) U) *Array[U] {
	out := make([]U, len(a.data))
	for i, v := range a.data {
		out[i] = fn(v)
	}
	return &Array[U]{dims: append([]int(nil), a.dims...), data: out}
}
