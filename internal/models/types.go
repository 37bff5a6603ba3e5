package models

import (
	"fmt"

	"github.com/san-kum/fwdiff/internal/autodiff"
)

// ParamSpec describes one named parameter block of an objective.
type ParamSpec struct {
	Name    string
	Default []float64
	Fixed   bool
}

func (p ParamSpec) Len() int { return len(p.Default) }

// Inputs maps parameter names to the blocks holding them.
type Inputs map[string]*autodiff.Block

// Duals returns every element of the named block.
func (in Inputs) Duals(name string) []autodiff.Value {
	b, ok := in[name]
	if !ok {
		panic(fmt.Sprintf("models: missing parameter block %q", name))
	}
	return b.Duals()
}

// Scalar returns element 0 of the named block.
func (in Inputs) Scalar(name string) autodiff.Value {
	return in.Duals(name)[0]
}

// Objective is a scalar loss written against autodiff values.
type Objective interface {
	Name() string
	Params() []ParamSpec
	Evaluate(in Inputs) autodiff.Value
}

// sum adds values; an empty sum is a zero constant of the given width.
func sum(width int, vs []autodiff.Value) autodiff.Value {
	total := autodiff.Constant(width, 0)
	for _, v := range vs {
		total.AddAssign(v)
	}
	return total
}

func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}
