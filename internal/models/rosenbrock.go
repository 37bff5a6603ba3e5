package models

import "github.com/san-kum/fwdiff/internal/autodiff"

// Rosenbrock is (a - x)² + b (y - x²)² with its minimum at (a, a²).
type Rosenbrock struct{}

func NewRosenbrock() *Rosenbrock {
	return &Rosenbrock{}
}

func (r *Rosenbrock) Name() string { return "rosenbrock" }

func (r *Rosenbrock) Params() []ParamSpec {
	return []ParamSpec{
		{Name: "xy", Default: []float64{-1.2, 1}},
		{Name: "coeff", Default: []float64{1, 100}, Fixed: true},
	}
}

func (r *Rosenbrock) Evaluate(in Inputs) autodiff.Value {
	xy := in.Duals("xy")
	coeff := in.Duals("coeff")
	x, y := xy[0], xy[1]
	a, b := coeff[0], coeff[1]

	first := autodiff.Square(a.Sub(x))
	second := b.Mul(autodiff.PowConst(y.Sub(autodiff.Square(x)), 2))
	return first.Add(second)
}
