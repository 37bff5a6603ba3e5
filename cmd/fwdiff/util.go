package main

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

func norm(v []float64) float64 { return floats.Norm(v, 2) }

// log10 floors at 1e-16 so converged runs still plot.
func log10(v float64) float64 {
	return math.Log10(math.Max(v, 1e-16))
}
