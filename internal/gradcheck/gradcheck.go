// Package gradcheck compares forward-mode gradients with central finite
// differences.
package gradcheck

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"

	"github.com/san-kum/fwdiff/internal/problem"
)

var ErrGradientMismatch = errors.New("gradcheck: gradient mismatch")

type Settings struct {
	Step      float64
	Tolerance float64
}

func DefaultSettings() Settings {
	return Settings{Step: 1e-6, Tolerance: 1e-5}
}

// Component is the comparison for one slot of the derivative vector.
type Component struct {
	Label    string
	Exact    float64
	Approx   float64
	AbsError float64
	RelError float64
}

type Report struct {
	Loss       float64
	Components []Component
	MaxRel     float64
}

// Passed reports whether every component is within tol.
func (r *Report) Passed(tol float64) bool { return r.MaxRel <= tol }

// Check evaluates p at its current point and compares the exact gradient
// with fd.Gradient. The error wraps ErrGradientMismatch when any relative
// error exceeds the tolerance; the report is returned either way.
func Check(p *problem.Problem, s Settings) (*Report, error) {
	v, err := p.Evaluate()
	if err != nil {
		return nil, err
	}
	x := p.Point()
	exact := v.Derivative()

	var evalErr error
	f := func(pt []float64) float64 {
		loss, err := p.LossAt(pt)
		if err != nil && evalErr == nil {
			evalErr = err
		}
		return loss
	}
	approx := fd.Gradient(nil, f, x, &fd.Settings{
		Formula: fd.Central,
		Step:    s.Step,
	})
	if evalErr != nil {
		return nil, evalErr
	}

	r := &Report{Loss: v.Float(), Components: make([]Component, len(exact))}
	for i, label := range p.Labels() {
		abs := math.Abs(exact[i] - approx[i])
		rel := abs / math.Max(1, math.Max(math.Abs(exact[i]), math.Abs(approx[i])))
		r.Components[i] = Component{
			Label:    label,
			Exact:    exact[i],
			Approx:   approx[i],
			AbsError: abs,
			RelError: rel,
		}
		r.MaxRel = math.Max(r.MaxRel, rel)
	}

	if !r.Passed(s.Tolerance) {
		return r, fmt.Errorf("%w: max relative error %.3g above %.3g", ErrGradientMismatch, r.MaxRel, s.Tolerance)
	}
	return r, nil
}
