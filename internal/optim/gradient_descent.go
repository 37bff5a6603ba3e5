package optim

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/fwdiff/internal/autodiff"
	"github.com/san-kum/fwdiff/internal/problem"
)

// GradientDescent minimises a problem using the exact forward-mode
// gradient. With Backtracking each step is shrunk until it satisfies the
// Armijo sufficient-decrease condition.
type GradientDescent struct {
	LearningRate float64
	MaxIter      int
	Tolerance    float64
	Backtracking bool
	Shrink       float64
	Armijo       float64
	MinStep      float64
	Logger       *slog.Logger
}

func NewGradientDescent() *GradientDescent {
	return &GradientDescent{
		LearningRate: 0.01,
		MaxIter:      1000,
		Tolerance:    1e-6,
		Backtracking: true,
		Shrink:       0.5,
		Armijo:       1e-4,
		MinStep:      1e-12,
	}
}

func (g *GradientDescent) validate() error {
	if g.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be positive, got %f", g.LearningRate)
	}
	if g.MaxIter <= 0 {
		return fmt.Errorf("max iterations must be positive, got %d", g.MaxIter)
	}
	if g.Backtracking && (g.Shrink <= 0 || g.Shrink >= 1) {
		return fmt.Errorf("shrink must be in (0, 1), got %f", g.Shrink)
	}
	return nil
}

func (g *GradientDescent) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}

// Run iterates from the problem's current point and leaves the problem at
// the last accepted point. A canceled context returns the partial result
// with ctx.Err().
func (g *GradientDescent) Run(ctx context.Context, p *problem.Problem, obs Observer) (*Result, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}
	if p.Width() == 0 {
		return nil, ErrEmptyProblem
	}
	log := g.logger().With("objective", p.Objective().Name())

	v, err := p.Evaluate()
	if err != nil {
		return nil, err
	}

	x := p.Point()
	result := &Result{Trace: make([]Step, 0, g.MaxIter)}
	candidate := make([]float64, len(x))

	for i := 0; i < g.MaxIter; i++ {
		select {
		case <-ctx.Done():
			g.finish(result, x, v)
			return result, ctx.Err()
		default:
		}

		loss := v.Float()
		grad := v.Derivative()
		norm := floats.Norm(grad, 2)
		if math.IsNaN(loss) || math.IsInf(loss, 0) || math.IsNaN(norm) || math.IsInf(norm, 0) {
			g.finish(result, x, v)
			return result, fmt.Errorf("%w at iteration %d", ErrDiverged, i)
		}

		if norm < g.Tolerance {
			result.Converged = true
			g.finish(result, x, v)
			log.Debug("converged", "iter", i, "loss", loss, "grad_norm", norm)
			return result, nil
		}

		step := g.LearningRate
		var next float64
		stalled := false
		for {
			floats.AddScaledTo(candidate, x, -step, grad)
			if err := p.SetPoint(candidate); err != nil {
				return nil, err
			}
			if v, err = p.Evaluate(); err != nil {
				return nil, err
			}
			next = v.Float()
			if !g.Backtracking || next <= loss-g.Armijo*step*norm*norm {
				break
			}
			if step < g.MinStep {
				stalled = true
				break
			}
			step *= g.Shrink
		}

		// no sufficient decrease down to MinStep: stay at x and stop
		if stalled {
			if err := p.SetPoint(x); err != nil {
				return nil, err
			}
			if v, err = p.Evaluate(); err != nil {
				return nil, err
			}
			result.Stalled = true
			g.finish(result, x, v)
			log.Debug("stalled", "iter", i, "loss", loss, "grad_norm", norm)
			return result, nil
		}
		copy(x, candidate)

		s := Step{
			Iter:     i,
			Loss:     loss,
			GradNorm: norm,
			StepSize: step,
			Point:    append([]float64(nil), x...),
			Grad:     grad,
		}
		result.Trace = append(result.Trace, s)
		result.Iterations = i + 1
		result.GradNorm = norm
		log.Debug("step", "iter", i, "loss", loss, "next", next, "grad_norm", norm, "step", step)

		if obs != nil && !obs(s) {
			break
		}
	}

	g.finish(result, x, v)
	return result, nil
}

// finish records the final point. A run that never stepped still gets one
// trace entry so it can be plotted and exported.
func (g *GradientDescent) finish(r *Result, x []float64, v autodiff.Value) {
	grad := v.Derivative()
	r.Point = append([]float64(nil), x...)
	r.Loss = v.Float()
	r.GradNorm = floats.Norm(grad, 2)
	if len(r.Trace) == 0 {
		r.Trace = append(r.Trace, Step{
			Loss:     r.Loss,
			GradNorm: r.GradNorm,
			Point:    append([]float64(nil), x...),
			Grad:     grad,
		})
	}
}
