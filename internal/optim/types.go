package optim

import "errors"

var (
	// ErrDiverged indicates a NaN or infinite loss or gradient.
	ErrDiverged = errors.New("optim: loss diverged")

	// ErrEmptyProblem indicates a problem without free parameters.
	ErrEmptyProblem = errors.New("optim: problem has no free parameters")
)

// Step records one optimizer iteration.
type Step struct {
	Iter     int
	Loss     float64
	GradNorm float64
	StepSize float64
	Point    []float64
	Grad     []float64
}

// Observer is called after each iteration. Returning false stops the run.
type Observer func(Step) bool

// Result of a run. Stalled means backtracking found no sufficient decrease
// above MinStep, typically at a kink.
type Result struct {
	Point      []float64
	Loss       float64
	GradNorm   float64
	Iterations int
	Converged  bool
	Stalled    bool
	Trace      []Step
}
