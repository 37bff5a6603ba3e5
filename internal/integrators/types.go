package integrators

import "github.com/san-kum/fwdiff/internal/autodiff"

// State is a dual-valued ODE state. Integrating it carries the forward
// sensitivities of every component with respect to the tracked variables.
type State []autodiff.Value

// Floats returns the state values.
func (s State) Floats() []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = v.Float()
	}
	return out
}

type Dynamics interface {
	Derivative(x State, t float64) State
	StateDim() int
}

type Integrator interface {
	Step(dyn Dynamics, x State, t float64, dt float64) State
}

// Integrate takes steps fixed steps of dt from x0 and returns every state,
// x0 included.
func Integrate(integ Integrator, dyn Dynamics, x0 State, dt float64, steps int) []State {
	traj := make([]State, 0, steps+1)
	traj = append(traj, x0)
	x := x0
	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, float64(i)*dt, dt)
		traj = append(traj, x)
	}
	return traj
}
