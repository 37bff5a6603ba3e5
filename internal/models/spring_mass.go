package models

import (
	"github.com/san-kum/fwdiff/internal/autodiff"
	"github.com/san-kum/fwdiff/internal/integrators"
)

// SpringMass is a damped oscillator m x'' = -k x - c x' whose stiffness and
// damping may be tracked variables.
type SpringMass struct {
	Mass      autodiff.Value
	Stiffness autodiff.Value
	Damping   autodiff.Value
}

func (s *SpringMass) StateDim() int { return 2 }

func (s *SpringMass) Derivative(x integrators.State, t float64) integrators.State {
	pos, vel := x[0], x[1]
	force := s.Stiffness.Mul(pos).Add(s.Damping.Mul(vel)).Neg()
	return integrators.State{vel, force.Div(s.Mass)}
}

// SpringFit recovers stiffness and damping of a SpringMass by matching the
// simulated position to a reference trajectory at fixed sample steps.
type SpringFit struct {
	Dt        float64
	Steps     int
	Every     int
	Mass      float64
	Stiffness float64
	Damping   float64
	X0        float64
	V0        float64
}

func NewSpringFit() *SpringFit {
	return &SpringFit{
		Dt:        0.01,
		Steps:     300,
		Every:     25,
		Mass:      1.0,
		Stiffness: 4.0,
		Damping:   0.3,
		X0:        1.0,
		V0:        0.0,
	}
}

func (s *SpringFit) Name() string { return "spring_fit" }

func (s *SpringFit) Params() []ParamSpec {
	ref := &SpringMass{
		Mass:      autodiff.Constant(0, s.Mass),
		Stiffness: autodiff.Constant(0, s.Stiffness),
		Damping:   autodiff.Constant(0, s.Damping),
	}
	x0 := integrators.State{autodiff.Constant(0, s.X0), autodiff.Constant(0, s.V0)}
	traj := integrators.Integrate(integrators.NewRK4(), ref, x0, s.Dt, s.Steps)

	var obs []float64
	for i := s.Every; i <= s.Steps; i += s.Every {
		obs = append(obs, traj[i][0].Float())
	}

	return []ParamSpec{
		{Name: "stiffness", Default: []float64{2.5}},
		{Name: "damping", Default: []float64{0.1}},
		{Name: "mass", Default: []float64{s.Mass}, Fixed: true},
		{Name: "initial", Default: []float64{s.X0, s.V0}, Fixed: true},
		{Name: "observations", Default: obs, Fixed: true},
	}
}

func (s *SpringFit) Evaluate(in Inputs) autodiff.Value {
	dyn := &SpringMass{
		Mass:      in.Scalar("mass"),
		Stiffness: in.Scalar("stiffness"),
		Damping:   in.Scalar("damping"),
	}
	x0 := integrators.State(in.Duals("initial"))
	obs := in.Duals("observations")

	traj := integrators.Integrate(integrators.NewRK4(), dyn, x0, s.Dt, s.Steps)

	residuals := make([]autodiff.Value, 0, len(obs))
	for k, i := 0, s.Every; i <= s.Steps && k < len(obs); k, i = k+1, i+s.Every {
		residuals = append(residuals, autodiff.Square(traj[i][0].Sub(obs[k])))
	}
	return sum(dyn.Mass.Len(), residuals)
}
