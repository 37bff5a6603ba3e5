package integrators

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn Dynamics, x State, t float64, dt float64) State {
	dx := dyn.Derivative(x, t)
	result := make(State, len(x))
	for i := range x {
		result[i] = x[i].Add(dx[i].MulConst(dt))
	}
	return result
}
