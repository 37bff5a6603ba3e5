package integrators

type RK4 struct {
	scratch State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.scratch) != n {
		r.scratch = make(State, n)
	}
}

func (r *RK4) Step(dyn Dynamics, x State, t, dt float64) State {
	n := len(x)
	r.ensureScratch(n)

	k1 := dyn.Derivative(x, t)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i].Add(k1[i].MulConst(dt * 0.5))
	}
	k2 := dyn.Derivative(r.scratch, t+dt*0.5)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i].Add(k2[i].MulConst(dt * 0.5))
	}
	k3 := dyn.Derivative(r.scratch, t+dt*0.5)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i].Add(k3[i].MulConst(dt))
	}
	k4 := dyn.Derivative(r.scratch, t+dt)

	result := make(State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		sum := k1[i].Add(k2[i].MulConst(2)).Add(k3[i].MulConst(2)).Add(k4[i])
		result[i] = x[i].Add(sum.MulConst(dt6))
	}

	return result
}
